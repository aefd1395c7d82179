package adapters

import (
	"os"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"

	"reqforge/internal/ports"
	"reqforge/internal/types"
)

type OverridesFileAdapter struct{}

func NewOverridesFileAdapter() OverridesFileAdapter {
	return OverridesFileAdapter{}
}

func (a OverridesFileAdapter) LoadOverrides(path string) ([]types.OverrideDirective, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("overrides file not found").
			WithCause(err)
	}
	var file types.OverridesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to parse overrides yaml").
			WithCause(err)
	}
	return file.Overrides, nil
}

var _ ports.OverridesPort = OverridesFileAdapter{}
