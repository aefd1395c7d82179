package app

import (
	"context"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"reqforge/internal/core"
)

func (s Service) Validate(ctx context.Context, req ValidateRequest) (ValidateResult, error) {
	manifestPath := strings.TrimSpace(req.ManifestPath)
	if manifestPath == "" {
		return ValidateResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("manifest path is required")
	}
	manifest, err := s.Manifest.Load(manifestPath)
	if err != nil {
		return ValidateResult{}, err
	}
	validator := core.NewManifestValidator()
	if err := validator.ValidateManifest(ctx, manifest); err != nil {
		return ValidateResult{}, err
	}
	if overridesPath := strings.TrimSpace(req.OverridesPath); overridesPath != "" {
		overrides, err := s.Overrides.LoadOverrides(overridesPath)
		if err != nil {
			return ValidateResult{}, err
		}
		if err := core.ValidateOverrides(overrides); err != nil {
			return ValidateResult{}, err
		}
	}
	reqs := manifest.Requirements()
	strict := 0
	for _, entry := range reqs {
		if entry.Strict {
			strict++
		}
	}
	return ValidateResult{
		ManifestPath:     manifestPath,
		RequirementCount: len(reqs),
		StrictCount:      strict,
	}, nil
}
