package app

import (
	"context"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"reqforge/internal/core"
)

// Relax drops CI-only upper bounds from a manifest and writes the
// result. With no explicit output path the manifest is rewritten in
// place.
func (s Service) Relax(ctx context.Context, req RelaxRequest) (RelaxResult, error) {
	manifestPath := strings.TrimSpace(req.ManifestPath)
	if manifestPath == "" {
		return RelaxResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("manifest path is required")
	}
	manifest, err := s.Manifest.Load(manifestPath)
	if err != nil {
		return RelaxResult{}, err
	}
	validator := core.NewManifestValidator()
	if err := validator.ValidateManifest(ctx, manifest); err != nil {
		return RelaxResult{}, err
	}
	relaxed, dropped := core.Relax(ctx, manifest)
	outputPath := strings.TrimSpace(req.OutputPath)
	if outputPath == "" {
		outputPath = manifestPath
	}
	if err := s.Manifest.Save(relaxed, outputPath); err != nil {
		return RelaxResult{}, err
	}
	return RelaxResult{
		OutputPath:    outputPath,
		DroppedBounds: dropped,
	}, nil
}
