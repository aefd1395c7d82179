package app

import (
	"context"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"reqforge/internal/adapters"
	"reqforge/internal/core"
	"reqforge/internal/types"
)

func (s Service) Lock(ctx context.Context, req LockRequest) (LockResult, error) {
	manifestPath := strings.TrimSpace(req.ManifestPath)
	if manifestPath == "" {
		return LockResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("manifest path is required")
	}
	indexPath := strings.TrimSpace(req.IndexPath)
	if indexPath == "" {
		return LockResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("package index file is required")
	}
	outputDir := strings.TrimSpace(req.OutputDir)
	if outputDir == "" {
		return LockResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("output directory is required")
	}

	manifest, err := s.Manifest.Load(manifestPath)
	if err != nil {
		return LockResult{}, err
	}
	validator := core.NewManifestValidator()
	if err := validator.ValidateManifest(ctx, manifest); err != nil {
		return LockResult{}, err
	}

	var overrides []types.OverrideDirective
	if overridesPath := strings.TrimSpace(req.OverridesPath); overridesPath != "" {
		overrides, err = s.Overrides.LoadOverrides(overridesPath)
		if err != nil {
			return LockResult{}, err
		}
		if err := core.ValidateOverrides(overrides); err != nil {
			return LockResult{}, err
		}
	}

	env := buildEnvironment(req.PythonVersion, req.MarkerOverride)
	resolver := core.NewResolverCore(adapters.NewPackageIndexFileAdapter(indexPath))
	resolver.Now = s.Clock
	result, err := resolver.Resolve(ctx, manifest, env, overrides)
	if err != nil {
		return LockResult{}, err
	}

	output := adapters.NewLockFileAdapter(outputDir)
	if err := output.WriteLock(result.Locks); err != nil {
		return LockResult{}, err
	}
	if err := output.WriteResolutionReport(result.Resolution); err != nil {
		return LockResult{}, err
	}
	if req.DebianCompat {
		if err := output.WriteDebianLock(result.DebianLocks); err != nil {
			return LockResult{}, err
		}
	}
	return LockResult{
		ManifestPath: manifestPath,
		OutputDir:    outputDir,
		LockCount:    len(result.Locks),
		SkippedCount: len(result.Skipped),
	}, nil
}

// buildEnvironment overlays request-level marker values on the default
// environment. A bare python version also refreshes the full-version
// variables when none were given explicitly.
func buildEnvironment(pythonVersion string, overrides map[string]string) types.Environment {
	env := types.DefaultEnvironment()
	pythonVersion = strings.TrimSpace(pythonVersion)
	if pythonVersion != "" {
		env["python_version"] = pythonVersion
		full := pythonVersion
		if strings.Count(full, ".") < 2 {
			full = full + ".0"
		}
		env["python_full_version"] = full
		env["implementation_version"] = full
	}
	return env.Merge(overrides)
}
