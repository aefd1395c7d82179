package core

import (
	"context"
	"fmt"
	"strings"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"reqforge/internal/policies"
	"reqforge/internal/shared"
	"reqforge/internal/types"
)

type ManifestValidator struct{}

func NewManifestValidator() ManifestValidator {
	return ManifestValidator{}
}

// ValidateManifest checks the manifest invariants that parsing alone
// cannot: every stated minimum must not exceed any stated maximum,
// markers must parse, and versions must be well formed. Duplicate
// package names are legal alternatives and only logged.
func (v ManifestValidator) ValidateManifest(ctx context.Context, manifest types.Manifest) error {
	cache := newVersionCache()
	seen := map[string]int{}
	for _, req := range manifest.Requirements() {
		assert.NotEmpty(ctx, req.Name, "requirement name must be set")
		if err := validateBounds(req, cache); err != nil {
			return err
		}
		if req.Marker != "" {
			if _, err := ParseMarker(req.Marker); err != nil {
				return err
			}
		}
		seen[shared.NormalizePipName(req.Name)]++
	}
	for name, count := range seen {
		if count > 1 {
			log.Ctx(ctx).Debug().
				Str("package", name).
				Int("entries", count).
				Msg("duplicate entries treated as alternative ranges")
		}
	}
	log.Ctx(ctx).Debug().Str("manifest", manifest.Path).Msg("manifest validated")
	return nil
}

// validateBounds enforces minimum <= maximum for every pair of lower
// and upper bounds a requirement states.
func validateBounds(req types.Requirement, cache *versionCache) error {
	var lowers []types.Constraint
	var uppers []types.Constraint
	for _, constraint := range req.Constraints {
		if _, err := cache.pepVersion(constraint.Version); err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("invalid version %q for %s", constraint.Version, req.Name)).
				WithCause(err)
		}
		switch {
		case constraint.Op.IsLowerBound():
			lowers = append(lowers, constraint)
		case constraint.Op.IsUpperBound():
			uppers = append(uppers, constraint)
		}
	}
	for _, lower := range lowers {
		for _, upper := range uppers {
			if cache.compare(lower.Version, upper.Version) > 0 {
				return errbuilder.New().
					WithCode(errbuilder.CodeInvalidArgument).
					WithMsg(fmt.Sprintf(
						"minimum version exceeds maximum for %s: %s%s > %s%s",
						req.Name, lower.Op, lower.Version, upper.Op, upper.Version,
					))
			}
		}
	}
	return nil
}

// ValidateOverrides checks that every directive names a dependency,
// uses a known action, and documents its reason and owner.
func ValidateOverrides(overrides []types.OverrideDirective) error {
	for _, directive := range overrides {
		if err := validateOverrideDirective(directive); err != nil {
			return err
		}
	}
	return nil
}

func validateOverrideDirective(directive types.OverrideDirective) error {
	if strings.TrimSpace(directive.Dependency) == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("override directive dependency must not be empty")
	}
	action := strings.ToLower(strings.TrimSpace(directive.Action))
	if action == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("override directive action must not be empty")
	}
	switch action {
	case policies.ActionForce, policies.ActionRelax, policies.ActionReplace, policies.ActionBlock:
	default:
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("override directive has invalid action: %s", directive.Action))
	}
	if strings.TrimSpace(directive.Reason) == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("override directive reason must not be empty")
	}
	if strings.TrimSpace(directive.Owner) == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("override directive owner must not be empty")
	}
	if (action == policies.ActionForce || action == policies.ActionReplace) && strings.TrimSpace(directive.Value) == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("override directive value must not be empty for force/replace actions")
	}
	if _, _, err := policies.DirectiveExpiry(directive); err != nil {
		return err
	}
	return nil
}
