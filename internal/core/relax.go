package core

import (
	"context"

	"github.com/rs/zerolog/log"

	"reqforge/internal/types"
)

// Relax removes CI-only upper bounds from a manifest. A compatible
// release clause carries an implicit ceiling, so it is rewritten to
// its lower half. Explicit lower bounds, exclusions, and environment
// markers are untouched. Requirements annotated strict keep their
// bounds verbatim.
func Relax(ctx context.Context, manifest types.Manifest) (types.Manifest, []types.RelaxedBound) {
	relaxed := types.Manifest{Path: manifest.Path}
	var dropped []types.RelaxedBound
	for _, line := range manifest.Lines {
		if line.Requirement == nil {
			relaxed.Lines = append(relaxed.Lines, line)
			continue
		}
		req := *line.Requirement
		if req.Strict {
			relaxed.Lines = append(relaxed.Lines, types.ManifestLine{Requirement: &req})
			continue
		}
		var kept []types.Constraint
		for _, constraint := range req.Constraints {
			switch {
			case constraint.Op.IsUpperBound():
				dropped = append(dropped, types.RelaxedBound{
					Package: req.Name,
					Op:      constraint.Op,
					Version: constraint.Version,
				})
			case constraint.Op == types.ConstraintOpCompat:
				dropped = append(dropped, types.RelaxedBound{
					Package: req.Name,
					Op:      constraint.Op,
					Version: constraint.Version,
				})
				kept = append(kept, types.Constraint{
					Op:      types.ConstraintOpGte,
					Version: constraint.Version,
				})
			default:
				kept = append(kept, constraint)
			}
		}
		req.Constraints = kept
		relaxed.Lines = append(relaxed.Lines, types.ManifestLine{Requirement: &req})
	}
	log.Ctx(ctx).Debug().Int("dropped", len(dropped)).Msg("upper bounds relaxed")
	return relaxed, dropped
}
