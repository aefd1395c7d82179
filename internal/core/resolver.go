package core

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"reqforge/internal/policies"
	"reqforge/internal/ports"
	"reqforge/internal/shared"
	"reqforge/internal/types"
)

type ResolverCore struct {
	Index ports.PackageIndexPort
	Now   func() time.Time
}

type ResolveResult struct {
	Locks       []types.LockEntry
	DebianLocks []types.DebianLockEntry
	Skipped     []types.SkippedRequirement
	Resolution  types.ResolutionReport
}

func NewResolverCore(index ports.PackageIndexPort) ResolverCore {
	return ResolverCore{Index: index, Now: time.Now}
}

func (r ResolverCore) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// requirementGroup collects the alternative constraint sets a manifest
// declares for one package.
type requirementGroup struct {
	name         string
	alternatives []types.Requirement
}

// Resolve computes a concrete version per package from the manifest's
// active requirements. Requirements whose environment marker evaluates
// false for the target environment are skipped. A conflict is only
// recoverable through an override directive.
func (r ResolverCore) Resolve(ctx context.Context, manifest types.Manifest, env types.Environment, overrides []types.OverrideDirective) (ResolveResult, error) {
	if r.Index == nil {
		return ResolveResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("resolver requires a package index port")
	}

	result := ResolveResult{
		Resolution: types.ResolutionReport{Records: []types.ResolutionRecord{}},
	}
	groups, skipped, err := groupRequirements(manifest.Requirements(), env)
	if err != nil {
		return ResolveResult{}, err
	}
	result.Skipped = skipped
	directiveMap := mapDirectives(overrides)

	for _, group := range groups {
		version, record, err := r.resolveGroup(ctx, group, directiveMap)
		if err != nil {
			return ResolveResult{}, err
		}
		if record.Action != "" {
			result.Resolution.Records = append(result.Resolution.Records, record)
		}
		result.Locks = append(result.Locks, types.LockEntry{
			Package: group.name,
			Version: version,
		})
		result.DebianLocks = append(result.DebianLocks, types.DebianLockEntry{
			Package: shared.NormalizeDebPackageName("python3-" + group.name),
			Version: version,
		})
	}

	sort.Slice(result.Locks, func(i, j int) bool {
		return result.Locks[i].Package < result.Locks[j].Package
	})
	sort.Slice(result.DebianLocks, func(i, j int) bool {
		return result.DebianLocks[i].Package < result.DebianLocks[j].Package
	})

	log.Ctx(ctx).Debug().
		Int("resolved", len(result.Locks)).
		Int("skipped", len(result.Skipped)).
		Msg("resolver completed")
	return result, nil
}

func (r ResolverCore) resolveGroup(ctx context.Context, group requirementGroup, directiveMap map[string]types.OverrideDirective) (string, types.ResolutionRecord, error) {
	cache := newVersionCache()
	available, err := r.Index.AvailableVersions(group.name)
	if err != nil {
		return "", types.ResolutionRecord{}, err
	}
	version, resolveErr := bestCompatibleVersion(group.name, group.alternatives, available, cache)
	if resolveErr == nil {
		return version, types.ResolutionRecord{}, nil
	}

	directive, ok := directiveMap[group.name]
	if ok {
		expiry, hasExpiry, err := policies.DirectiveExpiry(directive)
		if err != nil {
			return "", types.ResolutionRecord{}, err
		}
		if hasExpiry && r.now().After(expiry) {
			log.Ctx(ctx).Warn().
				Str("dependency", group.name).
				Str("expires_at", directive.ExpiresAt).
				Msg("override directive expired")
			ok = false
		}
	}
	if !ok {
		return "", types.ResolutionRecord{}, errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg(fmt.Sprintf("conflict without override directive: %s", group.name)).
			WithCause(resolveErr)
	}

	updated, record, err := policies.ApplyOverride(types.Requirement{Name: group.name}, directive)
	if err != nil {
		return "", record, err
	}
	available, err = r.Index.AvailableVersions(updated.Name)
	if err != nil {
		return "", types.ResolutionRecord{}, err
	}
	version, err = bestCompatibleVersion(updated.Name, []types.Requirement{updated}, available, cache)
	if err != nil {
		return "", types.ResolutionRecord{}, err
	}
	log.Ctx(ctx).Debug().Str("dependency", group.name).Msg("override directive applied")
	return version, record, nil
}

// groupRequirements evaluates markers and buckets the surviving
// requirements by normalized name, preserving first-seen order.
// Duplicate names become alternatives within one group.
func groupRequirements(reqs []types.Requirement, env types.Environment) ([]requirementGroup, []types.SkippedRequirement, error) {
	var order []string
	grouped := map[string][]types.Requirement{}
	var skipped []types.SkippedRequirement
	for _, req := range reqs {
		applies, err := MarkerApplies(req.Marker, env)
		if err != nil {
			return nil, nil, err
		}
		name := shared.NormalizePipName(req.Name)
		if !applies {
			skipped = append(skipped, types.SkippedRequirement{
				Package: name,
				Marker:  req.Marker,
			})
			continue
		}
		if _, ok := grouped[name]; !ok {
			order = append(order, name)
		}
		grouped[name] = append(grouped[name], req)
	}
	groups := make([]requirementGroup, 0, len(order))
	for _, name := range order {
		groups = append(groups, requirementGroup{
			name:         name,
			alternatives: grouped[name],
		})
	}
	return groups, skipped, nil
}

func mapDirectives(directives []types.OverrideDirective) map[string]types.OverrideDirective {
	mapped := map[string]types.OverrideDirective{}
	for _, directive := range directives {
		if directive.Dependency == "" {
			continue
		}
		mapped[shared.NormalizePipName(directive.Dependency)] = directive
	}
	return mapped
}
