package core

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	pep440 "github.com/aquasecurity/go-pep440-version"

	"reqforge/internal/types"
)

// versionCache memoizes parsed version objects to avoid repeated parsing
// during constraint evaluation and sorting.
type versionCache struct {
	pep  map[string]pep440.Version
	spec map[string]pep440.Specifiers
}

func newVersionCache() *versionCache {
	return &versionCache{
		pep:  map[string]pep440.Version{},
		spec: map[string]pep440.Specifiers{},
	}
}

// pepVersion returns a parsed PEP 440 version, caching the result.
func (c *versionCache) pepVersion(value string) (pep440.Version, error) {
	if parsed, ok := c.pep[value]; ok {
		return parsed, nil
	}
	parsed, err := pep440.Parse(value)
	if err != nil {
		return pep440.Version{}, err
	}
	c.pep[value] = parsed
	return parsed, nil
}

// pepSpec returns parsed PEP 440 specifiers, caching the result.
func (c *versionCache) pepSpec(value string) (pep440.Specifiers, error) {
	if parsed, ok := c.spec[value]; ok {
		return parsed, nil
	}
	parsed, err := pep440.NewSpecifiers(value)
	if err != nil {
		return pep440.Specifiers{}, err
	}
	c.spec[value] = parsed
	return parsed, nil
}

// compare returns -1, 0, or 1 comparing two version strings in PEP 440
// order. Returns 0 on parse errors.
func (c *versionCache) compare(a string, b string) int {
	v1, err := c.pepVersion(a)
	if err != nil {
		return 0
	}
	v2, err := c.pepVersion(b)
	if err != nil {
		return 0
	}
	return v1.Compare(v2)
}

// specifiersFor renders a requirement's constraint set as one PEP 440
// specifier string and parses it. A bare name yields an empty set that
// every version satisfies.
func (c *versionCache) specifiersFor(req types.Requirement) (pep440.Specifiers, bool, error) {
	if len(req.Constraints) == 0 {
		return pep440.Specifiers{}, false, nil
	}
	clauses := make([]string, 0, len(req.Constraints))
	for _, constraint := range req.Constraints {
		clauses = append(clauses, toPep440Clause(constraint))
	}
	spec, err := c.pepSpec(strings.Join(clauses, ", "))
	if err != nil {
		return pep440.Specifiers{}, false, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("invalid version constraints for %s", req.Name)).
			WithCause(err)
	}
	return spec, true, nil
}

// bestCompatibleVersion selects the highest available version that
// satisfies at least one of the alternative constraint sets declared
// for the package. Alternatives are never intersected.
func bestCompatibleVersion(name string, alternatives []types.Requirement, available []string, cache *versionCache) (string, error) {
	if len(available) == 0 {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("no available versions for %s", name))
	}
	type preparedAlternative struct {
		spec    pep440.Specifiers
		bounded bool
	}
	prepared := make([]preparedAlternative, 0, len(alternatives))
	for _, alternative := range alternatives {
		spec, bounded, err := cache.specifiersFor(alternative)
		if err != nil {
			return "", err
		}
		prepared = append(prepared, preparedAlternative{spec: spec, bounded: bounded})
	}
	var candidates []string
	for _, version := range available {
		parsed, err := cache.pepVersion(version)
		if err != nil {
			continue
		}
		for _, alternative := range prepared {
			if !alternative.bounded || alternative.spec.Check(parsed) {
				candidates = append(candidates, version)
				break
			}
		}
	}
	if len(candidates) == 0 {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg(fmt.Sprintf("no compatible version for %s", name))
	}
	sort.Slice(candidates, func(i, j int) bool {
		return cache.compare(candidates[i], candidates[j]) > 0
	})
	return candidates[0], nil
}

// toPep440Clause converts an internal constraint to a PEP 440 specifier
// clause (e.g. ">=1.0", "~=2.3").
func toPep440Clause(constraint types.Constraint) string {
	op := string(constraint.Op)
	if constraint.Op == types.ConstraintOpEq {
		op = "=="
	}
	return op + constraint.Version
}
