package policies

import (
	"fmt"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"reqforge/internal/types"
)

const (
	ActionForce   = "force"
	ActionRelax   = "relax"
	ActionReplace = "replace"
	ActionBlock   = "block"
)

const expiryDateLayout = "2006-01-02"

// DirectiveExpiry parses the directive's optional expires_at field.
// Both bare dates and RFC 3339 timestamps are accepted; a bare date
// covers the whole day. The second return is false when the directive
// never expires.
func DirectiveExpiry(directive types.OverrideDirective) (time.Time, bool, error) {
	raw := strings.TrimSpace(directive.ExpiresAt)
	if raw == "" {
		return time.Time{}, false, nil
	}
	if expiry, err := time.Parse(expiryDateLayout, raw); err == nil {
		return expiry.AddDate(0, 0, 1), true, nil
	}
	expiry, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("override directive has invalid expires_at: %s", directive.ExpiresAt)).
			WithCause(err)
	}
	return expiry, true, nil
}

// ApplyOverride rewrites a conflicting requirement according to its
// override directive. The returned record is appended to the
// resolution report so that every override stays visible in outputs.
func ApplyOverride(req types.Requirement, directive types.OverrideDirective) (types.Requirement, types.ResolutionRecord, error) {
	record := types.ResolutionRecord(directive)

	switch strings.ToLower(directive.Action) {
	case ActionForce:
		if directive.Value == "" {
			return types.Requirement{}, record, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("force directive requires value")
		}
		req.Constraints = []types.Constraint{{
			Op:      types.ConstraintOpEq2,
			Version: directive.Value,
		}}
		return req, record, nil
	case ActionRelax:
		req.Constraints = nil
		return req, record, nil
	case ActionReplace:
		if directive.Value == "" {
			return types.Requirement{}, record, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("replace directive requires value")
		}
		req.Name = directive.Value
		req.Constraints = nil
		return req, record, nil
	case ActionBlock:
		return types.Requirement{}, record, errbuilder.New().
			WithCode(errbuilder.CodePermissionDenied).
			WithMsg(fmt.Sprintf("dependency blocked by directive: %s", req.Name))
	default:
		return types.Requirement{}, record, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("unknown override action: %s", directive.Action))
	}
}
