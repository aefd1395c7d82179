package core

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"reqforge/internal/types"
)

// opTokens is the ordered list of constraint operators tried during
// parsing. Longer tokens must precede shorter ones to avoid false matches
// (e.g. ">=" before ">").
var opTokens = []types.ConstraintOp{
	types.ConstraintOpGte,
	types.ConstraintOpLte,
	types.ConstraintOpCompat,
	types.ConstraintOpNe,
	types.ConstraintOpEq2,
	types.ConstraintOpEq,
	types.ConstraintOpGt,
	types.ConstraintOpLt,
}

var namePattern = regexp.MustCompile(`^[A-Za-z0-9]([A-Za-z0-9._-]*[A-Za-z0-9])?$`)

// ParseRequirement parses one non-comment manifest line of the form
//
//	<name> <op><version>[, <op><version>]...[; <marker>][# comment]
//
// A trailing comment containing the word "strict" marks the entry's
// bounds as non-droppable. A malformed line is a fatal parse error
// carrying the offending content.
func ParseRequirement(raw string, line int) (types.Requirement, error) {
	body, comment := splitComment(raw)
	body = strings.TrimSpace(body)
	if body == "" {
		return types.Requirement{}, parseError(raw, line, "empty requirement")
	}

	body, marker := splitMarker(body)
	name, clauses := splitNameAndClauses(body)
	name = strings.TrimSpace(name)
	if name == "" || !namePattern.MatchString(name) {
		return types.Requirement{}, parseError(raw, line, "invalid package name")
	}

	var constraints []types.Constraint
	if strings.TrimSpace(clauses) != "" {
		for _, clause := range strings.Split(clauses, ",") {
			constraint, err := parseClause(clause)
			if err != nil {
				return types.Requirement{}, parseError(raw, line, err.Error())
			}
			constraints = append(constraints, constraint)
		}
	}

	return types.Requirement{
		Name:        name,
		Constraints: constraints,
		Marker:      strings.TrimSpace(marker),
		Strict:      commentMarksStrict(comment),
		Comment:     strings.TrimSpace(comment),
		Line:        line,
	}, nil
}

// FormatRequirement renders a requirement back into manifest line form.
// Parsing the result yields an equivalent requirement.
func FormatRequirement(req types.Requirement) string {
	var builder strings.Builder
	builder.WriteString(req.Name)
	if len(req.Constraints) > 0 {
		clauses := make([]string, 0, len(req.Constraints))
		for _, constraint := range req.Constraints {
			clauses = append(clauses, string(constraint.Op)+constraint.Version)
		}
		builder.WriteString(" ")
		builder.WriteString(strings.Join(clauses, ", "))
	}
	if req.Marker != "" {
		builder.WriteString("; ")
		builder.WriteString(req.Marker)
	}
	comment := req.Comment
	if req.Strict && !commentMarksStrict(comment) {
		if comment == "" {
			comment = "strict"
		} else {
			comment = comment + " strict"
		}
	}
	if comment != "" {
		builder.WriteString("  # ")
		builder.WriteString(comment)
	}
	return builder.String()
}

// splitComment splits a line at the first '#' that is not inside a
// quoted marker string.
func splitComment(raw string) (string, string) {
	var quote rune
	for idx, r := range raw {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"':
			quote = r
		case r == '#':
			return raw[:idx], strings.TrimSpace(strings.TrimPrefix(raw[idx:], "#"))
		}
	}
	return raw, ""
}

func splitMarker(body string) (string, string) {
	idx := strings.Index(body, ";")
	if idx < 0 {
		return body, ""
	}
	return strings.TrimSpace(body[:idx]), strings.TrimSpace(body[idx+1:])
}

// splitNameAndClauses cuts the line at the earliest operator token. When
// no operator is present the whole body is a bare name reference.
func splitNameAndClauses(body string) (string, string) {
	cut := -1
	for _, op := range opTokens {
		idx := strings.Index(body, string(op))
		if idx >= 0 && (cut < 0 || idx < cut) {
			cut = idx
		}
	}
	if cut < 0 {
		return body, ""
	}
	return body[:cut], body[cut:]
}

func parseClause(clause string) (types.Constraint, error) {
	clause = strings.TrimSpace(clause)
	if clause == "" {
		return types.Constraint{}, fmt.Errorf("empty version clause")
	}
	for _, op := range opTokens {
		if strings.HasPrefix(clause, string(op)) {
			version := strings.TrimSpace(strings.TrimPrefix(clause, string(op)))
			if version == "" {
				return types.Constraint{}, fmt.Errorf("missing version after %s", op)
			}
			return types.Constraint{Op: op, Version: version}, nil
		}
	}
	return types.Constraint{}, fmt.Errorf("missing comparator in clause %q", clause)
}

func commentMarksStrict(comment string) bool {
	for _, field := range strings.FieldsFunc(comment, func(r rune) bool {
		return r == ' ' || r == '\t' || r == ','
	}) {
		if strings.EqualFold(field, "strict") {
			return true
		}
	}
	return false
}

func parseError(raw string, line int, reason string) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(fmt.Sprintf("malformed requirement at line %d: %s (%q)", line, reason, strings.TrimSpace(raw)))
}
