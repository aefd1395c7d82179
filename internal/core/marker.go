package core

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/ZanzyTHEbar/errbuilder-go"
	pep440 "github.com/aquasecurity/go-pep440-version"

	"reqforge/internal/types"
)

// MarkerExpr is a parsed environment marker ready for evaluation
// against a target environment.
type MarkerExpr interface {
	Eval(env types.Environment) (bool, error)
}

// versionMarkerVars lists the marker variables whose values order like
// versions rather than plain strings.
var versionMarkerVars = map[string]struct{}{
	"python_version":         {},
	"python_full_version":    {},
	"implementation_version": {},
}

// ParseMarker parses an environment marker predicate such as
// `python_version < '3.9' and sys_platform == 'linux'`.
func ParseMarker(raw string) (MarkerExpr, error) {
	tokens, err := lexMarker(raw)
	if err != nil {
		return nil, markerError(raw, err)
	}
	parser := &markerParser{tokens: tokens}
	expr, err := parser.parseOr()
	if err != nil {
		return nil, markerError(raw, err)
	}
	if !parser.done() {
		return nil, markerError(raw, fmt.Errorf("unexpected trailing token %q", parser.peek()))
	}
	return expr, nil
}

// MarkerApplies evaluates a raw marker against the environment. An
// empty marker always applies.
func MarkerApplies(raw string, env types.Environment) (bool, error) {
	if strings.TrimSpace(raw) == "" {
		return true, nil
	}
	expr, err := ParseMarker(raw)
	if err != nil {
		return false, err
	}
	ok, err := expr.Eval(env)
	if err != nil {
		return false, markerError(raw, err)
	}
	return ok, nil
}

func markerError(raw string, cause error) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(fmt.Sprintf("invalid environment marker %q", strings.TrimSpace(raw))).
		WithCause(cause)
}

type markerOr struct{ left, right MarkerExpr }

func (e markerOr) Eval(env types.Environment) (bool, error) {
	left, err := e.left.Eval(env)
	if err != nil {
		return false, err
	}
	if left {
		return true, nil
	}
	return e.right.Eval(env)
}

type markerAnd struct{ left, right MarkerExpr }

func (e markerAnd) Eval(env types.Environment) (bool, error) {
	left, err := e.left.Eval(env)
	if err != nil {
		return false, err
	}
	if !left {
		return false, nil
	}
	return e.right.Eval(env)
}

type markerOperand struct {
	value     string
	isLiteral bool
}

func (o markerOperand) resolve(env types.Environment) (string, error) {
	if o.isLiteral {
		return o.value, nil
	}
	resolved, ok := env[o.value]
	if !ok {
		return "", fmt.Errorf("unknown marker variable %q", o.value)
	}
	return resolved, nil
}

type markerCmp struct {
	left  markerOperand
	op    string
	right markerOperand
}

func (e markerCmp) Eval(env types.Environment) (bool, error) {
	left, err := e.left.resolve(env)
	if err != nil {
		return false, err
	}
	right, err := e.right.resolve(env)
	if err != nil {
		return false, err
	}
	switch e.op {
	case "in":
		return strings.Contains(right, left), nil
	case "not in":
		return !strings.Contains(right, left), nil
	case "~=":
		spec, err := pep440.NewSpecifiers("~=" + right)
		if err != nil {
			return false, fmt.Errorf("invalid compatible-release clause %q", right)
		}
		lv, err := pep440.Parse(left)
		if err != nil {
			return false, fmt.Errorf("marker value %q is not a version", left)
		}
		return spec.Check(lv), nil
	}
	if e.comparesVersions() {
		if cmp, ok := compareVersionStrings(left, right); ok {
			return applyOrdering(e.op, cmp)
		}
	}
	return applyOrdering(e.op, strings.Compare(left, right))
}

// comparesVersions reports whether either side references a
// version-valued marker variable.
func (e markerCmp) comparesVersions() bool {
	for _, operand := range []markerOperand{e.left, e.right} {
		if operand.isLiteral {
			continue
		}
		if _, ok := versionMarkerVars[operand.value]; ok {
			return true
		}
	}
	return false
}

func compareVersionStrings(left string, right string) (int, bool) {
	lv, err := pep440.Parse(left)
	if err != nil {
		return 0, false
	}
	rv, err := pep440.Parse(right)
	if err != nil {
		return 0, false
	}
	return lv.Compare(rv), true
}

func applyOrdering(op string, cmp int) (bool, error) {
	switch op {
	case "==":
		return cmp == 0, nil
	case "!=":
		return cmp != 0, nil
	case "<":
		return cmp < 0, nil
	case "<=":
		return cmp <= 0, nil
	case ">":
		return cmp > 0, nil
	case ">=":
		return cmp >= 0, nil
	default:
		return false, fmt.Errorf("unsupported marker operator %q", op)
	}
}

type markerToken struct {
	kind  string // "ident", "string", "op", "lparen", "rparen"
	value string
}

func lexMarker(raw string) ([]markerToken, error) {
	var tokens []markerToken
	runes := []rune(raw)
	idx := 0
	for idx < len(runes) {
		r := runes[idx]
		switch {
		case unicode.IsSpace(r):
			idx++
		case r == '(':
			tokens = append(tokens, markerToken{kind: "lparen", value: "("})
			idx++
		case r == ')':
			tokens = append(tokens, markerToken{kind: "rparen", value: ")"})
			idx++
		case r == '\'' || r == '"':
			end := idx + 1
			for end < len(runes) && runes[end] != r {
				end++
			}
			if end >= len(runes) {
				return nil, fmt.Errorf("unterminated string literal")
			}
			tokens = append(tokens, markerToken{kind: "string", value: string(runes[idx+1 : end])})
			idx = end + 1
		case strings.ContainsRune("<>=!~", r):
			end := idx
			for end < len(runes) && strings.ContainsRune("<>=!~", runes[end]) {
				end++
			}
			op := string(runes[idx:end])
			switch op {
			case "==", "!=", "<", "<=", ">", ">=", "~=":
			default:
				return nil, fmt.Errorf("unsupported marker operator %q", op)
			}
			tokens = append(tokens, markerToken{kind: "op", value: op})
			idx = end
		case unicode.IsLetter(r) || r == '_':
			end := idx
			for end < len(runes) && (unicode.IsLetter(runes[end]) || unicode.IsDigit(runes[end]) || runes[end] == '_' || runes[end] == '.') {
				end++
			}
			tokens = append(tokens, markerToken{kind: "ident", value: string(runes[idx:end])})
			idx = end
		default:
			return nil, fmt.Errorf("unexpected character %q", string(r))
		}
	}
	return tokens, nil
}

type markerParser struct {
	tokens []markerToken
	pos    int
}

func (p *markerParser) done() bool {
	return p.pos >= len(p.tokens)
}

func (p *markerParser) peek() string {
	if p.done() {
		return ""
	}
	return p.tokens[p.pos].value
}

func (p *markerParser) parseOr() (MarkerExpr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for !p.done() && p.tokens[p.pos].kind == "ident" && p.tokens[p.pos].value == "or" {
		p.pos++
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = markerOr{left: left, right: right}
	}
	return left, nil
}

func (p *markerParser) parseAnd() (MarkerExpr, error) {
	left, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for !p.done() && p.tokens[p.pos].kind == "ident" && p.tokens[p.pos].value == "and" {
		p.pos++
		right, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		left = markerAnd{left: left, right: right}
	}
	return left, nil
}

func (p *markerParser) parsePrimary() (MarkerExpr, error) {
	if p.done() {
		return nil, fmt.Errorf("unexpected end of marker")
	}
	if p.tokens[p.pos].kind == "lparen" {
		p.pos++
		expr, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.done() || p.tokens[p.pos].kind != "rparen" {
			return nil, fmt.Errorf("missing closing parenthesis")
		}
		p.pos++
		return expr, nil
	}
	return p.parseComparison()
}

func (p *markerParser) parseComparison() (MarkerExpr, error) {
	left, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	op, err := p.parseCmpOp()
	if err != nil {
		return nil, err
	}
	right, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	return markerCmp{left: left, op: op, right: right}, nil
}

func (p *markerParser) parseOperand() (markerOperand, error) {
	if p.done() {
		return markerOperand{}, fmt.Errorf("unexpected end of marker")
	}
	token := p.tokens[p.pos]
	switch token.kind {
	case "string":
		p.pos++
		return markerOperand{value: token.value, isLiteral: true}, nil
	case "ident":
		if token.value == "and" || token.value == "or" || token.value == "in" || token.value == "not" {
			return markerOperand{}, fmt.Errorf("unexpected keyword %q", token.value)
		}
		p.pos++
		return markerOperand{value: token.value}, nil
	default:
		return markerOperand{}, fmt.Errorf("unexpected token %q", token.value)
	}
}

func (p *markerParser) parseCmpOp() (string, error) {
	if p.done() {
		return "", fmt.Errorf("missing comparison operator")
	}
	token := p.tokens[p.pos]
	if token.kind == "op" {
		p.pos++
		return token.value, nil
	}
	if token.kind == "ident" && token.value == "in" {
		p.pos++
		return "in", nil
	}
	if token.kind == "ident" && token.value == "not" {
		p.pos++
		if p.done() || p.tokens[p.pos].kind != "ident" || p.tokens[p.pos].value != "in" {
			return "", fmt.Errorf("expected 'in' after 'not'")
		}
		p.pos++
		return "not in", nil
	}
	return "", fmt.Errorf("expected comparison operator, got %q", token.value)
}
