package types

type ConstraintOp string

const (
	ConstraintOpNone   ConstraintOp = ""
	ConstraintOpEq     ConstraintOp = "="
	ConstraintOpEq2    ConstraintOp = "=="
	ConstraintOpNe     ConstraintOp = "!="
	ConstraintOpCompat ConstraintOp = "~="
	ConstraintOpGte    ConstraintOp = ">="
	ConstraintOpLte    ConstraintOp = "<="
	ConstraintOpGt     ConstraintOp = ">"
	ConstraintOpLt     ConstraintOp = "<"
)

// IsUpperBound reports whether the operator caps the acceptable range
// from above. These are the clauses a relax transformation may drop.
func (op ConstraintOp) IsUpperBound() bool {
	return op == ConstraintOpLt || op == ConstraintOpLte
}

// IsLowerBound reports whether the operator bounds the acceptable range
// from below.
func (op ConstraintOp) IsLowerBound() bool {
	return op == ConstraintOpGt || op == ConstraintOpGte
}
