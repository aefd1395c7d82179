package types

type LockEntry struct {
	Package string
	Version string
}

type DebianLockEntry struct {
	Package string
	Version string
}

// RelaxedBound records one upper bound dropped by the relax
// transformation.
type RelaxedBound struct {
	Package string
	Op      ConstraintOp
	Version string
}

type SkippedRequirement struct {
	Package string
	Marker  string
}

type ResolutionRecord struct {
	Dependency string
	Action     string
	Value      string
	Reason     string
	Owner      string
	ExpiresAt  string
}

type ResolutionReport struct {
	Records []ResolutionRecord
}
