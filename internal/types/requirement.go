package types

type Constraint struct {
	Op      ConstraintOp
	Version string
}

// Requirement is one declared package with its acceptable version
// range. A manifest may list the same package twice with different
// ranges; such entries are alternatives, never intersected.
type Requirement struct {
	Name        string
	Constraints []Constraint
	Marker      string
	Strict      bool
	Comment     string
	Line        int
}

// ManifestLine preserves the file shape on rewrite: either a verbatim
// comment/blank line or a parsed requirement.
type ManifestLine struct {
	Raw         string
	Requirement *Requirement
}

type Manifest struct {
	Path  string
	Lines []ManifestLine
}

// Requirements returns the parsed entries in file order.
func (m Manifest) Requirements() []Requirement {
	var out []Requirement
	for _, line := range m.Lines {
		if line.Requirement != nil {
			out = append(out, *line.Requirement)
		}
	}
	return out
}
