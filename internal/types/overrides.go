package types

// OverrideDirective is a structured escape hatch for conflicts the
// resolver cannot satisfy from the manifest alone. Every directive
// carries an owner and a reason so the decision stays auditable.
type OverrideDirective struct {
	Dependency string `yaml:"dependency"`
	Action     string `yaml:"action"`
	Value      string `yaml:"value,omitempty"`
	Reason     string `yaml:"reason"`
	Owner      string `yaml:"owner"`
	ExpiresAt  string `yaml:"expires_at,omitempty"`
}

type OverridesFile struct {
	Overrides []OverrideDirective `yaml:"overrides"`
}
