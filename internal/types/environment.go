package types

// Environment holds marker variable values for evaluating environment
// markers such as `python_version < '3.9'`.
type Environment map[string]string

// DefaultEnvironment returns the marker variables of a typical CPython
// on Linux. Callers overlay target-specific values on top.
func DefaultEnvironment() Environment {
	return Environment{
		"python_version":                 "3.12",
		"python_full_version":            "3.12.0",
		"implementation_name":            "cpython",
		"implementation_version":         "3.12.0",
		"platform_python_implementation": "CPython",
		"sys_platform":                   "linux",
		"platform_system":                "Linux",
		"platform_machine":               "x86_64",
		"os_name":                        "posix",
	}
}

// Merge returns a copy of the environment with overrides applied.
func (e Environment) Merge(overrides map[string]string) Environment {
	merged := Environment{}
	for key, value := range e {
		merged[key] = value
	}
	for key, value := range overrides {
		merged[key] = value
	}
	return merged
}
