package fieldmap

import "fmt"

// ConfigError reports a malformed mapping, unique-field or extra-value string.
// It is fatal for the whole run.
type ConfigError struct {
	Kind   string // "field mapping", "unique field", "extra value", ...
	Spec   string
	Reason string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Spec == "" {
		return fmt.Sprintf("malformed %s: %s", e.Kind, e.Reason)
	}
	return fmt.Sprintf("malformed %s %q: %s", e.Kind, e.Spec, e.Reason)
}

func malformed(kind, spec, reason string) *ConfigError {
	return &ConfigError{Kind: kind, Spec: spec, Reason: reason}
}
