package music

import "fmt"

// ConfigurationError reports a construction request that violates a model
// invariant: an unknown key signature, a tuplet of the wrong arity, a
// negative duration and so on.
type ConfigurationError struct {
	Msg string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Msg
}

func configErrorf(format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Msg: fmt.Sprintf(format, args...)}
}
