package phase

import (
	"errors"
	"fmt"
)

// Code categorizes configuration errors.
type Code string

const (
	// CodeDuplicatePhase indicates a phase name is already registered.
	CodeDuplicatePhase Code = "DUPLICATE_PHASE"

	// CodeUnknownPhase indicates a phase name or handle does not resolve.
	CodeUnknownPhase Code = "UNKNOWN_PHASE"

	// CodeBadEventSource indicates an event source matches none of the
	// supported shapes (see Scheduler.Phase).
	CodeBadEventSource Code = "BAD_EVENT_SOURCE"

	// CodeNilSystem indicates a nil callable was passed to On.
	CodeNilSystem Code = "NIL_SYSTEM"

	// CodeCycleDetected indicates the phase dependency graph contains a
	// cycle and cannot be flattened.
	CodeCycleDetected Code = "CYCLE_DETECTED"

	// CodeInvariant indicates a registered handle had no attached state
	// record. This is an internal invariant breach, not a caller error.
	CodeInvariant Code = "INVARIANT_VIOLATION"
)

// ConfigError is a structured configuration error. Configuration errors
// stop the operation that raised them; no partial topology mutation is
// left behind.
type ConfigError struct {
	// Code identifies the error category.
	Code Code

	// Message is a human-readable description.
	Message string

	// Phase names the phase involved, when one is known.
	Phase string

	// System names the system involved, when one is known.
	System string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	switch {
	case e.Phase != "" && e.System != "":
		return fmt.Sprintf("%s: %s (phase=%s, system=%s)", e.Code, e.Message, e.Phase, e.System)
	case e.Phase != "":
		return fmt.Sprintf("%s: %s (phase=%s)", e.Code, e.Message, e.Phase)
	case e.System != "":
		return fmt.Sprintf("%s: %s (system=%s)", e.Code, e.Message, e.System)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

// IsCycleError reports whether err is a cycle-detection error.
// Uses errors.As to handle wrapped errors.
func IsCycleError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce) && ce.Code == CodeCycleDetected
}

// IsInvariantError reports whether err is an internal invariant breach.
// Uses errors.As to handle wrapped errors.
func IsInvariantError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce) && ce.Code == CodeInvariant
}

func newDuplicatePhaseError(name string) *ConfigError {
	return &ConfigError{
		Code:    CodeDuplicatePhase,
		Message: "phase name already registered",
		Phase:   name,
	}
}

func newUnknownPhaseError(name string) *ConfigError {
	return &ConfigError{
		Code:    CodeUnknownPhase,
		Message: "phase not found",
		Phase:   name,
	}
}

func newCycleError(name string) *ConfigError {
	return &ConfigError{
		Code:    CodeCycleDetected,
		Message: "phase dependency cycle detected",
		Phase:   name,
	}
}

func newInvariantError(system string) *ConfigError {
	return &ConfigError{
		Code:    CodeInvariant,
		Message: "registered system has no state record",
		System:  system,
	}
}
