package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidState indicates a state vector with NaN or Inf components.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrParameterBounds indicates a parameter value is outside valid range.
	ErrParameterBounds = errors.New("dynamo: parameter out of valid bounds")

	// ErrDimensionMismatch indicates mismatched state/action dimensions.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch")

	// ErrInvalidAction indicates an action with NaN or Inf components.
	ErrInvalidAction = errors.New("dynamo: invalid action (NaN or Inf detected)")

	// ErrEpisodeDone is returned when stepping an episode that already ended.
	ErrEpisodeDone = errors.New("dynamo: episode is done, reset required")

	// ErrEpisodeFailed is returned when stepping an episode whose engine failed.
	ErrEpisodeFailed = errors.New("dynamo: episode aborted after engine failure, reset required")

	// ErrUnknownKind indicates a registry lookup for an unregistered name.
	ErrUnknownKind = errors.New("dynamo: unknown kind")
)

// SimulationError wraps an error with simulation context.
type SimulationError struct {
	Step    int
	Time    float64
	State   State
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}

// Bounds reports a parameter outside its valid range.
func Bounds(name string, value any) error {
	return fmt.Errorf("%w: %s=%v", ErrParameterBounds, name, value)
}
