package download

import (
	"errors"
	"fmt"
)

var (
	// ErrAbort is returned by a progress hook to make the engine stop the transfer
	ErrAbort = errors.New("download aborted by user")

	// ErrAlreadyStarted is returned when Start is called twice on the same task
	ErrAlreadyStarted = errors.New("task already started")

	// ErrTaskFinished is returned when Start is called on a task that already terminated
	ErrTaskFinished = errors.New("task already finished")

	ErrTaskNotFound  = errors.New("task not found")
	ErrTaskNotActive = errors.New("task is not active")
	ErrTaskActive    = errors.New("task is still active")
)

// ConfigurationError reports a request that cannot be mapped to engine options
type ConfigurationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// EngineError wraps a failure raised by the engine. Its message is the engine's, verbatim.
type EngineError struct {
	Err error
}

func (e *EngineError) Error() string { return e.Err.Error() }

func (e *EngineError) Unwrap() error { return e.Err }
