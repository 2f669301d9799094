package session

import (
	"errors"
	"fmt"
)

// ErrInvalidInput rejects empty or malformed candidate input. The
// session state is unchanged and the caller may retry.
var ErrInvalidInput = errors.New("invalid input")

// ErrOperationInFlight is returned when a call arrives while another
// operation is being processed for the same session. One operation per
// session at a time; callers retry after the in-flight call returns.
var ErrOperationInFlight = errors.New("operation already in flight for this session")

// ConfigurationError aborts session creation. Fatal to New and Start,
// never seen afterwards.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("session configuration: %s", e.Reason)
}

// InvalidStateError is returned when an operation is called in a state
// that does not accept it.
type InvalidStateError struct {
	Op    string
	State State
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s not valid in state %s", e.Op, e.State)
}

// EvaluationUnavailableError signals that the evaluator kept failing
// after retries. The session is suspended, the pending answer is not
// consumed, and Resume makes it retryable.
type EvaluationUnavailableError struct {
	Err error
}

func (e *EvaluationUnavailableError) Error() string {
	return fmt.Sprintf("evaluation unavailable, session suspended: %v", e.Err)
}

func (e *EvaluationUnavailableError) Unwrap() error {
	return e.Err
}

// StorageError reports a persistence failure at the terminal
// transition. It accompanies a valid completed turn: the in-memory
// session is intact and the caller decides whether to retry the save.
type StorageError struct {
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("session storage: %v", e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
