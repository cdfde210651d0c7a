package domain

import "fmt"

// DomainError is the single error type surfaced across plan-load and
// plan-runtime boundaries. Internal invariant violations are reported
// separately via Invariant, since nothing handles them: they halt the
// run.
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError builds a DomainError.
func NewDomainError(code, message string, err error) *DomainError {
	return &DomainError{Code: code, Message: message, Err: err}
}

// Plan-load / plan-runtime error codes.
const (
	ErrCodeInvalidInput      = "INVALID_INPUT"
	ErrCodeValidationFailed  = "VALIDATION_FAILED"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeAlreadyExists     = "ALREADY_EXISTS"
	ErrCodeInvalidState      = "INVALID_STATE"
	ErrCodeInvalidType       = "INVALID_TYPE"
	ErrCodeOutOfScope        = "OUT_OF_SCOPE"
	ErrCodeInvariantViolated = "INVARIANT_VIOLATED"
)

// Invariant is an internal error: activation-count underflow, releasing
// an unheld mutex, an illegal state transition for a node's type,
// enqueueing a DELETE-marked node. These are unrecoverable: nothing in
// the executive recovers the panic this wraps, so it halts the run.
type Invariant struct {
	Message string
}

func (e *Invariant) Error() string {
	return "invariant violated: " + e.Message
}

// Fail panics with an Invariant. Nothing in the executive recovers it.
func Fail(format string, args ...any) {
	panic(&Invariant{Message: fmt.Sprintf(format, args...)})
}
