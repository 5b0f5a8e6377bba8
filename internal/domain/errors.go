package domain

import "fmt"

// ErrorKind classifies a failure for the HTTP boundary. Handlers map kinds
// to status codes; everything a collaborator throws collapses into
// KindInternal so no dependency detail reaches the caller.
type ErrorKind string

const (
	KindValidation ErrorKind = "VALIDATION"
	KindNotFound   ErrorKind = "NOT_FOUND"
	KindInternal   ErrorKind = "INTERNAL"
)

// Error carries a kind, the fixed user-visible message, and the wrapped
// cause for logging.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ValidationError reports missing or malformed client input.
func ValidationError(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// NotFoundError reports a referenced user that does not exist.
func NotFoundError(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// InternalError wraps a dependency failure behind a fixed message.
func InternalError(err error) *Error {
	return &Error{Kind: KindInternal, Message: "Internal server error.", Err: err}
}
