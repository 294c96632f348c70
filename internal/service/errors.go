package service

import (
	"errors"
	"fmt"
)

// Error kinds. Services wrap one of these with a human-readable message;
// handlers map the kind to an HTTP status with errors.Is.
var (
	ErrValidation          = errors.New("validation error")
	ErrNotFound            = errors.New("not found")
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrDuplicate           = errors.New("duplicate")
	ErrInUse               = errors.New("in use")
	ErrIDExhausted         = errors.New("id generation exhausted")
)

// kindError carries a user-facing message while still matching its kind.
type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

func newError(kind error, format string, args ...any) error {
	return &kindError{kind: kind, msg: fmt.Sprintf(format, args...)}
}
