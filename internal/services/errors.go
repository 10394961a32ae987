package services

import (
	"errors"
	"fmt"
)

// ErrorKind is the closed taxonomy of engine failures. Handlers map kinds to
// HTTP statuses; raw store errors never cross the service boundary.
type ErrorKind string

const (
	KindValidation          ErrorKind = "VALIDATION"
	KindNotFound            ErrorKind = "NOT_FOUND"
	KindInvalidState        ErrorKind = "INVALID_STATE"
	KindInsufficientQuota   ErrorKind = "INSUFFICIENT_QUOTA"
	KindInsufficientBalance ErrorKind = "INSUFFICIENT_BALANCE"
	KindOutOfStock          ErrorKind = "OUT_OF_STOCK"
	KindForbidden           ErrorKind = "FORBIDDEN"
	KindEmptySet            ErrorKind = "EMPTY_SET"
	KindConflict            ErrorKind = "CONFLICT"
)

// Error is a typed engine failure with a stable kind and a human-readable
// message.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the error kind, if err is an engine error.
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// IsKind reports whether err is an engine error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
