package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Kind classifies the failures the booking flows surface to a user. None of
// them are fatal to the process; every failure resolves to a message and a
// return to an editable state.
type Kind string

const (
	KindValidation Kind = "validation"
	KindConflict   Kind = "conflict"
	KindTransport  Kind = "transport"
	KindAuth       Kind = "auth"
	KindForbidden  Kind = "forbidden"
)

// Error carries a user-facing failure with an associated kind. Code is the
// HTTP status for transport and auth kinds. Date is the first conflicting
// calendar day for conflict errors.
type Error struct {
	Kind    Kind
	Code    int
	Message string
	Date    string
}

func (e *Error) Error() string {
	return e.Message
}

// Validation builds an error caught before any network call fires.
func Validation(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// Conflict reports the first candidate day already booked by another
// reservation.
func Conflict(date string) *Error {
	return &Error{
		Kind:    KindConflict,
		Date:    date,
		Message: fmt.Sprintf("date %s is already booked for this room", date),
	}
}

// Transport wraps a non-2xx server response.
func Transport(code int, message string) *Error {
	if message == "" {
		message = http.StatusText(code)
	}
	return &Error{Kind: KindTransport, Code: code, Message: message}
}

// Unauthorized marks a 401; the session is invalidated globally when one of
// these comes back.
func Unauthorized(message string) *Error {
	if message == "" {
		message = "session expired, please sign in again"
	}
	return &Error{Kind: KindAuth, Code: http.StatusUnauthorized, Message: message}
}

// Forbidden marks a 403; surfaced as an authorization error without forcing
// a sign-out.
func Forbidden(message string) *Error {
	if message == "" {
		message = "you are not allowed to perform this action"
	}
	return &Error{Kind: KindForbidden, Code: http.StatusForbidden, Message: message}
}

// IsKind reports whether err (or anything it wraps) is an Error of kind k.
func IsKind(err error, k Kind) bool {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind == k
	}
	return false
}

// AsError unwraps err into *Error when possible.
func AsError(err error) (*Error, bool) {
	var e *Error
	if stderrors.As(err, &e) {
		return e, true
	}
	return nil, false
}
