// Package apperr defines the typed failures returned by the CRUD operations.
//
// Every failure carries two messages: User is shown to the caller
// (messageUSR), Dev is diagnostic detail (messageDEV). Kind decides the HTTP
// status.
package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies a failure.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindUnsupportedBackend
)

// String returns the error code used in protocol-level notifications.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "Validation-Error"
	case KindNotFound:
		return "Not-Found"
	case KindConflict:
		return "Conflict"
	case KindUnsupportedBackend:
		return "Unsupported-Backend"
	}
	return "Internal-Server-Error"
}

// Status maps the kind to an HTTP status code.
func (k Kind) Status() int {
	switch k {
	case KindValidation, KindUnsupportedBackend:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// Error is a classified failure.
type Error struct {
	Kind Kind
	User string
	Dev  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Dev != "":
		return e.Dev
	case e.Err != nil:
		return e.Err.Error()
	}
	return e.User
}

func (e *Error) Unwrap() error { return e.Err }

// Status returns the HTTP status for the failure.
func (e *Error) Status() int { return e.Kind.Status() }

func Validation(user, dev string) *Error {
	return &Error{Kind: KindValidation, User: user, Dev: dev}
}

func NotFound(user, dev string) *Error {
	return &Error{Kind: KindNotFound, User: user, Dev: dev}
}

func Conflict(user, dev string) *Error {
	return &Error{Kind: KindConflict, User: user, Dev: dev}
}

func UnsupportedBackend(dbServer string) *Error {
	return &Error{
		Kind: KindUnsupportedBackend,
		User: "Unsupported DBServer: " + dbServer,
		Dev:  "no backend is registered for DBServer=" + dbServer,
	}
}

// Internal wraps an unexpected error. The developer message is the cause.
func Internal(user string, err error) *Error {
	e := &Error{Kind: KindInternal, User: user, Err: err}
	if err != nil {
		e.Dev = err.Error()
	}
	return e
}

// As returns err as an *Error, wrapping anything unclassified as Internal
// with the given user message.
func As(err error, userDefault string) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal(userDefault, err)
}
