package lifecycle

import (
	"errors"
	"fmt"
)

// Error kinds. Callers match them with errors.Is.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrStore      = errors.New("store failure")
)

// Error carries a short user-facing title and message alongside its kind.
// Err, when set, is the underlying cause.
type Error struct {
	Kind  error
	Title string
	Msg   string
	Err   error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	s := e.Kind.Error()
	if e.Msg != "" {
		s = fmt.Sprintf("%s: %s", s, e.Msg)
	}
	if e.Err != nil {
		s = fmt.Sprintf("%s: %v", s, e.Err)
	}
	return s
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func invalid(title, msg string, cause error) error {
	return &Error{Kind: ErrValidation, Title: title, Msg: msg, Err: cause}
}

func notFound(title string) error {
	return &Error{Kind: ErrNotFound, Title: title}
}

func conflict(title, msg string) error {
	return &Error{Kind: ErrConflict, Title: title, Msg: msg}
}

// storeErr wraps a repository failure. ErrNotFound causes keep their kind so
// a record deleted mid-request still reads as not found.
func storeErr(title string, err error) error {
	var le *Error
	if errors.As(err, &le) {
		return err
	}
	if errors.Is(err, ErrNotFound) {
		return &Error{Kind: ErrNotFound, Title: title, Err: err}
	}
	return &Error{Kind: ErrStore, Title: title, Msg: "changes were not saved, please retry", Err: err}
}
