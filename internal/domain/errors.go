package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Compare with errors.Is.
var (
	ErrValidation      = errors.New("validation error")
	ErrNotFound        = errors.New("not found")
	ErrPermission      = errors.New("permission denied")
	ErrConflict        = errors.New("conflict")
	ErrTransaction     = errors.New("transaction failed")
	ErrExternalService = errors.New("external service error")
)

// Error carries a kind, the failing operation and an optional cause.
type Error struct {
	Kind error
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	} else if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Op == "" {
		return fmt.Sprintf("%v: %s", e.Kind, msg)
	}
	return fmt.Sprintf("%s: %v: %s", e.Op, e.Kind, msg)
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func Validation(op, msg string) error {
	return &Error{Kind: ErrValidation, Op: op, Msg: msg}
}

func NotFound(entity string, id int64) error {
	return &Error{Kind: ErrNotFound, Op: entity, Msg: fmt.Sprintf("%s %d not found", entity, id)}
}

func Forbidden(op, msg string) error {
	return &Error{Kind: ErrPermission, Op: op, Msg: msg}
}

func Conflict(op, msg string, err error) error {
	return &Error{Kind: ErrConflict, Op: op, Msg: msg, Err: err}
}

func Transaction(op string, err error) error {
	return &Error{Kind: ErrTransaction, Op: op, Err: err}
}

func External(service string, err error) error {
	return &Error{Kind: ErrExternalService, Op: service, Err: err}
}

// IsKind reports whether err carries one of the domain error kinds.
func IsKind(err error) bool {
	var de *Error
	return errors.As(err, &de)
}
