package models

import (
	"errors"
	"fmt"
)

// ErrorKind classifies core failures so callers can branch on cause.
type ErrorKind string

const (
	KindDataUnavailable     ErrorKind = "data_unavailable"
	KindInsufficientSamples ErrorKind = "insufficient_samples"
	KindTrainingFailure     ErrorKind = "training_failure"
	KindPersistenceFailure  ErrorKind = "persistence_failure"
)

var (
	ErrUnsupportedSymbol = errors.New("unsupported symbol")
	ErrModelNotFound     = errors.New("model not found")
)

// Error is the tagged error returned by the simulation core.
type Error struct {
	Kind   ErrorKind
	Op     string
	Symbol string
	Err    error
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Symbol != "" {
		msg += " [" + e.Symbol + "]"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// NewError builds a tagged error.
func NewError(kind ErrorKind, op, symbol string, err error) *Error {
	return &Error{Kind: kind, Op: op, Symbol: symbol, Err: err}
}

// Errorf builds a tagged error with a formatted cause.
func Errorf(kind ErrorKind, op, symbol, format string, a ...interface{}) *Error {
	return NewError(kind, op, symbol, fmt.Errorf(format, a...))
}

// KindOf returns the kind of the first tagged error in err's chain, or "".
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}
