package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures surfaced by the feed.
type ErrorKind string

const (
	KindUnauthenticated ErrorKind = "unauthenticated"
	KindUpstreamRead    ErrorKind = "upstream_read_failed"
	KindUpstreamWrite   ErrorKind = "upstream_write_failed"
	KindInvalidCursor   ErrorKind = "invalid_cursor"
	KindInvalidInput    ErrorKind = "invalid_input"
	KindInternal        ErrorKind = "internal"
)

// Error attaches a kind and operation name to an underlying error.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// E builds a kinded error.
func E(kind ErrorKind, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Invalid builds an invalid-input error with a plain message.
func Invalid(op, msg string) error {
	return &Error{Kind: KindInvalidInput, Op: op, Err: errors.New(msg)}
}

// KindOf returns the kind of the outermost kinded error in the chain.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var kinded *Error
	if errors.As(err, &kinded) {
		return kinded.Kind
	}
	return KindInternal
}
