package usecase

import (
	"errors"

	"ActivityFeed/internal/domain"
)

// Failure is the structured error every façade operation returns.
// Callers branch on Code and Recoverable rather than on Message.
type Failure struct {
	Code        domain.ErrorKind
	Message     string
	Recoverable bool
	Err         error
}

func (f *Failure) Error() string {
	return string(f.Code) + ": " + f.Message
}

func (f *Failure) Unwrap() error { return f.Err }

// AsFailure extracts a Failure from err.
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

var failureMessages = map[domain.ErrorKind]string{
	domain.KindUnauthenticated: "Sign in to see your feed.",
	domain.KindUpstreamRead:    "The feed could not be loaded. Try again.",
	domain.KindUpstreamWrite:   "Your change could not be saved. Try again.",
	domain.KindInvalidCursor:   "This page of the feed is no longer available. Refresh to continue.",
	domain.KindInternal:        "Something went wrong loading the feed.",
}

func toFailure(err error) *Failure {
	if f, ok := AsFailure(err); ok {
		return f
	}
	kind := domain.KindOf(err)
	msg := failureMessages[kind]
	if kind == domain.KindInvalidInput {
		var kinded *domain.Error
		if errors.As(err, &kinded) && kinded.Err != nil {
			msg = kinded.Err.Error()
		}
	}
	return &Failure{
		Code:        kind,
		Message:     msg,
		Recoverable: kind != domain.KindUnauthenticated,
		Err:         err,
	}
}
