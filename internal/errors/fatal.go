package errors

import (
	"errors"
	"fmt"
)

// Kind classifies a fatalError per the run's error handling policy:
// Usage and Configuration abort the run before any work is attempted
// or as soon as detected; Permanent aborts an in-progress run.
type Kind int

const (
	// KindConfiguration is an unreachable prefix file, malformed URI,
	// or similar setup failure. Exit code 1.
	KindConfiguration Kind = iota
	// KindUsage is a CLI/flag validation failure. Exit code 2.
	KindUsage
	// KindPermanent is a store error (authorization, missing bucket)
	// that aborts the whole run. Exit code 1.
	KindPermanent
)

// fatalError is an error that should be printed to the user, then the program
// should exit with an error code.
type fatalError struct {
	kind Kind
	msg  string
	err  error // Underlying error
}

func (e *fatalError) Error() string {
	return e.msg
}

func (e *fatalError) Unwrap() error {
	return e.err
}

// IsFatal returns true if err is a fatal message that should be printed to the
// user. Then, the program should exit.
func IsFatal(err error) bool {
	var fatal *fatalError
	return errors.As(err, &fatal)
}

// GetKind returns the Kind of err if it is a fatal error, and
// KindConfiguration (the safe default: exit 1) otherwise.
func GetKind(err error) Kind {
	var fatal *fatalError
	if errors.As(err, &fatal) {
		return fatal.kind
	}
	return KindConfiguration
}

// Fatal returns a configuration-fault error that is marked fatal.
func Fatal(s string) error {
	return Wrap(&fatalError{kind: KindConfiguration, msg: s}, "Fatal")
}

// Fatalf returns a configuration-fault error that is marked fatal,
// preserving an underlying error if passed.
func Fatalf(s string, data ...interface{}) error {
	return wrapFatal(KindConfiguration, s, data...)
}

// Usage returns a CLI/flag validation error. Exit code 2.
func Usage(s string) error {
	return Wrap(&fatalError{kind: KindUsage, msg: s}, "Fatal")
}

// Usagef returns a CLI/flag validation error. Exit code 2.
func Usagef(s string, data ...interface{}) error {
	return wrapFatal(KindUsage, s, data...)
}

// Permanent returns a store error (authorization, missing bucket) that
// aborts the whole run. Exit code 1.
func Permanent(s string) error {
	return Wrap(&fatalError{kind: KindPermanent, msg: s}, "Fatal")
}

// Permanentf returns a store error that aborts the whole run.
func Permanentf(s string, data ...interface{}) error {
	return wrapFatal(KindPermanent, s, data...)
}

func wrapFatal(kind Kind, s string, data ...interface{}) error {
	// Use the last error found.
	var underlyingErr error
	for i := len(data) - 1; i >= 0; i-- {
		if err, ok := data[i].(error); ok {
			underlyingErr = err
			break
		}
	}

	msg := fmt.Sprintf(s, data...)

	fatal := &fatalError{
		kind: kind,
		msg:  msg,
		err:  underlyingErr,
	}

	return Wrap(fatal, "Fatal")
}
