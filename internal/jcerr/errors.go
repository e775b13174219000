// Package jcerr implements the kind-tagged error taxonomy judgecore uses to
// let callers distinguish syscall failures, bad input, and sandbox-internal
// failures from an ordinary contestant runtime error.
package jcerr

import "fmt"

// Kind identifies the category of a judgecore error.
type Kind int

const (
	// Io covers filesystem open/read/write failures (input/output/answer/
	// transcript files).
	Io Kind = iota
	// Syscall covers failures of fork/exec/pipe/epoll/setrlimit/dup2. Err
	// carries the underlying errno and Syscall names the failing call.
	Syscall
	// InvalidArgument covers malformed limits (soft > hard) or a missing
	// required path.
	InvalidArgument
	// ChildFailedPreExec means the bootstrap child terminated with the
	// reserved pre-exec status before it could exec the target.
	ChildFailedPreExec
	// SystemError covers a checker killed by signal, or any termination the
	// classifier cannot otherwise map.
	SystemError
)

func (k Kind) String() string {
	switch k {
	case Io:
		return "io"
	case Syscall:
		return "syscall"
	case InvalidArgument:
		return "invalid_argument"
	case ChildFailedPreExec:
		return "child_failed_pre_exec"
	case SystemError:
		return "system_error"
	default:
		return "unknown"
	}
}

// Error is a kind-tagged error. Syscall is the failing syscall name, set only
// for Kind == Syscall.
type Error struct {
	Kind    Kind
	Syscall string
	Err     error
}

func (e *Error) Error() string {
	if e.Syscall != "" {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Syscall, e.Err)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error { return e.Err }

// New wraps err under kind with no syscall annotation.
func New(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// Newf builds a new error from a format string.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// WrapSyscall builds a Syscall-kind error naming the failing call.
func WrapSyscall(name string, err error) *Error {
	return &Error{Kind: Syscall, Syscall: name, Err: err}
}

// Is reports whether err (or anything it wraps) carries the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	for err != nil {
		if je, ok := err.(*Error); ok {
			e = je
			break
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return e != nil && e.Kind == kind
}
