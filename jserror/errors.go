package jserror

import (
	"errors"
	"fmt"
	"strings"
)

// Kind identifies a failure class.
type Kind int

const (
	KindEvaluation Kind = iota
	KindCompilation
	KindPreparation
	KindInvalidBytecode
	KindRuntime
	KindInternal
)

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case KindEvaluation:
		return "evaluation"
	case KindCompilation:
		return "compilation"
	case KindPreparation:
		return "preparation"
	case KindInvalidBytecode:
		return "invalid_bytecode"
	case KindRuntime:
		return "runtime"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

func (k Kind) prefix() string {
	switch k {
	case KindEvaluation:
		return "JavaScript evaluation error"
	case KindCompilation:
		return "JavaScript compilation error"
	case KindPreparation:
		return "JavaScript preparation error"
	case KindInvalidBytecode:
		return "Invalid bytecode"
	case KindRuntime:
		return "Runtime error"
	default:
		return "Internal error"
	}
}

// Kind sentinels for use with errors.Is.
var (
	ErrEvaluation      = &Error{Kind: KindEvaluation}
	ErrCompilation     = &Error{Kind: KindCompilation}
	ErrPreparation     = &Error{Kind: KindPreparation}
	ErrInvalidBytecode = &Error{Kind: KindInvalidBytecode}
	ErrRuntime         = &Error{Kind: KindRuntime}
	ErrInternal        = &Error{Kind: KindInternal}
)

// Error is a classified failure with a human-readable message.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message == "" {
		return e.Kind.prefix()
	}
	return e.Kind.prefix() + ": " + e.Message
}

// Is reports whether target is an *Error of the same kind. Sentinels match
// any message.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || e == nil || t == nil {
		return false
	}
	return e.Kind == t.Kind && (t.Message == "" || t.Message == e.Message)
}

// Contains reports whether the message contains needle.
func (e *Error) Contains(needle string) bool {
	return e != nil && strings.Contains(e.Message, needle)
}

// Evaluation creates an evaluation error
func Evaluation(format string, args ...any) *Error {
	return newError(KindEvaluation, format, args...)
}

// Compilation creates a compilation error
func Compilation(format string, args ...any) *Error {
	return newError(KindCompilation, format, args...)
}

// Preparation creates a preparation error
func Preparation(format string, args ...any) *Error {
	return newError(KindPreparation, format, args...)
}

// InvalidBytecode creates an invalid bytecode error
func InvalidBytecode(format string, args ...any) *Error {
	return newError(KindInvalidBytecode, format, args...)
}

// Runtime creates a runtime error
func Runtime(format string, args ...any) *Error {
	return newError(KindRuntime, format, args...)
}

// Internal creates an internal error
func Internal(format string, args ...any) *Error {
	return newError(KindInternal, format, args...)
}

func newError(kind Kind, format string, args ...any) *Error {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	return &Error{Kind: kind, Message: msg}
}

// KindOf returns the kind of err and whether err carries one.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) && e != nil {
		return e.Kind, true
	}
	return KindInternal, false
}
