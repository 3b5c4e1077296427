package jserror

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dop251/goja"
)

// Op names the boundary operation a failure happened in. It decides the kind
// for failures whose class is fixed by the stage alone.
type Op int

const (
	OpEval Op = iota
	OpPrepare
	OpEvaluatePrepared
	OpCompile
	OpDecodeBytecode
	OpRunBytecode
	OpCall
	OpAccess
	OpCreateRuntime
)

// String returns the string representation of the operation
func (o Op) String() string {
	switch o {
	case OpEval:
		return "eval"
	case OpPrepare:
		return "prepare"
	case OpEvaluatePrepared:
		return "evaluate_prepared"
	case OpCompile:
		return "compile"
	case OpDecodeBytecode:
		return "decode_bytecode"
	case OpRunBytecode:
		return "run_bytecode"
	case OpCall:
		return "call"
	case OpAccess:
		return "access"
	case OpCreateRuntime:
		return "create_runtime"
	default:
		return "unknown"
	}
}

// Translate converts a failure raised by the engine during op into the
// taxonomy. Already classified errors pass through unchanged.
func Translate(op Op, err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}

	msg := Describe(err)
	switch op {
	case OpPrepare:
		return &Error{Kind: KindPreparation, Message: msg}
	case OpCompile:
		return &Error{Kind: KindCompilation, Message: msg}
	case OpDecodeBytecode:
		return &Error{Kind: KindInvalidBytecode, Message: msg}
	case OpCreateRuntime:
		return &Error{Kind: KindRuntime, Message: msg}
	}
	return &Error{Kind: ClassifyMessage(msg), Message: msg}
}

// Recovered converts a value recovered from a panic inside the engine. JS
// exceptions thrown through Go frames arrive this way and keep their class.
func Recovered(op Op, x any) *Error {
	switch v := x.(type) {
	case *goja.Exception:
		return Translate(op, v)
	case *Error:
		return v
	case error:
		return &Error{Kind: KindInternal, Message: "engine panic: " + v.Error()}
	default:
		return &Error{Kind: KindInternal, Message: fmt.Sprintf("engine panic: %v", x)}
	}
}

// Describe renders an engine failure the way the boundary reports it: thrown
// values are tagged JSError, compiler rejections "Compiling JS failed".
func Describe(err error) string {
	var ex *goja.Exception
	if errors.As(err, &ex) {
		return "JSError: " + ex.Error()
	}
	var syn *goja.CompilerSyntaxError
	if errors.As(err, &syn) {
		return "Compiling JS failed: " + syn.Error()
	}
	var ref *goja.CompilerReferenceError
	if errors.As(err, &ref) {
		return "Compiling JS failed: " + ref.Error()
	}
	return "Error: " + err.Error()
}

// ClassifyMessage is the only place that inspects message wording. Engine
// upgrades that change wording only need this function revisited.
func ClassifyMessage(msg string) Kind {
	switch {
	case strings.Contains(msg, "JSError"):
		return KindEvaluation
	case strings.Contains(msg, "Compiling JS failed"),
		strings.Contains(msg, "SyntaxError"),
		strings.Contains(msg, "compilation"),
		strings.Contains(msg, "Failed to compile"),
		strings.Contains(msg, "expected"):
		return KindEvaluation
	case strings.Contains(msg, "bytecode"):
		return KindInvalidBytecode
	default:
		return KindInternal
	}
}
