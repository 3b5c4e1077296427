// Package jserror defines the closed error taxonomy returned by jsbridge.
//
// Every failure raised by the embedded engine is caught at the boundary and
// converted into an *Error carrying one of six kinds:
//
//   - KindEvaluation: syntax errors during direct eval and any thrown exception
//   - KindCompilation: failures compiling source to bytecode
//   - KindPreparation: failures preparing source for repeated execution
//   - KindInvalidBytecode: buffers that fail the bytecode format check
//   - KindRuntime: failures creating, configuring or entering a runtime
//   - KindInternal: anything else
//
// Errors never hold engine values, so they may outlive the runtime that
// produced them.
//
// Example Usage:
//
//	_, err := rt.EvalWithResult("throw new Error('boom')", "")
//	if errors.Is(err, jserror.ErrEvaluation) {
//		log.Println(err)
//	}
package jserror
