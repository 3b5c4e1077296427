/*
Package engine drives an embedded JavaScript engine from Go.

A Runtime owns one engine instance. Values and handles (Object, Array,
Function, String, PropertyKey, BigInt) refer to that engine's heap and are
only usable through the Runtime that produced them:

	rt, err := engine.New(engine.NewConfigBuilder().EnableEval(false).Build())
	if err != nil {
		return err
	}
	defer rt.Close()

	v, err := rt.EvalWithResult("({answer: 42})", "")
	obj, ok, err := v.AsObject(rt)
	answer, err := obj.Get(rt, "answer")

# Handle Lifetime

Every operation takes the Runtime explicitly and checks that the handle
came from it and from its current engine. Handles outlive neither Close nor
Reset: using one afterwards returns a RuntimeError. Undefined, null,
boolean and number values carry no handle and work with any runtime.

# Concurrency

A Runtime is not safe for concurrent use. Entering one that is already
running an operation fails immediately with a RuntimeError. Pool shares a
fixed set of runtimes between goroutines.

# Scripts

Source can be evaluated directly (Eval, EvalWithResult), prepared once and
evaluated many times (Prepare, EvaluatePrepared), or compiled to a portable
container without a runtime (CompileToBytecode) and loaded later
(EvalBytecode). Failures are *jserror.Error values of a fixed set of kinds.
*/
package engine
