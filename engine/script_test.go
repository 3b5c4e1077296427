package engine

import (
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/jsbridge/bytecode"
	"github.com/GriffinCanCode/jsbridge/internal/monitoring"
	"github.com/GriffinCanCode/jsbridge/jserror"
)

func TestBytecodeRoundTrip(t *testing.T) {
	sources := []string{
		"2 + 2",
		"'a' + 'b'",
		"[1, 2, 3].length",
		"(function () { return 6 * 7 })()",
		"var total = 0; for (var i = 1; i <= 10; i++) { total += i } total",
		"({x: 1}).x === 1",
		"null",
		"(function () { function inner() {} return inner.name })()",
		"var named = function () {}; named.name",
		"function declared() {}",
		"// only a comment\n1 + 1",
	}

	for _, optimize := range []bool{false, true} {
		for _, source := range sources {
			t.Run(fmt.Sprintf("optimize=%t/%s", optimize, source), func(t *testing.T) {
				direct := newRuntime(t, nil)
				want, err := direct.EvalWithResult(source, "")
				require.NoError(t, err)
				wantText, err := want.ToString(direct)
				require.NoError(t, err)

				bc, err := CompileToBytecode(source, "", optimize)
				require.NoError(t, err)
				assert.Equal(t, optimize, bc.Optimized())

				loaded := newRuntime(t, nil)
				got, err := loaded.EvalBytecodeWithResult(bc)
				require.NoError(t, err)
				gotText, err := got.ToString(loaded)
				require.NoError(t, err)

				assert.Equal(t, want.Kind(), got.Kind())
				assert.Equal(t, wantText, gotText)
			})
		}
	}
}

func TestOptimizedBytecodeKeepsNames(t *testing.T) {
	source := "globalThis.r = (function () { function inner() {} return inner.name })()"

	bc, err := CompileToBytecode(source, "names.js", true)
	require.NoError(t, err)

	rt := newRuntime(t, nil)
	require.NoError(t, rt.EvalBytecode(bc))
	assert.Equal(t, "inner", evalString(t, rt, "r"))
}

func TestEvalBytecodeDefinesGlobals(t *testing.T) {
	bc, err := CompileToBytecode("function square(x) { return x * x }", "lib.js", true)
	require.NoError(t, err)
	assert.True(t, bc.Optimized())

	rt := newRuntime(t, nil)
	require.NoError(t, rt.EvalBytecode(bc))
	assert.Equal(t, "49", evalString(t, rt, "square(7)"))
}

func TestIsBytecode(t *testing.T) {
	bc, err := CompileToBytecode("1", "", false)
	require.NoError(t, err)

	assert.True(t, IsBytecode(bc.Bytes()))
	assert.True(t, IsBytecode(bc.Bytes()), "classification is deterministic")
	assert.False(t, IsBytecode(nil))
	assert.False(t, IsBytecode([]byte("function f() {}")))
	assert.False(t, IsBytecode(make([]byte, 64)))
}

func TestPreparedScriptRepeatable(t *testing.T) {
	rt := newRuntime(t, nil)

	ps, err := rt.Prepare("2 + 2", "sum.js")
	require.NoError(t, err)
	assert.Equal(t, "sum.js", ps.URL())
	assert.NotEmpty(t, ps.Digest())
	assert.Contains(t, ps.ID().String(), "ps_")

	for i := 0; i < 5; i++ {
		v, err := rt.EvaluatePrepared(ps)
		require.NoError(t, err)
		assert.Equal(t, 4.0, v.AsNumber())
	}

	random, err := rt.Prepare("Math.random()", "")
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		v, err := rt.EvaluatePrepared(random)
		require.NoError(t, err)
		assert.True(t, v.IsNumber())
	}
}

func TestPreparedScriptThrowDoesNotPoison(t *testing.T) {
	rt := newRuntime(t, nil)

	ps, err := rt.Prepare("globalThis.flip = !globalThis.flip; if (flip) { throw new Error('odd call') } 'even call'", "")
	require.NoError(t, err)

	_, err = rt.EvaluatePrepared(ps)
	e := requireKind(t, err, jserror.KindEvaluation)
	assert.True(t, e.Contains("odd call"))

	v, err := rt.EvaluatePrepared(ps)
	require.NoError(t, err)
	text, err := v.ToString(rt)
	require.NoError(t, err)
	assert.Equal(t, "even call", text)
}

func TestPreparedScriptSurvivesReset(t *testing.T) {
	rt := newRuntime(t, nil)

	ps, err := rt.Prepare("typeof counter === 'undefined' ? 0 : counter", "")
	require.NoError(t, err)
	require.NoError(t, rt.Eval("var counter = 5", ""))
	require.NoError(t, rt.Reset())

	v, err := rt.EvaluatePrepared(ps)
	require.NoError(t, err)
	assert.Equal(t, 0.0, v.AsNumber())
}

func TestPreparedScriptConfigMismatch(t *testing.T) {
	rt := newRuntime(t, nil)
	ps, err := rt.Prepare("1 + 1", "")
	require.NoError(t, err)

	same := newRuntime(t, DefaultConfig())
	v, err := same.EvaluatePrepared(ps)
	require.NoError(t, err)
	assert.Equal(t, 2.0, v.AsNumber())

	other := newRuntime(t, NewConfigBuilder().EnableEval(false).Build())
	_, err = other.EvaluatePrepared(ps)
	e := requireKind(t, err, jserror.KindRuntime)
	assert.True(t, e.Contains("different runtime configuration"))

	_, err = rt.EvaluatePrepared(nil)
	requireKind(t, err, jserror.KindRuntime)
}

func TestErrorClassification(t *testing.T) {
	rt := newRuntime(t, nil)

	_, err := rt.EvalWithResult("throw new Error('boom')", "")
	e := requireKind(t, err, jserror.KindEvaluation)
	assert.True(t, e.Contains("boom"))

	_, err = rt.Prepare("this is invalid javascript", "")
	requireKind(t, err, jserror.KindPreparation)

	err = rt.EvalBytecode(bytecode.New([]byte("garbage bytes")))
	requireKind(t, err, jserror.KindInvalidBytecode)

	err = rt.Eval("this is invalid javascript", "")
	requireKind(t, err, jserror.KindEvaluation)

	_, err = CompileToBytecode("function (", "", false)
	requireKind(t, err, jserror.KindCompilation)

	err = rt.EvalBytecode(nil)
	requireKind(t, err, jserror.KindInvalidBytecode)
}

func TestPreparedScriptMayStillThrow(t *testing.T) {
	rt := newRuntime(t, nil)

	ps, err := rt.Prepare("undefinedFunction()", "")
	require.NoError(t, err)

	_, err = rt.EvaluatePrepared(ps)
	requireKind(t, err, jserror.KindEvaluation)
}

func TestCorruptedBytecode(t *testing.T) {
	bc, err := CompileToBytecode("40 + 2", "", false)
	require.NoError(t, err)

	data := bc.Bytes()
	data[len(data)/2] ^= 0xff
	require.True(t, IsBytecode(data), "header is intact")

	rt := newRuntime(t, nil)
	err = rt.EvalBytecode(bytecode.New(data))
	requireKind(t, err, jserror.KindInvalidBytecode)
}

func TestBytecodeThrowIsEvaluationError(t *testing.T) {
	bc, err := CompileToBytecode("throw new TypeError('from bytecode')", "", false)
	require.NoError(t, err)

	rt := newRuntime(t, nil)
	e := requireKind(t, rt.EvalBytecode(bc), jserror.KindEvaluation)
	assert.True(t, e.Contains("from bytecode"))
}

func TestGeneratorGateAppliesToEveryEntry(t *testing.T) {
	rt := newRuntime(t, NewConfigBuilder().EnableGenerators(false).Build())
	source := "function* g() { yield 1 }"

	_, err := rt.Prepare(source, "")
	requireKind(t, err, jserror.KindPreparation)

	bc, err := CompileToBytecode(source, "", false)
	require.NoError(t, err)
	requireKind(t, rt.EvalBytecode(bc), jserror.KindEvaluation)

	// Only entry source is checked; code built at run time is not.
	assert.Equal(t, "1", evalString(t, rt, "eval('(function* h() { yield 1 })().next().value')"))
}

func TestEvaluationMetrics(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	rt := newRuntime(t, nil, WithMetrics(m))

	require.NoError(t, rt.Eval("1", ""))
	requireKind(t, rt.Eval("throw 1", ""), jserror.KindEvaluation)

	ps, err := rt.Prepare("1", "")
	require.NoError(t, err)
	_, err = rt.EvaluatePrepared(ps)
	require.NoError(t, err)

	bc, err := CompileToBytecode("1", "", false)
	require.NoError(t, err)
	require.NoError(t, rt.EvalBytecode(bc))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Evaluations.WithLabelValues(monitoring.ModeEval, monitoring.StatusOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Evaluations.WithLabelValues(monitoring.ModeEval, "evaluation")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Evaluations.WithLabelValues(monitoring.ModePrepared, monitoring.StatusOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Evaluations.WithLabelValues(monitoring.ModeBytecode, monitoring.StatusOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PreparedScripts))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RuntimesActive))

	require.NoError(t, rt.Close())
	assert.Equal(t, 0.0, testutil.ToFloat64(m.RuntimesActive))
}
