package compiler

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/jsbridge/bytecode"
	"github.com/GriffinCanCode/jsbridge/jserror"
)

func TestCompileProducesBytecode(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		optimize bool
	}{
		{"simple", "var x = 2 + 2;", false},
		{"optimized", "function add(a, b) { return a + b; }\nvar total = add(1, 2);", true},
		{"generators allowed by default", "function* g() { yield 1; }", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bc, err := Compile(tt.source, "test.js", tt.optimize)
			require.NoError(t, err)
			assert.True(t, bytecode.IsBytecode(bc.Bytes()))
			assert.Equal(t, tt.optimize, bc.Optimized())

			module, err := bytecode.Decode(bc)
			require.NoError(t, err)
			assert.Equal(t, "test.js", module.URL)
			assert.NotEmpty(t, module.Source)
		})
	}
}

func TestCompileDefaultURL(t *testing.T) {
	bc, err := Compile("1 + 1", "", false)
	require.NoError(t, err)

	module, err := bytecode.Decode(bc)
	require.NoError(t, err)
	assert.Equal(t, DefaultURL, module.URL)
}

func TestCompileOptimizeShrinks(t *testing.T) {
	source := `
		// a comment that should disappear
		function longFunctionName(firstArgument, secondArgument) {
			var localVariable = firstArgument + secondArgument;
			return localVariable;
		}
		var result = longFunctionName(1, 2);
	`
	plain, err := Transform(source, "x.js", false, DefaultFeatures())
	require.NoError(t, err)
	optimized, err := Transform(source, "x.js", true, DefaultFeatures())
	require.NoError(t, err)

	assert.Less(t, len(optimized), len(plain))
	assert.NotContains(t, optimized, "a comment")
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		features Features
	}{
		{"syntax", "this is invalid javascript", DefaultFeatures()},
		{"unbalanced", "function f( {", DefaultFeatures()},
		{"generators disabled", "function* g() { yield 1; }", Features{Generators: false}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.source, "bad.js", false, WithFeatures(tt.features))
			require.Error(t, err)
			assert.True(t, errors.Is(err, jserror.ErrCompilation), "got %v", err)
		})
	}
}

func TestCheck(t *testing.T) {
	assert.NoError(t, Check("function* g() {}", "x.js", DefaultFeatures()))
	assert.NoError(t, Check("var x = 1;", "x.js", Features{Generators: false}))

	err := Check("function* g() {}", "x.js", Features{Generators: false})
	require.Error(t, err)

	var syn *SyntaxError
	require.True(t, errors.As(err, &syn))
	assert.Equal(t, "x.js", syn.URL)
	require.NotEmpty(t, syn.Messages)
	assert.Equal(t, 1, syn.Messages[0].Line)
	assert.Contains(t, err.Error(), "SyntaxError")
}
