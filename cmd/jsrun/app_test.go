package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jsrun(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	args = append([]string{"-log-level", "error"}, args...)
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func writeScript(t *testing.T, dir, name, source string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(source), 0o600))
	return path
}

func TestEval(t *testing.T) {
	code, out, _ := jsrun(t, "eval", "1 + 2")
	assert.Equal(t, exitOK, code)
	assert.Equal(t, "3\n", out)

	code, _, errOut := jsrun(t, "eval", "throw new RangeError('nope')")
	assert.Equal(t, exitFailed, code)
	assert.Contains(t, errOut, "nope")
}

func TestUsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no command", nil},
		{"unknown command", []string{"frobnicate"}},
		{"eval without expression", []string{"eval"}},
		{"run without files", []string{"run"}},
		{"prepare with zero runs", []string{"prepare", "-n", "0", "x.js"}},
		{"compile without patterns", []string{"compile"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, _ := jsrun(t, tt.args...)
			assert.Equal(t, exitUsage, code)
		})
	}
}

func TestRunFiles(t *testing.T) {
	dir := t.TempDir()
	a := writeScript(t, dir, "a.js", "var x = 40; x + 2")
	b := writeScript(t, dir, "b.js", "'hello'.toUpperCase()")

	code, out, _ := jsrun(t, "run", a)
	assert.Equal(t, exitOK, code)
	assert.Equal(t, "42\n", out)

	code, out, _ = jsrun(t, "run", a, b)
	assert.Equal(t, exitOK, code)
	assert.Equal(t, a+": 42\n"+b+": HELLO\n", out)
}

func TestCompileThenRunBytecode(t *testing.T) {
	dir := t.TempDir()
	src := writeScript(t, dir, "main.js", "var x = 40; x + 2")
	outDir := filepath.Join(dir, "build")

	code, out, _ := jsrun(t, "compile", "-out", outDir, filepath.Join(dir, "**", "*.js"))
	require.Equal(t, exitOK, code)

	compiled := filepath.Join(outDir, "main"+bytecodeExt)
	assert.Equal(t, compiled+"\n", out)
	assert.FileExists(t, compiled)

	code, out, _ = jsrun(t, "run", compiled)
	assert.Equal(t, exitOK, code)
	assert.Equal(t, "42\n", out)

	// Without -out the container lands next to its source.
	code, _, _ = jsrun(t, "compile", src)
	require.Equal(t, exitOK, code)
	assert.FileExists(t, filepath.Join(dir, "main"+bytecodeExt))
}

func TestCompileNoMatches(t *testing.T) {
	code, _, errOut := jsrun(t, "compile", filepath.Join(t.TempDir(), "*.js"))
	assert.Equal(t, exitFailed, code)
	assert.Contains(t, errOut, "no files matched")
}

func TestCompileRespectsConfig(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "gen.js", "function* g() { yield 1 }")
	t.Setenv("JSRT_RUNTIME_ENABLE_GENERATORS", "false")

	code, _, errOut := jsrun(t, "compile", filepath.Join(dir, "gen.js"))
	assert.Equal(t, exitFailed, code)
	assert.NotEmpty(t, errOut)
}

func TestPrepare(t *testing.T) {
	dir := t.TempDir()
	path := writeScript(t, dir, "p.js", "[1, 2, 3].map(function (n) { return n * 2 }).join(',')")

	code, out, _ := jsrun(t, "prepare", "-n", "3", path)
	assert.Equal(t, exitOK, code)
	assert.Equal(t, strings.Repeat("2,4,6\n", 3), out)
}

func TestCheck(t *testing.T) {
	dir := t.TempDir()
	good := writeScript(t, dir, "good.js", "var a = 1;")
	bad := writeScript(t, dir, "bad.js", "var = ;")

	code, out, _ := jsrun(t, "check", good)
	assert.Equal(t, exitOK, code)
	assert.Equal(t, good+": ok\n", out)

	code, out, errOut := jsrun(t, "check", good, bad)
	assert.Equal(t, exitFailed, code)
	assert.Contains(t, out, good+": ok")
	assert.Contains(t, out, bad+": ")
	assert.Contains(t, errOut, "1 of 2 files failed")
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeScript(t, dir, "jsrun.toml", "[runtime]\nenable_eval = false\n")

	code, out, _ := jsrun(t, "-config", cfgPath, "eval",
		"(function () { try { eval('1') } catch (e) { return e.name } })()")
	assert.Equal(t, exitOK, code)
	assert.Equal(t, "EvalError\n", out)

	code, _, _ = jsrun(t, "-config", filepath.Join(dir, "missing.yaml"), "eval", "1")
	assert.Equal(t, exitUsage, code)
}
