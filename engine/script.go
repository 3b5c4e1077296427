package engine

import (
	"github.com/dop251/goja"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/jsbridge/bytecode"
	"github.com/GriffinCanCode/jsbridge/compiler"
	"github.com/GriffinCanCode/jsbridge/internal/monitoring"
	"github.com/GriffinCanCode/jsbridge/internal/shared/hash"
	"github.com/GriffinCanCode/jsbridge/internal/shared/id"
	"github.com/GriffinCanCode/jsbridge/internal/shared/utils"
	"github.com/GriffinCanCode/jsbridge/jserror"
)

// DefaultEvalURL names evaluated source that was given no url.
const DefaultEvalURL = "eval"

// PreparedScript is source compiled once for repeated evaluation. It is
// immutable and may be shared; it can only be evaluated by runtimes built
// from a configuration identical to the one that prepared it.
type PreparedScript struct {
	id          id.ScriptID
	url         string
	digest      string
	fingerprint string
	program     *goja.Program
}

// ID returns the script identifier used in logs.
func (p *PreparedScript) ID() id.ScriptID { return p.id }

// URL returns the url the script was prepared under.
func (p *PreparedScript) URL() string { return p.url }

// Digest returns a hash of the prepared source.
func (p *PreparedScript) Digest() string { return p.digest }

// Eval runs source and discards the result.
func (r *Runtime) Eval(source, url string) error {
	_, err := r.EvalWithResult(source, url)
	return err
}

// EvalWithResult runs source and returns its completion value. Syntax
// errors and thrown exceptions are EvaluationErrors.
func (r *Runtime) EvalWithResult(source, url string) (Value, error) {
	if url == "" {
		url = DefaultEvalURL
	}
	var out Value
	timer := monitoring.NewTimer(r.metrics(), monitoring.ModeEval)
	err := r.run(jserror.OpEval, func(vm *goja.Runtime) error {
		if err := r.gate(source, url); err != nil {
			return err
		}
		res, err := vm.RunScript(url, source)
		if err != nil {
			return err
		}
		out, err = r.value(res)
		return err
	})
	timer.Stop(status(err))
	return out, err
}

// Prepare compiles source without running it. Any rejection is a
// PreparationError; a prepared script may still throw when evaluated.
func (r *Runtime) Prepare(source, url string) (*PreparedScript, error) {
	if url == "" {
		url = DefaultEvalURL
	}
	var ps *PreparedScript
	timer := monitoring.NewTimer(r.metrics(), monitoring.ModePrepare)
	err := r.run(jserror.OpPrepare, func(*goja.Runtime) error {
		if err := r.gate(source, url); err != nil {
			return err
		}
		program, err := goja.Compile(url, source, false)
		if err != nil {
			return err
		}
		ps = &PreparedScript{
			id:          id.NewScriptID(),
			url:         url,
			digest:      hash.NewHasher(hash.XXH64).HashString(source),
			fingerprint: r.cfg.Fingerprint(),
			program:     program,
		}
		return nil
	})
	timer.Stop(status(err))
	if err != nil {
		return nil, err
	}

	r.metrics().IncPreparedScripts()
	r.log.Debug("Script prepared", zap.Stringer("script_id", ps.id), zap.String("url", url))
	return ps, nil
}

// EvaluatePrepared runs ps and returns its completion value. Each call is
// independent; a throw in one call does not affect the next.
func (r *Runtime) EvaluatePrepared(ps *PreparedScript) (Value, error) {
	var out Value
	timer := monitoring.NewTimer(r.metrics(), monitoring.ModePrepared)
	err := r.run(jserror.OpEvaluatePrepared, func(vm *goja.Runtime) error {
		if ps == nil || ps.program == nil {
			return jserror.Runtime("prepared script is nil")
		}
		if ps.fingerprint != r.cfg.Fingerprint() {
			return jserror.Runtime("prepared script %s was built for a different runtime configuration", ps.id)
		}
		res, err := vm.RunProgram(ps.program)
		if err != nil {
			return err
		}
		out, err = r.value(res)
		return err
	})
	timer.Stop(status(err))
	return out, err
}

// EvalBytecode loads and runs a compiled container. Containers that fail
// the format check or do not decode are InvalidBytecode errors.
func (r *Runtime) EvalBytecode(bc *bytecode.Bytecode) error {
	_, err := r.EvalBytecodeWithResult(bc)
	return err
}

// EvalBytecodeWithResult is EvalBytecode returning the completion value.
func (r *Runtime) EvalBytecodeWithResult(bc *bytecode.Bytecode) (Value, error) {
	var out Value
	timer := monitoring.NewTimer(r.metrics(), monitoring.ModeBytecode)
	err := r.run(jserror.OpRunBytecode, func(vm *goja.Runtime) error {
		program, err := r.load(bc)
		if err != nil {
			return err
		}
		res, err := vm.RunProgram(program)
		if err != nil {
			return err
		}
		out, err = r.value(res)
		return err
	})
	timer.Stop(status(err))
	return out, err
}

// load decodes bc into a runnable program.
func (r *Runtime) load(bc *bytecode.Bytecode) (*goja.Program, error) {
	if bc == nil {
		return nil, jserror.InvalidBytecode("nil bytecode")
	}
	m, err := bytecode.Decode(bc)
	if err != nil {
		return nil, jserror.Translate(jserror.OpDecodeBytecode, err)
	}
	if err := r.gate(m.Source, m.URL); err != nil {
		return nil, err
	}
	program, err := goja.Compile(m.URL, m.Source, false)
	if err != nil {
		return nil, jserror.Translate(jserror.OpDecodeBytecode, err)
	}
	r.metrics().ObserveBytecode(bc.Len())
	return program, nil
}

// gate rejects source that uses syntax this runtime has switched off.
func (r *Runtime) gate(source, url string) error {
	if err := utils.ValidateSourceURL(url); err != nil {
		return err
	}
	if err := utils.ValidateText(source, "source"); err != nil {
		return err
	}
	return compiler.Check(source, url, r.cfg.Features())
}

// CompileToBytecode compiles source into a portable container without a
// runtime. Failures are CompilationErrors.
func CompileToBytecode(source, url string, optimize bool) (*bytecode.Bytecode, error) {
	return compiler.Compile(source, url, optimize)
}

// IsBytecode reports whether data passes the container format check.
func IsBytecode(data []byte) bool {
	return bytecode.IsBytecode(data)
}

func (r *Runtime) metrics() *Metrics {
	if r == nil {
		return nil
	}
	return r.opts.metrics
}

func status(err error) string {
	if err == nil {
		return monitoring.StatusOK
	}
	if kind, ok := jserror.KindOf(err); ok {
		return kind.String()
	}
	return "error"
}
