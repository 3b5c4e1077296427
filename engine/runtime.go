package engine

import (
	"io"
	"sync/atomic"

	"github.com/dop251/goja"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/jsbridge/internal/shared/hash"
	"github.com/GriffinCanCode/jsbridge/internal/shared/id"
	"github.com/GriffinCanCode/jsbridge/jserror"
)

// Runtime owns one engine instance and is the only way to reach values that
// live on its heap.
//
// A Runtime may be handed from one goroutine to another but never used by
// two at once: an operation that starts while another is running fails with
// a RuntimeError instead of waiting. Use a Pool to spread work over
// goroutines.
//
// There is no timeout or interrupt. A script that never returns blocks the
// calling goroutine; callers that run untrusted code need their own
// watchdog at the process level.
type Runtime struct {
	id   id.RuntimeID
	cfg  *Config
	opts *options
	log  *zap.Logger

	busy atomic.Bool

	// Guarded by busy.
	vm        *goja.Runtime
	helpers   *helpers
	gen       uint64
	closed    bool
	poisoned  bool
	profiling bool
}

// binding ties a handle to the runtime and engine generation it came from.
type binding struct {
	rt  *Runtime
	gen uint64
}

// New creates a runtime for cfg. A nil cfg means DefaultConfig. Invalid
// configurations and engine setup failures are RuntimeErrors.
func New(cfg *Config, opts ...Option) (*Runtime, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := applyOptions(opts)
	rid := id.NewRuntimeID()
	r := &Runtime{
		id:   rid,
		cfg:  cfg,
		opts: o,
		log:  o.logger.Named("engine").With(zap.String("runtime_id", rid.String())),
	}
	if err := r.boot(); err != nil {
		return nil, err
	}

	o.metrics.RuntimeOpened()
	r.log.Debug("Runtime created", zap.String("config", hash.Short(cfg.Fingerprint())))
	r.logUnmappedSettings()
	return r, nil
}

// boot builds a fresh engine and swaps it in on success.
func (r *Runtime) boot() (err error) {
	defer func() {
		if x := recover(); x != nil {
			err = jserror.Runtime("engine setup failed: %v", x)
		}
	}()

	vm := goja.New()
	if n := r.cfg.maxNumRegisters; n > 0 {
		vm.SetMaxCallStackSize(int(n))
	}

	h, err := newHelpers(vm)
	if err != nil {
		return jserror.Translate(jserror.OpCreateRuntime, err)
	}
	if err := r.applyFeatures(vm); err != nil {
		return jserror.Translate(jserror.OpCreateRuntime, err)
	}
	if r.opts.console {
		if err := enableConsole(vm, r.log); err != nil {
			return jserror.Translate(jserror.OpCreateRuntime, err)
		}
	}

	r.vm = vm
	r.helpers = h
	return nil
}

func (r *Runtime) applyFeatures(vm *goja.Runtime) error {
	global := vm.GlobalObject()

	if !r.cfg.evalEnabled {
		evalError := vm.Get("EvalError")
		err := vm.Set("eval", func(goja.FunctionCall) goja.Value {
			if obj, err := vm.New(evalError, vm.ToValue("eval is disabled")); err == nil {
				panic(obj)
			}
			panic(vm.NewTypeError("eval is disabled"))
		})
		if err != nil {
			return err
		}
	}
	if !r.cfg.proxyEnabled {
		if err := global.Delete("Proxy"); err != nil {
			return err
		}
	}
	if !r.cfg.intlEnabled {
		if err := global.Delete("Intl"); err != nil {
			return err
		}
	}
	if r.cfg.internalEnabled {
		internal := vm.NewObject()
		err := internal.Set("getRuntimeProperties", func(goja.FunctionCall) goja.Value {
			return vm.ToValue(r.properties())
		})
		if err != nil {
			return err
		}
		if err := vm.Set("EngineInternal", internal); err != nil {
			return err
		}
	}
	return nil
}

// properties backs EngineInternal.getRuntimeProperties.
func (r *Runtime) properties() map[string]any {
	return map[string]any{
		"id":                r.id.String(),
		"generation":        r.gen,
		"configFingerprint": r.cfg.Fingerprint(),
		"evalEnabled":       r.cfg.evalEnabled,
		"proxyEnabled":      r.cfg.proxyEnabled,
		"generatorsEnabled": r.cfg.generatorsEnabled,
		"maxNumRegisters":   r.cfg.maxNumRegisters,
		"profiling":         r.profiling,
	}
}

// logUnmappedSettings notes settings this engine has no knob for.
func (r *Runtime) logUnmappedSettings() {
	c := r.cfg
	var fields []zap.Field
	if c.initHeapSize != 0 || c.maxHeapSize != 0 {
		fields = append(fields, zap.Uint32("init_heap_size", c.initHeapSize), zap.Uint32("max_heap_size", c.maxHeapSize))
	}
	if c.jitEnabled {
		fields = append(fields, zap.Bool("jit", true))
	}
	if c.blockScopingEnabled {
		fields = append(fields, zap.Bool("block_scoping", true))
	}
	if c.microtaskQueueEnabled {
		fields = append(fields, zap.Bool("microtask_queue", true))
	}
	if c.nativeStackGap != 0 {
		fields = append(fields, zap.Uint32("native_stack_gap", c.nativeStackGap))
	}
	if len(fields) > 0 {
		r.log.Debug("Settings recorded without engine effect", fields...)
	}
}

// ID returns the runtime identifier used in logs.
func (r *Runtime) ID() id.RuntimeID {
	return r.id
}

// Config returns the configuration the runtime was built from.
func (r *Runtime) Config() *Config {
	return r.cfg
}

// Close releases the engine. Handles from this runtime fail afterwards.
// Closing twice is a no-op.
func (r *Runtime) Close() error {
	if r == nil {
		return nil
	}
	if !r.busy.CompareAndSwap(false, true) {
		return jserror.Runtime("runtime is already in use")
	}
	defer r.busy.Store(false)

	if r.closed {
		return nil
	}
	if r.profiling {
		goja.StopProfile()
		r.profiling = false
	}
	r.closed = true
	r.vm = nil
	r.helpers = nil
	r.gen++

	r.opts.metrics.RuntimeClosed()
	r.log.Debug("Runtime closed")
	return nil
}

// Reset replaces the engine with a fresh one built from the same config.
// Every handle and value from before the reset becomes stale. Reset also
// recovers a runtime that an engine failure left unusable. Prepared scripts
// stay valid.
func (r *Runtime) Reset() error {
	if err := r.acquire(true); err != nil {
		return err
	}
	defer r.leave()

	if r.profiling {
		goja.StopProfile()
		r.profiling = false
	}
	if err := r.boot(); err != nil {
		r.poisoned = true
		return err
	}
	r.gen++
	r.poisoned = false

	r.log.Debug("Runtime reset", zap.Uint64("generation", r.gen))
	return nil
}

// Global returns the global object.
func (r *Runtime) Global() (Object, error) {
	var obj Object
	err := r.run(jserror.OpAccess, func(vm *goja.Runtime) error {
		obj = r.object(vm.GlobalObject())
		return nil
	})
	return obj, err
}

// StartProfiling writes a sampling CPU profile in pprof format to w until
// StopProfiling. Only runtimes configured with sampling profiling may start
// it, and only one profile can run in the process at a time.
func (r *Runtime) StartProfiling(w io.Writer) error {
	return r.run(jserror.OpAccess, func(*goja.Runtime) error {
		if !r.cfg.sampleProfiling {
			return jserror.Runtime("sampling profiler is disabled for this runtime")
		}
		if r.profiling {
			return jserror.Runtime("profiler is already running")
		}
		if err := goja.StartProfile(w); err != nil {
			return jserror.Runtime("start profiler: %v", err)
		}
		r.profiling = true
		return nil
	})
}

// StopProfiling ends a profile started with StartProfiling.
func (r *Runtime) StopProfiling() error {
	return r.run(jserror.OpAccess, func(*goja.Runtime) error {
		if !r.profiling {
			return jserror.Runtime("profiler is not running")
		}
		goja.StopProfile()
		r.profiling = false
		return nil
	})
}

func (r *Runtime) acquire(allowPoisoned bool) error {
	if r == nil {
		return jserror.Runtime("runtime is nil")
	}
	if !r.busy.CompareAndSwap(false, true) {
		return jserror.Runtime("runtime is already in use")
	}
	switch {
	case r.closed:
		r.busy.Store(false)
		return jserror.Runtime("runtime is closed")
	case r.poisoned && !allowPoisoned:
		r.busy.Store(false)
		return jserror.Runtime("runtime is unusable after an engine failure; reset it or create a new one")
	}
	return nil
}

func (r *Runtime) leave() {
	r.busy.Store(false)
}

// run executes fn with exclusive access to the engine. Engine failures are
// translated for op; a panic that is not a JS exception poisons the runtime.
func (r *Runtime) run(op jserror.Op, fn func(vm *goja.Runtime) error) (err error) {
	if err := r.acquire(false); err != nil {
		return err
	}
	defer r.leave()

	defer func() {
		if x := recover(); x != nil {
			e := jserror.Recovered(op, x)
			if e.Kind == jserror.KindInternal {
				r.poisoned = true
				r.log.Error("Engine panic", zap.Stringer("op", op), zap.Error(e))
			}
			err = e
		}
	}()

	if err := fn(r.vm); err != nil {
		return jserror.Translate(op, err)
	}
	return nil
}

func (r *Runtime) bind() binding {
	return binding{rt: r, gen: r.gen}
}

// owns reports whether b may be used on r. Callers hold busy.
func (r *Runtime) owns(b binding) error {
	switch {
	case b.rt == nil:
		return jserror.Runtime("handle is not bound to a runtime")
	case b.rt != r:
		return jserror.Runtime("handle belongs to a different runtime")
	case b.gen != r.gen:
		return jserror.Runtime("handle is stale: its runtime was reset")
	}
	return nil
}
