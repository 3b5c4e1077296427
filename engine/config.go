package engine

import (
	"fmt"
	"strconv"

	"github.com/GriffinCanCode/jsbridge/compiler"
	"github.com/GriffinCanCode/jsbridge/internal/shared/hash"
	"github.com/GriffinCanCode/jsbridge/jserror"
)

// Config is an immutable runtime configuration. Zero numeric fields mean
// the engine default. Build one with NewConfigBuilder.
type Config struct {
	initHeapSize          uint32
	maxHeapSize           uint32
	evalEnabled           bool
	jitEnabled            bool
	proxyEnabled          bool
	blockScopingEnabled   bool
	intlEnabled           bool
	microtaskQueueEnabled bool
	generatorsEnabled     bool
	internalEnabled       bool
	sampleProfiling       bool
	nativeStackGap        uint32
	maxNumRegisters       uint32

	fingerprint string
}

// DefaultConfig returns the configuration produced by an untouched builder.
func DefaultConfig() *Config {
	return NewConfigBuilder().Build()
}

func (c *Config) InitHeapSize() uint32         { return c.initHeapSize }
func (c *Config) MaxHeapSize() uint32          { return c.maxHeapSize }
func (c *Config) EvalEnabled() bool            { return c.evalEnabled }
func (c *Config) JITEnabled() bool             { return c.jitEnabled }
func (c *Config) ProxyEnabled() bool           { return c.proxyEnabled }
func (c *Config) BlockScopingEnabled() bool    { return c.blockScopingEnabled }
func (c *Config) IntlEnabled() bool            { return c.intlEnabled }
func (c *Config) MicrotaskQueueEnabled() bool  { return c.microtaskQueueEnabled }
func (c *Config) GeneratorsEnabled() bool      { return c.generatorsEnabled }
func (c *Config) InternalEnabled() bool        { return c.internalEnabled }
func (c *Config) SampleProfilingEnabled() bool { return c.sampleProfiling }
func (c *Config) NativeStackGap() uint32       { return c.nativeStackGap }
func (c *Config) MaxNumRegisters() uint32      { return c.maxNumRegisters }

// Validate reports a configuration no runtime can be built from.
func (c *Config) Validate() error {
	if c.initHeapSize != 0 && c.maxHeapSize != 0 && c.initHeapSize > c.maxHeapSize {
		return jserror.Runtime("initial heap size %d exceeds maximum heap size %d", c.initHeapSize, c.maxHeapSize)
	}
	return nil
}

// Fingerprint is a stable digest of every field. Runtimes with equal
// fingerprints accept each other's prepared scripts.
func (c *Config) Fingerprint() string {
	if c.fingerprint == "" {
		return c.digest()
	}
	return c.fingerprint
}

func (c *Config) digest() string {
	return hash.DefaultHasher().HashFields(c.fields()...)
}

// Features returns the syntax support source must be checked against.
func (c *Config) Features() compiler.Features {
	return compiler.Features{Generators: c.generatorsEnabled}
}

func (c *Config) fields() []string {
	u := func(name string, v uint32) string { return name + "=" + strconv.FormatUint(uint64(v), 10) }
	b := func(name string, v bool) string { return name + "=" + strconv.FormatBool(v) }
	return []string{
		u("init_heap_size", c.initHeapSize),
		u("max_heap_size", c.maxHeapSize),
		b("eval", c.evalEnabled),
		b("jit", c.jitEnabled),
		b("proxy", c.proxyEnabled),
		b("block_scoping", c.blockScopingEnabled),
		b("intl", c.intlEnabled),
		b("microtask_queue", c.microtaskQueueEnabled),
		b("generators", c.generatorsEnabled),
		b("internal", c.internalEnabled),
		b("sample_profiling", c.sampleProfiling),
		u("native_stack_gap", c.nativeStackGap),
		u("max_num_registers", c.maxNumRegisters),
	}
}

// String renders the configuration for logs.
func (c *Config) String() string {
	return fmt.Sprintf("Config%v", c.fields())
}

// ConfigBuilder assembles a Config. Build copies its state, so later
// setter calls never reach a Config that was already built.
type ConfigBuilder struct {
	cfg Config
}

// NewConfigBuilder starts from the defaults: eval, proxy, Intl, generators
// and internal diagnostics on; JIT, block scoping, microtask queue and the
// sampling profiler off.
func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{cfg: Config{
		evalEnabled:       true,
		proxyEnabled:      true,
		intlEnabled:       true,
		generatorsEnabled: true,
		internalEnabled:   true,
	}}
}

// HeapSize sets the initial and maximum heap sizes in bytes.
func (b *ConfigBuilder) HeapSize(initial, maximum uint32) *ConfigBuilder {
	b.cfg.initHeapSize = initial
	b.cfg.maxHeapSize = maximum
	return b
}

func (b *ConfigBuilder) EnableEval(v bool) *ConfigBuilder {
	b.cfg.evalEnabled = v
	return b
}

func (b *ConfigBuilder) EnableJIT(v bool) *ConfigBuilder {
	b.cfg.jitEnabled = v
	return b
}

func (b *ConfigBuilder) EnableProxy(v bool) *ConfigBuilder {
	b.cfg.proxyEnabled = v
	return b
}

func (b *ConfigBuilder) EnableBlockScoping(v bool) *ConfigBuilder {
	b.cfg.blockScopingEnabled = v
	return b
}

func (b *ConfigBuilder) EnableIntl(v bool) *ConfigBuilder {
	b.cfg.intlEnabled = v
	return b
}

func (b *ConfigBuilder) EnableMicrotaskQueue(v bool) *ConfigBuilder {
	b.cfg.microtaskQueueEnabled = v
	return b
}

func (b *ConfigBuilder) EnableGenerators(v bool) *ConfigBuilder {
	b.cfg.generatorsEnabled = v
	return b
}

func (b *ConfigBuilder) EnableInternal(v bool) *ConfigBuilder {
	b.cfg.internalEnabled = v
	return b
}

func (b *ConfigBuilder) EnableSampleProfiling(v bool) *ConfigBuilder {
	b.cfg.sampleProfiling = v
	return b
}

func (b *ConfigBuilder) NativeStackGap(v uint32) *ConfigBuilder {
	b.cfg.nativeStackGap = v
	return b
}

// MaxNumRegisters bounds the call stack depth of the engine.
func (b *ConfigBuilder) MaxNumRegisters(v uint32) *ConfigBuilder {
	b.cfg.maxNumRegisters = v
	return b
}

// Build returns a snapshot of the current settings.
func (b *ConfigBuilder) Build() *Config {
	cfg := b.cfg
	cfg.fingerprint = cfg.digest()
	return &cfg
}
