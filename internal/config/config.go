package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/goccy/go-yaml"
	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"

	"github.com/GriffinCanCode/jsbridge/engine"
	"github.com/GriffinCanCode/jsbridge/internal/logging"
)

// EnvPrefix prefixes every environment variable.
const EnvPrefix = "JSRT"

// Config holds all application configuration.
type Config struct {
	Runtime RuntimeConfig `yaml:"runtime" toml:"runtime" json:"runtime"`
	Pool    PoolConfig    `yaml:"pool" toml:"pool" json:"pool"`
	Logging LogConfig     `yaml:"logging" toml:"logging" json:"logging"`
}

// RuntimeConfig mirrors engine.Config.
type RuntimeConfig struct {
	InitHeapSize          uint32 `split_words:"true" yaml:"init_heap_size" toml:"init_heap_size" json:"init_heap_size"`
	MaxHeapSize           uint32 `split_words:"true" yaml:"max_heap_size" toml:"max_heap_size" json:"max_heap_size"`
	EnableEval            bool   `split_words:"true" yaml:"enable_eval" toml:"enable_eval" json:"enable_eval"`
	EnableJIT             bool   `split_words:"true" yaml:"enable_jit" toml:"enable_jit" json:"enable_jit"`
	EnableProxy           bool   `split_words:"true" yaml:"enable_proxy" toml:"enable_proxy" json:"enable_proxy"`
	EnableBlockScoping    bool   `split_words:"true" yaml:"enable_block_scoping" toml:"enable_block_scoping" json:"enable_block_scoping"`
	EnableIntl            bool   `split_words:"true" yaml:"enable_intl" toml:"enable_intl" json:"enable_intl"`
	EnableMicrotaskQueue  bool   `split_words:"true" yaml:"enable_microtask_queue" toml:"enable_microtask_queue" json:"enable_microtask_queue"`
	EnableGenerators      bool   `split_words:"true" yaml:"enable_generators" toml:"enable_generators" json:"enable_generators"`
	EnableInternal        bool   `split_words:"true" yaml:"enable_internal" toml:"enable_internal" json:"enable_internal"`
	EnableSampleProfiling bool   `split_words:"true" yaml:"enable_sample_profiling" toml:"enable_sample_profiling" json:"enable_sample_profiling"`
	NativeStackGap        uint32 `split_words:"true" yaml:"native_stack_gap" toml:"native_stack_gap" json:"native_stack_gap"`
	MaxNumRegisters       uint32 `split_words:"true" yaml:"max_num_registers" toml:"max_num_registers" json:"max_num_registers"`
	EnableConsole         bool   `split_words:"true" yaml:"enable_console" toml:"enable_console" json:"enable_console"`
}

// PoolConfig holds runtime pool configuration.
type PoolConfig struct {
	Size             int `split_words:"true" yaml:"size" toml:"size" json:"size"`
	AcquireTimeoutMS int `split_words:"true" yaml:"acquire_timeout_ms" toml:"acquire_timeout_ms" json:"acquire_timeout_ms"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `split_words:"true" yaml:"level" toml:"level" json:"level"`
	Development bool   `split_words:"true" yaml:"development" toml:"development" json:"development"`
}

// Default returns default configuration.
func Default() *Config {
	d := engine.DefaultConfig()
	return &Config{
		Runtime: RuntimeConfig{
			EnableEval:            d.EvalEnabled(),
			EnableJIT:             d.JITEnabled(),
			EnableProxy:           d.ProxyEnabled(),
			EnableBlockScoping:    d.BlockScopingEnabled(),
			EnableIntl:            d.IntlEnabled(),
			EnableMicrotaskQueue:  d.MicrotaskQueueEnabled(),
			EnableGenerators:      d.GeneratorsEnabled(),
			EnableInternal:        d.InternalEnabled(),
			EnableSampleProfiling: d.SampleProfilingEnabled(),
			EnableConsole:         true,
		},
		Pool: PoolConfig{
			Size:             engine.DefaultPoolSize,
			AcquireTimeoutMS: int(engine.DefaultAcquireTimeout / time.Millisecond),
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
	}
}

// Load loads configuration from environment variables over the defaults.
func Load() (*Config, error) {
	cfg := Default()
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads a .yaml, .yml, .toml or .json file over the defaults and
// then applies environment variables on top.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if err := decode(path, data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, cfg)
	case ".toml":
		return toml.Unmarshal(data, cfg)
	case ".json":
		return sonic.Unmarshal(data, cfg)
	default:
		return fmt.Errorf("unsupported config format %q", ext)
	}
}

// applyEnv overrides only the fields whose variables are set.
func (c *Config) applyEnv() error {
	if err := envconfig.Process(EnvPrefix, c); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	return nil
}

// Builder returns an engine config builder with these settings.
func (r RuntimeConfig) Builder() *engine.ConfigBuilder {
	return engine.NewConfigBuilder().
		HeapSize(r.InitHeapSize, r.MaxHeapSize).
		EnableEval(r.EnableEval).
		EnableJIT(r.EnableJIT).
		EnableProxy(r.EnableProxy).
		EnableBlockScoping(r.EnableBlockScoping).
		EnableIntl(r.EnableIntl).
		EnableMicrotaskQueue(r.EnableMicrotaskQueue).
		EnableGenerators(r.EnableGenerators).
		EnableInternal(r.EnableInternal).
		EnableSampleProfiling(r.EnableSampleProfiling).
		NativeStackGap(r.NativeStackGap).
		MaxNumRegisters(r.MaxNumRegisters)
}

// Options returns the engine options these settings imply.
func (r RuntimeConfig) Options() []engine.Option {
	var opts []engine.Option
	if r.EnableConsole {
		opts = append(opts, engine.WithConsole())
	}
	return opts
}

// AcquireTimeout returns the pool acquire timeout.
func (p PoolConfig) AcquireTimeout() time.Duration {
	return time.Duration(p.AcquireTimeoutMS) * time.Millisecond
}

// Logger returns the logging configuration for logging.New.
func (l LogConfig) Logger() logging.Config {
	cfg := logging.DefaultConfig()
	if l.Development {
		cfg = logging.DevelopmentConfig()
	}
	if l.Level != "" {
		cfg.Level = l.Level
	}
	return cfg
}
