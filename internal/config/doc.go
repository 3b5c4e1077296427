// Package config provides 12-factor configuration for jsrun and for hosts
// that embed the engine.
//
// Configuration starts from defaults that match engine.NewConfigBuilder,
// is optionally overlaid by a YAML, TOML or JSON file, and finally by
// environment variables.
//
// Configuration Sections:
//   - Runtime: engine feature toggles and limits
//   - Pool: runtime pool size and acquire timeout
//   - Logging: log level and output format
//
// Example Usage:
//
//	cfg, err := config.LoadFile("jsrun.yaml")
//	if err != nil {
//		return err
//	}
//	rt, err := engine.New(cfg.Runtime.Builder().Build())
//
// Environment Variables:
//   - JSRT_RUNTIME_ENABLE_EVAL, JSRT_RUNTIME_ENABLE_GENERATORS, ...
//   - JSRT_RUNTIME_MAX_NUM_REGISTERS, JSRT_RUNTIME_INIT_HEAP_SIZE, ...
//   - JSRT_POOL_SIZE, JSRT_POOL_ACQUIRE_TIMEOUT_MS
//   - JSRT_LOGGING_LEVEL, JSRT_LOGGING_DEVELOPMENT
package config
