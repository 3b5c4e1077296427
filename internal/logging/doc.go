// Package logging provides structured logging using uber/zap.
//
// Two modes are supported:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// The engine package takes a plain *zap.Logger; this package only decides
// how that logger is built for the CLI and for embedding hosts that want
// the same defaults.
//
// Example Usage:
//
//	logger, err := logging.New(logging.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	rt, err := engine.New(cfg, engine.WithLogger(logger.Logger))
package logging
