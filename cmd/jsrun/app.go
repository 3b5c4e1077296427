package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/GriffinCanCode/jsbridge/bytecode"
	"github.com/GriffinCanCode/jsbridge/compiler"
	"github.com/GriffinCanCode/jsbridge/engine"
	"github.com/GriffinCanCode/jsbridge/internal/config"
	"github.com/GriffinCanCode/jsbridge/internal/logging"
	"github.com/GriffinCanCode/jsbridge/jserror"
)

const (
	exitOK     = 0
	exitFailed = 1
	exitUsage  = 2

	bytecodeExt = ".jsbc"
)

var errUsage = errors.New("usage error")

type app struct {
	cfg     *config.Config
	log     *zap.Logger
	metrics *engine.Metrics
	out     io.Writer
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("jsrun", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "Config file (.yaml, .yml, .toml, .json)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	dev := fs.Bool("dev", false, "Development mode (console logs, debug level)")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: jsrun [flags] <eval|run|compile|prepare|check> [args]")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return exitUsage
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "jsrun: %v\n", err)
		return exitUsage
	}
	if *dev {
		cfg.Logging.Development = true
		cfg.Logging.Level = "debug"
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}

	logger, err := logging.New(cfg.Logging.Logger())
	if err != nil {
		fmt.Fprintf(stderr, "jsrun: %v\n", err)
		return exitUsage
	}
	defer func() { _ = logger.Sync() }()

	a := &app{
		cfg:     cfg,
		log:     logger.Component("jsrun"),
		metrics: engine.NewMetrics(nil),
		out:     stdout,
	}

	cmd, rest := fs.Arg(0), fs.Args()[1:]
	switch cmd {
	case "eval":
		err = a.eval(rest)
	case "run":
		err = a.run(ctx, rest)
	case "compile":
		err = a.compile(rest)
	case "prepare":
		err = a.prepare(ctx, rest)
	case "check":
		err = a.check(rest)
	default:
		err = fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}

	snap := a.metrics.Snapshot()
	a.log.Debug("Finished",
		zap.String("command", cmd),
		zap.Int64("evaluations", snap.Evaluations),
		zap.Int64("failures", snap.Failures),
		zap.Duration("avg_duration", snap.AverageDuration()))

	if err != nil {
		fmt.Fprintf(stderr, "jsrun: %v\n", err)
		if errors.Is(err, errUsage) {
			return exitUsage
		}
		return exitFailed
	}
	return exitOK
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFile(path)
}

func (a *app) engineConfig() *engine.Config {
	return a.cfg.Runtime.Builder().Build()
}

func (a *app) engineOptions() []engine.Option {
	opts := []engine.Option{
		engine.WithLogger(a.log),
		engine.WithMetrics(a.metrics),
	}
	return append(opts, a.cfg.Runtime.Options()...)
}

func (a *app) newRuntime() (*engine.Runtime, error) {
	return engine.New(a.engineConfig(), a.engineOptions()...)
}

func (a *app) newPool(size int) (*engine.Pool, error) {
	if size <= 0 || size > a.cfg.Pool.Size {
		size = a.cfg.Pool.Size
	}
	pool, err := engine.NewPool(a.engineConfig(), size, a.engineOptions()...)
	if err != nil {
		return nil, err
	}
	pool.SetAcquireTimeout(a.cfg.Pool.AcquireTimeout())
	return pool, nil
}

func (a *app) print(rt *engine.Runtime, v engine.Value) error {
	s, err := v.ToString(rt)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.out, s)
	return err
}

func (a *app) eval(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: eval takes exactly one expression", errUsage)
	}
	rt, err := a.newRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	v, err := rt.EvalWithResult(args[0], engine.DefaultEvalURL)
	if err != nil {
		return err
	}
	return a.print(rt, v)
}

// evalFile evaluates a source or bytecode file and returns its completion
// value rendered as a string.
func evalFile(rt *engine.Runtime, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	var v engine.Value
	if engine.IsBytecode(data) {
		bc, perr := bytecode.Parse(data)
		if perr != nil {
			return "", perr
		}
		v, err = rt.EvalBytecodeWithResult(bc)
	} else {
		v, err = rt.EvalWithResult(string(data), path)
	}
	if err != nil {
		return "", err
	}
	return v.ToString(rt)
}

func (a *app) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: run needs at least one file", errUsage)
	}

	if len(args) == 1 {
		rt, err := a.newRuntime()
		if err != nil {
			return err
		}
		defer rt.Close()

		s, err := evalFile(rt, args[0])
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(a.out, s)
		return err
	}

	pool, err := a.newPool(len(args))
	if err != nil {
		return err
	}
	defer pool.Close()

	results := make([]string, len(args))
	g, gctx := errgroup.WithContext(ctx)
	for i, path := range args {
		g.Go(func() error {
			return pool.Do(gctx, func(rt *engine.Runtime) error {
				s, err := evalFile(rt, path)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				results[i] = s
				return nil
			})
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, path := range args {
		if _, err := fmt.Fprintf(a.out, "%s: %s\n", path, results[i]); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) compile(args []string) error {
	fs := flag.NewFlagSet("compile", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	optimize := fs.Bool("O", false, "Minify before compiling")
	outDir := fs.String("out", "", "Output directory (default: next to each source)")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("%w: compile needs at least one pattern", errUsage)
	}

	var files []string
	for _, pattern := range fs.Args() {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return fmt.Errorf("%w: bad pattern %q: %v", errUsage, pattern, err)
		}
		files = append(files, matches...)
	}
	if len(files) == 0 {
		return fmt.Errorf("no files matched %s", strings.Join(fs.Args(), " "))
	}

	features := a.engineConfig().Features()
	for _, src := range files {
		data, err := os.ReadFile(src)
		if err != nil {
			return err
		}
		bc, err := compiler.Compile(string(data), src, *optimize, compiler.WithFeatures(features))
		if err != nil {
			return err
		}

		dst := strings.TrimSuffix(src, filepath.Ext(src)) + bytecodeExt
		if *outDir != "" {
			dst = filepath.Join(*outDir, filepath.Base(dst))
			if err := os.MkdirAll(*outDir, 0o755); err != nil {
				return err
			}
		}
		if err := os.WriteFile(dst, bc.Bytes(), 0o644); err != nil {
			return err
		}

		a.log.Info("Compiled",
			zap.String("source", src),
			zap.String("output", dst),
			zap.Int("size", bc.Len()),
			zap.Bool("optimized", bc.Optimized()))
		fmt.Fprintln(a.out, dst)
	}
	return nil
}

func (a *app) prepare(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("prepare", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	n := fs.Int("n", 1, "Number of evaluations")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() != 1 || *n < 1 {
		return fmt.Errorf("%w: prepare takes -n N (N >= 1) and one file", errUsage)
	}
	path := fs.Arg(0)

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	pool, err := a.newPool(*n)
	if err != nil {
		return err
	}
	defer pool.Close()

	var script *engine.PreparedScript
	err = pool.Do(ctx, func(rt *engine.Runtime) error {
		var perr error
		script, perr = rt.Prepare(string(data), path)
		return perr
	})
	if err != nil {
		return err
	}
	a.log.Info("Prepared",
		zap.Stringer("script_id", script.ID()),
		zap.String("digest", script.Digest()))

	results := make([]string, *n)
	g, gctx := errgroup.WithContext(ctx)
	for i := range results {
		g.Go(func() error {
			return pool.Do(gctx, func(rt *engine.Runtime) error {
				v, err := rt.EvaluatePrepared(script)
				if err != nil {
					return err
				}
				results[i], err = v.ToString(rt)
				return err
			})
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, s := range results {
		if _, err := fmt.Fprintln(a.out, s); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) check(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: check needs at least one file", errUsage)
	}

	rt, err := a.newRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	var failed int
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if _, err := rt.Prepare(string(data), path); err != nil {
			failed++
			kind, _ := jserror.KindOf(err)
			a.log.Warn("Check failed", zap.String("file", path), zap.Stringer("kind", kind))
			fmt.Fprintf(a.out, "%s: %v\n", path, err)
			continue
		}
		fmt.Fprintf(a.out, "%s: ok\n", path)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(args))
	}
	return nil
}
