package engine

import (
	"context"
	"sync"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/GriffinCanCode/jsbridge/internal/resilience"
	"github.com/GriffinCanCode/jsbridge/internal/shared/id"
	"github.com/GriffinCanCode/jsbridge/jserror"
)

const (
	DefaultPoolSize       = 4
	DefaultAcquireTimeout = 5 * time.Second
)

var (
	ErrPoolClosed  = &jserror.Error{Kind: jserror.KindRuntime, Message: "runtime pool is closed"}
	ErrPoolTimeout = &jserror.Error{Kind: jserror.KindRuntime, Message: "runtime pool acquisition timed out"}
)

// Pool hands out runtimes built from one configuration. A runtime is used
// by one goroutine between Acquire and Release and is reset on Release, so
// prepared scripts from any pooled runtime run on all of them.
type Pool struct {
	id       id.PoolID
	cfg      *Config
	opts     []Option
	metrics  *Metrics
	log      *zap.Logger
	rebuild  *resilience.Breaker
	build    func() (*Runtime, error)
	runtimes chan *Runtime
	size     int
	timeout  time.Duration
	mu       sync.RWMutex
	closed   bool
}

// PoolStats describes pool occupancy.
type PoolStats struct {
	Size      int
	Available int
	InUse     int
	Closed    bool
	// RebuildState is the state of the breaker guarding runtime rebuilds.
	RebuildState string
}

// NewPool creates size runtimes concurrently. A non-positive size means
// DefaultPoolSize.
func NewPool(cfg *Config, size int, opts ...Option) (*Pool, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if size <= 0 {
		size = DefaultPoolSize
	}

	o := applyOptions(opts)
	pid := id.NewPoolID()
	pool := &Pool{
		id:       pid,
		cfg:      cfg,
		opts:     opts,
		metrics:  o.metrics,
		log:      o.logger.Named("pool").With(zap.String("pool_id", pid.String())),
		runtimes: make(chan *Runtime, size),
		size:     size,
		timeout:  DefaultAcquireTimeout,
	}
	pool.build = func() (*Runtime, error) { return New(cfg, opts...) }
	pool.rebuild = resilience.New("runtime-rebuild", resilience.Settings{
		OnStateChange: func(name string, from, to resilience.State) {
			pool.log.Warn("Rebuild breaker changed state",
				zap.String("breaker", name),
				zap.Stringer("from", from),
				zap.Stringer("to", to))
		},
	})

	// Pre-create runtimes
	created := make([]*Runtime, size)
	var g errgroup.Group
	for i := range created {
		g.Go(func() error {
			rt, err := New(cfg, opts...)
			if err != nil {
				return err
			}
			created[i] = rt
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		for _, rt := range created {
			rt.Close()
		}
		return nil, err
	}

	for _, rt := range created {
		pool.runtimes <- rt
	}
	pool.metrics.AddPoolAvailable(size)
	pool.log.Debug("Pool ready", zap.Int("size", size))
	return pool, nil
}

// ID returns the pool identifier used in logs.
func (p *Pool) ID() id.PoolID {
	return p.id
}

// SetAcquireTimeout bounds how long Acquire waits when the context has no
// earlier deadline.
func (p *Pool) SetAcquireTimeout(d time.Duration) {
	p.mu.Lock()
	p.timeout = d
	p.mu.Unlock()
}

// Acquire takes a runtime from the pool, waiting until one is released,
// ctx is done or the acquire timeout passes.
func (p *Pool) Acquire(ctx context.Context) (*Runtime, error) {
	p.mu.RLock()
	closed, timeout := p.closed, p.timeout
	p.mu.RUnlock()
	if closed {
		return nil, ErrPoolClosed
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case rt, ok := <-p.runtimes:
		if !ok {
			return nil, ErrPoolClosed
		}
		p.metrics.AddPoolAvailable(-1)
		return rt, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		return nil, ErrPoolTimeout
	}
}

// Release resets rt and returns it to the pool. A runtime that cannot be
// reset is closed and replaced; while rebuilds keep failing the breaker
// stops trying and the pool runs short. Release each acquired runtime once.
func (p *Pool) Release(rt *Runtime) error {
	if rt == nil {
		return nil
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return rt.Close()
	}

	// Reset runtime state
	if err := rt.Reset(); err != nil {
		p.log.Warn("Runtime reset failed, replacing it", zap.Stringer("runtime_id", rt.ID()), zap.Error(err))
		closeErr := rt.Close()
		replacement, newErr := resilience.Execute(p.rebuild, p.build)
		if newErr == nil {
			newErr = p.put(replacement)
		}
		return multierr.Combine(err, closeErr, newErr)
	}
	return p.put(rt)
}

// put requires p.mu held for reading.
func (p *Pool) put(rt *Runtime) error {
	select {
	case p.runtimes <- rt:
		p.metrics.AddPoolAvailable(1)
		return nil
	default:
		// Pool full, close runtime
		return rt.Close()
	}
}

// Do runs fn on a pooled runtime and releases it afterwards.
func (p *Pool) Do(ctx context.Context, fn func(rt *Runtime) error) error {
	rt, err := p.Acquire(ctx)
	if err != nil {
		return err
	}
	return multierr.Append(fn(rt), p.Release(rt))
}

// Close closes the pool and every idle runtime. Runtimes still acquired are
// closed when released.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	close(p.runtimes)

	var err error
	n := 0
	for rt := range p.runtimes {
		err = multierr.Append(err, rt.Close())
		n++
	}
	p.metrics.AddPoolAvailable(-n)
	p.log.Debug("Pool closed", zap.Int("closed_runtimes", n))
	return err
}

// Stats returns pool statistics
func (p *Pool) Stats() PoolStats {
	p.mu.RLock()
	defer p.mu.RUnlock()

	available := len(p.runtimes)
	return PoolStats{
		Size:         p.size,
		Available:    available,
		InUse:        p.size - available,
		Closed:       p.closed,
		RebuildState: p.rebuild.State().String(),
	}
}
