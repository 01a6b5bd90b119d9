package chat

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// Defaults for session lifecycle housekeeping.
const (
	DefaultIdleTimeout   = 30 * time.Minute
	DefaultSweepInterval = 5 * time.Minute
)

// DriverFactory builds a driver for a new session.
type DriverFactory func(ctx context.Context, sessionID, userID string) (*Driver, error)

// RegistryConfig configures a session registry.
type RegistryConfig struct {
	Factory DriverFactory
	// IdleTimeout is how long a session may sit untouched before the
	// sweeper evicts it. Defaults to DefaultIdleTimeout.
	IdleTimeout time.Duration
	// SweepInterval is how often the sweeper runs. Defaults to
	// DefaultSweepInterval.
	SweepInterval time.Duration
	Logger        *slog.Logger
}

// Registry tracks the live driver for each session. The first caller for
// a session constructs its driver; concurrent callers for the same
// session block until that construction finishes and then share the
// result. Idle sessions are evicted by a background sweeper.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*entry

	factory       DriverFactory
	idleTimeout   time.Duration
	sweepInterval time.Duration
	logger        *slog.Logger

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// entry is a registry slot. ready is closed once construction finished,
// after which exactly one of driver and err is set.
type entry struct {
	ready  chan struct{}
	driver *Driver
	err    error
}

// NewRegistry creates a registry and starts its idle sweeper.
func NewRegistry(cfg RegistryConfig) (*Registry, error) {
	if cfg.Factory == nil {
		return nil, errors.New("chat: driver factory is required")
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = DefaultSweepInterval
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	r := &Registry{
		entries:       make(map[string]*entry),
		factory:       cfg.Factory,
		idleTimeout:   cfg.IdleTimeout,
		sweepInterval: cfg.SweepInterval,
		logger:        cfg.Logger,
		stop:          make(chan struct{}),
		done:          make(chan struct{}),
	}
	go r.sweepLoop()
	return r, nil
}

// GetOrCreate returns the session's driver, constructing it on first
// use. Construction happens outside the registry lock so unrelated
// sessions are never blocked behind a slow model handshake.
func (r *Registry) GetOrCreate(ctx context.Context, sessionID, userID string) (*Driver, error) {
	r.mu.Lock()
	if e, ok := r.entries[sessionID]; ok {
		r.mu.Unlock()
		return e.wait(ctx)
	}

	e := &entry{ready: make(chan struct{})}
	r.entries[sessionID] = e
	r.mu.Unlock()

	driver, err := r.factory(ctx, sessionID, userID)
	if err != nil {
		// Remove the failed slot so a later call can retry.
		r.mu.Lock()
		delete(r.entries, sessionID)
		r.mu.Unlock()

		e.err = err
		close(e.ready)
		return nil, err
	}

	r.logger.Info("session created", "session_id", sessionID, "user_id", userID)
	e.driver = driver
	close(e.ready)
	return driver, nil
}

// wait blocks until the entry's construction finishes or the context is
// cancelled.
func (e *entry) wait(ctx context.Context) (*Driver, error) {
	select {
	case <-e.ready:
		return e.driver, e.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Remove evicts a session and closes its driver. Removing an unknown
// session is a no-op. A subsequent GetOrCreate starts a fresh driver.
func (r *Registry) Remove(sessionID string) {
	r.mu.Lock()
	e, ok := r.entries[sessionID]
	if ok {
		delete(r.entries, sessionID)
	}
	r.mu.Unlock()
	if !ok {
		return
	}

	<-e.ready
	if e.driver != nil {
		if err := e.driver.Close(); err != nil {
			r.logger.Error("closing session driver", "session_id", sessionID, "error", err)
		}
	}
	r.logger.Info("session removed", "session_id", sessionID)
}

// Contains reports whether the session is currently registered,
// including one still under construction.
func (r *Registry) Contains(sessionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.entries[sessionID]
	return ok
}

// Len reports how many sessions are currently registered, including any
// still under construction.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Close stops the sweeper and closes every registered driver.
func (r *Registry) Close() {
	r.stopOnce.Do(func() {
		close(r.stop)
		<-r.done

		r.mu.Lock()
		entries := r.entries
		r.entries = make(map[string]*entry)
		r.mu.Unlock()

		for id, e := range entries {
			<-e.ready
			if e.driver != nil {
				if err := e.driver.Close(); err != nil {
					r.logger.Error("closing session driver", "session_id", id, "error", err)
				}
			}
		}
	})
}

func (r *Registry) sweepLoop() {
	defer close(r.done)

	ticker := time.NewTicker(r.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			r.sweep(time.Now())
		}
	}
}

// sweep evicts sessions idle past the timeout. Drivers still under
// construction are skipped; they become sweepable once ready.
func (r *Registry) sweep(now time.Time) {
	cutoff := now.Add(-r.idleTimeout)

	r.mu.Lock()
	var expired []*Driver
	for id, e := range r.entries {
		select {
		case <-e.ready:
		default:
			continue
		}
		if e.driver == nil || e.driver.LastAccess().After(cutoff) {
			continue
		}
		delete(r.entries, id)
		expired = append(expired, e.driver)
	}
	r.mu.Unlock()

	for _, d := range expired {
		r.logger.Info("evicting idle session",
			"session_id", d.SessionID(), "idle", now.Sub(d.LastAccess()).Round(time.Second))
		if err := d.Close(); err != nil {
			r.logger.Error("closing idle session driver", "session_id", d.SessionID(), "error", err)
		}
	}
}
