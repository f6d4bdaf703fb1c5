// Package browser owns the single long-lived headless Chrome process shared
// by all render requests. Callers obtain a live browser context through
// Acquire and never manage launch, rotation, or crash recovery themselves.
package browser

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"golang.org/x/sync/singleflight"

	"resume-pdf-service/internal/config"
	"resume-pdf-service/internal/domain"
)

// launchFunc starts a browser with one allocator option set. Injected so
// tests can run the manager without Chrome installed.
type launchFunc func(parent context.Context, opts []chromedp.ExecAllocatorOption, timeout time.Duration) (context.Context, context.CancelFunc, error)

// Manager caches at most one live browser. The instance is launched lazily,
// rotated after RestartInterval, and replaced after a disconnect or an
// explicit Discard. Concurrent acquisitions during a relaunch coalesce into
// a single launch via singleflight; the original service tolerated a race
// here instead.
type Manager struct {
	cfg        config.Config
	launch     launchFunc
	strategies [][]chromedp.ExecAllocatorOption

	flight singleflight.Group

	mu         sync.Mutex
	browserCtx context.Context
	cancel     context.CancelFunc
	launchedAt time.Time
	generation uint64
}

func NewManager(cfg config.Config) *Manager {
	return &Manager{
		cfg:        cfg,
		launch:     launchChrome,
		strategies: launchStrategies(cfg.ChromePath),
	}
}

// Acquire returns a connected browser context, launching or replacing the
// cached instance when it is absent, disconnected, or older than the
// restart interval. Callers never receive a stale instance.
func (m *Manager) Acquire(ctx context.Context) (context.Context, error) {
	m.mu.Lock()
	if m.usable() {
		bctx := m.browserCtx
		m.mu.Unlock()
		return bctx, nil
	}
	m.mu.Unlock()

	v, err, _ := m.flight.Do("launch", func() (interface{}, error) {
		return m.relaunch(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(context.Context), nil
}

// usable reports whether the cached instance can be handed out. Caller
// holds m.mu.
func (m *Manager) usable() bool {
	if m.browserCtx == nil || m.browserCtx.Err() != nil {
		return false
	}
	return time.Since(m.launchedAt) < m.cfg.RestartInterval
}

// relaunch closes any previous instance and walks the strategy list until
// one launch succeeds. Runs inside the singleflight group.
func (m *Manager) relaunch(ctx context.Context) (context.Context, error) {
	m.mu.Lock()
	// A concurrent caller may have finished relaunching while this one
	// waited on the flight group.
	if m.usable() {
		bctx := m.browserCtx
		m.mu.Unlock()
		return bctx, nil
	}
	if m.cancel != nil {
		age := time.Since(m.launchedAt).Round(time.Second)
		slog.Info("closing previous browser instance", "age", age.String())
		m.closeLocked()
	}
	m.mu.Unlock()

	var lastErr error
	for i, opts := range m.strategies {
		if i > 0 {
			select {
			case <-time.After(m.cfg.LaunchBackoff):
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", domain.ErrBrowserLaunch, ctx.Err())
			}
		}
		slog.Info("launching browser", "strategy", i+1, "strategies", len(m.strategies))
		bctx, cancel, err := m.launch(context.Background(), opts, m.cfg.LaunchTimeout)
		if err != nil {
			lastErr = err
			slog.Warn("browser launch attempt failed", "strategy", i+1, "error", err)
			continue
		}
		m.install(bctx, cancel)
		return bctx, nil
	}
	return nil, fmt.Errorf("%w: all %d strategies exhausted: %v", domain.ErrBrowserLaunch, len(m.strategies), lastErr)
}

// install records a freshly launched instance and arms the disconnect
// watcher that clears it once the browser context dies.
func (m *Manager) install(bctx context.Context, cancel context.CancelFunc) {
	m.mu.Lock()
	m.browserCtx = bctx
	m.cancel = cancel
	m.launchedAt = time.Now()
	m.generation++
	gen := m.generation
	m.mu.Unlock()

	slog.Info("browser launched", "restart_interval", m.cfg.RestartInterval.String())

	go func() {
		<-bctx.Done()
		m.mu.Lock()
		defer m.mu.Unlock()
		// A newer instance may already be installed.
		if m.generation != gen {
			return
		}
		slog.Warn("browser disconnected; next acquisition relaunches")
		m.closeLocked()
	}()
}

// closeLocked tears down the cached instance. Close errors on a dead
// browser are expected and only logged. Caller holds m.mu.
func (m *Manager) closeLocked() {
	if m.cancel != nil {
		m.cancel()
	}
	m.browserCtx = nil
	m.cancel = nil
	m.launchedAt = time.Time{}
}

// Connected reports liveness of the cached instance without launching one.
func (m *Manager) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.browserCtx != nil && m.browserCtx.Err() == nil
}

// LaunchedAt returns the launch time of the cached instance, zero if none.
func (m *Manager) LaunchedAt() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.launchedAt
}

// Discard drops the cached instance so the next Acquire relaunches. Used
// when a request hits a connection-level failure.
func (m *Manager) Discard() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.browserCtx == nil {
		return
	}
	slog.Warn("discarding browser after connection failure")
	m.closeLocked()
}

// Shutdown closes the browser on process exit. Never blocks exit.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.browserCtx == nil {
		return
	}
	slog.Info("closing browser for shutdown")
	m.closeLocked()
}

// launchChrome starts Chrome through a chromedp exec allocator and waits
// for the DevTools handshake before handing the context out.
func launchChrome(parent context.Context, opts []chromedp.ExecAllocatorOption, timeout time.Duration) (context.Context, context.CancelFunc, error) {
	allocCtx, allocCancel := chromedp.NewExecAllocator(parent, opts...)
	bctx, browserCancel := chromedp.NewContext(allocCtx)
	cancel := func() {
		browserCancel()
		allocCancel()
	}

	runCtx, runCancel := context.WithTimeout(bctx, timeout)
	defer runCancel()
	if err := chromedp.Run(runCtx); err != nil {
		cancel()
		return nil, nil, err
	}
	return bctx, cancel, nil
}
