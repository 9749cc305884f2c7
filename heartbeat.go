package authclient

import (
	"context"
	"sync"
	"time"
)

const (
	// DefaultHeartbeatInterval is the keep-alive ping period.
	DefaultHeartbeatInterval = 4 * time.Minute
	// DefaultRefreshInterval is the identity re-validation period.
	DefaultRefreshInterval = 5 * time.Minute
)

// Heartbeat keeps a server-side session alive while the application is open.
// It runs two independent loops: a keep-alive ping of the status endpoint on
// a four-minute period (firing immediately on start), and a five-minute
// identity re-validation through SessionManager.Refresh.
//
// A failed tick is logged and discarded; it never stops the loops and never
// clears the identity. Whether a definitive rejection ends the session is
// decided solely by Refresh. At most one ticker pair is active: starting
// again first cancels the previous pair, and Stop (or Bind teardown) cancels
// deterministically so nothing fires after logout.
type Heartbeat struct {
	manager *SessionManager
	logger  Logger

	interval        time.Duration
	refreshInterval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewHeartbeat(manager *SessionManager) *Heartbeat {
	return &Heartbeat{
		manager:         manager,
		logger:          defLogger{},
		interval:        DefaultHeartbeatInterval,
		refreshInterval: DefaultRefreshInterval,
	}
}

func (h *Heartbeat) WithLogger(logger Logger) *Heartbeat {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *Heartbeat) WithInterval(interval time.Duration) *Heartbeat {
	if interval > 0 {
		h.interval = interval
	}
	return h
}

func (h *Heartbeat) WithRefreshInterval(interval time.Duration) *Heartbeat {
	if interval > 0 {
		h.refreshInterval = interval
	}
	return h
}

// Bind ties the ticker pair to the manager's session lifecycle: it starts
// whenever an identity appears and stops when it becomes absent. The
// returned function detaches the binding and stops any running tickers.
func (h *Heartbeat) Bind(ctx context.Context) func() {
	unsubscribe := h.manager.Subscribe(func(user *User) {
		if user != nil {
			h.Start(ctx)
		} else {
			h.Stop()
		}
	})

	if h.manager.Current() != nil {
		h.Start(ctx)
	}

	return func() {
		unsubscribe()
		h.Stop()
	}
}

// Start launches the ticker pair, cancelling any previous pair first so two
// sets of timers can never overlap.
func (h *Heartbeat) Start(ctx context.Context) {
	h.Stop()

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	h.mu.Lock()
	h.cancel = cancel
	h.done = done
	h.mu.Unlock()

	go h.run(ctx, done)
}

// Stop cancels the running ticker pair, if any, and waits for it to wind
// down.
func (h *Heartbeat) Stop() {
	h.mu.Lock()
	cancel, done := h.cancel, h.done
	h.cancel, h.done = nil, nil
	h.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

func (h *Heartbeat) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ping := time.NewTicker(h.interval)
	defer ping.Stop()
	refresh := time.NewTicker(h.refreshInterval)
	defer refresh.Stop()

	h.ping(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ping.C:
			h.ping(ctx)
		case <-refresh.C:
			// run off the loop goroutine: a definitive rejection makes the
			// session-bound subscriber call Stop, which waits for this loop
			go func() {
				if _, err := h.manager.Refresh(ctx); err != nil {
					h.logger.Debug("periodic refresh error: %v", err)
				}
			}()
		}
	}
}

// ping is a no-op status call; the session cookie travelling with it is what
// keeps the server-side session from idling out.
func (h *Heartbeat) ping(ctx context.Context) {
	if _, err := h.manager.client.Status(ctx); err != nil {
		h.logger.Debug("heartbeat error: %v", err)
	}
}
