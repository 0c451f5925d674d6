package session

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
)

// GateState is the bootstrap gate's lifecycle state
type GateState int

const (
	Verifying GateState = iota
	Ready
)

func (s GateState) String() string {
	switch s {
	case Verifying:
		return "verifying"
	case Ready:
		return "ready"
	default:
		return "unknown"
	}
}

// Gate restores a persisted session before protected views are served. It
// starts in Verifying and moves to Ready exactly once.
type Gate struct {
	manager   *Manager
	refresher *Refresher

	mu      sync.Mutex
	state   GateState
	mounted bool
	started bool
	cancel  context.CancelFunc
	ready   chan struct{}
}

func NewGate(manager *Manager, refresher *Refresher) *Gate {
	return &Gate{
		manager:   manager,
		refresher: refresher,
		state:     Verifying,
		ready:     make(chan struct{}),
	}
}

// Mount runs the bootstrap check. When the session holds no access token but the
// credential store has a refresh token, a refresh is started in the background;
// otherwise the gate becomes Ready immediately. Calling Mount again is a no-op.
func (g *Gate) Mount(ctx context.Context) {
	g.mu.Lock()
	if g.started {
		g.mu.Unlock()
		return
	}
	g.started = true
	g.mounted = true

	if g.manager.IsAuthenticated() || g.manager.storedRefreshToken() == "" {
		g.markReadyLocked()
		g.mu.Unlock()
		return
	}

	refreshCtx, cancel := context.WithCancel(ctx)
	g.cancel = cancel
	g.mu.Unlock()

	go func() {
		defer cancel()
		log.Info().Msg("Attempting to refresh token...")
		if _, err := g.refresher.refresh(refreshCtx, g.applyIfMounted); err != nil {
			log.Warn().Err(err).Msg("Failed to refresh token")
		}

		g.mu.Lock()
		defer g.mu.Unlock()
		if g.mounted {
			g.markReadyLocked()
		}
	}()
}

// Unmount detaches the gate. A refresh still in flight is cancelled and its
// result will not be applied to the session.
func (g *Gate) Unmount() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.mounted = false
	if g.cancel != nil {
		g.cancel()
	}
}

func (g *Gate) State() GateState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Done is closed once the gate reaches Ready
func (g *Gate) Done() <-chan struct{} {
	return g.ready
}

// Wait blocks until the gate is Ready or ctx ends
func (g *Gate) Wait(ctx context.Context) error {
	select {
	case <-g.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (g *Gate) applyIfMounted(fn func()) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.mounted {
		return false
	}
	fn()
	return true
}

func (g *Gate) markReadyLocked() {
	if g.state == Ready {
		return
	}
	g.state = Ready
	close(g.ready)
}
