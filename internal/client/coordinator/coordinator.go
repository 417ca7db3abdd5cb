// Package coordinator derives the top-level UI flow from the auth state
// and routes auth callback deep links into session restoration.
package coordinator

import (
	"context"
	"net/url"
	"slices"
	"strings"
	"sync"

	"github.com/dmitrijs2005/rentable/internal/client/state"
	"github.com/dmitrijs2005/rentable/internal/common"
	"github.com/dmitrijs2005/rentable/internal/logging"
	"github.com/dmitrijs2005/rentable/internal/rpc"
)

type Flow string

const (
	FlowOnboarding Flow = "onboarding"
	FlowMain       Flow = "main"
)

func flowFor(snap state.Snapshot) Flow {
	if snap.IsAuthenticated {
		return FlowMain
	}
	return FlowOnboarding
}

// SessionState is the part of AppState the coordinator drives.
type SessionState interface {
	RestoreSession(ctx context.Context)
	SignOut(ctx context.Context)
	Snapshot() state.Snapshot
	Subscribe() (<-chan state.Snapshot, func())
}

type Coordinator struct {
	state  SessionState
	logger logging.Logger

	mu           sync.RWMutex
	flow         Flow
	initializing bool
	subs         map[int]chan Flow
	nextSub      int

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(st SessionState, logger logging.Logger) *Coordinator {
	return &Coordinator{
		state:  st,
		logger: logger,
		flow:   FlowOnboarding,
		subs:   make(map[int]chan Flow),
	}
}

// Initialize restores the session, sets the flow from the result and then
// follows AppState until Close. The flow is current when it returns.
func (c *Coordinator) Initialize(ctx context.Context) {
	c.mu.Lock()
	c.initializing = true
	c.mu.Unlock()

	c.state.RestoreSession(ctx)
	c.setFlow(flowFor(c.state.Snapshot()))
	c.watch(ctx)

	c.mu.Lock()
	c.initializing = false
	c.mu.Unlock()
}

func (c *Coordinator) watch(ctx context.Context) {
	c.mu.Lock()
	if c.cancel != nil {
		c.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.mu.Unlock()

	snaps, unsubscribe := c.state.Subscribe()
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer unsubscribe()
		for {
			select {
			case <-ctx.Done():
				return
			case snap, ok := <-snaps:
				if !ok {
					return
				}
				if snap.IsLoading {
					continue
				}
				c.setFlow(flowFor(snap))
			}
		}
	}()
}

func (c *Coordinator) CurrentFlow() Flow {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.flow
}

func (c *Coordinator) IsInitializing() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.initializing
}

// Subscribe delivers flow changes. A slow reader sees only the latest.
func (c *Coordinator) Subscribe() (<-chan Flow, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextSub
	c.nextSub++
	ch := make(chan Flow, 1)
	c.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			if ch, ok := c.subs[id]; ok {
				delete(c.subs, id)
				close(ch)
			}
		})
	}
}

func (c *Coordinator) setFlow(f Flow) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.flow == f {
		return
	}
	c.flow = f
	for _, ch := range c.subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- f:
		default:
		}
	}
}

// HandleDeepLink reacts to auth callback links. Signup and magic-link
// callbacks restore the session; the token exchange itself must already
// have happened. It reports whether a restore ran.
func (c *Coordinator) HandleDeepLink(ctx context.Context, rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		c.logger.Warn(ctx, "ignoring malformed deep link", "error", err)
		return false
	}
	if !isAuthCallback(u) {
		c.logger.Debug(ctx, "unhandled deep link", "url", u.Redacted())
		return false
	}

	switch u.Query().Get("type") {
	case rpc.OTPTypeSignup, rpc.OTPTypeMagicLink:
		c.state.RestoreSession(ctx)
		return true
	default:
		return false
	}
}

func isAuthCallback(u *url.URL) bool {
	if u.Host == common.AuthCallbackHost {
		return true
	}
	return slices.Contains(strings.Split(u.Path, "/"), "auth")
}

// CanHandleURL accepts the app scheme and the hosted identity provider's
// callback host.
func (c *Coordinator) CanHandleURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return u.Scheme == common.DeepLinkScheme || strings.Contains(u.Host, "supabase")
}

// Logout signs out and switches to onboarding without waiting for the
// state subscription.
func (c *Coordinator) Logout(ctx context.Context) {
	c.state.SignOut(ctx)
	c.setFlow(FlowOnboarding)
}

// Close stops following AppState and waits for the watcher to exit.
func (c *Coordinator) Close() {
	c.mu.Lock()
	cancel := c.cancel
	c.cancel = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	c.wg.Wait()
}
