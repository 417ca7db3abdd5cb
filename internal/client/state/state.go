// Package state holds the process-wide authentication state: who is signed
// in, and whether a restore is in flight. It is the single source of truth
// the UI layer and the coordinator observe.
package state

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/rentable/internal/client/identity"
	"github.com/dmitrijs2005/rentable/internal/client/models"
	"github.com/dmitrijs2005/rentable/internal/client/profiles"
	"github.com/dmitrijs2005/rentable/internal/logging"
	"github.com/dmitrijs2005/rentable/internal/rpc"
)

// Snapshot is an immutable view of AppState.
type Snapshot struct {
	CurrentUser     *models.Profile
	IsAuthenticated bool
	IsLoading       bool
}

func (s Snapshot) clone() Snapshot {
	if s.CurrentUser != nil {
		u := *s.CurrentUser
		s.CurrentUser = &u
	}
	return s
}

// AppState is mutated only through RestoreSession, UpdateUser,
// ClearSession, SignOut and HandleAuthEvent.
//
// Every write bumps a generation counter; a restore commits its result only
// if no other write happened while it was waiting on the network, so a slow
// restore cannot resurrect a session that was signed out meanwhile.
type AppState struct {
	backend  identity.Backend
	profiles profiles.Store
	logger   logging.Logger

	mu        sync.Mutex
	snap      Snapshot
	gen       uint64
	restoring int
	subs      map[int]chan Snapshot
	nextSub   int

	runMu  sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New returns an unauthenticated state with IsLoading set until the first
// RestoreSession completes.
func New(backend identity.Backend, profileStore profiles.Store, logger logging.Logger) *AppState {
	return &AppState{
		backend:  backend,
		profiles: profileStore,
		logger:   logger,
		snap:     Snapshot{IsLoading: true},
		subs:     make(map[int]chan Snapshot),
	}
}

func (s *AppState) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.clone()
}

// Subscribe delivers the current snapshot immediately and then every
// change. A slow reader only sees the latest snapshot.
func (s *AppState) Subscribe() (<-chan Snapshot, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan Snapshot, 1)
	ch <- s.snap.clone()
	s.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if c, ok := s.subs[id]; ok {
				delete(s.subs, id)
				close(c)
			}
		})
	}
}

// publish must be called with mu held.
func (s *AppState) publish() {
	for _, ch := range s.subs {
		snap := s.snap.clone()
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}

// RestoreSession reloads the signed-in user from the backend's cached
// session. Any failure leaves the state unauthenticated.
func (s *AppState) RestoreSession(ctx context.Context) {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.restoring++
	s.snap.IsLoading = true
	s.publish()
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.restoring--
		if s.restoring == 0 {
			s.snap.IsLoading = false
		}
		s.publish()
		s.mu.Unlock()
	}()

	session := s.backend.CurrentSession()
	if session == nil {
		s.commitRestore(ctx, gen, nil)
		return
	}

	p, err := s.profiles.Single(ctx, rpc.ColumnID, session.User.ID)
	if err != nil {
		s.logger.Warn(ctx, "failed to restore session", "user_id", session.User.ID, "error", err)
		s.commitRestore(ctx, gen, nil)
		return
	}
	s.commitRestore(ctx, gen, p)
}

func (s *AppState) commitRestore(ctx context.Context, gen uint64, p *models.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen {
		s.logger.Debug(ctx, "discarding stale session restore")
		return
	}
	s.setUser(p)
}

// setUser must be called with mu held.
func (s *AppState) setUser(p *models.Profile) {
	if p == nil {
		s.snap.CurrentUser = nil
		s.snap.IsAuthenticated = false
		return
	}
	u := *p
	s.snap.CurrentUser = &u
	s.snap.IsAuthenticated = true
}

// UpdateUser marks p as the signed-in user without a round trip.
func (s *AppState) UpdateUser(p models.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.setUser(&p)
	s.publish()
}

// ClearSession resets to the unauthenticated snapshot.
func (s *AppState) ClearSession() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.setUser(nil)
	s.publish()
}

// SignOut revokes the remote session and clears local state whether or
// not the revoke succeeded.
func (s *AppState) SignOut(ctx context.Context) {
	if err := s.backend.SignOut(ctx); err != nil {
		s.logger.Warn(ctx, "sign out error", "error", err)
	}
	s.ClearSession()
}

// HandleAuthEvent applies a backend auth event.
func (s *AppState) HandleAuthEvent(ctx context.Context, ev models.AuthEvent) {
	switch ev.Kind {
	case models.AuthEventSignedIn:
		s.RestoreSession(ctx)
	case models.AuthEventSignedOut:
		s.ClearSession()
	case models.AuthEventUserUpdated:
		s.refreshUser(ctx)
	default:
	}
}

// refreshUser replaces CurrentUser only; failures are logged and leave
// IsAuthenticated untouched.
func (s *AppState) refreshUser(ctx context.Context) {
	session := s.backend.CurrentSession()
	if session == nil {
		return
	}

	s.mu.Lock()
	gen := s.gen
	s.mu.Unlock()

	p, err := s.profiles.Single(ctx, rpc.ColumnID, session.User.ID)
	if err != nil {
		s.logger.Warn(ctx, "failed to fetch updated user", "user_id", session.User.ID, "error", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return
	}
	u := *p
	s.snap.CurrentUser = &u
	s.publish()
}

// Start subscribes to backend auth events and dispatches them on one
// goroutine until Stop or ctx is done. Calling Start twice is a no-op.
func (s *AppState) Start(ctx context.Context) {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	if s.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	events, unsubscribe := s.backend.Subscribe()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer unsubscribe()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-events:
				if !ok {
					return
				}
				s.HandleAuthEvent(ctx, ev)
			}
		}
	}()
}

// Stop cancels the event loop and waits for it to exit.
func (s *AppState) Stop() {
	s.runMu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.runMu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
}
