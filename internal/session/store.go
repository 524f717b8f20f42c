// Package session keeps the process-wide view of who is signed in, their
// profile and, for providers, their provider details.
//
// All resolution work runs on a tick.Scheduler. A provider's details are
// fetched on the turn after the profile is published, so subscribers always
// see the profile before the details.
package session

import (
	"context"
	"sync"

	"servimarket/pkg/logger"
	"servimarket/pkg/model"
	"servimarket/pkg/query"
	"servimarket/pkg/tick"
)

// Snapshot is a copy of the store state. The pointed-to values are never
// mutated after publication and may be shared.
type Snapshot struct {
	Session         *model.Session         `json:"session"`
	User            *model.Identity        `json:"user"`
	Profile         *model.Profile         `json:"profile"`
	ProviderDetails *model.ProviderDetails `json:"provider_details"`
	Loading         bool                   `json:"loading"`
}

func (s Snapshot) hasRole(role model.Role) bool {
	return s.Profile != nil && s.Profile.Role == role
}

// SignedInAs reports whether userID is the identity this snapshot belongs to.
func (s Snapshot) SignedInAs(userID string) bool {
	return s.User != nil && s.User.ID == userID
}

func (s Snapshot) IsProvider() bool { return s.hasRole(model.RoleProvider) }
func (s Snapshot) IsAdmin() bool    { return s.hasRole(model.RoleAdmin) }
func (s Snapshot) IsClient() bool   { return s.hasRole(model.RoleClient) }

// Reader is the read side of the store.
type Reader interface {
	Snapshot() Snapshot
}

type Store struct {
	client *query.Client
	sched  tick.Scheduler
	log    *logger.Logger

	mu    sync.RWMutex
	state Snapshot
	// gen changes whenever the identity is replaced or cleared. Work started
	// under an older generation drops its result.
	gen         uint64
	resolvedFor string

	subsMu  sync.Mutex
	subs    map[int]func(Snapshot)
	nextSub int

	lifecycle sync.Mutex
	started   bool
	authSub   *query.Subscription
}

func New(client *query.Client, sched tick.Scheduler, log *logger.Logger) *Store {
	return &Store{
		client: client,
		sched:  sched,
		log:    log.Component("session"),
		state:  Snapshot{Loading: true},
		subs:   make(map[int]func(Snapshot)),
	}
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Store) Session() *model.Session {
	return s.Snapshot().Session
}

func (s *Store) User() *model.Identity {
	return s.Snapshot().User
}

func (s *Store) Profile() *model.Profile {
	return s.Snapshot().Profile
}

func (s *Store) ProviderDetails() *model.ProviderDetails {
	return s.Snapshot().ProviderDetails
}

func (s *Store) Loading() bool {
	return s.Snapshot().Loading
}

func (s *Store) IsProvider() bool { return s.Snapshot().IsProvider() }
func (s *Store) IsAdmin() bool    { return s.Snapshot().IsAdmin() }
func (s *Store) IsClient() bool   { return s.Snapshot().IsClient() }

// Subscribe registers fn to receive a snapshot after every state change.
// The returned function removes the subscription.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	s.subsMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subsMu.Unlock()

	return func() {
		s.subsMu.Lock()
		delete(s.subs, id)
		s.subsMu.Unlock()
	}
}

// Start subscribes to the auth feed and then looks up the current session.
// Whichever reports a session first resolves it. Calling Start again does
// nothing.
func (s *Store) Start(ctx context.Context) {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()
	if s.started {
		return
	}
	s.started = true

	s.authSub = s.client.Auth().OnAuthStateChange(func(event query.AuthEvent, sess *model.Session) {
		s.log.Debug("Auth state changed", "event", event)
		s.resolve(ctx, sess)
	})

	if !s.sched.Defer(func() { s.lookup(ctx) }) {
		s.log.Warn("Session lookup not scheduled, scheduler closed")
		s.finishLoading()
	}
}

// Close unsubscribes from the auth feed and drops every subscriber.
func (s *Store) Close() {
	s.lifecycle.Lock()
	if s.authSub != nil {
		s.authSub.Unsubscribe()
		s.authSub = nil
	}
	s.lifecycle.Unlock()

	s.subsMu.Lock()
	s.subs = make(map[int]func(Snapshot))
	s.subsMu.Unlock()
}

// Refresh looks up the session again and waits for the result to be applied.
// It is a no-op when the same identity is already resolved. Must not be
// called from a scheduled task.
func (s *Store) Refresh(ctx context.Context) error {
	return s.await(ctx, func() { s.lookup(ctx) })
}

// ReloadProfile fetches the current identity's profile again, and its
// provider details when the role is provider, then waits for both. Must not
// be called from a scheduled task.
func (s *Store) ReloadProfile(ctx context.Context) error {
	if err := s.await(ctx, func() {
		s.mu.RLock()
		user, gen := s.state.User, s.gen
		s.mu.RUnlock()
		if user != nil {
			s.loadProfile(ctx, user.ID, gen)
		}
	}); err != nil {
		return err
	}
	// Provider details were queued behind the profile; wait for them too.
	return s.await(ctx, func() {})
}

// SignOut clears identity, profile and provider details, then signs out of
// the auth backend. A backend failure is logged; the local state stays
// cleared.
func (s *Store) SignOut(ctx context.Context) {
	s.mu.Lock()
	s.gen++
	s.resolvedFor = ""
	s.state = Snapshot{Loading: false}
	snap := s.state
	s.mu.Unlock()
	s.notify(snap)

	if err := s.client.Auth().SignOut(ctx); err != nil {
		s.log.Error("Failed to sign out of auth backend", "error", err)
	}
}

func (s *Store) lookup(ctx context.Context) {
	res := s.client.Auth().GetSession(ctx)
	if res.Err != nil {
		s.log.Error("Failed to get session", "error", res.Err)
		s.finishLoading()
		return
	}
	s.resolve(ctx, res.Session)
}

func (s *Store) resolve(ctx context.Context, sess *model.Session) {
	if sess == nil {
		s.mu.Lock()
		if s.state.User == nil && !s.state.Loading {
			s.mu.Unlock()
			return
		}
		s.gen++
		s.resolvedFor = ""
		s.state = Snapshot{Loading: false}
		snap := s.state
		s.mu.Unlock()
		s.notify(snap)
		return
	}

	s.mu.Lock()
	if s.resolvedFor == sess.User.ID {
		s.mu.Unlock()
		return
	}
	s.gen++
	gen := s.gen
	s.resolvedFor = sess.User.ID
	user := sess.User
	s.state = Snapshot{Session: sess, User: &user, Loading: s.state.Loading}
	snap := s.state
	s.mu.Unlock()
	s.notify(snap)

	s.loadProfile(ctx, user.ID, gen)
}

func (s *Store) loadProfile(ctx context.Context, userID string, gen uint64) {
	profile, err := s.fetchProfile(ctx, userID)
	if err != nil {
		s.log.Error("Failed to fetch profile", "user_id", userID, "error", err)
	}

	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		return
	}
	s.state.Profile = profile
	if profile == nil || profile.Role != model.RoleProvider {
		s.state.ProviderDetails = nil
	}
	s.state.Loading = false
	snap := s.state
	s.mu.Unlock()
	s.notify(snap)

	if profile != nil && profile.Role == model.RoleProvider {
		if !s.sched.Defer(func() { s.loadProviderDetails(ctx, userID, gen) }) {
			s.log.Warn("Provider details fetch not scheduled, scheduler closed", "user_id", userID)
		}
	}
}

func (s *Store) loadProviderDetails(ctx context.Context, userID string, gen uint64) {
	s.mu.RLock()
	stale := s.gen != gen || !s.state.IsProvider()
	s.mu.RUnlock()
	if stale {
		return
	}

	var details model.ProviderDetails
	found, err := s.client.From(query.TableProviderDetails).
		Select("*").
		Eq("id", userID).
		Single(ctx).
		Decode(&details)
	if err != nil {
		s.log.Error("Failed to fetch provider details", "user_id", userID, "error", err)
		return
	}

	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		return
	}
	if found {
		s.state.ProviderDetails = &details
	} else {
		s.state.ProviderDetails = nil
	}
	snap := s.state
	s.mu.Unlock()
	s.notify(snap)
}

func (s *Store) fetchProfile(ctx context.Context, userID string) (*model.Profile, error) {
	var profile model.Profile
	found, err := s.client.From(query.TableProfiles).
		Select("*").
		Eq("id", userID).
		Single(ctx).
		Decode(&profile)
	if err != nil || !found {
		return nil, err
	}
	return &profile, nil
}

func (s *Store) finishLoading() {
	s.mu.Lock()
	if !s.state.Loading {
		s.mu.Unlock()
		return
	}
	s.state.Loading = false
	snap := s.state
	s.mu.Unlock()
	s.notify(snap)
}

func (s *Store) notify(snap Snapshot) {
	s.subsMu.Lock()
	fns := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subsMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

// await runs task on the scheduler and blocks until it has run or ctx is
// done.
func (s *Store) await(ctx context.Context, task func()) error {
	done := make(chan struct{})
	if !s.sched.Defer(func() {
		defer close(done)
		task()
	}) {
		return ErrClosed
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
