package query

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"servimarket/pkg/model"
)

const (
	DefaultIdentityID    = "mock-user-id"
	DefaultIdentityEmail = "user@example.com"
)

type AuthEvent string

const (
	EventSignedIn  AuthEvent = "SIGNED_IN"
	EventSignedOut AuthEvent = "SIGNED_OUT"
)

type SessionResult struct {
	Session *model.Session
	Err     error
}

type UserResult struct {
	User *model.Identity
	Err  error
}

// Subscription is returned by OnAuthStateChange.
type Subscription struct {
	cancelled atomic.Bool
}

// Unsubscribe stops a callback that has not been delivered yet. Calling it
// after delivery, or twice, does nothing.
func (s *Subscription) Unsubscribe() {
	s.cancelled.Store(true)
}

// Auth resolves every call against the single identity configured on the
// client. The account starts signed in.
type Auth struct {
	client *Client

	mu       sync.Mutex
	signedIn bool
}

func newAuth(c *Client) *Auth {
	return &Auth{client: c, signedIn: true}
}

func (a *Auth) SignedIn() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.signedIn
}

// GetSession returns the current session, or a nil session after SignOut.
func (a *Auth) GetSession(ctx context.Context) SessionResult {
	if err := a.client.runHooks(ctx, Operation{Kind: OpGetSession}); err != nil {
		return SessionResult{Err: err}
	}
	if !a.SignedIn() {
		return SessionResult{}
	}
	return a.session()
}

// OnAuthStateChange delivers exactly one event to callback on the next
// scheduler turn: EventSignedIn with the session, or EventSignedOut with a
// nil session when the account is signed out at delivery time. The callback
// never runs inside this call.
func (a *Auth) OnAuthStateChange(callback func(AuthEvent, *model.Session)) *Subscription {
	sub := &Subscription{}
	if callback == nil {
		return sub
	}

	accepted := a.client.scheduler.Defer(func() {
		if sub.cancelled.Load() {
			return
		}
		if !a.SignedIn() {
			callback(EventSignedOut, nil)
			return
		}
		res := a.session()
		if res.Err != nil {
			a.client.log.Error("Failed to build session for auth event", "error", res.Err)
			callback(EventSignedOut, nil)
			return
		}
		callback(EventSignedIn, res.Session)
	})
	if !accepted {
		a.client.log.Warn("Auth state callback dropped, scheduler closed")
	}
	return sub
}

// SignUp returns the configured identity with the supplied names merged into
// its metadata. It does not change whether the account is signed in.
func (a *Auth) SignUp(ctx context.Context, creds model.Credentials) UserResult {
	if err := a.client.runHooks(ctx, Operation{Kind: OpSignUp}); err != nil {
		return UserResult{Err: err}
	}

	user := a.client.identity
	user.Metadata = map[string]any{}
	if creds.FirstName != "" {
		user.Metadata["first_name"] = creds.FirstName
	}
	if creds.LastName != "" {
		user.Metadata["last_name"] = creds.LastName
	}
	return UserResult{User: &user}
}

// SignInWithPassword accepts any credentials and signs the configured
// identity in.
func (a *Auth) SignInWithPassword(ctx context.Context, creds model.Credentials) SessionResult {
	if err := a.client.runHooks(ctx, Operation{Kind: OpSignIn}); err != nil {
		return SessionResult{Err: err}
	}

	a.mu.Lock()
	a.signedIn = true
	a.mu.Unlock()

	a.client.log.Debug("Signed in", "user_id", a.client.identity.ID)
	return a.session()
}

func (a *Auth) SignOut(ctx context.Context) error {
	if err := a.client.runHooks(ctx, Operation{Kind: OpSignOut}); err != nil {
		return err
	}

	a.mu.Lock()
	a.signedIn = false
	a.mu.Unlock()

	a.client.log.Debug("Signed out", "user_id", a.client.identity.ID)
	return nil
}

func (a *Auth) session() SessionResult {
	s := &model.Session{User: a.client.identity}
	if a.client.tokens != nil {
		token, expiresAt, err := a.client.tokens.Issue(s.User.ID, s.User.Email)
		if err != nil {
			return SessionResult{Err: fmt.Errorf("failed to issue access token: %w", err)}
		}
		s.AccessToken = token
		s.ExpiresAt = expiresAt
	}
	return SessionResult{Session: s}
}
