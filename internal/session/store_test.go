package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"servimarket/pkg/logger"
	"servimarket/pkg/model"
	"servimarket/pkg/query"
	"servimarket/pkg/tick"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func dataset(role string) query.Dataset {
	return query.Dataset{
		query.TableProfiles: {
			{"id": "u1", "first_name": "Ana", "last_name": "Lopes", "role": role},
		},
		query.TableProviderDetails: {
			{"id": "u1", "business_name": "Ana Cuts", "bio": "", "expertise": "cortes"},
		},
	}
}

type harness struct {
	queue  *tick.Queue
	client *query.Client
	store  *Store

	mu  sync.Mutex
	ops []query.Operation
}

// newHarness builds a store over an in-memory client. hook, when set, runs
// after the operation is recorded.
func newHarness(t *testing.T, role string, hook query.Hook) *harness {
	t.Helper()
	h := &harness{queue: tick.NewQueue(logger.Discard())}
	h.client = query.New(
		query.WithBackend(query.NewMemoryBackend(dataset(role))),
		query.WithIdentity("u1", "u1@example.com"),
		query.WithWriteMode(query.WritePersist),
		query.WithScheduler(h.queue),
		query.WithHook(func(ctx context.Context, op query.Operation) error {
			h.mu.Lock()
			h.ops = append(h.ops, op)
			h.mu.Unlock()
			if hook != nil {
				return hook(ctx, op)
			}
			return nil
		}),
	)
	h.store = New(h.client, h.queue, logger.Discard())
	t.Cleanup(func() {
		h.store.Close()
		h.queue.Close()
	})
	return h
}

func (h *harness) count(kind query.OpKind, table string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, op := range h.ops {
		if op.Kind == kind && op.Table == table {
			n++
		}
	}
	return n
}

func TestStore_InitialState(t *testing.T) {
	h := newHarness(t, "client", nil)

	snap := h.store.Snapshot()
	if !snap.Loading {
		t.Error("store should be loading before Start")
	}
	if snap.User != nil || snap.Profile != nil || h.store.IsClient() {
		t.Errorf("unexpected initial state: %+v", snap)
	}
}

func TestStore_ProviderDetailsFollowProfile(t *testing.T) {
	var store *Store
	var profileVisible []bool
	h := newHarness(t, "provider", func(_ context.Context, op query.Operation) error {
		if op.Kind == query.OpSingle && op.Table == query.TableProviderDetails {
			profileVisible = append(profileVisible, store.Profile() != nil)
		}
		return nil
	})
	store = h.store

	var snaps []Snapshot
	h.store.Subscribe(func(s Snapshot) { snaps = append(snaps, s) })

	h.store.Start(context.Background())
	h.queue.Wait()

	if diff := cmp.Diff([]bool{true}, profileVisible); diff != "" {
		t.Fatalf("provider details fetch should run once, after the profile is visible (-want +got):\n%s", diff)
	}

	firstWithProfile := -1
	for i, s := range snaps {
		if s.Profile != nil {
			firstWithProfile = i
			break
		}
	}
	if firstWithProfile < 0 {
		t.Fatal("no snapshot carried the profile")
	}
	if snaps[firstWithProfile].ProviderDetails != nil {
		t.Error("provider details published together with the profile")
	}
	if snaps[firstWithProfile].Loading {
		t.Error("loading should end once the profile is set")
	}

	final := h.store.Snapshot()
	if !h.store.IsProvider() || h.store.IsAdmin() || h.store.IsClient() {
		t.Errorf("unexpected role checks for %+v", final.Profile)
	}
	if final.ProviderDetails == nil || final.ProviderDetails.BusinessName != "Ana Cuts" {
		t.Errorf("provider details not loaded: %+v", final.ProviderDetails)
	}
	if final.Loading {
		t.Error("still loading after settling")
	}
}

func TestStore_ResolvesIdentityOnce(t *testing.T) {
	h := newHarness(t, "client", nil)

	h.store.Start(context.Background())
	h.queue.Wait()

	if got := h.count(query.OpSingle, query.TableProfiles); got != 1 {
		t.Errorf("profile fetched %d times, want 1", got)
	}
	if got := h.count(query.OpSingle, query.TableProviderDetails); got != 0 {
		t.Errorf("provider details fetched for a client %d times", got)
	}
	if !h.store.IsClient() {
		t.Error("expected client role")
	}

	h.store.Start(context.Background())
	if err := h.store.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if got := h.count(query.OpSingle, query.TableProfiles); got != 1 {
		t.Errorf("refresh of the same identity refetched the profile, %d fetches", got)
	}
}

func TestStore_SignOutClearsEverything(t *testing.T) {
	h := newHarness(t, "provider", nil)
	ctx := context.Background()

	h.store.Start(ctx)
	h.queue.Wait()

	h.store.SignOut(ctx)

	want := Snapshot{}
	if diff := cmp.Diff(want, h.store.Snapshot()); diff != "" {
		t.Errorf("state after sign out (-want +got):\n%s", diff)
	}
	if h.store.IsProvider() || h.store.IsAdmin() || h.store.IsClient() {
		t.Error("role checks should all be false after sign out")
	}
	if res := h.client.Auth().GetSession(ctx); res.Session != nil {
		t.Error("auth backend still has a session")
	}
}

func TestStore_SignOutFailureStillClears(t *testing.T) {
	h := newHarness(t, "client", func(_ context.Context, op query.Operation) error {
		if op.Kind == query.OpSignOut {
			return errors.New("auth down")
		}
		return nil
	})
	ctx := context.Background()

	h.store.Start(ctx)
	h.queue.Wait()
	h.store.SignOut(ctx)

	if h.store.User() != nil || h.store.Profile() != nil {
		t.Errorf("state not cleared: %+v", h.store.Snapshot())
	}
}

func TestStore_RefreshAfterSignIn(t *testing.T) {
	h := newHarness(t, "client", nil)
	ctx := context.Background()

	h.store.Start(ctx)
	h.queue.Wait()
	h.store.SignOut(ctx)

	if res := h.client.Auth().SignInWithPassword(ctx, model.Credentials{Email: "u1@example.com", Password: "secret1"}); res.Err != nil {
		t.Fatalf("sign in failed: %v", res.Err)
	}
	if err := h.store.Refresh(ctx); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}

	if u := h.store.User(); u == nil || u.ID != "u1" {
		t.Fatalf("identity not restored: %+v", u)
	}
	if !h.store.IsClient() {
		t.Error("profile not restored")
	}
}

func TestStore_ProfileErrorFinishesLoading(t *testing.T) {
	h := newHarness(t, "provider", func(_ context.Context, op query.Operation) error {
		if op.Table == query.TableProfiles {
			return errors.New("profiles unavailable")
		}
		return nil
	})

	h.store.Start(context.Background())
	h.queue.Wait()

	snap := h.store.Snapshot()
	if snap.Loading {
		t.Error("loading stuck after a profile error")
	}
	if snap.User == nil || snap.User.ID != "u1" {
		t.Errorf("identity should still be set: %+v", snap.User)
	}
	if snap.Profile != nil || h.store.IsProvider() {
		t.Errorf("no profile expected: %+v", snap.Profile)
	}
	if got := h.count(query.OpSingle, query.TableProviderDetails); got != 0 {
		t.Errorf("provider details fetched without a profile")
	}
}

func TestStore_ProviderDetailsErrorKeepsProfile(t *testing.T) {
	h := newHarness(t, "provider", func(_ context.Context, op query.Operation) error {
		if op.Table == query.TableProviderDetails {
			return errors.New("details unavailable")
		}
		return nil
	})

	h.store.Start(context.Background())
	h.queue.Wait()

	snap := h.store.Snapshot()
	if snap.Loading || snap.Profile == nil || snap.ProviderDetails != nil {
		t.Errorf("unexpected state: %+v", snap)
	}
	if !snap.IsProvider() {
		t.Error("expected provider role")
	}
}

func TestStore_SessionErrorWithSignedOutBackend(t *testing.T) {
	h := newHarness(t, "client", func(_ context.Context, op query.Operation) error {
		if op.Kind == query.OpGetSession {
			return errors.New("session lookup failed")
		}
		return nil
	})
	ctx := context.Background()
	if err := h.client.Auth().SignOut(ctx); err != nil {
		t.Fatalf("sign out failed: %v", err)
	}

	h.store.Start(ctx)
	h.queue.Wait()

	snap := h.store.Snapshot()
	if snap.Loading || snap.User != nil || snap.Session != nil {
		t.Errorf("expected a settled, signed out store: %+v", snap)
	}
}

func TestStore_SignOutDuringProfileFetchWins(t *testing.T) {
	var store *Store
	h := newHarness(t, "provider", func(ctx context.Context, op query.Operation) error {
		if op.Kind == query.OpSingle && op.Table == query.TableProfiles {
			store.SignOut(ctx)
		}
		return nil
	})
	store = h.store

	h.store.Start(context.Background())
	h.queue.Wait()

	snap := h.store.Snapshot()
	if snap.User != nil || snap.Profile != nil || snap.ProviderDetails != nil {
		t.Errorf("sign out lost to an in-flight fetch: %+v", snap)
	}
	if snap.Loading {
		t.Error("still loading after sign out")
	}
}

func TestStore_ReloadProfile(t *testing.T) {
	h := newHarness(t, "client", nil)
	ctx := context.Background()

	h.store.Start(ctx)
	h.queue.Wait()

	res := h.client.From(query.TableProfiles).Update(query.Row{"role": "provider"}).Eq("id", "u1").Execute(ctx)
	if res.Err != nil {
		t.Fatalf("update failed: %v", res.Err)
	}
	if !h.store.IsClient() {
		t.Fatal("store changed before reload")
	}

	if err := h.store.ReloadProfile(ctx); err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if !h.store.IsProvider() {
		t.Error("reload did not pick up the new role")
	}
	if d := h.store.ProviderDetails(); d == nil || d.BusinessName != "Ana Cuts" {
		t.Errorf("provider details not loaded after reload: %+v", d)
	}
}

func TestStore_UnsubscribeStopsDelivery(t *testing.T) {
	h := newHarness(t, "client", nil)

	calls := 0
	unsubscribe := h.store.Subscribe(func(Snapshot) { calls++ })
	unsubscribe()

	h.store.Start(context.Background())
	h.queue.Wait()

	if calls != 0 {
		t.Errorf("unsubscribed listener called %d times", calls)
	}
}

func TestStore_CloseBeforeFeedDelivery(t *testing.T) {
	h := newHarness(t, "client", func(_ context.Context, op query.Operation) error {
		if op.Kind == query.OpGetSession {
			return errors.New("session lookup failed")
		}
		return nil
	})

	block := make(chan struct{})
	h.queue.Defer(func() { <-block })
	h.store.Start(context.Background())
	h.store.Close()
	close(block)
	h.queue.Wait()

	if h.store.User() != nil {
		t.Error("auth feed delivered after Close")
	}
	if h.store.Loading() {
		t.Error("a failed lookup should still end loading")
	}
}
