package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/sangyanhq/sangyan-api/internal/identity"
	"github.com/sangyanhq/sangyan-api/internal/metrics"
	"github.com/sangyanhq/sangyan-api/internal/model"
	"github.com/sangyanhq/sangyan-api/internal/notifier"
	"github.com/sangyanhq/sangyan-api/internal/repository"
	"github.com/sangyanhq/sangyan-api/internal/usecase"
)

type captureNotifier struct {
	mu     sync.Mutex
	events []notifier.Event
}

func (n *captureNotifier) Notify(event notifier.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *captureNotifier) messages() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.events))
	for i, ev := range n.events {
		out[i] = ev.Message
	}
	return out
}

type failingProfiles struct{}

func (failingProfiles) GetOrCreate(ctx context.Context, id model.Identity) (*model.ProfileRecord, bool, error) {
	return nil, false, repository.ErrStoreUnavailable
}

func (failingProfiles) Update(ctx context.Context, userID string, params repository.UpdateProfileParams) (*model.ProfileRecord, error) {
	return nil, repository.ErrStoreUnavailable
}

func newTestStore(t *testing.T, profiles usecase.ProfileUsecase) (*Store, *identity.Hub, *captureNotifier) {
	t.Helper()

	logger := zerolog.Nop()
	hub := identity.NewHub()
	capture := &captureNotifier{}

	store := NewStore(hub, profiles, capture, metrics.New(), &logger)
	store.Start(context.Background())
	t.Cleanup(store.Close)

	return store, hub, capture
}

func newMemoryProfiles(t *testing.T) (usecase.ProfileUsecase, repository.ProfileRepository) {
	t.Helper()

	logger := zerolog.Nop()
	repo := repository.NewProfileMemoryRepository()
	return usecase.NewProfileUsecase(repo, nil, notifier.NewLogNotifier(&logger), metrics.New(), &logger), repo
}

func waitForState(t *testing.T, store *Store, want State) Snapshot {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		snap := store.Snapshot()
		if snap.State == want && !snap.Loading {
			return snap
		}
		time.Sleep(2 * time.Millisecond)
	}

	t.Fatalf("timed out waiting for state %q, current %q", want, store.Snapshot().State)
	return Snapshot{}
}

func TestStoreStartsAnonymousWithoutIdentity(t *testing.T) {
	profiles, _ := newMemoryProfiles(t)
	store, _, capture := newTestStore(t, profiles)

	snap := waitForState(t, store, StateAnonymous)
	if snap.Identity != nil || snap.Profile != nil {
		t.Fatalf("snapshot = %+v, want empty anonymous", snap)
	}

	// The initial nil identity is not a sign-out.
	if msgs := capture.messages(); len(msgs) != 0 {
		t.Fatalf("unexpected notifications on startup: %v", msgs)
	}
}

func TestSignInLoadsProfile(t *testing.T) {
	profiles, _ := newMemoryProfiles(t)
	store, hub, _ := newTestStore(t, profiles)

	waitForState(t, store, StateAnonymous)
	hub.SignIn(model.Identity{UserID: "user-1", Email: "user@example.com"})

	snap := waitForState(t, store, StateReady)
	if snap.Identity == nil || snap.Identity.UserID != "user-1" {
		t.Fatalf("identity = %+v", snap.Identity)
	}
	if snap.Profile == nil {
		t.Fatal("profile not loaded")
	}
	if snap.Profile.Balance != model.WelcomeBonus {
		t.Fatalf("balance = %d, want %d", snap.Profile.Balance, model.WelcomeBonus)
	}
}

func TestSignOutClearsSnapshotKeepsRecord(t *testing.T) {
	profiles, repo := newMemoryProfiles(t)
	store, hub, capture := newTestStore(t, profiles)

	hub.SignIn(model.Identity{UserID: "user-1", Email: "user@example.com"})
	waitForState(t, store, StateReady)

	hub.SignOut()
	snap := waitForState(t, store, StateAnonymous)
	if snap.Identity != nil || snap.Profile != nil {
		t.Fatalf("snapshot after sign-out = %+v, want empty", snap)
	}

	// The stored record survives sign-out.
	rec, err := repo.Get(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Get after sign-out: %v", err)
	}
	if rec.Balance != model.WelcomeBonus {
		t.Fatalf("stored balance = %d, want %d", rec.Balance, model.WelcomeBonus)
	}

	found := false
	for _, msg := range capture.messages() {
		if msg == "Signed out successfully" {
			found = true
		}
	}
	if !found {
		t.Fatalf("missing sign-out notification, got %v", capture.messages())
	}
}

func TestFetchFailureKeepsSessionUsable(t *testing.T) {
	store, hub, capture := newTestStore(t, failingProfiles{})

	hub.SignIn(model.Identity{UserID: "user-1"})

	snap := waitForState(t, store, StateReady)
	if snap.Identity == nil || snap.Identity.UserID != "user-1" {
		t.Fatalf("identity = %+v", snap.Identity)
	}
	if snap.Profile != nil {
		t.Fatal("profile should be absent after a failed fetch")
	}

	found := false
	for _, msg := range capture.messages() {
		if msg == "Failed to load user profile" {
			found = true
		}
	}
	if !found {
		t.Fatalf("missing failure notification, got %v", capture.messages())
	}
}

func TestRefreshRequiresIdentity(t *testing.T) {
	profiles, _ := newMemoryProfiles(t)
	store, _, _ := newTestStore(t, profiles)

	waitForState(t, store, StateAnonymous)

	if err := store.Refresh(context.Background()); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("Refresh err = %v, want ErrUnauthenticated", err)
	}
}

func TestRefreshReloadsProfile(t *testing.T) {
	profiles, repo := newMemoryProfiles(t)
	store, hub, _ := newTestStore(t, profiles)

	hub.SignIn(model.Identity{UserID: "user-1"})
	waitForState(t, store, StateReady)

	tx := model.Transaction{ID: "tx-x", Amount: 40, Kind: model.TransactionEarned, Reason: "event"}
	if _, err := repo.ApplyEarn(context.Background(), "user-1", tx); err != nil {
		t.Fatalf("ApplyEarn: %v", err)
	}

	if err := store.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	snap := store.Snapshot()
	if snap.Profile == nil || snap.Profile.Balance != model.WelcomeBonus+40 {
		t.Fatalf("snapshot balance not refreshed: %+v", snap.Profile)
	}
}

func TestAccountSwitch(t *testing.T) {
	profiles, _ := newMemoryProfiles(t)
	store, hub, _ := newTestStore(t, profiles)

	hub.SignIn(model.Identity{UserID: "user-a"})
	waitForState(t, store, StateReady)

	hub.SignIn(model.Identity{UserID: "user-b"})

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		snap := store.Snapshot()
		if snap.State == StateReady && snap.Profile != nil && snap.Profile.UserID == "user-b" {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}

	t.Fatalf("snapshot never switched to user-b: %+v", store.Snapshot())
}

func TestSubscribeDeliversLatestSnapshot(t *testing.T) {
	profiles, _ := newMemoryProfiles(t)
	store, hub, _ := newTestStore(t, profiles)

	waitForState(t, store, StateAnonymous)

	ch, cancel := store.Subscribe()
	defer cancel()

	// First receive is the current snapshot.
	select {
	case snap := <-ch:
		if snap.State != StateAnonymous {
			t.Fatalf("initial snapshot state = %q, want anonymous", snap.State)
		}
	case <-time.After(time.Second):
		t.Fatal("no initial snapshot delivered")
	}

	hub.SignIn(model.Identity{UserID: "user-1"})

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case snap := <-ch:
			if snap.State == StateReady && snap.Profile != nil {
				return
			}
		case <-time.After(50 * time.Millisecond):
		}
	}

	t.Fatal("ready snapshot never delivered to subscriber")
}
