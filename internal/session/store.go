package session

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/sangyanhq/sangyan-api/internal/identity"
	"github.com/sangyanhq/sangyan-api/internal/metrics"
	"github.com/sangyanhq/sangyan-api/internal/model"
	"github.com/sangyanhq/sangyan-api/internal/notifier"
	"github.com/sangyanhq/sangyan-api/internal/usecase"
)

// State identifies where the session is in its lifecycle.
type State string

const (
	// StateUnknown is the initial state before the first identity event.
	StateUnknown State = "unknown"
	// StateAuthenticating means an identity resolved and the profile
	// fetch is in flight.
	StateAuthenticating State = "authenticating"
	// StateReady means the identity resolved and the fetch completed;
	// Profile may still be nil if the fetch failed.
	StateReady State = "ready"
	// StateAnonymous means the provider reported no identity.
	StateAnonymous State = "anonymous"
)

// Snapshot is the derived, in-memory view published to consumers. It has
// no persistence of its own; it is recomputed whenever the identity or the
// profile changes.
type Snapshot struct {
	State    State
	Identity *model.Identity
	Profile  *model.ProfileRecord
	Loading  bool
}

var (
	ErrUnauthenticated = errors.New("no authenticated identity")
	ErrClosed          = errors.New("session store closed")
)

type event struct {
	identity *model.Identity
	refresh  bool
	errCh    chan error
}

// Store is the process-wide session cache gluing the identity provider and
// the profile repository together. All snapshot writes happen on a single
// event-loop goroutine, so consumers always observe transitions in
// provider order. The store is an explicit, injectable instance with a
// Start/Close lifecycle, not an ambient singleton.
type Store struct {
	provider identity.Provider
	profiles usecase.ProfileUsecase
	notifier notifier.Notifier
	metrics  *metrics.Metrics
	logger   *zerolog.Logger

	mu      sync.RWMutex
	snap    Snapshot
	subs    map[int]chan Snapshot
	nextSub int

	events      chan event
	unsubscribe func()
	done        chan struct{}
	stopped     chan struct{}
	startOnce   sync.Once
	closeOnce   sync.Once
}

// NewStore creates a session Store. Call Start to begin consuming provider
// events and Close to release the subscription.
func NewStore(
	provider identity.Provider,
	profiles usecase.ProfileUsecase,
	n notifier.Notifier,
	metrics *metrics.Metrics,
	logger *zerolog.Logger,
) *Store {
	return &Store{
		provider: provider,
		profiles: profiles,
		notifier: n,
		metrics:  metrics,
		logger:   logger,
		snap:     Snapshot{State: StateUnknown, Loading: true},
		subs:     make(map[int]chan Snapshot),
		events:   make(chan event, 16),
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

// Start subscribes to the identity provider and runs the event loop until
// ctx is cancelled or Close is called.
func (s *Store) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		s.unsubscribe = s.provider.Subscribe(func(id *model.Identity) {
			select {
			case s.events <- event{identity: id}:
			case <-s.done:
			}
		})

		go s.run(ctx)
	})
}

// Close unsubscribes from the provider and stops the event loop. Pending
// store I/O is abandoned; the backing store is never left with a partial
// multi-field mutation because repository writes are single operations.
func (s *Store) Close() {
	s.closeOnce.Do(func() {
		if s.unsubscribe != nil {
			s.unsubscribe()
		}
		close(s.done)
	})
}

// Snapshot returns the current published snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Subscribe returns a channel receiving every published snapshot, starting
// with the current one. Slow consumers only ever miss intermediate
// snapshots; the latest is always delivered. The cancel function releases
// the subscription.
func (s *Store) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	ch <- s.snap
	s.mu.Unlock()

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// Refresh re-runs the profile fetch for the current identity and
// republishes the snapshot. Callers use it after earn/spend/update to keep
// the cached snapshot consistent with the backing store; the store does
// not assume live updates are pushed back.
func (s *Store) Refresh(ctx context.Context) error {
	errCh := make(chan error, 1)

	select {
	case s.events <- event{refresh: true, errCh: errCh}:
	case <-ctx.Done():
		return ctx.Err()
	case <-s.stopped:
		return ErrClosed
	}

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-s.stopped:
		return ErrClosed
	}
}

func (s *Store) run(ctx context.Context) {
	defer close(s.stopped)

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case ev := <-s.events:
			if ev.refresh {
				ev.errCh <- s.handleRefresh(ctx)
				continue
			}
			s.handleIdentity(ctx, ev.identity)
		}
	}
}

func (s *Store) handleIdentity(ctx context.Context, id *model.Identity) {
	if id == nil {
		wasSignedIn := s.Snapshot().Identity != nil

		// The profile is discarded from the snapshot only; the stored
		// record is untouched.
		s.publish(Snapshot{State: StateAnonymous})

		if wasSignedIn {
			s.notifier.Notify(notifier.Event{
				Level:   notifier.LevelSuccess,
				Message: "Signed out successfully",
			})
		}
		return
	}

	s.publish(Snapshot{State: StateAuthenticating, Identity: id, Loading: true})
	s.fetch(ctx, id)
}

func (s *Store) handleRefresh(ctx context.Context) error {
	id := s.Snapshot().Identity
	if id == nil {
		return ErrUnauthenticated
	}

	return s.fetch(ctx, id)
}

func (s *Store) fetch(ctx context.Context, id *model.Identity) error {
	rec, _, err := s.profiles.GetOrCreate(ctx, *id)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", id.UserID).Msg("failed to load profile")

		// Not fatal: the session stays usable with an absent profile, and
		// retry is left to an explicit Refresh.
		s.publish(Snapshot{State: StateReady, Identity: id})
		s.notifier.Notify(notifier.Event{
			Level:   notifier.LevelError,
			Message: "Failed to load user profile",
		})
		return err
	}

	s.publish(Snapshot{State: StateReady, Identity: id, Profile: rec})
	return nil
}

func (s *Store) publish(snap Snapshot) {
	s.mu.Lock()
	s.snap = snap
	subs := make([]chan Snapshot, 0, len(s.subs))
	for _, ch := range s.subs {
		subs = append(subs, ch)
	}
	s.mu.Unlock()

	s.metrics.IncSessionTransition(string(snap.State))
	s.logger.Debug().
		Str("state", string(snap.State)).
		Bool("loading", snap.Loading).
		Msg("session state changed")

	for _, ch := range subs {
		// Latest-wins delivery: drop the stale buffered snapshot if the
		// consumer has not drained it yet.
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
