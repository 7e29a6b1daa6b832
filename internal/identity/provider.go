package identity

import (
	"sync"

	"github.com/sangyanhq/sangyan-api/internal/model"
)

// Provider is the boundary to the external authentication provider. It
// emits identity-changed events: a non-nil identity on sign-in, nil on
// sign-out. Implementations return identity facts only; profile and ledger
// decisions happen downstream.
type Provider interface {
	// Subscribe registers a callback for identity changes. The callback is
	// invoked immediately with the current identity, then on every change,
	// until the returned unsubscribe function is called.
	Subscribe(fn func(*model.Identity)) (unsubscribe func())

	// SignOut clears the current identity and notifies subscribers.
	SignOut()
}

// Hub is the in-process Provider implementation. Sign-in entry points
// (credentials, Google) publish verified identities into it; session
// consumers subscribe to it.
type Hub struct {
	mu      sync.Mutex
	current *model.Identity
	subs    map[int]func(*model.Identity)
	nextSub int
}

// NewHub creates a Hub with no current identity.
func NewHub() *Hub {
	return &Hub{subs: make(map[int]func(*model.Identity))}
}

// SignIn replaces the current identity wholesale and notifies subscribers.
func (h *Hub) SignIn(identity model.Identity) {
	h.publish(&identity)
}

// SignOut clears the current identity and notifies subscribers.
func (h *Hub) SignOut() {
	h.publish(nil)
}

// Current returns the current identity, or nil when signed out.
func (h *Hub) Current() *model.Identity {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.current == nil {
		return nil
	}

	clone := *h.current
	return &clone
}

// Subscribe implements Provider.
func (h *Hub) Subscribe(fn func(*model.Identity)) func() {
	h.mu.Lock()
	id := h.nextSub
	h.nextSub++
	h.subs[id] = fn
	current := h.current
	h.mu.Unlock()

	// Mirror the provider contract: new subscribers immediately observe
	// the current state.
	fn(cloneIdentity(current))

	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subs, id)
	}
}

func (h *Hub) publish(identity *model.Identity) {
	h.mu.Lock()
	h.current = cloneIdentity(identity)
	subs := make([]func(*model.Identity), 0, len(h.subs))
	for _, fn := range h.subs {
		subs = append(subs, fn)
	}
	h.mu.Unlock()

	for _, fn := range subs {
		fn(cloneIdentity(identity))
	}
}

func cloneIdentity(identity *model.Identity) *model.Identity {
	if identity == nil {
		return nil
	}
	clone := *identity
	return &clone
}
