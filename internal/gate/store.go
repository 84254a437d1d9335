package gate

import (
	"sync"
	"time"
)

// clientState is the per-client admission record. All fields are guarded by
// the entry's own mutex so checks for distinct clients never contend.
type clientState struct {
	mu sync.Mutex

	// window holds the instants of accepted requests inside the sliding
	// window, in insertion order. Expired entries are pruned lazily on each
	// check, never by a background sweep.
	window []time.Time

	// lastRequest is the instant of the most recently accepted request,
	// used for minimum-interval enforcement.
	lastRequest time.Time

	// quotaDay / quotaCount track free-tier usage for one UTC calendar day.
	quotaDay   string
	quotaCount int
}

func (s *clientState) release() {
	s.mu.Unlock()
}

func (s *clientState) pruneWindow(cutoff time.Time) {
	keep := s.window[:0]
	for _, ts := range s.window {
		if ts.After(cutoff) {
			keep = append(keep, ts)
		}
	}
	s.window = keep
}

// ClientStore owns the per-client state map. Entries are created lazily on
// first sight of an identifier and live for the process lifetime; nothing is
// persisted.
type ClientStore struct {
	mu      sync.RWMutex
	clients map[string]*clientState
}

// NewClientStore returns an empty store.
func NewClientStore() *ClientStore {
	return &ClientStore{clients: make(map[string]*clientState)}
}

// acquire returns the state for clientID with its mutex held. The caller
// must release it; check-then-mutate for a single client is serialized by
// that lock.
func (cs *ClientStore) acquire(clientID string) *clientState {
	cs.mu.RLock()
	state, ok := cs.clients[clientID]
	cs.mu.RUnlock()

	if !ok {
		cs.mu.Lock()
		state, ok = cs.clients[clientID]
		if !ok {
			state = &clientState{}
			cs.clients[clientID] = state
		}
		cs.mu.Unlock()
	}

	state.mu.Lock()
	return state
}

// Len reports the number of tracked clients.
func (cs *ClientStore) Len() int {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return len(cs.clients)
}
