package presence

import (
	"sync"

	"github.com/circuit/guest-pool/internal/domain"
)

// Store tracks per-domain, per-user presence state together with the
// webhook-subscription routing table. It is written by the domain
// bootstrapper (seed load) and the webhook receiver (push events), and read
// by the credential dispenser. The lock is held only across map access,
// never across I/O.
type Store struct {
	mu            sync.RWMutex
	states        map[domain.Name]map[domain.UserID]domain.State
	subscriptions map[domain.SubscriptionID]domain.Name
}

func NewStore() *Store {
	return &Store{
		states:        make(map[domain.Name]map[domain.UserID]domain.State),
		subscriptions: make(map[domain.SubscriptionID]domain.Name),
	}
}

// Seed replaces a domain's presence partition wholesale. Creating the
// partition is what marks the domain ready, so this is called only once the
// bulk presence query has succeeded.
func (s *Store) Seed(name domain.Name, states map[domain.UserID]domain.State) {
	partition := make(map[domain.UserID]domain.State, len(states))
	for id, state := range states {
		partition[id] = state
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[name] = partition
}

// Set records a single presence transition, creating the domain partition or
// the per-user entry if absent. A push event can race the seed load for a
// user the seed response omitted.
func (s *Store) Set(name domain.Name, userID domain.UserID, state domain.State) (previous domain.State, known bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	partition, ok := s.states[name]
	if !ok {
		partition = make(map[domain.UserID]domain.State)
		s.states[name] = partition
	}
	previous, known = partition[userID]
	partition[userID] = state
	return previous, known
}

// State returns the cached presence for a user. ok is false both for an
// unseeded domain and for a user with no entry; callers must treat either as
// not confirmed available.
func (s *Store) State(name domain.Name, userID domain.UserID) (domain.State, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	partition, ok := s.states[name]
	if !ok {
		return "", false
	}
	state, ok := partition[userID]
	return state, ok
}

// Ready reports whether a domain's partition exists, i.e. its seed load
// completed. An absent partition must never be read as "everyone available".
func (s *Store) Ready(name domain.Name) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.states[name]
	return ok
}

// RegisterSubscription maps a platform-issued subscription id to its domain.
// Called once per domain during bootstrap.
func (s *Store) RegisterSubscription(id domain.SubscriptionID, name domain.Name) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscriptions[id] = name
}

// DomainFor resolves an inbound webhook event's subscription id to the
// domain whose partition it mutates.
func (s *Store) DomainFor(id domain.SubscriptionID) (domain.Name, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	name, ok := s.subscriptions[id]
	return name, ok
}
