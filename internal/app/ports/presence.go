package ports

import "github.com/circuit/guest-pool/internal/domain"

// PresenceReader is the narrow view the dispenser needs: cached state per
// user and partition readiness. Writers are not part of this contract.
type PresenceReader interface {
	State(name domain.Name, userID domain.UserID) (domain.State, bool)
	Ready(name domain.Name) bool
}

// PresenceWriter is the mutation surface used by the bootstrapper's seed
// load and the webhook receiver.
type PresenceWriter interface {
	Seed(name domain.Name, states map[domain.UserID]domain.State)
	Set(name domain.Name, userID domain.UserID, state domain.State) (previous domain.State, known bool)
}

// SubscriptionRegistry routes an inbound webhook event, which carries only a
// subscription id, back to its domain.
type SubscriptionRegistry interface {
	RegisterSubscription(id domain.SubscriptionID, name domain.Name)
	DomainFor(id domain.SubscriptionID) (domain.Name, bool)
}
