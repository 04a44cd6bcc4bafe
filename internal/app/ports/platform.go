package ports

import (
	"context"

	"github.com/circuit/guest-pool/internal/domain"
)

// UserPresence is one entry of a bulk presence query response.
type UserPresence struct {
	UserID domain.UserID
	State  domain.State
}

// PlatformClient is the outbound contract the bootstrapper needs from the
// presence platform. One client instance covers one domain (the token host
// and bearer token are domain-scoped).
type PlatformClient interface {
	// DeleteWebhooks clears every webhook subscription registered for the
	// domain, so a restart never leaves orphaned ids routing pushes to a
	// torn-down process.
	DeleteWebhooks(ctx context.Context) error
	// SubscribePresence creates a presence-change subscription for the
	// given users, pointing at hookURL, and returns the subscription id.
	SubscribePresence(ctx context.Context, hookURL string, userIDs []domain.UserID) (domain.SubscriptionID, error)
	// QueryPresence bulk-fetches current presence for the given users.
	QueryPresence(ctx context.Context, userIDs []domain.UserID) ([]UserPresence, error)
}

// PlatformClientFactory builds a domain-scoped client, acquiring the
// domain's bearer token in the process.
type PlatformClientFactory interface {
	ClientFor(ctx context.Context, d domain.Domain) (PlatformClient, error)
}
