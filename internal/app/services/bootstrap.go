package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/circuit/guest-pool/internal/app/ports"
	"github.com/circuit/guest-pool/internal/domain"
)

// Init-time failure categories. Each is fatal for its domain only; the
// domain serves no credentials until the process restarts.
var (
	ErrAuthFailure          = errors.New("auth failure")
	ErrSubscriptionFailure  = errors.New("subscription failure")
	ErrPresenceQueryFailure = errors.New("presence query failure")
)

// HookPath is the webhook endpoint the platform pushes presence events to.
const HookPath = "/webhook2"

// Bootstrapper initializes each configured domain: token grant, stale
// webhook cleanup, presence subscription, and seed load of the presence
// cache. Domains are processed sequentially and failures are isolated per
// domain; one domain failing never stops the next.
type Bootstrapper struct {
	clients       ports.PlatformClientFactory
	store         presenceSetup
	publicHookURL string
	log           *slog.Logger
}

type presenceSetup interface {
	ports.PresenceWriter
	ports.SubscriptionRegistry
}

// DomainResult is the outcome of one domain's initialization.
type DomainResult struct {
	Domain domain.Name
	Err    error
}

// NewBootstrapper constructs a bootstrapper. publicURL is the externally
// reachable base the hook path is appended to.
func NewBootstrapper(clients ports.PlatformClientFactory, store presenceSetup, publicURL string, log *slog.Logger) *Bootstrapper {
	return &Bootstrapper{
		clients:       clients,
		store:         store,
		publicHookURL: publicURL + HookPath,
		log:           log,
	}
}

// Bootstrap initializes every domain in order and returns one result per
// domain. It never returns early: a failed domain is recorded and the walk
// continues.
func (b *Bootstrapper) Bootstrap(ctx context.Context, domains []domain.Domain) []DomainResult {
	results := make([]DomainResult, 0, len(domains))
	for _, d := range domains {
		err := b.initDomain(ctx, d)
		if err != nil {
			b.log.Error("Domain initialization failed", "domain", d.Name, "error", err)
		} else {
			b.log.Info("Domain initialized", "domain", d.Name, "users", len(d.UserIDs()))
		}
		results = append(results, DomainResult{Domain: d.Name, Err: err})
	}
	return results
}

func (b *Bootstrapper) initDomain(ctx context.Context, d domain.Domain) error {
	client, err := b.clients.ClientFor(ctx, d)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrAuthFailure, err)
	}

	// Stale subscriptions from a previous process would route pushes into
	// nothing; absence of prior state is the common case, so a failed
	// delete is only logged.
	if err := client.DeleteWebhooks(ctx); err != nil {
		b.log.Warn("Clearing previous webhooks failed", "domain", d.Name, "error", err)
	}

	userIDs := d.UserIDs()

	subscriptionID, err := client.SubscribePresence(ctx, b.publicHookURL, userIDs)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSubscriptionFailure, err)
	}
	b.store.RegisterSubscription(subscriptionID, d.Name)

	seed, err := client.QueryPresence(ctx, userIDs)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPresenceQueryFailure, err)
	}
	states := make(map[domain.UserID]domain.State, len(seed))
	for _, entry := range seed {
		states[entry.UserID] = entry.State
	}
	b.store.Seed(d.Name, states)
	return nil
}
