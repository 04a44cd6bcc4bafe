package routes

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/circuit/guest-pool/internal/app/ports"
	"github.com/circuit/guest-pool/internal/app/services"
	"github.com/circuit/guest-pool/internal/domain"
)

// WebhookRoutes receives presence-change pushes from the platform.
type WebhookRoutes struct {
	presence ports.PresenceWriter
	registry ports.SubscriptionRegistry
	log      *slog.Logger
}

// NewWebhookRoutes constructs webhook routes.
func NewWebhookRoutes(presence ports.PresenceWriter, registry ports.SubscriptionRegistry, log *slog.Logger) *WebhookRoutes {
	return &WebhookRoutes{presence: presence, registry: registry, log: log}
}

// RegisterRoutes registers webhook endpoints.
func (w *WebhookRoutes) RegisterRoutes(s *echo.Echo) {
	s.POST(services.HookPath, w.handlePresenceEvent)
}

type presenceEvent struct {
	WebhookID     string `json:"webhookId"`
	PresenceState struct {
		UserID string `json:"userId"`
		State  string `json:"state"`
	} `json:"presenceState"`
}

// handlePresenceEvent applies one presence transition. Events with an
// unknown subscription id are dropped but still acknowledged, so the
// platform does not retry them forever.
func (w *WebhookRoutes) handlePresenceEvent(c echo.Context) error {
	var event presenceEvent
	if err := c.Bind(&event); err != nil {
		return c.String(http.StatusBadRequest, "invalid payload")
	}
	if event.WebhookID == "" || event.PresenceState.UserID == "" {
		return c.String(http.StatusBadRequest, "missing webhookId or userId")
	}

	name, ok := w.registry.DomainFor(domain.SubscriptionID(event.WebhookID))
	if !ok {
		w.log.Error("Presence event for unknown subscription", "webhook_id", event.WebhookID)
		return c.NoContent(http.StatusNoContent)
	}

	userID := domain.UserID(event.PresenceState.UserID)
	state := domain.State(event.PresenceState.State)
	previous, _ := w.presence.Set(name, userID, state)
	w.log.Info("State change", "domain", name, "user_id", userID, "from", previous, "to", state)
	return c.NoContent(http.StatusNoContent)
}
