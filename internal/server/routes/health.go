package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/circuit/guest-pool/internal/app/ports"
	"github.com/circuit/guest-pool/internal/domain"
)

// HealthRoutes reports per-domain readiness: a domain is ready once its
// presence partition has been seeded.
type HealthRoutes struct {
	domains  []domain.Domain
	presence ports.PresenceReader
}

// NewHealthRoutes constructs health routes.
func NewHealthRoutes(domains []domain.Domain, presence ports.PresenceReader) *HealthRoutes {
	return &HealthRoutes{domains: domains, presence: presence}
}

// RegisterRoutes registers the health endpoint.
func (h *HealthRoutes) RegisterRoutes(s *echo.Echo) {
	s.GET("/healthz", h.handleHealth)
}

type domainHealth struct {
	Domain string `json:"domain"`
	Ready  bool   `json:"ready"`
}

type healthResponse struct {
	Status  string         `json:"status"`
	Domains []domainHealth `json:"domains"`
}

func (h *HealthRoutes) handleHealth(c echo.Context) error {
	resp := healthResponse{Status: "ok", Domains: make([]domainHealth, 0, len(h.domains))}
	for _, d := range h.domains {
		ready := h.presence.Ready(d.Name)
		if !ready {
			resp.Status = "degraded"
		}
		resp.Domains = append(resp.Domains, domainHealth{Domain: string(d.Name), Ready: ready})
	}
	return c.JSON(http.StatusOK, resp)
}
