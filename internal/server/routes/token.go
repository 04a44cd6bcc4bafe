package routes

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/circuit/guest-pool/internal/app/services"
	"github.com/circuit/guest-pool/internal/domain"
)

// TokenRoutes serves the credential dispenser endpoint.
type TokenRoutes struct {
	dispenser *services.Dispenser
}

// NewTokenRoutes constructs token routes.
func NewTokenRoutes(dispenser *services.Dispenser) *TokenRoutes {
	return &TokenRoutes{dispenser: dispenser}
}

// RegisterRoutes registers the token endpoint.
func (t *TokenRoutes) RegisterRoutes(s *echo.Echo) {
	s.GET("/token", t.handleToken)
}

func (t *TokenRoutes) handleToken(c echo.Context) error {
	name := domain.Name(c.QueryParam("domain"))
	clientID := c.QueryParam("clientId")

	token, err := t.dispenser.Dispense(name, clientID)
	if err != nil {
		return c.String(dispenseStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{"token": token})
}

func dispenseStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrMissingParameter):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnknownPool):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrDomainNotReady), errors.Is(err, domain.ErrNoAvailableAccount):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
