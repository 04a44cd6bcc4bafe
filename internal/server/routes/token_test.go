package routes

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/circuit/guest-pool/internal/app/services"
	"github.com/circuit/guest-pool/internal/config"
	"github.com/circuit/guest-pool/internal/domain"
	"github.com/circuit/guest-pool/internal/presence"
)

func poolConfig() config.Config {
	return config.Config{
		Domains: []domain.Domain{{
			Name:        "d1",
			Credentials: domain.Credentials{ClientID: "oauth-id", ClientSecret: "oauth-secret"},
			Pools: []domain.Pool{{
				ClientID: "p1",
				Users: []domain.Account{
					{UserID: "u1", Email: "one@example.com", Password: "pw1", ClientID: "guest-1"},
					{UserID: "u2", Email: "two@example.com", Password: "pw2", ClientID: "guest-1"},
				},
			}},
		}},
	}
}

func getToken(t *testing.T, e *echo.Echo, query string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/token"+query, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeToken(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var payload struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode token response: %v (body=%q)", err, rec.Body.String())
	}
	return payload.Token
}

func expectedCredential(email, password, clientID string) string {
	return base64.StdEncoding.EncodeToString([]byte(email + ":" + password + ":" + clientID))
}

func TestTokenEndpointStatusCodes(t *testing.T) {
	t.Parallel()

	store := presence.NewStore()
	e := echo.New()
	NewTokenRoutes(services.NewDispenser(poolConfig(), store)).RegisterRoutes(e)

	if rec := getToken(t, e, ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("missing params: expected 400, got %d", rec.Code)
	}
	if rec := getToken(t, e, "?clientId=p1"); rec.Code != http.StatusBadRequest {
		t.Fatalf("missing domain: expected 400, got %d", rec.Code)
	}
	if rec := getToken(t, e, "?clientId=p1&domain=d1"); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("unseeded domain: expected 503, got %d", rec.Code)
	}

	store.Seed("d1", map[domain.UserID]domain.State{"u1": domain.StateAvailable})
	if rec := getToken(t, e, "?clientId=absent&domain=d1"); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown pool: expected 404, got %d", rec.Code)
	}
	if rec := getToken(t, e, "?clientId=p1&domain=other.example"); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("unknown domain: expected 503, got %d", rec.Code)
	}
}

// The end-to-end dispense scenario: U1 seeded AVAILABLE and U2 BUSY, then
// presence flips arrive over the webhook and the dispensed credential
// follows in first-match order.
func TestTokenDispenseFollowsWebhookEvents(t *testing.T) {
	t.Parallel()

	store := presence.NewStore()
	store.RegisterSubscription("sub-1", "d1")
	store.Seed("d1", map[domain.UserID]domain.State{
		"u1": domain.StateAvailable,
		"u2": domain.StateBusy,
	})

	e := echo.New()
	NewTokenRoutes(services.NewDispenser(poolConfig(), store)).RegisterRoutes(e)
	NewWebhookRoutes(store, store, discardLogger()).RegisterRoutes(e)

	rec := getToken(t, e, "?clientId=p1&domain=d1")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	if got := decodeToken(t, rec); got != expectedCredential("one@example.com", "pw1", "guest-1") {
		t.Fatalf("expected u1's credential, got %q", got)
	}

	postPresenceEvent(t, e, `{"webhookId":"sub-1","presenceState":{"userId":"u1","state":"BUSY"}}`)
	rec = getToken(t, e, "?clientId=p1&domain=d1")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 with both users busy, got %d", rec.Code)
	}

	postPresenceEvent(t, e, `{"webhookId":"sub-1","presenceState":{"userId":"u2","state":"AVAILABLE"}}`)
	rec = getToken(t, e, "?clientId=p1&domain=d1")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 after u2 became available, got %d", rec.Code)
	}
	if got := decodeToken(t, rec); got != expectedCredential("two@example.com", "pw2", "guest-1") {
		t.Fatalf("expected u2's credential (u1 still busy), got %q", got)
	}
}
