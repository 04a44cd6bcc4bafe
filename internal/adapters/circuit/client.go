// Package circuit talks to the Circuit REST API: OAuth2 client-credentials
// token acquisition, webhook subscription lifecycle, and bulk presence
// queries. One Client is scoped to one domain's token host.
package circuit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/circuit/guest-pool/internal/app/ports"
	"github.com/circuit/guest-pool/internal/domain"
)

const tokenScope = "ALL"

// Factory builds domain-scoped clients. BaseURL may be overridden in tests
// to point at a local server; it defaults to https://<domain>.
type Factory struct {
	HTTPClient *http.Client
	BaseURL    func(name domain.Name) string
}

func NewFactory(timeout time.Duration) *Factory {
	return &Factory{
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

func (f *Factory) base(name domain.Name) string {
	if f.BaseURL != nil {
		return strings.TrimRight(f.BaseURL(name), "/")
	}
	return "https://" + string(name)
}

// ClientFor acquires a bearer token for the domain via the
// client-credentials grant and returns a client authenticated with it.
func (f *Factory) ClientFor(ctx context.Context, d domain.Domain) (ports.PlatformClient, error) {
	base := f.base(d.Name)
	grant := clientcredentials.Config{
		ClientID:     d.Credentials.ClientID,
		ClientSecret: d.Credentials.ClientSecret,
		TokenURL:     base + "/oauth/token",
		Scopes:       []string{tokenScope},
	}
	if f.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, f.HTTPClient)
	}
	token, err := grant.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("token grant for %s: %w", d.Name, err)
	}
	return &Client{
		baseURL:    base,
		token:      token.AccessToken,
		httpClient: f.HTTPClient,
	}, nil
}

// Client issues bearer-authenticated calls against one domain's REST API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// DeleteWebhooks clears all webhook subscriptions registered for the domain.
func (c *Client) DeleteWebhooks(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/rest/webhooks", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("delete webhooks failed: %s", strings.TrimSpace(string(payload)))
	}
	return nil
}

// SubscribePresence creates a presence-change subscription for userIDs and
// returns the platform-issued subscription id.
func (c *Client) SubscribePresence(ctx context.Context, hookURL string, userIDs []domain.UserID) (domain.SubscriptionID, error) {
	body := map[string]any{
		"url":     hookURL,
		"userIds": userIDs,
	}
	raw, _ := json.Marshal(body)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/rest/webhooks/presence", bytes.NewReader(raw))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("presence subscription failed: %s", strings.TrimSpace(string(payload)))
	}
	var parsed struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", err
	}
	if strings.TrimSpace(parsed.ID) == "" {
		return "", fmt.Errorf("missing subscription id in response")
	}
	return domain.SubscriptionID(parsed.ID), nil
}

// QueryPresence bulk-fetches current presence for userIDs.
func (c *Client) QueryPresence(ctx context.Context, userIDs []domain.UserID) ([]ports.UserPresence, error) {
	ids := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		ids = append(ids, string(id))
	}
	endpoint := c.baseURL + "/rest/users/presence?userIds=" + url.QueryEscape(strings.Join(ids, ","))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("presence query failed: %s", strings.TrimSpace(string(payload)))
	}
	var parsed []struct {
		UserID string `json:"userId"`
		State  string `json:"state"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	out := make([]ports.UserPresence, 0, len(parsed))
	for _, entry := range parsed {
		out = append(out, ports.UserPresence{
			UserID: domain.UserID(entry.UserID),
			State:  domain.State(entry.State),
		})
	}
	return out, nil
}
