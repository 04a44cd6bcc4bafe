package services

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/circuit/guest-pool/internal/app/ports"
	"github.com/circuit/guest-pool/internal/config"
	"github.com/circuit/guest-pool/internal/domain"
)

// Dispenser hands out one credential per request from a configured pool,
// based purely on cached presence. It performs no I/O.
type Dispenser struct {
	cfg      config.Config
	presence ports.PresenceReader
}

func NewDispenser(cfg config.Config, presence ports.PresenceReader) *Dispenser {
	return &Dispenser{cfg: cfg, presence: presence}
}

// Dispense selects the first account in the pool's configured order whose
// cached presence is available and returns its credential. First-match is
// deliberate: load concentrates on earlier-listed accounts instead of
// rotating. Accounts with no cache entry are not eligible.
func (d *Dispenser) Dispense(name domain.Name, clientID string) (string, error) {
	if strings.TrimSpace(string(name)) == "" || strings.TrimSpace(clientID) == "" {
		return "", domain.ErrMissingParameter
	}

	cfgDomain, ok := d.cfg.Domain(name)
	if !ok {
		// A domain absent from config has no partition either; callers
		// see the same not-ready signal as a domain still seeding.
		return "", domain.ErrDomainNotReady
	}
	pool, ok := cfgDomain.Pool(clientID)
	if !ok {
		return "", fmt.Errorf("%w: %s", domain.ErrUnknownPool, clientID)
	}
	if !d.presence.Ready(name) {
		return "", domain.ErrDomainNotReady
	}

	for _, account := range pool.Users {
		state, ok := d.presence.State(name, account.UserID)
		if !ok || !state.Available() {
			continue
		}
		return encodeCredential(account), nil
	}
	return "", domain.ErrNoAvailableAccount
}

// encodeCredential packs the account's login material into the opaque token
// shape calling applications expect.
func encodeCredential(account domain.Account) string {
	payload := fmt.Sprintf("%s:%s:%s", account.Email, account.Password, account.ClientID)
	return base64.StdEncoding.EncodeToString([]byte(payload))
}
