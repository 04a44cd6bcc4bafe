package domain

import (
	"fmt"
	"strings"
)

type Name string
type UserID string
type SubscriptionID string

// Credentials is the OAuth2 client pair used for the client-credentials
// grant against the domain's token host.
type Credentials struct {
	ClientID     string
	ClientSecret string
}

// Account is one backing service identity in a pool. UserID is the key the
// platform uses for presence tracking; Email/Password/ClientID together form
// the credential payload handed to callers.
type Account struct {
	UserID   UserID
	Email    string
	Password string
	ClientID string
}

// Pool is an ordered sequence of accounts published under one public
// client id. Order is load-bearing: the dispenser always picks the first
// available account, concentrating load on earlier entries.
type Pool struct {
	ClientID string
	Users    []Account
}

// Domain is one platform tenant: its OAuth2 credentials and its pools.
type Domain struct {
	Name        Name
	Credentials Credentials
	Pools       []Pool
}

// Pool returns the pool published under clientID, or false.
func (d Domain) Pool(clientID string) (Pool, bool) {
	for _, p := range d.Pools {
		if p.ClientID == clientID {
			return p, true
		}
	}
	return Pool{}, false
}

// UserIDs returns the distinct union of user ids across all pools,
// preserving first-occurrence order. This is the id set subscriptions and
// seed queries are scoped to.
func (d Domain) UserIDs() []UserID {
	seen := make(map[UserID]struct{})
	ids := make([]UserID, 0)
	for _, pool := range d.Pools {
		for _, user := range pool.Users {
			if _, ok := seen[user.UserID]; ok {
				continue
			}
			seen[user.UserID] = struct{}{}
			ids = append(ids, user.UserID)
		}
	}
	return ids
}

// Validate checks the structural invariants the rest of the system assumes:
// non-empty credentials, client ids unique within the domain, and every
// account carrying a user id and secret.
func (d Domain) Validate() error {
	if strings.TrimSpace(string(d.Name)) == "" {
		return fmt.Errorf("domain name is required")
	}
	if strings.TrimSpace(d.Credentials.ClientID) == "" || strings.TrimSpace(d.Credentials.ClientSecret) == "" {
		return fmt.Errorf("domain %s: oauth credentials are required", d.Name)
	}
	if len(d.Pools) == 0 {
		return fmt.Errorf("domain %s: at least one pool is required", d.Name)
	}
	clientIDs := make(map[string]struct{}, len(d.Pools))
	for _, pool := range d.Pools {
		if strings.TrimSpace(pool.ClientID) == "" {
			return fmt.Errorf("domain %s: pool client id is required", d.Name)
		}
		if _, ok := clientIDs[pool.ClientID]; ok {
			return fmt.Errorf("domain %s: duplicate pool client id %q", d.Name, pool.ClientID)
		}
		clientIDs[pool.ClientID] = struct{}{}
		if len(pool.Users) == 0 {
			return fmt.Errorf("domain %s: pool %s has no users", d.Name, pool.ClientID)
		}
		for _, user := range pool.Users {
			if strings.TrimSpace(string(user.UserID)) == "" {
				return fmt.Errorf("domain %s: pool %s: user id is required", d.Name, pool.ClientID)
			}
			if strings.TrimSpace(user.Email) == "" || user.Password == "" {
				return fmt.Errorf("domain %s: pool %s: user %s is missing login credentials", d.Name, pool.ClientID, user.UserID)
			}
		}
	}
	return nil
}
