package config

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleDomains = `
domains:
  circuitsandbox.net:
    credentials:
      clientId: oauth-id
      clientSecret: oauth-secret
    pools:
      - clientId: pool-1
        users:
          - userId: u1
            email: one@example.com
            password: pw1
            clientId: guest-1
          - userId: u2
            email: two@example.com
            password: pw2
            clientId: guest-1
`

func writeDomainFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write domain file: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GUESTPOOL_CONFIG", writeDomainFile(t, sampleDomains))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Fatalf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Webhook.PublicURL != "http://localhost:8080" {
		t.Fatalf("expected localhost public URL fallback, got %q", cfg.Webhook.PublicURL)
	}
	if cfg.Platform.TimeoutMS != 10000 {
		t.Fatalf("expected default platform timeout, got %d", cfg.Platform.TimeoutMS)
	}
	if len(cfg.Domains) != 1 {
		t.Fatalf("expected one domain, got %d", len(cfg.Domains))
	}

	d, ok := cfg.Domain("circuitsandbox.net")
	if !ok {
		t.Fatal("expected circuitsandbox.net to be configured")
	}
	if d.Credentials.ClientID != "oauth-id" {
		t.Fatalf("unexpected oauth client id %q", d.Credentials.ClientID)
	}
	pool, ok := d.Pool("pool-1")
	if !ok {
		t.Fatal("expected pool-1 to exist")
	}
	if len(pool.Users) != 2 || pool.Users[0].UserID != "u1" {
		t.Fatalf("pool users not parsed in order: %+v", pool.Users)
	}
}

func TestLoadTrimsPublicURLTrailingSlash(t *testing.T) {
	t.Setenv("GUESTPOOL_CONFIG", writeDomainFile(t, sampleDomains))
	t.Setenv("GUESTPOOL_PUBLIC_URL", "https://broker.example.com/")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Webhook.PublicURL != "https://broker.example.com" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.Webhook.PublicURL)
	}
}

func TestLoadRejectsInvalidPort(t *testing.T) {
	t.Setenv("GUESTPOOL_CONFIG", writeDomainFile(t, sampleDomains))
	t.Setenv("GUESTPOOL_PORT", "70000")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for out-of-range port")
	}
}

func TestLoadRejectsMissingDomainFile(t *testing.T) {
	t.Setenv("GUESTPOOL_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing domain file")
	}
}

func TestLoadRejectsDuplicatePoolClientID(t *testing.T) {
	duplicate := `
domains:
  circuitsandbox.net:
    credentials:
      clientId: oauth-id
      clientSecret: oauth-secret
    pools:
      - clientId: pool-1
        users:
          - userId: u1
            email: one@example.com
            password: pw1
            clientId: guest-1
      - clientId: pool-1
        users:
          - userId: u2
            email: two@example.com
            password: pw2
            clientId: guest-1
`
	t.Setenv("GUESTPOOL_CONFIG", writeDomainFile(t, duplicate))

	if _, err := Load(); err == nil {
		t.Fatal("expected duplicate pool client id to be rejected")
	}
}

func TestPlatformTimeoutClamped(t *testing.T) {
	t.Setenv("GUESTPOOL_CONFIG", writeDomainFile(t, sampleDomains))
	t.Setenv("GUESTPOOL_PLATFORM_TIMEOUT_MS", "600000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Platform.TimeoutMS != 60000 {
		t.Fatalf("expected timeout clamp at 60000, got %d", cfg.Platform.TimeoutMS)
	}
}
