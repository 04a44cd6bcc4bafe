package config

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/circuit/guest-pool/internal/domain"
)

type Config struct {
	Server   ServerConfig
	Webhook  WebhookConfig
	Platform PlatformConfig
	Domains  []domain.Domain
}

type ServerConfig struct {
	Port int
}

type WebhookConfig struct {
	// PublicURL is the externally reachable base URL the platform pushes
	// presence events to; the hook path is appended to it.
	PublicURL string
}

type PlatformConfig struct {
	TimeoutMS int
}

type domainFile struct {
	Domains map[string]domainEntry `mapstructure:"domains"`
}

type domainEntry struct {
	Credentials credentialsEntry `mapstructure:"credentials"`
	Pools       []poolEntry      `mapstructure:"pools"`
}

type credentialsEntry struct {
	ClientID     string `mapstructure:"clientId"`
	ClientSecret string `mapstructure:"clientSecret"`
}

type poolEntry struct {
	ClientID string      `mapstructure:"clientId"`
	Users    []userEntry `mapstructure:"users"`
}

type userEntry struct {
	UserID   string `mapstructure:"userId"`
	Email    string `mapstructure:"email"`
	Password string `mapstructure:"password"`
	ClientID string `mapstructure:"clientId"`
}

func Load() (Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("guestpool_port", 8080)
	v.SetDefault("guestpool_public_url", "")
	v.SetDefault("guestpool_config", "config.yaml")
	v.SetDefault("guestpool_platform_timeout_ms", 10000)

	port := v.GetInt("guestpool_port")
	if port <= 0 || port > 65535 {
		return Config{}, fmt.Errorf("invalid GUESTPOOL_PORT: %d", port)
	}

	timeoutMS := v.GetInt("guestpool_platform_timeout_ms")
	if timeoutMS <= 0 {
		timeoutMS = 10000
	}
	if timeoutMS > 60000 {
		timeoutMS = 60000
	}

	publicURL := strings.TrimRight(strings.TrimSpace(v.GetString("guestpool_public_url")), "/")
	if publicURL == "" {
		publicURL = fmt.Sprintf("http://localhost:%d", port)
	}

	domains, err := loadDomains(strings.TrimSpace(v.GetString("guestpool_config")))
	if err != nil {
		return Config{}, err
	}

	return Config{
		Server:   ServerConfig{Port: port},
		Webhook:  WebhookConfig{PublicURL: publicURL},
		Platform: PlatformConfig{TimeoutMS: timeoutMS},
		Domains:  domains,
	}, nil
}

func loadDomains(path string) ([]domain.Domain, error) {
	if path == "" {
		return nil, fmt.Errorf("GUESTPOOL_CONFIG path is required")
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read domain config %s: %w", path, err)
	}

	var file domainFile
	if err := v.Unmarshal(&file); err != nil {
		return nil, fmt.Errorf("parse domain config %s: %w", path, err)
	}
	if len(file.Domains) == 0 {
		return nil, fmt.Errorf("domain config %s declares no domains", path)
	}

	names := make([]string, 0, len(file.Domains))
	for name := range file.Domains {
		names = append(names, name)
	}
	sort.Strings(names)

	domains := make([]domain.Domain, 0, len(names))
	for _, name := range names {
		entry := file.Domains[name]
		d := domain.Domain{
			Name: domain.Name(name),
			Credentials: domain.Credentials{
				ClientID:     entry.Credentials.ClientID,
				ClientSecret: entry.Credentials.ClientSecret,
			},
		}
		for _, pool := range entry.Pools {
			p := domain.Pool{ClientID: pool.ClientID}
			for _, user := range pool.Users {
				p.Users = append(p.Users, domain.Account{
					UserID:   domain.UserID(user.UserID),
					Email:    user.Email,
					Password: user.Password,
					ClientID: user.ClientID,
				})
			}
			d.Pools = append(d.Pools, p)
		}
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("domain config %s: %w", path, err)
		}
		domains = append(domains, d)
	}
	return domains, nil
}

// Domain returns the configured domain by name.
func (c Config) Domain(name domain.Name) (domain.Domain, bool) {
	for _, d := range c.Domains {
		if d.Name == name {
			return d, true
		}
	}
	return domain.Domain{}, false
}

func (c Config) PlatformTimeout() time.Duration {
	return time.Duration(c.Platform.TimeoutMS) * time.Millisecond
}
