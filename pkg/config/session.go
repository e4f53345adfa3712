package config

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	SessionDriverMemory = "memory"
	SessionDriverRedis  = "redis"
)

// SessionConfig configures the anonymous shopper session that scopes cart and favorites.
type SessionConfig struct {
	Driver     string        `koanf:"driver"`
	CookieName string        `koanf:"cookiename"`
	TTL        time.Duration `koanf:"ttl"`
	Secure     bool          `koanf:"secure"`
	SameSite   string        `koanf:"samesite"`
	// Capacity bounds the in-memory store; 0 means unbounded.
	Capacity uint64      `koanf:"capacity"`
	Redis    RedisConfig `koanf:"redis"`
}

const (
	defaultSessionCookie = "storefront_session"
	defaultSessionTTL    = 30 * 24 * time.Hour
)

// String returns a string representation of the session configuration.
func (c *SessionConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Session ---\n")
	b.WriteString(fmt.Sprintf("  driver: %s\n", c.Driver))
	b.WriteString(fmt.Sprintf("  cookiename: %s\n", c.CookieName))
	b.WriteString(fmt.Sprintf("  ttl: %s\n", c.TTL))
	b.WriteString(fmt.Sprintf("  secure: %t\n", c.Secure))
	b.WriteString(fmt.Sprintf("  samesite: %s\n", c.SameSite))
	b.WriteString(fmt.Sprintf("  capacity: %d\n", c.Capacity))
	if c.Driver == SessionDriverRedis {
		b.WriteString(c.Redis.String())
	}
	return b.String()
}

func (c *SessionConfig) Validate() error {
	if c.Driver == "" {
		c.Driver = SessionDriverMemory
	}
	if c.CookieName == "" {
		c.CookieName = defaultSessionCookie
	}
	if c.TTL < 0 {
		return fmt.Errorf("session ttl cannot be negative: %s", c.TTL)
	}
	if c.TTL == 0 {
		c.TTL = defaultSessionTTL
	}
	if _, err := c.SameSiteMode(); err != nil {
		return err
	}
	switch c.Driver {
	case SessionDriverMemory:
		return nil
	case SessionDriverRedis:
		return c.Redis.Validate()
	default:
		return fmt.Errorf("unknown session driver: %q", c.Driver)
	}
}

// SameSiteMode maps the configured value to an http.SameSite; empty means Lax.
func (c *SessionConfig) SameSiteMode() (http.SameSite, error) {
	switch strings.ToLower(c.SameSite) {
	case "", "lax":
		return http.SameSiteLaxMode, nil
	case "strict":
		return http.SameSiteStrictMode, nil
	case "none":
		return http.SameSiteNoneMode, nil
	default:
		return 0, fmt.Errorf("unknown session samesite mode: %q", c.SameSite)
	}
}
