package config

import (
	"fmt"
	"strings"
)

// KeycloakConfig is the realm and confidential client used to exchange admin
// credentials for tokens.
type KeycloakConfig struct {
	URL      string `koanf:"url"`
	Realm    string `koanf:"realm"`
	ClientID string `koanf:"clientid"`
	Secret   string `koanf:"secret"`
}

// Configured reports whether a login endpoint was set up.
func (c *KeycloakConfig) Configured() bool {
	return c.URL != ""
}

func (c *KeycloakConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Admin Login ---\n")
	b.WriteString(fmt.Sprintf("  url: %s\n", c.URL))
	b.WriteString(fmt.Sprintf("  realm: %s\n", c.Realm))
	b.WriteString(fmt.Sprintf("  clientid: %s\n", c.ClientID))
	return b.String()
}

func (c *KeycloakConfig) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("IdP URL cannot be empty")
	}
	if c.Realm == "" {
		return fmt.Errorf("IdP realm cannot be empty")
	}
	if c.ClientID == "" {
		return fmt.Errorf("IdP client ID cannot be empty")
	}
	if c.Secret == "" {
		return fmt.Errorf("IdP secret cannot be empty")
	}
	return nil
}
