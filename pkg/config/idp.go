package config

import (
	"fmt"
	"strings"
	"time"
)

// IdP configures verification of admin bearer tokens against a JWKS endpoint.
// For Firebase Authentication the JWKS URL is
// https://www.googleapis.com/service_accounts/v1/jwk/securetoken@system.gserviceaccount.com,
// the issuer is https://securetoken.google.com/<project> and the audience is the project id.
type IdP struct {
	JwksURL     string        `koanf:"jwksurl"`
	Issuer      string        `koanf:"issuer"`
	ClientID    string        `koanf:"clientid"`
	Audience    string        `koanf:"audience"`
	MinInterval time.Duration `koanf:"mininterval"`
	// AllowedEmails restricts admin access to tokens carrying one of these e-mails.
	AllowedEmails []string `koanf:"allowedemails"`
}

// String returns a string representation of the IdP configuration.
func (c *IdP) String() string {
	var b strings.Builder
	b.WriteString("\n--- Admin IdP ---\n")
	b.WriteString(fmt.Sprintf("  jwksurl: %s\n", c.JwksURL))
	b.WriteString(fmt.Sprintf("  issuer: %s\n", c.Issuer))
	b.WriteString(fmt.Sprintf("  clientid: %s\n", c.ClientID))
	b.WriteString(fmt.Sprintf("  audience: %s\n", c.Audience))
	b.WriteString(fmt.Sprintf("  mininterval: %s\n", c.MinInterval))
	b.WriteString(fmt.Sprintf("  allowedemails: %d configured\n", len(c.AllowedEmails)))
	return b.String()
}

func (c *IdP) Validate() error {
	if c.JwksURL == "" {
		return fmt.Errorf("IdP JWKS URL cannot be empty")
	}
	if c.Issuer == "" {
		return fmt.Errorf("IdP issuer cannot be empty")
	}
	if c.ClientID == "" && c.Audience == "" {
		return fmt.Errorf("IdP client ID or audience must be configured")
	}
	if c.MinInterval <= 0 {
		return fmt.Errorf("IdP minimum interval must be greater than zero")
	}
	return nil
}
