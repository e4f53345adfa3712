package config

import (
	"fmt"
	"net/mail"
	"strings"
)

// MailConfig configures order confirmation e-mails. An empty APIKey selects the log mailer.
type MailConfig struct {
	APIKey    string `koanf:"apikey"`
	FromName  string `koanf:"fromname"`
	FromEmail string `koanf:"fromemail"`
}

// String returns a string representation of the mail configuration.
func (c *MailConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Mail ---\n")
	b.WriteString(fmt.Sprintf("  apikey: %s\n", MaskSecret(c.APIKey)))
	b.WriteString(fmt.Sprintf("  fromname: %s\n", c.FromName))
	b.WriteString(fmt.Sprintf("  fromemail: %s\n", c.FromEmail))
	return b.String()
}

func (c *MailConfig) Validate() error {
	if c.APIKey == "" {
		return nil
	}
	if c.FromEmail == "" {
		return fmt.Errorf("mail sender address is not configured")
	}
	if _, err := mail.ParseAddress(c.FromEmail); err != nil {
		return fmt.Errorf("invalid mail sender address %q: %w", c.FromEmail, err)
	}
	if c.FromName == "" {
		c.FromName = "BindasSticks"
	}
	return nil
}
