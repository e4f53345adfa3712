package config

import (
	"fmt"
	"strings"
	"time"
)

type FirestoreConfig struct {
	ProjectID string `koanf:"projectid"`
	// CredentialsFile is a service account JSON key; empty uses application default credentials.
	CredentialsFile string        `koanf:"credentialsfile"`
	Collection      string        `koanf:"collection"`
	Timeout         time.Duration `koanf:"timeout"`
}

const defaultProductsCollection = "products"

// String returns a string representation of the Firestore configuration.
func (c *FirestoreConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Firestore ---\n")
	b.WriteString(fmt.Sprintf("  projectid: %s\n", c.ProjectID))
	b.WriteString(fmt.Sprintf("  credentialsfile: %s\n", c.CredentialsFile))
	b.WriteString(fmt.Sprintf("  collection: %s\n", c.Collection))
	b.WriteString(fmt.Sprintf("  timeout: %s\n", c.Timeout))
	return b.String()
}

func (c *FirestoreConfig) Validate() error {
	if c.ProjectID == "" {
		return fmt.Errorf("firestore project id is not configured")
	}
	if c.Collection == "" {
		c.Collection = defaultProductsCollection
	}
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	return nil
}
