package config

import (
	"fmt"
	"strings"
)

type GCSConfig struct {
	Bucket          string `koanf:"bucket"`
	CredentialsFile string `koanf:"credentialsfile"`
	// PublicURL defaults to https://storage.googleapis.com/<bucket>.
	PublicURL string `koanf:"publicurl"`
}

// String returns a string representation of the GCS configuration.
func (c *GCSConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- GCS ---\n")
	b.WriteString(fmt.Sprintf("  bucket: %s\n", c.Bucket))
	b.WriteString(fmt.Sprintf("  credentialsfile: %s\n", c.CredentialsFile))
	b.WriteString(fmt.Sprintf("  publicurl: %s\n", c.PublicURL))
	return b.String()
}

func (c *GCSConfig) Validate() error {
	if c.Bucket == "" {
		return fmt.Errorf("gcs bucket is not configured")
	}
	if c.PublicURL == "" {
		c.PublicURL = "https://storage.googleapis.com/" + c.Bucket
	}
	c.PublicURL = strings.TrimRight(c.PublicURL, "/")
	return nil
}
