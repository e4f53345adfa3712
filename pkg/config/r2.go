package config

import (
	"fmt"
	"strings"
)

// R2Config configures Cloudflare R2 through its S3 compatible API.
type R2Config struct {
	AccountID       string `koanf:"accountid"`
	AccessKeyID     string `koanf:"accesskeyid"`
	SecretAccessKey string `koanf:"secretaccesskey"`
	Bucket          string `koanf:"bucket"`
	// Endpoint overrides https://<account>.r2.cloudflarestorage.com, e.g. for a local S3 mock.
	Endpoint  string `koanf:"endpoint"`
	PublicURL string `koanf:"publicurl"`
}

// String returns a string representation of the R2 configuration.
func (c *R2Config) String() string {
	var b strings.Builder
	b.WriteString("\n--- R2 ---\n")
	b.WriteString(fmt.Sprintf("  accountid: %s\n", MaskSecret(c.AccountID)))
	b.WriteString(fmt.Sprintf("  accesskeyid: %s\n", MaskSecret(c.AccessKeyID)))
	b.WriteString(fmt.Sprintf("  secretaccesskey: %s\n", MaskSecret(c.SecretAccessKey)))
	b.WriteString(fmt.Sprintf("  bucket: %s\n", c.Bucket))
	b.WriteString(fmt.Sprintf("  endpoint: %s\n", c.EndpointURL()))
	b.WriteString(fmt.Sprintf("  publicurl: %s\n", c.PublicURL))
	return b.String()
}

func (c *R2Config) Validate() error {
	if c.AccountID == "" && c.Endpoint == "" {
		return fmt.Errorf("r2 account id or endpoint must be configured")
	}
	if c.AccessKeyID == "" || c.SecretAccessKey == "" {
		return fmt.Errorf("r2 access key is not configured")
	}
	if c.Bucket == "" {
		return fmt.Errorf("r2 bucket is not configured")
	}
	if c.PublicURL == "" {
		return fmt.Errorf("r2 public url is not configured")
	}
	c.PublicURL = strings.TrimRight(c.PublicURL, "/")
	return nil
}

// EndpointURL returns the S3 endpoint for the account.
func (c *R2Config) EndpointURL() string {
	if c.Endpoint != "" {
		return c.Endpoint
	}
	return fmt.Sprintf("https://%s.r2.cloudflarestorage.com", c.AccountID)
}
