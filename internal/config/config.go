// Package config holds the configuration of the storefront and notifier processes.
package config

import (
	"fmt"
	"strings"

	"github.com/bindassticks/storefront/pkg/config"
	"github.com/bindassticks/storefront/pkg/config/configloader"
)

var (
	_ configloader.Validator = (*Config)(nil)
	_ configloader.Validator = (*NotifierConfig)(nil)
)

const (
	CatalogDriverMemory    = "memory"
	CatalogDriverFirestore = "firestore"
	CatalogDriverPostgres  = "postgres"

	MediaDriverNone = "none"
	MediaDriverR2   = "r2"
	MediaDriverGCS  = "gcs"
)

// Config is the configuration of the storefront HTTP API.
type Config struct {
	HTTPServer config.HTTPConfig      `koanf:"server"`
	Log        config.LogConfig       `koanf:"log"`
	PProf      config.PProfConfig     `koanf:"pprof"`
	Shutdown   config.ShutdownConfig  `koanf:"shutdown"`
	Session    config.SessionConfig   `koanf:"session"`
	Catalog    CatalogConfig          `koanf:"catalog"`
	Media      MediaConfig            `koanf:"media"`
	Checkout   CheckoutConfig         `koanf:"checkout"`
	Nats       config.NATSConfig      `koanf:"nats"`
	Telemetry  config.TelemetryConfig `koanf:"telemetry"`
	Admin      AdminConfig            `koanf:"admin"`
}

// CatalogConfig selects where products are kept.
type CatalogConfig struct {
	Driver    string                 `koanf:"driver"`
	Firestore config.FirestoreConfig `koanf:"firestore"`
	Database  config.DatabaseConfig  `koanf:"database"`
}

// MediaConfig selects the object storage for product images.
type MediaConfig struct {
	Driver         string                  `koanf:"driver"`
	MaxUploadBytes int64                   `koanf:"maxuploadbytes"`
	R2             config.R2Config         `koanf:"r2"`
	GCS            config.GCSConfig        `koanf:"gcs"`
	Resilience     config.ResilienceConfig `koanf:"resilience"`
}

// CheckoutConfig holds checkout amounts in paise.
type CheckoutConfig struct {
	MinimumOrder   int64 `koanf:"minimumorder"`
	DeliveryCharge int64 `koanf:"deliverycharge"`
}

// AdminConfig guards the admin console. When disabled every admin route answers 404.
// Login is optional; without it admins bring a token issued elsewhere.
type AdminConfig struct {
	Enabled bool                  `koanf:"enabled"`
	IdP     config.IdP            `koanf:"idp"`
	Login   config.KeycloakConfig `koanf:"login"`
}

const (
	defaultMaxUploadBytes = 5 << 20
	defaultMinimumOrder   = 200_00
	defaultDeliveryCharge = 50_00
)

func (c *Config) String() string {
	var b strings.Builder
	b.WriteString(c.HTTPServer.String())
	b.WriteString(c.Log.String())
	b.WriteString(c.PProf.String())
	b.WriteString(c.Shutdown.String())
	b.WriteString(c.Session.String())
	b.WriteString(c.Catalog.String())
	b.WriteString(c.Media.String())
	b.WriteString(c.Checkout.String())
	b.WriteString(c.Nats.String())
	b.WriteString(c.Telemetry.String())
	b.WriteString(c.Admin.String())
	return b.String()
}

// Validate checks if the configuration values are valid
func (c *Config) Validate() error {
	if err := c.HTTPServer.Validate(); err != nil {
		return err
	}
	if err := c.Log.Validate(); err != nil {
		return err
	}
	if err := c.PProf.Validate(); err != nil {
		return err
	}
	if err := c.Shutdown.Validate(); err != nil {
		return err
	}
	if err := c.Session.Validate(); err != nil {
		return err
	}
	if err := c.Catalog.Validate(); err != nil {
		return err
	}
	if err := c.Media.Validate(); err != nil {
		return err
	}
	if err := c.Checkout.Validate(); err != nil {
		return err
	}
	if err := c.Nats.Validate(); err != nil {
		return err
	}
	if err := c.Telemetry.Validate(); err != nil {
		return err
	}
	return c.Admin.Validate()
}

func (c *CatalogConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Catalog ---\n")
	b.WriteString(fmt.Sprintf("  driver: %s\n", c.Driver))
	switch c.Driver {
	case CatalogDriverFirestore:
		b.WriteString(c.Firestore.String())
	case CatalogDriverPostgres:
		b.WriteString(c.Database.String())
	}
	return b.String()
}

func (c *CatalogConfig) Validate() error {
	switch c.Driver {
	case "", CatalogDriverMemory:
		c.Driver = CatalogDriverMemory
		return nil
	case CatalogDriverFirestore:
		return c.Firestore.Validate()
	case CatalogDriverPostgres:
		return c.Database.Validate()
	default:
		return fmt.Errorf("unknown catalog driver: %q", c.Driver)
	}
}

func (c *MediaConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Media ---\n")
	b.WriteString(fmt.Sprintf("  driver: %s\n", c.Driver))
	b.WriteString(fmt.Sprintf("  maxuploadbytes: %d\n", c.MaxUploadBytes))
	switch c.Driver {
	case MediaDriverR2:
		b.WriteString(c.R2.String())
		b.WriteString(c.Resilience.String())
	case MediaDriverGCS:
		b.WriteString(c.GCS.String())
		b.WriteString(c.Resilience.String())
	}
	return b.String()
}

func (c *MediaConfig) Validate() error {
	if c.MaxUploadBytes < 0 {
		return fmt.Errorf("media max upload bytes cannot be negative: %d", c.MaxUploadBytes)
	}
	if c.MaxUploadBytes == 0 {
		c.MaxUploadBytes = defaultMaxUploadBytes
	}
	switch c.Driver {
	case "", MediaDriverNone:
		c.Driver = MediaDriverNone
		return nil
	case MediaDriverR2:
		if err := c.R2.Validate(); err != nil {
			return err
		}
	case MediaDriverGCS:
		if err := c.GCS.Validate(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown media driver: %q", c.Driver)
	}
	return c.Resilience.Validate()
}

func (c *CheckoutConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Checkout ---\n")
	b.WriteString(fmt.Sprintf("  minimumorder: %d\n", c.MinimumOrder))
	b.WriteString(fmt.Sprintf("  deliverycharge: %d\n", c.DeliveryCharge))
	return b.String()
}

func (c *CheckoutConfig) Validate() error {
	if c.MinimumOrder < 0 || c.DeliveryCharge < 0 {
		return fmt.Errorf("checkout amounts cannot be negative: minimum %d, delivery %d", c.MinimumOrder, c.DeliveryCharge)
	}
	if c.MinimumOrder == 0 {
		c.MinimumOrder = defaultMinimumOrder
	}
	if c.DeliveryCharge == 0 {
		c.DeliveryCharge = defaultDeliveryCharge
	}
	return nil
}

func (c *AdminConfig) String() string {
	if !c.Enabled {
		return "\n--- Admin ---\n  enabled: false\n"
	}
	if !c.Login.Configured() {
		return c.IdP.String()
	}
	return c.IdP.String() + c.Login.String()
}

func (c *AdminConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if err := c.IdP.Validate(); err != nil {
		return err
	}
	if len(c.IdP.AllowedEmails) == 0 {
		return fmt.Errorf("admin console requires at least one allowed e-mail")
	}
	if c.Login.Configured() {
		return c.Login.Validate()
	}
	return nil
}

// NotifierConfig is the configuration of the order confirmation worker.
type NotifierConfig struct {
	Log        config.LogConfig        `koanf:"log"`
	PProf      config.PProfConfig      `koanf:"pprof"`
	Shutdown   config.ShutdownConfig   `koanf:"shutdown"`
	Nats       config.NATSConfig       `koanf:"nats"`
	Subscriber config.SubscriberConfig `koanf:"subscriber"`
	Mail       config.MailConfig       `koanf:"mail"`
	Probes     config.ProbesConfig     `koanf:"probes"`
	Telemetry  config.TelemetryConfig  `koanf:"telemetry"`
}

func (c *NotifierConfig) String() string {
	var b strings.Builder
	b.WriteString(c.Log.String())
	b.WriteString(c.PProf.String())
	b.WriteString(c.Shutdown.String())
	b.WriteString(c.Nats.String())
	b.WriteString(c.Subscriber.String())
	b.WriteString(c.Mail.String())
	b.WriteString(c.Probes.String())
	b.WriteString(c.Telemetry.String())
	return b.String()
}

func (c *NotifierConfig) Validate() error {
	if err := c.Log.Validate(); err != nil {
		return err
	}
	if err := c.PProf.Validate(); err != nil {
		return err
	}
	if err := c.Shutdown.Validate(); err != nil {
		return err
	}
	if err := c.Nats.Validate(); err != nil {
		return err
	}
	if err := c.Subscriber.Validate(); err != nil {
		return err
	}
	if err := c.Mail.Validate(); err != nil {
		return err
	}
	if err := c.Probes.Validate(); err != nil {
		return err
	}
	return c.Telemetry.Validate()
}
