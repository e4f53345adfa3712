package config

import (
	"fmt"
	"strings"
	"time"
)

type RedisConfig struct {
	Addr        string        `koanf:"addr"`
	Password    string        `koanf:"password"`
	DB          int           `koanf:"db"`
	DialTimeout time.Duration `koanf:"dialtimeout"`
	// KeyPrefix namespaces session keys, e.g. "storefront:session:".
	KeyPrefix string `koanf:"keyprefix"`
}

const defaultRedisKeyPrefix = "storefront:session:"

// String returns a string representation of the Redis configuration.
func (c *RedisConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Redis ---\n")
	b.WriteString(fmt.Sprintf("  addr: %s\n", c.Addr))
	b.WriteString(fmt.Sprintf("  password: %s\n", MaskSecret(c.Password)))
	b.WriteString(fmt.Sprintf("  db: %d\n", c.DB))
	b.WriteString(fmt.Sprintf("  dialtimeout: %s\n", c.DialTimeout))
	b.WriteString(fmt.Sprintf("  keyprefix: %s\n", c.KeyPrefix))
	return b.String()
}

func (c *RedisConfig) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("redis address is not configured")
	}
	if c.DB < 0 {
		return fmt.Errorf("redis db cannot be negative: %d", c.DB)
	}
	if c.DialTimeout <= 0 {
		c.DialTimeout = 5 * time.Second
	}
	if c.KeyPrefix == "" {
		c.KeyPrefix = defaultRedisKeyPrefix
	}
	return nil
}
