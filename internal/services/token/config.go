// File: internal/services/token/config.go
package token

import (
	"fmt"
	"time"
)

type Config struct {
	SecretKey  string
	AccessTTL  time.Duration // short-lived access tokens
	RefreshTTL time.Duration // longer-lived refresh tokens
}

func (c *Config) Validate() error {
	if c.SecretKey == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.AccessTTL <= 0 {
		return fmt.Errorf("access token TTL must be positive")
	}
	if c.RefreshTTL <= 0 {
		return fmt.Errorf("refresh token TTL must be positive")
	}
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		AccessTTL:  30 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
	}
}
