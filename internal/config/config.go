package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultAddr            = ":8080"
	DefaultRatePerHour     = 600
	DefaultRateBurst       = 30
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
)

// Config holds the decision service settings
type Config struct {
	Addr            string
	RatePerHour     int
	RateBurst       int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// TrustedProxies are the peers whose X-Forwarded-For is believed.
	// Empty means every request is keyed on its direct peer address.
	TrustedProxies []netip.Prefix
}

// Default returns the settings used when nothing is overridden
func Default() *Config {
	return &Config{
		Addr:            DefaultAddr,
		RatePerHour:     DefaultRatePerHour,
		RateBurst:       DefaultRateBurst,
		ReadTimeout:     DefaultReadTimeout,
		WriteTimeout:    DefaultWriteTimeout,
		IdleTimeout:     DefaultIdleTimeout,
		ShutdownTimeout: DefaultShutdownTimeout,
	}
}

// Load reads the given .env files (a missing file is not an error), then
// applies SCENEGATE_* environment overrides on top of the defaults.
// Variables already set in the process environment win over .env values.
func Load(envFiles ...string) (*Config, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	cfg := Default()
	if v := os.Getenv("SCENEGATE_ADDR"); v != "" {
		cfg.Addr = v
	}

	var err error
	if cfg.RatePerHour, err = intEnv("SCENEGATE_RATE_PER_HOUR", cfg.RatePerHour); err != nil {
		return nil, err
	}
	if cfg.RateBurst, err = intEnv("SCENEGATE_RATE_BURST", cfg.RateBurst); err != nil {
		return nil, err
	}
	if cfg.ReadTimeout, err = durationEnv("SCENEGATE_READ_TIMEOUT", cfg.ReadTimeout); err != nil {
		return nil, err
	}
	if cfg.WriteTimeout, err = durationEnv("SCENEGATE_WRITE_TIMEOUT", cfg.WriteTimeout); err != nil {
		return nil, err
	}
	if cfg.IdleTimeout, err = durationEnv("SCENEGATE_IDLE_TIMEOUT", cfg.IdleTimeout); err != nil {
		return nil, err
	}
	if cfg.ShutdownTimeout, err = durationEnv("SCENEGATE_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout); err != nil {
		return nil, err
	}

	if cfg.TrustedProxies, err = prefixesEnv("SCENEGATE_TRUSTED_PROXIES"); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the server can't run with
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("addr is required")
	}
	if c.RatePerHour <= 0 {
		return fmt.Errorf("rate per hour must be positive, got %d", c.RatePerHour)
	}
	if c.RateBurst <= 0 {
		return fmt.Errorf("rate burst must be positive, got %d", c.RateBurst)
	}
	for name, d := range map[string]time.Duration{
		"read timeout":     c.ReadTimeout,
		"write timeout":    c.WriteTimeout,
		"idle timeout":     c.IdleTimeout,
		"shutdown timeout": c.ShutdownTimeout,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got %s", name, d)
		}
	}
	return nil
}

func intEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

// prefixesEnv parses a comma separated list of CIDRs or bare addresses
func prefixesEnv(key string) ([]netip.Prefix, error) {
	v := os.Getenv(key)
	if strings.TrimSpace(v) == "" {
		return nil, nil
	}

	var prefixes []netip.Prefix
	for _, item := range strings.Split(v, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if strings.Contains(item, "/") {
			p, err := netip.ParsePrefix(item)
			if err != nil {
				return nil, fmt.Errorf("invalid %s: %w", key, err)
			}
			prefixes = append(prefixes, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(item)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", key, err)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}
