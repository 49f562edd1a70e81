package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultMandrillBaseURL is the Mandrill API root used when MANDRILL_BASE_URL is unset.
const DefaultMandrillBaseURL = "https://mandrillapp.com/api/1.0"

// Config holds the service settings read from the environment.
type Config struct {
	// HTTP listen port
	Port string

	// gRPC health listen port; empty disables the gRPC listener
	GRPCPort string

	// debug, info, warn or error
	LogLevel string

	Mandrill MandrillConfig
}

// MandrillConfig holds the suppression list provider settings.
type MandrillConfig struct {
	BaseURL string

	// APIKey is used when APIKeyFile is empty.
	APIKey string

	// APIKeyFile, when set, takes precedence over APIKey and is watched for rotation.
	APIKeyFile string

	// Timeout bounds a single rejects/list call.
	Timeout time.Duration
}

// NewDefaultConfig returns a Config with defaults applied.
func NewDefaultConfig() *Config {
	return &Config{
		Port:     "8080",
		LogLevel: "info",
		Mandrill: MandrillConfig{
			BaseURL: DefaultMandrillBaseURL,
			Timeout: 10 * time.Second,
		},
	}
}

// Load reads configuration from the process environment. If envFile names an
// existing file its variables are loaded first; variables already present in
// the environment are never overridden. A missing envFile is not an error.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	}

	cfg := NewDefaultConfig()

	if v := env("PORT"); v != "" {
		cfg.Port = v
	}
	cfg.GRPCPort = env("GRPC_PORT")
	if v := env("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := env("MANDRILL_BASE_URL"); v != "" {
		cfg.Mandrill.BaseURL = strings.TrimRight(v, "/")
	}
	cfg.Mandrill.APIKey = env("MANDRILL_API_KEY")
	cfg.Mandrill.APIKeyFile = env("MANDRILL_API_KEY_FILE")

	if v := env("PROVIDER_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid PROVIDER_TIMEOUT %q: %w", v, err)
		}
		cfg.Mandrill.Timeout = d
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values that cannot be corrected at runtime.
func (c *Config) Validate() error {
	if err := validatePort("PORT", c.Port); err != nil {
		return err
	}
	if c.GRPCPort != "" {
		if err := validatePort("GRPC_PORT", c.GRPCPort); err != nil {
			return err
		}
		if c.GRPCPort == c.Port {
			return fmt.Errorf("GRPC_PORT must differ from PORT (%s)", c.Port)
		}
	}
	if c.Mandrill.Timeout <= 0 {
		return fmt.Errorf("PROVIDER_TIMEOUT must be positive, got %s", c.Mandrill.Timeout)
	}
	if !strings.HasPrefix(c.Mandrill.BaseURL, "http://") && !strings.HasPrefix(c.Mandrill.BaseURL, "https://") {
		return fmt.Errorf("MANDRILL_BASE_URL must be an http(s) URL, got %q", c.Mandrill.BaseURL)
	}
	return nil
}

func validatePort(name, port string) error {
	n, err := strconv.Atoi(port)
	if err != nil || n < 1 || n > 65535 {
		return fmt.Errorf("%s must be a port number, got %q", name, port)
	}
	return nil
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}
