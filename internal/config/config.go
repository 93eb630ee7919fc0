// Package config loads the tenantsync configuration from defaults, a TOML
// file, a .env file and TENANTSYNC_-prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/tenantsync/internal/platform"
)

// Credentials identifies one tenant's API client.
type Credentials struct {
	ClientID     string `koanf:"client_id" validate:"required"`
	ClientSecret string `koanf:"client_secret" validate:"required"`
	Region       string `koanf:"region" validate:"omitempty,oneof=eu us"`
	BaseURL      string `koanf:"base_url" validate:"omitempty,url"`
}

// Config is the full application configuration.
type Config struct {
	Source Credentials `koanf:"source"`
	Target Credentials `koanf:"target"`

	Setup struct {
		BaseURL     string `koanf:"base_url" validate:"omitempty,url"`
		AccessToken string `koanf:"access_token"`
	} `koanf:"setup"`

	Clone struct {
		ModelID    string `koanf:"model_id"`
		NamePrefix string `koanf:"name_prefix"`
	} `koanf:"clone"`

	Limits struct {
		RatePerSec float64 `koanf:"rate_per_sec" validate:"gte=0"`
	} `koanf:"limits"`
}

// ResolveBaseURL returns the environment root for a credential pair: an
// explicit base_url wins, otherwise the region preset (default EU).
func (c Credentials) ResolveBaseURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	if strings.EqualFold(c.Region, "us") {
		return platform.BaseURLUS
	}
	return platform.BaseURLEU
}

// LoadConfig loads the configuration from a file plus environment overrides.
func LoadConfig(configPath string) (*Config, error) {
	// Secrets commonly live in a .env next to the binary; absence is fine.
	_ = godotenv.Load()

	var k = koanf.New(".")

	k.Load(confmap.Provider(map[string]interface{}{
		"source.region":       "eu",
		"target.region":       "eu",
		"limits.rate_per_sec": 0,
	}, "."), nil)

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), toml.Parser()); err != nil {
			return nil, fmt.Errorf("error loading config: %w", err)
		}
	} else {
		defaultPaths := []string{"./tenantsync.toml", "$HOME/.tenantsync.toml"}
		for _, path := range defaultPaths {
			path = os.ExpandEnv(path)
			if _, err := os.Stat(path); err == nil {
				if err := k.Load(file.Provider(path), toml.Parser()); err == nil {
					break
				}
			}
		}
	}

	// TENANTSYNC_SOURCE_CLIENT__ID style: a single underscore separates path
	// segments, a double underscore is a literal underscore inside a key.
	k.Load(env.Provider("TENANTSYNC_", ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, "TENANTSYNC_"))
		s = strings.ReplaceAll(s, "__", "\x00")
		s = strings.ReplaceAll(s, "_", ".")
		return strings.ReplaceAll(s, "\x00", "_")
	}), nil)

	var config Config
	if err := k.Unmarshal("", &config); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}
	return &config, nil
}

// Validate checks the loaded configuration. Setup and clone settings are only
// required by their commands and are checked there.
func Validate(cfg *Config) error {
	v := validator.New()
	err := v.Struct(cfg)
	if err == nil {
		return nil
	}

	var errs validator.ValidationErrors
	if errors.As(err, &errs) {
		fields := make([]string, 0, len(errs))
		for _, fe := range errs {
			fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
		}
		return fmt.Errorf("invalid configuration: %s", strings.Join(fields, ", "))
	}
	return fmt.Errorf("invalid configuration: %w", err)
}

// InitConfig writes a commented sample configuration file.
func InitConfig(configPath string) error {
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("configuration file already exists at %s", configPath)
	}

	sampleConfig := `# tenantsync configuration

[source]
client_id = "source-company-client-id"
client_secret = "source-company-client-secret"
# "eu" or "us"; an explicit base_url overrides the region preset
region = "eu"

[target]
client_id = "target-company-client-id"
client_secret = "target-company-client-secret"
region = "eu"

[setup]
# access_token cookie value from an active browser session, only needed by
# the workflow commands
access_token = ""

[clone]
# extraction model id of a template project in the target company
model_id = ""
# optional prefix for cloned project names
name_prefix = ""

[limits]
# outgoing requests per second, 0 disables throttling
rate_per_sec = 0
`

	if err := os.WriteFile(configPath, []byte(sampleConfig), 0o600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}
	return nil
}
