/*
Package config loads runtime configuration from the environment.

PURPOSE:
  One struct, parsed once at startup. A local .env file is loaded first
  when present (development convenience); real environments set the
  variables directly.

VARIABLES:
  PORT              HTTP port (default 8080)
  DB_PATH           SQLite database path (default attendance.db)
  JWT_SECRET        HMAC secret for session tokens
  TOKEN_TTL         Session token lifetime (default 12h)
  ADMIN_USERNAME    Virtual admin username (default admin)
  ADMIN_PASSWORD    Virtual admin password (default admin)
  RULES_PATH        Optional JSON rules file (factory schema)
  WEBAUTHN_*        Relying-party settings for biometric login

SEE ALSO:
  - cmd/server/main.go: Flags override a subset of these
  - factory/rules.go: RULES_PATH file schema
*/
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the full runtime configuration.
type Config struct {
	Port   int    `env:"PORT" envDefault:"8080"`
	DBPath string `env:"DB_PATH" envDefault:"attendance.db"`

	// JWTSecret signs session tokens. The default is for development
	// only; production deployments must set their own.
	JWTSecret string        `env:"JWT_SECRET" envDefault:"dev-secret-change-me"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"12h"`

	AdminUsername string `env:"ADMIN_USERNAME" envDefault:"admin"`
	AdminPassword string `env:"ADMIN_PASSWORD" envDefault:"admin"`

	RulesPath string `env:"RULES_PATH"`

	WebAuthn WebAuthn `envPrefix:"WEBAUTHN_"`
}

// WebAuthn holds the relying-party settings for biometric ceremonies.
type WebAuthn struct {
	RPDisplayName string        `env:"RP_DISPLAY_NAME" envDefault:"Attendance Tracker"`
	RPID          string        `env:"RP_ID" envDefault:"localhost"`
	RPOrigins     []string      `env:"RP_ORIGINS" envSeparator:"," envDefault:"http://localhost:8080"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"5m"`
}

// Load reads .env (if present) and parses the environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}
