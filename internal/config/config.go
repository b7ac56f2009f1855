package config

import (
	"time"

	"github.com/evently/webhook-service/internal/envconfig"
	"github.com/evently/webhook-service/internal/svix"
)

// Supported user store backends.
const (
	DataStoreMemory    = "memory"
	DataStoreFirestore = "firestore"
	DataStorePostgres  = "postgres"
)

type Config struct {
	Port               string        `validate:"required"`
	WebhookSecret      string        `validate:"required"`
	SignatureTolerance time.Duration `validate:"gt=0"`
	DataStore          string        `validate:"required,oneof=memory firestore postgres"`
	GCPProjectID       string        `validate:"required_if=DataStore firestore"`
	Auth               AuthConfig
	Firestore          FirestoreConfig
	Postgres           PostgresConfig
}

type AuthConfig struct {
	Mode     string `validate:"required,oneof=clerk noop"`
	JWKSURL  string `validate:"required_if=Mode clerk"`
	Audience string
	Issuer   string
}

type FirestoreConfig struct {
	EmulatorHost string
}

type PostgresConfig struct {
	DSN string
}

// Load reads the configuration from the environment. Values from .env and
// .env.local are used for variables the environment does not set.
func Load() (Config, error) {
	if err := envconfig.LoadDotEnv(".env.local", ".env"); err != nil {
		return Config{}, err
	}

	tolerance, err := envconfig.GetDuration("WEBHOOK_TOLERANCE", svix.DefaultTolerance)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port:               envconfig.Get("PORT", "8080"),
		WebhookSecret:      envconfig.Get("WEBHOOK_SECRET", ""),
		SignatureTolerance: tolerance,
		DataStore:          envconfig.Get("DATASTORE", DataStoreMemory),
		GCPProjectID:       envconfig.Get("GCP_PROJECT_ID", ""),
		Auth: AuthConfig{
			Mode:     envconfig.Get("AUTH_MODE", "clerk"),
			JWKSURL:  envconfig.Get("CLERK_JWKS_URL", ""),
			Audience: envconfig.Get("CLERK_AUDIENCE", ""),
			Issuer:   envconfig.Get("CLERK_ISSUER", ""),
		},
		Firestore: FirestoreConfig{
			EmulatorHost: envconfig.Get("FIRESTORE_EMULATOR_HOST", ""),
		},
		Postgres: PostgresConfig{
			DSN: envconfig.Get("DATABASE_URL", ""),
		},
	}
	if err := envconfig.Validate(cfg); err != nil {
		return Config{}, err
	}
	if cfg.DataStore == DataStorePostgres && cfg.Postgres.DSN == "" {
		return Config{}, errMissingDSN
	}
	return cfg, nil
}
