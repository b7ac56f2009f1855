package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBaseEnv(t *testing.T) {
	t.Setenv("WEBHOOK_SECRET", "whsec_ABC")
	t.Setenv("AUTH_MODE", "noop")
	t.Setenv("DATASTORE", "")
	t.Setenv("WEBHOOK_TOLERANCE", "")
	t.Setenv("PORT", "")
}

func TestLoad_Defaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "whsec_ABC", cfg.WebhookSecret)
	assert.Equal(t, 5*time.Minute, cfg.SignatureTolerance)
	assert.Equal(t, DataStoreMemory, cfg.DataStore)
}

func TestLoad_MissingSecret(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("WEBHOOK_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_Tolerance(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("WEBHOOK_TOLERANCE", "90s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, cfg.SignatureTolerance)

	t.Setenv("WEBHOOK_TOLERANCE", "soon")
	_, err = Load()
	assert.Error(t, err)
}

func TestLoad_DataStoreRequirements(t *testing.T) {
	setBaseEnv(t)

	t.Setenv("DATASTORE", "mongo")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("DATASTORE", DataStorePostgres)
	t.Setenv("DATABASE_URL", "")
	_, err = Load()
	assert.ErrorIs(t, err, errMissingDSN)

	t.Setenv("DATABASE_URL", "postgres://localhost/app")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/app", cfg.Postgres.DSN)

	t.Setenv("DATASTORE", DataStoreFirestore)
	t.Setenv("GCP_PROJECT_ID", "")
	_, err = Load()
	assert.Error(t, err)
}

func TestLoad_ClerkModeNeedsJWKS(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("AUTH_MODE", "clerk")
	t.Setenv("CLERK_JWKS_URL", "")

	_, err := Load()
	assert.Error(t, err)

	t.Setenv("CLERK_JWKS_URL", "https://clerk.example.com/.well-known/jwks.json")
	_, err = Load()
	assert.NoError(t, err)
}
