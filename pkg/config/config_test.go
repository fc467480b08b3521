package config

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENV", "development")
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("IMAGE_PROVIDER", "")
	t.Setenv("ALLOWED_ORIGINS", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "park_discovery", cfg.Database.Database)
	assert.True(t, cfg.Database.AutoMigrate)
	assert.Equal(t, "mock", cfg.Geolocation.Provider)
	assert.Equal(t, "local", cfg.ImageHost.Provider)
	assert.Equal(t, int64(5*1024*1024), cfg.ImageHost.MaxBytes)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "park_session", cfg.Auth.CookieName)
	assert.NotEmpty(t, cfg.Auth.TokenSecret)
	assert.False(t, cfg.Typesense.Enabled)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("SESSION_SECRET", "s3cret")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("IMAGE_PROVIDER", "cloudinary")
	t.Setenv("CLOUDINARY_CLOUD_NAME", "parks-cloud")
	t.Setenv("TYPESENSE_ENABLED", "true")
	t.Setenv("DB_PORT", "not-a-number")
	t.Setenv("ALLOWED_ORIGINS", "https://parks.example, https://admin.parks.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "s3cret", cfg.Auth.TokenSecret)
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "cloudinary", cfg.ImageHost.Provider)
	assert.Equal(t, "parks-cloud", cfg.ImageHost.CloudName)
	assert.True(t, cfg.Typesense.Enabled)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, []string{"https://parks.example", "https://admin.parks.example"}, cfg.Server.AllowedOrigins)
}

func TestLoad_RequiresSecretOutsideDevelopment(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("SESSION_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestDatabaseDSN(t *testing.T) {
	cfg := DatabaseConfig{Host: "db", Port: 5433, User: "park", Password: "pw", Database: "parks", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5433 user=park password=pw dbname=parks sslmode=disable", cfg.DatabaseDSN())
}

func TestLoadWithSecrets_VaultDisabled(t *testing.T) {
	t.Setenv("VAULT_ENABLED", "false")
	t.Setenv("ENV", "production")
	t.Setenv("SESSION_SECRET", "env-secret")

	cfg, err := LoadWithSecrets(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "env-secret", cfg.Auth.TokenSecret)
}

func TestLoadWithSecrets_VaultMisconfigured(t *testing.T) {
	t.Setenv("VAULT_ENABLED", "true")
	t.Setenv("VAULT_ADDR", "")

	_, err := LoadWithSecrets(context.Background())
	assert.ErrorContains(t, err, "load vault secrets")
}
