package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("DB_TYPE", "sqlite")
	t.Setenv("DB_DATABASE", "carbon.db")
	t.Setenv("AUTHZ_URL", "http://authorizer:8080")
	t.Setenv("AUTHZ_CLIENT_ID", "client")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, 5, cfg.DBConnectionLimit)
	assert.Equal(t, "warn", cfg.DBLogLevel)
	assert.True(t, cfg.IsSQLite())
	assert.False(t, cfg.SeedReferenceData)
}

func TestLoadRequired(t *testing.T) {
	tests := []struct {
		name  string
		unset string
		set   map[string]string
		want  string
	}{
		{name: "database", unset: "DB_DATABASE", want: "DB_DATABASE is required"},
		{name: "user for server databases", set: map[string]string{"DB_TYPE": "postgres"}, want: "DB_USER is required"},
		{name: "authorizer url", unset: "AUTHZ_URL", want: "AUTHZ_URL is required"},
		{name: "authorizer client", unset: "AUTHZ_CLIENT_ID", want: "AUTHZ_CLIENT_ID is required"},
		{name: "connection limit", set: map[string]string{"DB_CONNECTION_LIMIT": "0"}, want: "DB_CONNECTION_LIMIT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			if tt.unset != "" {
				t.Setenv(tt.unset, "")
			}
			for k, v := range tt.set {
				t.Setenv(k, v)
			}

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadEnvFile(t *testing.T) {
	setRequired(t)
	// godotenv never overrides a variable that is present, even when empty.
	for _, key := range []string{"PORT", "SEED_REFERENCE_DATA"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("PORT=4100\nSEED_REFERENCE_DATA=true\n"), 0o600))
	t.Setenv("ENV_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "4100", cfg.Port)
	assert.True(t, cfg.SeedReferenceData)
}

func TestLoadMissingEnvFile(t *testing.T) {
	setRequired(t)
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))

	_, err := Load()
	assert.Error(t, err)
}

func TestInitLoggerLevel(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	logger := InitLogger("debug", "json")
	assert.Equal(t, zerolog.DebugLevel, logger.GetLevel())

	logger = InitLogger("nonsense", "console")
	assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())
}
