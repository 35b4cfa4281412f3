package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable LoadConfig reads so the host environment
// cannot leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv("CONFIG_FILE", "")
	for key := range envKeys {
		t.Setenv(key, "")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DATABASE_URL", "postgres://localhost/accounts")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, StoragePostgres, cfg.Storage)
	assert.Equal(t, "accountsvc", cfg.JWTIssuer)
	assert.Equal(t, "accountsvc-clients", cfg.JWTAudience)
	assert.Equal(t, 60*time.Minute, cfg.JWTExpiry)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "Admin123", cfg.AdminPassword)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.RedisURL)
}

func TestLoadConfig_MissingSecretIsFatal(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORAGE", StorageMemory)

	_, err := LoadConfig()
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestLoadConfig_Validation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "postgres without url", env: map[string]string{"JWT_SECRET": "s"}},
		{name: "unknown storage", env: map[string]string{"JWT_SECRET": "s", "STORAGE": "mongo"}},
		{name: "zero expiry", env: map[string]string{"JWT_SECRET": "s", "STORAGE": "memory", "JWT_EXPIRE_MINUTES": "0"}},
		{name: "bad expiry", env: map[string]string{"JWT_SECRET": "s", "STORAGE": "memory", "JWT_EXPIRE_MINUTES": "soon"}},
		{name: "bad timeout", env: map[string]string{"JWT_SECRET": "s", "STORAGE": "memory", "REQUEST_TIMEOUT": "15"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig_YAMLFileThenEnvOverrides(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	yamlData := `
server:
  port: "9090"
storage:
  driver: memory
jwt:
  secret: from-file
  issuer: file-issuer
  expireMinutes: 5
bootstrap:
  adminPassword: FilePass1
`
	require.NoError(t, os.WriteFile(path, []byte(yamlData), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("JWT_ISSUER", "env-issuer")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, StorageMemory, cfg.Storage)
	assert.Equal(t, "from-file", cfg.JWTSecret)
	assert.Equal(t, "env-issuer", cfg.JWTIssuer, "environment wins over file")
	assert.Equal(t, 5*time.Minute, cfg.JWTExpiry)
	assert.Equal(t, "FilePass1", cfg.AdminPassword)
}

func TestLoadConfig_BadYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0o600))
	t.Setenv("CONFIG_FILE", path)

	_, err := LoadConfig()
	assert.Error(t, err)
}
