package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("STORE_DATABASE_URL", "postgres://localhost/store")
	t.Setenv("STORE_API_KEY_PEPPER", "pepper")

	cfg, err := loadConfig(nil, []string{})
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Addr)
	assert.Equal(t, "media", cfg.Media.Path)
	assert.Equal(t, "/media/", cfg.Media.BaseURL)
	assert.Equal(t, 10, cfg.Media.MaxUploadSizeMB)
	assert.Equal(t, 90, cfg.Media.JPEGQuality)
	assert.Equal(t, 100, cfg.RateLimit.Max)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, 15*time.Second, cfg.Graceful.ShutdownTimeout)
}

func TestLoadConfig_PlatformDefaults(t *testing.T) {
	t.Setenv("STORE_DATABASE_URL", "")
	t.Setenv("DATABASE_URL", "postgres://platform/store")
	t.Setenv("STORE_API_KEY_PEPPER", "pepper")
	t.Setenv("PORT", "9000")

	cfg, err := loadConfig(nil, []string{})
	require.NoError(t, err)
	assert.Equal(t, "postgres://platform/store", cfg.DatabaseURL)
	assert.Equal(t, "0.0.0.0:9000", cfg.Addr)
}

func TestLoadConfig_YAMLFile(t *testing.T) {
	t.Setenv("STORE_API_KEY_PEPPER", "pepper")
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"database_url: postgres://file/store\nmedia:\n  max_upload_size_mb: 2\n",
	), 0o600))

	cfg, err := loadConfig([]string{path}, []string{})
	require.NoError(t, err)
	assert.Equal(t, "postgres://file/store", cfg.DatabaseURL)
	assert.Equal(t, 2, cfg.Media.MaxUploadSizeMB)
}

func TestLoadConfig_MissingDatabase(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("STORE_DATABASE_URL", "")
	t.Setenv("STORE_API_KEY_PEPPER", "pepper")

	_, err := loadConfig(nil, []string{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database URL is required")
}

func TestConfigValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			DatabaseURL:  "postgres://x",
			APIKeyPepper: "p",
			Media:        MediaConfig{MaxUploadSizeMB: 10},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing database", mutate: func(c *Config) { c.DatabaseURL = "" }, wantErr: "database URL is required"},
		{name: "missing pepper", mutate: func(c *Config) { c.APIKeyPepper = "" }, wantErr: "api key pepper is required"},
		{name: "zero upload size", mutate: func(c *Config) { c.Media.MaxUploadSizeMB = 0 }, wantErr: "max upload size must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)

			err := cfg.validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
