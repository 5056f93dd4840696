package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mercaba/catalog-media/pkg/catalogmedia/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "memory", cfg.DatabaseType)
	assert.Equal(t, "memory", cfg.PrimaryBackend)
	assert.Equal(t, 3, cfg.ProbeRetries)
	assert.Equal(t, time.Second, cfg.ProbeDelay)
	assert.Contains(t, cfg.RemoteDomains, "amazonaws.com")
}

func TestLoadAppliesOptionsInOrder(t *testing.T) {
	cfg, err := config.Load(
		func(c *config.ServerConfig) error { c.Port = "9000"; return nil },
		func(c *config.ServerConfig) error { c.Port = "9001"; return nil },
		nil,
	)
	require.NoError(t, err)
	assert.Equal(t, "9001", cfg.Port)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.ServerConfig)
		wantErr string
	}{
		{
			name:    "missing port",
			mutate:  func(c *config.ServerConfig) { c.Port = "" },
			wantErr: "port",
		},
		{
			name:    "bad database type",
			mutate:  func(c *config.ServerConfig) { c.DatabaseType = "mongo" },
			wantErr: "database_type",
		},
		{
			name:    "postgres without url",
			mutate:  func(c *config.ServerConfig) { c.DatabaseType = "postgres" },
			wantErr: "database_url",
		},
		{
			name:    "missing uploads dir",
			mutate:  func(c *config.ServerConfig) { c.UploadsDir = "" },
			wantErr: "uploads",
		},
		{
			name:    "unknown primary backend",
			mutate:  func(c *config.ServerConfig) { c.PrimaryBackend = "s3" },
			wantErr: "primary backend",
		},
		{
			name:    "unknown fallback backend",
			mutate:  func(c *config.ServerConfig) { c.FallbackBackend = "fs" },
			wantErr: "fallback backend",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(func(c *config.ServerConfig) error {
				tt.mutate(c)
				return nil
			})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestBuildServiceFromDefaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	svc, err := cfg.BuildService()
	require.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestBuildServiceWithFsBackend(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.Load(func(c *config.ServerConfig) error {
		c.UploadsDir = dir
		c.PrimaryBackend = "fs"
		c.StorageBackends = []config.StorageBackendConfig{
			{Name: "fs", Type: "fs", Config: map[string]interface{}{"base_dir": dir}},
		}
		return nil
	})
	require.NoError(t, err)

	svc, err := cfg.BuildService()
	require.NoError(t, err)
	assert.NotNil(t, svc)
}
