package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Web.Port)
	assert.Equal(t, "backend", cfg.Auth.Mode)
	assert.Equal(t, []string{"/api/users"}, cfg.Backend.NoAuthPaths)
	assert.Equal(t, "http://localhost:8003", cfg.BaseURL())
	assert.Equal(t, int64(15), int64(cfg.BackendTimeout().Seconds()))
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	cfile := filepath.Join(t.TempDir(), "adminconsole.yml")
	data := []byte(`
web:
  port: 8088
backend:
  local_url: http://127.0.0.1:9000/
  timeout: 10
  orders_path: /orders
auth:
  mode: static
  admin_id: Admin
  admin_password: Admin123
`)
	require.NoError(t, os.WriteFile(cfile, data, 0o644))
	t.Setenv("ADMINCONSOLE_WEB_PORT", "9090")

	cfg, err := LoadConfig(cfile)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Web.Port)
	assert.Equal(t, "http://127.0.0.1:9000", cfg.BaseURL())
	assert.Equal(t, "/orders", cfg.Backend.OrdersPath)
	assert.Equal(t, "static", cfg.Auth.Mode)
	// sections absent from the file keep their defaults
	assert.Equal(t, "development", cfg.Logger.Mode)
}

func TestBaseURLFollowsBuildMode(t *testing.T) {
	saved := BuildMode
	t.Cleanup(func() { BuildMode = saved })

	cfg := *DefaultAppConfig
	BuildMode = ModeProduction
	assert.Equal(t, "https://boldservebackend-production.up.railway.app", cfg.BaseURL())
	BuildMode = ModeDevelopment
	assert.Equal(t, "http://localhost:8003", cfg.BaseURL())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *AppConfig)
		wantErr bool
	}{
		{name: "defaults", mutate: func(c *AppConfig) {}},
		{name: "bad port", mutate: func(c *AppConfig) { c.Web.Port = 0 }, wantErr: true},
		{name: "bad timeout", mutate: func(c *AppConfig) { c.Backend.Timeout = 0 }, wantErr: true},
		{name: "unknown auth mode", mutate: func(c *AppConfig) { c.Auth.Mode = "ldap" }, wantErr: true},
		{name: "static without credentials", mutate: func(c *AppConfig) { c.Auth.Mode = "static" }, wantErr: true},
		{name: "bad logger mode", mutate: func(c *AppConfig) { c.Logger.Mode = "verbose" }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := *DefaultAppConfig
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
