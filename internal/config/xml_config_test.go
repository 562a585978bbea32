package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_CreatesDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "PropertySync.config")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.FileExists(t, path)

	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, "properties", cfg.Storage.ReadStore)
	assert.Equal(t, "properties", cfg.Storage.TableName)
	assert.Equal(t, "properties_", cfg.Storage.StorePrefix)
	assert.Equal(t, filepath.Join(dir, "data"), cfg.Storage.DataDirectory)

	// A second load reads the file that was just written.
	again, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Storage, again.Storage)
}

func TestLoadConfig_ParsesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.config")
	content := `<?xml version="1.0" encoding="UTF-8"?>
<PropertySync>
  <Server><Port>8081</Port><BindAddress>127.0.0.1</BindAddress></Server>
  <Storage>
    <Driver>duckdb</Driver>
    <DataDirectory>/var/lib/props</DataDirectory>
    <ReadStore>listings</ReadStore>
    <TableName>listings</TableName>
    <StorePrefix>listings_</StorePrefix>
    <StoreTimestampLayout>20060102_150405</StoreTimestampLayout>
  </Storage>
  <Parsing><RulesFile>rules.yaml</RulesFile></Parsing>
  <Sync><FailOnRowErrors>true</FailOnRowErrors></Sync>
  <Logging><Level>debug</Level><Format>json</Format></Logging>
</PropertySync>`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8081", cfg.GetServerAddr())
	assert.Equal(t, "duckdb", cfg.Storage.Driver)
	assert.Equal(t, "/var/lib/props", cfg.Storage.DataDirectory)
	assert.Equal(t, filepath.Join(dir, "rules.yaml"), cfg.Parsing.RulesFile)
	assert.True(t, cfg.Sync.FailOnRowErrors)
	assert.Equal(t, "json", cfg.Logging.Format)

	// Settings absent from the file keep their defaults.
	assert.Equal(t, 60, cfg.Fetch.TimeoutSeconds)
	assert.Equal(t, "duckdb", cfg.StorageSettings().Driver)
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DATA_DIR", "/tmp/override")
	t.Setenv("STORE_DRIVER", "duckdb")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "PropertySync.config"))
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "/tmp/override", cfg.Storage.DataDirectory)
	assert.Equal(t, "duckdb", cfg.Storage.Driver)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadConfig_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.config")
	require.NoError(t, os.WriteFile(path, []byte(`<PropertySync><Server>`), 0644))
	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *AppConfig)
	}{
		{"bad port", func(c *AppConfig) { c.Server.Port = 0 }},
		{"unknown driver", func(c *AppConfig) { c.Storage.Driver = "oracle" }},
		{"postgres without dsn", func(c *AppConfig) { c.Storage.Driver = "postgres" }},
		{"bad read store", func(c *AppConfig) { c.Storage.ReadStore = "../x" }},
		{"bad table", func(c *AppConfig) { c.Storage.TableName = "" }},
		{"bad layout", func(c *AppConfig) { c.Storage.StoreTimestampLayout = "2006-01-02" }},
		{"bad level", func(c *AppConfig) { c.Logging.Level = "loud" }},
		{"bad format", func(c *AppConfig) { c.Logging.Format = "xml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	assert.NoError(t, DefaultConfig().Validate())
}
