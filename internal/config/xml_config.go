// Package config provides XML-based configuration for the property sync service.
package config

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/property-sync/backend/internal/storage"
)

// AppConfig represents the root XML configuration structure
type AppConfig struct {
	XMLName xml.Name `xml:"PropertySync"`

	Server  ServerConfig  `xml:"Server"`
	Storage StorageConfig `xml:"Storage"`
	Fetch   FetchConfig   `xml:"Fetch"`
	Parsing ParsingConfig `xml:"Parsing"`
	Sync    SyncConfig    `xml:"Sync"`
	Logging LoggingConfig `xml:"Logging"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port           int    `xml:"Port"`
	BindAddress    string `xml:"BindAddress"`
	EnableCORS     bool   `xml:"EnableCORS"`
	AllowOrigins   string `xml:"AllowOrigins"`
	ReadTimeout    int    `xml:"ReadTimeoutSeconds"`
	WriteTimeout   int    `xml:"WriteTimeoutSeconds"`
	IdleTimeout    int    `xml:"IdleTimeoutSeconds"`
	RequestTimeout int    `xml:"RequestTimeoutSeconds"` // 0 disables the timeout middleware
	BodyLimit      string `xml:"BodyLimit"`
}

// StorageConfig selects the record store backend and the store names used
// by the endpoints.
type StorageConfig struct {
	Driver               string `xml:"Driver"` // sqlite, duckdb or postgres
	DataDirectory        string `xml:"DataDirectory"`
	PostgresDSN          string `xml:"PostgresDSN"`
	ReadStore            string `xml:"ReadStore"`
	TableName            string `xml:"TableName"`
	StorePrefix          string `xml:"StorePrefix"`
	StoreTimestampLayout string `xml:"StoreTimestampLayout"` // Go time layout
	DuckDBThreads        int    `xml:"DuckDBThreads"`
	DuckDBMemoryLimit    string `xml:"DuckDBMemoryLimit"`
}

// FetchConfig contains settings for downloading feeds
type FetchConfig struct {
	TimeoutSeconds int    `xml:"TimeoutSeconds"`
	MaxBodyBytes   int64  `xml:"MaxBodyBytes"`
	UserAgent      string `xml:"UserAgent"`
}

// ParsingConfig points to optional YAML flatten rules
type ParsingConfig struct {
	RulesFile string `xml:"RulesFile"`
}

// SyncConfig controls how row failures affect the persist endpoint
type SyncConfig struct {
	FailOnRowErrors bool `xml:"FailOnRowErrors"`
}

// LoggingConfig contains log output settings
type LoggingConfig struct {
	Level  string `xml:"Level"`  // debug, info, warn, error
	Format string `xml:"Format"` // text or json
	SeqURL string `xml:"SeqURL"` // optional Seq ingestion endpoint
}

// DefaultConfig returns the default configuration
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:           5000,
			BindAddress:    "0.0.0.0",
			EnableCORS:     false,
			AllowOrigins:   "*",
			ReadTimeout:    30,
			WriteTimeout:   120,
			IdleTimeout:    120,
			RequestTimeout: 0,
			BodyLimit:      "1M",
		},
		Storage: StorageConfig{
			Driver:               "sqlite",
			DataDirectory:        "./data",
			ReadStore:            "properties",
			TableName:            "properties",
			StorePrefix:          "properties_",
			StoreTimestampLayout: "20060102_150405.000000",
			DuckDBThreads:        4,
			DuckDBMemoryLimit:    "1GB",
		},
		Fetch: FetchConfig{
			TimeoutSeconds: 60,
			MaxBodyBytes:   64 << 20,
			UserAgent:      "property-sync/1.0",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadConfig loads configuration from XML file
func LoadConfig(configPath string) (*AppConfig, error) {
	// If file doesn't exist, create default
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		config := DefaultConfig()
		if err := config.Save(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		config.applyEnvironmentOverrides()
		config.resolvePaths(filepath.Dir(configPath))
		return config, config.Validate()
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := xml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.applyEnvironmentOverrides()
	config.resolvePaths(filepath.Dir(configPath))

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Save saves the configuration to XML file
func (c *AppConfig) Save(configPath string) error {
	output, err := xml.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(xml.Header + "\n<!-- Property Sync Configuration -->\n<!-- This file is auto-generated on first run -->\n\n")
	content := append(header, output...)

	if err := os.WriteFile(configPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// applyEnvironmentOverrides allows environment variables to override config values
func (c *AppConfig) applyEnvironmentOverrides() {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}
	if dataDir := os.Getenv("DATA_DIR"); dataDir != "" {
		c.Storage.DataDirectory = dataDir
	}
	if driver := os.Getenv("STORE_DRIVER"); driver != "" {
		c.Storage.Driver = driver
	}
	if dsn := os.Getenv("POSTGRES_DSN"); dsn != "" {
		c.Storage.PostgresDSN = dsn
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if seq := os.Getenv("SEQ_URL"); seq != "" {
		c.Logging.SeqURL = seq
	}
}

// resolvePaths converts relative paths to absolute based on config file location
func (c *AppConfig) resolvePaths(configDir string) {
	if c.Storage.DataDirectory != "" && !filepath.IsAbs(c.Storage.DataDirectory) {
		c.Storage.DataDirectory = filepath.Join(configDir, c.Storage.DataDirectory)
	}
	if c.Parsing.RulesFile != "" && !filepath.IsAbs(c.Parsing.RulesFile) {
		c.Parsing.RulesFile = filepath.Join(configDir, c.Parsing.RulesFile)
	}
}

// Validate reports the first setting that cannot work.
func (c *AppConfig) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid Server.Port %d", c.Server.Port)
	}

	known := false
	for _, d := range storage.Drivers() {
		if d == c.Storage.Driver {
			known = true
		}
	}
	if !known {
		return fmt.Errorf("invalid Storage.Driver %q (want one of %s)", c.Storage.Driver, strings.Join(storage.Drivers(), ", "))
	}
	if c.Storage.Driver == "postgres" && c.Storage.PostgresDSN == "" {
		return fmt.Errorf("Storage.PostgresDSN is required for the postgres driver")
	}

	if err := storage.ValidateName(c.Storage.ReadStore); err != nil {
		return fmt.Errorf("Storage.ReadStore: %w", err)
	}
	if err := storage.ValidateName(c.Storage.TableName); err != nil {
		return fmt.Errorf("Storage.TableName: %w", err)
	}
	sample := storage.TimestampedName(c.Storage.StorePrefix, c.Storage.StoreTimestampLayout, time.Date(2006, 1, 2, 15, 4, 5, 0, time.UTC))
	if err := storage.ValidateName(sample); err != nil {
		return fmt.Errorf("Storage.StorePrefix/StoreTimestampLayout: %w", err)
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid Logging.Level %q", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("invalid Logging.Format %q", c.Logging.Format)
	}
	return nil
}

// GetServerAddr returns the server bind address
func (c *AppConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.BindAddress, c.Server.Port)
}

// StorageSettings returns the storage.Config for the configured backend.
func (c *AppConfig) StorageSettings() storage.Config {
	return storage.Config{
		Driver:            c.Storage.Driver,
		DataDir:           c.Storage.DataDirectory,
		PostgresDSN:       c.Storage.PostgresDSN,
		DuckDBThreads:     c.Storage.DuckDBThreads,
		DuckDBMemoryLimit: c.Storage.DuckDBMemoryLimit,
	}
}

// FetchTimeout returns the feed download timeout.
func (c *AppConfig) FetchTimeout() time.Duration {
	return time.Duration(c.Fetch.TimeoutSeconds) * time.Second
}
