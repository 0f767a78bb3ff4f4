package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"fx-dashboard/src/models"
	"fx-dashboard/src/utils"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DotEnvFile is loaded, when present, before the environment overlay
const DotEnvFile = ".env"

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig
}

// -----------------------------------------------------------------------------

// NewConfig loads the YAML file, overlays the environment (.env included),
// fills defaults and validates the result.
func NewConfig(configPath string) (*Config, error) {
	// 1. Read the YAML file content
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
	}

	// 2. Unmarshal data into the models struct
	var modelConfig models.MConfig
	if err := yaml.Unmarshal(data, &modelConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
	}

	// 3. Environment overrides the file
	if err := loadDotEnv(DotEnvFile); err != nil {
		return nil, err
	}
	if err := env.Parse(&modelConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config from environment: %w", err)
	}

	config := &Config{MConfig: &modelConfig}
	config.ApplyDefaults()

	// 4. Validate the loaded configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// -----------------------------------------------------------------------------

// ApplyDefaults fills every unset field that has a sensible default
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "fx-dashboard"
	}
	if c.Host == "" {
		c.Host = "127.0.0.1"
	}
	if c.Port == 0 {
		c.Port = 8000
	}
	if c.LogLevel == "" {
		c.LogLevel = "INFO"
	}
	if c.GrpcHost == "" {
		c.GrpcHost = c.Host
	}

	if c.Storage.DBType == "" {
		c.Storage.DBType = "sqlite"
	}
	if c.Storage.DBType == "sqlite" && c.Storage.DBPath == "" {
		c.Storage.DBPath = "data/rates.db"
	}

	if c.Network.RequestTimeout == 0 {
		c.Network.RequestTimeout = 20
	}

	if c.Provider.Type == "" {
		c.Provider.Type = "alphavantage"
	}

	if c.Cache.Type == "" {
		c.Cache.Type = "memory"
	}

	d := &c.Dashboard
	if d.Host == "" {
		d.Host = c.Host
	}
	if d.Port == 0 {
		d.Port = 8050
	}
	if d.GatewayURL == "" {
		d.GatewayURL = fmt.Sprintf("http://%s:%d", c.Host, c.Port)
	}
	if len(d.Instruments) == 0 {
		d.Instruments = append([]string(nil), utils.DefaultInstruments...)
	}
	if d.BufferCapacity == 0 {
		d.BufferCapacity = utils.DefaultBufferCapacity
	}
	if d.HistoryLimit == 0 {
		d.HistoryLimit = utils.DefaultHistoryLimit
	}
	if d.RefreshIntervalSeconds == 0 {
		d.RefreshIntervalSeconds = int(utils.DefaultRefreshInterval.Seconds())
	}
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("application name cannot be empty")
	}

	if c.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}
	if c.Port <= 1024 || c.Port > 65535 {
		return fmt.Errorf("invalid server port number: %d (must be between 1025 and 65535)", c.Port)
	}
	if c.GrpcPort != 0 && (c.GrpcPort <= 1024 || c.GrpcPort > 65535) {
		return fmt.Errorf("invalid grpc port number: %d (must be between 1025 and 65535)", c.GrpcPort)
	}

	// Storage
	switch c.Storage.DBType {
	case "sqlite":
		if c.Storage.DBPath == "" {
			return fmt.Errorf("database path cannot be empty for sqlite")
		}
	case "postgres":
		if c.Storage.DBConnectionString == "" {
			return fmt.Errorf("database connection string cannot be empty for postgres")
		}
	default:
		return fmt.Errorf("unsupported database type: %q", c.Storage.DBType)
	}

	// Network
	if c.Network.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be greater than 0")
	}
	if c.Network.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}

	if c.Provider.Type != "alphavantage" && c.Provider.Type != "synthetic" {
		return fmt.Errorf("unsupported provider type: %q", c.Provider.Type)
	}

	if c.Cache.Type != "memory" && c.Cache.Type != "redis" {
		return fmt.Errorf("unsupported cache type: %q", c.Cache.Type)
	}
	if c.Cache.QuoteTTLSeconds < 0 {
		return fmt.Errorf("quote ttl cannot be negative")
	}

	// Dashboard
	d := c.Dashboard
	if d.Port <= 1024 || d.Port > 65535 {
		return fmt.Errorf("invalid dashboard port number: %d (must be between 1025 and 65535)", d.Port)
	}
	if d.Host == c.Host && d.Port == c.Port {
		return fmt.Errorf("dashboard and api cannot share %s:%d", d.Host, d.Port)
	}
	if len(d.Instruments) == 0 {
		return fmt.Errorf("at least one instrument must be configured")
	}
	seen := make(map[string]bool, len(d.Instruments))
	for i, inst := range d.Instruments {
		if _, _, err := utils.SplitPair(inst); err != nil {
			return fmt.Errorf("instrument %d: %w", i, err)
		}
		key := strings.ToUpper(inst)
		if seen[key] {
			return fmt.Errorf("instrument %q listed twice", inst)
		}
		seen[key] = true
	}
	if d.BufferCapacity <= 0 {
		return fmt.Errorf("buffer capacity must be greater than 0")
	}
	if d.HistoryLimit <= 0 {
		return fmt.Errorf("history limit must be greater than 0")
	}
	if d.RefreshIntervalSeconds <= 0 {
		return fmt.Errorf("refresh interval must be greater than 0")
	}

	return nil
}

// -----------------------------------------------------------------------------

// Save persists the current configuration to the specified YAML file path
func (c *Config) Save(configPath string) error {
	// 1. Marshal the struct to YAML
	data, err := yaml.Marshal(c.MConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	// 2. Write to file (0644 permissions)
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}
