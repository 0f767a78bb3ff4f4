package models

// MConfig Structure
type MConfig struct {
	Name      string           `yaml:"name"`
	Host      string           `yaml:"host"`
	Port      int              `yaml:"port" env:"PORT"`
	LogLevel  string           `yaml:"log_level" env:"LOG_LEVEL"`
	GrpcHost  string           `yaml:"grpc_host"`
	GrpcPort  int              `yaml:"grpc_port" env:"GRPC_PORT"`
	Storage   MStorageConfig   `yaml:"storage"`
	Network   MNetworkConfig   `yaml:"network"`
	Provider  MProviderConfig  `yaml:"provider"`
	Cache     MCacheConfig     `yaml:"cache"`
	Dashboard MDashboardConfig `yaml:"dashboard"`
}

type MStorageConfig struct {
	DBType             string `yaml:"db_type" env:"DB_TYPE"`
	DBPath             string `yaml:"db_path" env:"DB_PATH"`
	DBConnectionString string `yaml:"db_connection_string" env:"DATABASE_URL"`
	Schema             string `yaml:"schema"`
}

type MNetworkConfig struct {
	Enabled        bool     `yaml:"enabled"`
	Proxies        []string `yaml:"proxies"`
	RequestTimeout int      `yaml:"timeout"`
	MaxRetries     int      `yaml:"retries"`
	UserAgent      string   `yaml:"user_agent"`
}

type MProviderConfig struct {
	Type    string `yaml:"type" env:"RATE_PROVIDER"`
	APIKey  string `yaml:"api_key" env:"ALPHA_VANTAGE_API_KEY"`
	BaseURL string `yaml:"base_url" env:"ALPHA_VANTAGE_BASE_URL"`
	Seed    int64  `yaml:"seed"` // synthetic provider only
}

type MCacheConfig struct {
	Type            string `yaml:"type"` // "memory" or "redis"
	QuoteTTLSeconds int    `yaml:"quote_ttl_seconds"`
	RedisAddr       string `yaml:"redis_addr" env:"REDIS_ADDR"`
	RedisPassword   string `yaml:"redis_password" env:"REDIS_PASSWORD"`
	RedisDB         int    `yaml:"redis_db"`
}

type MDashboardConfig struct {
	Host                   string   `yaml:"host"`
	Port                   int      `yaml:"port" env:"DASHBOARD_PORT"`
	GatewayURL             string   `yaml:"gateway_url" env:"GATEWAY_URL"`
	Instruments            []string `yaml:"instruments" env:"INSTRUMENTS" envSeparator:","`
	BufferCapacity         int      `yaml:"buffer_capacity"`
	HistoryLimit           int      `yaml:"history_limit"`
	RefreshIntervalSeconds int      `yaml:"refresh_interval_seconds"`
	DisplayTimezone        string   `yaml:"display_timezone" env:"DISPLAY_TIMEZONE"`
}
