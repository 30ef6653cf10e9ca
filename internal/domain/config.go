package domain

import "time"

// Config holds the complete airpass configuration.
type Config struct {
	// Server settings
	Server ServerConfig `yaml:"server"`

	// Component configurations
	Repository RepositoryConfig `yaml:"repository"`
	Cache      CacheConfig      `yaml:"cache"`
	EventBus   EventBusConfig   `yaml:"eventBus"`

	Rights RightsConfig `yaml:"rights"`
	Admin  AdminConfig  `yaml:"admin"`

	// Observability
	Logging LoggingConfig `yaml:"logging"`

	// SkipSeed disables inserting the default airlines on start.
	SkipSeed bool `yaml:"skipSeed" env:"AIRPASS_SKIP_SEED"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host" env:"AIRPASS_HOST" env-default:"0.0.0.0"`
	Port            int           `yaml:"port" env:"AIRPASS_PORT" env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"readTimeout" env:"AIRPASS_READ_TIMEOUT" env-default:"30s"`
	WriteTimeout    time.Duration `yaml:"writeTimeout" env:"AIRPASS_WRITE_TIMEOUT" env-default:"30s"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout" env:"AIRPASS_SHUTDOWN_TIMEOUT" env-default:"30s"`
}

// RightsConfig points at an optional replacement rights table.
type RightsConfig struct {
	// TablePath is a .yaml/.yml/.json file of brackets. Empty uses the built-in table.
	TablePath string `yaml:"tablePath" env:"AIRPASS_RIGHTS_TABLE"`
}

// AdminConfig protects the admin surface.
type AdminConfig struct {
	// Token, when set, must be sent as X-Admin-Token on /admin requests.
	Token string `yaml:"token" env:"AIRPASS_ADMIN_TOKEN"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level" env:"AIRPASS_LOG_LEVEL" env-default:"info"` // debug, info, warn, error
}

// DefaultConfig returns a single-process configuration: SQLite, in-memory cache, channel bus.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Repository: RepositoryConfig{
			Driver:          "sqlite",
			SQLitePath:      "./airpass.db",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
			QueryTimeout:    5 * time.Second,
		},
		Cache: CacheConfig{
			Type:         "memory",
			LocalMaxSize: 10000,
			LocalTTL:     5 * time.Minute,
			RuleTTL:      time.Hour,
		},
		EventBus: EventBusConfig{
			Type:              "channel",
			ChannelBufferSize: 1000,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
