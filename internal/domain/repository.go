// Package domain defines the core interfaces and types for airpass.
package domain

import (
	"context"
	"time"
)

// Repository defines the interface for rule-store persistence.
type Repository interface {
	// Airline operations
	ListAirlines(ctx context.Context) ([]*Airline, error)
	GetAirline(ctx context.Context, code string) (*Airline, error)
	SaveAirline(ctx context.Context, airline *Airline) error

	// Baggage rule operations
	CreateBaggageRule(ctx context.Context, rule *BaggageRule) error
	UpdateBaggageRule(ctx context.Context, rule *BaggageRule) error
	DeleteBaggageRule(ctx context.Context, id string) error
	GetBaggageRule(ctx context.Context, id string) (*BaggageRule, error)
	ListBaggageRules(ctx context.Context, filter RuleFilter) ([]*BaggageRule, error)

	// FindBaggageRules returns rules for an exact key, newest effectiveFrom first.
	FindBaggageRules(ctx context.Context, key RuleKey) ([]*BaggageRule, error)

	// Health check
	Ping(ctx context.Context) error

	// Lifecycle
	Close() error
}

// RepositoryConfig holds configuration for repository initialization.
type RepositoryConfig struct {
	// Driver is the database driver: "sqlite", "postgres" (lib/pq) or "pgx"
	Driver string `yaml:"driver" env:"AIRPASS_DB_DRIVER" env-default:"sqlite"`

	// SQLite specific
	SQLitePath string `yaml:"sqlitePath" env:"AIRPASS_SQLITE_PATH" env-default:"./airpass.db"`

	// PostgreSQL specific
	PostgresHost     string `yaml:"postgresHost" env:"AIRPASS_PG_HOST" env-default:"localhost"`
	PostgresPort     int    `yaml:"postgresPort" env:"AIRPASS_PG_PORT" env-default:"5432"`
	PostgresUser     string `yaml:"postgresUser" env:"AIRPASS_PG_USER" env-default:"airpass"`
	PostgresPassword string `yaml:"postgresPassword" env:"AIRPASS_PG_PASSWORD"`
	PostgresDB       string `yaml:"postgresDB" env:"AIRPASS_PG_DB" env-default:"airpass"`
	PostgresSSLMode  string `yaml:"postgresSSLMode" env:"AIRPASS_PG_SSLMODE" env-default:"disable"`

	// Connection pool settings
	MaxOpenConns    int           `yaml:"maxOpenConns" env:"AIRPASS_DB_MAX_OPEN" env-default:"25"`
	MaxIdleConns    int           `yaml:"maxIdleConns" env:"AIRPASS_DB_MAX_IDLE" env-default:"5"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime" env:"AIRPASS_DB_CONN_LIFETIME" env-default:"5m"`

	// QueryTimeout bounds every store call; exceeding it is a transient failure.
	QueryTimeout time.Duration `yaml:"queryTimeout" env:"AIRPASS_DB_QUERY_TIMEOUT" env-default:"5s"`
}
