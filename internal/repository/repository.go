// Package repository provides the SQL rule store for airlines and baggage rules.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/airpass/airpass/internal/domain"
	"github.com/google/uuid"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("record already exists")
)

// SQLRepository implements domain.Repository using database/sql.
// Works with SQLite, lib/pq and pgx drivers.
type SQLRepository struct {
	db           *sql.DB
	driver       string
	queryTimeout time.Duration
}

// New creates a new repository based on configuration.
func New(cfg domain.RepositoryConfig) (*SQLRepository, error) {
	var db *sql.DB
	var err error

	switch cfg.Driver {
	case "sqlite":
		db, err = openSQLite(cfg)
	case "postgres":
		db, err = openPostgres(cfg)
	case "pgx":
		db, err = openPgx(cfg)
	default:
		return nil, fmt.Errorf("unsupported driver: %s", cfg.Driver)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	repo := &SQLRepository{
		db:           db,
		driver:       cfg.Driver,
		queryTimeout: cfg.QueryTimeout,
	}

	// Run migrations
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return repo, nil
}

func (r *SQLRepository) migrate() error {
	for _, schema := range AllSchemas() {
		if _, err := r.db.Exec(schema); err != nil {
			return err
		}
	}
	return nil
}

// withTimeout bounds a single store call by the configured query timeout.
func (r *SQLRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.queryTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.queryTimeout)
}

// ListAirlines returns all airlines ordered by name.
func (r *SQLRepository) ListAirlines(ctx context.Context) ([]*domain.Airline, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `
		SELECT code, name, logo_url, policy_url, active, created_at, updated_at
		FROM airlines
		ORDER BY name
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var airlines []*domain.Airline
	for rows.Next() {
		a, err := scanAirline(rows)
		if err != nil {
			return nil, err
		}
		airlines = append(airlines, a)
	}

	return airlines, rows.Err()
}

// GetAirline retrieves an airline by IATA code, case-insensitively.
func (r *SQLRepository) GetAirline(ctx context.Context, code string) (*domain.Airline, error) {
	code = domain.NormalizeCode(code)
	if code == "" {
		return nil, fmt.Errorf("%w: airline code is required", ErrInvalidInput)
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `
		SELECT code, name, logo_url, policy_url, active, created_at, updated_at
		FROM airlines
		WHERE code = ?
	`

	a, err := scanAirline(r.db.QueryRowContext(ctx, r.rebind(query), code))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// SaveAirline inserts or updates an airline keyed by its code.
func (r *SQLRepository) SaveAirline(ctx context.Context, airline *domain.Airline) error {
	airline.Code = domain.NormalizeCode(airline.Code)
	if airline.Code == "" || airline.Name == "" {
		return fmt.Errorf("%w: airline code and name are required", ErrInvalidInput)
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	now := time.Now().UTC()
	if airline.CreatedAt.IsZero() {
		airline.CreatedAt = now
	}
	airline.UpdatedAt = now

	query := `
		INSERT INTO airlines (code, name, logo_url, policy_url, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(code) DO UPDATE SET
			name = excluded.name,
			logo_url = excluded.logo_url,
			policy_url = excluded.policy_url,
			active = excluded.active,
			updated_at = excluded.updated_at
	`

	_, err := r.db.ExecContext(ctx, r.rebind(query),
		airline.Code, airline.Name, airline.LogoURL, airline.PolicyURL,
		boolToInt(airline.Active), airline.CreatedAt, airline.UpdatedAt,
	)
	return err
}

// CreateBaggageRule stores a new rule. An empty ID is replaced by a fresh UUID.
func (r *SQLRepository) CreateBaggageRule(ctx context.Context, rule *domain.BaggageRule) error {
	rule.Normalize()
	if err := rule.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if rule.ID == "" {
		rule.ID = uuid.New().String()
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	if err := r.requireAirline(ctx, rule.AirlineCode); err != nil {
		return err
	}

	var existing int
	if err := r.db.QueryRowContext(ctx, r.rebind(`SELECT COUNT(*) FROM baggage_rules WHERE id = ?`), rule.ID).Scan(&existing); err != nil {
		return err
	}
	if existing > 0 {
		return fmt.Errorf("%w: baggage rule %s", ErrConflict, rule.ID)
	}

	now := time.Now().UTC()
	rule.CreatedAt = now
	rule.UpdatedAt = now

	query := `
		INSERT INTO baggage_rules (` + ruleColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, r.rebind(query), ruleArgs(rule)...)
	return err
}

// UpdateBaggageRule replaces every mutable field of an existing rule.
func (r *SQLRepository) UpdateBaggageRule(ctx context.Context, rule *domain.BaggageRule) error {
	if rule.ID == "" {
		return fmt.Errorf("%w: rule id is required", ErrInvalidInput)
	}
	rule.Normalize()
	if err := rule.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	if err := r.requireAirline(ctx, rule.AirlineCode); err != nil {
		return err
	}

	rule.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE baggage_rules SET
			airline_code = ?, route_type = ?, cabin_class = ?, passenger_type = ?,
			cabin_baggage_count = ?, cabin_baggage_weight = ?, cabin_baggage_dimensions = ?,
			checked_baggage_count = ?, checked_baggage_weight = ?, checked_baggage_size = ?,
			excess_fee_per_kg = ?, excess_fee_flat = ?, currency = ?,
			effective_from = ?, effective_to = ?, is_active = ?,
			notes = ?, policy_url = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, r.rebind(query),
		rule.AirlineCode, string(rule.RouteType), string(rule.CabinClass), string(rule.PassengerType),
		rule.CabinBaggageCount, rule.CabinBaggageWeight, rule.CabinBaggageDimensions,
		rule.CheckedBaggageCount, rule.CheckedBaggageWeight, rule.CheckedBaggageSize,
		nullFloat(rule.ExcessFeePerKg), nullFloat(rule.ExcessFeeFlat), rule.Currency,
		rule.EffectiveFrom.String(), nullDate(rule.EffectiveTo), boolToInt(rule.IsActive),
		rule.Notes, rule.PolicyURL, rule.UpdatedAt,
		rule.ID,
	)
	if err != nil {
		return err
	}

	return expectAffected(result)
}

// DeleteBaggageRule removes a rule permanently.
func (r *SQLRepository) DeleteBaggageRule(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	result, err := r.db.ExecContext(ctx, r.rebind(`DELETE FROM baggage_rules WHERE id = ?`), id)
	if err != nil {
		return err
	}

	return expectAffected(result)
}

// GetBaggageRule retrieves a rule by ID.
func (r *SQLRepository) GetBaggageRule(ctx context.Context, id string) (*domain.BaggageRule, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `SELECT ` + ruleColumns + ` FROM baggage_rules WHERE id = ?`

	rule, err := scanRule(r.db.QueryRowContext(ctx, r.rebind(query), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rule, nil
}

// ListBaggageRules returns rules matching filter, newest effectiveFrom first.
func (r *SQLRepository) ListBaggageRules(ctx context.Context, filter domain.RuleFilter) ([]*domain.BaggageRule, error) {
	var where []string
	var args []any

	if filter.AirlineCode != "" {
		where = append(where, "airline_code = ?")
		args = append(args, domain.NormalizeCode(filter.AirlineCode))
	}
	if filter.RouteType != "" {
		where = append(where, "route_type = ?")
		args = append(args, domain.NormalizeCode(string(filter.RouteType)))
	}
	if filter.CabinClass != "" {
		where = append(where, "cabin_class = ?")
		args = append(args, domain.NormalizeCode(string(filter.CabinClass)))
	}
	if filter.PassengerType != "" {
		where = append(where, "passenger_type = ?")
		args = append(args, domain.NormalizeCode(string(filter.PassengerType)))
	}
	if filter.ActiveOnly && filter.ActiveOn == nil && filter.NotExpiredOn == nil {
		where = append(where, "is_active = 1")
	}
	if filter.ActiveOn != nil {
		day := filter.ActiveOn.String()
		where = append(where, "is_active = 1", "effective_from <= ?", "(effective_to IS NULL OR effective_to >= ?)")
		args = append(args, day, day)
	}
	if filter.NotExpiredOn != nil {
		where = append(where, "is_active = 1", "(effective_to IS NULL OR effective_to >= ?)")
		args = append(args, filter.NotExpiredOn.String())
	}

	query := `SELECT ` + ruleColumns + ` FROM baggage_rules`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY effective_from DESC, created_at DESC`

	return r.queryRules(ctx, query, args...)
}

// FindBaggageRules returns every rule stored under key, newest effectiveFrom first.
func (r *SQLRepository) FindBaggageRules(ctx context.Context, key domain.RuleKey) ([]*domain.BaggageRule, error) {
	key = key.Normalize()

	query := `
		SELECT ` + ruleColumns + `
		FROM baggage_rules
		WHERE airline_code = ? AND route_type = ? AND cabin_class = ? AND passenger_type = ?
		ORDER BY effective_from DESC, created_at DESC
	`

	return r.queryRules(ctx, query,
		key.AirlineCode, string(key.RouteType), string(key.CabinClass), string(key.PassengerType),
	)
}

func (r *SQLRepository) queryRules(ctx context.Context, query string, args ...any) ([]*domain.BaggageRule, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, r.rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []*domain.BaggageRule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}

	return rules, rows.Err()
}

func (r *SQLRepository) requireAirline(ctx context.Context, code string) error {
	var n int
	err := r.db.QueryRowContext(ctx, r.rebind(`SELECT COUNT(*) FROM airlines WHERE code = ?`), code).Scan(&n)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: unknown airline %s", ErrInvalidInput, code)
	}
	return nil
}

// Ping checks database connectivity.
func (r *SQLRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close closes the database connection.
func (r *SQLRepository) Close() error {
	return r.db.Close()
}

// rebind converts ? placeholders to $1, $2, etc. for PostgreSQL drivers.
func (r *SQLRepository) rebind(query string) string {
	if r.driver != "postgres" && r.driver != "pgx" {
		return query
	}

	// Convert ? to $1, $2, etc.
	var result []byte
	n := 1
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			result = append(result, '$')
			result = strconv.AppendInt(result, int64(n), 10)
			n++
		} else {
			result = append(result, query[i])
		}
	}
	return string(result)
}
