package repository

// Schema definitions for the airpass rule store.
// Compatible with both SQLite and PostgreSQL. Calendar dates are stored as
// YYYY-MM-DD text so lexical comparison matches chronological order.

const schemaAirlines = `
CREATE TABLE IF NOT EXISTS airlines (
    code TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    logo_url TEXT NOT NULL DEFAULT '',
    policy_url TEXT NOT NULL DEFAULT '',
    active INTEGER NOT NULL DEFAULT 1,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);
`

const schemaBaggageRules = `
CREATE TABLE IF NOT EXISTS baggage_rules (
    id TEXT PRIMARY KEY,
    airline_code TEXT NOT NULL REFERENCES airlines(code),
    route_type TEXT NOT NULL,
    cabin_class TEXT NOT NULL,
    passenger_type TEXT NOT NULL DEFAULT 'ADULT',
    cabin_baggage_count INTEGER NOT NULL DEFAULT 1,
    cabin_baggage_weight DOUBLE PRECISION NOT NULL,
    cabin_baggage_dimensions TEXT NOT NULL DEFAULT '',
    checked_baggage_count INTEGER NOT NULL DEFAULT 1,
    checked_baggage_weight DOUBLE PRECISION NOT NULL,
    checked_baggage_size TEXT NOT NULL DEFAULT '',
    excess_fee_per_kg DOUBLE PRECISION,
    excess_fee_flat DOUBLE PRECISION,
    currency TEXT NOT NULL DEFAULT 'INR',
    effective_from TEXT NOT NULL,
    effective_to TEXT,
    is_active INTEGER NOT NULL DEFAULT 1,
    notes TEXT NOT NULL DEFAULT '',
    policy_url TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_baggage_rules_key ON baggage_rules(airline_code, route_type, cabin_class, passenger_type);
CREATE INDEX IF NOT EXISTS idx_baggage_rules_effective ON baggage_rules(airline_code, effective_from);
`

// AllSchemas returns all schema statements in order.
func AllSchemas() []string {
	return []string{
		schemaAirlines,
		schemaBaggageRules,
	}
}
