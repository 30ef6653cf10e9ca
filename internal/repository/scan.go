package repository

import (
	"database/sql"

	"github.com/airpass/airpass/internal/domain"
)

const ruleColumns = `id, airline_code, route_type, cabin_class, passenger_type,
	cabin_baggage_count, cabin_baggage_weight, cabin_baggage_dimensions,
	checked_baggage_count, checked_baggage_weight, checked_baggage_size,
	excess_fee_per_kg, excess_fee_flat, currency,
	effective_from, effective_to, is_active,
	notes, policy_url, created_at, updated_at`

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func ruleArgs(rule *domain.BaggageRule) []any {
	return []any{
		rule.ID, rule.AirlineCode, string(rule.RouteType), string(rule.CabinClass), string(rule.PassengerType),
		rule.CabinBaggageCount, rule.CabinBaggageWeight, rule.CabinBaggageDimensions,
		rule.CheckedBaggageCount, rule.CheckedBaggageWeight, rule.CheckedBaggageSize,
		nullFloat(rule.ExcessFeePerKg), nullFloat(rule.ExcessFeeFlat), rule.Currency,
		rule.EffectiveFrom.String(), nullDate(rule.EffectiveTo), boolToInt(rule.IsActive),
		rule.Notes, rule.PolicyURL, rule.CreatedAt, rule.UpdatedAt,
	}
}

func scanRule(s scanner) (*domain.BaggageRule, error) {
	var rule domain.BaggageRule
	var routeType, cabinClass, passengerType string
	var perKg, flat sql.NullFloat64
	var from string
	var to sql.NullString
	var active int

	err := s.Scan(
		&rule.ID, &rule.AirlineCode, &routeType, &cabinClass, &passengerType,
		&rule.CabinBaggageCount, &rule.CabinBaggageWeight, &rule.CabinBaggageDimensions,
		&rule.CheckedBaggageCount, &rule.CheckedBaggageWeight, &rule.CheckedBaggageSize,
		&perKg, &flat, &rule.Currency,
		&from, &to, &active,
		&rule.Notes, &rule.PolicyURL, &rule.CreatedAt, &rule.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	rule.RouteType = domain.RouteType(routeType)
	rule.CabinClass = domain.CabinClass(cabinClass)
	rule.PassengerType = domain.PassengerType(passengerType)
	rule.IsActive = active == 1

	if perKg.Valid {
		v := perKg.Float64
		rule.ExcessFeePerKg = &v
	}
	if flat.Valid {
		v := flat.Float64
		rule.ExcessFeeFlat = &v
	}

	if rule.EffectiveFrom, err = domain.ParseDate(from); err != nil {
		return nil, err
	}
	if to.Valid && to.String != "" {
		d, err := domain.ParseDate(to.String)
		if err != nil {
			return nil, err
		}
		rule.EffectiveTo = &d
	}

	return &rule, nil
}

func scanAirline(s scanner) (*domain.Airline, error) {
	var a domain.Airline
	var active int
	if err := s.Scan(&a.Code, &a.Name, &a.LogoURL, &a.PolicyURL, &active, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	a.Active = active == 1
	return &a, nil
}

func expectAffected(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullDate(d *domain.Date) sql.NullString {
	if d == nil || d.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
