package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/airpass/airpass/internal/domain"
)

// SeedAirlines inserts any of airlines not already present. Existing rows are left untouched.
func SeedAirlines(ctx context.Context, repo domain.Repository, airlines []*domain.Airline) (int, error) {
	inserted := 0
	for _, a := range airlines {
		_, err := repo.GetAirline(ctx, a.Code)
		if err == nil {
			continue
		}
		if !errors.Is(err, ErrNotFound) {
			return inserted, fmt.Errorf("failed to look up airline %s: %w", a.Code, err)
		}
		if err := repo.SaveAirline(ctx, a); err != nil {
			return inserted, fmt.Errorf("failed to seed airline %s: %w", a.Code, err)
		}
		slog.Debug("seeded airline", "code", a.Code, "name", a.Name)
		inserted++
	}
	return inserted, nil
}
