// Package baggage resolves the baggage rule that applies to a journey and
// computes excess weight, fees and allowance status against it.
package baggage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/airpass/airpass/internal/cache"
	"github.com/airpass/airpass/internal/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ErrRuleNotFound means no rule is current for the requested key and date.
var ErrRuleNotFound = errors.New("no baggage rule found for the specified criteria")

// DefaultRuleTTL is how long resolved rules and listings stay cached.
const DefaultRuleTTL = time.Hour

var tracer = otel.Tracer("airpass-baggage")

// RuleStore is the read side of the rule store used by the resolver.
type RuleStore interface {
	FindBaggageRules(ctx context.Context, key domain.RuleKey) ([]*domain.BaggageRule, error)
	ListBaggageRules(ctx context.Context, filter domain.RuleFilter) ([]*domain.BaggageRule, error)
}

// Resolver selects current rules through an optional read-through cache.
type Resolver struct {
	store RuleStore
	cache domain.Cache
	ttl   time.Duration
}

// NewResolver creates a resolver. A nil cache disables caching.
func NewResolver(store RuleStore, c domain.Cache, ttl time.Duration) *Resolver {
	if ttl <= 0 {
		ttl = DefaultRuleTTL
	}
	return &Resolver{
		store: store,
		cache: c,
		ttl:   ttl,
	}
}

// SelectRule returns the rule current on day for key. Inputs are matched
// case-insensitively and an empty passenger type means ADULT.
func (r *Resolver) SelectRule(ctx context.Context, key domain.RuleKey, day domain.Date) (*domain.BaggageRule, error) {
	key = key.Normalize()

	ctx, span := tracer.Start(ctx, "baggage.SelectRule",
		trace.WithAttributes(
			attribute.String("airline.code", key.AirlineCode),
			attribute.String("route.type", string(key.RouteType)),
			attribute.String("cabin.class", string(key.CabinClass)),
			attribute.String("passenger.type", string(key.PassengerType)),
			attribute.String("evaluation.date", day.String()),
		),
	)
	defer span.End()

	cacheKey := ruleCacheKey(key, day)
	var cached domain.BaggageRule
	if r.readCache(ctx, cacheKey, &cached) {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return &cached, nil
	}

	rules, err := r.store.FindBaggageRules(ctx, key)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "rule store query failed")
		return nil, fmt.Errorf("failed to query baggage rules: %w", err)
	}

	rule := Select(rules, day)
	if rule == nil {
		span.SetAttributes(attribute.Bool("rule.found", false))
		return nil, ErrRuleNotFound
	}

	span.SetAttributes(attribute.String("rule.id", rule.ID))
	r.writeCache(ctx, cacheKey, rule)
	return rule, nil
}

// ListCurrent returns the airline's active, unexpired rules, optionally narrowed by
// route type and cabin class, newest effectiveFrom first.
func (r *Resolver) ListCurrent(ctx context.Context, airline string, route domain.RouteType, cabin domain.CabinClass, today domain.Date) ([]*domain.BaggageRule, error) {
	airline = domain.NormalizeCode(airline)
	route = domain.RouteType(domain.NormalizeCode(string(route)))
	cabin = domain.CabinClass(domain.NormalizeCode(string(cabin)))

	ctx, span := tracer.Start(ctx, "baggage.ListCurrent",
		trace.WithAttributes(attribute.String("airline.code", airline)),
	)
	defer span.End()

	cacheKey := listCacheKey(airline, route, cabin, today)
	var cached []*domain.BaggageRule
	if r.readCache(ctx, cacheKey, &cached) {
		return cached, nil
	}

	rules, err := r.store.ListBaggageRules(ctx, domain.RuleFilter{
		AirlineCode:  airline,
		RouteType:    route,
		CabinClass:   cabin,
		NotExpiredOn: &today,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "rule store query failed")
		return nil, fmt.Errorf("failed to list baggage rules: %w", err)
	}
	if len(rules) == 0 {
		return nil, ErrRuleNotFound
	}

	r.writeCache(ctx, cacheKey, rules)
	return rules, nil
}

// InvalidateAirline drops every cached lookup for airline.
func (r *Resolver) InvalidateAirline(ctx context.Context, airline string) (int, error) {
	if r.cache == nil {
		return 0, nil
	}
	removed := 0
	for _, prefix := range airlinePrefixes(airline) {
		n, err := r.cache.DeletePrefix(ctx, prefix)
		if err != nil {
			return removed, fmt.Errorf("failed to invalidate %s: %w", prefix, err)
		}
		removed += n
	}
	return removed, nil
}

// readCache treats cache failures as misses so lookups fall through to the store.
func (r *Resolver) readCache(ctx context.Context, key string, v any) bool {
	if r.cache == nil {
		return false
	}
	ok, err := cache.GetJSON(ctx, r.cache, key, v)
	if err != nil {
		slog.Warn("rule cache read failed", "key", key, "error", err)
		return false
	}
	return ok
}

func (r *Resolver) writeCache(ctx context.Context, key string, v any) {
	if r.cache == nil {
		return
	}
	if err := cache.SetJSON(ctx, r.cache, key, v, r.ttl); err != nil {
		slog.Warn("rule cache write failed", "key", key, "error", err)
	}
}
