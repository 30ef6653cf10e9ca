package baggage

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/airpass/airpass/internal/cache"
	"github.com/airpass/airpass/internal/domain"
)

type fakeStore struct {
	rules   []*domain.BaggageRule
	err     error
	finds   atomic.Int32
	lists   atomic.Int32
	lastKey domain.RuleKey
}

func (s *fakeStore) FindBaggageRules(ctx context.Context, key domain.RuleKey) ([]*domain.BaggageRule, error) {
	s.finds.Add(1)
	s.lastKey = key
	if s.err != nil {
		return nil, s.err
	}
	var out []*domain.BaggageRule
	for _, r := range s.rules {
		if r.AirlineCode == key.AirlineCode && r.RouteType == key.RouteType &&
			r.CabinClass == key.CabinClass && r.PassengerType == key.PassengerType {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *fakeStore) ListBaggageRules(ctx context.Context, filter domain.RuleFilter) ([]*domain.BaggageRule, error) {
	s.lists.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	var out []*domain.BaggageRule
	for _, r := range s.rules {
		if r.AirlineCode != filter.AirlineCode {
			continue
		}
		if filter.RouteType != "" && r.RouteType != filter.RouteType {
			continue
		}
		if filter.CabinClass != "" && r.CabinClass != filter.CabinClass {
			continue
		}
		if filter.NotExpiredOn != nil {
			if !r.IsActive || (r.EffectiveTo != nil && r.EffectiveTo.Before(*filter.NotExpiredOn)) {
				continue
			}
		}
		out = append(out, r)
	}
	return out, nil
}

func date(s string) domain.Date {
	d, err := domain.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func datePtr(s string) *domain.Date {
	d := date(s)
	return &d
}

func ruleFrom(id, from string) *domain.BaggageRule {
	r := economyRule()
	r.ID = id
	r.EffectiveFrom = date(from)
	return r
}

var economyKey = domain.RuleKey{
	AirlineCode:   "6e",
	RouteType:     "domestic",
	CabinClass:    "Economy",
	PassengerType: "",
}

func TestSelect(t *testing.T) {
	day := date("2025-06-15")

	t.Run("LatestEffectiveFromWins", func(t *testing.T) {
		older := ruleFrom("old", "2024-01-01")
		newer := ruleFrom("new", "2025-01-01")

		if got := Select([]*domain.BaggageRule{older, newer}, day); got == nil || got.ID != "new" {
			t.Errorf("expected 'new', got %+v", got)
		}
		if got := Select([]*domain.BaggageRule{newer, older}, day); got == nil || got.ID != "new" {
			t.Errorf("order should not matter, got %+v", got)
		}
	})

	t.Run("FutureRuleIgnored", func(t *testing.T) {
		current := ruleFrom("current", "2024-01-01")
		future := ruleFrom("future", "2025-07-01")

		if got := Select([]*domain.BaggageRule{future, current}, day); got == nil || got.ID != "current" {
			t.Errorf("expected 'current', got %+v", got)
		}
	})

	t.Run("ExpiredRuleIgnored", func(t *testing.T) {
		expired := ruleFrom("expired", "2025-01-01")
		expired.EffectiveTo = datePtr("2025-06-14")
		fallback := ruleFrom("fallback", "2024-01-01")

		if got := Select([]*domain.BaggageRule{expired, fallback}, day); got == nil || got.ID != "fallback" {
			t.Errorf("expected 'fallback', got %+v", got)
		}
	})

	t.Run("EffectiveToIsInclusive", func(t *testing.T) {
		r := ruleFrom("edge", "2025-06-15")
		r.EffectiveTo = datePtr("2025-06-15")

		if got := Select([]*domain.BaggageRule{r}, day); got == nil {
			t.Error("expected rule valid on its single day")
		}
	})

	t.Run("InactiveRuleIgnored", func(t *testing.T) {
		inactive := ruleFrom("inactive", "2025-01-01")
		inactive.IsActive = false

		if got := Select([]*domain.BaggageRule{inactive}, day); got != nil {
			t.Errorf("expected nil, got %+v", got)
		}
	})

	t.Run("Empty", func(t *testing.T) {
		if got := Select(nil, day); got != nil {
			t.Errorf("expected nil, got %+v", got)
		}
	})
}

func TestResolverSelectRule(t *testing.T) {
	ctx := context.Background()
	day := date("2025-06-15")

	t.Run("NormalizesKey", func(t *testing.T) {
		store := &fakeStore{rules: []*domain.BaggageRule{ruleFrom("r1", "2024-01-01")}}
		resolver := NewResolver(store, nil, 0)

		rule, err := resolver.SelectRule(ctx, economyKey, day)
		if err != nil {
			t.Fatalf("SelectRule failed: %v", err)
		}
		if rule.ID != "r1" {
			t.Errorf("expected r1, got %s", rule.ID)
		}
		want := domain.RuleKey{AirlineCode: "6E", RouteType: "DOMESTIC", CabinClass: "ECONOMY", PassengerType: "ADULT"}
		if store.lastKey != want {
			t.Errorf("expected normalized key %+v, got %+v", want, store.lastKey)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		resolver := NewResolver(&fakeStore{}, nil, 0)

		_, err := resolver.SelectRule(ctx, economyKey, day)
		if !errors.Is(err, ErrRuleNotFound) {
			t.Errorf("expected ErrRuleNotFound, got %v", err)
		}
	})

	t.Run("StoreFailurePropagates", func(t *testing.T) {
		storeErr := errors.New("connection refused")
		resolver := NewResolver(&fakeStore{err: storeErr}, nil, 0)

		_, err := resolver.SelectRule(ctx, economyKey, day)
		if !errors.Is(err, storeErr) {
			t.Errorf("expected wrapped store error, got %v", err)
		}
		if errors.Is(err, ErrRuleNotFound) {
			t.Error("store failure must not look like not-found")
		}
	})

	t.Run("CachesHits", func(t *testing.T) {
		store := &fakeStore{rules: []*domain.BaggageRule{ruleFrom("r1", "2024-01-01")}}
		resolver := NewResolver(store, cache.NewLRUCache(100), time.Hour)

		for i := 0; i < 3; i++ {
			rule, err := resolver.SelectRule(ctx, economyKey, day)
			if err != nil {
				t.Fatalf("SelectRule failed: %v", err)
			}
			if rule.ID != "r1" || rule.CabinBaggageWeight != 7 || *rule.ExcessFeePerKg != 500 {
				t.Errorf("unexpected cached rule: %+v", rule)
			}
			if rule.EffectiveFrom.String() != "2024-01-01" {
				t.Errorf("effectiveFrom lost in cache: %s", rule.EffectiveFrom)
			}
		}
		if store.finds.Load() != 1 {
			t.Errorf("expected 1 store query, got %d", store.finds.Load())
		}
	})

	t.Run("MissesAreNotCached", func(t *testing.T) {
		store := &fakeStore{}
		resolver := NewResolver(store, cache.NewLRUCache(100), time.Hour)

		_, _ = resolver.SelectRule(ctx, economyKey, day)
		store.rules = []*domain.BaggageRule{ruleFrom("late", "2024-01-01")}

		rule, err := resolver.SelectRule(ctx, economyKey, day)
		if err != nil {
			t.Fatalf("expected rule after it was added, got %v", err)
		}
		if rule.ID != "late" {
			t.Errorf("expected 'late', got %s", rule.ID)
		}
	})

	t.Run("InvalidateAirline", func(t *testing.T) {
		store := &fakeStore{rules: []*domain.BaggageRule{ruleFrom("r1", "2024-01-01")}}
		resolver := NewResolver(store, cache.NewLRUCache(100), time.Hour)

		if _, err := resolver.SelectRule(ctx, economyKey, day); err != nil {
			t.Fatalf("SelectRule failed: %v", err)
		}
		if _, err := resolver.ListCurrent(ctx, "6E", "", "", day); err != nil {
			t.Fatalf("ListCurrent failed: %v", err)
		}

		store.rules[0] = ruleFrom("r2", "2024-01-01")

		n, err := resolver.InvalidateAirline(ctx, "6e")
		if err != nil {
			t.Fatalf("InvalidateAirline failed: %v", err)
		}
		if n != 2 {
			t.Errorf("expected 2 invalidated entries, got %d", n)
		}

		rule, err := resolver.SelectRule(ctx, economyKey, day)
		if err != nil {
			t.Fatalf("SelectRule failed: %v", err)
		}
		if rule.ID != "r2" {
			t.Errorf("expected fresh rule r2, got %s", rule.ID)
		}
	})
}

func TestResolverListCurrent(t *testing.T) {
	ctx := context.Background()
	today := date("2025-06-15")

	expired := ruleFrom("expired", "2023-01-01")
	expired.EffectiveTo = datePtr("2024-01-01")
	business := ruleFrom("business", "2024-01-01")
	business.CabinClass = domain.CabinBusiness

	store := &fakeStore{rules: []*domain.BaggageRule{
		ruleFrom("economy", "2024-01-01"),
		business,
		expired,
	}}
	resolver := NewResolver(store, cache.NewLRUCache(100), time.Hour)

	t.Run("AllCurrent", func(t *testing.T) {
		rules, err := resolver.ListCurrent(ctx, "6e", "", "", today)
		if err != nil {
			t.Fatalf("ListCurrent failed: %v", err)
		}
		if len(rules) != 2 {
			t.Errorf("expected 2 current rules, got %d", len(rules))
		}
	})

	t.Run("FilteredByCabin", func(t *testing.T) {
		rules, err := resolver.ListCurrent(ctx, "6E", "", "business", today)
		if err != nil {
			t.Fatalf("ListCurrent failed: %v", err)
		}
		if len(rules) != 1 || rules[0].ID != "business" {
			t.Errorf("expected only the business rule, got %d", len(rules))
		}
	})

	t.Run("Cached", func(t *testing.T) {
		before := store.lists.Load()
		if _, err := resolver.ListCurrent(ctx, "6E", "", "", today); err != nil {
			t.Fatalf("ListCurrent failed: %v", err)
		}
		if store.lists.Load() != before {
			t.Error("expected listing to be served from cache")
		}
	})

	t.Run("NoneIsNotFound", func(t *testing.T) {
		_, err := resolver.ListCurrent(ctx, "AI", "", "", today)
		if !errors.Is(err, ErrRuleNotFound) {
			t.Errorf("expected ErrRuleNotFound, got %v", err)
		}
	})
}
