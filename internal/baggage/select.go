package baggage

import (
	"github.com/airpass/airpass/internal/domain"
)

// Select returns the rule current on day: active, inside its window, with the
// latest effectiveFrom. Ties on effectiveFrom keep the earlier slice position.
// It returns nil when no rule qualifies.
func Select(rules []*domain.BaggageRule, day domain.Date) *domain.BaggageRule {
	var best *domain.BaggageRule
	for _, r := range rules {
		if !r.EffectiveOn(day) {
			continue
		}
		if best == nil || r.EffectiveFrom.After(best.EffectiveFrom) {
			best = r
		}
	}
	return best
}
