package baggage

import (
	"strings"

	"github.com/airpass/airpass/internal/domain"
)

const (
	rulePrefix = "baggage:rule:"
	listPrefix = "baggage:list:"
)

func ruleCacheKey(key domain.RuleKey, day domain.Date) string {
	return rulePrefix + key.String() + ":" + day.String()
}

func listCacheKey(airline string, route domain.RouteType, cabin domain.CabinClass, day domain.Date) string {
	return listPrefix + airline + ":" + string(route) + ":" + string(cabin) + ":" + day.String()
}

// airlinePrefixes are the cache key prefixes holding any lookup for airline.
func airlinePrefixes(airline string) []string {
	airline = strings.ToUpper(airline)
	return []string{
		rulePrefix + airline + ":",
		listPrefix + airline + ":",
	}
}
