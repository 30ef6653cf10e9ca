package domain

import (
	"fmt"
	"strings"
	"time"
)

// RouteType classifies a flight for allowance purposes.
type RouteType string

const (
	RouteDomestic      RouteType = "DOMESTIC"
	RouteInternational RouteType = "INTERNATIONAL"
)

// CabinClass is the travel class a rule applies to.
type CabinClass string

const (
	CabinEconomy        CabinClass = "ECONOMY"
	CabinPremiumEconomy CabinClass = "PREMIUM_ECONOMY"
	CabinBusiness       CabinClass = "BUSINESS"
	CabinFirst          CabinClass = "FIRST"
)

// PassengerType distinguishes fare categories with different allowances.
type PassengerType string

const (
	PassengerAdult  PassengerType = "ADULT"
	PassengerChild  PassengerType = "CHILD"
	PassengerInfant PassengerType = "INFANT"
)

// BaggageStatus is the three-tier outcome of comparing bags to an allowance.
type BaggageStatus string

const (
	StatusAllowed    BaggageStatus = "ALLOWED"
	StatusExtraFee   BaggageStatus = "EXTRA_FEE"
	StatusNotAllowed BaggageStatus = "NOT_ALLOWED"
)

// DefaultCurrency is used when a rule is written without one.
const DefaultCurrency = "INR"

// Valid reports whether r is a known route type.
func (r RouteType) Valid() bool {
	return r == RouteDomestic || r == RouteInternational
}

// Valid reports whether c is a known cabin class.
func (c CabinClass) Valid() bool {
	switch c {
	case CabinEconomy, CabinPremiumEconomy, CabinBusiness, CabinFirst:
		return true
	}
	return false
}

// Valid reports whether p is a known passenger type.
func (p PassengerType) Valid() bool {
	switch p {
	case PassengerAdult, PassengerChild, PassengerInfant:
		return true
	}
	return false
}

// NormalizeCode upper-cases and trims an enum-like or IATA code input.
func NormalizeCode(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Airline is an operating carrier identified by its IATA code.
type Airline struct {
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	LogoURL   string    `json:"logoUrl,omitempty"`
	PolicyURL string    `json:"policyUrl,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// DefaultAirlines are inserted on first start when seeding is enabled.
func DefaultAirlines() []*Airline {
	return []*Airline{
		{Code: "AI", Name: "Air India", PolicyURL: "https://www.airindia.com/in/en/travel-information/baggage-guidelines.html", Active: true},
		{Code: "6E", Name: "IndiGo", PolicyURL: "https://www.goindigo.in/baggage.html", Active: true},
		{Code: "SG", Name: "SpiceJet", PolicyURL: "https://www.spicejet.com/baggage", Active: true},
		{Code: "UK", Name: "Vistara", PolicyURL: "https://www.airvistara.com/in/en/travel-information/baggage", Active: true},
	}
}

// BaggageRule is one airline's allowance policy for a segment.
// The key is (AirlineCode, RouteType, CabinClass, PassengerType); several rows may
// share a key with different validity windows.
type BaggageRule struct {
	ID            string        `json:"id"`
	AirlineCode   string        `json:"airlineCode"`
	RouteType     RouteType     `json:"routeType"`
	CabinClass    CabinClass    `json:"cabinClass"`
	PassengerType PassengerType `json:"passengerType"`

	CabinBaggageCount      int     `json:"cabinBaggageCount"`
	CabinBaggageWeight     float64 `json:"cabinBaggageWeight"`
	CabinBaggageDimensions string  `json:"cabinBaggageDimensions,omitempty"`

	CheckedBaggageCount  int     `json:"checkedBaggageCount"`
	CheckedBaggageWeight float64 `json:"checkedBaggageWeight"`
	CheckedBaggageSize   string  `json:"checkedBaggageSize,omitempty"`

	ExcessFeePerKg *float64 `json:"excessFeePerKg,omitempty"`
	ExcessFeeFlat  *float64 `json:"excessFeeFlat,omitempty"`
	Currency       string   `json:"currency"`

	EffectiveFrom Date  `json:"effectiveFrom"`
	EffectiveTo   *Date `json:"effectiveTo,omitempty"`
	IsActive      bool  `json:"isActive"`

	Notes     string    `json:"notes,omitempty"`
	PolicyURL string    `json:"policyUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// EffectiveOn reports whether the rule is active and inside its validity window on day.
func (r *BaggageRule) EffectiveOn(day Date) bool {
	if !r.IsActive {
		return false
	}
	if r.EffectiveFrom.After(day) {
		return false
	}
	if r.EffectiveTo != nil && r.EffectiveTo.Before(day) {
		return false
	}
	return true
}

// Validate checks the invariants a stored rule must hold.
func (r *BaggageRule) Validate() error {
	var problems []string
	if r.AirlineCode == "" {
		problems = append(problems, "airlineCode is required")
	}
	if !r.RouteType.Valid() {
		problems = append(problems, fmt.Sprintf("routeType %q is not supported", r.RouteType))
	}
	if !r.CabinClass.Valid() {
		problems = append(problems, fmt.Sprintf("cabinClass %q is not supported", r.CabinClass))
	}
	if !r.PassengerType.Valid() {
		problems = append(problems, fmt.Sprintf("passengerType %q is not supported", r.PassengerType))
	}
	if r.CabinBaggageCount < 0 || r.CheckedBaggageCount < 0 {
		problems = append(problems, "baggage counts must be >= 0")
	}
	if r.CabinBaggageWeight < 0 || r.CheckedBaggageWeight < 0 {
		problems = append(problems, "baggage weights must be >= 0")
	}
	if r.ExcessFeePerKg != nil && *r.ExcessFeePerKg < 0 {
		problems = append(problems, "excessFeePerKg must be >= 0")
	}
	if r.ExcessFeeFlat != nil && *r.ExcessFeeFlat < 0 {
		problems = append(problems, "excessFeeFlat must be >= 0")
	}
	if len(r.Currency) != 3 {
		problems = append(problems, "currency must be a 3-letter ISO code")
	}
	if r.EffectiveFrom.IsZero() {
		problems = append(problems, "effectiveFrom is required")
	}
	if r.EffectiveTo != nil && r.EffectiveTo.Before(r.EffectiveFrom) {
		problems = append(problems, "effectiveTo must not be before effectiveFrom")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid baggage rule: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Key returns the segment the rule applies to.
func (r *BaggageRule) Key() RuleKey {
	return RuleKey{
		AirlineCode:   r.AirlineCode,
		RouteType:     r.RouteType,
		CabinClass:    r.CabinClass,
		PassengerType: r.PassengerType,
	}
}

// Normalize upper-cases the key fields and fills defaults.
func (r *BaggageRule) Normalize() {
	r.AirlineCode = NormalizeCode(r.AirlineCode)
	r.RouteType = RouteType(NormalizeCode(string(r.RouteType)))
	r.CabinClass = CabinClass(NormalizeCode(string(r.CabinClass)))
	r.PassengerType = PassengerType(NormalizeCode(string(r.PassengerType)))
	if r.PassengerType == "" {
		r.PassengerType = PassengerAdult
	}
	r.Currency = NormalizeCode(r.Currency)
	if r.Currency == "" {
		r.Currency = DefaultCurrency
	}
}

// RuleKey identifies the segment a rule applies to.
type RuleKey struct {
	AirlineCode   string
	RouteType     RouteType
	CabinClass    CabinClass
	PassengerType PassengerType
}

// Normalize upper-cases every field so lookups are case-insensitive.
func (k RuleKey) Normalize() RuleKey {
	pt := PassengerType(NormalizeCode(string(k.PassengerType)))
	if pt == "" {
		pt = PassengerAdult
	}
	return RuleKey{
		AirlineCode:   NormalizeCode(k.AirlineCode),
		RouteType:     RouteType(NormalizeCode(string(k.RouteType))),
		CabinClass:    CabinClass(NormalizeCode(string(k.CabinClass))),
		PassengerType: pt,
	}
}

// String renders the key as a colon-separated cache key fragment.
func (k RuleKey) String() string {
	return k.AirlineCode + ":" + string(k.RouteType) + ":" + string(k.CabinClass) + ":" + string(k.PassengerType)
}

// RuleFilter narrows a rule listing. Empty fields match everything.
type RuleFilter struct {
	AirlineCode   string
	RouteType     RouteType
	CabinClass    CabinClass
	PassengerType PassengerType

	// ActiveOnly drops rules with isActive = false.
	ActiveOnly bool

	// ActiveOn keeps only active rules whose window contains the day.
	ActiveOn *Date

	// NotExpiredOn keeps only active rules with no end date or an end on/after the day.
	NotExpiredOn *Date
}

// BagEntry is a single bag submitted for a calculation.
type BagEntry struct {
	Weight float64 `json:"weight"`
}
