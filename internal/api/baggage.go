package api

import (
	"net/http"

	"github.com/airpass/airpass/internal/baggage"
	"github.com/airpass/airpass/internal/domain"
	"github.com/airpass/airpass/internal/schema"
	"github.com/go-chi/chi/v5"
)

const calculationDisclaimer = "These calculations are estimates. Actual fees may vary at the airport."

// CalculateRequest is the request body for POST /baggage/calculate.
type CalculateRequest struct {
	AirlineCode   string            `json:"airlineCode"`
	RouteType     string            `json:"routeType"`
	CabinClass    string            `json:"cabinClass"`
	PassengerType string            `json:"passengerType,omitempty"`
	TravelDate    *domain.Date      `json:"travelDate,omitempty"`
	CabinBags     []domain.BagEntry `json:"cabinBags,omitempty"`
	CheckedBags   []domain.BagEntry `json:"checkedBags,omitempty"`
}

// Allowance is one side of a rule's allowance.
type Allowance struct {
	Count      int     `json:"count"`
	Weight     float64 `json:"weight"`
	Dimensions string  `json:"dimensions,omitempty"`
}

// CalculateResponse is the response for POST /baggage/calculate.
type CalculateResponse struct {
	Airline        string `json:"airline"`
	RouteType      string `json:"routeType"`
	CabinClass     string `json:"cabinClass"`
	PassengerType  string `json:"passengerType"`
	RuleID         string `json:"ruleId"`
	EvaluationDate string `json:"evaluationDate"`

	Allowances struct {
		Cabin   Allowance `json:"cabin"`
		Checked Allowance `json:"checked"`
	} `json:"allowances"`

	YourBags struct {
		Cabin   baggage.BagSummary `json:"cabin"`
		Checked baggage.BagSummary `json:"checked"`
	} `json:"yourBags"`

	Calculations struct {
		CabinExcess   float64 `json:"cabinExcess"`
		CheckedExcess float64 `json:"checkedExcess"`
		TotalExcess   float64 `json:"totalExcess"`
		ExcessFee     float64 `json:"excessFee"`
		Currency      string  `json:"currency"`
	} `json:"calculations"`

	Status struct {
		Cabin   domain.BaggageStatus `json:"cabin"`
		Checked domain.BaggageStatus `json:"checked"`
		Overall domain.BaggageStatus `json:"overall"`
	} `json:"status"`

	Notes      string `json:"notes,omitempty"`
	PolicyURL  string `json:"policyUrl,omitempty"`
	Disclaimer string `json:"disclaimer"`
}

func (req CalculateRequest) key() (domain.RuleKey, error) {
	key := domain.RuleKey{
		AirlineCode:   req.AirlineCode,
		RouteType:     domain.RouteType(req.RouteType),
		CabinClass:    domain.CabinClass(req.CabinClass),
		PassengerType: domain.PassengerType(req.PassengerType),
	}.Normalize()

	var problems []string
	if !key.RouteType.Valid() {
		problems = append(problems, "routeType: must be DOMESTIC or INTERNATIONAL")
	}
	if !key.CabinClass.Valid() {
		problems = append(problems, "cabinClass: must be ECONOMY, PREMIUM_ECONOMY, BUSINESS or FIRST")
	}
	if !key.PassengerType.Valid() {
		problems = append(problems, "passengerType: must be ADULT, CHILD or INFANT")
	}
	if len(problems) > 0 {
		return key, schema.Invalid(schema.Calculate, problems...)
	}
	return key, nil
}

// CalculateBaggage handles POST /baggage/calculate.
func (h *Handler) CalculateBaggage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CalculateRequest
	if err := h.decode(r, schema.Calculate, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	key, err := req.key()
	if err != nil {
		h.fail(w, r, err)
		return
	}

	day := domain.Today()
	if req.TravelDate != nil && !req.TravelDate.IsZero() {
		day = *req.TravelDate
	}

	rule, err := h.rules.SelectRule(ctx, key, day)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	result := baggage.ComputeExcess(rule, req.CabinBags, req.CheckedBags)

	var resp CalculateResponse
	resp.Airline = key.AirlineCode
	resp.RouteType = string(key.RouteType)
	resp.CabinClass = string(key.CabinClass)
	resp.PassengerType = string(key.PassengerType)
	resp.RuleID = rule.ID
	resp.EvaluationDate = day.String()

	resp.Allowances.Cabin = Allowance{
		Count:      rule.CabinBaggageCount,
		Weight:     rule.CabinBaggageWeight,
		Dimensions: rule.CabinBaggageDimensions,
	}
	resp.Allowances.Checked = Allowance{
		Count:      rule.CheckedBaggageCount,
		Weight:     rule.CheckedBaggageWeight,
		Dimensions: rule.CheckedBaggageSize,
	}

	resp.YourBags.Cabin = result.Cabin
	resp.YourBags.Checked = result.Checked

	resp.Calculations.CabinExcess = result.CabinExcess
	resp.Calculations.CheckedExcess = result.CheckedExcess
	resp.Calculations.TotalExcess = result.TotalExcess
	resp.Calculations.ExcessFee = result.ExcessFee
	resp.Calculations.Currency = result.Currency

	resp.Status.Cabin = result.CabinStatus
	resp.Status.Checked = result.CheckedStatus
	resp.Status.Overall = result.Overall

	resp.Notes = rule.Notes
	resp.PolicyURL = h.policyURL(r, rule)
	resp.Disclaimer = calculationDisclaimer

	writeJSON(w, http.StatusOK, resp)
}

// policyURL prefers the rule's own link and falls back to the airline's.
func (h *Handler) policyURL(r *http.Request, rule *domain.BaggageRule) string {
	if rule.PolicyURL != "" || h.repo == nil {
		return rule.PolicyURL
	}
	airline, err := h.repo.GetAirline(r.Context(), rule.AirlineCode)
	if err != nil {
		return ""
	}
	return airline.PolicyURL
}

// ListAirlineRules handles GET /baggage/rules/{airlineCode}.
func (h *Handler) ListAirlineRules(w http.ResponseWriter, r *http.Request) {
	airline := chi.URLParam(r, "airlineCode")
	query := r.URL.Query()

	rules, err := h.rules.ListCurrent(r.Context(),
		airline,
		domain.RouteType(query.Get("routeType")),
		domain.CabinClass(query.Get("cabinClass")),
		domain.Today(),
	)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, rules)
}
