package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/airpass/airpass/internal/bus"
	"github.com/airpass/airpass/internal/domain"
	"github.com/airpass/airpass/internal/schema"
	"github.com/go-chi/chi/v5"
)

// RuleRequest is the request body for creating or replacing a baggage rule.
// Optional fields left out take their defaults: passenger type ADULT,
// currency INR, active, effective from today.
type RuleRequest struct {
	ID                     string       `json:"id,omitempty"`
	AirlineCode            string       `json:"airlineCode"`
	RouteType              string       `json:"routeType"`
	CabinClass             string       `json:"cabinClass"`
	PassengerType          string       `json:"passengerType,omitempty"`
	CabinBaggageCount      int          `json:"cabinBaggageCount"`
	CabinBaggageWeight     float64      `json:"cabinBaggageWeight"`
	CabinBaggageDimensions *string      `json:"cabinBaggageDimensions,omitempty"`
	CheckedBaggageCount    int          `json:"checkedBaggageCount"`
	CheckedBaggageWeight   float64      `json:"checkedBaggageWeight"`
	CheckedBaggageSize     *string      `json:"checkedBaggageSize,omitempty"`
	ExcessFeePerKg         *float64     `json:"excessFeePerKg,omitempty"`
	ExcessFeeFlat          *float64     `json:"excessFeeFlat,omitempty"`
	Currency               string       `json:"currency,omitempty"`
	EffectiveFrom          *domain.Date `json:"effectiveFrom,omitempty"`
	EffectiveTo            *domain.Date `json:"effectiveTo,omitempty"`
	IsActive               *bool        `json:"isActive,omitempty"`
	Notes                  *string      `json:"notes,omitempty"`
	PolicyURL              *string      `json:"policyUrl,omitempty"`
}

func (req RuleRequest) toRule(today domain.Date) *domain.BaggageRule {
	rule := &domain.BaggageRule{
		ID:                   req.ID,
		AirlineCode:          req.AirlineCode,
		RouteType:            domain.RouteType(req.RouteType),
		CabinClass:           domain.CabinClass(req.CabinClass),
		PassengerType:        domain.PassengerType(req.PassengerType),
		CabinBaggageCount:    req.CabinBaggageCount,
		CabinBaggageWeight:   req.CabinBaggageWeight,
		CheckedBaggageCount:  req.CheckedBaggageCount,
		CheckedBaggageWeight: req.CheckedBaggageWeight,
		ExcessFeePerKg:       req.ExcessFeePerKg,
		ExcessFeeFlat:        req.ExcessFeeFlat,
		Currency:             req.Currency,
		EffectiveFrom:        today,
		IsActive:             true,
	}

	if req.CabinBaggageDimensions != nil {
		rule.CabinBaggageDimensions = *req.CabinBaggageDimensions
	}
	if req.CheckedBaggageSize != nil {
		rule.CheckedBaggageSize = *req.CheckedBaggageSize
	}
	if req.EffectiveFrom != nil && !req.EffectiveFrom.IsZero() {
		rule.EffectiveFrom = *req.EffectiveFrom
	}
	if req.EffectiveTo != nil && !req.EffectiveTo.IsZero() {
		to := *req.EffectiveTo
		rule.EffectiveTo = &to
	}
	if req.IsActive != nil {
		rule.IsActive = *req.IsActive
	}
	if req.Notes != nil {
		rule.Notes = *req.Notes
	}
	if req.PolicyURL != nil {
		rule.PolicyURL = *req.PolicyURL
	}

	rule.Normalize()
	return rule
}

// ListRules handles GET /admin/rules.
func (h *Handler) ListRules(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	includeInactive, _ := strconv.ParseBool(query.Get("includeInactive"))
	filter := domain.RuleFilter{
		AirlineCode:   query.Get("airlineCode"),
		RouteType:     domain.RouteType(query.Get("routeType")),
		CabinClass:    domain.CabinClass(query.Get("cabinClass")),
		PassengerType: domain.PassengerType(query.Get("passengerType")),
		ActiveOnly:    !includeInactive,
	}

	rules, err := h.repo.ListBaggageRules(r.Context(), filter)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if rules == nil {
		rules = []*domain.BaggageRule{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"rules": rules,
		"count": len(rules),
	})
}

// GetRule handles GET /admin/rules/{id}.
func (h *Handler) GetRule(w http.ResponseWriter, r *http.Request) {
	rule, err := h.repo.GetBaggageRule(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rule)
}

// CreateRule handles POST /admin/rules.
func (h *Handler) CreateRule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req RuleRequest
	if err := h.decode(r, schema.Rule, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	rule := req.toRule(domain.Today())
	if err := h.repo.CreateBaggageRule(ctx, rule); err != nil {
		h.fail(w, r, err)
		return
	}

	slog.Info("baggage rule created",
		"rule_id", rule.ID,
		"airline_code", rule.AirlineCode,
		"key", rule.Key().String(),
	)
	h.ruleChanged(ctx, rule.ID, domain.ActionCreated, rule.AirlineCode)

	writeJSON(w, http.StatusCreated, rule)
}

// UpdateRule handles PUT /admin/rules/{id}. The body replaces the stored rule.
func (h *Handler) UpdateRule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	var req RuleRequest
	if err := h.decode(r, schema.Rule, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	existing, err := h.repo.GetBaggageRule(ctx, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	rule := req.toRule(existing.EffectiveFrom)
	rule.ID = id
	rule.CreatedAt = existing.CreatedAt

	if err := h.repo.UpdateBaggageRule(ctx, rule); err != nil {
		h.fail(w, r, err)
		return
	}

	slog.Info("baggage rule updated",
		"rule_id", rule.ID,
		"airline_code", rule.AirlineCode,
	)
	h.ruleChanged(ctx, rule.ID, domain.ActionUpdated, existing.AirlineCode, rule.AirlineCode)

	writeJSON(w, http.StatusOK, rule)
}

// DeleteRule handles DELETE /admin/rules/{id}.
func (h *Handler) DeleteRule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	existing, err := h.repo.GetBaggageRule(ctx, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if err := h.repo.DeleteBaggageRule(ctx, id); err != nil {
		h.fail(w, r, err)
		return
	}

	slog.Info("baggage rule deleted",
		"rule_id", id,
		"airline_code", existing.AirlineCode,
	)
	h.ruleChanged(ctx, id, domain.ActionDeleted, existing.AirlineCode)

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "rule deleted",
		"id":      id,
	})
}

// ruleChanged drops this replica's cached lookups for the affected airlines and
// announces the change so other replicas do the same.
func (h *Handler) ruleChanged(ctx context.Context, ruleID, action string, airlines ...string) {
	seen := make(map[string]bool, len(airlines))
	for _, airline := range airlines {
		airline = domain.NormalizeCode(airline)
		if airline == "" || seen[airline] {
			continue
		}
		seen[airline] = true

		if h.rules != nil {
			if _, err := h.rules.InvalidateAirline(ctx, airline); err != nil {
				slog.Warn("local cache invalidation failed", "airline_code", airline, "error", err)
			}
		}

		if h.bus == nil {
			continue
		}
		event := domain.RuleChangedEvent{RuleID: ruleID, AirlineCode: airline, Action: action}
		if err := bus.PublishRuleChanged(ctx, h.bus, event); err != nil {
			slog.Warn("failed to publish rule change",
				"rule_id", ruleID,
				"airline_code", airline,
				"error", err,
			)
		}
	}
}
