package api

import (
	"net/http"

	"github.com/airpass/airpass/internal/domain"
	"github.com/airpass/airpass/internal/schema"
	"github.com/go-chi/chi/v5"
)

// ListAirlines handles GET /airlines.
func (h *Handler) ListAirlines(w http.ResponseWriter, r *http.Request) {
	airlines, err := h.repo.ListAirlines(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if airlines == nil {
		airlines = []*domain.Airline{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"airlines": airlines,
		"count":    len(airlines),
	})
}

// GetAirline handles GET /airlines/{code}.
func (h *Handler) GetAirline(w http.ResponseWriter, r *http.Request) {
	airline, err := h.repo.GetAirline(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, airline)
}

// AirlineRequest is the request body for PUT /admin/airlines/{code}.
// An omitted active flag means active.
type AirlineRequest struct {
	Name      string `json:"name"`
	LogoURL   string `json:"logoUrl,omitempty"`
	PolicyURL string `json:"policyUrl,omitempty"`
	Active    *bool  `json:"active,omitempty"`
}

// SaveAirline handles PUT /admin/airlines/{code}.
func (h *Handler) SaveAirline(w http.ResponseWriter, r *http.Request) {
	var req AirlineRequest
	if err := h.decode(r, schema.Airline, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	airline := domain.Airline{
		Name:      req.Name,
		LogoURL:   req.LogoURL,
		PolicyURL: req.PolicyURL,
		Active:    req.Active == nil || *req.Active,
	}

	code := domain.NormalizeCode(chi.URLParam(r, "code"))
	if len(code) < 2 || len(code) > 3 {
		h.fail(w, r, schema.Invalid(schema.Airline, "code: must be a 2 or 3 character airline code"))
		return
	}
	airline.Code = code

	if existing, err := h.repo.GetAirline(r.Context(), code); err == nil {
		airline.CreatedAt = existing.CreatedAt
	}

	if err := h.repo.SaveAirline(r.Context(), &airline); err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, airline)
}
