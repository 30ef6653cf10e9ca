package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/airpass/airpass/internal/baggage"
	"github.com/airpass/airpass/internal/complaint"
	"github.com/airpass/airpass/internal/domain"
	"github.com/airpass/airpass/internal/repository"
	"github.com/airpass/airpass/internal/rights"
	"github.com/airpass/airpass/internal/schema"
	json "github.com/goccy/go-json"
)

const maxBodyBytes = 1 << 20

// Deps are the collaborators the HTTP layer is built over.
type Deps struct {
	Repo       domain.Repository
	Cache      domain.Cache
	Bus        domain.EventBus
	Rules      *baggage.Resolver
	Rights     *rights.Resolver
	Complaints *complaint.Assembler
	Validator  *schema.Validator
	AdminToken string
	Version    string
}

// Handler holds dependencies for API handlers.
type Handler struct {
	repo       domain.Repository
	cache      domain.Cache
	bus        domain.EventBus
	rules      *baggage.Resolver
	rights     *rights.Resolver
	complaints *complaint.Assembler
	validator  *schema.Validator
	version    string
}

// NewHandler creates a new API handler.
func NewHandler(deps Deps) *Handler {
	return &Handler{
		repo:       deps.Repo,
		cache:      deps.Cache,
		bus:        deps.Bus,
		rules:      deps.Rules,
		rights:     deps.Rights,
		complaints: deps.Complaints,
		validator:  deps.Validator,
		version:    deps.Version,
	}
}

// decode validates the request body against the named schema, then unmarshals it into v.
func (h *Handler) decode(r *http.Request, name string, v any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return schema.Invalid(name, "failed to read request body")
	}
	if len(body) > maxBodyBytes {
		return schema.Invalid(name, "request body too large")
	}
	if err := h.validator.Validate(name, body); err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return schema.Invalid(name, err.Error())
	}
	return nil
}

// fail maps an error to its HTTP response.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	var verr *schema.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":   "invalid request",
			"details": verr.Details,
		})

	case errors.Is(err, baggage.ErrRuleNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error":   "Rules not found",
			"message": "No baggage rules found for the specified criteria",
		})

	case errors.Is(err, repository.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": "not found",
		})

	case errors.Is(err, repository.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":   "invalid request",
			"details": []string{err.Error()},
		})

	case errors.Is(err, repository.ErrConflict):
		writeJSON(w, http.StatusConflict, map[string]string{
			"error": err.Error(),
		})

	default:
		slog.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", GetRequestID(r.Context()),
			"error", err,
		)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "internal server error",
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Warn("failed to encode response", "error", err)
	}
}
