package api

import (
	"net/http"

	"github.com/airpass/airpass/internal/domain"
	"github.com/airpass/airpass/internal/schema"
)

// CalculateRights handles POST /rights/calculate. Unknown issue types
// resolve to an empty entitlement rather than an error.
func (h *Handler) CalculateRights(w http.ResponseWriter, r *http.Request) {
	var q domain.RightsQuery
	if err := h.decode(r, schema.Rights, &q); err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, h.rights.Resolve(q))
}
