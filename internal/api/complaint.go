package api

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/airpass/airpass/internal/complaint"
	"github.com/airpass/airpass/internal/domain"
	"github.com/airpass/airpass/internal/schema"
)

// ComplaintReferenceHeader carries the complaint reference on PDF responses.
const ComplaintReferenceHeader = "X-Complaint-Reference"

// ComplaintEmail handles POST /complaints/email.
func (h *Handler) ComplaintEmail(w http.ResponseWriter, r *http.Request) {
	var c domain.Complaint
	if err := h.decode(r, schema.Complaint, &c); err != nil {
		h.fail(w, r, err)
		return
	}

	email, err := h.complaints.Email(c)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	slog.Info("complaint email generated",
		"reference", email.Reference,
		"airline", c.Airline,
		"issue_type", c.IssueType,
	)
	writeJSON(w, http.StatusOK, email)
}

// ComplaintPDF handles POST /complaints/pdf.
func (h *Handler) ComplaintPDF(w http.ResponseWriter, r *http.Request) {
	var c domain.Complaint
	if err := h.decode(r, schema.Complaint, &c); err != nil {
		h.fail(w, r, err)
		return
	}

	ref, err := complaint.Reference(c)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	// Render fully before writing headers so a failure can still become a 500.
	var buf bytes.Buffer
	if err := h.complaints.RenderPDF(&buf, c); err != nil {
		h.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", h.complaints.Filename(c)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set(ComplaintReferenceHeader, ref)
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Warn("failed to write complaint pdf", "reference", ref, "error", err)
		return
	}

	slog.Info("complaint pdf generated",
		"reference", ref,
		"airline", c.Airline,
		"issue_type", c.IssueType,
	)
}
