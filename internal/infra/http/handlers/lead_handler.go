package handlers

import (
	"net/http"

	"github.com/xavierca1/lead-capture/internal/entity"
	"github.com/xavierca1/lead-capture/internal/infra/http/middleware"
	"github.com/xavierca1/lead-capture/internal/usecase"
)

// LeadHandler exposes the operator's read view of captured leads. The
// tenant always comes from the caller's token, never from the request.
type LeadHandler struct {
	leads usecase.LeadRepositoryInterface
}

func NewLeadHandler(leads usecase.LeadRepositoryInterface) *LeadHandler {
	return &LeadHandler{leads: leads}
}

func (h *LeadHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.TenantFromContext(r.Context())
	if tenantID == "" {
		respondError(w, http.StatusUnauthorized, "missing tenant")
		return
	}

	var filter entity.LeadFilter
	if raw := r.URL.Query().Get("source"); raw != "" {
		source, ok := entity.ParseSource(raw)
		if !ok {
			respondError(w, http.StatusBadRequest, "unknown source")
			return
		}
		filter.Source = &source
	}
	if raw := r.URL.Query().Get("intent"); raw != "" {
		intent := entity.LeadIntent(raw)
		if !intent.Storable() {
			respondError(w, http.StatusBadRequest, "unknown intent")
			return
		}
		filter.Intent = &intent
	}

	leads, err := h.leads.ListLeads(r.Context(), tenantID, filter)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to list leads")
		return
	}
	if leads == nil {
		leads = []entity.Lead{}
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"leads": leads,
		"total": len(leads),
	})
}
