package handlers

import (
	"net/http"

	"github.com/xavierca1/lead-capture/internal/entity"
	"github.com/xavierca1/lead-capture/internal/infra/http/middleware"
	"github.com/xavierca1/lead-capture/internal/usecase"
)

type AnalyticsHandler struct {
	leads usecase.LeadRepositoryInterface
}

func NewAnalyticsHandler(leads usecase.LeadRepositoryInterface) *AnalyticsHandler {
	return &AnalyticsHandler{leads: leads}
}

type AnalyticsSummary struct {
	TotalConversations int     `json:"total_conversations"`
	LeadsCaptured      int     `json:"leads_captured"`
	HotLeads           int     `json:"hot_leads"`
	WarmLeads          int     `json:"warm_leads"`
	ColdLeads          int     `json:"cold_leads"`
	ConversionRate     float64 `json:"conversion_rate"`
}

func (h *AnalyticsHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.TenantFromContext(r.Context())
	if tenantID == "" {
		respondError(w, http.StatusUnauthorized, "missing tenant")
		return
	}

	leads, err := h.leads.ListLeads(r.Context(), tenantID, entity.LeadFilter{})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to load analytics")
		return
	}

	summary := AnalyticsSummary{
		TotalConversations: len(leads),
		LeadsCaptured:      len(leads),
	}
	for _, lead := range leads {
		switch lead.Intent {
		case entity.IntentHot:
			summary.HotLeads++
		case entity.IntentWarm:
			summary.WarmLeads++
		case entity.IntentCold:
			summary.ColdLeads++
		}
	}
	if summary.LeadsCaptured > 0 {
		summary.ConversionRate = float64(summary.HotLeads) / float64(summary.LeadsCaptured)
	}

	respondJSON(w, http.StatusOK, summary)
}
