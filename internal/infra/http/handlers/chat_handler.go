package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/xavierca1/lead-capture/internal/entity"
	"github.com/xavierca1/lead-capture/internal/infra/http/middleware"
	"github.com/xavierca1/lead-capture/internal/usecase"
)

// ChatHandler serves the website chat widget: the one channel that talks to
// the orchestrator directly instead of through a platform webhook.
type ChatHandler struct {
	conversation Conversation
	rateLimiter  *RateLimiter
}

func NewChatHandler(conversation Conversation) *ChatHandler {
	return &ChatHandler{
		conversation: conversation,
		rateLimiter:  NewRateLimiter(30, time.Minute), // 30 req/min per IP
	}
}

type ChatRequest struct {
	Message  string `json:"message"`
	UserID   string `json:"user_id"`
	Source   string `json:"source"`
	TenantID string `json:"tenant_id"`
}

type ChatResponse struct {
	Response string `json:"response"`
	FollowUp bool   `json:"follow_up"`
}

func (h *ChatHandler) HandleRespond(w http.ResponseWriter, r *http.Request) {
	if !h.rateLimiter.Allow(getClientIP(r)) {
		respondError(w, http.StatusTooManyRequests, "Too many requests. Please try again later.")
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Message == "" || req.UserID == "" || req.TenantID == "" {
		respondError(w, http.StatusBadRequest, "message, user_id and tenant_id are required")
		return
	}

	source := entity.SourceWebsite
	if req.Source != "" {
		parsed, ok := entity.ParseSource(req.Source)
		if !ok {
			respondError(w, http.StatusBadRequest, "unknown source")
			return
		}
		source = parsed
	}

	reply, err := h.conversation.HandleInbound(r.Context(), req.TenantID, req.UserID, source, req.Message)
	if err != nil {
		if usecase.IsDomainError(err) {
			middleware.RecordInboundMessage(string(source), "rejected")
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		// Store outage: the one case where the caller gets a failure
		// instead of a reply.
		middleware.RecordInboundMessage(string(source), "error")
		respondError(w, http.StatusInternalServerError, "Error generating chat response")
		return
	}

	middleware.RecordInboundMessage(string(source), "ok")
	respondJSON(w, http.StatusOK, ChatResponse{
		Response: reply,
		FollowUp: true,
	})
}
