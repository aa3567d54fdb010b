package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/xavierca1/lead-capture/internal/entity"
)

// Conversation is the single entry point every channel adapter calls.
type Conversation interface {
	HandleInbound(ctx context.Context, tenantID, externalID string, source entity.LeadSource, text string) (string, error)
}

// OutboundSender delivers a reply back through a channel's transport.
type OutboundSender interface {
	SendText(ctx context.Context, recipientID, text string) error
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, errorResponse{Error: msg})
}
