package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/xavierca1/lead-capture/internal/entity"
	"github.com/xavierca1/lead-capture/internal/infra/http/middleware"
)

// WhatsAppWebhookHandler receives WhatsApp Cloud API deliveries, runs them
// through the orchestrator and sends the reply back out-of-band.
type WhatsAppWebhookHandler struct {
	conversation Conversation
	sender       OutboundSender
	verifyToken  string
}

func NewWhatsAppWebhookHandler(conversation Conversation, sender OutboundSender, verifyToken string) *WhatsAppWebhookHandler {
	return &WhatsAppWebhookHandler{
		conversation: conversation,
		sender:       sender,
		verifyToken:  verifyToken,
	}
}

// HandleVerify answers Meta's hub challenge during webhook registration.
func (h *WhatsAppWebhookHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("hub.verify_token") != h.verifyToken {
		respondError(w, http.StatusForbidden, "Invalid verification token")
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(r.URL.Query().Get("hub.challenge")))
}

type whatsAppPayload struct {
	Entry []struct {
		Changes []struct {
			Value struct {
				Messages []struct {
					From string `json:"from"`
					Type string `json:"type"`
					Text struct {
						Body string `json:"body"`
					} `json:"text"`
				} `json:"messages"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

func (h *WhatsAppWebhookHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")

	var payload whatsAppPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	// The webhook must be acked quickly or Meta re-delivers; the pipeline
	// runs detached so a slow store or model cannot stall the ack, and a
	// closed connection cannot abort a half-persisted exchange.
	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			for _, msg := range change.Value.Messages {
				if msg.Type != "text" || msg.Text.Body == "" {
					continue
				}
				go h.process(context.WithoutCancel(r.Context()), tenantID, msg.From, msg.Text.Body)
			}
		}
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "processed"})
}

func (h *WhatsAppWebhookHandler) process(ctx context.Context, tenantID, phone, text string) {
	reply, err := h.conversation.HandleInbound(ctx, tenantID, phone, entity.SourceWhatsApp, text)
	if err != nil {
		log.Printf("[whatsapp-webhook] tenant %s: %v", tenantID, err)
		middleware.RecordInboundMessage(string(entity.SourceWhatsApp), "error")
		return
	}
	middleware.RecordInboundMessage(string(entity.SourceWhatsApp), "ok")

	if err := h.sender.SendText(ctx, phone, reply); err != nil {
		// Reply delivery may fail independently; conversation state is
		// already persisted.
		log.Printf("[whatsapp-webhook] reply to %s failed: %v", phone, err)
	}
}
