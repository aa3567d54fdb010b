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

// InstagramWebhookHandler receives Instagram DM deliveries. The payload
// shape matches Messenger's entry/messaging layout.
type InstagramWebhookHandler struct {
	conversation Conversation
	sender       OutboundSender
	verifyToken  string
}

func NewInstagramWebhookHandler(conversation Conversation, sender OutboundSender, verifyToken string) *InstagramWebhookHandler {
	return &InstagramWebhookHandler{
		conversation: conversation,
		sender:       sender,
		verifyToken:  verifyToken,
	}
}

func (h *InstagramWebhookHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("hub.verify_token") != h.verifyToken {
		respondError(w, http.StatusForbidden, "Invalid verification token")
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(r.URL.Query().Get("hub.challenge")))
}

func (h *InstagramWebhookHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")

	var payload messengerPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	for _, entry := range payload.Entry {
		for _, event := range entry.Messaging {
			if event.Sender.ID == "" || event.Message.Text == "" {
				continue
			}
			go h.process(context.WithoutCancel(r.Context()), tenantID, event.Sender.ID, event.Message.Text)
		}
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "processed"})
}

func (h *InstagramWebhookHandler) process(ctx context.Context, tenantID, senderID, text string) {
	reply, err := h.conversation.HandleInbound(ctx, tenantID, senderID, entity.SourceInstagram, text)
	if err != nil {
		log.Printf("[instagram-webhook] tenant %s: %v", tenantID, err)
		middleware.RecordInboundMessage(string(entity.SourceInstagram), "error")
		return
	}
	middleware.RecordInboundMessage(string(entity.SourceInstagram), "ok")

	if err := h.sender.SendText(ctx, senderID, reply); err != nil {
		log.Printf("[instagram-webhook] reply to %s failed: %v", senderID, err)
	}
}
