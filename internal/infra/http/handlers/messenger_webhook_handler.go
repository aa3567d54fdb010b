package handlers

import (
	"context"
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/xavierca1/lead-capture/internal/entity"
	"github.com/xavierca1/lead-capture/internal/infra/http/middleware"
)

// MessengerWebhookHandler receives Facebook Messenger deliveries. Payloads
// are authenticated with the X-Hub-Signature sha1 HMAC when an app secret
// is configured.
type MessengerWebhookHandler struct {
	conversation Conversation
	sender       OutboundSender
	verifyToken  string
	appSecret    string
}

func NewMessengerWebhookHandler(conversation Conversation, sender OutboundSender, verifyToken, appSecret string) *MessengerWebhookHandler {
	return &MessengerWebhookHandler{
		conversation: conversation,
		sender:       sender,
		verifyToken:  verifyToken,
		appSecret:    appSecret,
	}
}

func (h *MessengerWebhookHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("hub.verify_token") != h.verifyToken {
		respondError(w, http.StatusForbidden, "Forbidden")
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(r.URL.Query().Get("hub.challenge")))
}

type messengerPayload struct {
	Entry []struct {
		Messaging []struct {
			Sender struct {
				ID string `json:"id"`
			} `json:"sender"`
			Message struct {
				Text string `json:"text"`
			} `json:"message"`
		} `json:"messaging"`
	} `json:"entry"`
}

func (h *MessengerWebhookHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")

	body, err := io.ReadAll(r.Body)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Unreadable body")
		return
	}

	if h.appSecret != "" {
		signature := r.Header.Get("X-Hub-Signature")
		if signature == "" {
			log.Println("[messenger-webhook] no signature provided, skipping verification")
		} else if !h.verifySignature(body, signature) {
			respondError(w, http.StatusForbidden, "Forbidden")
			return
		}
	}

	var payload messengerPayload
	if err := json.Unmarshal(body, &payload); err != nil {
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

	respondJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

func (h *MessengerWebhookHandler) verifySignature(body []byte, signature string) bool {
	mac := hmac.New(sha1.New, []byte(h.appSecret))
	mac.Write(body)
	expected := "sha1=" + hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(signature), []byte(expected))
}

func (h *MessengerWebhookHandler) process(ctx context.Context, tenantID, senderID, text string) {
	reply, err := h.conversation.HandleInbound(ctx, tenantID, senderID, entity.SourceFacebook, text)
	if err != nil {
		log.Printf("[messenger-webhook] tenant %s: %v", tenantID, err)
		middleware.RecordInboundMessage(string(entity.SourceFacebook), "error")
		return
	}
	middleware.RecordInboundMessage(string(entity.SourceFacebook), "ok")

	if err := h.sender.SendText(ctx, senderID, reply); err != nil {
		log.Printf("[messenger-webhook] reply to %s failed: %v", senderID, err)
	}
}
