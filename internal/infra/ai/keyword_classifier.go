package ai

import (
	"context"
	"strings"

	"github.com/xavierca1/lead-capture/internal/entity"
)

var (
	hotKeywords  = []string{"buy", "purchase", "order", "price", "cost", "deal", "discount", "now"}
	warmKeywords = []string{"interested", "maybe", "considering", "tell me more", "info"}
)

// KeywordClassifier is the offline intent heuristic used when no API key is
// configured. It cannot fail.
type KeywordClassifier struct{}

func (KeywordClassifier) Classify(_ context.Context, text string, _ []entity.Message) entity.LeadIntent {
	lowered := strings.ToLower(text)
	for _, kw := range hotKeywords {
		if strings.Contains(lowered, kw) {
			return entity.IntentHot
		}
	}
	for _, kw := range warmKeywords {
		if strings.Contains(lowered, kw) {
			return entity.IntentWarm
		}
	}
	return entity.IntentCold
}

// StaticResponder is the offline generative fallback: one fixed prompt-style
// reply, mirroring the hosted assistant's opening move.
type StaticResponder struct{}

func (StaticResponder) GenerateReply(context.Context, string, []entity.Message) (string, error) {
	return "I'm here to help! Could you tell me more about what you're looking for?", nil
}
