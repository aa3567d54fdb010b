package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/xavierca1/lead-capture/internal/entity"
	"github.com/xavierca1/lead-capture/internal/infra/catalog"
)

const (
	DefaultCatalogTopK = 5

	catalogScoreThreshold = 30
	descriptionMaxLen     = 100

	// Returned when the generative backend is down. Matches the tone of the
	// rest of the assistant so end users never see an error.
	genericFallbackReply = "I'm having trouble responding right now. Could you please try again?"
)

// productKeywords is checked in order; the first match is stripped to derive
// the search query. The iteration order is part of the behavior.
var productKeywords = []string{
	"looking for",
	"price of",
	"show me",
	"do you have",
	"search",
	"find",
	"buy",
	"purchase",
	"order",
}

// CatalogResponder answers product inquiries from the tenant catalog and
// hands everything else to the generative backend. Reply never fails: a
// product-shaped query with no hits gets a "no results" message, and a
// backend failure gets a generic fallback.
type CatalogResponder struct {
	Catalog CatalogSearcherInterface
	AI      AIResponderInterface
	TopK    int
}

func NewCatalogResponder(index CatalogSearcherInterface, ai AIResponderInterface) *CatalogResponder {
	return &CatalogResponder{
		Catalog: index,
		AI:      ai,
		TopK:    DefaultCatalogTopK,
	}
}

func (r *CatalogResponder) Reply(ctx context.Context, tenantID, text string, history []entity.Message) string {
	if query, ok := extractProductQuery(text); ok {
		matches := r.Catalog.Search(tenantID, query, r.TopK)
		if len(matches) == 0 {
			return fmt.Sprintf("I couldn't find any products matching %q. Could you describe what you're looking for differently?", query)
		}
		return formatCatalogReply(matches)
	}

	reply, err := r.AI.GenerateReply(ctx, text, history)
	if err != nil {
		log.Printf("[responder] generation failed for tenant %s: %v", tenantID, err)
		return genericFallbackReply
	}
	if strings.TrimSpace(reply) == "" {
		return genericFallbackReply
	}
	return reply
}

// extractProductQuery detects a product inquiry and derives the residual
// search query by stripping the first matching keyword. A residual shorter
// than 2 characters falls back to the whole text.
func extractProductQuery(text string) (string, bool) {
	lowered := strings.ToLower(text)
	for _, kw := range productKeywords {
		if !strings.Contains(lowered, kw) {
			continue
		}
		residual := strings.TrimSpace(strings.Replace(lowered, kw, "", 1))
		if len(residual) < 2 {
			residual = strings.TrimSpace(lowered)
		}
		return residual, true
	}
	return "", false
}

func formatCatalogReply(matches []catalog.Match) string {
	var b strings.Builder
	b.WriteString("Here's what I found:\n")
	for i, m := range matches {
		desc := m.Product.Description
		if desc == "" {
			desc = m.Product.ShortDescription
		}
		desc = truncateRunes(desc, descriptionMaxLen)
		fmt.Fprintf(&b, "%d. %s / $%.2f / %s\n", i+1, m.Product.Name, m.Product.DisplayPrice(), desc)
	}
	b.WriteString("Would you like more details on any of these?")
	return b.String()
}

// truncateRunes cuts on a rune boundary so a multibyte character is never
// split mid-sequence.
func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
