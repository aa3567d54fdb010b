package entity

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// LeadSource identifies the channel a conversation originated from.
type LeadSource string

const (
	SourceWebsite   LeadSource = "WEBSITE"
	SourceWhatsApp  LeadSource = "WHATSAPP"
	SourceInstagram LeadSource = "INSTAGRAM"
	SourceFacebook  LeadSource = "FACEBOOK"
)

func (s LeadSource) Valid() bool {
	switch s {
	case SourceWebsite, SourceWhatsApp, SourceInstagram, SourceFacebook:
		return true
	}
	return false
}

// ParseSource accepts the channel name in any casing, as the chat widget
// sends lowercase values.
func ParseSource(name string) (LeadSource, bool) {
	s := LeadSource(strings.ToUpper(strings.TrimSpace(name)))
	if !s.Valid() {
		return "", false
	}
	return s, true
}

// LeadIntent is the classifier-assigned buying-readiness label.
type LeadIntent string

const (
	IntentHot  LeadIntent = "HOT"
	IntentWarm LeadIntent = "WARM"
	IntentCold LeadIntent = "COLD"

	// IntentNeutral is a valid classifier output but never a stored state:
	// it means "no intent change".
	IntentNeutral LeadIntent = "NEUTRAL"
)

// Storable reports whether the intent is one of the persisted states.
// NEUTRAL and anything unrecognized are not storable.
func (i LeadIntent) Storable() bool {
	return i == IntentHot || i == IntentWarm || i == IntentCold
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

var (
	ErrLeadNotFound = errors.New("lead not found")
	ErrUserExists   = errors.New("email already registered for this tenant")
	ErrUserNotFound = errors.New("user not found")
)

// Message is one turn in a lead's conversation. Immutable once appended.
type Message struct {
	ID        int64     `json:"id,omitempty"`
	LeadID    string    `json:"lead_id"`
	Role      string    `json:"role"` // "user" or "assistant"
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Lead is one tracked customer conversation, scoped to exactly one tenant.
// ExternalID is the channel-specific sender identity (phone number, platform
// sender id) and maps to at most one Lead per (tenant, source).
type Lead struct {
	ID         string     `json:"id"`
	TenantID   string     `json:"tenant_id"`
	ExternalID string     `json:"external_id"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Phone      string     `json:"phone"`
	Source     LeadSource `json:"source"`
	Intent     LeadIntent `json:"intent"`
	Messages   []Message  `json:"messages"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Factory
func NewLead(tenantID, externalID string, source LeadSource) (*Lead, error) {
	now := time.Now().UTC()
	lead := &Lead{
		ID:         uuid.New().String(),
		TenantID:   tenantID,
		ExternalID: externalID,
		Name:       externalID,
		Source:     source,
		Intent:     IntentCold,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if source == SourceWhatsApp {
		lead.Phone = externalID
	}

	if err := lead.Validate(); err != nil {
		return nil, err
	}

	return lead, nil
}

func (l *Lead) Validate() error {
	if l.TenantID == "" {
		return errors.New("tenant id is required")
	}
	if l.ExternalID == "" {
		return errors.New("external id is required")
	}
	if !l.Source.Valid() {
		return errors.New("unknown lead source")
	}
	return nil
}

// LeadFilter narrows lead listings. Nil fields match everything.
type LeadFilter struct {
	Source *LeadSource
	Intent *LeadIntent
}

// RecentMessages returns up to n messages from the tail of the history,
// preserving order.
func (l *Lead) RecentMessages(n int) []Message {
	if n <= 0 || len(l.Messages) <= n {
		return l.Messages
	}
	return l.Messages[len(l.Messages)-n:]
}
