package workflow

import (
	"time"

	"github.com/xavierca1/lead-capture/internal/entity"
)

// EventKind is the closed set of lifecycle triggers. String event names from
// external payloads are parsed with ParseKind; anything else is rejected by
// the dispatcher instead of silently no-op-ing.
type EventKind string

const (
	EventLeadCreated   EventKind = "on_lead_created"
	EventLeadBecameHot EventKind = "on_hot_lead"
	EventNewMessage    EventKind = "on_new_message"
)

func ParseKind(name string) (EventKind, bool) {
	switch EventKind(name) {
	case EventLeadCreated, EventLeadBecameHot, EventNewMessage:
		return EventKind(name), true
	}
	return "", false
}

// Event carries a full lead snapshot taken at dispatch time. Handlers must
// not assume the lead still looks like this by the time they run.
type Event struct {
	Kind       EventKind        `json:"kind"`
	TenantID   string           `json:"tenant_id"`
	Lead       entity.Lead      `json:"lead"`
	History    []entity.Message `json:"history,omitempty"`
	OccurredAt time.Time        `json:"occurred_at"`
}

func NewEvent(kind EventKind, tenantID string, lead entity.Lead) Event {
	return Event{
		Kind:       kind,
		TenantID:   tenantID,
		Lead:       lead,
		OccurredAt: time.Now().UTC(),
	}
}
