package mail

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xavierca1/lead-capture/internal/entity"
	"github.com/xavierca1/lead-capture/internal/workflow"
)

type fakeWhatsApp struct {
	to, text string
	calls    int
	err      error
}

func (f *fakeWhatsApp) SendText(_ context.Context, to, text string) error {
	f.calls++
	f.to = to
	f.text = text
	return f.err
}

func hotEvent() workflow.Event {
	lead := entity.Lead{
		ID:        "lead-1",
		TenantID:  "tenant-1",
		Name:      "+5511999990000",
		Phone:     "+5511999990000",
		Source:    entity.SourceWhatsApp,
		Intent:    entity.IntentHot,
		CreatedAt: time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC),
	}
	event := workflow.NewEvent(workflow.EventLeadBecameHot, "tenant-1", lead)
	event.History = []entity.Message{
		{Role: entity.RoleUser, Content: "I want to buy <b>now</b>"},
		{Role: entity.RoleAssistant, Content: "Great, let's get you set up!"},
	}
	return event
}

// TestNotifyHotLeadWhatsAppAlert - the admin gets a plain-text alert naming tenant and lead
func TestNotifyHotLeadWhatsAppAlert(t *testing.T) {
	wa := &fakeWhatsApp{}
	n := NewLeadNotifier(nil, wa, nil, "+5511000000000")

	require.NoError(t, n.NotifyHotLead(context.Background(), hotEvent()))

	assert.Equal(t, 1, wa.calls)
	assert.Equal(t, "+5511000000000", wa.to)
	assert.Contains(t, wa.text, "HOT LEAD ALERT")
	assert.Contains(t, wa.text, "+5511999990000")
	assert.Contains(t, wa.text, "tenant-1")
}

// TestNotifyDeliveryFailureAbsorbed - a failing channel never bubbles up
func TestNotifyDeliveryFailureAbsorbed(t *testing.T) {
	wa := &fakeWhatsApp{err: errors.New("graph api 500")}
	n := NewLeadNotifier(nil, wa, nil, "+5511000000000")

	assert.NoError(t, n.NotifyNewLead(context.Background(), hotEvent()))
	assert.NoError(t, n.NotifyHotLead(context.Background(), hotEvent()))
	assert.Equal(t, 2, wa.calls)
}

// TestNotifySkipsUnconfiguredChannels
func TestNotifySkipsUnconfiguredChannels(t *testing.T) {
	wa := &fakeWhatsApp{}
	n := NewLeadNotifier(nil, wa, nil, "")

	require.NoError(t, n.NotifyNewLead(context.Background(), hotEvent()))
	assert.Zero(t, wa.calls)
}

// TestLeadBodyEscapesContent - lead fields and history are HTML-escaped
func TestLeadBodyEscapesContent(t *testing.T) {
	n := NewLeadNotifier(nil, nil, nil, "")

	body := n.leadBody("URGENT: HOT LEAD ALERT!", hotEvent(), true)

	assert.Contains(t, body, "<h2>URGENT: HOT LEAD ALERT!</h2>")
	assert.Contains(t, body, "<strong>Phone:</strong> +5511999990000")
	assert.Contains(t, body, "<li>I want to buy &lt;b&gt;now&lt;/b&gt;</li>")
	assert.Contains(t, body, "<strong>Tenant ID:</strong> tenant-1")
	assert.NotContains(t, body, "<b>now</b>")
}

// TestLeadBodyWithoutHistory
func TestLeadBodyWithoutHistory(t *testing.T) {
	n := NewLeadNotifier(nil, nil, nil, "")

	body := n.leadBody("New Lead Captured!", hotEvent(), false)
	assert.NotContains(t, body, "<ul>")
}
