package mail

import (
	"context"
	"fmt"
	"html"
	"log"
	"strings"

	"github.com/xavierca1/lead-capture/internal/infra/http/middleware"
	"github.com/xavierca1/lead-capture/internal/workflow"
)

// WhatsAppAlertSender is the outbound client used for operator alerts.
type WhatsAppAlertSender interface {
	SendText(ctx context.Context, to, text string) error
}

// LeadNotifier fans workflow events out to the configured operator
// channels. Each channel is best-effort: a failed delivery is counted and
// logged, and the other channels still run.
type LeadNotifier struct {
	Email       *EmailSender
	WhatsApp    WhatsAppAlertSender
	Recipients  []string
	AdminNumber string
}

func NewLeadNotifier(email *EmailSender, wa WhatsAppAlertSender, recipients []string, adminNumber string) *LeadNotifier {
	return &LeadNotifier{
		Email:       email,
		WhatsApp:    wa,
		Recipients:  recipients,
		AdminNumber: adminNumber,
	}
}

func (n *LeadNotifier) NotifyNewLead(ctx context.Context, event workflow.Event) error {
	subject := "New Lead Captured"
	body := n.leadBody("New Lead Captured!", event, false)
	text := fmt.Sprintf("New lead: %s from %s - Intent: %s. Tenant: %s",
		event.Lead.Name, event.Lead.Source, event.Lead.Intent, event.TenantID)

	n.deliver(ctx, subject, body, text)
	return nil
}

func (n *LeadNotifier) NotifyHotLead(ctx context.Context, event workflow.Event) error {
	subject := "HOT LEAD ALERT"
	body := n.leadBody("URGENT: HOT LEAD ALERT!", event, true)
	text := fmt.Sprintf("HOT LEAD ALERT! %s from %s - Ready to buy! Tenant: %s",
		event.Lead.Name, event.Lead.Source, event.TenantID)

	n.deliver(ctx, subject, body, text)
	return nil
}

func (n *LeadNotifier) deliver(ctx context.Context, subject, htmlBody, text string) {
	if n.Email != nil && n.Email.Configured() && len(n.Recipients) > 0 {
		if err := n.Email.SendAlert(subject, htmlBody, n.Recipients); err != nil {
			log.Printf("[notifier] email delivery failed: %v", err)
			middleware.RecordNotificationFailure("email")
		}
	}

	if n.WhatsApp != nil && n.AdminNumber != "" {
		if err := n.WhatsApp.SendText(ctx, n.AdminNumber, text); err != nil {
			log.Printf("[notifier] whatsapp delivery failed: %v", err)
			middleware.RecordNotificationFailure("whatsapp")
		}
	}
}

func (n *LeadNotifier) leadBody(title string, event workflow.Event, withHistory bool) string {
	lead := event.Lead

	var b strings.Builder
	fmt.Fprintf(&b, "<h2>%s</h2>", html.EscapeString(title))
	fmt.Fprintf(&b, "<p><strong>Name:</strong> %s</p>", html.EscapeString(lead.Name))
	fmt.Fprintf(&b, "<p><strong>Email:</strong> %s</p>", html.EscapeString(lead.Email))
	fmt.Fprintf(&b, "<p><strong>Phone:</strong> %s</p>", html.EscapeString(lead.Phone))
	fmt.Fprintf(&b, "<p><strong>Source:</strong> %s</p>", lead.Source)
	fmt.Fprintf(&b, "<p><strong>Intent:</strong> %s</p>", lead.Intent)
	fmt.Fprintf(&b, "<p><strong>Created At:</strong> %s</p>", lead.CreatedAt.Format("2006-01-02 15:04:05 MST"))

	if withHistory && len(event.History) > 0 {
		b.WriteString("<p><strong>Messages:</strong></p><ul>")
		for _, m := range event.History {
			fmt.Fprintf(&b, "<li>%s</li>", html.EscapeString(m.Content))
		}
		b.WriteString("</ul>")
	}

	fmt.Fprintf(&b, "<p><strong>Tenant ID:</strong> %s</p>", html.EscapeString(event.TenantID))
	return b.String()
}
