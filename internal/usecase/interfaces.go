package usecase

import (
	"context"

	"github.com/xavierca1/lead-capture/internal/entity"
	"github.com/xavierca1/lead-capture/internal/infra/catalog"
	"github.com/xavierca1/lead-capture/internal/workflow"
)

// LeadRepositoryInterface is the tenant store contract. Every operation is
// scoped by tenant id; implementations must never return rows from another
// tenant.
type LeadRepositoryInterface interface {
	// CreateLead inserts the lead, or returns the already-existing lead for
	// the same (tenant, source, external id) when a concurrent first contact
	// won the race. Callers compare IDs to learn which happened.
	CreateLead(ctx context.Context, lead *entity.Lead) (*entity.Lead, error)

	// FindLeadByExternalID returns entity.ErrLeadNotFound when absent.
	FindLeadByExternalID(ctx context.Context, tenantID string, source entity.LeadSource, externalID string) (*entity.Lead, error)

	FindLeadByID(ctx context.Context, tenantID, leadID string) (*entity.Lead, error)

	// AppendMessage atomically inserts the message and bumps the lead's
	// updated_at, returning the refreshed lead.
	AppendMessage(ctx context.Context, tenantID, leadID, role, content string) (*entity.Lead, error)

	// SetIntent updates the intent and reports the intent the lead held just
	// before the write, as observed at the store's serialization point. That
	// previous value, not any earlier snapshot, decides whether a transition
	// happened.
	SetIntent(ctx context.Context, tenantID, leadID string, intent entity.LeadIntent) (*entity.Lead, entity.LeadIntent, error)

	ListLeads(ctx context.Context, tenantID string, filter entity.LeadFilter) ([]entity.Lead, error)
}

type UserRepositoryInterface interface {
	// CreateUser returns entity.ErrUserExists when the email is already
	// registered within the tenant.
	CreateUser(ctx context.Context, user *entity.User) error
	FindUserByEmail(ctx context.Context, tenantID, email string) (*entity.User, error)
}

// ResponderInterface produces the reply for an inbound message. It never
// fails: any internal problem yields a safe generic string.
type ResponderInterface interface {
	Reply(ctx context.Context, tenantID, text string, history []entity.Message) string
}

// IntentClassifierInterface labels the buying readiness of a message.
// Implementations absorb their own failures and return IntentNeutral,
// which the orchestrator treats as "no intent change".
type IntentClassifierInterface interface {
	Classify(ctx context.Context, text string, history []entity.Message) entity.LeadIntent
}

// AIResponderInterface is the raw generative backend the catalog responder
// falls back to when the message is not a product inquiry.
type AIResponderInterface interface {
	GenerateReply(ctx context.Context, text string, history []entity.Message) (string, error)
}

// CatalogSearcherInterface is the read-only per-tenant product index.
type CatalogSearcherInterface interface {
	Search(tenantID, query string, limit int) []catalog.Match
}

// WorkflowDispatcherInterface is fire-and-forget from the orchestrator's
// point of view: Dispatch returns before handlers run and never errors.
type WorkflowDispatcherInterface interface {
	Dispatch(ctx context.Context, event workflow.Event)
}
