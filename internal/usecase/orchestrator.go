package usecase

import (
	"context"
	"errors"
	"log"

	"github.com/xavierca1/lead-capture/internal/entity"
	"github.com/xavierca1/lead-capture/internal/workflow"
)

const DefaultHistoryLimit = 20

// ConversationOrchestrator is the inbound-message pipeline: resolve the
// lead, generate a reply, classify intent, persist the exchange, dispatch
// workflow events. One instance serves all tenants and channels; per-lead
// serialization is the store's job.
type ConversationOrchestrator struct {
	Leads        LeadRepositoryInterface
	Responder    ResponderInterface
	Classifier   IntentClassifierInterface
	Dispatcher   WorkflowDispatcherInterface
	HistoryLimit int
}

func NewConversationOrchestrator(
	leads LeadRepositoryInterface,
	responder ResponderInterface,
	classifier IntentClassifierInterface,
	dispatcher WorkflowDispatcherInterface,
) *ConversationOrchestrator {
	return &ConversationOrchestrator{
		Leads:        leads,
		Responder:    responder,
		Classifier:   classifier,
		Dispatcher:   dispatcher,
		HistoryLimit: DefaultHistoryLimit,
	}
}

// HandleInbound processes one message from a channel adapter and returns the
// reply to deliver. Only store outages surface as errors; responder and
// classifier degradation is absorbed with safe defaults.
func (o *ConversationOrchestrator) HandleInbound(
	ctx context.Context,
	tenantID, externalID string,
	source entity.LeadSource,
	text string,
) (string, error) {
	if tenantID == "" || externalID == "" || text == "" {
		return "", &DomainError{Code: "INVALID_INPUT", Message: "tenant id, sender id and message are required"}
	}

	// 1. Resolve or create the lead. Creation is idempotent: the store
	// returns the winner's row when two first contacts race.
	lead, created, err := o.resolveLead(ctx, tenantID, externalID, source)
	if err != nil {
		return "", err
	}

	history := lead.RecentMessages(o.HistoryLimit)

	// 2+3. Reply and intent. Neither call can fail past its boundary.
	reply := o.Responder.Reply(ctx, tenantID, text, history)
	intent := o.Classifier.Classify(ctx, text, history)

	// 4. Persist the exchange in call order: user turn, then assistant turn.
	if _, err := o.Leads.AppendMessage(ctx, tenantID, lead.ID, entity.RoleUser, text); err != nil {
		return "", &StoreError{Op: "append user message", Err: err}
	}
	updated, err := o.Leads.AppendMessage(ctx, tenantID, lead.ID, entity.RoleAssistant, reply)
	if err != nil {
		return "", &StoreError{Op: "append assistant message", Err: err}
	}

	// 5. Intent transition. Self-transitions and NEUTRAL/unknown labels are
	// no-ops; only an entry into HOT is externally observable. The transition
	// is judged against the intent the store reports at write time, not the
	// step-1 snapshot, so two racing messages cannot both claim the entry
	// into HOT.
	becameHot := false
	if intent.Storable() && intent != lead.Intent {
		var prev entity.LeadIntent
		updated, prev, err = o.Leads.SetIntent(ctx, tenantID, lead.ID, intent)
		if err != nil {
			return "", &StoreError{Op: "set intent", Err: err}
		}
		becameHot = intent == entity.IntentHot && prev != entity.IntentHot
	}

	// 6. Workflow events. Detached from the request context so a transport
	// timeout cannot cancel notification handlers mid-flight.
	eventCtx := context.WithoutCancel(ctx)
	if created {
		o.Dispatcher.Dispatch(eventCtx, workflow.NewEvent(workflow.EventLeadCreated, tenantID, *updated))
	}
	if becameHot {
		hot := workflow.NewEvent(workflow.EventLeadBecameHot, tenantID, *updated)
		hot.History = updated.Messages
		o.Dispatcher.Dispatch(eventCtx, hot)
	}
	o.Dispatcher.Dispatch(eventCtx, workflow.NewEvent(workflow.EventNewMessage, tenantID, *updated))

	return reply, nil
}

func (o *ConversationOrchestrator) resolveLead(
	ctx context.Context,
	tenantID, externalID string,
	source entity.LeadSource,
) (*entity.Lead, bool, error) {
	lead, err := o.Leads.FindLeadByExternalID(ctx, tenantID, source, externalID)
	if err == nil {
		return lead, false, nil
	}
	if !errors.Is(err, entity.ErrLeadNotFound) {
		return nil, false, &StoreError{Op: "resolve lead", Err: err}
	}

	fresh, err := entity.NewLead(tenantID, externalID, source)
	if err != nil {
		return nil, false, &DomainError{Code: "INVALID_LEAD", Message: err.Error()}
	}

	stored, err := o.Leads.CreateLead(ctx, fresh)
	if err != nil {
		return nil, false, &StoreError{Op: "create lead", Err: err}
	}

	created := stored.ID == fresh.ID
	if !created {
		log.Printf("[orchestrator] lost first-contact race for %s/%s, using lead %s", tenantID, externalID, stored.ID)
	}
	return stored, created, nil
}
