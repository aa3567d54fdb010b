package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/xavierca1/lead-capture/internal/entity"
)

// LeadRepo is the in-memory tenant store used in dev mode and tests. The
// single mutex is its linearization point: resolve-or-create and appends on
// the same lead cannot interleave.
type LeadRepo struct {
	mu        sync.Mutex
	byKey     map[string]*entity.Lead // tenant|source|external_id
	byID      map[string]*entity.Lead // tenant|lead_id
	nextMsgID int64
}

func NewLeadRepo() *LeadRepo {
	return &LeadRepo{
		byKey: make(map[string]*entity.Lead),
		byID:  make(map[string]*entity.Lead),
	}
}

func contactKey(tenantID string, source entity.LeadSource, externalID string) string {
	return tenantID + "|" + string(source) + "|" + externalID
}

func idKey(tenantID, leadID string) string {
	return tenantID + "|" + leadID
}

func (r *LeadRepo) CreateLead(_ context.Context, lead *entity.Lead) (*entity.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := contactKey(lead.TenantID, lead.Source, lead.ExternalID)
	if existing, ok := r.byKey[key]; ok {
		return snapshot(existing), nil
	}

	stored := snapshot(lead)
	r.byKey[key] = stored
	r.byID[idKey(lead.TenantID, lead.ID)] = stored
	return snapshot(stored), nil
}

func (r *LeadRepo) FindLeadByExternalID(_ context.Context, tenantID string, source entity.LeadSource, externalID string) (*entity.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	lead, ok := r.byKey[contactKey(tenantID, source, externalID)]
	if !ok {
		return nil, entity.ErrLeadNotFound
	}
	return snapshot(lead), nil
}

func (r *LeadRepo) FindLeadByID(_ context.Context, tenantID, leadID string) (*entity.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	lead, ok := r.byID[idKey(tenantID, leadID)]
	if !ok {
		return nil, entity.ErrLeadNotFound
	}
	return snapshot(lead), nil
}

func (r *LeadRepo) AppendMessage(_ context.Context, tenantID, leadID, role, content string) (*entity.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	lead, ok := r.byID[idKey(tenantID, leadID)]
	if !ok {
		return nil, entity.ErrLeadNotFound
	}

	now := time.Now().UTC()
	if n := len(lead.Messages); n > 0 && lead.Messages[n-1].Timestamp.After(now) {
		// Keep timestamps non-decreasing even if the clock steps back.
		now = lead.Messages[n-1].Timestamp
	}

	r.nextMsgID++
	lead.Messages = append(lead.Messages, entity.Message{
		ID:        r.nextMsgID,
		LeadID:    leadID,
		Role:      role,
		Content:   content,
		Timestamp: now,
	})
	lead.UpdatedAt = now

	return snapshot(lead), nil
}

func (r *LeadRepo) SetIntent(_ context.Context, tenantID, leadID string, intent entity.LeadIntent) (*entity.Lead, entity.LeadIntent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	lead, ok := r.byID[idKey(tenantID, leadID)]
	if !ok {
		return nil, "", entity.ErrLeadNotFound
	}

	prev := lead.Intent
	lead.Intent = intent
	lead.UpdatedAt = time.Now().UTC()
	return snapshot(lead), prev, nil
}

func (r *LeadRepo) ListLeads(_ context.Context, tenantID string, filter entity.LeadFilter) ([]entity.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []entity.Lead
	for _, lead := range r.byID {
		if lead.TenantID != tenantID {
			continue
		}
		if filter.Source != nil && lead.Source != *filter.Source {
			continue
		}
		if filter.Intent != nil && lead.Intent != *filter.Intent {
			continue
		}
		out = append(out, *snapshot(lead))
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// snapshot deep-copies so callers never alias repo-owned state.
func snapshot(lead *entity.Lead) *entity.Lead {
	cp := *lead
	cp.Messages = append([]entity.Message(nil), lead.Messages...)
	return &cp
}
