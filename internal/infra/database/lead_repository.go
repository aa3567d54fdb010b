package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/xavierca1/lead-capture/internal/entity"
)

// LeadRepository is the Postgres tenant store. The unique constraint on
// (tenant_id, source, external_id) is the serialization point for first
// contact: the insert either wins or turns into a fetch of the winner's row.
type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

const leadColumns = `id, tenant_id, external_id, COALESCE(name, ''), COALESCE(email, ''), COALESCE(phone, ''), source, intent, created_at, updated_at`

func (r *LeadRepository) CreateLead(ctx context.Context, lead *entity.Lead) (*entity.Lead, error) {
	query := `
		INSERT INTO leads (id, tenant_id, external_id, name, email, phone, source, intent, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (tenant_id, source, external_id) DO NOTHING
	`

	_, err := r.DB.ExecContext(ctx, query,
		lead.ID,
		lead.TenantID,
		lead.ExternalID,
		nullString(lead.Name),
		nullString(lead.Email),
		nullString(lead.Phone),
		string(lead.Source),
		string(lead.Intent),
		lead.CreatedAt,
		lead.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert lead: %w", err)
	}

	// Re-read unconditionally: on conflict this returns the row the race
	// winner created.
	return r.FindLeadByExternalID(ctx, lead.TenantID, lead.Source, lead.ExternalID)
}

func (r *LeadRepository) FindLeadByExternalID(ctx context.Context, tenantID string, source entity.LeadSource, externalID string) (*entity.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE tenant_id = $1 AND source = $2 AND external_id = $3`
	return r.queryLead(ctx, query, tenantID, string(source), externalID)
}

func (r *LeadRepository) FindLeadByID(ctx context.Context, tenantID, leadID string) (*entity.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE tenant_id = $1 AND id = $2`
	return r.queryLead(ctx, query, tenantID, leadID)
}

// AppendMessage inserts the message row and bumps the lead's updated_at in
// one transaction, so a half-written exchange can never be observed.
func (r *LeadRepository) AppendMessage(ctx context.Context, tenantID, leadID, role, content string) (*entity.Lead, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin append: %w", err)
	}
	defer tx.Rollback()

	// GREATEST clamps against the lead's previous updated_at, keeping message
	// timestamps non-decreasing even if the wall clock steps back between
	// appends.
	var stamp time.Time
	err = tx.QueryRowContext(ctx,
		`UPDATE leads SET updated_at = GREATEST(updated_at, $1) WHERE tenant_id = $2 AND id = $3 RETURNING updated_at`,
		time.Now().UTC(), tenantID, leadID,
	).Scan(&stamp)
	if err == sql.ErrNoRows {
		return nil, entity.ErrLeadNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("bump lead: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO messages (lead_id, role, content, created_at) VALUES ($1, $2, $3, $4)`,
		leadID, role, content, stamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit append: %w", err)
	}

	return r.FindLeadByID(ctx, tenantID, leadID)
}

// SetIntent updates the intent and returns the value the row held before the
// update. The row lock taken by UPDATE serializes racing writers, so each
// caller sees the true predecessor of its own write.
func (r *LeadRepository) SetIntent(ctx context.Context, tenantID, leadID string, intent entity.LeadIntent) (*entity.Lead, entity.LeadIntent, error) {
	query := `
		UPDATE leads l
		SET intent = $1, updated_at = $2
		FROM (SELECT id, intent FROM leads WHERE tenant_id = $3 AND id = $4 FOR UPDATE) old
		WHERE l.id = old.id
		RETURNING old.intent
	`

	var prev string
	err := r.DB.QueryRowContext(ctx, query, string(intent), time.Now().UTC(), tenantID, leadID).Scan(&prev)
	if err == sql.ErrNoRows {
		return nil, "", entity.ErrLeadNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("set intent: %w", err)
	}

	lead, err := r.FindLeadByID(ctx, tenantID, leadID)
	if err != nil {
		return nil, "", err
	}
	return lead, entity.LeadIntent(prev), nil
}

func (r *LeadRepository) ListLeads(ctx context.Context, tenantID string, filter entity.LeadFilter) ([]entity.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE tenant_id = $1`
	args := []any{tenantID}

	if filter.Source != nil {
		args = append(args, string(*filter.Source))
		query += fmt.Sprintf(" AND source = $%d", len(args))
	}
	if filter.Intent != nil {
		args = append(args, string(*filter.Intent))
		query += fmt.Sprintf(" AND intent = $%d", len(args))
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()

	var leads []entity.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, *lead)
	}
	return leads, rows.Err()
}

func (r *LeadRepository) queryLead(ctx context.Context, query string, args ...any) (*entity.Lead, error) {
	row := r.DB.QueryRowContext(ctx, query, args...)
	lead, err := scanLead(row)
	if err == sql.ErrNoRows {
		return nil, entity.ErrLeadNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query lead: %w", err)
	}

	if err := r.loadMessages(ctx, lead); err != nil {
		return nil, err
	}
	return lead, nil
}

func (r *LeadRepository) loadMessages(ctx context.Context, lead *entity.Lead) error {
	// Ordered by id, the store's serialization order, not by wall clock.
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, lead_id, role, content, created_at FROM messages WHERE lead_id = $1 ORDER BY id ASC`,
		lead.ID,
	)
	if err != nil {
		return fmt.Errorf("load messages: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m entity.Message
		if err := rows.Scan(&m.ID, &m.LeadID, &m.Role, &m.Content, &m.Timestamp); err != nil {
			return fmt.Errorf("scan message: %w", err)
		}
		lead.Messages = append(lead.Messages, m)
	}
	return rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLead(row rowScanner) (*entity.Lead, error) {
	var lead entity.Lead
	var source, intent string
	err := row.Scan(
		&lead.ID,
		&lead.TenantID,
		&lead.ExternalID,
		&lead.Name,
		&lead.Email,
		&lead.Phone,
		&source,
		&intent,
		&lead.CreatedAt,
		&lead.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	lead.Source = entity.LeadSource(source)
	lead.Intent = entity.LeadIntent(intent)
	return &lead, nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
