package gsheets

import (
	"context"
	"fmt"
	"log"
	"time"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/xavierca1/lead-capture/internal/entity"
	"github.com/xavierca1/lead-capture/internal/workflow"
)

const defaultWriteRange = "Sheet1!A:G"

// Sync appends captured leads to a Google Sheet, one row per lead. Like the
// other notification sinks it is best-effort: a failed append is logged and
// dropped, never retried.
type Sync struct {
	svc           *sheets.Service
	spreadsheetID string
	writeRange    string
}

func NewSync(ctx context.Context, spreadsheetID string, opts ...option.ClientOption) (*Sync, error) {
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &Sync{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		writeRange:    defaultWriteRange,
	}, nil
}

// AppendLead writes one row: tenant, name, email, phone, source, intent,
// capture time.
func (s *Sync) AppendLead(ctx context.Context, lead entity.Lead) error {
	row := []any{
		lead.TenantID,
		lead.Name,
		lead.Email,
		lead.Phone,
		string(lead.Source),
		string(lead.Intent),
		lead.CreatedAt.UTC().Format(time.RFC3339),
	}

	_, err := s.svc.Spreadsheets.Values.
		Append(s.spreadsheetID, s.writeRange, &sheets.ValueRange{Values: [][]any{row}}).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append lead row: %w", err)
	}
	return nil
}

// Handle subscribes the sync to lead-created events.
func (s *Sync) Handle(ctx context.Context, event workflow.Event) error {
	if err := s.AppendLead(ctx, event.Lead); err != nil {
		log.Printf("[gsheets] sync failed for tenant %s: %v", event.TenantID, err)
		return err
	}
	return nil
}
