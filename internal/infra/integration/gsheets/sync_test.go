package gsheets

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"github.com/xavierca1/lead-capture/internal/entity"
	"github.com/xavierca1/lead-capture/internal/workflow"
)

type appendCall struct {
	path string
	body struct {
		Values [][]any `json:"values"`
	}
}

func newSyncAgainst(t *testing.T, status int) (*Sync, *appendCall) {
	t.Helper()
	call := &appendCall{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		call.path = r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		json.Unmarshal(raw, &call.body)
		w.WriteHeader(status)
		w.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)

	s, err := NewSync(context.Background(), "sheet-123",
		option.WithoutAuthentication(), option.WithEndpoint(srv.URL))
	require.NoError(t, err)
	return s, call
}

// TestAppendLeadRow - one row per lead, fixed column order
func TestAppendLeadRow(t *testing.T) {
	s, call := newSyncAgainst(t, http.StatusOK)

	created := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	err := s.AppendLead(context.Background(), entity.Lead{
		TenantID:  "tenant-1",
		Name:      "Ana",
		Email:     "ana@example.com",
		Phone:     "+5511999990000",
		Source:    entity.SourceWhatsApp,
		Intent:    entity.IntentCold,
		CreatedAt: created,
	})

	require.NoError(t, err)
	assert.True(t, strings.Contains(call.path, "sheet-123"))

	require.Len(t, call.body.Values, 1)
	assert.Equal(t, []any{
		"tenant-1", "Ana", "ana@example.com", "+5511999990000",
		"WHATSAPP", "COLD", "2026-03-14T09:30:00Z",
	}, call.body.Values[0])
}

// TestHandleSurfacesAppendFailure - the dispatcher logs handler errors, so
// Handle must report them instead of swallowing
func TestHandleSurfacesAppendFailure(t *testing.T) {
	s, _ := newSyncAgainst(t, http.StatusForbidden)

	lead, err := entity.NewLead("tenant-1", "user-1", entity.SourceWebsite)
	require.NoError(t, err)

	err = s.Handle(context.Background(), workflow.NewEvent(workflow.EventLeadCreated, "tenant-1", *lead))
	assert.Error(t, err)
}
