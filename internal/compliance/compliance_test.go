package compliance

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/privata-io/privata/internal/audit"
)

var checkTime = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

func doc(id string, ageDays, retentionDays int, piiTypes []string, redacted bool) DocumentRecord {
	return DocumentRecord{
		ID:            id,
		IngestedAt:    checkTime.AddDate(0, 0, -ageDays),
		RetentionDays: retentionDays,
		PIITypes:      piiTypes,
		Redacted:      redacted,
	}
}

func TestInventoryCheck(t *testing.T) {
	ctx := context.Background()

	t.Run("empty inventory skipped", func(t *testing.T) {
		result := InventoryCheck{}.Run(ctx, &Input{Now: checkTime})
		assert.Equal(t, StatusSkipped, result.Status)
	})

	t.Run("all redacted passes", func(t *testing.T) {
		in := &Input{Now: checkTime, Documents: []DocumentRecord{
			doc("doc-1", 10, 365, []string{"email"}, true),
			doc("doc-2", 10, 365, nil, false),
		}}
		result := InventoryCheck{}.Run(ctx, in)
		assert.Equal(t, StatusPass, result.Status)
		assert.Equal(t, []string{"email"}, result.Details["categories"])
	})

	t.Run("unredacted pii fails", func(t *testing.T) {
		in := &Input{Now: checkTime, Documents: []DocumentRecord{
			doc("doc-1", 10, 365, []string{"email", "nhs_number"}, false),
		}}
		result := InventoryCheck{}.Run(ctx, in)
		assert.Equal(t, StatusFail, result.Status)
		assert.Equal(t, []string{"doc-1"}, result.Details["unredacted_documents"])
	})
}

func TestRetentionCheck(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		documents  []DocumentRecord
		wantStatus CheckStatus
	}{
		{
			name:       "empty inventory skipped",
			wantStatus: StatusSkipped,
		},
		{
			name: "within retention passes",
			documents: []DocumentRecord{
				doc("doc-1", 30, 365, nil, true),
			},
			wantStatus: StatusPass,
		},
		{
			name: "expiring soon warns",
			documents: []DocumentRecord{
				doc("doc-1", 350, 365, nil, true),
			},
			wantStatus: StatusWarning,
		},
		{
			name: "past retention fails",
			documents: []DocumentRecord{
				doc("doc-1", 400, 365, nil, true),
			},
			wantStatus: StatusFail,
		},
		{
			name: "zero retention never expires",
			documents: []DocumentRecord{
				doc("doc-1", 4000, 0, nil, true),
			},
			wantStatus: StatusPass,
		},
		{
			name: "expired outranks expiring",
			documents: []DocumentRecord{
				doc("doc-1", 350, 365, nil, true),
				doc("doc-2", 400, 365, nil, true),
			},
			wantStatus: StatusFail,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := RetentionCheck{}.Run(ctx, &Input{Now: checkTime, Documents: tt.documents})
			assert.Equal(t, tt.wantStatus, result.Status)
		})
	}
}

func TestErasureCheck(t *testing.T) {
	ctx := context.Background()

	t.Run("no audit logger skipped", func(t *testing.T) {
		result := ErasureCheck{}.Run(ctx, &Input{Now: checkTime})
		assert.Equal(t, StatusSkipped, result.Status)
	})

	t.Run("deletion verified passes", func(t *testing.T) {
		logger := audit.NewLogger(audit.NewMemoryBackend(), 30)
		require.NoError(t, logger.LogDeletion(ctx, "alice", "doc-gone", "erasure request"))

		in := &Input{
			Now:       checkTime,
			Documents: []DocumentRecord{doc("doc-1", 10, 365, nil, true)},
			Audit:     logger,
		}
		result := ErasureCheck{}.Run(ctx, in)
		assert.Equal(t, StatusPass, result.Status)
	})

	t.Run("lingering document fails", func(t *testing.T) {
		logger := audit.NewLogger(audit.NewMemoryBackend(), 30)
		require.NoError(t, logger.LogDeletion(ctx, "alice", "doc-1", "erasure request"))

		in := &Input{
			Now:       checkTime,
			Documents: []DocumentRecord{doc("doc-1", 10, 365, nil, true)},
			Audit:     logger,
		}
		result := ErasureCheck{}.Run(ctx, in)
		assert.Equal(t, StatusFail, result.Status)
		assert.Equal(t, []string{"doc-1"}, result.Details["lingering_documents"])
	})
}

func TestCheckerRun(t *testing.T) {
	ctx := context.Background()
	logger := audit.NewLogger(audit.NewMemoryBackend(), 30)

	in := &Input{
		Now: checkTime,
		Documents: []DocumentRecord{
			doc("doc-1", 10, 365, []string{"email"}, true),
			doc("doc-2", 350, 365, nil, true),
		},
		Audit: logger,
	}

	report := NewChecker().Run(ctx, in)
	require.Len(t, report.Checks, 3)
	assert.Equal(t, StatusWarning, report.Status)
	assert.Equal(t, 2, report.Summary.Pass)
	assert.Equal(t, 1, report.Summary.Warning)

	events, err := logger.QueryEvents(ctx, audit.Filters{Type: audit.EventComplianceCheck})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "warning", events[0].Details["status"])
}

func TestReportRollupAndOutput(t *testing.T) {
	report := NewReport(checkTime)
	report.Add(CheckResult{Name: "a", Status: StatusPass, Message: "ok"})
	report.Add(CheckResult{Name: "b", Status: StatusFail, Message: "broken", Article: "Art. 17"})
	report.Add(CheckResult{Name: "c", Status: StatusWarning, Message: "soon"})
	report.Finalize()

	assert.Equal(t, StatusFail, report.Status)

	var text bytes.Buffer
	require.NoError(t, report.WriteText(&text))
	assert.Contains(t, text.String(), "Status: fail")
	assert.Contains(t, text.String(), "Art. 17")
	assert.Contains(t, text.String(), "1 pass, 1 warning, 1 fail, 0 error, 0 skipped")

	var out bytes.Buffer
	require.NoError(t, report.WriteJSON(&out))
	var decoded Report
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(t, StatusFail, decoded.Status)
	assert.Len(t, decoded.Checks, 3)
}

type countingRunner struct {
	mu   sync.Mutex
	runs int
	err  error
}

func (r *countingRunner) RunScheduledCheck(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs++
	return r.err
}

func TestSchedulerRegister(t *testing.T) {
	s := NewScheduler(&countingRunner{err: errors.New("boom")})

	require.NoError(t, s.RegisterSchedule("0 6 * * 1"))
	assert.Equal(t, 1, s.Entries())

	err := s.RegisterSchedule("not a cron expression")
	require.Error(t, err)
	assert.Equal(t, 1, s.Entries())
}
