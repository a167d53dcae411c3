// Package compliance runs GDPR posture checks over a document inventory
// and its processing log: data inventory coverage, retention expiry, and
// erasure follow-through. Modelled as discrete checks so reports stay
// stable as new frameworks are added.
package compliance

import (
	"context"
	"time"

	"github.com/privata-io/privata/internal/audit"
)

// CheckStatus is the outcome class of a single check.
type CheckStatus string

const (
	StatusPass    CheckStatus = "pass"
	StatusWarning CheckStatus = "warning"
	StatusFail    CheckStatus = "fail"
	StatusError   CheckStatus = "error"
	StatusSkipped CheckStatus = "skipped"
)

// severity orders statuses from best to worst for the report rollup.
func (s CheckStatus) severity() int {
	switch s {
	case StatusSkipped:
		return 0
	case StatusPass:
		return 1
	case StatusWarning:
		return 2
	case StatusError:
		return 3
	case StatusFail:
		return 4
	default:
		return 4
	}
}

// CheckResult is a single check outcome.
type CheckResult struct {
	Name    string                 `json:"name"`
	Article string                 `json:"article,omitempty"`
	Status  CheckStatus            `json:"status"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// DocumentRecord describes one stored document as the pipeline knows it.
type DocumentRecord struct {
	ID            string    `json:"id"`
	IngestedAt    time.Time `json:"ingested_at"`
	RetentionDays int       `json:"retention_days"`
	PIITypes      []string  `json:"pii_types,omitempty"`
	Redacted      bool      `json:"redacted"`
}

// Input is everything the checks inspect. Audit may be nil, in which case
// log-dependent checks report themselves as skipped.
type Input struct {
	Documents []DocumentRecord
	Audit     *audit.Logger
	Now       time.Time
}

func (in *Input) now() time.Time {
	if in.Now.IsZero() {
		return time.Now().UTC()
	}
	return in.Now
}

// Check is a single compliance probe.
type Check interface {
	Name() string
	Run(ctx context.Context, in *Input) CheckResult
}
