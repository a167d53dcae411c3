package compliance

import (
	"context"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"

	privataotel "github.com/privata-io/privata/internal/otel"
)

var tracer = privataotel.Tracer("github.com/privata-io/privata/internal/compliance")

// Checker runs a fixed set of checks and rolls their outcomes into a
// Report.
type Checker struct {
	checks []Check
}

// NewChecker builds a checker. With no arguments it runs the full default
// suite: inventory, retention, erasure.
func NewChecker(checks ...Check) *Checker {
	if len(checks) == 0 {
		checks = []Check{InventoryCheck{}, RetentionCheck{}, ErasureCheck{}}
	}
	return &Checker{checks: checks}
}

// Run executes every check against the input. When a processing log is
// attached, the run itself is recorded as a compliance_check event.
func (c *Checker) Run(ctx context.Context, in *Input) *Report {
	ctx, span := tracer.Start(ctx, "compliance.run")
	defer span.End()

	report := NewReport(in.now())
	for _, check := range c.checks {
		result := check.Run(ctx, in)
		report.Add(result)
		log.Debug().
			Str("check", result.Name).
			Str("status", string(result.Status)).
			Msg("compliance check completed")
	}
	report.Finalize()

	span.SetAttributes(
		attribute.String("compliance.status", string(report.Status)),
		attribute.Int("compliance.checks", len(report.Checks)),
	)

	if in.Audit != nil {
		details := map[string]interface{}{
			"status":  string(report.Status),
			"checks":  len(report.Checks),
			"pass":    report.Summary.Pass,
			"warning": report.Summary.Warning,
			"fail":    report.Summary.Fail,
			"error":   report.Summary.Error,
			"skipped": report.Summary.Skipped,
		}
		if err := in.Audit.LogComplianceCheck(ctx, details); err != nil {
			log.Warn().Err(err).Msg("recording compliance run in processing log failed")
		}
	}

	return report
}
