package compliance

import (
	"context"
	"fmt"
	"time"
)

// expiryWarningWindow flags documents whose retention runs out soon, so
// operators can act before the check starts failing.
const expiryWarningWindow = 30 * 24 * time.Hour

// RetentionCheck verifies Article 5(1)(e) storage limitation: no document
// may outlive its retention period.
type RetentionCheck struct{}

func (RetentionCheck) Name() string { return "retention" }

func (RetentionCheck) Run(ctx context.Context, in *Input) CheckResult {
	if len(in.Documents) == 0 {
		return CheckResult{
			Name: "retention", Article: "Art. 5(1)(e)", Status: StatusSkipped,
			Message: "no documents in inventory",
		}
	}

	now := in.now()
	var expired, expiring []string
	for _, doc := range in.Documents {
		if doc.RetentionDays <= 0 {
			continue
		}
		expiresAt := doc.IngestedAt.AddDate(0, 0, doc.RetentionDays)
		switch {
		case !expiresAt.After(now):
			expired = append(expired, doc.ID)
		case expiresAt.Sub(now) <= expiryWarningWindow:
			expiring = append(expiring, doc.ID)
		}
	}

	details := map[string]interface{}{
		"documents": len(in.Documents),
	}
	if len(expired) > 0 {
		details["expired_documents"] = expired
	}
	if len(expiring) > 0 {
		details["expiring_documents"] = expiring
	}

	switch {
	case len(expired) > 0:
		return CheckResult{
			Name: "retention", Article: "Art. 5(1)(e)", Status: StatusFail,
			Message: fmt.Sprintf("%d document(s) past retention", len(expired)),
			Details: details,
		}
	case len(expiring) > 0:
		return CheckResult{
			Name: "retention", Article: "Art. 5(1)(e)", Status: StatusWarning,
			Message: fmt.Sprintf("%d document(s) expire within 30 days", len(expiring)),
			Details: details,
		}
	default:
		return CheckResult{
			Name: "retention", Article: "Art. 5(1)(e)", Status: StatusPass,
			Message: "all documents within retention",
			Details: details,
		}
	}
}
