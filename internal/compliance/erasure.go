package compliance

import (
	"context"
	"fmt"

	"github.com/privata-io/privata/internal/audit"
)

// ErasureCheck verifies Article 17 follow-through: every deletion recorded
// in the processing log must actually be gone from the inventory.
type ErasureCheck struct{}

func (ErasureCheck) Name() string { return "erasure" }

func (ErasureCheck) Run(ctx context.Context, in *Input) CheckResult {
	if in.Audit == nil {
		return CheckResult{
			Name: "erasure", Article: "Art. 17", Status: StatusSkipped,
			Message: "no processing log configured",
		}
	}

	deletions, err := in.Audit.QueryEvents(ctx, audit.Filters{Type: audit.EventDeletion})
	if err != nil {
		return CheckResult{
			Name: "erasure", Article: "Art. 17", Status: StatusError,
			Message: fmt.Sprintf("querying deletion events: %v", err),
		}
	}

	present := make(map[string]bool, len(in.Documents))
	for _, doc := range in.Documents {
		present[doc.ID] = true
	}

	var lingering []string
	seen := map[string]bool{}
	for _, ev := range deletions {
		if ev.DocumentID == "" || seen[ev.DocumentID] {
			continue
		}
		seen[ev.DocumentID] = true
		if present[ev.DocumentID] {
			lingering = append(lingering, ev.DocumentID)
		}
	}

	details := map[string]interface{}{
		"deletion_events": len(deletions),
	}
	if len(lingering) > 0 {
		details["lingering_documents"] = lingering
		return CheckResult{
			Name: "erasure", Article: "Art. 17", Status: StatusFail,
			Message: fmt.Sprintf("%d deleted document(s) still in inventory", len(lingering)),
			Details: details,
		}
	}

	return CheckResult{
		Name: "erasure", Article: "Art. 17", Status: StatusPass,
		Message: fmt.Sprintf("%d deletion(s) verified against inventory", len(seen)),
		Details: details,
	}
}
