package audit

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"
)

// WriteJSON writes events as an indented JSON array, the format consumed
// by downstream compliance tooling.
func WriteJSON(w io.Writer, events []Event) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if events == nil {
		events = []Event{}
	}
	if err := enc.Encode(events); err != nil {
		return fmt.Errorf("encoding audit export: %w", err)
	}
	return nil
}

// WriteCSV writes events in a flat spreadsheet-friendly form. Details are
// collapsed into a single "key=value; key=value" column.
func WriteCSV(w io.Writer, events []Event) error {
	cw := csv.NewWriter(w)
	header := []string{"id", "timestamp", "type", "user_id", "document_id", "details"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing audit export header: %w", err)
	}

	for i := range events {
		ev := &events[i]
		record := []string{
			ev.ID,
			ev.Timestamp.Format(time.RFC3339),
			string(ev.Type),
			ev.UserID,
			ev.DocumentID,
			flattenDetails(ev.Details),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing audit export row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func flattenDetails(details map[string]interface{}) string {
	if len(details) == 0 {
		return ""
	}
	keys := make([]string, 0, len(details))
	for k := range details {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, details[k]))
	}
	return strings.Join(parts, "; ")
}
