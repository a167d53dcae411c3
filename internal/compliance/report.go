package compliance

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// Summary tallies check outcomes by status.
type Summary struct {
	Pass    int `json:"pass"`
	Warning int `json:"warning"`
	Fail    int `json:"fail"`
	Error   int `json:"error"`
	Skipped int `json:"skipped"`
}

// Report is the complete output of a compliance run. Status is the worst
// status among the checks.
type Report struct {
	GeneratedAt time.Time     `json:"generated_at"`
	Status      CheckStatus   `json:"status"`
	Checks      []CheckResult `json:"checks"`
	Summary     Summary       `json:"summary"`
}

// NewReport starts an empty report stamped at the given time.
func NewReport(generatedAt time.Time) *Report {
	return &Report{GeneratedAt: generatedAt, Status: StatusSkipped}
}

// Add records one check result.
func (r *Report) Add(result CheckResult) {
	r.Checks = append(r.Checks, result)
	switch result.Status {
	case StatusPass:
		r.Summary.Pass++
	case StatusWarning:
		r.Summary.Warning++
	case StatusFail:
		r.Summary.Fail++
	case StatusError:
		r.Summary.Error++
	case StatusSkipped:
		r.Summary.Skipped++
	}
}

// Finalize computes the rollup status from the recorded checks.
func (r *Report) Finalize() {
	status := StatusSkipped
	for _, c := range r.Checks {
		if c.Status.severity() > status.severity() {
			status = c.Status
		}
	}
	r.Status = status
}

// WriteJSON writes the report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encoding compliance report: %w", err)
	}
	return nil
}

// WriteText writes a human-readable summary, one line per check.
func (r *Report) WriteText(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "Compliance report (%s)\nStatus: %s\n\n",
		r.GeneratedAt.Format(time.RFC3339), r.Status); err != nil {
		return err
	}
	for _, c := range r.Checks {
		article := c.Article
		if article == "" {
			article = "-"
		}
		if _, err := fmt.Fprintf(w, "  [%-7s] %-16s %-14s %s\n",
			c.Status, c.Name, article, c.Message); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "\n%d pass, %d warning, %d fail, %d error, %d skipped\n",
		r.Summary.Pass, r.Summary.Warning, r.Summary.Fail, r.Summary.Error, r.Summary.Skipped)
	return err
}
