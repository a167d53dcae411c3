package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/privata-io/privata/internal/compliance"
	"github.com/privata-io/privata/internal/config"
)

var (
	reportInventory string
	reportFormat    string
	reportCron      bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Run compliance checks and print a report",
	Long: `Report runs the compliance suite (data inventory, retention,
erasure) against a document inventory file and the processing log.

The inventory file is a JSON array of documents:

  [{"id": "doc-1", "ingested_at": "2026-01-10T00:00:00Z",
    "retention_days": 365, "pii_types": ["email"], "redacted": true}]

With --cron the command stays in the foreground and re-runs the checks on
the schedule from PRIVATA_COMPLIANCE_CRON.`,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportInventory, "inventory", "", "document inventory JSON file")
	reportCmd.Flags().StringVar(&reportFormat, "format", "text", "output format (text, json)")
	reportCmd.Flags().BoolVar(&reportCron, "cron", false, "run on the configured compliance schedule (foreground)")
	rootCmd.AddCommand(reportCmd)
}

// reportRunner adapts one CLI invocation into the scheduler's Runner.
type reportRunner struct {
	cfg       *config.Config
	inventory []compliance.DocumentRecord
}

func (r *reportRunner) RunScheduledCheck(ctx context.Context) error {
	return r.runOnce(ctx)
}

func (r *reportRunner) runOnce(ctx context.Context) error {
	logger, err := openAuditLogger(r.cfg)
	if err != nil {
		return err
	}
	defer logger.Close()

	report := compliance.NewChecker().Run(ctx, &compliance.Input{
		Documents: r.inventory,
		Audit:     logger,
	})

	if reportFormat == "json" {
		return report.WriteJSON(os.Stdout)
	}
	return report.WriteText(os.Stdout)
}

func loadInventory(path string) ([]compliance.DocumentRecord, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading inventory: %w", err)
	}
	var docs []compliance.DocumentRecord
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, fmt.Errorf("parsing inventory: %w", err)
	}
	return docs, nil
}

func runReport(cmd *cobra.Command, args []string) error {
	ctx, span := tracer.Start(cmd.Context(), "report")
	defer span.End()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	inventory, err := loadInventory(reportInventory)
	if err != nil {
		return err
	}

	runner := &reportRunner{cfg: cfg, inventory: inventory}

	if !reportCron {
		runCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
		defer cancel()
		return runner.runOnce(runCtx)
	}

	if cfg.ComplianceCron == "" {
		return fmt.Errorf("--cron requires a schedule; set PRIVATA_COMPLIANCE_CRON (e.g. \"0 6 * * 1\")")
	}

	scheduler := compliance.NewScheduler(runner)
	if err := scheduler.RegisterSchedule(cfg.ComplianceCron); err != nil {
		return err
	}
	scheduler.Start()
	log.Info().Str("schedule", cfg.ComplianceCron).Msg("compliance scheduler running")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	scheduler.Stop()
	return nil
}
