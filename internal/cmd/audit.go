package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/privata-io/privata/internal/audit"
	"github.com/privata-io/privata/internal/config"
)

var (
	auditType     string
	auditUser     string
	auditDocument string
	auditLimit    int
	auditFormat   string
	auditOut      string
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Query, export, and prune the processing log",
}

var auditListCmd = &cobra.Command{
	Use:   "list",
	Short: "List processing-log events",
	RunE:  auditList,
}

var auditExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export processing-log events as CSV or JSON",
	RunE:  auditExport,
}

var auditPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete events older than the retention window",
	RunE:  auditPrune,
}

func init() {
	for _, c := range []*cobra.Command{auditListCmd, auditExportCmd} {
		c.Flags().StringVar(&auditType, "type", "", "filter by event type")
		c.Flags().StringVar(&auditUser, "user", "", "filter by user ID")
		c.Flags().StringVar(&auditDocument, "document", "", "filter by document ID")
	}
	auditListCmd.Flags().IntVar(&auditLimit, "limit", 20, "maximum events to show")
	auditExportCmd.Flags().StringVar(&auditFormat, "format", "json", "export format (csv, json)")
	auditExportCmd.Flags().StringVar(&auditOut, "out", "", "write to file instead of stdout")

	auditCmd.AddCommand(auditListCmd)
	auditCmd.AddCommand(auditExportCmd)
	auditCmd.AddCommand(auditPruneCmd)
	rootCmd.AddCommand(auditCmd)
}

func auditFilters() audit.Filters {
	return audit.Filters{
		Type:       audit.EventType(auditType),
		UserID:     auditUser,
		DocumentID: auditDocument,
		Limit:      auditLimit,
	}
}

func auditList(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()
	ctx, span := tracer.Start(ctx, "audit.list")
	defer span.End()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, err := openAuditLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Close()

	events, err := logger.QueryEvents(ctx, auditFilters())
	if err != nil {
		return fmt.Errorf("querying processing log: %w", err)
	}

	if len(events) == 0 {
		fmt.Println("No events found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIMESTAMP\tTYPE\tUSER\tDOCUMENT\tID")
	for _, ev := range events {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			ev.Timestamp.Format(time.RFC3339), ev.Type, ev.UserID, ev.DocumentID, ev.ID)
	}
	return w.Flush()
}

func auditExport(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()
	ctx, span := tracer.Start(ctx, "audit.export")
	defer span.End()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, err := openAuditLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Close()

	events, err := logger.QueryEvents(ctx, auditFilters())
	if err != nil {
		return fmt.Errorf("querying processing log: %w", err)
	}

	out := os.Stdout
	if auditOut != "" {
		f, createErr := os.Create(auditOut)
		if createErr != nil {
			return fmt.Errorf("creating %s: %w", auditOut, createErr)
		}
		defer f.Close()
		out = f
	}

	switch auditFormat {
	case "csv":
		err = audit.WriteCSV(out, events)
	case "json":
		err = audit.WriteJSON(out, events)
	default:
		return fmt.Errorf("unknown export format %q (want csv or json)", auditFormat)
	}
	if err != nil {
		return err
	}

	return logger.LogExport(ctx, auditUser, auditFormat, len(events))
}

func auditPrune(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()
	ctx, span := tracer.Start(ctx, "audit.prune")
	defer span.End()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, err := openAuditLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Close()

	removed, err := logger.EnforceRetention(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Removed %d event(s) older than %d days.\n", removed, cfg.AuditRetentionDays)
	return nil
}
