package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/privata-io/privata/internal/config"
)

var scanFormat string

var scanCmd = &cobra.Command{
	Use:   "scan [file]",
	Short: "Detect PII without redacting",
	Long: `Scan reads a document from a file (or stdin) and prints every
detected PII item with its category, span, and confidence. The document
itself is never written anywhere.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringVar(&flagRegion, "region", "", "pattern region (common, uk, eu)")
	scanCmd.Flags().StringVar(&flagLevel, "level", "", "detection level (strict, moderate, lenient)")
	scanCmd.Flags().Float64Var(&flagMinConfidence, "min-confidence", 0, "override the level's confidence threshold")
	scanCmd.Flags().StringVar(&scanFormat, "format", "table", "output format (table, json)")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()
	ctx, span := tracer.Start(ctx, "scan")
	defer span.End()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	text, err := readInput(args)
	if err != nil {
		return err
	}

	d, err := newDetector(cfg)
	if err != nil {
		return err
	}

	items, err := d.Detect(ctx, text)
	if err != nil {
		return fmt.Errorf("detecting PII: %w", err)
	}

	if scanFormat == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(items)
	}

	if len(items) == 0 {
		fmt.Println("No PII detected.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CATEGORY\tSPAN\tCONFIDENCE\tVALUE")
	for _, item := range items {
		fmt.Fprintf(w, "%s\t%d-%d\t%.2f\t%s\n",
			item.Category, item.Start, item.End, item.Confidence, item.Value)
	}
	return w.Flush()
}
