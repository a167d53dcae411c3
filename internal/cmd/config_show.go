package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/privata-io/privata/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage privata configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show resolved configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, span := tracer.Start(cmd.Context(), "config.show")
		defer span.End()

		cfg, err := config.Load()
		if err != nil {
			return err
		}

		key := "(set)"
		if cfg.UsingDefaultMappingKey() {
			key = "(derived default)"
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintf(w, "data_dir\t%s\n", cfg.DataDir)
		fmt.Fprintf(w, "region\t%s\n", cfg.Region)
		fmt.Fprintf(w, "detection_level\t%s\n", cfg.DetectionLevel)
		fmt.Fprintf(w, "redaction_strategy\t%s\n", cfg.RedactionStrategy)
		fmt.Fprintf(w, "audit_backend\t%s\n", cfg.AuditBackend)
		fmt.Fprintf(w, "audit_retention_days\t%d\n", cfg.AuditRetentionDays)
		fmt.Fprintf(w, "mapping_key\t%s\n", key)
		if cfg.ComplianceCron != "" {
			fmt.Fprintf(w, "compliance_cron\t%s\n", cfg.ComplianceCron)
		}
		return w.Flush()
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}
