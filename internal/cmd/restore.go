package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/privata-io/privata/internal/config"
	"github.com/privata-io/privata/internal/vault"
)

var (
	restoreMapping string
	restoreSealed  bool
)

var restoreCmd = &cobra.Command{
	Use:   "restore [file]",
	Short: "Restore redacted text from a token mapping",
	Long: `Restore reads redacted text from a file (or stdin) and replaces
placeholder tokens with their original values using a mapping previously
written by "privata redact --mapping-out". Pass --sealed when the mapping
was written with --seal.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRestore,
}

func init() {
	restoreCmd.Flags().StringVar(&restoreMapping, "mapping", "", "mapping file written by redact (required)")
	restoreCmd.Flags().BoolVar(&restoreSealed, "sealed", false, "mapping file is sealed with the vault key")
	_ = restoreCmd.MarkFlagRequired("mapping")
	rootCmd.AddCommand(restoreCmd)
}

func runRestore(cmd *cobra.Command, args []string) error {
	_, span := tracer.Start(cmd.Context(), "restore")
	defer span.End()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	text, err := readInput(args)
	if err != nil {
		return err
	}

	raw, err := os.ReadFile(restoreMapping)
	if err != nil {
		return fmt.Errorf("reading mapping: %w", err)
	}

	var mapping map[string]string
	if restoreSealed {
		v, vErr := vault.New(cfg.MappingKey)
		if vErr != nil {
			return vErr
		}
		mapping, err = v.OpenMapping(raw)
		if err != nil {
			return fmt.Errorf("opening sealed mapping: %w", err)
		}
	} else {
		if err := json.Unmarshal(raw, &mapping); err != nil {
			return fmt.Errorf("parsing mapping: %w", err)
		}
	}

	d, err := newDetector(cfg)
	if err != nil {
		return err
	}

	restored, err := d.Restore(text, mapping)
	if err != nil {
		return fmt.Errorf("restoring text: %w", err)
	}

	fmt.Print(restored)
	return nil
}
