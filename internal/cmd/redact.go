package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/privata-io/privata/internal/config"
	"github.com/privata-io/privata/internal/detector"
	"github.com/privata-io/privata/internal/vault"
)

var (
	redactMappingOut string
	redactSeal       bool
	redactDocumentID string
	redactUser       string
)

var redactCmd = &cobra.Command{
	Use:   "redact [file]",
	Short: "Redact PII from a document",
	Long: `Redact reads a document from a file (or stdin), replaces detected
PII with placeholder tokens, and writes the redacted text to stdout.

With --mapping-out the token-to-original mapping is written to a file so
the text can be restored later; --seal encrypts that mapping with the
configured vault key first. With --document-id the redaction is recorded
in the processing log as an ingestion event.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRedact,
}

func init() {
	redactCmd.Flags().StringVar(&flagRegion, "region", "", "pattern region (common, uk, eu)")
	redactCmd.Flags().StringVar(&flagLevel, "level", "", "detection level (strict, moderate, lenient)")
	redactCmd.Flags().StringVar(&flagStrategy, "strategy", "", "redaction strategy (token, hash, category)")
	redactCmd.Flags().Float64Var(&flagMinConfidence, "min-confidence", 0, "override the level's confidence threshold")
	redactCmd.Flags().StringVar(&redactMappingOut, "mapping-out", "", "write the token mapping to this file")
	redactCmd.Flags().BoolVar(&redactSeal, "seal", false, "encrypt the mapping with the configured vault key")
	redactCmd.Flags().StringVar(&redactDocumentID, "document-id", "", "record the redaction in the processing log under this document ID")
	redactCmd.Flags().StringVar(&redactUser, "user", "", "user ID to attribute in the processing log")
	rootCmd.AddCommand(redactCmd)
}

func runRedact(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()
	ctx, span := tracer.Start(ctx, "redact")
	defer span.End()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	cfg.WarnIfDefaultKey()

	text, err := readInput(args)
	if err != nil {
		return err
	}

	d, err := newDetector(cfg)
	if err != nil {
		return err
	}

	var (
		redacted string
		mapping  map[string]string
		meta     detector.IngestionMetadata
	)
	if redactDocumentID != "" {
		redacted, meta, err = d.ProcessForIngestion(ctx, text, redactDocumentID)
		if err != nil {
			return fmt.Errorf("redacting document: %w", err)
		}

		logger, logErr := openAuditLogger(cfg)
		if logErr != nil {
			return logErr
		}
		defer logger.Close()
		if err := logger.LogIngestion(ctx, redactUser, meta); err != nil {
			return err
		}
	} else {
		result, redactErr := d.Redact(ctx, text)
		if redactErr != nil {
			return fmt.Errorf("redacting document: %w", redactErr)
		}
		redacted, mapping = result.RedactedText, result.Mapping
	}

	if redactMappingOut != "" {
		if mapping == nil {
			// ProcessForIngestion discards the mapping on purpose; run the
			// redaction path when the caller wants to restore later.
			return fmt.Errorf("--mapping-out cannot be combined with --document-id")
		}
		if err := writeMapping(cfg, mapping); err != nil {
			return err
		}
		log.Info().Str("path", redactMappingOut).Bool("sealed", redactSeal).Msg("mapping written")
	}

	fmt.Print(redacted)
	return nil
}

func writeMapping(cfg *config.Config, mapping map[string]string) error {
	var data []byte
	if redactSeal {
		v, err := vault.New(cfg.MappingKey)
		if err != nil {
			return err
		}
		sealed, err := v.SealMapping(mapping)
		if err != nil {
			return fmt.Errorf("sealing mapping: %w", err)
		}
		data = sealed
	} else {
		raw, err := json.MarshalIndent(mapping, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding mapping: %w", err)
		}
		data = raw
	}
	if err := os.WriteFile(redactMappingOut, data, 0o600); err != nil {
		return fmt.Errorf("writing mapping: %w", err)
	}
	return nil
}
