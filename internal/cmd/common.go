package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/privata-io/privata/internal/audit"
	"github.com/privata-io/privata/internal/config"
	"github.com/privata-io/privata/internal/detector"
)

// Detection flags shared by scan and redact.
var (
	flagRegion        string
	flagLevel         string
	flagStrategy      string
	flagMinConfidence float64
)

// newDetector builds an engine from config defaults, overridden by any
// detection flags the user set.
func newDetector(cfg *config.Config) (*detector.Detector, error) {
	region := cfg.Region
	if flagRegion != "" {
		region = flagRegion
	}
	level := cfg.DetectionLevel
	if flagLevel != "" {
		level = flagLevel
	}
	strategy := cfg.RedactionStrategy
	if flagStrategy != "" {
		strategy = flagStrategy
	}

	opts := []detector.Option{
		detector.WithRegion(detector.Region(region)),
		detector.WithLevel(detector.Level(level)),
		detector.WithStrategy(detector.Strategy(strategy)),
	}
	if flagMinConfidence > 0 {
		opts = append(opts, detector.WithMinConfidence(flagMinConfidence))
	}
	return detector.New(opts...)
}

// openAuditLogger opens the processing log named by the config.
func openAuditLogger(cfg *config.Config) (*audit.Logger, error) {
	var (
		backend audit.Backend
		err     error
	)
	switch cfg.AuditBackend {
	case "memory":
		backend = audit.NewMemoryBackend()
	case "sqlite":
		if err := cfg.EnsureDataDir(); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		backend, err = audit.NewSQLiteBackend(cfg.AuditDBPath())
	case "postgres":
		backend, err = audit.NewPostgresBackend(cfg.AuditDSN)
	default:
		return nil, fmt.Errorf("unknown audit backend %q", cfg.AuditBackend)
	}
	if err != nil {
		return nil, err
	}
	return audit.NewLogger(backend, cfg.AuditRetentionDays), nil
}

// readInput returns the contents of the file argument, or stdin when no
// argument was given.
func readInput(args []string) (string, error) {
	if len(args) == 0 {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", args[0], err)
	}
	return string(data), nil
}
