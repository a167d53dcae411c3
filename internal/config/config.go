// Package config holds operator-level configuration for a privata
// installation: data directory, detection defaults, audit backend, and
// the mapping vault key. Everything is set via env vars (PRIVATA_*) or
// a config file (privata.config.yaml); redaction mappings themselves
// never pass through here.
package config

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/privata-io/privata/internal/cryptoutil"
	"github.com/privata-io/privata/internal/detector"
)

// Viper keys. Each maps to an env var with the PRIVATA_ prefix
// (e.g. "mapping_key" → PRIVATA_MAPPING_KEY) and to a YAML field in
// privata.config.yaml.
const (
	KeyDataDir            = "data_dir"
	KeyRegion             = "region"
	KeyDetectionLevel     = "detection_level"
	KeyRedactionStrategy  = "redaction_strategy"
	KeyAuditBackend       = "audit_backend"
	KeyAuditDSN           = "audit_dsn"
	KeyAuditRetentionDays = "audit_retention_days"
	KeyMappingKey         = "mapping_key"
	KeyComplianceCron     = "compliance_cron"
)

// Defaults that do not involve crypto material. The mapping key has no
// baked-in default; when unset we derive a per-machine fallback and warn.
const (
	DefaultRegion            = "uk"
	DefaultDetectionLevel    = "strict"
	DefaultRedactionStrategy = "token"
	DefaultAuditBackend      = "sqlite"
	DefaultRetentionDays     = 2555
)

// Config is the resolved configuration for a privata process.
type Config struct {
	DataDir            string // Base directory for all state (~/.privata)
	Region             string // Default pattern region for detection
	DetectionLevel     string // Default confidence threshold preset
	RedactionStrategy  string // Default replacement strategy
	AuditBackend       string // "memory", "sqlite", or "postgres"
	AuditDSN           string // PostgreSQL DSN when AuditBackend is "postgres"
	AuditRetentionDays int    // Processing-log retention window
	MappingKey         string // AES-256 key for sealed mappings (32 bytes or 64 hex)
	ComplianceCron     string // Optional cron expression for scheduled compliance runs

	usingDefaultMappingKey bool
}

// UsingDefaultMappingKey reports whether the vault key fell back to a
// derived default. Commands should warn when this is the case.
func (c *Config) UsingDefaultMappingKey() bool {
	return c.usingDefaultMappingKey
}

// AuditDBPath returns the full path to the audit SQLite database.
func (c *Config) AuditDBPath() string {
	return filepath.Join(c.DataDir, "audit.db")
}

// EnsureDataDir creates the data directory if it doesn't exist.
func (c *Config) EnsureDataDir() error {
	return os.MkdirAll(c.DataDir, 0o700)
}

// WarnIfDefaultKey logs a warning when the mapping key is not explicitly
// set. Suppressed when PRIVATA_QUICKSTART=1 or true.
func (c *Config) WarnIfDefaultKey() {
	if isQuickstart() {
		return
	}
	if c.usingDefaultMappingKey {
		log.Warn().Msg("Using derived default PRIVATA_MAPPING_KEY, set one via env var or config file for production")
	}
}

func isQuickstart() bool {
	v := os.Getenv("PRIVATA_QUICKSTART")
	return v == "1" || v == "true" || v == "TRUE"
}

func init() {
	viper.SetEnvPrefix("PRIVATA")
	viper.AutomaticEnv()
	viper.SetDefault(KeyRegion, DefaultRegion)
	viper.SetDefault(KeyDetectionLevel, DefaultDetectionLevel)
	viper.SetDefault(KeyRedactionStrategy, DefaultRedactionStrategy)
	viper.SetDefault(KeyAuditBackend, DefaultAuditBackend)
	viper.SetDefault(KeyAuditRetentionDays, DefaultRetentionDays)
}

// Load reads configuration from Viper (which merges env vars, config
// file, and defaults) and returns a validated Config.
func Load() (*Config, error) {
	cfg := &Config{
		DataDir:            resolveDataDir(),
		Region:             viper.GetString(KeyRegion),
		DetectionLevel:     viper.GetString(KeyDetectionLevel),
		RedactionStrategy:  viper.GetString(KeyRedactionStrategy),
		AuditBackend:       viper.GetString(KeyAuditBackend),
		AuditDSN:           viper.GetString(KeyAuditDSN),
		AuditRetentionDays: viper.GetInt(KeyAuditRetentionDays),
		MappingKey:         viper.GetString(KeyMappingKey),
		ComplianceCron:     viper.GetString(KeyComplianceCron),
	}

	if cfg.MappingKey == "" {
		cfg.MappingKey = deriveDefaultKey(cfg.DataDir, "mapping-vault")
		cfg.usingDefaultMappingKey = true
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func resolveDataDir() string {
	if dir := viper.GetString(KeyDataDir); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".privata"
	}
	return filepath.Join(home, ".privata")
}

// deriveDefaultKey produces a deterministic 64-hex-char fallback key from
// the data directory path and a salt. This is NOT cryptographically
// strong; it exists solely so the CLI works out of the box while still
// sealing mappings with a per-machine-unique key.
func deriveDefaultKey(dataDir, salt string) string {
	h := sha256.Sum256([]byte(fmt.Sprintf("privata:%s:%s", dataDir, salt)))
	return hex.EncodeToString(h[:])
}

func (c *Config) validate() error {
	if _, err := detector.ParseRegion(c.Region); err != nil {
		return fmt.Errorf("region: %w", err)
	}
	if _, err := detector.ParseLevel(c.DetectionLevel); err != nil {
		return fmt.Errorf("detection_level: %w", err)
	}
	if _, err := detector.ParseStrategy(c.RedactionStrategy); err != nil {
		return fmt.Errorf("redaction_strategy: %w", err)
	}

	switch c.AuditBackend {
	case "memory", "sqlite":
	case "postgres":
		if c.AuditDSN == "" {
			return fmt.Errorf("audit_dsn is required when audit_backend is postgres; set PRIVATA_AUDIT_DSN")
		}
	default:
		return fmt.Errorf("audit_backend must be memory, sqlite, or postgres (got %q)", c.AuditBackend)
	}

	if c.AuditRetentionDays <= 0 {
		return fmt.Errorf("audit_retention_days must be positive")
	}
	return validateMappingKey(c.MappingKey)
}

// validateMappingKey accepts either 32 raw bytes or 64 hex characters
// (decodes to 32 bytes for AES-256).
func validateMappingKey(key string) error {
	n := len(key)
	if n == 32 {
		return nil
	}
	if n == 64 && cryptoutil.IsHexString(key) {
		decoded, err := hex.DecodeString(key)
		if err != nil || len(decoded) != 32 {
			return fmt.Errorf("mapping_key hex must decode to 32 bytes: %w", err)
		}
		return nil
	}
	return fmt.Errorf("mapping_key must be exactly 32 bytes or 64 hex characters (got %d); set PRIVATA_MAPPING_KEY", n)
}
