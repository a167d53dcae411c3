package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetViper(t *testing.T) {
	t.Helper()
	t.Setenv("PRIVATA_DATA_DIR", "")
	t.Setenv("PRIVATA_REGION", "")
	t.Setenv("PRIVATA_DETECTION_LEVEL", "")
	t.Setenv("PRIVATA_REDACTION_STRATEGY", "")
	t.Setenv("PRIVATA_AUDIT_BACKEND", "")
	t.Setenv("PRIVATA_AUDIT_DSN", "")
	t.Setenv("PRIVATA_AUDIT_RETENTION_DAYS", "")
	t.Setenv("PRIVATA_MAPPING_KEY", "")
	t.Setenv("PRIVATA_COMPLIANCE_CRON", "")
	viper.Reset()
	viper.SetEnvPrefix("PRIVATA")
	viper.AutomaticEnv()
	viper.SetDefault(KeyRegion, DefaultRegion)
	viper.SetDefault(KeyDetectionLevel, DefaultDetectionLevel)
	viper.SetDefault(KeyRedactionStrategy, DefaultRedactionStrategy)
	viper.SetDefault(KeyAuditBackend, DefaultAuditBackend)
	viper.SetDefault(KeyAuditRetentionDays, DefaultRetentionDays)
}

func TestLoad_Defaults(t *testing.T) {
	resetViper(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultRegion, cfg.Region)
	assert.Equal(t, DefaultDetectionLevel, cfg.DetectionLevel)
	assert.Equal(t, DefaultRedactionStrategy, cfg.RedactionStrategy)
	assert.Equal(t, DefaultAuditBackend, cfg.AuditBackend)
	assert.Equal(t, DefaultRetentionDays, cfg.AuditRetentionDays)
	assert.True(t, cfg.UsingDefaultMappingKey(), "should report derived key when none is set")
	assert.Len(t, cfg.MappingKey, 64)
}

func TestLoad_ExplicitMappingKey(t *testing.T) {
	resetViper(t)
	t.Setenv("PRIVATA_MAPPING_KEY", "abcdefghijklmnopqrstuvwxyz012345")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "abcdefghijklmnopqrstuvwxyz012345", cfg.MappingKey)
	assert.False(t, cfg.UsingDefaultMappingKey())
}

func TestLoad_InvalidMappingKeyLength(t *testing.T) {
	resetViper(t)
	t.Setenv("PRIVATA_MAPPING_KEY", "too-short")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mapping_key must be exactly 32 bytes")
}

func TestLoad_InvalidRegion(t *testing.T) {
	resetViper(t)
	t.Setenv("PRIVATA_REGION", "atlantis")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "region")
}

func TestLoad_PostgresRequiresDSN(t *testing.T) {
	resetViper(t)
	t.Setenv("PRIVATA_AUDIT_BACKEND", "postgres")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "audit_dsn is required")

	t.Setenv("PRIVATA_AUDIT_DSN", "postgres://localhost/privata?sslmode=disable")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.AuditBackend)
}

func TestLoad_UnknownAuditBackend(t *testing.T) {
	resetViper(t)
	t.Setenv("PRIVATA_AUDIT_BACKEND", "cassandra")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "audit_backend must be")
}

func TestLoad_CustomDataDir(t *testing.T) {
	resetViper(t)
	dir := t.TempDir()
	t.Setenv("PRIVATA_DATA_DIR", dir)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.DataDir)
	assert.Equal(t, dir+"/audit.db", cfg.AuditDBPath())
}
