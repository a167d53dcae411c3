// Package patterns provides the embedded built-in PII pattern bundles.
// Each YAML file holds the pattern definitions for one region; the "uk"
// and "eu" bundles extend the common bundle rather than repeating it.
package patterns

import _ "embed"

//go:embed pii_common.yaml
var commonYAML []byte

//go:embed pii_uk.yaml
var ukYAML []byte

//go:embed pii_eu.yaml
var euYAML []byte

// CommonYAML returns the pattern definitions shared by every region.
func CommonYAML() []byte { return commonYAML }

// UKYAML returns the UK extension pattern definitions.
func UKYAML() []byte { return ukYAML }

// EUYAML returns the EU extension pattern definitions.
func EUYAML() []byte { return euYAML }
