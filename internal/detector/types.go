package detector

import (
	"fmt"
	"sort"
	"strings"
)

// Region selects which built-in pattern bundle the detector loads.
type Region string

const (
	// RegionCommon is the baseline bundle: email, phone, credit card.
	RegionCommon Region = "common"
	// RegionUK adds UK phone, postcode, NHS number, NI number and IBAN.
	RegionUK Region = "uk"
	// RegionEU adds IBAN on top of the common bundle.
	RegionEU Region = "eu"
)

// ParseRegion converts a configuration string into a Region.
func ParseRegion(s string) (Region, error) {
	switch Region(strings.ToLower(s)) {
	case RegionCommon:
		return RegionCommon, nil
	case RegionUK:
		return RegionUK, nil
	case RegionEU:
		return RegionEU, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRegion, s)
}

// Level is a named confidence threshold profile. Strict admits lower
// confidence matches than lenient, so strict finds more and lenient only
// keeps near-certain matches.
type Level string

const (
	LevelStrict   Level = "strict"
	LevelModerate Level = "moderate"
	LevelLenient  Level = "lenient"
)

// ParseLevel converts a configuration string into a Level.
func ParseLevel(s string) (Level, error) {
	switch Level(strings.ToLower(s)) {
	case LevelStrict:
		return LevelStrict, nil
	case LevelModerate:
		return LevelModerate, nil
	case LevelLenient:
		return LevelLenient, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownLevel, s)
}

// Threshold returns the minimum confidence a candidate needs to survive
// resolution at this level.
func (l Level) Threshold() float64 {
	switch l {
	case LevelModerate:
		return 0.7
	case LevelLenient:
		return 0.9
	default:
		return 0.5
	}
}

// Strategy selects how resolved items are rewritten into tokens.
type Strategy string

const (
	// StrategyToken emits [CATEGORY_N] tokens, fully reversible.
	StrategyToken Strategy = "token"
	// StrategyHash emits [CATEGORY_xxxxxx] tokens where the suffix is the
	// first six hex characters of the SHA-256 of the original value.
	// Identical values share a token, so equal values correlate across the
	// text while the content stays hidden; restore is unaffected because
	// colliding values are by definition equal.
	StrategyHash Strategy = "hash"
	// StrategyCategory emits bare [CATEGORY] tokens. Lossy: distinct values
	// of one category collide and only the first keeps a mapping entry.
	StrategyCategory Strategy = "category"
)

// ParseStrategy converts a configuration string into a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(s)) {
	case StrategyToken:
		return StrategyToken, nil
	case StrategyHash:
		return StrategyHash, nil
	case StrategyCategory:
		return StrategyCategory, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, s)
}

// PatternDefinition describes one PII category: a stable name, an RE2 match
// expression, an overlap priority, a base confidence and an optional
// validator id. Definitions are immutable once a Detector is constructed.
type PatternDefinition struct {
	Name           string  `yaml:"name" json:"name"`
	Regex          string  `yaml:"regex" json:"regex"`
	Priority       int     `yaml:"priority" json:"priority"`
	BaseConfidence float64 `yaml:"base_confidence" json:"base_confidence"`
	Validator      string  `yaml:"validator,omitempty" json:"validator,omitempty"`
}

// Candidate is a single raw pattern occurrence before overlap resolution.
// Offsets are byte offsets into the source text, half-open [Start, End).
type Candidate struct {
	Category       string
	Value          string
	Start          int
	End            int
	Priority       int
	BaseConfidence float64
	// Checked reports whether a validator ran for this candidate;
	// Valid holds its result and is meaningless when Checked is false.
	Checked bool
	Valid   bool
}

// ResolvedItem is a candidate that survived confidence filtering and
// overlap resolution. Index is 1-based per category, assigned left to
// right over the final span set.
type ResolvedItem struct {
	Category   string  `json:"category"`
	Value      string  `json:"value"`
	Start      int     `json:"start"`
	End        int     `json:"end"`
	Confidence float64 `json:"confidence"`
	Index      int     `json:"index"`
}

// RedactionResult is the output of one Redact call.
type RedactionResult struct {
	RedactedText string            `json:"redacted_text"`
	Items        []ResolvedItem    `json:"items"`
	Mapping      map[string]string `json:"mapping"`
	Stats        Stats             `json:"stats"`
}

// Stats summarizes one redaction pass.
type Stats struct {
	OriginalLength    int            `json:"original_length"`
	PIICount          int            `json:"pii_count"`
	CharacterCoverage float64        `json:"pii_character_coverage"`
	AverageConfidence float64        `json:"average_confidence,omitempty"`
	TypeDistribution  map[string]int `json:"type_distribution,omitempty"`
}

// IngestionMetadata is the audit-ready summary produced by
// ProcessForIngestion, shaped for downstream event logging.
type IngestionMetadata struct {
	DocumentID     string         `json:"document_id,omitempty"`
	PIIDetected    bool           `json:"pii_detected"`
	PIICount       int            `json:"pii_count"`
	PIITypes       []string       `json:"pii_types"`
	PIITypeCounts  map[string]int `json:"pii_type_counts"`
	Region         string         `json:"region"`
	DetectionLevel string         `json:"detection_level"`
}

func computeStats(original string, items []ResolvedItem) Stats {
	stats := Stats{
		OriginalLength: len(original),
		PIICount:       len(items),
	}
	if len(items) == 0 {
		return stats
	}

	covered := 0
	total := 0.0
	dist := make(map[string]int, len(items))
	for _, item := range items {
		covered += item.End - item.Start
		total += item.Confidence
		dist[item.Category]++
	}
	if len(original) > 0 {
		stats.CharacterCoverage = float64(covered) / float64(len(original))
	}
	stats.AverageConfidence = total / float64(len(items))
	stats.TypeDistribution = dist
	return stats
}

func typeCounts(items []ResolvedItem) map[string]int {
	counts := make(map[string]int, len(items))
	for _, item := range items {
		counts[item.Category]++
	}
	return counts
}

func sortedTypes(counts map[string]int) []string {
	types := make([]string, 0, len(counts))
	for t := range counts {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
