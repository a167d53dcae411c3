// Package detector locates, validates and redacts personally identifiable
// information in text.
//
// Detection runs every registered pattern over the input, validates
// candidates with category-specific checksum or format rules (Luhn,
// NHS modulus-11, IBAN mod-97, NI format), scores them, and resolves
// overlaps into a single deterministic span set. Redaction rewrites the
// resolved spans into tokens under one of three strategies and returns a
// reversible token-to-value mapping; Restore inverts it.
//
// A Detector is immutable after New and safe for concurrent use: each call
// works on its own text with no shared mutable state.
package detector

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"

	privataotel "github.com/privata-io/privata/internal/otel"
)

var tracer = privataotel.Tracer("github.com/privata-io/privata/internal/detector")

// CandidateSource supplies additional candidates from outside the pattern
// registry, e.g. an external NER model. Sources feed the same resolution
// path as pattern matches, so their spans compete on priority and
// confidence with no special-casing.
type CandidateSource interface {
	// Name identifies the source in logs.
	Name() string
	// Candidates returns raw candidate spans for text. Offsets must be
	// byte offsets into text; zero-length spans are ignored.
	Candidates(ctx context.Context, text string) ([]Candidate, error)
}

// Detector is the configured PII engine. All configuration is resolved in
// New; nothing mutates afterwards.
type Detector struct {
	region        Region
	level         Level
	strategy      Strategy
	minConfidence float64
	patterns      []pattern
	sources       []CandidateSource
	workers       int
}

type options struct {
	region        Region
	level         Level
	strategy      Strategy
	minConfidence float64
	haveMinConf   bool
	custom        []PatternDefinition
	validators    map[string]ValidatorFunc
	sources       []CandidateSource
	workers       int
}

// Option configures a Detector via the functional options pattern.
type Option func(*options)

// WithRegion selects the built-in pattern bundle. Default: uk.
func WithRegion(region Region) Option {
	return func(o *options) { o.region = region }
}

// WithLevel selects the confidence threshold profile. Default: strict.
func WithLevel(level Level) Option {
	return func(o *options) { o.level = level }
}

// WithStrategy selects the redaction strategy. Default: token.
func WithStrategy(strategy Strategy) Option {
	return func(o *options) { o.strategy = strategy }
}

// WithMinConfidence overrides the level's threshold with an explicit value.
func WithMinConfidence(min float64) Option {
	return func(o *options) { o.minConfidence = min; o.haveMinConf = true }
}

// WithCustomPatterns appends user-supplied definitions. A definition whose
// name matches a built-in pattern replaces it.
func WithCustomPatterns(defs ...PatternDefinition) Option {
	return func(o *options) { o.custom = append(o.custom, defs...) }
}

// WithValidator registers an additional validator id for custom patterns
// to reference. Registering a built-in id replaces it.
func WithValidator(id string, fn ValidatorFunc) Option {
	return func(o *options) { o.validators[id] = fn }
}

// WithCandidateSource injects an external candidate source (e.g. NER).
func WithCandidateSource(source CandidateSource) Option {
	return func(o *options) { o.sources = append(o.sources, source) }
}

// New builds a Detector. All configuration problems (unknown region,
// malformed or uncompilable patterns, unknown validator ids) surface
// here, never from Detect.
func New(opts ...Option) (*Detector, error) {
	o := options{
		region:     RegionUK,
		level:      LevelStrict,
		strategy:   StrategyToken,
		validators: builtinValidators(),
		workers:    defaultMatchWorkers,
	}
	for _, opt := range opts {
		opt(&o)
	}

	builtin, err := loadRegion(o.region)
	if err != nil {
		return nil, err
	}
	switch o.level {
	case LevelStrict, LevelModerate, LevelLenient:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownLevel, o.level)
	}
	switch o.strategy {
	case StrategyToken, StrategyHash, StrategyCategory:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, o.strategy)
	}

	compiled, err := compilePatterns(mergePatterns(builtin, o.custom), o.validators)
	if err != nil {
		return nil, err
	}

	minConfidence := o.level.Threshold()
	if o.haveMinConf {
		if o.minConfidence < 0 || o.minConfidence > 1 {
			return nil, fmt.Errorf("%w: min confidence %v outside [0,1]", ErrUnknownLevel, o.minConfidence)
		}
		minConfidence = o.minConfidence
	}

	d := &Detector{
		region:        o.region,
		level:         o.level,
		strategy:      o.strategy,
		minConfidence: minConfidence,
		patterns:      compiled,
		sources:       o.sources,
		workers:       o.workers,
	}

	log.Debug().
		Str("region", string(o.region)).
		Str("detection_level", string(o.level)).
		Str("redaction_strategy", string(o.strategy)).
		Int("patterns", len(compiled)).
		Int("candidate_sources", len(o.sources)).
		Msg("detector initialized")

	return d, nil
}

// Region returns the configured region.
func (d *Detector) Region() Region { return d.region }

// Level returns the configured detection level.
func (d *Detector) Level() Level { return d.level }

// Strategy returns the configured redaction strategy.
func (d *Detector) Strategy() Strategy { return d.strategy }

// Patterns returns the active pattern definitions in registry order.
func (d *Detector) Patterns() []PatternDefinition {
	defs := make([]PatternDefinition, len(d.patterns))
	for i := range d.patterns {
		defs[i] = d.patterns[i].def
	}
	return defs
}

// Detect returns the final resolved span set for text, sorted by start
// offset, with per-category indexes assigned. Empty input and input with
// no matches both yield an empty, non-error result.
func (d *Detector) Detect(ctx context.Context, text string) ([]ResolvedItem, error) {
	ctx, span := tracer.Start(ctx, "detector.detect")
	defer span.End()

	if text == "" {
		return []ResolvedItem{}, nil
	}

	candidates, err := d.matchCandidates(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("collecting candidates: %w", err)
	}
	items := resolve(candidates, d.minConfidence)

	span.SetAttributes(
		attribute.Int("pii.candidates", len(candidates)),
		attribute.Int("pii.resolved", len(items)),
	)
	return items, nil
}

// Redact detects PII in text and rewrites every resolved span into a token
// under the configured strategy. The returned mapping inverts the
// redaction for the token and hash strategies; the category strategy is
// lossy and its mapping keeps only the first value per token.
func (d *Detector) Redact(ctx context.Context, text string) (*RedactionResult, error) {
	ctx, span := tracer.Start(ctx, "detector.redact")
	defer span.End()

	items, err := d.Detect(ctx, text)
	if err != nil {
		return nil, err
	}

	redacted, mapping := applyRedaction(d.strategy, text, items)

	span.SetAttributes(
		attribute.Int("pii.resolved", len(items)),
		attribute.String("pii.strategy", string(d.strategy)),
	)
	log.Debug().
		Int("pii_count", len(items)).
		Str("redaction_strategy", string(d.strategy)).
		Func(privataotel.LogTraceFields(ctx)).
		Msg("text redacted")

	return &RedactionResult{
		RedactedText: redacted,
		Items:        items,
		Mapping:      mapping,
		Stats:        computeStats(text, items),
	}, nil
}

// Restore replaces every mapping token in redactedText with its original
// value. It fails with ErrRestoreMismatch when the mapping holds keys that
// are not well-formed tokens. Not meaningful for the category strategy,
// whose mappings are documented as partial.
func (d *Detector) Restore(redactedText string, mapping map[string]string) (string, error) {
	return restoreText(redactedText, mapping)
}

// ProcessForIngestion redacts a document and returns the redacted text
// plus an audit-ready summary. Designed for ingestion pipelines that index
// the redacted text and log the metadata; performs no I/O itself.
func (d *Detector) ProcessForIngestion(ctx context.Context, document, documentID string) (string, IngestionMetadata, error) {
	result, err := d.Redact(ctx, document)
	if err != nil {
		return "", IngestionMetadata{}, err
	}

	counts := typeCounts(result.Items)
	meta := IngestionMetadata{
		DocumentID:     documentID,
		PIIDetected:    len(result.Items) > 0,
		PIICount:       len(result.Items),
		PIITypes:       sortedTypes(counts),
		PIITypeCounts:  counts,
		Region:         string(d.region),
		DetectionLevel: string(d.level),
	}
	return result.RedactedText, meta, nil
}
