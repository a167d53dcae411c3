package detector

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

const hashTokenLength = 6

// tokenFor builds the replacement token for a resolved item under the
// given strategy. Deterministic in (category, index, value).
func tokenFor(strategy Strategy, item ResolvedItem) string {
	category := strings.ToUpper(item.Category)
	switch strategy {
	case StrategyHash:
		sum := sha256.Sum256([]byte(item.Value))
		return "[" + category + "_" + hex.EncodeToString(sum[:])[:hashTokenLength] + "]"
	case StrategyCategory:
		return "[" + category + "]"
	default:
		return fmt.Sprintf("[%s_%d]", category, item.Index)
	}
}

// applyRedaction replaces every resolved span with its token and returns
// the redacted text plus the token-to-original mapping. Items arrive sorted
// by start; replacement walks them in descending start order so earlier
// replacements never invalidate the original-text offsets of the rest.
//
// When token generation collides (the category strategy always does for
// repeated categories, the hash strategy only for identical values) the
// mapping keeps the value of the first occurrence. For the hash strategy
// that loses nothing; for the category strategy it is the documented
// data-loss edge of an intentionally lossy mode.
func applyRedaction(strategy Strategy, text string, items []ResolvedItem) (string, map[string]string) {
	if len(items) == 0 {
		return text, map[string]string{}
	}

	tokens := make([]string, len(items))
	mapping := make(map[string]string, len(items))
	for i, item := range items {
		tokens[i] = tokenFor(strategy, item)
		if _, seen := mapping[tokens[i]]; !seen {
			mapping[tokens[i]] = item.Value
		}
	}

	redacted := []byte(text)
	for i := len(items) - 1; i >= 0; i-- {
		item := items[i]
		redacted = append(redacted[:item.Start], append([]byte(tokens[i]), redacted[item.End:]...)...)
	}
	return string(redacted), mapping
}

// tokenKeyRe is the shape every legitimate mapping key has: one pair of
// brackets around the category namespace and its index or hash suffix.
// Bracket delimiting also guarantees no token is a substring of another
// token's replacement output.
var tokenKeyRe = regexp.MustCompile(`^\[[A-Za-z0-9_]+\]$`)

// restoreText inverts a redaction by exact-substring replacement of each
// mapping token. Keys that do not look like tokens are rejected: an
// adversarial or corrupted mapping must fail loudly rather than rewrite
// arbitrary text. Keys are processed in sorted order for determinism.
// Under the category strategy a mapping is inherently partial, so restore
// cannot promise the original text there.
func restoreText(redacted string, mapping map[string]string) (string, error) {
	keys := make([]string, 0, len(mapping))
	for token := range mapping {
		if !tokenKeyRe.MatchString(token) {
			return "", fmt.Errorf("%w: %q", ErrRestoreMismatch, token)
		}
		keys = append(keys, token)
	}
	sort.Strings(keys)

	restored := redacted
	for _, token := range keys {
		restored = strings.ReplaceAll(restored, token, mapping[token])
	}
	return restored, nil
}
