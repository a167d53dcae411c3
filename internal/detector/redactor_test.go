package detector

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenFor(t *testing.T) {
	item := ResolvedItem{Category: "email", Value: "john@example.com", Index: 2}

	assert.Equal(t, "[EMAIL_2]", tokenFor(StrategyToken, item))
	assert.Equal(t, "[EMAIL]", tokenFor(StrategyCategory, item))
	assert.Regexp(t, regexp.MustCompile(`^\[EMAIL_[0-9a-f]{6}\]$`), tokenFor(StrategyHash, item))
}

func TestHashTokenCorrelatesByValue(t *testing.T) {
	a := ResolvedItem{Category: "email", Value: "john@example.com", Index: 1}
	b := ResolvedItem{Category: "email", Value: "john@example.com", Index: 2}
	c := ResolvedItem{Category: "email", Value: "jane@example.com", Index: 3}

	// The hash covers the raw value, so identical values share a token and
	// distinct values get distinct tokens regardless of index.
	assert.Equal(t, tokenFor(StrategyHash, a), tokenFor(StrategyHash, b))
	assert.NotEqual(t, tokenFor(StrategyHash, a), tokenFor(StrategyHash, c))
}

func TestApplyRedactionToken(t *testing.T) {
	text := "mail john@example.com or jane@example.com"
	items := []ResolvedItem{
		{Category: "email", Value: "john@example.com", Start: 5, End: 21, Index: 1},
		{Category: "email", Value: "jane@example.com", Start: 25, End: 41, Index: 2},
	}

	redacted, mapping := applyRedaction(StrategyToken, text, items)
	assert.Equal(t, "mail [EMAIL_1] or [EMAIL_2]", redacted)
	assert.Equal(t, map[string]string{
		"[EMAIL_1]": "john@example.com",
		"[EMAIL_2]": "jane@example.com",
	}, mapping)
}

func TestApplyRedactionCategoryCollision(t *testing.T) {
	text := "mail john@example.com or jane@example.com"
	items := []ResolvedItem{
		{Category: "email", Value: "john@example.com", Start: 5, End: 21, Index: 1},
		{Category: "email", Value: "jane@example.com", Start: 25, End: 41, Index: 2},
	}

	redacted, mapping := applyRedaction(StrategyCategory, text, items)
	assert.Equal(t, "mail [EMAIL] or [EMAIL]", redacted)
	// Lossy by design: the colliding token keeps only the first value.
	require.Len(t, mapping, 1)
	assert.Equal(t, "john@example.com", mapping["[EMAIL]"])
}

func TestApplyRedactionNoItems(t *testing.T) {
	redacted, mapping := applyRedaction(StrategyToken, "nothing here", nil)
	assert.Equal(t, "nothing here", redacted)
	assert.Empty(t, mapping)
}

func TestRestoreText(t *testing.T) {
	mapping := map[string]string{
		"[EMAIL_1]":    "john@example.com",
		"[UK_PHONE_1]": "07700 900123",
	}
	restored, err := restoreText("Contact [EMAIL_1] or call [UK_PHONE_1]", mapping)
	require.NoError(t, err)
	assert.Equal(t, "Contact john@example.com or call 07700 900123", restored)
}

func TestRestoreTextRejectsMalformedKeys(t *testing.T) {
	tests := []struct {
		name string
		key  string
	}{
		{"missing brackets", "EMAIL_1"},
		{"embedded space", "[EM AIL]"},
		{"nested bracket", "[[EMAIL_1]"},
		{"empty token", "[]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := restoreText("text", map[string]string{tt.key: "value"})
			assert.ErrorIs(t, err, ErrRestoreMismatch)
		})
	}
}
