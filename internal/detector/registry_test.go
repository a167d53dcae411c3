package detector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRegion(t *testing.T) {
	tests := []struct {
		region         Region
		wantCategories []string
	}{
		{RegionCommon, []string{"email", "credit_card", "phone"}},
		{RegionUK, []string{"email", "credit_card", "phone", "uk_phone", "uk_postcode", "nhs_number", "ni_number", "iban"}},
		{RegionEU, []string{"email", "credit_card", "phone", "iban"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.region), func(t *testing.T) {
			defs, err := loadRegion(tt.region)
			require.NoError(t, err)
			got := make([]string, len(defs))
			for i, def := range defs {
				got[i] = def.Name
			}
			assert.ElementsMatch(t, tt.wantCategories, got)
		})
	}
}

func TestLoadRegionUnknown(t *testing.T) {
	_, err := loadRegion(Region("mars"))
	assert.ErrorIs(t, err, ErrUnknownRegion)
}

func TestParseRegion(t *testing.T) {
	region, err := ParseRegion("UK")
	require.NoError(t, err)
	assert.Equal(t, RegionUK, region)

	_, err = ParseRegion("atlantis")
	assert.ErrorIs(t, err, ErrUnknownRegion)
}

func TestMergePatternsOverride(t *testing.T) {
	builtin := []PatternDefinition{
		{Name: "email", Regex: `old`, Priority: 10, BaseConfidence: 0.95},
		{Name: "phone", Regex: `p`, Priority: 3, BaseConfidence: 0.7},
	}
	custom := []PatternDefinition{
		{Name: "email", Regex: `new`, Priority: 2, BaseConfidence: 0.5},
		{Name: "employee_id", Regex: `e`, Priority: 4, BaseConfidence: 0.8},
	}

	merged := mergePatterns(builtin, custom)
	require.Len(t, merged, 3)
	// Override replaces in place, keeping registry order stable.
	assert.Equal(t, "email", merged[0].Name)
	assert.Equal(t, "new", merged[0].Regex)
	assert.Equal(t, 2, merged[0].Priority)
	assert.Equal(t, "phone", merged[1].Name)
	assert.Equal(t, "employee_id", merged[2].Name)
}

func TestCompilePatternsFailFast(t *testing.T) {
	validators := builtinValidators()
	tests := []struct {
		name    string
		def     PatternDefinition
		wantErr error
	}{
		{
			"uncompilable regex",
			PatternDefinition{Name: "broken", Regex: `(unclosed`, BaseConfidence: 0.5},
			ErrInvalidPattern,
		},
		{
			"matches empty string",
			PatternDefinition{Name: "empty", Regex: `a*`, BaseConfidence: 0.5},
			ErrInvalidPattern,
		},
		{
			"bad category name",
			PatternDefinition{Name: "Bad Name!", Regex: `x+`, BaseConfidence: 0.5},
			ErrInvalidPattern,
		},
		{
			"confidence out of range",
			PatternDefinition{Name: "loud", Regex: `x+`, BaseConfidence: 1.5},
			ErrInvalidPattern,
		},
		{
			"unknown validator id",
			PatternDefinition{Name: "custom", Regex: `x+`, BaseConfidence: 0.5, Validator: "nope"},
			ErrUnknownValidator,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := compilePatterns([]PatternDefinition{tt.def}, validators)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCompilePatternsWiresValidators(t *testing.T) {
	defs := []PatternDefinition{
		{Name: "card", Regex: `\d{16}`, BaseConfidence: 0.9, Validator: "luhn"},
		{Name: "tag", Regex: `#\w+`, BaseConfidence: 0.4},
	}
	compiled, err := compilePatterns(defs, builtinValidators())
	require.NoError(t, err)
	require.Len(t, compiled, 2)
	assert.NotNil(t, compiled[0].validate)
	assert.Nil(t, compiled[1].validate)
}
