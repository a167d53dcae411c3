package vault

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKeyHex = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

func TestNewKeyValidation(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantErr bool
	}{
		{"64 hex chars", testKeyHex, false},
		{"32 raw bytes", strings.Repeat("k", 32), false},
		{"too short", "short", true},
		{"63 chars", testKeyHex[:63], true},
		{"64 non-hex chars", strings.Repeat("z", 64), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.key)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidKey)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSealOpenRoundTrip(t *testing.T) {
	v, err := New(testKeyHex)
	require.NoError(t, err)

	mapping := map[string]string{
		"[EMAIL_1]":      "john@example.com",
		"[NHS_NUMBER_1]": "943 476 5080",
	}

	sealed, err := v.SealMapping(mapping)
	require.NoError(t, err)
	assert.NotContains(t, string(sealed), "john@example.com")

	opened, err := v.OpenMapping(sealed)
	require.NoError(t, err)
	assert.Equal(t, mapping, opened)
}

func TestSealProducesFreshNonces(t *testing.T) {
	v, err := New(testKeyHex)
	require.NoError(t, err)

	mapping := map[string]string{"[EMAIL_1]": "john@example.com"}
	first, err := v.SealMapping(mapping)
	require.NoError(t, err)
	second, err := v.SealMapping(mapping)
	require.NoError(t, err)
	assert.NotEqual(t, string(first), string(second))
}

func TestOpenRejectsWrongKey(t *testing.T) {
	sealer, err := New(testKeyHex)
	require.NoError(t, err)
	opener, err := New(strings.Repeat("0", 64))
	require.NoError(t, err)

	sealed, err := sealer.SealMapping(map[string]string{"[EMAIL_1]": "a@b.co"})
	require.NoError(t, err)

	_, err = opener.OpenMapping(sealed)
	assert.ErrorIs(t, err, ErrCorruptEnvelope)
}

func TestOpenRejectsTampering(t *testing.T) {
	v, err := New(testKeyHex)
	require.NoError(t, err)

	sealed, err := v.SealMapping(map[string]string{"[EMAIL_1]": "a@b.co"})
	require.NoError(t, err)

	var env envelope
	require.NoError(t, json.Unmarshal(sealed, &env))

	t.Run("garbage input", func(t *testing.T) {
		_, err := v.OpenMapping([]byte("not json"))
		assert.ErrorIs(t, err, ErrCorruptEnvelope)
	})

	t.Run("unknown version", func(t *testing.T) {
		bad := env
		bad.Version = 99
		raw, _ := json.Marshal(bad)
		_, err := v.OpenMapping(raw)
		assert.ErrorIs(t, err, ErrCorruptEnvelope)
	})

	t.Run("flipped ciphertext", func(t *testing.T) {
		bad := env
		bad.Ciphertext = "AAAA" + bad.Ciphertext[4:]
		raw, _ := json.Marshal(bad)
		_, err := v.OpenMapping(raw)
		assert.ErrorIs(t, err, ErrCorruptEnvelope)
	})
}
