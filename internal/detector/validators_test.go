package detector

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateLuhn(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantValid bool
	}{
		{"valid visa", "4532015112830366", true},
		{"valid visa 2", "4916338506082832", true},
		{"valid with spaces", "4556 7375 8689 9855", true},
		{"single digit corruption", "4532015112830367", false},
		{"sequential digits", "1234567890123456", false},
		{"too short", "4111111", false},
		{"too long", "12345678901234567890", false},
		{"no digits", "not-a-card", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantValid, validateLuhn(tt.raw))
		})
	}
}

func TestValidateNHSNumber(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantValid bool
	}{
		{"valid with spaces", "401 023 2161", true},
		{"valid plain", "9434765080", true},
		{"valid with dashes", "567-890-1230", true},
		{"check digit ten is invalid", "123 456 7890", false},
		{"bad checksum", "401 023 2162", false},
		{"leading zero", "0123456789", false},
		{"too short", "12345", false},
		{"too long", "94347650801", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantValid, validateNHSNumber(tt.raw))
		})
	}
}

func TestValidateIBAN(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantValid bool
	}{
		{"valid GB", "GB82WEST12345698765432", true},
		{"valid GB with spaces", "GB82 WEST 1234 5698 7654 32", true},
		{"valid DE", "DE89370400440532013000", true},
		{"bad check digits", "GB82WEST12345698765433", false},
		{"digit corruption", "GB82WEST12345698765431", false},
		{"too short", "TOOSHORT", false},
		{"digits where country expected", "1282WEST12345698765432", false},
		{"letters where check digits expected", "GBXXWEST12345698765432", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantValid, validateIBAN(tt.raw))
		})
	}
}

// Every single-digit mutation of a valid IBAN must break the mod-97 check.
func TestValidateIBANSingleDigitMutations(t *testing.T) {
	const valid = "GB82WEST12345698765432"
	for i, ch := range valid {
		if ch < '0' || ch > '9' {
			continue
		}
		mutated := []byte(valid)
		mutated[i] = '0' + byte((int(ch-'0')+1)%10)
		assert.False(t, validateIBAN(string(mutated)), "mutation at %d should fail", i)
	}
}

func TestValidateNINumber(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantValid bool
	}{
		{"valid plain", "AB123456C", true},
		{"valid with spaces", "AB 12 34 56 C", true},
		{"valid with dashes", "AB-12-34-56-C", true},
		{"valid lowercase", "ab123456d", true},
		{"forbidden prefix BG", "BG123456C", false},
		{"forbidden prefix GB", "GB123456C", false},
		{"forbidden prefix ZZ", "ZZ123456C", false},
		{"invalid suffix", "AB123456E", false},
		{"D as first letter", "DA123456C", false},
		{"O as second letter", "AO123456C", false},
		{"wrong length", "AB12345C", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantValid, validateNINumber(tt.raw))
		})
	}
}

func TestValidateUKPostcode(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantValid bool
	}{
		{"westminster", "SW1A 2AA", true},
		{"city", "EC1A 1BB", true},
		{"short district", "M1 1AE", true},
		{"double digit district", "B33 8TH", true},
		{"girobank special case", "GIR 0AA", true},
		{"lowercase", "sw1a 2aa", true},
		{"digits only", "12345", false},
		{"letters only", "INVALID", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantValid, validateUKPostcode(tt.raw))
		})
	}
}

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantValid bool
	}{
		{"plain", "john@example.com", true},
		{"subdomain", "jane.doe@nhs.example.uk", true},
		{"consecutive dots in local part", "john..smith@example.com", false},
		{"dotless domain", "john@localhost", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantValid, validateEmail(tt.raw))
		})
	}
}

func TestValidatePhone(t *testing.T) {
	assert.True(t, validatePhone("07700 900123"))
	assert.True(t, validatePhone("+44 7700 900123"))
	assert.False(t, validatePhone("2024"), "years are not phone numbers")
	assert.False(t, validatePhone("1234567890123456"), "too many digits")
}

func TestValidateUKPhone(t *testing.T) {
	assert.True(t, validateUKPhone("07700 900123"))
	assert.True(t, validateUKPhone("020 7946 0958"))
	assert.False(t, validateUKPhone("7700900123"), "missing leading zero")
	assert.False(t, validateUKPhone("07700"), "too short")
}
