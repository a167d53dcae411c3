package detector

import (
	"math/big"
	"regexp"
	"strings"
)

// ValidatorFunc is a pure structural or checksum check over a raw match.
// Validators never fail with an error; a false result lowers the match's
// confidence during scoring rather than discarding it.
type ValidatorFunc func(raw string) bool

// builtinValidators maps validator ids referenced from pattern definitions
// to their implementations.
func builtinValidators() map[string]ValidatorFunc {
	return map[string]ValidatorFunc{
		"luhn":        validateLuhn,
		"nhs":         validateNHSNumber,
		"iban":        validateIBAN,
		"nino":        validateNINumber,
		"uk_postcode": validateUKPostcode,
		"email":       validateEmail,
		"phone":       validatePhone,
		"uk_phone":    validateUKPhone,
	}
}

// stripNonDigits removes every character outside 0-9.
func stripNonDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, ch := range s {
		if ch >= '0' && ch <= '9' {
			b.WriteRune(ch)
		}
	}
	return b.String()
}

// validateLuhn checks a payment card number with the ISO/IEC 7812 mod-10
// algorithm. Separators are stripped first; card numbers are 13-19 digits.
func validateLuhn(raw string) bool {
	digits := stripNonDigits(raw)
	if len(digits) < 13 || len(digits) > 19 {
		return false
	}
	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := int(digits[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

// validateNHSNumber checks the 10-digit NHS number modulus-11 checksum.
// The first nine digits are weighted 10 down to 2; the check digit is
// (11 - sum mod 11) with 11 mapping to 0 and 10 marking an invalid number.
func validateNHSNumber(raw string) bool {
	digits := stripNonDigits(raw)
	if len(digits) != 10 {
		return false
	}
	// NHS numbers never start with 0.
	if digits[0] == '0' {
		return false
	}
	sum := 0
	for i := 0; i < 9; i++ {
		sum += int(digits[i]-'0') * (10 - i)
	}
	check := 11 - sum%11
	if check == 11 {
		check = 0
	}
	if check == 10 {
		return false
	}
	return check == int(digits[9]-'0')
}

// validateIBAN verifies the ISO 13616 mod-97 check digits. The country code
// and check digits move to the end, letters become their two-digit ordinals
// (A=10 .. Z=35), and the resulting digit string taken as a big integer must
// leave remainder 1 mod 97. math/big handles the width: a 34-character IBAN
// expands to up to 68 digits.
func validateIBAN(raw string) bool {
	iban := strings.ToUpper(raw)
	iban = strings.ReplaceAll(iban, " ", "")
	iban = strings.ReplaceAll(iban, "-", "")

	if len(iban) < 15 || len(iban) > 34 {
		return false
	}
	for _, ch := range iban[:2] {
		if ch < 'A' || ch > 'Z' {
			return false
		}
	}
	for _, ch := range iban[2:4] {
		if ch < '0' || ch > '9' {
			return false
		}
	}

	rearranged := iban[4:] + iban[:4]
	var numeric strings.Builder
	numeric.Grow(len(rearranged) * 2)
	for _, ch := range rearranged {
		switch {
		case ch >= '0' && ch <= '9':
			numeric.WriteRune(ch)
		case ch >= 'A' && ch <= 'Z':
			numeric.WriteByte('0' + byte(ch-'A'+10)/10)
			numeric.WriteByte('0' + byte(ch-'A'+10)%10)
		default:
			return false
		}
	}

	n, ok := new(big.Int).SetString(numeric.String(), 10)
	if !ok {
		return false
	}
	return new(big.Int).Mod(n, big.NewInt(97)).Int64() == 1
}

var niNumberRe = regexp.MustCompile(`^[A-Z]{2}\d{6}[A-D]$`)

// validateNINumber applies the UK National Insurance format rules that the
// match expression cannot express without lookahead: forbidden prefixes and
// disallowed first/second letters.
func validateNINumber(raw string) bool {
	ni := strings.ToUpper(raw)
	ni = strings.ReplaceAll(ni, " ", "")
	ni = strings.ReplaceAll(ni, "-", "")

	if len(ni) != 9 || !niNumberRe.MatchString(ni) {
		return false
	}

	switch ni[:2] {
	case "BG", "GB", "NK", "KN", "TN", "NT", "ZZ":
		return false
	}
	if strings.ContainsRune("DFIQUV", rune(ni[0])) {
		return false
	}
	if strings.ContainsRune("DFIOQUV", rune(ni[1])) {
		return false
	}
	return true
}

var ukPostcodeRe = regexp.MustCompile(`^(GIR 0AA|[A-Z]{1,2}[0-9][0-9A-Z]? ?[0-9][A-Z]{2})$`)

// validateUKPostcode normalizes whitespace and case, then checks the
// standard postcode layout (GIR 0AA is the one special case).
func validateUKPostcode(raw string) bool {
	postcode := strings.Join(strings.Fields(strings.ToUpper(raw)), " ")
	return ukPostcodeRe.MatchString(postcode)
}

/// validateEmail rejects the shapes the match expression lets through:
// consecutive dots in the local part and dotless domains.
func validateEmail(raw string) bool {
	at := strings.LastIndex(raw, "@")
	if at <= 0 || at == len(raw)-1 {
		return false
	}
	local, domain := raw[:at], raw[at+1:]
	if strings.Contains(local, "..") {
		return false
	}
	return strings.Contains(domain, ".")
}

// validatePhone keeps phone candidates within plausible numbering-plan
// length (7-15 digits), which filters out years and short ids.
func validatePhone(raw string) bool {
	n := len(stripNonDigits(raw))
	return n >= 7 && n <= 15
}

// validateUKPhone accepts UK national format numbers: 10 or 11 digits
// starting with 0 once separators are stripped.
func validateUKPhone(raw string) bool {
	digits := stripNonDigits(raw)
	if len(digits) != 10 && len(digits) != 11 {
		return false
	}
	return digits[0] == '0'
}
