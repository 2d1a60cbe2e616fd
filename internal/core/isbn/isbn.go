// Copyright (c) 2026 OpenShelf. All rights reserved.

/*
Package isbn implements ISBN-13 synthesis for the OpenShelf catalog.

An identifier is a 13-digit numeric string composed as

	prefix(3) ++ classification(3) ++ publication(6) ++ check(1)

where the prefix is one of the registered EAN prefixes ("978", "979"), the
classification segment is derived from the primary author's nationality code,
the publication segment is drawn uniformly at random, and the final digit is
the ISBN-13 check digit over the preceding twelve.

Core Responsibility:

  - Checksum: computing and validating the weighted mod-10 check digit.
  - Normalization: canonicalizing free-form nationality codes to 3 digits.
  - Policy: the closed allow-list of classification codes eligible as a seed.
  - Generation: the bounded-retry uniqueness search against a registry oracle.

The package is pure domain logic; the registry it searches against is an
injected [Oracle], so generation is testable without a storage backend.
*/
package isbn

import (
	"errors"
	"strings"
)

// Identifier layout constants.
const (
	// Length is the total number of digits in an ISBN-13.
	Length = 13

	// SeedLength is the number of digits covered by the check digit.
	SeedLength = 12

	// codeLength is the width of the classification segment.
	codeLength = 3

	// classificationOffset is where the classification segment starts.
	classificationOffset = 3

	// SentinelCode is the universal fallback classification code used when
	// no valid or allowed code is available. Entries with missing
	// classification data still get a valid identifier under it.
	SentinelCode = "000"
)

// Prefixes holds the registered EAN prefixes an identifier may start with.
var Prefixes = [...]string{"978", "979"}

// ErrInvalidInput reports a checksum input that is not exactly 12 ASCII
// digits. This is a programmer error, never expected from validated callers.
var ErrInvalidInput = errors.New("isbn: check digit input must be exactly 12 digits")

// # Checksum

// CheckDigit computes the ISBN-13 check digit for the first 12 digits.
//
// Each digit is weighted alternately ×1 (even 0-based position) and ×3 (odd
// position); the check digit is (10 − (sum mod 10)) mod 10. Appending it
// yields a 13-digit string whose weighted sum is ≡ 0 mod 10.
func CheckDigit(digits12 string) (string, error) {
	if len(digits12) != SeedLength || !isDigits(digits12) {
		return "", ErrInvalidInput
	}

	total := 0
	for i := 0; i < len(digits12); i++ {
		digit := int(digits12[i] - '0')
		if i%2 == 0 {
			total += digit
		} else {
			total += digit * 3
		}
	}

	check := (10 - (total % 10)) % 10
	return string(rune('0' + check)), nil
}

// Valid reports whether candidate is a well-formed ISBN-13 with a correct
// check digit.
func Valid(candidate string) bool {
	if len(candidate) != Length || !isDigits(candidate) {
		return false
	}
	check, err := CheckDigit(candidate[:SeedLength])
	if err != nil {
		return false
	}
	return check == candidate[SeedLength:]
}

// ClassificationSegment extracts the embedded classification segment of an
// identifier (digits at offset 3..6). It returns the empty string when the
// identifier is too short to carry one.
func ClassificationSegment(identifier string) string {
	if len(identifier) < classificationOffset+codeLength {
		return ""
	}
	return identifier[classificationOffset : classificationOffset+codeLength]
}

// # Classification Codes

// Normalize canonicalizes a free-form classification code into a fixed-width
// 3-digit code.
//
// All non-digit characters are stripped. If no digits remain (or the input is
// empty), the [SentinelCode] is returned. Three or more remaining digits are
// truncated to the first three; one or two are left-padded with zeros.
//
// Malformed input is never an error: degradation to the sentinel is a
// deliberate, named policy so catalog entries with missing classification
// data still receive a valid identifier.
func Normalize(raw string) string {
	var digits strings.Builder
	for _, ch := range strings.TrimSpace(raw) {
		if ch >= '0' && ch <= '9' {
			digits.WriteRune(ch)
		}
	}

	code := digits.String()
	switch {
	case code == "":
		return SentinelCode
	case len(code) >= codeLength:
		return code[:codeLength]
	default:
		return strings.Repeat("0", codeLength-len(code)) + code
	}
}

// IsAllowed reports whether a normalized 3-digit classification code may seed
// an identifier.
//
// The policy permits the sentinel codes "000" and "111" and the numeric
// ranges 600–621 and 950–989 inclusive. This is a closed policy table, not
// derived from any external registry — callers needing a different policy
// must change this table, not work around it.
func IsAllowed(code3 string) bool {
	if code3 == SentinelCode || code3 == "111" {
		return true
	}
	if len(code3) != codeLength || !isDigits(code3) {
		return false
	}

	n := int(code3[0]-'0')*100 + int(code3[1]-'0')*10 + int(code3[2]-'0')
	if n >= 600 && n <= 621 {
		return true
	}
	if n >= 950 && n <= 989 {
		return true
	}
	return false
}

// isDigits reports whether s consists exclusively of ASCII digits.
func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return len(s) > 0
}
