// Copyright (c) 2026 OpenShelf. All rights reserved.

package isbn_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openshelf/openshelf/internal/core/isbn"
)

/*
TestCheckDigit verifies the weighted mod-10 checksum against known ISBNs.
*/
func TestCheckDigit(t *testing.T) {
	tests := []struct {
		name     string
		digits12 string
		want     string
	}{
		// Published ISBN-13s with their real check digits.
		{"the_go_programming_language", "978013419044", "0"},
		{"real_world_example", "978316148410", "0"},
		{"sentinel_seed", "978000000000", "2"},
		{"prefix_979", "979600123456", "8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := isbn.CheckDigit(tt.digits12)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, isbn.Valid(tt.digits12+got))
		})
	}
}

/*
TestCheckDigit_WeightedSum asserts the defining property: appending the check
digit yields a 13-digit string whose alternating 1/3-weighted sum is 0 mod 10.
*/
func TestCheckDigit_WeightedSum(t *testing.T) {
	inputs := []string{
		"978600000001",
		"979621999999",
		"978950123456",
		"978111000111",
		"000000000000",
		"999999999999",
	}

	for _, digits12 := range inputs {
		check, err := isbn.CheckDigit(digits12)
		require.NoError(t, err)

		full := digits12 + check
		sum := 0
		for i := 0; i < len(full); i++ {
			digit := int(full[i] - '0')
			if i%2 == 0 {
				sum += digit
			} else {
				sum += digit * 3
			}
		}
		assert.Zero(t, sum%10, "weighted sum of %s must be divisible by 10", full)
	}
}

/*
TestCheckDigit_InvalidInput verifies that anything other than exactly 12 ASCII
digits is rejected with ErrInvalidInput.
*/
func TestCheckDigit_InvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"too_short", "97860012345"},
		{"too_long", "9786001234567"},
		{"letters", "97860012345a"},
		{"unicode_digits", "97860012345١"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := isbn.CheckDigit(tt.input)
			assert.ErrorIs(t, err, isbn.ErrInvalidInput)
		})
	}
}

/*
TestNormalize verifies canonicalization of free-form classification codes.
*/
func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"empty", "", "000"},
		{"whitespace", "   ", "000"},
		{"no_digits", "RO", "000"},
		{"exact_three", "600", "600"},
		{"digits_with_noise", "6-0-0", "600"},
		{"longer_than_three", "60012", "600"},
		{"single_digit", "7", "007"},
		{"two_digits", "42", "042"},
		{"digits_in_text", "code 95x1", "951"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := isbn.Normalize(tt.raw)
			assert.Equal(t, tt.want, got)
			assert.Len(t, got, 3)
		})
	}
}

/*
TestIsAllowed exercises the closed classification policy table, including the
boundaries of both permitted ranges.
*/
func TestIsAllowed(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"000", true},
		{"111", true},
		{"600", true},
		{"621", true},
		{"622", false},
		{"599", false},
		{"949", false},
		{"950", true},
		{"989", true},
		{"990", false},
		{"112", false},
		{"abc", false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, isbn.IsAllowed(tt.code))
		})
	}
}

/*
TestClassificationSegment verifies extraction of the embedded segment.
*/
func TestClassificationSegment(t *testing.T) {
	assert.Equal(t, "600", isbn.ClassificationSegment("9786001234560"))
	assert.Equal(t, "", isbn.ClassificationSegment("97860"))
	assert.Equal(t, "", isbn.ClassificationSegment(""))
}

/*
TestValid covers the full-identifier validation helper.
*/
func TestValid(t *testing.T) {
	check, err := isbn.CheckDigit("978600123456")
	require.NoError(t, err)

	assert.True(t, isbn.Valid("978600123456"+check))
	assert.False(t, isbn.Valid("978600123456"+wrongDigit(check)))
	assert.False(t, isbn.Valid("978600"))
	assert.False(t, isbn.Valid("97860012345X0"))
}

// wrongDigit returns a digit guaranteed to differ from d.
func wrongDigit(d string) string {
	if d == "0" {
		return "1"
	}
	return "0"
}
