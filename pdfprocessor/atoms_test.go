package pdfprocessor

import (
	"errors"
	"testing"
)

func TestParseRomanNumeral(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int
	}{
		{name: "single I", input: "I", expected: 1},
		{name: "additive II", input: "II", expected: 2},
		{name: "additive III", input: "III", expected: 3},
		{name: "subtractive IV", input: "IV", expected: 4},
		{name: "single V", input: "V", expected: 5},
		{name: "subtractive IX", input: "IX", expected: 9},
		{name: "additive XII", input: "XII", expected: 12},
		{name: "subtractive XL", input: "XL", expected: 40},
		{name: "additive LXVI", input: "LXVI", expected: 66},
		{name: "subtractive XC", input: "XC", expected: 90},
		{name: "subtractive CD", input: "CD", expected: 400},
		{name: "subtractive CM", input: "CM", expected: 900},
		{name: "MCM is 1900", input: "MCM", expected: 1900},
		{name: "MCMXCIV is 1994", input: "MCMXCIV", expected: 1994},
		{name: "largest standard numeral", input: "MMMCMXCIX", expected: 3999},
		{name: "lowercase accepted", input: "xiv", expected: 14},
		{name: "surrounding whitespace trimmed", input: "  XV  ", expected: 15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseRomanNumeral(tt.input)
			if err != nil {
				t.Fatalf("ParseRomanNumeral(%q) returned error: %v", tt.input, err)
			}
			if result != tt.expected {
				t.Errorf("ParseRomanNumeral(%q) = %d, want %d", tt.input, result, tt.expected)
			}
		})
	}
}

func TestParseRomanNumeralInvalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty string", input: ""},
		{name: "whitespace only", input: "   "},
		{name: "non-numeral characters", input: "ABC"},
		{name: "mixed with digits", input: "X2"},
		{name: "embedded space", input: "X I"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRomanNumeral(tt.input)
			if err == nil {
				t.Fatalf("ParseRomanNumeral(%q) expected error, got nil", tt.input)
			}
			if !errors.Is(err, ErrInvalidRomanNumeral) {
				t.Errorf("ParseRomanNumeral(%q) error = %v, want ErrInvalidRomanNumeral", tt.input, err)
			}
		})
	}
}

func TestPageMarkerRoundTrip(t *testing.T) {
	for _, page := range []int{1, 2, 10, 999} {
		marker := FormatPageMarker(page)
		parsed, ok := ParsePageMarker(marker)
		if !ok {
			t.Fatalf("ParsePageMarker(%q) did not recognize its own format", marker)
		}
		if parsed != page {
			t.Errorf("ParsePageMarker(%q) = %d, want %d", marker, parsed, page)
		}
	}
}

func TestParsePageMarkerRejectsNonMarkers(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{name: "plain text", line: "Chapter 1: Intro"},
		{name: "marker with prefix", line: "x [[PAGE 1]]"},
		{name: "marker with suffix", line: "[[PAGE 1]] x"},
		{name: "zero page", line: "[[PAGE 0]]"},
		{name: "missing number", line: "[[PAGE ]]"},
		{name: "empty line", line: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := ParsePageMarker(tt.line); ok {
				t.Errorf("ParsePageMarker(%q) = true, want false", tt.line)
			}
		})
	}
}

func BenchmarkParseRomanNumeral(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = ParseRomanNumeral("MCMXCIV")
	}
}
