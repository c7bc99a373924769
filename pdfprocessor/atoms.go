// Package pdfprocessor implements the document chapter-extraction engine.
// This package handles structural page counting, text layer extraction,
// chapter segmentation, and result normalization.
package pdfprocessor

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidRomanNumeral is returned when a string cannot be decoded
// as a Roman numeral.
var ErrInvalidRomanNumeral = errors.New("invalid roman numeral")

// romanValues maps Roman numeral characters to their integer values.
var romanValues = map[rune]int{
	'I': 1,
	'V': 5,
	'X': 10,
	'L': 50,
	'C': 100,
	'D': 500,
	'M': 1000,
}

// ParseRomanNumeral decodes a Roman numeral using standard subtractive
// notation: a smaller numeral appearing before a larger one subtracts,
// otherwise it adds.
//
// This is a pure function with no dependencies - it simply performs
// character lookup and accumulation.
//
// Example:
//
//	n, err := ParseRomanNumeral("IV")  // Returns 4
//	n, err := ParseRomanNumeral("MCM") // Returns 1900
func ParseRomanNumeral(s string) (int, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return 0, ErrInvalidRomanNumeral
	}

	total := 0
	prev := 0
	// Walk right to left: subtract when a smaller value precedes a larger one
	for i := len(s) - 1; i >= 0; i-- {
		value, ok := romanValues[rune(s[i])]
		if !ok {
			return 0, fmt.Errorf("%w: unexpected character %q in %q", ErrInvalidRomanNumeral, s[i], s)
		}
		if value < prev {
			total -= value
		} else {
			total += value
			prev = value
		}
	}

	if total <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidRomanNumeral, s)
	}
	return total, nil
}

// pageMarkerPattern matches the page-boundary marker lines the extractor
// inserts between pages so the segmenter can recover page attribution
// from the text stream alone.
var pageMarkerPattern = regexp.MustCompile(`^\[\[PAGE (\d+)\]\]$`)

// FormatPageMarker returns the page-boundary marker line for a page number.
// The marker format is an internal contract between the text extractor
// and the chapter segmenter.
//
// Example:
//
//	marker := FormatPageMarker(3) // Returns "[[PAGE 3]]"
func FormatPageMarker(pageNumber int) string {
	return fmt.Sprintf("[[PAGE %d]]", pageNumber)
}

// ParsePageMarker reports whether a line is a page-boundary marker and,
// if so, returns the page number it carries.
//
// Example:
//
//	n, ok := ParsePageMarker("[[PAGE 12]]") // Returns 12, true
//	n, ok := ParsePageMarker("Chapter 1")   // Returns 0, false
func ParsePageMarker(line string) (int, bool) {
	m := pageMarkerPattern.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}
