// Package pdfprocessor implements the document chapter-extraction engine.
//
// inspector.go implements the binary structure inspector: it recovers a
// best-effort page count from raw document bytes without a full parse.
package pdfprocessor

import "regexp"

// CountTier indicates how the structural page count was obtained.
type CountTier string

const (
	// TierExactDeclared means the count came from a /Count declaration
	// in the document's object graph.
	TierExactDeclared CountTier = "exact-declared"

	// TierExactCounted means the count came from counting page-object
	// type markers in the byte stream.
	TierExactCounted CountTier = "exact-counted"

	// TierEstimatedFromSize means the count was estimated from the byte
	// length of the document.
	TierEstimatedFromSize CountTier = "estimated-from-size"
)

// PageCountResult is a structural page count plus the confidence tier
// of the strategy that produced it.
type PageCountResult struct {
	// Pages is the page count, always >= 1
	Pages int `json:"pages"`

	// Tier is the confidence tier of the count
	Tier CountTier `json:"tier"`
}

// estimateBytesPerPage assumes ~50 KB per text-dominant page. Image-heavy
// documents will be undercounted, which is an accepted approximation.
const estimateBytesPerPage = 50_000

var (
	// countDeclPattern matches page-count declarations (/Count N) in the
	// serialized object graph. Patterns are pure ASCII, so matching the
	// raw bytes is equivalent to a lossy single-byte decode.
	countDeclPattern = regexp.MustCompile(`/Count\s+(\d+)`)

	// pageObjPattern matches page-object type markers. The trailing
	// character class excludes /Type /Pages (the page tree node).
	pageObjPattern = regexp.MustCompile(`/Type\s*/Page([^s]|$)`)
)

// Inspect recovers a structural page count from raw document bytes.
// It never fails: strategies are tried in priority order and the first
// success wins.
//
//  1. The last /Count declaration in the stream (the outer page tree
//     node typically serializes last) - TierExactDeclared.
//  2. The number of /Type /Page object markers - TierExactCounted.
//  3. A size-based estimate, max(1, ceil(len/50000)) - TierEstimatedFromSize.
//
// This is a pure function over the input bytes.
//
// Example:
//
//	result := Inspect(documentBytes)
//	fmt.Printf("%d pages (%s)\n", result.Pages, result.Tier)
func Inspect(data []byte) PageCountResult {
	// Strategy 1: last declared /Count wins
	if matches := countDeclPattern.FindAllSubmatch(data, -1); len(matches) > 0 {
		last := matches[len(matches)-1]
		if n := parsePositiveInt(last[1]); n >= 1 {
			return PageCountResult{Pages: n, Tier: TierExactDeclared}
		}
	}

	// Strategy 2: count page-object markers
	if markers := pageObjPattern.FindAllIndex(data, -1); len(markers) > 0 {
		return PageCountResult{Pages: len(markers), Tier: TierExactCounted}
	}

	// Strategy 3: size estimate, never below one page
	pages := (len(data) + estimateBytesPerPage - 1) / estimateBytesPerPage
	if pages < 1 {
		pages = 1
	}
	return PageCountResult{Pages: pages, Tier: TierEstimatedFromSize}
}

// parsePositiveInt parses ASCII digits into an int, returning 0 on
// overflow or empty input. Declared counts of zero fall through to the
// next inspection strategy.
func parsePositiveInt(digits []byte) int {
	n := 0
	for _, c := range digits {
		if c < '0' || c > '9' {
			return 0
		}
		n = n*10 + int(c-'0')
		if n > 1_000_000 {
			// Implausible page count, treat as garbage
			return 0
		}
	}
	return n
}
