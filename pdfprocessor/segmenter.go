// Package pdfprocessor implements the document chapter-extraction engine.
//
// segmenter.go implements the chapter segmenter molecule: it scans the
// extracted text stream line by line against an ordered list of heading
// patterns and assigns body lines to the currently open chapter.
// It composes:
//   - atoms.go: ParsePageMarker and ParseRomanNumeral
package pdfprocessor

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Chapter is the central output entity of the extraction engine.
// Number is unique within a result set after normalization. Content is
// the concatenation of all lines assigned to the chapter, in original
// order, each line preserved verbatim.
type Chapter struct {
	Number    int    `json:"number"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	PageStart int    `json:"pageStart,omitempty"`
	PageEnd   int    `json:"pageEnd,omitempty"`
}

// headingMatch is the parsed result of a heading pattern hit.
type headingMatch struct {
	number int
	title  string
}

// headingPattern recognizes a line as the start of a new chapter.
// Patterns are evaluated in a fixed priority order, most specific first;
// the first pattern that matches a line wins and no further patterns are
// tried for that line.
type headingPattern struct {
	name       string
	expression *regexp.Regexp
	parse      func(groups []string) (headingMatch, bool)
}

// parseArabic builds a headingMatch from a decimal number group plus an
// optional title group.
func parseArabic(groups []string) (headingMatch, bool) {
	n, err := strconv.Atoi(groups[1])
	if err != nil || n < 1 {
		return headingMatch{}, false
	}
	title := ""
	if len(groups) > 2 {
		title = strings.TrimSpace(groups[2])
	}
	return headingMatch{number: n, title: title}, true
}

// parseRoman builds a headingMatch from a Roman numeral group plus an
// optional title group.
func parseRoman(groups []string) (headingMatch, bool) {
	n, err := ParseRomanNumeral(groups[1])
	if err != nil {
		return headingMatch{}, false
	}
	title := ""
	if len(groups) > 2 {
		title = strings.TrimSpace(groups[2])
	}
	return headingMatch{number: n, title: title}, true
}

// headingPatterns is the ordered pattern list, most specific first.
// Specific patterns must win over generic numeric ones to avoid
// misreading page numbers or list items as chapter headings. This
// heuristic is best-effort: documents with numbered lists near the top
// of a page may mis-segment, a risk accepted rather than engineered
// around.
var headingPatterns = []headingPattern{
	{
		name:       "chapter-titled",
		expression: regexp.MustCompile(`(?i)^chapter\s+(\d+)\s*[:.\-]\s*(.+)$`),
		parse:      parseArabic,
	},
	{
		name:       "chapter-bare",
		expression: regexp.MustCompile(`(?i)^chapter\s+(\d+)\s*$`),
		parse:      parseArabic,
	},
	{
		name:       "part-titled",
		expression: regexp.MustCompile(`(?i)^part\s+(\d+)\s*[:.\-]\s*(.+)$`),
		parse:      parseArabic,
	},
	{
		name:       "section-titled",
		expression: regexp.MustCompile(`(?i)^section\s+(\d+)\s*[:.\-]\s*(.+)$`),
		parse:      parseArabic,
	},
	{
		name:       "chapter-roman",
		expression: regexp.MustCompile(`(?i)^chapter\s+([ivxlcdm]+)\s*(?:[:.\-]\s*(.+))?$`),
		parse:      parseRoman,
	},
	{
		name:       "roman-dotted",
		expression: regexp.MustCompile(`^([IVXLCDM]+)\.\s+(.+)$`),
		parse:      parseRoman,
	},
	{
		name:       "number-dotted",
		expression: regexp.MustCompile(`^(\d{1,4})\.\s+(.+)$`),
		parse:      parseArabic,
	},
	{
		name:       "number-titled",
		expression: regexp.MustCompile(`^(\d{1,4})\s+(\p{Lu}.*)$`),
		parse:      parseArabic,
	},
}

// matchHeading tries each heading pattern in priority order against a
// line. The first successful match wins.
func matchHeading(line string) (headingMatch, bool) {
	for _, p := range headingPatterns {
		groups := p.expression.FindStringSubmatch(line)
		if groups == nil {
			continue
		}
		if m, ok := p.parse(groups); ok {
			return m, true
		}
	}
	return headingMatch{}, false
}

// Segment scans the extracted text stream and recovers chapters.
//
// Page-boundary marker lines only update the running page counter; they
// never emit into any chapter's content. A heading match closes the
// currently open chapter (pageEnd = the page before the current page)
// and opens a new one (pageStart = the current page). Non-heading lines
// append to the open chapter's content; lines before the first heading
// are front matter and are discarded. End of input closes the last open
// chapter with the final page number as its pageEnd.
//
// Example:
//
//	chapters := Segment(result.Text)
//	for _, c := range chapters {
//	    fmt.Printf("%d: %s (pages %d-%d)\n", c.Number, c.Title, c.PageStart, c.PageEnd)
//	}
func Segment(text string) []Chapter {
	var chapters []Chapter
	var open *Chapter
	var body []string

	currentPage := 1

	closeOpen := func(pageEnd int) {
		if open == nil {
			return
		}
		open.Content = strings.Join(body, "\n")
		open.PageEnd = pageEnd
		chapters = append(chapters, *open)
		open = nil
		body = nil
	}

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if page, ok := ParsePageMarker(line); ok {
			currentPage = page
			continue
		}

		if m, ok := matchHeading(line); ok {
			closeOpen(currentPage - 1)
			title := m.title
			if title == "" {
				title = fmt.Sprintf("Chapter %d", m.number)
			}
			open = &Chapter{
				Number:    m.number,
				Title:     title,
				PageStart: currentPage,
			}
			continue
		}

		if open != nil {
			body = append(body, line)
		}
		// No chapter open: pre-chapter front matter is not retained.
	}

	closeOpen(currentPage)
	return chapters
}
