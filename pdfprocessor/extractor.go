// Package pdfprocessor implements the document chapter-extraction engine.
//
// extractor.go implements the text layer extractor molecule. It loads a
// full document model with the ledongthuc/pdf engine, reconstructs each
// page's text from positioned fragments, and concatenates pages into a
// single stream with page-boundary markers. It composes:
//   - atoms.go: FormatPageMarker for page attribution in the text stream
package pdfprocessor

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
	"golang.org/x/sync/errgroup"
)

// ExtractedPage represents one page's reconstructed text.
type ExtractedPage struct {
	// PageNumber is the 1-indexed page number
	PageNumber int

	// Text is the line-reconstructed text, top-to-bottom
	Text string
}

// DocumentMetadata holds the descriptive fields of the document's Info
// dictionary. A nil *DocumentMetadata means the engine exposed no
// metadata; absence is meaningful and is never defaulted to empty strings.
type DocumentMetadata struct {
	Title        string `json:"title,omitempty"`
	Author       string `json:"author,omitempty"`
	Subject      string `json:"subject,omitempty"`
	Creator      string `json:"creator,omitempty"`
	Producer     string `json:"producer,omitempty"`
	CreationDate string `json:"creationDate,omitempty"`
	ModDate      string `json:"modDate,omitempty"`
}

// TextResult contains the output of a successful text layer extraction.
type TextResult struct {
	// Pages contains the per-page results that yielded text
	Pages []ExtractedPage

	// Text is the full concatenated stream, each page prefixed with a
	// page-boundary marker line carrying its page number
	Text string

	// PageCount is the verified page count from the loaded document
	// model. It supersedes the structural inspector's estimate.
	PageCount int

	// Metadata is the document's Info dictionary, nil if unavailable
	Metadata *DocumentMetadata

	// SkippedPages is the number of pages that failed extraction or
	// yielded no text
	SkippedPages int
}

// ExtractorConfig holds configuration for text layer extraction.
type ExtractorConfig struct {
	// LoadTimeout is the hard budget for loading and walking the
	// document. Elapsing is treated identically to a load failure.
	LoadTimeout time.Duration

	// LineTolerance is the vertical distance (in logical units) within
	// which text fragments are clustered into the same line.
	LineTolerance float64

	// MaxParallelPages bounds concurrent per-page extraction. Pages are
	// independent; final concatenation always follows page order.
	// Values < 1 mean sequential extraction.
	MaxParallelPages int
}

// DefaultExtractorConfig returns sensible default configuration.
func DefaultExtractorConfig() ExtractorConfig {
	return ExtractorConfig{
		LoadTimeout:      30 * time.Second,
		LineTolerance:    5.0,
		MaxParallelPages: 4,
	}
}

// TextExtractor extracts line-reconstructed text from document bytes.
type TextExtractor struct {
	config ExtractorConfig
}

// NewTextExtractor creates a TextExtractor with the given configuration.
func NewTextExtractor(config ExtractorConfig) *TextExtractor {
	if config.LoadTimeout <= 0 {
		config.LoadTimeout = 30 * time.Second
	}
	if config.LineTolerance <= 0 {
		config.LineTolerance = 5.0
	}
	return &TextExtractor{config: config}
}

// NewDefaultTextExtractor creates a TextExtractor with default configuration.
func NewDefaultTextExtractor() *TextExtractor {
	return NewTextExtractor(DefaultExtractorConfig())
}

// Extract attempts to load a full document model from the bytes and
// recover ordered, line-reconstructed text together with any embedded
// metadata.
//
// Failure semantics: a load failure or engine panic returns ErrLoadFailed,
// exceeding the time budget returns ErrLoadTimeout, and a document with
// no extractable text returns ErrNoTextContent. All three are expected
// degraded paths; the caller proceeds to the page-count-only tier.
// Per-page failures are caught individually and the page is omitted from
// the text stream.
//
// Example:
//
//	extractor := NewDefaultTextExtractor()
//	result, err := extractor.Extract(ctx, documentBytes)
//	if err != nil {
//	    // degrade to page-count-only
//	}
func (e *TextExtractor) Extract(ctx context.Context, data []byte) (*TextResult, error) {
	ctx, cancel := context.WithTimeout(ctx, e.config.LoadTimeout)
	defer cancel()

	type outcome struct {
		result *TextResult
		err    error
	}
	done := make(chan outcome, 1)

	go func() {
		result, err := e.extractAll(data)
		done <- outcome{result: result, err: err}
	}()

	select {
	case o := <-done:
		return o.result, o.err
	case <-ctx.Done():
		if ctx.Err() == context.DeadlineExceeded {
			return nil, ErrLoadTimeout
		}
		return nil, ctx.Err()
	}
}

// extractAll loads the document model and walks every page.
// The engine parses untrusted input and panics on malformed structures,
// so the whole walk runs under a recover that maps to ErrLoadFailed.
func (e *TextExtractor) extractAll(data []byte) (result *TextResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("%w: engine panic: %v", ErrLoadFailed, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadFailed, err)
	}

	pageCount := reader.NumPage()
	if pageCount < 1 {
		return nil, fmt.Errorf("%w: document reports no pages", ErrLoadFailed)
	}

	result = &TextResult{
		PageCount: pageCount,
		Metadata:  readMetadata(reader),
	}

	// Pages are independent; extract them with bounded parallelism and
	// reassemble strictly in page number order.
	texts := make([]string, pageCount)
	limit := e.config.MaxParallelPages
	if limit < 1 {
		limit = 1
	}
	var g errgroup.Group
	g.SetLimit(limit)
	for i := 1; i <= pageCount; i++ {
		pageNumber := i
		g.Go(func() error {
			texts[pageNumber-1] = e.extractPage(reader, pageNumber)
			return nil
		})
	}
	// Page workers never return errors; a failed page yields empty text.
	_ = g.Wait()

	var stream strings.Builder
	for i := 1; i <= pageCount; i++ {
		pageText := texts[i-1]

		// Every page gets a marker so downstream page attribution stays
		// correct even when a page yields nothing.
		stream.WriteString(FormatPageMarker(i))
		stream.WriteByte('\n')

		if pageText == "" {
			result.SkippedPages++
			continue
		}
		result.Pages = append(result.Pages, ExtractedPage{PageNumber: i, Text: pageText})
		stream.WriteString(pageText)
		stream.WriteByte('\n')
	}
	result.Text = stream.String()

	if len(result.Pages) == 0 {
		return result, ErrNoTextContent
	}
	return result, nil
}

// extractPage reconstructs one page's text from positioned fragments.
// Fragments are clustered into lines by vertical position within the
// configured tolerance, sorted left-to-right within a line, and lines
// sorted top-to-bottom. One bad page must not abort the document, so
// panics are recovered and the page is skipped.
func (e *TextExtractor) extractPage(reader *pdf.Reader, pageNumber int) (text string) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
		}
	}()

	page := reader.Page(pageNumber)
	if page.V.IsNull() {
		return ""
	}

	content := page.Content()
	return clusterLines(content.Text, e.config.LineTolerance)
}

// lineCluster groups text fragments sharing a vertical position.
type lineCluster struct {
	y         float64
	fragments []pdf.Text
}

// clusterLines reconstructs page text from positioned fragments.
// Fragment text is joined with single spaces, lines with newlines.
func clusterLines(fragments []pdf.Text, tolerance float64) string {
	var clusters []*lineCluster

	for _, frag := range fragments {
		if strings.TrimSpace(frag.S) == "" {
			continue
		}
		var cluster *lineCluster
		for _, c := range clusters {
			if frag.Y >= c.y-tolerance && frag.Y <= c.y+tolerance {
				cluster = c
				break
			}
		}
		if cluster == nil {
			cluster = &lineCluster{y: frag.Y}
			clusters = append(clusters, cluster)
		}
		cluster.fragments = append(cluster.fragments, frag)
	}

	// PDF user space has Y increasing upward, so top-to-bottom reading
	// order is descending Y.
	sort.SliceStable(clusters, func(i, j int) bool {
		return clusters[i].y > clusters[j].y
	})

	var lines []string
	for _, c := range clusters {
		sort.SliceStable(c.fragments, func(i, j int) bool {
			return c.fragments[i].X < c.fragments[j].X
		})
		parts := make([]string, 0, len(c.fragments))
		for _, frag := range c.fragments {
			parts = append(parts, strings.TrimSpace(frag.S))
		}
		line := strings.TrimSpace(strings.Join(parts, " "))
		if line != "" {
			lines = append(lines, line)
		}
	}

	return strings.Join(lines, "\n")
}

// readMetadata reads the trailer Info dictionary opportunistically.
// Any failure yields nil: metadata absence never aborts extraction.
func readMetadata(reader *pdf.Reader) (meta *DocumentMetadata) {
	defer func() {
		if r := recover(); r != nil {
			meta = nil
		}
	}()

	info := reader.Trailer().Key("Info")
	if info.Kind() != pdf.Dict {
		return nil
	}

	read := func(key string) string {
		v := info.Key(key)
		if v.Kind() != pdf.String {
			return ""
		}
		return strings.TrimSpace(v.Text())
	}

	m := DocumentMetadata{
		Title:        read("Title"),
		Author:       read("Author"),
		Subject:      read("Subject"),
		Creator:      read("Creator"),
		Producer:     read("Producer"),
		CreationDate: read("CreationDate"),
		ModDate:      read("ModDate"),
	}
	if m == (DocumentMetadata{}) {
		return nil
	}
	return &m
}
