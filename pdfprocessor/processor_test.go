package pdfprocessor

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// fakeTextSource returns canned extraction outcomes.
type fakeTextSource struct {
	result *TextResult
	err    error
}

func (f *fakeTextSource) Extract(ctx context.Context, data []byte) (*TextResult, error) {
	return f.result, f.err
}

// captureStore records SaveExtraction calls and can fail on demand.
type captureStore struct {
	documentID string
	record     ExtractionRecord
	calls      int
	err        error
}

func (s *captureStore) SaveExtraction(ctx context.Context, documentID string, record ExtractionRecord) error {
	s.calls++
	s.documentID = documentID
	s.record = record
	return s.err
}

func chapteredText() *TextResult {
	text := strings.Join([]string{
		"[[PAGE 1]]",
		"Chapter 1: Intro",
		"Body one.",
		"[[PAGE 2]]",
		"Chapter 2: Growth",
		"Body two.",
	}, "\n")
	return &TextResult{
		Pages: []ExtractedPage{
			{PageNumber: 1, Text: "Chapter 1: Intro\nBody one."},
			{PageNumber: 2, Text: "Chapter 2: Growth\nBody two."},
		},
		Text:      text,
		PageCount: 2,
		Metadata:  &DocumentMetadata{Title: "Handbook"},
	}
}

func TestProcessFullTier(t *testing.T) {
	source := &fakeTextSource{result: chapteredText()}
	p := NewProcessorWithSource(DefaultProcessorConfig(), source, nil, nil)

	result := p.Process(context.Background(), []byte("irrelevant"))

	if result.Tier != TierFull {
		t.Fatalf("Tier = %s, want %s", result.Tier, TierFull)
	}
	if len(result.Chapters) != 2 {
		t.Fatalf("got %d chapters, want 2", len(result.Chapters))
	}
	if result.PageCount.Pages != 2 {
		t.Errorf("PageCount.Pages = %d, want verified count 2", result.PageCount.Pages)
	}
	if result.PageCount.Tier != TierExactCounted {
		t.Errorf("PageCount.Tier = %s, want %s", result.PageCount.Tier, TierExactCounted)
	}
	if result.Metadata == nil || result.Metadata.Title != "Handbook" {
		t.Errorf("Metadata not propagated: %+v", result.Metadata)
	}
	if result.FullTextLength != len(result.FullText) {
		t.Errorf("FullTextLength = %d, want %d", result.FullTextLength, len(result.FullText))
	}
}

func TestProcessPageCountOnlyWhenTextLayerUnavailable(t *testing.T) {
	source := &fakeTextSource{err: ErrLoadFailed}
	p := NewProcessorWithSource(DefaultProcessorConfig(), source, nil, nil)

	// Bytes with a structural declaration but an unloadable text layer.
	data := []byte("<< /Type /Pages /Count 9 >> garbage")
	result := p.Process(context.Background(), data)

	if result.Tier != TierPageCountOnly {
		t.Fatalf("Tier = %s, want %s", result.Tier, TierPageCountOnly)
	}
	if result.PageCount.Pages != 9 {
		t.Errorf("PageCount.Pages = %d, want 9", result.PageCount.Pages)
	}
	if result.PageCount.Tier != TierExactDeclared {
		t.Errorf("PageCount.Tier = %s, want %s", result.PageCount.Tier, TierExactDeclared)
	}
	if len(result.Chapters) != 0 {
		t.Errorf("got %d chapters, want 0", len(result.Chapters))
	}
}

func TestProcessPageCountOnlyWhenNoChaptersFound(t *testing.T) {
	source := &fakeTextSource{result: &TextResult{
		Pages:     []ExtractedPage{{PageNumber: 1, Text: "prose without headings"}},
		Text:      "[[PAGE 1]]\nprose without headings\n",
		PageCount: 1,
	}}
	p := NewProcessorWithSource(DefaultProcessorConfig(), source, nil, nil)

	result := p.Process(context.Background(), []byte("x"))

	if result.Tier != TierPageCountOnly {
		t.Fatalf("Tier = %s, want %s", result.Tier, TierPageCountOnly)
	}
	if result.FullTextLength == 0 {
		t.Error("FullTextLength = 0, want recovered text length")
	}
}

func TestProcessDegradesWithRealExtractorOnGarbage(t *testing.T) {
	p := NewProcessor(DefaultProcessorConfig(), nil, nil)

	result := p.Process(context.Background(), []byte("definitely not a pdf"))

	if result.Tier != TierPageCountOnly {
		t.Fatalf("Tier = %s, want %s", result.Tier, TierPageCountOnly)
	}
	if result.PageCount.Pages < 1 {
		t.Errorf("PageCount.Pages = %d, want >= 1", result.PageCount.Pages)
	}
	if result.PageCount.Tier != TierEstimatedFromSize {
		t.Errorf("PageCount.Tier = %s, want %s", result.PageCount.Tier, TierEstimatedFromSize)
	}
}

func TestProcessDocumentPersists(t *testing.T) {
	source := &fakeTextSource{result: chapteredText()}
	store := &captureStore{}
	p := NewProcessorWithSource(DefaultProcessorConfig(), source, store, nil)

	result := p.ProcessDocument(context.Background(), []byte("x"), "doc-123")

	if store.calls != 1 {
		t.Fatalf("SaveExtraction called %d times, want 1", store.calls)
	}
	if store.documentID != "doc-123" {
		t.Errorf("documentID = %q, want %q", store.documentID, "doc-123")
	}
	if store.record.PageCount != result.PageCount.Pages {
		t.Errorf("record.PageCount = %d, want %d", store.record.PageCount, result.PageCount.Pages)
	}
	if len(store.record.Chapters) != len(result.Chapters) {
		t.Errorf("record has %d chapters, want %d", len(store.record.Chapters), len(result.Chapters))
	}
	if store.record.ExtractedAt.IsZero() {
		t.Error("record.ExtractedAt is zero")
	}
}

func TestProcessDocumentSwallowsPersistenceFailure(t *testing.T) {
	source := &fakeTextSource{result: chapteredText()}
	store := &captureStore{err: errors.New("disk full")}
	p := NewProcessorWithSource(DefaultProcessorConfig(), source, store, nil)

	result := p.ProcessDocument(context.Background(), []byte("x"), "doc-123")

	// A failed write must not change the tier or invalidate the result.
	if result.Tier != TierFull {
		t.Errorf("Tier = %s, want %s after persistence failure", result.Tier, TierFull)
	}
	if len(result.Chapters) != 2 {
		t.Errorf("got %d chapters, want 2 after persistence failure", len(result.Chapters))
	}
}

func TestProcessDocumentSkipsPersistenceWithoutID(t *testing.T) {
	source := &fakeTextSource{result: chapteredText()}
	store := &captureStore{}
	p := NewProcessorWithSource(DefaultProcessorConfig(), source, store, nil)

	_ = p.ProcessDocument(context.Background(), []byte("x"), "")

	if store.calls != 0 {
		t.Errorf("SaveExtraction called %d times, want 0 without a record identifier", store.calls)
	}
}
