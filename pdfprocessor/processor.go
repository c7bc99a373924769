// Package pdfprocessor implements the document chapter-extraction engine.
//
// processor.go implements the Processor organism that orchestrates the
// extraction pipeline. It composes the following molecules:
//   - inspector.go: structural page count from raw bytes
//   - extractor.go: TextExtractor for the text layer
//   - segmenter.go: Segment for chapter recovery
//   - normalizer.go: Normalize for dedup and ordering
package pdfprocessor

import (
	"context"
	"time"

	"go.uber.org/zap"

	"docextract_backend/logging"
)

// ResultTier is the degradation level of an extraction outcome.
type ResultTier string

const (
	// TierFull means chapters were recovered from the text layer.
	TierFull ResultTier = "full"

	// TierPageCountOnly means a page count was established but no
	// chapters could be recovered.
	TierPageCountOnly ResultTier = "page-count-only"

	// TierUnextractable means not even a page count could be established.
	TierUnextractable ResultTier = "unextractable"
)

// Result is the orchestrator's output. It owns copies of all nested
// data; no shared mutable state survives the call.
type Result struct {
	// Chapters is the normalized chapter table, empty below TierFull
	Chapters []Chapter

	// PageCount is the page count with its confidence tier. When the
	// text layer loads, the verified model count supersedes the
	// structural inspector's estimate.
	PageCount PageCountResult

	// Metadata is the document metadata, nil if unavailable
	Metadata *DocumentMetadata

	// FullText is the concatenated extracted text stream, empty when
	// the text layer was unavailable
	FullText string

	// FullTextLength is len(FullText)
	FullTextLength int

	// Tier is the degradation level achieved
	Tier ResultTier

	// Duration is the total pipeline time
	Duration time.Duration
}

// ExtractionRecord is the persistence payload handed to a RecordStore
// after a pipeline run.
type ExtractionRecord struct {
	FullText      string
	ExtractedAt   time.Time
	PageCount     int
	PageCountTier CountTier
	Chapters      []Chapter
	Metadata      *DocumentMetadata
	Tier          ResultTier
	Duration      time.Duration
}

// RecordStore persists extraction results against a document record.
// The write is best-effort: the orchestrator logs and swallows failures
// so the caller still receives usable data.
type RecordStore interface {
	SaveExtraction(ctx context.Context, documentID string, record ExtractionRecord) error
}

// TextSource supplies the text layer for a document. *TextExtractor is
// the production implementation.
type TextSource interface {
	Extract(ctx context.Context, data []byte) (*TextResult, error)
}

// ProcessorConfig holds configuration for the extraction pipeline.
type ProcessorConfig struct {
	// ExtractorConfig configures the text layer extractor
	ExtractorConfig ExtractorConfig

	// PersistTimeout bounds the best-effort persistence write
	PersistTimeout time.Duration
}

// DefaultProcessorConfig returns sensible default configuration.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		ExtractorConfig: DefaultExtractorConfig(),
		PersistTimeout:  10 * time.Second,
	}
}

// Processor orchestrates structural inspection, text layer extraction,
// chapter segmentation, and normalization. It never raises to the
// caller: all internal failures map to a result tier.
type Processor struct {
	config ProcessorConfig
	source TextSource
	store  RecordStore
	logger *logging.Logger
}

// NewProcessor creates a Processor with the given configuration.
// The store is optional; pass nil when no persistence collaborator is
// wired. The logger is optional; nil falls back to a no-op logger.
func NewProcessor(config ProcessorConfig, store RecordStore, logger *logging.Logger) *Processor {
	if config.PersistTimeout <= 0 {
		config.PersistTimeout = 10 * time.Second
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Processor{
		config: config,
		source: NewTextExtractor(config.ExtractorConfig),
		store:  store,
		logger: logger,
	}
}

// NewProcessorWithSource creates a Processor with a custom text source.
// Used by tests and by callers that negotiate engine availability
// themselves.
func NewProcessorWithSource(config ProcessorConfig, source TextSource, store RecordStore, logger *logging.Logger) *Processor {
	p := NewProcessor(config, store, logger)
	p.source = source
	return p
}

// Process runs the extraction pipeline on raw document bytes and
// returns a well-formed Result. It never returns an error: failures
// downgrade the result tier.
//
// Tier decision:
//   - text layer recovered and >= 1 chapter after normalization: TierFull
//   - text recovered but no chapter boundaries, or text layer
//     unavailable while a page count >= 1 exists: TierPageCountOnly
//   - no page count at all: TierUnextractable
func (p *Processor) Process(ctx context.Context, data []byte) *Result {
	start := time.Now()

	result := &Result{
		Chapters:  []Chapter{},
		PageCount: Inspect(data),
	}

	text, err := p.source.Extract(ctx, data)
	if err != nil || text == nil || len(text.Pages) == 0 {
		p.logger.Debug("text layer unavailable",
			zap.Error(err),
			zap.Int("structural_pages", result.PageCount.Pages),
			zap.String("count_tier", string(result.PageCount.Tier)))
		if text != nil && text.PageCount >= 1 {
			// The model loaded even though no text came back; its count
			// is still more trustworthy than the structural scan.
			result.PageCount = PageCountResult{Pages: text.PageCount, Tier: TierExactCounted}
			result.Metadata = text.Metadata
		}
		if result.PageCount.Pages >= 1 {
			result.Tier = TierPageCountOnly
		} else {
			result.Tier = TierUnextractable
		}
		result.Duration = time.Since(start)
		return result
	}

	// Verified count from the loaded model supersedes the inspector's.
	result.PageCount = PageCountResult{Pages: text.PageCount, Tier: TierExactCounted}
	result.Metadata = text.Metadata
	result.FullText = text.Text
	result.FullTextLength = len(text.Text)

	chapters := Normalize(Segment(text.Text))
	if len(chapters) >= 1 {
		result.Chapters = chapters
		result.Tier = TierFull
	} else {
		result.Tier = TierPageCountOnly
	}

	result.Duration = time.Since(start)
	p.logger.Info("extraction complete",
		zap.String("tier", string(result.Tier)),
		zap.Int("pages", result.PageCount.Pages),
		zap.Int("chapters", len(result.Chapters)),
		zap.Int("text_length", result.FullTextLength),
		zap.Duration("duration", result.Duration))
	return result
}

// ProcessDocument runs Process and then informs the persistence
// collaborator when a target record identifier is supplied. The write
// is best-effort: a failure to persist does not change the tier or
// invalidate the result, it is logged and swallowed.
func (p *Processor) ProcessDocument(ctx context.Context, data []byte, documentID string) *Result {
	result := p.Process(ctx, data)

	if p.store == nil || documentID == "" {
		return result
	}

	record := ExtractionRecord{
		FullText:      result.FullText,
		ExtractedAt:   time.Now().UTC(),
		PageCount:     result.PageCount.Pages,
		PageCountTier: result.PageCount.Tier,
		Chapters:      result.Chapters,
		Metadata:      result.Metadata,
		Tier:          result.Tier,
		Duration:      result.Duration,
	}

	// Use a detached context so caller cancellation after the pipeline
	// does not turn a completed extraction into a lost write.
	persistCtx, cancel := context.WithTimeout(context.Background(), p.config.PersistTimeout)
	defer cancel()

	if err := p.store.SaveExtraction(persistCtx, documentID, record); err != nil {
		p.logger.Warn("failed to persist extraction result",
			zap.String("document_id", documentID),
			zap.Error(err))
	}
	return result
}
