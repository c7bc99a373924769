package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"docextract_backend/pdfprocessor"
)

// ErrDocumentNotFound is returned when no document matches the given
// identifier.
var ErrDocumentNotFound = errors.New("document not found")

// DocumentRecord is a row in the documents table: a document reference
// plus the latest extraction result recorded against it.
type DocumentRecord struct {
	ID             string     // UUID primary key
	SourceURL      string     // Where the bytes came from, "" for direct uploads
	FullText       string     // Raw extracted text stream
	FullTextLength int        // len(FullText)
	PageCount      int        // 0 when never established
	PageCountTier  string     // Confidence tier of the page count
	ChapterCount   int        // Number of chapters in the table
	Chapters       string     // JSON-serialized chapter table
	Metadata       string     // JSON-serialized document metadata, "" when absent
	Tier           string     // Result tier of the latest extraction
	ExtractedAt    *time.Time // When the latest extraction ran, nil if never
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ExtractionRun is a row in the extraction_runs history table.
type ExtractionRun struct {
	ID             int64
	DocumentID     string
	Tier           string
	PageCount      int
	ChapterCount   int
	FullTextLength int
	DurationMS     int64
	CreatedAt      time.Time
}

// Repository provides CRUD operations over documents and extraction
// history. It implements pdfprocessor.RecordStore so the orchestrator
// can hand results straight to it.
//
// History rows go through the AsyncWriter when one is configured, so
// the extraction response path never waits on them.
type Repository struct {
	database    *Database
	asyncWriter *AsyncWriter
}

// NewRepository creates a Repository. The asyncWriter is optional; nil
// makes all writes synchronous.
func NewRepository(database *Database, asyncWriter *AsyncWriter) *Repository {
	return &Repository{database: database, asyncWriter: asyncWriter}
}

// CreateDocument inserts a new document row.
func (r *Repository) CreateDocument(ctx context.Context, id, sourceURL string) error {
	if r.database == nil {
		return fmt.Errorf("database connection is nil")
	}
	_, err := r.database.DB().ExecContext(ctx,
		`INSERT INTO documents (id, source_url) VALUES (?, ?)`,
		id, sourceURL)
	if err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}
	return nil
}

// EnsureDocument inserts a document row if it does not exist yet.
func (r *Repository) EnsureDocument(ctx context.Context, id, sourceURL string) error {
	if r.database == nil {
		return fmt.Errorf("database connection is nil")
	}
	_, err := r.database.DB().ExecContext(ctx,
		`INSERT INTO documents (id, source_url) VALUES (?, ?)
		 ON CONFLICT(id) DO NOTHING`,
		id, sourceURL)
	if err != nil {
		return fmt.Errorf("failed to ensure document: %w", err)
	}
	return nil
}

// SaveExtraction records an extraction result against a document. It
// implements pdfprocessor.RecordStore.
//
// Field semantics follow the extraction contract: the page count is
// written only when positive, and the chapter table only when
// non-empty, so a degraded re-run never wipes out earlier results.
func (r *Repository) SaveExtraction(ctx context.Context, documentID string, record pdfprocessor.ExtractionRecord) error {
	if r.database == nil {
		return fmt.Errorf("database connection is nil")
	}

	sets := []string{
		"full_text = ?",
		"full_text_length = ?",
		"tier = ?",
		"extracted_at = ?",
		"updated_at = CURRENT_TIMESTAMP",
	}
	args := []interface{}{
		record.FullText,
		len(record.FullText),
		string(record.Tier),
		record.ExtractedAt,
	}

	if record.PageCount > 0 {
		sets = append(sets, "page_count = ?", "page_count_tier = ?")
		args = append(args, record.PageCount, string(record.PageCountTier))
	}

	if len(record.Chapters) > 0 {
		chaptersJSON, err := json.Marshal(record.Chapters)
		if err != nil {
			return fmt.Errorf("failed to serialize chapters: %w", err)
		}
		sets = append(sets, "chapters = ?", "chapter_count = ?")
		args = append(args, string(chaptersJSON), len(record.Chapters))
	}

	if record.Metadata != nil {
		metadataJSON, err := json.Marshal(record.Metadata)
		if err != nil {
			return fmt.Errorf("failed to serialize metadata: %w", err)
		}
		sets = append(sets, "metadata = ?")
		args = append(args, string(metadataJSON))
	}

	args = append(args, documentID)
	query := "UPDATE documents SET " + strings.Join(sets, ", ") + " WHERE id = ?"

	result, err := r.database.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update document %s: %w", documentID, err)
	}
	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return fmt.Errorf("%w: %s", ErrDocumentNotFound, documentID)
	}

	r.recordRun(ctx, ExtractionRun{
		DocumentID:     documentID,
		Tier:           string(record.Tier),
		PageCount:      record.PageCount,
		ChapterCount:   len(record.Chapters),
		FullTextLength: len(record.FullText),
		DurationMS:     record.Duration.Milliseconds(),
	})
	return nil
}

// recordRun appends an extraction_runs history row, asynchronously when
// an AsyncWriter is configured.
func (r *Repository) recordRun(ctx context.Context, run ExtractionRun) {
	if r.asyncWriter != nil {
		// Queue full means the history row is dropped; the document row
		// itself is already saved.
		_ = r.asyncWriter.Write(run)
		return
	}
	_ = r.insertRun(ctx, run)
}

// insertRun writes an extraction_runs row synchronously.
func (r *Repository) insertRun(ctx context.Context, run ExtractionRun) error {
	_, err := r.database.DB().ExecContext(ctx,
		`INSERT INTO extraction_runs
		   (document_id, tier, page_count, chapter_count, full_text_length, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		run.DocumentID, run.Tier, run.PageCount, run.ChapterCount, run.FullTextLength, run.DurationMS)
	if err != nil {
		return fmt.Errorf("failed to insert extraction run: %w", err)
	}
	return nil
}

// RunWriteHandler returns a WriteHandler that persists queued
// ExtractionRun payloads. Wire it into the AsyncWriter handed to
// NewRepository.
func (r *Repository) RunWriteHandler() WriteHandler {
	return func(op WriteOperation) error {
		run, ok := op.Data.(ExtractionRun)
		if !ok {
			return fmt.Errorf("unexpected async payload %T", op.Data)
		}
		return r.insertRun(context.Background(), run)
	}
}

// GetDocument returns the document row for id, or ErrDocumentNotFound.
func (r *Repository) GetDocument(ctx context.Context, id string) (*DocumentRecord, error) {
	if r.database == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	row := r.database.DB().QueryRowContext(ctx,
		`SELECT id, source_url, full_text, full_text_length, page_count,
		        page_count_tier, chapter_count, chapters, metadata, tier,
		        extracted_at, created_at, updated_at
		   FROM documents WHERE id = ?`, id)

	var rec DocumentRecord
	var pageCount sql.NullInt64
	var metadata sql.NullString
	var extractedAt sql.NullTime
	err := row.Scan(&rec.ID, &rec.SourceURL, &rec.FullText, &rec.FullTextLength,
		&pageCount, &rec.PageCountTier, &rec.ChapterCount, &rec.Chapters,
		&metadata, &rec.Tier, &extractedAt, &rec.CreatedAt, &rec.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query document %s: %w", id, err)
	}

	if pageCount.Valid {
		rec.PageCount = int(pageCount.Int64)
	}
	if metadata.Valid {
		rec.Metadata = metadata.String
	}
	if extractedAt.Valid {
		t := extractedAt.Time
		rec.ExtractedAt = &t
	}
	return &rec, nil
}

// ListRecentRuns returns the latest extraction history rows, newest
// first.
func (r *Repository) ListRecentRuns(ctx context.Context, limit int) ([]ExtractionRun, error) {
	if r.database == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	if limit < 1 {
		limit = 50
	}

	rows, err := r.database.DB().QueryContext(ctx,
		`SELECT id, document_id, tier, page_count, chapter_count,
		        full_text_length, duration_ms, created_at
		   FROM extraction_runs
		  ORDER BY created_at DESC, id DESC
		  LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query extraction runs: %w", err)
	}
	defer rows.Close()

	var runs []ExtractionRun
	for rows.Next() {
		var run ExtractionRun
		if err := rows.Scan(&run.ID, &run.DocumentID, &run.Tier, &run.PageCount,
			&run.ChapterCount, &run.FullTextLength, &run.DurationMS, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan extraction run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
