// Package handlers exposes the extraction pipeline over HTTP: document
// submission, result retrieval, extraction history, and health.
package handlers

import (
	"context"

	"docextract_backend/db"
	"docextract_backend/logging"
	"docextract_backend/pdfprocessor"
	"docextract_backend/storage"
)

// Extractor runs the extraction pipeline and persists the result when
// a document identifier is supplied.
type Extractor interface {
	ProcessDocument(ctx context.Context, data []byte, documentID string) *pdfprocessor.Result
}

// DocumentStore is the subset of the repository the HTTP layer needs.
type DocumentStore interface {
	EnsureDocument(ctx context.Context, id, sourceURL string) error
	GetDocument(ctx context.Context, id string) (*db.DocumentRecord, error)
	ListRecentRuns(ctx context.Context, limit int) ([]db.ExtractionRun, error)
}

// Pinger reports whether the backing database is reachable.
type Pinger interface {
	Ping() error
}

// Service wires the HTTP handlers to their collaborators.
type Service struct {
	fetcher   storage.Fetcher
	extractor Extractor
	store     DocumentStore
	pinger    Pinger
	logger    *logging.Logger
}

// NewService creates a handler Service. A nil logger is replaced with a
// no-op logger.
func NewService(fetcher storage.Fetcher, extractor Extractor, store DocumentStore, pinger Pinger, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Service{
		fetcher:   fetcher,
		extractor: extractor,
		store:     store,
		pinger:    pinger,
		logger:    logger,
	}
}
