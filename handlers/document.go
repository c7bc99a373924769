package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"docextract_backend/db"
)

// HandleGetDocument returns the stored extraction state of a document.
// GET /api/documents/{id}
func (s *Service) HandleGetDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "document id is required")
		return
	}

	record, err := s.store.GetDocument(r.Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrDocumentNotFound) {
			writeError(w, http.StatusNotFound, "document not found")
			return
		}
		s.logger.Error("document lookup failed",
			zap.String("document_id", id),
			zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load document")
		return
	}

	resp := DocumentResponse{
		ID:             record.ID,
		SourceURL:      record.SourceURL,
		PageCount:      record.PageCount,
		PageCountTier:  record.PageCountTier,
		ChapterCount:   record.ChapterCount,
		Chapters:       json.RawMessage(record.Chapters),
		Tier:           record.Tier,
		FullTextLength: record.FullTextLength,
		ExtractedAt:    record.ExtractedAt,
	}
	if record.Chapters == "" {
		resp.Chapters = json.RawMessage("[]")
	}
	if record.Metadata != "" {
		resp.Metadata = json.RawMessage(record.Metadata)
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleGetDocumentText returns the raw extracted text stream.
// GET /api/documents/{id}/text
func (s *Service) HandleGetDocumentText(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "document id is required")
		return
	}

	record, err := s.store.GetDocument(r.Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrDocumentNotFound) {
			writeError(w, http.StatusNotFound, "document not found")
			return
		}
		s.logger.Error("document lookup failed",
			zap.String("document_id", id),
			zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load document")
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(record.FullText))
}

// HandleListRuns returns recent extraction history rows, newest first.
// GET /api/extractions/recent?limit=N
func (s *Service) HandleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	runs, err := s.store.ListRecentRuns(r.Context(), limit)
	if err != nil {
		s.logger.Error("extraction history lookup failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load extraction history")
		return
	}

	resp := make([]RunResponse, 0, len(runs))
	for _, run := range runs {
		resp = append(resp, RunResponse{
			ID:             run.ID,
			DocumentID:     run.DocumentID,
			Tier:           run.Tier,
			PageCount:      run.PageCount,
			ChapterCount:   run.ChapterCount,
			FullTextLength: run.FullTextLength,
			DurationMS:     run.DurationMS,
			CreatedAt:      run.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}
