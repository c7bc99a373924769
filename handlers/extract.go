package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"docextract_backend/pdfprocessor"
	"docextract_backend/storage"
)

// ExtractRequest is the JSON body for URL-based extraction.
type ExtractRequest struct {
	URL        string `json:"url"`
	DocumentID string `json:"documentId"`
}

// HandleExtract runs the extraction pipeline for a submitted document.
// POST /api/documents/extract
//
// Two submission shapes are accepted: a JSON body naming a URL to
// fetch, or raw document bytes with Content-Type application/pdf (the
// document id then comes from the documentId query parameter). Either
// way the endpoint answers 200 with an ExtractResponse; 400 is reserved
// for malformed requests. A degraded or failed extraction is a payload
// with requiresManualEntry set, not an HTTP error.
func (s *Service) HandleExtract(w http.ResponseWriter, r *http.Request) {
	contentType := r.Header.Get("Content-Type")

	var data []byte
	var documentID, sourceURL string

	switch {
	case strings.HasPrefix(contentType, "application/pdf"),
		strings.HasPrefix(contentType, "application/octet-stream"):
		body, err := io.ReadAll(r.Body)
		if err != nil || len(body) == 0 {
			writeError(w, http.StatusBadRequest, "request body must contain document bytes")
			return
		}
		data = body
		documentID = r.URL.Query().Get("documentId")

	default:
		var req ExtractRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.URL == "" {
			writeError(w, http.StatusBadRequest, "url is required")
			return
		}
		documentID = req.DocumentID
		sourceURL = req.URL

		fetched, err := s.fetchWithFallback(r, req.URL)
		if err != nil {
			s.logger.Warn("document fetch failed",
				zap.String("url", req.URL),
				zap.Error(err))
			writeJSON(w, http.StatusOK, ExtractResponse{
				Success:             false,
				Message:             fetchFailureMessage(err),
				DocumentID:          documentID,
				RequiresManualEntry: true,
			})
			return
		}
		data = fetched
	}

	if documentID == "" {
		documentID = uuid.New().String()
	}

	if s.store != nil {
		if err := s.store.EnsureDocument(r.Context(), documentID, sourceURL); err != nil {
			s.logger.Warn("failed to ensure document record",
				zap.String("document_id", documentID),
				zap.Error(err))
		}
	}

	result := s.extractor.ProcessDocument(r.Context(), data, documentID)

	writeJSON(w, http.StatusOK, ExtractResponse{
		Success:             result.Tier == pdfprocessor.TierFull,
		Message:             tierMessage(result.Tier),
		DocumentID:          documentID,
		Data:                resultData(result),
		RequiresManualEntry: result.Tier != pdfprocessor.TierFull,
	})
}

// fetchWithFallback tries the primary fetch budget, then the narrower
// fallback budget before giving up.
func (s *Service) fetchWithFallback(r *http.Request, url string) ([]byte, error) {
	data, err := s.fetcher.Fetch(r.Context(), url)
	if err == nil {
		return data, nil
	}
	// Size-capped documents will not shrink on retry.
	if errors.Is(err, storage.ErrDocumentTooLarge) {
		return nil, err
	}

	s.logger.Debug("primary fetch failed, trying fallback",
		zap.String("url", url),
		zap.Error(err))
	return s.fetcher.FetchFallback(r.Context(), url)
}

func fetchFailureMessage(err error) string {
	switch {
	case errors.Is(err, storage.ErrDocumentTooLarge):
		return "Document exceeds the maximum allowed size."
	case errors.Is(err, storage.ErrFetchTimeout):
		return "Document could not be retrieved in time. Enter chapters manually."
	default:
		return "Document could not be retrieved. Enter chapters manually."
	}
}

func tierMessage(tier pdfprocessor.ResultTier) string {
	switch tier {
	case pdfprocessor.TierFull:
		return ""
	case pdfprocessor.TierPageCountOnly:
		return "No chapter boundaries were found. Enter chapters manually."
	default:
		return "The document could not be read. Enter chapters manually."
	}
}
