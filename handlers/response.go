package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"docextract_backend/pdfprocessor"
)

// ExtractData carries the extraction payload of a successful or
// partially successful run.
type ExtractData struct {
	Chapters       []pdfprocessor.Chapter         `json:"chapters"`
	TotalChapters  int                            `json:"totalChapters"`
	PageCount      int                            `json:"pageCount,omitempty"`
	PageCountTier  string                         `json:"pageCountTier,omitempty"`
	Metadata       *pdfprocessor.DocumentMetadata `json:"metadata,omitempty"`
	FullTextLength int                            `json:"fullTextLength"`
	Tier           string                         `json:"tier"`
}

// ExtractResponse is the envelope returned by the extract endpoint.
// RequiresManualEntry tells the client to fall back to hand-entered
// chapter boundaries whenever the run degraded below a full result.
type ExtractResponse struct {
	Success             bool         `json:"success"`
	Message             string       `json:"message,omitempty"`
	DocumentID          string       `json:"documentId,omitempty"`
	Data                *ExtractData `json:"data,omitempty"`
	RequiresManualEntry bool         `json:"requiresManualEntry"`
}

// DocumentResponse is the stored view of a document returned by the
// document lookup endpoint. Chapters and metadata are re-emitted as
// raw JSON exactly as persisted.
type DocumentResponse struct {
	ID             string          `json:"id"`
	SourceURL      string          `json:"sourceUrl,omitempty"`
	PageCount      int             `json:"pageCount,omitempty"`
	PageCountTier  string          `json:"pageCountTier,omitempty"`
	ChapterCount   int             `json:"chapterCount"`
	Chapters       json.RawMessage `json:"chapters"`
	Metadata       json.RawMessage `json:"metadata,omitempty"`
	Tier           string          `json:"tier,omitempty"`
	FullTextLength int             `json:"fullTextLength"`
	ExtractedAt    *time.Time      `json:"extractedAt,omitempty"`
}

// RunResponse is one extraction history row as returned by the recent
// extractions endpoint.
type RunResponse struct {
	ID             int64     `json:"id"`
	DocumentID     string    `json:"documentId"`
	Tier           string    `json:"tier"`
	PageCount      int       `json:"pageCount"`
	ChapterCount   int       `json:"chapterCount"`
	FullTextLength int       `json:"fullTextLength"`
	DurationMS     int64     `json:"durationMs"`
	CreatedAt      time.Time `json:"createdAt"`
}

// ErrorResponse is the envelope for request-level failures.
type ErrorResponse struct {
	Error string `json:"error"`
}

// writeJSON serializes v with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError serializes an ErrorResponse with the given status code.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// resultData maps a pipeline result onto the response payload.
func resultData(result *pdfprocessor.Result) *ExtractData {
	chapters := result.Chapters
	if chapters == nil {
		chapters = []pdfprocessor.Chapter{}
	}
	return &ExtractData{
		Chapters:       chapters,
		TotalChapters:  len(chapters),
		PageCount:      result.PageCount.Pages,
		PageCountTier:  string(result.PageCount.Tier),
		Metadata:       result.Metadata,
		FullTextLength: result.FullTextLength,
		Tier:           string(result.Tier),
	}
}
