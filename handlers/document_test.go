package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"docextract_backend/db"
)

var errPingFailed = errors.New("ping failed")

func TestHandleGetDocument(t *testing.T) {
	extractedAt := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	store := newFakeStore()
	store.records["doc-1"] = &db.DocumentRecord{
		ID:             "doc-1",
		SourceURL:      "https://example.com/book.pdf",
		FullText:       "[[PAGE 1]]\nChapter 1: Opening\nBody.",
		FullTextLength: 35,
		PageCount:      10,
		PageCountTier:  "exact-counted",
		ChapterCount:   1,
		Chapters:       `[{"number":1,"title":"Opening","content":"Body.","pageStart":1,"pageEnd":1}]`,
		Metadata:       `{"title":"Sample"}`,
		Tier:           "full",
		ExtractedAt:    &extractedAt,
	}
	s := newTestService(&fakeFetcher{}, &fakeExtractor{}, store)

	req := httptest.NewRequest(http.MethodGet, "/api/documents/doc-1", nil)
	rec := doRequest(t, s, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp DocumentResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if resp.ID != "doc-1" {
		t.Errorf("ID = %q, want doc-1", resp.ID)
	}
	if resp.PageCount != 10 || resp.PageCountTier != "exact-counted" {
		t.Errorf("page count = %d/%s, want 10/exact-counted", resp.PageCount, resp.PageCountTier)
	}
	if resp.ChapterCount != 1 {
		t.Errorf("ChapterCount = %d, want 1", resp.ChapterCount)
	}

	var chapters []map[string]interface{}
	if err := json.Unmarshal(resp.Chapters, &chapters); err != nil {
		t.Fatalf("chapters are not valid JSON: %v", err)
	}
	if len(chapters) != 1 || chapters[0]["title"] != "Opening" {
		t.Errorf("chapters = %v, want one titled Opening", chapters)
	}
}

func TestHandleGetDocumentNotFound(t *testing.T) {
	s := newTestService(&fakeFetcher{}, &fakeExtractor{}, newFakeStore())

	req := httptest.NewRequest(http.MethodGet, "/api/documents/missing", nil)
	rec := doRequest(t, s, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHandleGetDocumentText(t *testing.T) {
	store := newFakeStore()
	store.records["doc-1"] = &db.DocumentRecord{
		ID:       "doc-1",
		FullText: "[[PAGE 1]]\nplain text stream",
	}
	s := newTestService(&fakeFetcher{}, &fakeExtractor{}, store)

	req := httptest.NewRequest(http.MethodGet, "/api/documents/doc-1/text", nil)
	rec := doRequest(t, s, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Body.String(); got != "[[PAGE 1]]\nplain text stream" {
		t.Errorf("body = %q, want raw text stream", got)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/plain; charset=utf-8" {
		t.Errorf("Content-Type = %q, want text/plain", ct)
	}
}

func TestHandleListRuns(t *testing.T) {
	store := newFakeStore()
	store.runs = []db.ExtractionRun{
		{ID: 2, DocumentID: "doc-1", Tier: "full", PageCount: 10, ChapterCount: 3},
		{ID: 1, DocumentID: "doc-1", Tier: "page-count-only", PageCount: 10},
	}
	s := newTestService(&fakeFetcher{}, &fakeExtractor{}, store)

	req := httptest.NewRequest(http.MethodGet, "/api/extractions/recent?limit=1", nil)
	rec := doRequest(t, s, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp []RunResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if len(resp) != 1 {
		t.Fatalf("runs = %d, want 1 with limit=1", len(resp))
	}
	if resp[0].ID != 2 || resp[0].Tier != "full" {
		t.Errorf("run = %+v, want newest full run", resp[0])
	}
}

func TestHandleListRunsBadLimit(t *testing.T) {
	s := newTestService(&fakeFetcher{}, &fakeExtractor{}, newFakeStore())

	req := httptest.NewRequest(http.MethodGet, "/api/extractions/recent?limit=zero", nil)
	rec := doRequest(t, s, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleHealth(t *testing.T) {
	s := newTestService(&fakeFetcher{}, &fakeExtractor{}, newFakeStore())

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := doRequest(t, s, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if resp.Status != "ok" || resp.Database != "ok" {
		t.Errorf("health = %+v, want ok/ok", resp)
	}
}

func TestHandleHealthDatabaseDown(t *testing.T) {
	s := NewService(&fakeFetcher{}, &fakeExtractor{}, newFakeStore(),
		&fakePinger{err: errPingFailed}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := doRequest(t, s, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}

	var resp HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if resp.Database != "unreachable" {
		t.Errorf("Database = %q, want unreachable", resp.Database)
	}
}
