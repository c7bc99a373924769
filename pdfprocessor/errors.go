package pdfprocessor

import "errors"

// ErrLoadFailed is returned when the PDF engine cannot parse the byte
// stream as a document. This is an expected degraded path, not a fault:
// the caller falls back to the structural page count.
var ErrLoadFailed = errors.New("pdf engine could not load document")

// ErrLoadTimeout is returned when loading and walking the document
// exceeds the configured time budget. Treated identically to a load
// failure: downgrade, do not retry.
var ErrLoadTimeout = errors.New("pdf load timed out")

// ErrNoTextContent is returned when the document loads but no page
// yields any text (e.g. a scanned document without a text layer).
var ErrNoTextContent = errors.New("no text content found in document")
