package extract

import (
	"context"
	"fmt"
	"time"
)

// Method tags recorded on every extraction result.
const (
	MethodLayout = "primary_layout_parser"
	MethodNative = "fast_native_parser"
	MethodStream = "stream_parser"
	MethodOCR    = "ocr"
	MethodNone   = "none"
)

// ErrorKind classifies why a backend produced no text.
type ErrorKind int

const (
	// Unavailable means a required tool or library is missing (e.g. pdftotext
	// not on PATH). Non-fatal; the cascade moves on.
	Unavailable ErrorKind = iota
	// ParseFailure means the backend ran but could not read the document
	// (corrupt, encrypted, malformed).
	ParseFailure
	// Timeout means the backend was cut off by the context deadline.
	Timeout
)

func (k ErrorKind) String() string {
	switch k {
	case Unavailable:
		return "unavailable"
	case ParseFailure:
		return "parse_failure"
	case Timeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// BackendError is the typed failure a backend reports instead of swallowing
// the underlying condition.
type BackendError struct {
	Backend string
	Kind    ErrorKind
	Reason  string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Backend, e.Kind, e.Reason)
}

// Attempt is one backend's sub-result, retained for audit only.
type Attempt struct {
	Name  string
	Chars int
	Err   string
}

// Result is the outcome of one cascade invocation for one document.
type Result struct {
	Text     string
	Method   string
	OCRUsed  bool
	OCRPages int
	Elapsed  time.Duration

	// Backends holds the per-backend sub-results in the order they ran.
	Backends []Attempt
	// OCRError records why the OCR step failed or was skipped, if it was.
	OCRError string
}

// Backend is a single native text-extraction strategy.
type Backend interface {
	Name() string
	Extract(ctx context.Context, path string) (string, error)
}

// PageOCR rasterizes and recognizes up to maxPages pages. pages is the number
// of page images processed; firstErr keeps the first per-page failure for
// diagnostics while the remaining pages still run.
type PageOCR interface {
	ExtractPages(ctx context.Context, path string, maxPages int) (text string, pages int, firstErr string, err error)
}
