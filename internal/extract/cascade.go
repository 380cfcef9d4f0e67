package extract

import (
	"context"
	"log/slog"
	"time"
)

// DefaultAcceptThreshold is the length floor (in characters, after
// normalization) at which a native backend's text is accepted outright.
const DefaultAcceptThreshold = 50

// Cascade tries the native backends in priority order and falls back to OCR
// as a last resort. It never returns an error: every failure mode degrades to
// the best text available, with the details kept on the Result for audit.
type Cascade struct {
	backends  []Backend
	ocr       PageOCR
	threshold int
	logger    *slog.Logger
}

type CascadeOption func(*Cascade)

func WithAcceptThreshold(n int) CascadeOption {
	return func(c *Cascade) {
		if n > 0 {
			c.threshold = n
		}
	}
}

// NewCascade wires the backends in the order given. ocr may be nil, in which
// case OCR behaves as an unavailable dependency.
func NewCascade(backends []Backend, ocr PageOCR, logger *slog.Logger, opts ...CascadeOption) *Cascade {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Cascade{
		backends:  backends,
		ocr:       ocr,
		threshold: DefaultAcceptThreshold,
		logger:    logger,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// DefaultBackends is the production order: layout-aware poppler first, then
// the fast pure-Go parser, then raw content-stream parsing.
func DefaultBackends(pdftotext string) []Backend {
	return []Backend{
		NewLayoutBackend(pdftotext),
		NewNativeBackend(),
		NewStreamBackend(),
	}
}

// Extract runs the cascade for one document.
//
// Native backends are tried in order; the first whose normalized text reaches
// the accept threshold wins and nothing further runs. Otherwise the longest
// non-empty native text is the best effort (ties go to the earlier backend).
// If that is still under the threshold and OCR is allowed, the document is
// rasterized and recognized page by page; the OCR text replaces the native
// best effort only when it is strictly longer.
func (c *Cascade) Extract(ctx context.Context, path string, allowOCR bool, ocrPageLimit int) Result {
	start := time.Now()
	res := Result{Method: MethodNone}

	bestText := ""
	bestMethod := MethodNone
	for _, b := range c.backends {
		raw, err := b.Extract(ctx, path)
		text := Normalize(raw)
		att := Attempt{Name: b.Name(), Chars: len(text)}
		if err != nil {
			att.Err = err.Error()
		}
		res.Backends = append(res.Backends, att)

		if err == nil && len(text) >= c.threshold {
			res.Text = text
			res.Method = b.Name()
			res.Elapsed = time.Since(start)
			return res
		}
		if len(text) > len(bestText) {
			bestText = text
			bestMethod = b.Name()
		}
	}

	res.Text = bestText
	if bestText != "" {
		res.Method = bestMethod
	}

	if len(bestText) >= c.threshold || !allowOCR {
		res.Elapsed = time.Since(start)
		return res
	}

	if c.ocr == nil {
		res.OCRError = "ocr backend not configured"
		res.Elapsed = time.Since(start)
		return res
	}

	ocrRaw, pages, pageErr, err := c.ocr.ExtractPages(ctx, path, ocrPageLimit)
	if err != nil {
		// OCR dependency missing or rasterization failed entirely: keep the
		// native best effort.
		res.OCRError = err.Error()
		res.Elapsed = time.Since(start)
		return res
	}
	if pageErr != "" {
		res.OCRError = pageErr
	}

	ocrText := Normalize(ocrRaw)
	if len(ocrText) > len(bestText) {
		res.Text = ocrText
		res.Method = MethodOCR
		res.OCRUsed = true
		res.OCRPages = pages
	} else {
		c.logger.Debug("ocr text not longer than native best effort, keeping native",
			"path", path, "ocr_chars", len(ocrText), "native_chars", len(bestText))
	}

	res.Elapsed = time.Since(start)
	return res
}
