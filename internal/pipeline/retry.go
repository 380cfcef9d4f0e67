package pipeline

import (
	"context"
	"log/slog"

	"github.com/lebenh/rfi-triage/internal/extract"
)

// retryPageFloor is the minimum OCR page budget for the escalated attempt.
const retryPageFloor = 20

// extractWithRetry runs the cascade and, when the first pass yields less text
// than minTextLen, escalates exactly once with OCR forced on and a raised page
// budget. The escalated result replaces the first only when strictly longer.
func extractWithRetry(ctx context.Context, cascade *extract.Cascade, logger *slog.Logger,
	path string, allowOCR bool, ocrPageLimit, minTextLen int) (extract.Result, int, bool) {

	res := cascade.Extract(ctx, path, allowOCR, ocrPageLimit)
	if len(res.Text) >= minTextLen {
		return res, 1, false
	}
	if ctx.Err() != nil {
		return res, 1, false
	}

	pages := ocrPageLimit
	if pages < retryPageFloor {
		pages = retryPageFloor
	}
	logger.Info("text below floor, escalating with forced ocr",
		"path", path, "chars", len(res.Text), "ocr_pages", pages)

	second := cascade.Extract(ctx, path, true, pages)
	if len(second.Text) > len(res.Text) {
		return second, 2, true
	}
	return res, 2, true
}
