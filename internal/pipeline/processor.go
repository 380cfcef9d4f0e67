// Package pipeline turns discovered documents into catalog entries. One
// Processor instance is shared by all workers; it is stateless apart from its
// wired dependencies.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/lebenh/rfi-triage/internal/catalog"
	"github.com/lebenh/rfi-triage/internal/classify"
	"github.com/lebenh/rfi-triage/internal/extract"
	"github.com/lebenh/rfi-triage/internal/fields"
	"github.com/lebenh/rfi-triage/internal/ingest"
	"github.com/lebenh/rfi-triage/internal/observability/metrics"
)

// topSignalCap limits the evidence list written to the catalog.
const topSignalCap = 8

// Options configures a Processor.
type Options struct {
	AllowOCR     bool
	OCRPageLimit int
	MinTextLen   int
}

type Processor struct {
	cascade  *extract.Cascade
	matchers *classify.Matchers
	opts     Options
	logger   *slog.Logger
	metrics  *metrics.BatchMetrics
}

// NewProcessor wires a processor. metrics may be nil when the listener is
// disabled.
func NewProcessor(cascade *extract.Cascade, matchers *classify.Matchers, opts Options,
	logger *slog.Logger, m *metrics.BatchMetrics) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.MinTextLen < 1 {
		opts.MinTextLen = extract.DefaultAcceptThreshold
	}
	return &Processor{
		cascade:  cascade,
		matchers: matchers,
		opts:     opts,
		logger:   logger,
		metrics:  m,
	}
}

// Process handles one document end to end. It never returns an error: any
// failure, including a panic in a parsing library, degrades to an error-status
// entry so one bad PDF cannot sink the batch.
func (p *Processor) Process(ctx context.Context, doc ingest.Document) (entry catalog.Entry) {
	start := time.Now()
	if p.metrics != nil {
		p.metrics.StartDocument()
	}

	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("panic while processing document", "path", doc.Path, "panic", r)
			entry = p.errorEntry(doc, start, fmt.Sprintf("panic: %v", r))
		}
		if p.metrics != nil {
			p.metrics.FinishDocument(entry.Row.Status, time.Since(start), entry.Audit.OCRUsed)
		}
	}()

	res, attempts, forced := extractWithRetry(ctx, p.cascade, p.logger, doc.Path,
		p.opts.AllowOCR, p.opts.OCRPageLimit, p.opts.MinTextLen)

	if err := ctx.Err(); err != nil && res.Text == "" {
		return p.errorEntry(doc, start, "extraction cancelled: "+err.Error())
	}

	text := res.Text
	decision := p.matchers.Classify(text)
	if p.metrics != nil {
		p.metrics.ObserveDecision(string(decision.Basis))
	}

	rfiNo := doc.RfiNumber
	if rfiNo == "" {
		rfiNo = fields.RFINumber(filepath.Base(doc.Path))
	}

	status := catalog.StatusOK
	if text == "" {
		status = catalog.StatusOKWarn
	}

	requires := "No"
	if decision.RequiresRevision {
		requires = "Yes"
	}

	signals := decision.MatchedKeywords
	if len(signals) > topSignalCap {
		signals = signals[:topSignalCap]
	}

	row := catalog.Row{
		RfiNumber:               rfiNo,
		PdfTitle:                fields.Title(text),
		DateSubmitted:           fields.DateSubmitted(text),
		DateResponded:           fields.DateResponded(text),
		From:                    fields.FromParty(text),
		To:                      fields.ToParty(text),
		Question:                fields.Question(text),
		Response:                fields.Response(text),
		RequiresDrawingRevision: requires,
		DecisionBasis:           string(decision.Basis),
		TopSignals:              strings.Join(signals, "; "),
		DetailRefs:              fields.DetailRefs(text),
		LocalPath:               doc.Path,
		Status:                  status,
	}

	audit := catalog.AuditRecord{
		PDF:                 filepath.Base(doc.Path),
		RfiNumber:           rfiNo,
		Method:              res.Method,
		TextLen:             len(text),
		OCRUsed:             res.OCRUsed,
		OCRPages:            res.OCRPages,
		Attempts:            attempts,
		ForcedSecondAttempt: forced,
		ElapsedMS:           time.Since(start).Milliseconds(),
		Status:              status,
		Error:               res.OCRError,
	}

	p.logger.Info("processed document",
		"path", doc.Path,
		"rfi_no", rfiNo,
		"method", res.Method,
		"chars", len(text),
		"requires_revision", decision.RequiresRevision,
		"basis", decision.Basis,
		"attempts", attempts,
		"elapsed_ms", audit.ElapsedMS)

	return catalog.Entry{Row: row, Audit: audit}
}

func (p *Processor) errorEntry(doc ingest.Document, start time.Time, msg string) catalog.Entry {
	rfiNo := doc.RfiNumber
	if rfiNo == "" {
		rfiNo = fields.RFINumber(filepath.Base(doc.Path))
	}
	return catalog.Entry{
		Row: catalog.Row{
			RfiNumber:               rfiNo,
			RequiresDrawingRevision: "No",
			DecisionBasis:           string(classify.BasisInsufficientSignal),
			LocalPath:               doc.Path,
			Status:                  catalog.StatusError,
		},
		Audit: catalog.AuditRecord{
			PDF:       filepath.Base(doc.Path),
			RfiNumber: rfiNo,
			Method:    extract.MethodNone,
			Attempts:  1,
			ElapsedMS: time.Since(start).Milliseconds(),
			Status:    catalog.StatusError,
			Error:     msg,
		},
	}
}
