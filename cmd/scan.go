package cmd

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/lebenh/rfi-triage/internal/catalog"
	"github.com/lebenh/rfi-triage/internal/classify"
	"github.com/lebenh/rfi-triage/internal/common"
	"github.com/lebenh/rfi-triage/internal/extract"
	"github.com/lebenh/rfi-triage/internal/ingest"
	"github.com/lebenh/rfi-triage/internal/observability/metrics"
	"github.com/lebenh/rfi-triage/internal/pipeline"
	"github.com/lebenh/rfi-triage/internal/repository"
)

var scanFlags struct {
	localRoot     string
	out           string
	limit         int
	noOCR         bool
	ocrMaxPages   int
	workers       int
	appendRows    bool
	clearExisting bool
	dedupeKey     string
	vocabPath     string
	watch         bool
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Process a folder of RFI PDFs into the catalog workbook",
	RunE:  runScan,
}

func init() {
	f := scanCmd.Flags()
	f.StringVar(&scanFlags.localRoot, "local-root", "", "root folder of RFI PDFs (default $LOCAL_ROOT)")
	f.StringVar(&scanFlags.out, "out", "", "catalog workbook path (default $OUT_XLSX)")
	f.IntVar(&scanFlags.limit, "limit", 0, "cap the number of RFI folders or files (0 = all)")
	f.BoolVar(&scanFlags.noOCR, "no-ocr", false, "disable the OCR fallback")
	f.IntVar(&scanFlags.ocrMaxPages, "ocr-max-pages", 0, "OCR page budget per document (0 = all pages)")
	f.IntVar(&scanFlags.workers, "workers", 0, "worker count (default CPUs-1)")
	f.BoolVar(&scanFlags.appendRows, "append", false, "merge into the existing workbook instead of replacing it")
	f.BoolVar(&scanFlags.clearExisting, "clear-existing", false, "delete the existing workbook before writing")
	f.StringVar(&scanFlags.dedupeKey, "dedupe-key", "", "dedupe column when appending: RfiNumber, PdfTitle or LocalPath")
	f.StringVar(&scanFlags.vocabPath, "vocab", "", "JSON vocabulary file (default built-in)")
	f.BoolVar(&scanFlags.watch, "watch", false, "keep running and process PDFs as they appear")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	applyScanFlags()
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	vocab := classify.DefaultVocabulary()
	if cfg.Catalog.VocabPath != "" {
		v, err := classify.LoadVocabulary(cfg.Catalog.VocabPath)
		if err != nil {
			return common.WrapError(err, "load vocabulary")
		}
		vocab = v
	}
	matchers, err := classify.Compile(vocab)
	if err != nil {
		return common.WrapError(err, "compile vocabulary")
	}

	var batchMetrics *metrics.BatchMetrics
	if cfg.Metrics.Addr != "" {
		batchMetrics = metrics.NewBatchMetrics()
		srv := &http.Server{Addr: cfg.Metrics.Addr, Handler: batchMetrics.Handler()}
		go func() {
			logger.Info("metrics listener started", "addr", cfg.Metrics.Addr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Warn("metrics listener stopped", "error", err)
			}
		}()
		defer func() { _ = srv.Close() }()
	}

	cascade := extract.NewCascade(
		extract.DefaultBackends(cfg.Extract.Pdftotext),
		extract.NewPopplerOCR(extract.OCRConfig{
			Pdftoppm:  cfg.Extract.Pdftoppm,
			Tesseract: cfg.Extract.Tesseract,
			Lang:      cfg.Extract.TesseractLang,
			DPI:       cfg.Extract.OCRDPI,
		}),
		logger,
		extract.WithAcceptThreshold(cfg.Extract.MinTextLen),
	)

	proc := pipeline.NewProcessor(cascade, matchers, pipeline.Options{
		AllowOCR:     cfg.Extract.OCREnabled,
		OCRPageLimit: cfg.Extract.OCRMaxPages,
		MinTextLen:   cfg.Extract.MinTextLen,
	}, logger, batchMetrics)

	queue := pipeline.NewQueue(proc, logger,
		pipeline.WithWorkers(cfg.Extract.Workers),
		pipeline.WithProcessTimeout(cfg.Extract.ProcessTimeout),
	)

	startedAt := time.Now()

	docs, stats, err := ingest.ScanRoot(cfg.Ingest.LocalRoot, cfg.Ingest.Limit)
	if err != nil {
		return err
	}
	logger.Info("scan complete",
		"root", cfg.Ingest.LocalRoot,
		"folders", stats.Folders,
		"scanned", stats.Scanned,
		"selected", stats.Selected,
		"skipped", stats.Skipped)

	// feed the queue; in watch mode keep feeding from the watcher after the
	// initial scan
	go func() {
		for _, d := range docs {
			if err := queue.Enqueue(ctx, d); err != nil {
				break
			}
		}
		if scanFlags.watch {
			w, err := ingest.NewWatcher(logger)
			if err != nil {
				logger.Error("watcher start failed", "error", err)
			} else if ch, err := w.Watch(ctx, cfg.Ingest.LocalRoot); err != nil {
				logger.Error("watch failed", "root", cfg.Ingest.LocalRoot, "error", err)
			} else {
				logger.Info("watching for new PDFs", "root", cfg.Ingest.LocalRoot)
				for d := range ch {
					if err := queue.Enqueue(ctx, d); err != nil {
						break
					}
				}
			}
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Extract.ProcessTimeout)
		defer cancel()
		queue.Shutdown(shutdownCtx)
	}()

	var entries []catalog.Entry
	for entry := range queue.Results() {
		entries = append(entries, entry)
	}

	if len(entries) == 0 {
		logger.Warn("no documents processed", "root", cfg.Ingest.LocalRoot)
		return nil
	}

	return writeOutputs(ctx, entries, startedAt)
}

func applyScanFlags() {
	if scanFlags.localRoot != "" {
		cfg.Ingest.LocalRoot = scanFlags.localRoot
	}
	if scanFlags.out != "" {
		cfg.Catalog.OutXLSX = scanFlags.out
	}
	if scanFlags.limit > 0 {
		cfg.Ingest.Limit = scanFlags.limit
	}
	if scanFlags.noOCR {
		cfg.Extract.OCREnabled = false
	}
	if scanFlags.ocrMaxPages > 0 {
		cfg.Extract.OCRMaxPages = scanFlags.ocrMaxPages
	}
	if scanFlags.workers > 0 {
		cfg.Extract.Workers = scanFlags.workers
	}
	if scanFlags.dedupeKey != "" {
		cfg.Catalog.DedupeKey = scanFlags.dedupeKey
	}
	if scanFlags.vocabPath != "" {
		cfg.Catalog.VocabPath = scanFlags.vocabPath
	}
}

func writeOutputs(ctx context.Context, entries []catalog.Entry, startedAt time.Time) error {
	rows := make([]catalog.Row, 0, len(entries))
	audits := make([]catalog.AuditRecord, 0, len(entries))
	var revised, ocrUsed, errored int
	for _, e := range entries {
		rows = append(rows, e.Row)
		audits = append(audits, e.Audit)
		if e.Row.RequiresDrawingRevision == "Yes" {
			revised++
		}
		if e.Audit.OCRUsed {
			ocrUsed++
		}
		if e.Row.Status == catalog.StatusError {
			errored++
		}
	}

	if scanFlags.clearExisting {
		if err := os.Remove(cfg.Catalog.OutXLSX); err != nil && !os.IsNotExist(err) {
			return common.WrapError(err, "clear existing workbook")
		}
	}

	writer := catalog.NewWriter(cfg.Catalog.OutXLSX, logger)
	outPath, err := writer.Write(rows, catalog.WriteOptions{
		Append:    scanFlags.appendRows,
		DedupeKey: cfg.Catalog.DedupeKey,
	})
	if err != nil {
		return common.WrapError(err, "write catalog")
	}

	auditPath := strings.TrimSuffix(outPath, filepath.Ext(outPath)) + "_audit.csv"
	if err := catalog.WriteAuditCSV(auditPath, audits); err != nil {
		return common.WrapError(err, "write audit csv")
	}

	store, err := repository.Open(cfg.Database)
	if err != nil {
		logger.Warn("run store unavailable", "error", err)
	} else {
		defer func() { _ = store.Close() }()
		saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		runID := uuid.New()
		if err := store.Init(saveCtx); err != nil {
			logger.Warn("run store init failed", "error", err)
		} else if err := store.SaveRun(saveCtx, repository.Run{
			ID:               runID,
			StartedAt:        startedAt,
			FinishedAt:       time.Now(),
			LocalRoot:        cfg.Ingest.LocalRoot,
			OutPath:          outPath,
			Documents:        len(entries),
			RequiresRevision: revised,
			OCRUsed:          ocrUsed,
			Errors:           errored,
		}); err != nil {
			logger.Warn("run store save failed", "error", err)
		} else if err := store.SaveAuditRecords(saveCtx, runID, audits); err != nil {
			logger.Warn("run store audit save failed", "error", err)
		}
	}

	logger.Info("triage complete",
		"documents", len(entries),
		"requires_revision", revised,
		"ocr_used", ocrUsed,
		"errors", errored,
		"catalog", outPath,
		"audit", auditPath,
		"elapsed", time.Since(startedAt).Round(time.Millisecond).String())
	return nil
}
