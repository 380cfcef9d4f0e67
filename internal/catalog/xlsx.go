package catalog

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Catalog"

// WriteOptions control how the workbook is produced.
type WriteOptions struct {
	// Append merges the new rows into the existing workbook instead of
	// replacing it.
	Append bool
	// DedupeKey is the column used to drop duplicates when appending
	// (keep-last). Empty disables de-duplication.
	DedupeKey string
}

// Writer produces the catalog workbook. Writes go to a temp file first and
// are renamed into place; a locked destination (workbook open in Excel) is
// retried and finally diverted to a timestamped fallback name.
type Writer struct {
	Path    string
	Logger  *slog.Logger
	retries int
	delay   time.Duration
}

func NewWriter(path string, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{Path: path, Logger: logger, retries: 5, delay: 1200 * time.Millisecond}
}

// Write builds the workbook from rows and lands it at w.Path. Returns the
// path actually written (the fallback name if the target stayed locked).
func (w *Writer) Write(rows []Row, opts WriteOptions) (string, error) {
	start := time.Now()

	if opts.Append {
		existing, err := w.readExisting()
		if err != nil {
			w.Logger.Warn("could not read existing workbook, writing fresh", "path", w.Path, "error", err)
		} else {
			rows = append(existing, rows...)
		}
	}
	if opts.DedupeKey != "" {
		rows = dedupeKeepLast(rows, opts.DedupeKey)
	}
	SortRows(rows)

	f := excelize.NewFile()
	idx, err := f.NewSheet(sheetName)
	if err != nil {
		return "", err
	}
	f.SetActiveSheet(idx)
	_ = f.DeleteSheet("Sheet1")

	for i, h := range Columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheetName, cell, h)
	}
	for rIdx, row := range rows {
		for cIdx, v := range row.Values() {
			cell, _ := excelize.CoordinatesToCellName(cIdx+1, rIdx+2)
			_ = f.SetCellValue(sheetName, cell, v)
		}
	}

	// Widen the columns people actually read.
	_ = f.SetColWidth(sheetName, "A", "B", 18) // number, title
	_ = f.SetColWidth(sheetName, "G", "H", 48) // question, response
	_ = f.SetColWidth(sheetName, "I", "K", 22) // verdict, basis, signals
	_ = f.SetColWidth(sheetName, "M", "M", 60) // path

	out, err := w.land(f)
	if err != nil {
		return "", err
	}

	w.Logger.Info("export.xlsx.ok",
		"path", out,
		"rows", len(rows),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}

// land writes to a temp sibling and renames over the destination, retrying
// while the destination is locked by another process. The workbook is
// serialized once to a buffer; excelize validates the file extension on
// SaveAs, which would reject the .tmp names.
func (w *Writer) land(f *excelize.File) (string, error) {
	if err := os.MkdirAll(filepath.Dir(w.Path), 0o755); err != nil {
		return "", err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return "", fmt.Errorf("xlsx write: %w", err)
	}

	var lastErr error
	for i := 1; i <= w.retries; i++ {
		tmp := fmt.Sprintf("%s.tmp.%d.%d", w.Path, os.Getpid(), i)
		if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
			return "", fmt.Errorf("xlsx write: %w", err)
		}
		if err := os.Rename(tmp, w.Path); err != nil {
			lastErr = err
			_ = os.Remove(tmp)
			time.Sleep(w.delay * time.Duration(i))
			continue
		}
		return w.Path, nil
	}

	fb := fallbackName(w.Path)
	if err := os.WriteFile(fb, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("xlsx fallback write: %w (original: %v)", err, lastErr)
	}
	w.Logger.Warn("workbook locked, wrote fallback", "path", w.Path, "fallback", fb, "error", lastErr)
	return fb, nil
}

func fallbackName(path string) string {
	ext := filepath.Ext(path)
	stem := path[:len(path)-len(ext)]
	return fmt.Sprintf("%s_%s%s", stem, time.Now().Format("20060102_150405"), ext)
}

// readExisting loads rows back out of the current workbook for append mode.
func (w *Writer) readExisting() ([]Row, error) {
	f, err := excelize.OpenFile(w.Path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()

	raw, err := f.GetRows(sheetName)
	if err != nil || len(raw) < 2 {
		return nil, err
	}

	col := map[string]int{}
	for i, h := range raw[0] {
		col[h] = i
	}
	get := func(cells []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(cells) {
			return ""
		}
		if cells[i] == "null" {
			return ""
		}
		return cells[i]
	}

	rows := make([]Row, 0, len(raw)-1)
	for _, cells := range raw[1:] {
		rows = append(rows, Row{
			RfiNumber:               get(cells, "RfiNumber"),
			PdfTitle:                get(cells, "PdfTitle"),
			DateSubmitted:           get(cells, "DateSubmitted"),
			DateResponded:           get(cells, "DateResponded"),
			From:                    get(cells, "From"),
			To:                      get(cells, "To"),
			Question:                get(cells, "Question"),
			Response:                get(cells, "Response"),
			RequiresDrawingRevision: get(cells, "RequiresDrawingRevision"),
			DecisionBasis:           get(cells, "DecisionBasis"),
			TopSignals:              get(cells, "TopSignals"),
			DetailRefs:              get(cells, "DetailRefs"),
			LocalPath:               get(cells, "LocalPath"),
			Status:                  get(cells, "Status"),
		})
	}
	return rows, nil
}

func dedupeKeepLast(rows []Row, key string) []Row {
	lastIdx := make(map[string]int, len(rows))
	for i, r := range rows {
		k := r.keyValue(key)
		if k == "" {
			continue
		}
		lastIdx[k] = i
	}
	out := make([]Row, 0, len(rows))
	for i, r := range rows {
		k := r.keyValue(key)
		if k != "" && lastIdx[k] != i {
			continue
		}
		out = append(out, r)
	}
	return out
}
