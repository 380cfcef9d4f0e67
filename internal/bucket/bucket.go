// Package bucket sorts the PDFs of a finished catalog into per-signal review
// folders, so reviewers can start with the strongest evidence.
package bucket

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/lebenh/rfi-triage/internal/classify"
	"github.com/lebenh/rfi-triage/internal/common"
)

const generalBucket = "RFI General"

var basisToBucket = map[string]string{
	string(classify.BasisStrongSignal):        "RFI Strong Signal",
	string(classify.BasisMediumCombo):         "RFI Medium Signal",
	string(classify.BasisDisciplineAndSketch): "RFI Discipline + Sketch",
	string(classify.BasisWeakSignal):          "RFI Weak Signal",
	string(classify.BasisNegatedOnly):         "RFI Insufficient Signal",
	string(classify.BasisInsufficientSignal):  "RFI Insufficient Signal",
}

// allBuckets pre-creates every destination so empty buckets are visible.
var allBuckets = []string{
	"RFI Strong Signal",
	"RFI Medium Signal",
	"RFI Discipline + Sketch",
	"RFI Weak Signal",
	"RFI Insufficient Signal",
	generalBucket,
}

// Options configures a sort run.
type Options struct {
	CatalogPath string
	LocalRoot   string
	DestRoot    string
	DryRun      bool
	Limit       int
}

// Summary reports what a sort run did.
type Summary struct {
	Rows          int
	Copied        int
	SkippedNonPDF int
	MissingSource int
}

// Sort reads the catalog workbook and copies each row's PDF into the bucket
// matching its decision basis. Existing files are never overwritten; clashes
// get a " (2)" style suffix.
func Sort(opts Options, logger *slog.Logger) (Summary, error) {
	var sum Summary
	if logger == nil {
		logger = slog.Default()
	}

	rows, err := readCatalog(opts.CatalogPath)
	if err != nil {
		return sum, err
	}
	if opts.Limit > 0 && len(rows) > opts.Limit {
		rows = rows[:opts.Limit]
	}

	if !opts.DryRun {
		for _, b := range allBuckets {
			if err := os.MkdirAll(filepath.Join(opts.DestRoot, b), 0o755); err != nil {
				return sum, common.WrapError(err, "create bucket folder")
			}
		}
	}

	for _, r := range rows {
		sum.Rows++

		src := r.localPath
		if src == "" {
			continue
		}
		if !filepath.IsAbs(src) {
			src = filepath.Join(opts.LocalRoot, src)
		}
		if !strings.EqualFold(filepath.Ext(src), ".pdf") {
			sum.SkippedNonPDF++
			continue
		}
		if _, err := os.Stat(src); err != nil {
			sum.MissingSource++
			logger.Warn("missing source", "path", src)
			continue
		}

		name := bucketFor(r.basis)
		dest := nextUniquePath(filepath.Join(opts.DestRoot, name, filepath.Base(src)))

		if opts.DryRun {
			logger.Info("would copy", "src", src, "dest", dest)
			continue
		}
		if err := copyFile(src, dest); err != nil {
			logger.Error("copy failed", "src", src, "error", err)
			continue
		}
		sum.Copied++
	}

	return sum, nil
}

func bucketFor(basis string) string {
	basis = strings.TrimSpace(basis)
	if basis == "" || strings.EqualFold(basis, "null") {
		return generalBucket
	}
	if b, ok := basisToBucket[basis]; ok {
		return b
	}
	return "RFI Insufficient Signal"
}

type catalogRow struct {
	localPath string
	basis     string
}

func readCatalog(path string) ([]catalogRow, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, common.WrapError(err, "open catalog workbook")
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	raw, err := f.GetRows(sheet)
	if err != nil {
		return nil, common.WrapError(err, "read catalog rows")
	}
	if len(raw) < 1 {
		return nil, fmt.Errorf("catalog workbook is empty: %s", path)
	}

	col := map[string]int{}
	for i, h := range raw[0] {
		col[h] = i
	}
	pathIdx, ok := col["LocalPath"]
	if !ok {
		return nil, fmt.Errorf("catalog missing LocalPath column: %s", path)
	}
	basisIdx, ok := col["DecisionBasis"]
	if !ok {
		return nil, fmt.Errorf("catalog missing DecisionBasis column: %s", path)
	}

	cell := func(row []string, idx int) string {
		if idx >= len(row) {
			return ""
		}
		v := strings.TrimSpace(row[idx])
		if strings.EqualFold(v, "null") {
			return ""
		}
		return v
	}

	var rows []catalogRow
	for _, r := range raw[1:] {
		rows = append(rows, catalogRow{
			localPath: cell(r, pathIdx),
			basis:     cell(r, basisIdx),
		})
	}
	return rows, nil
}

func nextUniquePath(dest string) string {
	if _, err := os.Stat(dest); err != nil {
		return dest
	}
	ext := filepath.Ext(dest)
	stem := strings.TrimSuffix(dest, ext)
	for i := 2; ; i++ {
		cand := fmt.Sprintf("%s (%d)%s", stem, i, ext)
		if _, err := os.Stat(cand); err != nil {
			return cand
		}
	}
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
