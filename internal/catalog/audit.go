package catalog

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

var auditColumns = []string{
	"pdf", "rfi_no", "method", "text_len", "ocr_used", "ocr_pages",
	"attempts", "forced_second_attempt", "elapsed_ms", "status", "error",
}

// WriteAuditCSV writes the run audit next to the catalog workbook. Same
// temp-then-rename discipline as the workbook, without the lock retry: the
// audit file is rarely held open.
func WriteAuditCSV(path string, recs []AuditRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	tmp := fmt.Sprintf("%s.tmp.%d", path, os.Getpid())
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(f)
	if err := cw.Write(auditColumns); err != nil {
		_ = f.Close()
		return err
	}
	for _, r := range recs {
		row := []string{
			r.PDF,
			r.RfiNumber,
			r.Method,
			strconv.Itoa(r.TextLen),
			strconv.FormatBool(r.OCRUsed),
			strconv.Itoa(r.OCRPages),
			strconv.Itoa(r.Attempts),
			strconv.FormatBool(r.ForcedSecondAttempt),
			strconv.FormatInt(r.ElapsedMS, 10),
			r.Status,
			r.Error,
		}
		if err := cw.Write(row); err != nil {
			_ = f.Close()
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
