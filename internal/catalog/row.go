// Package catalog defines the output artifacts of a triage run: the catalog
// workbook rows and the per-document audit records.
package catalog

import (
	"sort"
	"strings"
)

// Row statuses.
const (
	StatusOK     = "ok"
	StatusOKWarn = "ok_warn" // processed, but no usable text was extracted
	StatusError  = "error"
)

// Row is one catalog line for one PDF.
type Row struct {
	RfiNumber               string
	PdfTitle                string
	DateSubmitted           string
	DateResponded           string
	From                    string
	To                      string
	Question                string
	Response                string
	RequiresDrawingRevision string // "Yes" | "No"
	DecisionBasis           string
	TopSignals              string
	DetailRefs              string
	LocalPath               string
	Status                  string
}

// Columns is the workbook header, in output order.
var Columns = []string{
	"RfiNumber", "PdfTitle", "DateSubmitted", "DateResponded", "From", "To",
	"Question", "Response", "RequiresDrawingRevision", "DecisionBasis",
	"TopSignals", "DetailRefs", "LocalPath", "Status",
}

// Values returns the row cells in Columns order, with blanks written as
// "null" so empty cells are visibly empty in the workbook.
func (r Row) Values() []string {
	vals := []string{
		r.RfiNumber, r.PdfTitle, r.DateSubmitted, r.DateResponded, r.From,
		r.To, r.Question, r.Response, r.RequiresDrawingRevision,
		r.DecisionBasis, r.TopSignals, r.DetailRefs, r.LocalPath, r.Status,
	}
	for i, v := range vals {
		if strings.TrimSpace(v) == "" {
			vals[i] = "null"
		}
	}
	return vals
}

// keyValue returns the cell for a dedupe key column, pre-"null" filling.
func (r Row) keyValue(col string) string {
	switch col {
	case "RfiNumber":
		return r.RfiNumber
	case "PdfTitle":
		return r.PdfTitle
	case "LocalPath":
		return r.LocalPath
	default:
		return ""
	}
}

// AuditRecord is one line of the run audit: where the text came from and
// what it cost, per document.
type AuditRecord struct {
	PDF                 string
	RfiNumber           string
	Method              string
	TextLen             int
	OCRUsed             bool
	OCRPages            int
	Attempts            int
	ForcedSecondAttempt bool
	ElapsedMS           int64
	Status              string
	Error               string
}

// Entry pairs the catalog row with its audit record for one document.
type Entry struct {
	Row   Row
	Audit AuditRecord
}

// SortRows orders rows for review: revision-required first, then by RFI
// number, then path for a stable order.
func SortRows(rows []Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].RequiresDrawingRevision != rows[j].RequiresDrawingRevision {
			return rows[i].RequiresDrawingRevision == "Yes"
		}
		if rows[i].RfiNumber != rows[j].RfiNumber {
			return rows[i].RfiNumber < rows[j].RfiNumber
		}
		return rows[i].LocalPath < rows[j].LocalPath
	})
}
