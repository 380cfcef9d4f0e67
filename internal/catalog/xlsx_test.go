package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

func sampleRow(n, path, verdict string) Row {
	return Row{
		RfiNumber:               n,
		PdfTitle:                "Sample " + n,
		RequiresDrawingRevision: verdict,
		DecisionBasis:           "StrongSignal",
		LocalPath:               path,
		Status:                  StatusOK,
	}
}

func TestWriterRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.xlsx")
	w := NewWriter(path, nil)

	out, err := w.Write([]Row{
		sampleRow("RFI-2", "/tmp/b.pdf", "No"),
		sampleRow("RFI-1", "/tmp/a.pdf", "Yes"),
	}, WriteOptions{})
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if out != path {
		t.Fatalf("wrote to %q, want %q", out, path)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open written workbook: %v", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Catalog")
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header + 2", len(rows))
	}
	if rows[0][0] != "RfiNumber" {
		t.Errorf("header = %q", rows[0][0])
	}
	// revision-required row sorts first
	if rows[1][0] != "RFI-1" {
		t.Errorf("first data row = %q, want RFI-1", rows[1][0])
	}
	// blank cells land as "null"
	if rows[1][2] != "null" {
		t.Errorf("empty date cell = %q, want null", rows[1][2])
	}

	// only the renamed workbook remains, no temp siblings
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "catalog.xlsx" {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("output dir contents = %v, want only catalog.xlsx", names)
	}
}

func TestWriterAppendMergesAndDedupes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.xlsx")
	w := NewWriter(path, nil)

	if _, err := w.Write([]Row{
		sampleRow("RFI-1", "/tmp/a.pdf", "No"),
		sampleRow("RFI-2", "/tmp/b.pdf", "No"),
	}, WriteOptions{}); err != nil {
		t.Fatalf("first write: %v", err)
	}

	// second batch revisits a.pdf with a new verdict
	if _, err := w.Write([]Row{
		sampleRow("RFI-1", "/tmp/a.pdf", "Yes"),
	}, WriteOptions{Append: true, DedupeKey: "LocalPath"}); err != nil {
		t.Fatalf("append write: %v", err)
	}

	got, err := w.readExisting()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d rows after dedupe, want 2", len(got))
	}
	for _, r := range got {
		if r.LocalPath == "/tmp/a.pdf" && r.RequiresDrawingRevision != "Yes" {
			t.Errorf("a.pdf verdict = %q, want the later row kept", r.RequiresDrawingRevision)
		}
	}
}
