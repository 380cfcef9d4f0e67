package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path string, size int) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, make([]byte, size), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestScanRootFolderLayout(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "RFI 001", "response.pdf"), 10)
	writeFile(t, filepath.Join(root, "RFI 001", "notes.txt"), 5)
	writeFile(t, filepath.Join(root, "RFI 002 - Storm Pipe", "sub", "RFI 002 reply.pdf"), 10)
	writeFile(t, filepath.Join(root, "Empty Folder", "readme.txt"), 3)
	writeFile(t, filepath.Join(root, "__pycache__", "junk.pdf"), 10)
	writeFile(t, filepath.Join(root, "_results", "old.pdf"), 10)

	docs, stats, err := ScanRoot(root, 0)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}

	if stats.Folders != 2 {
		t.Errorf("folders = %d, want 2", stats.Folders)
	}
	if stats.Skipped != 1 {
		t.Errorf("skipped = %d, want 1 (folder without PDFs)", stats.Skipped)
	}
	if len(docs) != 2 {
		t.Fatalf("docs = %d, want 2", len(docs))
	}
	if docs[0].RfiNumber != "RFI-1" {
		t.Errorf("first doc number = %q, want RFI-1", docs[0].RfiNumber)
	}
	if docs[1].RfiNumber != "RFI-2" {
		t.Errorf("second doc number = %q, want RFI-2", docs[1].RfiNumber)
	}
	if filepath.Base(docs[1].Path) != "RFI 002 reply.pdf" {
		t.Errorf("nested PDF not found: %q", docs[1].Path)
	}
}

func TestScanRootFlatLayout(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "RFI-12 response.pdf"), 10)
	writeFile(t, filepath.Join(root, "RFI-7.PDF"), 10)
	writeFile(t, filepath.Join(root, "misc.txt"), 3)

	docs, stats, err := ScanRoot(root, 0)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("docs = %d, want 2", len(docs))
	}
	if stats.Selected != 2 {
		t.Errorf("selected = %d, want 2", stats.Selected)
	}
	// sorted by path: RFI-12 before RFI-7
	if docs[0].RfiNumber != "RFI-12" || docs[1].RfiNumber != "RFI-7" {
		t.Errorf("numbers = %q, %q", docs[0].RfiNumber, docs[1].RfiNumber)
	}
}

func TestScanRootLimit(t *testing.T) {
	root := t.TempDir()
	for i := 1; i <= 4; i++ {
		writeFile(t, filepath.Join(root, fmt.Sprintf("RFI %03d", i), "doc.pdf"), 10)
	}

	docs, _, err := ScanRoot(root, 2)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(docs) != 2 {
		t.Errorf("docs = %d, want limit applied", len(docs))
	}
}

func TestScanRootCandidateRanking(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "RFI 005")
	// seven PDFs: only five survive, keyword-named ones first
	writeFile(t, filepath.Join(dir, "response final.pdf"), 10)
	writeFile(t, filepath.Join(dir, "big attachment.pdf"), 5000)
	for i := 1; i <= 5; i++ {
		writeFile(t, filepath.Join(dir, fmt.Sprintf("scan%d.pdf", i)), 100)
	}

	docs, _, err := ScanRoot(root, 0)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(docs) != 5 {
		t.Fatalf("docs = %d, want capped at 5", len(docs))
	}
	if filepath.Base(docs[0].Path) != "response final.pdf" {
		t.Errorf("first candidate = %q, want the keyword-named PDF", filepath.Base(docs[0].Path))
	}
	for _, d := range docs {
		if d.RfiNumber != "RFI-5" {
			t.Errorf("doc number = %q, want RFI-5", d.RfiNumber)
		}
	}
}

func TestScanRootMissing(t *testing.T) {
	if _, _, err := ScanRoot(filepath.Join(t.TempDir(), "nope"), 0); err == nil {
		t.Fatal("expected an error for a missing root")
	}
}
