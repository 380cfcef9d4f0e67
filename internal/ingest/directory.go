// Package ingest discovers the PDF documents of a triage run. It understands
// the two layouts the RFI archives come in: one subfolder per RFI, or a flat
// folder of PDFs.
package ingest

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lebenh/rfi-triage/internal/fields"
)

// Document is one PDF task for the pipeline.
type Document struct {
	RfiNumber string
	Path      string
}

// Stats summarizes a scan.
type Stats struct {
	Folders  int
	Scanned  int
	Selected int
	Skipped  int
}

// maxPDFsPerFolder caps how many candidate PDFs one RFI folder contributes.
const maxPDFsPerFolder = 5

var excludeDirs = map[string]struct{}{
	"__pycache__": {}, "_results": {}, ".git": {}, ".github": {},
	".venv": {}, "venv": {}, "env": {}, "node_modules": {},
	".idea": {}, ".vscode": {},
}

// ScanRoot walks root and returns the documents to process, in a stable
// order. If root has (non-excluded) subfolders, each one that contains at
// least one PDF is treated as an RFI folder and searched recursively;
// otherwise PDFs directly under root are individual RFIs. limit > 0 caps the
// number of folders (or flat files) taken.
func ScanRoot(root string, limit int) ([]Document, Stats, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, Stats{}, fmt.Errorf("local root not found or not a directory: %s", root)
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("read root: %w", err)
	}

	var subdirs []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		name := e.Name()
		if _, excluded := excludeDirs[strings.ToLower(name)]; excluded {
			continue
		}
		if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
			continue
		}
		subdirs = append(subdirs, name)
	}
	sort.Slice(subdirs, func(i, j int) bool {
		return strings.ToLower(subdirs[i]) < strings.ToLower(subdirs[j])
	})

	var docs []Document
	var stats Stats

	if len(subdirs) > 0 {
		// Mode A: per-RFI subfolders.
		if limit > 0 && len(subdirs) > limit {
			subdirs = subdirs[:limit]
		}
		for _, name := range subdirs {
			dir := filepath.Join(root, name)
			pdfs, scanned := collectPDFs(dir)
			stats.Scanned += scanned
			if len(pdfs) == 0 {
				stats.Skipped++
				continue
			}
			stats.Folders++
			pdfs = rankCandidates(pdfs)
			rfiNo := fields.RFINumber(name)
			for _, p := range pdfs {
				docs = append(docs, Document{RfiNumber: rfiNo, Path: p})
			}
			stats.Selected += len(pdfs)
		}
		return docs, stats, nil
	}

	// Mode B: flat folder of PDFs.
	var flat []string
	for _, e := range entries {
		if e.IsDir() || !isPDF(e.Name()) {
			continue
		}
		flat = append(flat, filepath.Join(root, e.Name()))
	}
	sort.Strings(flat)
	stats.Scanned = len(flat)
	if limit > 0 && len(flat) > limit {
		flat = flat[:limit]
	}
	for _, p := range flat {
		docs = append(docs, Document{
			RfiNumber: fields.RFINumber(strings.TrimSuffix(filepath.Base(p), filepath.Ext(p))),
			Path:      p,
		})
	}
	stats.Selected = len(docs)
	return docs, stats, nil
}

func collectPDFs(dir string) (pdfs []string, scanned int) {
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil // skip unreadable entries, keep walking
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		scanned++
		if isPDF(path) {
			pdfs = append(pdfs, path)
		}
		return nil
	})
	return pdfs, scanned
}

// rankCandidates prefers PDFs whose names look like responses or RFIs, then
// larger files, and keeps at most maxPDFsPerFolder.
func rankCandidates(pdfs []string) []string {
	type scored struct {
		path string
		key  int
		size int64
	}
	items := make([]scored, 0, len(pdfs))
	for _, p := range pdfs {
		s := scored{path: p}
		name := strings.ToLower(filepath.Base(p))
		for _, kw := range []string{"response", "answer", "reply", "rfi", "sk-"} {
			if strings.Contains(name, kw) {
				s.key += 10
			}
		}
		if info, err := os.Stat(p); err == nil {
			s.size = info.Size()
		}
		items = append(items, s)
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].key != items[j].key {
			return items[i].key > items[j].key
		}
		return items[i].size > items[j].size
	})
	if len(items) > maxPDFsPerFolder {
		items = items[:maxPDFsPerFolder]
	}
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = s.path
	}
	return out
}

func isPDF(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}
