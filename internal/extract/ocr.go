package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// OCRConfig configures the rasterize+recognize fallback.
type OCRConfig struct {
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"
	Lang      string // default "eng"
	DPI       int    // rasterization DPI, default 300
	PSM       int    // tesseract page segmentation mode; 6 suits uniform text blocks
}

// PopplerOCR renders pages with pdftoppm and recognizes each page image
// independently with tesseract. A failed page is skipped, not fatal.
type PopplerOCR struct {
	cfg    OCRConfig
	runner Runner
}

func NewPopplerOCR(cfg OCRConfig) *PopplerOCR {
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Lang == "" {
		cfg.Lang = "eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	if cfg.PSM <= 0 {
		cfg.PSM = 6
	}
	return &PopplerOCR{cfg: cfg, runner: execRunner{}}
}

func (o *PopplerOCR) ExtractPages(ctx context.Context, path string, maxPages int) (string, int, string, error) {
	tmpDir, err := os.MkdirTemp("", "rfi-pp-*")
	if err != nil {
		return "", 0, "", err
	}
	defer func() {
		_ = os.RemoveAll(tmpDir)
	}()

	prefix := filepath.Join(tmpDir, "page")
	args := []string{"-r", fmt.Sprintf("%d", o.cfg.DPI), "-png"}
	if maxPages > 0 {
		args = append(args, "-f", "1", "-l", fmt.Sprintf("%d", maxPages))
	}
	args = append(args, path, prefix)
	if _, errb, err := o.runner.Run(ctx, o.cfg.Pdftoppm, args...); err != nil {
		return "", 0, "", classifyExecErr("pdftoppm", ctx, err, errb)
	}

	// collect generated pngs (prefix-1.png, prefix-2.png, ...)
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if maxPages > 0 && len(matches) > maxPages {
		matches = matches[:maxPages]
	}
	if len(matches) == 0 {
		return "", 0, "", &BackendError{Backend: "pdftoppm", Kind: ParseFailure, Reason: "no pages rendered"}
	}

	var b strings.Builder
	firstErr := ""
	for _, img := range matches {
		txt, err := o.recognize(ctx, img)
		if err != nil {
			if firstErr == "" {
				firstErr = err.Error()
			}
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(txt)
	}
	return b.String(), len(matches), firstErr, nil
}

func (o *PopplerOCR) recognize(ctx context.Context, img string) (string, error) {
	// tesseract <img> stdout -l <lang> --psm <n>
	args := []string{img, "stdout", "-l", o.cfg.Lang, "--psm", fmt.Sprintf("%d", o.cfg.PSM)}
	out, errb, err := o.runner.Run(ctx, o.cfg.Tesseract, args...)
	if err != nil {
		return "", classifyExecErr("tesseract", ctx, err, errb)
	}
	return string(out), nil
}
