package extract

import "context"

// LayoutBackend extracts text with poppler's pdftotext in -layout mode. It is
// tried first: layout-aware output keeps header fields ("To:", "From:",
// "Question:") roughly where they appear on the page, which reads best for
// correspondence PDFs.
type LayoutBackend struct {
	Bin    string // binary name or absolute path; if empty -> "pdftotext"
	runner Runner
}

func NewLayoutBackend(bin string) *LayoutBackend {
	if bin == "" {
		bin = "pdftotext"
	}
	return &LayoutBackend{Bin: bin, runner: execRunner{}}
}

func (b *LayoutBackend) Name() string { return MethodLayout }

func (b *LayoutBackend) Extract(ctx context.Context, path string) (string, error) {
	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, errb, err := b.runner.Run(ctx, b.Bin, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		return "", classifyExecErr(b.Name(), ctx, err, errb)
	}
	return string(out), nil
}
