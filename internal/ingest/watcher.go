package ingest

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/lebenh/rfi-triage/internal/fields"
)

// Watcher emits a Document whenever a PDF is created or written under the
// watched root. Top-level subfolders are watched too, matching the
// folder-per-RFI layout; deeper nesting requires a rescan.
type Watcher struct {
	watcher *fsnotify.Watcher
	logger  *slog.Logger
}

func NewWatcher(logger *slog.Logger) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{watcher: w, logger: logger}, nil
}

// Watch starts monitoring root and returns the document channel. The channel
// closes when ctx is done.
func (w *Watcher) Watch(ctx context.Context, root string) (<-chan Document, error) {
	if err := w.watcher.Add(root); err != nil {
		return nil, err
	}
	if entries, err := filepath.Glob(filepath.Join(root, "*")); err == nil {
		for _, e := range entries {
			// best effort; non-directories are rejected by fsnotify
			_ = w.watcher.Add(e)
		}
	}

	docs := make(chan Document, 64)

	go func() {
		defer close(docs)
		defer func() {
			_ = w.watcher.Close()
		}()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if event.Op&fsnotify.Create != 0 {
					// new RFI folder: start watching inside it
					_ = w.watcher.Add(event.Name)
				}
				if event.Op&(fsnotify.Create|fsnotify.Write) == 0 || !isPDF(event.Name) {
					continue
				}
				doc := Document{
					RfiNumber: rfiNumberForPath(event.Name),
					Path:      event.Name,
				}
				select {
				case docs <- doc:
				case <-ctx.Done():
					return
				}
			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				w.logger.Warn("watch error", "error", err)
			}
		}
	}()

	return docs, nil
}

// rfiNumberForPath derives the RFI number from the parent folder first, then
// the file name.
func rfiNumberForPath(path string) string {
	if n := fields.RFINumber(filepath.Base(filepath.Dir(path))); n != "" {
		return n
	}
	return fields.RFINumber(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
}
