// Package watch polls an inbox directory for new screenshots and hands each
// unseen frame to a handler. A perceptual-hash gate skips re-captures of the
// same screen so one summary does not turn into several records.
package watch

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/corona10/goimagehash"
)

// Handler receives each new, non-duplicate screenshot.
type Handler func(path string, img image.Image) error

// Watcher polls a directory on a fixed interval. Files handled successfully
// are moved into a processed/ subdirectory; failed files stay in place but
// are not retried within the same run.
type Watcher struct {
	dir          string
	interval     time.Duration
	hashDistance int
	log          *slog.Logger

	handler  Handler
	lastHash *goimagehash.ImageHash
	seen     map[string]bool
}

// New creates a watcher over dir. The processed/ subdirectory is created on
// the first successful extraction.
func New(dir string, interval time.Duration, log *slog.Logger) *Watcher {
	if log == nil {
		log = slog.Default()
	}
	return &Watcher{
		dir:          dir,
		interval:     interval,
		hashDistance: 4,
		log:          log,
		seen:         make(map[string]bool),
	}
}

// OnImage sets the handler invoked for each new screenshot.
func (w *Watcher) OnImage(handler Handler) {
	w.handler = handler
}

// Run polls until the context is canceled.
func (w *Watcher) Run(ctx context.Context) error {
	if w.handler == nil {
		return fmt.Errorf("no handler registered")
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.log.Info("watching inbox", "dir", w.dir, "interval", w.interval)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.scan()
		}
	}
}

func (w *Watcher) scan() {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		w.log.Warn("cannot read inbox", "error", err)
		return
	}

	for _, entry := range entries {
		if entry.IsDir() || !isImageFile(entry.Name()) {
			continue
		}
		path := filepath.Join(w.dir, entry.Name())
		if w.seen[path] {
			continue
		}
		w.seen[path] = true
		w.process(path)
	}
}

func (w *Watcher) process(path string) {
	img, err := decodeImage(path)
	if err != nil {
		w.log.Warn("cannot decode image", "path", path, "error", err)
		return
	}

	hash, err := goimagehash.AverageHash(img)
	if err == nil {
		if w.lastHash != nil {
			if dist, derr := hash.Distance(w.lastHash); derr == nil && dist <= w.hashDistance {
				w.log.Info("duplicate frame skipped", "path", path, "distance", dist)
				w.moveProcessed(path)
				return
			}
		}
		w.lastHash = hash
	}

	if err := w.handler(path, img); err != nil {
		w.log.Error("extraction failed", "path", path, "error", err)
		return
	}
	w.moveProcessed(path)
}

func (w *Watcher) moveProcessed(path string) {
	dir := filepath.Join(w.dir, "processed")
	if err := os.MkdirAll(dir, 0755); err != nil {
		w.log.Warn("cannot create processed dir", "error", err)
		return
	}
	dest := filepath.Join(dir, filepath.Base(path))
	if err := os.Rename(path, dest); err != nil {
		w.log.Warn("cannot move processed file", "path", path, "error", err)
	}
}

func isImageFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png", ".jpg", ".jpeg", ".tif", ".tiff":
		return true
	}
	return false
}

func decodeImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	return img, err
}
