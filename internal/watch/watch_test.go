package watch

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writePNG(t *testing.T, path string, fill color.Gray) {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.SetGray(x, y, fill)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
}

// writeGradientPNG produces a frame whose average hash differs from a flat
// fill, so it passes the duplicate gate.
func writeGradientPNG(t *testing.T, path string) {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			if x < 32 {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
}

func TestScan_HandlesNewImagesOnce(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "a.png"), color.Gray{Y: 0})

	var handled []string
	w := New(dir, time.Second, nil)
	w.OnImage(func(path string, img image.Image) error {
		handled = append(handled, filepath.Base(path))
		return nil
	})

	w.scan()
	w.scan()
	if len(handled) != 1 || handled[0] != "a.png" {
		t.Fatalf("handled = %v, want [a.png]", handled)
	}

	if _, err := os.Stat(filepath.Join(dir, "processed", "a.png")); err != nil {
		t.Fatalf("processed file missing: %v", err)
	}
}

func TestScan_SkipsNonImagesAndDirs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.png"), 0755); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}

	w := New(dir, time.Second, nil)
	w.OnImage(func(path string, img image.Image) error {
		t.Fatalf("handler called for %s", path)
		return nil
	})
	w.scan()
}

func TestProcess_DuplicateFrameSkipped(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "first.png"), color.Gray{Y: 200})
	writePNG(t, filepath.Join(dir, "second.png"), color.Gray{Y: 200})
	writeGradientPNG(t, filepath.Join(dir, "third.png"))

	var handled []string
	w := New(dir, time.Second, nil)
	w.OnImage(func(path string, img image.Image) error {
		handled = append(handled, filepath.Base(path))
		return nil
	})

	for _, name := range []string{"first.png", "second.png", "third.png"} {
		w.seen[filepath.Join(dir, name)] = true
		w.process(filepath.Join(dir, name))
	}

	if len(handled) != 2 || handled[0] != "first.png" || handled[1] != "third.png" {
		t.Fatalf("handled = %v, want [first.png third.png]", handled)
	}
	// The duplicate is still moved out of the inbox.
	if _, err := os.Stat(filepath.Join(dir, "processed", "second.png")); err != nil {
		t.Fatalf("duplicate not moved: %v", err)
	}
}

func TestProcess_HandlerErrorKeepsFileInPlace(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "a.png")
	writePNG(t, path, color.Gray{Y: 0})

	w := New(dir, time.Second, nil)
	w.OnImage(func(path string, img image.Image) error {
		return fmt.Errorf("extraction failed")
	})
	w.process(path)

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("failed file must stay in inbox: %v", err)
	}
}

func TestRun_RequiresHandler(t *testing.T) {
	t.Parallel()

	w := New(t.TempDir(), time.Millisecond, nil)
	if err := w.Run(t.Context()); err == nil {
		t.Fatalf("expected error without a handler")
	}
}
