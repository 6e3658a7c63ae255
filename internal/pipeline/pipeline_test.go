package pipeline

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/daveio/ssdetect/internal/classify"
	"github.com/daveio/ssdetect/internal/ocr"
)

type fakeEngine struct {
	regions []ocr.TextRegion
}

func (f *fakeEngine) Recognize(path string) ([]ocr.TextRegion, error) {
	return f.regions, nil
}

func (f *fakeEngine) Close() error { return nil }

// screenshotEngine returns regions that satisfy the primary rule at the
// default thresholds (10 chars, 0.6 confidence).
func screenshotEngine(bool) (ocr.Engine, error) {
	return &fakeEngine{regions: []ocr.TextRegion{{
		Box:        image.Rect(0, 0, 50, 10),
		Text:       strings.Repeat("a", 15),
		Confidence: 0.8,
	}}}, nil
}

func emptyEngine(bool) (ocr.Engine, error) {
	return &fakeEngine{}, nil
}

// cancellingEngine cancels the run context on its first recognition, so
// tests can interrupt a run once results are already in flight.
type cancellingEngine struct {
	cancel context.CancelFunc
}

func (c *cancellingEngine) Recognize(path string) ([]ocr.TextRegion, error) {
	c.cancel()
	return nil, nil
}

func (c *cancellingEngine) Close() error { return nil }

func writePNGFiles(t *testing.T, dir string, n int) []string {
	t.Helper()

	paths := make([]string, 0, n)
	for i := 0; i < n; i++ {
		path := filepath.Join(dir, fmt.Sprintf("img_%02d.png", i))
		f, err := os.Create(path)
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if err := png.Encode(f, image.NewGray(image.Rect(0, 0, 32, 32))); err != nil {
			t.Fatalf("encode: %v", err)
		}
		if err := f.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
		paths = append(paths, path)
	}
	return paths
}

func TestRunDrainsEveryTaskExactlyOnce(t *testing.T) {
	dir := t.TempDir()
	paths := writePNGFiles(t, dir, 9)

	// One file that will fail to decode.
	corrupt := filepath.Join(dir, "broken.png")
	if err := os.WriteFile(corrupt, []byte("not a png"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	paths = append(paths, corrupt)

	updates := make(chan ProgressUpdate, len(paths))
	result := Run(context.Background(), paths, Options{
		Mode:             classify.ModeOCR,
		Workers:          4,
		OCRCharThreshold: 10,
		OCRConfThreshold: 0.6,
		EngineFactory:    screenshotEngine,
	}, updates)
	close(updates)

	if result.Submitted != len(paths) || result.Drained != len(paths) {
		t.Fatalf("submitted %d, drained %d, want both %d", result.Submitted, result.Drained, len(paths))
	}
	if result.Total != result.Screenshots+result.Other+result.Errors {
		t.Fatalf("invariant violated: %+v", result.Summary)
	}
	if result.Screenshots != 9 || result.Errors != 1 || result.Other != 0 {
		t.Fatalf("unexpected tallies: %+v", result.Summary)
	}

	rows := 0
	seen := map[string]bool{}
	for update := range updates {
		if update.Row == nil {
			continue
		}
		rows++
		if seen[update.Row.File] {
			t.Fatalf("duplicate result for %s", update.Row.File)
		}
		seen[update.Row.File] = true
	}
	if rows != len(paths) {
		t.Fatalf("expected %d result rows, got %d", len(paths), rows)
	}
}

func TestRunCopiesScreenshots(t *testing.T) {
	dir := t.TempDir()
	dstDir := filepath.Join(t.TempDir(), "screens")
	paths := writePNGFiles(t, dir, 3)

	result := Run(context.Background(), paths, Options{
		Mode:             classify.ModeOCR,
		Workers:          2,
		OCRCharThreshold: 10,
		OCRConfThreshold: 0.6,
		CopyTo:           dstDir,
		EngineFactory:    screenshotEngine,
	}, nil)

	if result.Screenshots != 3 || result.Errors != 0 {
		t.Fatalf("unexpected tallies: %+v", result.Summary)
	}

	entries, err := os.ReadDir(dstDir)
	if err != nil {
		t.Fatalf("read destination: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 copies, found %d", len(entries))
	}
	for _, path := range paths {
		if _, err := os.Lstat(path); err != nil {
			t.Fatalf("copy removed source %s: %v", path, err)
		}
	}
}

func TestRunOtherVerdicts(t *testing.T) {
	dir := t.TempDir()
	paths := writePNGFiles(t, dir, 4)

	result := Run(context.Background(), paths, Options{
		Mode:             classify.ModeOCR,
		Workers:          2,
		OCRCharThreshold: 10,
		OCRConfThreshold: 0.6,
		EngineFactory:    emptyEngine,
	}, nil)

	if result.Other != 4 || result.Screenshots != 0 || result.Errors != 0 {
		t.Fatalf("unexpected tallies: %+v", result.Summary)
	}
}

func TestRunInterrupted(t *testing.T) {
	dir := t.TempDir()
	paths := writePNGFiles(t, dir, 6)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := Run(ctx, paths, Options{
		Mode:             classify.ModeOCR,
		Workers:          2,
		OCRCharThreshold: 10,
		OCRConfThreshold: 0.6,
		EngineFactory:    screenshotEngine,
	}, nil)

	if !result.Interrupted {
		t.Fatal("cancelled run not reported as interrupted")
	}
	if result.Drained > result.Submitted {
		t.Fatalf("drained %d more than submitted %d", result.Drained, result.Submitted)
	}
	if result.Total != result.Screenshots+result.Other+result.Errors {
		t.Fatalf("invariant violated after interrupt: %+v", result.Summary)
	}
}

// After cancellation the updates reader may already be gone, but the run
// must still drain and return instead of blocking on the channel.
func TestRunReturnsAfterUpdateReaderGone(t *testing.T) {
	dir := t.TempDir()
	paths := writePNGFiles(t, dir, 8)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Unbuffered and never read: any blocking send would wedge the run.
	updates := make(chan ProgressUpdate)
	done := make(chan RunResult, 1)
	go func() {
		done <- Run(ctx, paths, Options{
			Mode:             classify.ModeOCR,
			Workers:          4,
			OCRCharThreshold: 10,
			OCRConfThreshold: 0.6,
			EngineFactory: func(bool) (ocr.Engine, error) {
				return &cancellingEngine{cancel: cancel}, nil
			},
		}, updates)
	}()

	select {
	case result := <-done:
		if !result.Interrupted {
			t.Fatal("cancelled run not reported as interrupted")
		}
	case <-time.After(10 * time.Second):
		t.Fatal("run did not return after cancellation with no update reader")
	}
}

func TestRunSkipDuplicates(t *testing.T) {
	dir := t.TempDir()
	dstDir := filepath.Join(t.TempDir(), "screens")

	// Identical pixel content decodes to identical perceptual hashes.
	paths := writePNGFiles(t, dir, 3)

	result := Run(context.Background(), paths, Options{
		Mode:             classify.ModeOCR,
		Workers:          1,
		OCRCharThreshold: 10,
		OCRConfThreshold: 0.6,
		CopyTo:           dstDir,
		SkipDuplicates:   true,
		EngineFactory:    screenshotEngine,
	}, nil)

	if result.Screenshots != 3 {
		t.Fatalf("duplicates must keep their verdict: %+v", result.Summary)
	}

	entries, err := os.ReadDir(dstDir)
	if err != nil {
		t.Fatalf("read destination: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected a single copy of identical screenshots, found %d", len(entries))
	}
}
