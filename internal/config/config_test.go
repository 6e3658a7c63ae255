package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "mode: edge\nworkers: 4\nocr_quality: 0.75\nextra_heuristics: false\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	f, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if f.Mode == nil || *f.Mode != "edge" {
		t.Fatalf("mode = %v", f.Mode)
	}
	if f.Workers == nil || *f.Workers != 4 {
		t.Fatalf("workers = %v", f.Workers)
	}
	if f.OCRQuality == nil || *f.OCRQuality != 0.75 {
		t.Fatalf("ocr_quality = %v", f.OCRQuality)
	}
	if f.ExtraHeuristics == nil || *f.ExtraHeuristics {
		t.Fatalf("extra_heuristics = %v", f.ExtraHeuristics)
	}
	if f.OCRChars != nil {
		t.Fatal("unset field reported as set")
	}
}

func TestLoadMissingFileIsNotAnError(t *testing.T) {
	f, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("missing file: %v", err)
	}
	if f.Mode != nil || f.Workers != nil {
		t.Fatal("missing file produced values")
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("mode: [unterminated"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("malformed config accepted")
	}
}
