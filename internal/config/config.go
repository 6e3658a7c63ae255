// Package config loads optional flag defaults from a YAML file so common
// settings don't have to be repeated on every invocation.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// File mirrors the CLI flags that may be defaulted from disk. Pointer
// fields distinguish "unset" from zero values.
type File struct {
	Mode            *string  `yaml:"mode"`
	Workers         *int     `yaml:"workers"`
	OCRChars        *int     `yaml:"ocr_chars"`
	OCRQuality      *float64 `yaml:"ocr_quality"`
	ExtraHeuristics *bool    `yaml:"extra_heuristics"`
	UseGPU          *bool    `yaml:"gpu"`
	ExifPrefilter   *bool    `yaml:"exif_prefilter"`
	SkipDuplicates  *bool    `yaml:"skip_duplicates"`
}

// DefaultPath returns the conventional config location, or "" when the
// user config directory cannot be determined.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "ssdetect", "config.yaml")
}

// Load reads defaults from path. A missing file (or empty path) is not
// an error; a malformed file is.
func Load(path string) (File, error) {
	if path == "" {
		return File{}, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return File{}, nil
	}
	if err != nil {
		return File{}, fmt.Errorf("read config: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return File{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return f, nil
}
