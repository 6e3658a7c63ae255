// Package ocr wraps text recognition behind a narrow engine interface so
// the classifier never depends on a concrete inference backend.
package ocr

import "image"

// TextRegion is a single recognized text block.
type TextRegion struct {
	Box        image.Rectangle
	Text       string
	Confidence float64 // normalized to [0, 1]
}

// Engine runs text recognition on an image file. Implementations are not
// safe for concurrent use; every worker owns its own instance.
type Engine interface {
	Recognize(path string) ([]TextRegion, error)
	Close() error
}

// Factory builds a fresh engine for a worker. The flag communicates the
// caller's GPU preference; whether it can be honored is up to the backend.
type Factory func(useGPU bool) (Engine, error)
