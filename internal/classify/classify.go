// Package classify decides whether an image is a screenshot by combining
// a structural edge detector with OCR-based heuristic scoring.
package classify

import (
	"errors"
	"fmt"

	"github.com/daveio/ssdetect/internal/system"
	"github.com/daveio/ssdetect/pkg/imgutil"
)

// ErrImageTooLarge marks an image whose decode would exhaust memory.
var ErrImageTooLarge = errors.New("image too large to process")

// Classifier combines the detectors according to the configured mode.
type Classifier struct {
	mode          Mode
	edge          *EdgeDetector
	ocr           *OCRDetector
	exifPrefilter bool
}

// New builds a classifier. The OCR detector may be nil when the mode
// never consults it.
func New(mode Mode, edge *EdgeDetector, ocrDet *OCRDetector, exifPrefilter bool) *Classifier {
	return &Classifier{
		mode:          mode,
		edge:          edge,
		ocr:           ocrDet,
		exifPrefilter: exifPrefilter,
	}
}

// Classify returns the verdict for a single image. Every failure is a
// per-image error; decoder panics are recovered and reported the same way
// so one corrupt file can never take down the run.
func (c *Classifier) Classify(path string) (screenshot bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			screenshot = false
			err = fmt.Errorf("failed to classify: %v", r)
		}
	}()

	kind, err := imgutil.SniffFile(path)
	if err != nil {
		return false, fmt.Errorf("failed to open image: %v", err)
	}
	if kind == imgutil.KindUnknown {
		return false, errors.New("failed to open image: unrecognized format")
	}

	if c.exifPrefilter && HasCameraMetadata(path) {
		return false, nil
	}

	if c.mode == ModeEdge || c.mode == ModeBoth {
		hit, err := c.classifyEdge(path)
		if err != nil {
			return false, err
		}
		// In combined mode an edge hit short-circuits: OCR is skipped as
		// a cost saving, not as a tie-break.
		if hit || c.mode == ModeEdge {
			return hit, nil
		}
	}

	return c.ocr.Detect(path)
}

func (c *Classifier) classifyEdge(path string) (bool, error) {
	width, height, err := imgutil.DecodeConfig(path)
	if err != nil {
		return false, fmt.Errorf("failed to open image: %v", err)
	}
	if err := system.CheckImageFit(width, height); err != nil {
		return false, ErrImageTooLarge
	}

	img, err := imgutil.Decode(path)
	if err != nil {
		return false, fmt.Errorf("failed to open image: %v", err)
	}

	return c.edge.Detect(imgutil.ToGray(img)), nil
}
