package ocr

import (
	"fmt"

	"github.com/otiai10/gosseract/v2"
	"go.uber.org/zap"
)

// TesseractEngine recognizes text with a process-local Tesseract client.
type TesseractEngine struct {
	client *gosseract.Client
}

// NewTesseract initializes a Tesseract client for English text. Tesseract
// runs on the CPU only; a GPU preference is acknowledged in the log and
// otherwise ignored.
func NewTesseract(useGPU bool, logger *zap.Logger) (Engine, error) {
	if logger != nil {
		if useGPU {
			logger.Warn("GPU requested but OCR backend is CPU-only, using CPU")
		} else {
			logger.Info("OCR backend initialized on CPU")
		}
	}

	client := gosseract.NewClient()
	if err := client.SetLanguage("eng"); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("set OCR language: %w", err)
	}

	return &TesseractEngine{client: client}, nil
}

// Recognize runs text-line recognition and returns one region per detected
// line. Tesseract reports confidence in [0, 100]; it is normalized here.
func (e *TesseractEngine) Recognize(path string) ([]TextRegion, error) {
	if err := e.client.SetImage(path); err != nil {
		return nil, fmt.Errorf("set image: %w", err)
	}

	boxes, err := e.client.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil {
		return nil, fmt.Errorf("recognize: %w", err)
	}

	regions := make([]TextRegion, 0, len(boxes))
	for _, box := range boxes {
		if box.Word == "" {
			continue
		}
		regions = append(regions, TextRegion{
			Box:        box.Box,
			Text:       box.Word,
			Confidence: box.Confidence / 100,
		})
	}
	return regions, nil
}

func (e *TesseractEngine) Close() error {
	return e.client.Close()
}
