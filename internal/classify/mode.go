package classify

import "fmt"

// Mode selects which detectors contribute to a verdict.
type Mode int

const (
	// ModeBoth runs edge detection first and falls back to OCR.
	ModeBoth Mode = iota
	// ModeEdge uses only horizontal edge detection.
	ModeEdge
	// ModeOCR uses only OCR text detection.
	ModeOCR
)

func (m Mode) String() string {
	switch m {
	case ModeEdge:
		return "edge"
	case ModeOCR:
		return "ocr"
	default:
		return "both"
	}
}

// UsesOCR reports whether the mode needs an OCR engine.
func (m Mode) UsesOCR() bool {
	return m == ModeOCR || m == ModeBoth
}

// ParseMode maps a CLI mode string onto its enum value.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "both", "":
		return ModeBoth, nil
	case "edge":
		return ModeEdge, nil
	case "ocr":
		return ModeOCR, nil
	default:
		return ModeBoth, fmt.Errorf("unknown detection mode %q (expected edge, ocr, or both)", s)
	}
}
