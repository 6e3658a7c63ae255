package pipeline

import (
	"go.uber.org/zap"

	"github.com/daveio/ssdetect/internal/classify"
	"github.com/daveio/ssdetect/internal/ocr"
)

// Task is one unit of classification work. Tasks are immutable once
// created; at most one of MoveTo/CopyTo is set.
type Task struct {
	Path   string
	Seq    int // 1-based submission index, stable per run
	MoveTo string
	CopyTo string
}

// Outcome is produced exactly once per task inside a worker and consumed
// exactly once by the drain loop.
type Outcome struct {
	Task        Task
	Screenshot  bool
	Err         error
	Destination string
	Duplicate   bool
}

// Classification renders the verdict for logs and the UI.
func (o Outcome) Classification() string {
	switch {
	case o.Err != nil:
		return "error"
	case o.Screenshot:
		return "screenshot"
	default:
		return "other"
	}
}

// Action reports what happened to the file.
func (o Outcome) Action() string {
	if o.Err != nil || !o.Screenshot {
		return "none"
	}
	if o.Duplicate {
		return "skipped"
	}
	switch {
	case o.Task.MoveTo != "":
		return "moved"
	case o.Task.CopyTo != "":
		return "copied"
	default:
		return "none"
	}
}

// ProgressUpdate carries counter deltas and the latest result row from
// the drain loop to whatever renders progress.
type ProgressUpdate struct {
	TotalDelta      int
	ScreenshotDelta int
	OtherDelta      int
	ErrorDelta      int
	Row             *ResultRow
}

// ResultRow is one line of the live results table.
type ResultRow struct {
	File           string
	Classification string
	Action         string
}

// Options configures a pipeline run.
type Options struct {
	Mode             classify.Mode
	Workers          int
	OCRCharThreshold int
	OCRConfThreshold float64
	ExtraHeuristics  bool
	UseGPU           bool
	ExifPrefilter    bool
	SkipDuplicates   bool
	MoveTo           string
	CopyTo           string

	// EngineFactory overrides the OCR backend; nil selects Tesseract.
	EngineFactory ocr.Factory
	Logger        *zap.Logger
}
