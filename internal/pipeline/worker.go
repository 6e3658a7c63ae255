package pipeline

import (
	"go.uber.org/zap"

	"github.com/daveio/ssdetect/internal/classify"
	"github.com/daveio/ssdetect/internal/disposer"
	"github.com/daveio/ssdetect/internal/ocr"
)

// workerContext holds the per-worker state: the classifier and its OCR
// engine handle. It is built lazily on the worker's first task, reused
// for every task after that, and never shared between workers.
type workerContext struct {
	classifier *classify.Classifier
	engine     ocr.Engine
	logger     *zap.Logger
}

func newWorkerContext(id int, opts Options) *workerContext {
	logger := opts.Logger.With(zap.Int("worker", id))

	var engine ocr.Engine
	if opts.Mode.UsesOCR() {
		factory := opts.EngineFactory
		if factory == nil {
			factory = func(useGPU bool) (ocr.Engine, error) {
				return ocr.NewTesseract(useGPU, logger)
			}
		}
		eng, err := factory(opts.UseGPU)
		if err != nil {
			// Degraded mode: the worker keeps running, OCR verdicts
			// report "OCR not initialized".
			logger.Error("failed to initialize OCR", zap.Error(err))
		} else {
			engine = eng
		}
	}

	ocrDet := classify.NewOCRDetector(engine,
		opts.OCRCharThreshold, opts.OCRConfThreshold, opts.ExtraHeuristics, logger)

	return &workerContext{
		classifier: classify.New(opts.Mode, classify.NewEdgeDetector(), ocrDet, opts.ExifPrefilter),
		engine:     engine,
		logger:     logger,
	}
}

func (w *workerContext) close() {
	if w.engine != nil {
		_ = w.engine.Close()
	}
}

// process classifies one task and, on a positive verdict, performs the
// configured disposition. It always returns exactly one outcome.
func (w *workerContext) process(task Task, dedup *dedupFilter) Outcome {
	out := Outcome{Task: task}

	screenshot, err := w.classifier.Classify(task.Path)
	if err != nil {
		out.Err = err
		return out
	}
	out.Screenshot = screenshot
	if !screenshot {
		return out
	}

	if dedup != nil && dedup.isDuplicate(task.Path) {
		out.Duplicate = true
		return out
	}

	switch {
	case task.MoveTo != "":
		out.Destination, out.Err = disposer.Move(task.Path, task.MoveTo)
	case task.CopyTo != "":
		out.Destination, out.Err = disposer.Copy(task.Path, task.CopyTo)
	}
	return out
}
