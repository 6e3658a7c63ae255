package classify

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/daveio/ssdetect/internal/ocr"
	"github.com/daveio/ssdetect/internal/system"
	"github.com/daveio/ssdetect/pkg/imgutil"
)

// ErrOCRNotInitialized signals that classification ran without a loaded
// OCR engine. It is a degraded-mode condition, not a crash.
var ErrOCRNotInitialized = errors.New("OCR not initialized")

// Empirically tuned constants for the extra heuristics. The values come
// from upstream tuning and are deliberately not re-derived.
const (
	highConfidenceCutoff = 0.7
	largeTextBlockRunes  = 20

	captionMinHighConf    = 2
	captionMinLargeBlocks = 2
	captionMinChars       = 30
	captionMinDensity     = 10.0

	denseMinDensity    = 15.0
	denseMinConfidence = 0.45
	denseMinChars      = 50
)

// OCRDetector scores recognized text against threshold and heuristic
// rules to decide screenshot-like text density.
type OCRDetector struct {
	engine          ocr.Engine
	charThreshold   int
	confThreshold   float64
	extraHeuristics bool
	logger          *zap.Logger
}

// NewOCRDetector builds a detector around an engine. A nil engine is
// allowed and makes every detection report ErrOCRNotInitialized.
func NewOCRDetector(engine ocr.Engine, charThreshold int, confThreshold float64, extraHeuristics bool, logger *zap.Logger) *OCRDetector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OCRDetector{
		engine:          engine,
		charThreshold:   charThreshold,
		confThreshold:   confThreshold,
		extraHeuristics: extraHeuristics,
		logger:          logger,
	}
}

// Detect recognizes text in the image at path and applies the decision
// rules. An image with no recognized text is simply not a screenshot.
func (d *OCRDetector) Detect(path string) (bool, error) {
	if d.engine == nil {
		return false, ErrOCRNotInitialized
	}

	width, height, err := imgutil.DecodeConfig(path)
	if err != nil {
		return false, fmt.Errorf("OCR failed: %v", err)
	}
	if err := system.CheckImageFit(width, height); err != nil {
		return false, ErrImageTooLarge
	}

	regions, err := d.engine.Recognize(path)
	if err != nil {
		return false, fmt.Errorf("OCR failed: %v", err)
	}
	if len(regions) == 0 {
		return false, nil
	}

	m := scoreRegions(regions, height)
	verdict := d.decide(m)

	d.logger.Debug("OCR classification complete",
		zap.String("image", path),
		zap.Int("total_chars", m.totalChars),
		zap.Float64("avg_confidence", m.avgConfidence),
		zap.Int("high_conf_regions", m.highConfRegions),
		zap.Int("large_text_blocks", m.largeTextBlocks),
		zap.Bool("has_bottom_text", m.hasBottomText),
		zap.Float64("text_density", m.textDensity),
		zap.Bool("is_screenshot", verdict),
	)

	return verdict, nil
}

// ocrMetrics aggregates the per-region measurements feeding the decision.
type ocrMetrics struct {
	totalChars        int
	avgConfidence     float64
	highConfRegions   int
	largeTextBlocks   int
	bottomTextRegions int
	hasBottomText     bool
	textDensity       float64
}

func scoreRegions(regions []ocr.TextRegion, imgHeight int) ocrMetrics {
	m := ocrMetrics{}
	confSum := 0.0
	bottomCut := float64(imgHeight) * 2 / 3

	for _, r := range regions {
		chars := utf8.RuneCountInString(r.Text)
		m.totalChars += chars
		confSum += r.Confidence

		if r.Confidence > highConfidenceCutoff {
			m.highConfRegions++
		}
		if chars > largeTextBlockRunes {
			m.largeTextBlocks++
		}
		if float64(r.Box.Min.Y) > bottomCut {
			m.bottomTextRegions++
		}
	}

	n := len(regions)
	m.avgConfidence = confSum / float64(n)
	m.hasBottomText = float64(m.bottomTextRegions) > float64(n)/2
	m.textDensity = float64(m.totalChars) / float64(n)
	return m
}

// decide applies the rules in precedence order; the first match wins.
func (d *OCRDetector) decide(m ocrMetrics) bool {
	// Primary rule, always active.
	if m.totalChars >= d.charThreshold && m.avgConfidence >= d.confThreshold {
		return true
	}

	if !d.extraHeuristics {
		return false
	}

	// Heuristic A: coherent high-confidence caption blocks in the lower
	// part of the image.
	if m.highConfRegions >= captionMinHighConf &&
		m.largeTextBlocks >= captionMinLargeBlocks &&
		m.hasBottomText &&
		m.totalChars >= captionMinChars &&
		m.textDensity > captionMinDensity {
		return true
	}

	// Heuristic B: dense, readable text at moderate confidence.
	if m.textDensity > denseMinDensity &&
		m.avgConfidence > denseMinConfidence &&
		m.totalChars >= denseMinChars {
		return true
	}

	return false
}
