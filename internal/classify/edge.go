package classify

import "image"

// edgeKernel is the horizontal-gradient kernel: responds to intensity
// changes between the rows above and below a pixel, which is what the
// hard horizontal lines of UI chrome produce.
var edgeKernel = [3][3]int{
	{-1, -1, -1},
	{0, 0, 0},
	{1, 1, 1},
}

// edgeMapScale is the upper bound of the rescaled edge map.
const edgeMapScale = 10

// LineFinder inspects a rescaled edge map (integer values in [0, 10],
// one row per image row) and returns the indices of rows judged to
// contain a horizontal line. An empty result means no lines were found.
type LineFinder func(edges [][]int) []int

// EdgeDetector decides whether a grayscale image contains the horizontal
// line pattern characteristic of window chrome, menu bars, and dialogs.
type EdgeDetector struct {
	findLines LineFinder
}

// NewEdgeDetector returns a detector using the default line finder.
func NewEdgeDetector() *EdgeDetector {
	return &EdgeDetector{findLines: HorizontalLineRows}
}

// NewEdgeDetectorWithFinder returns a detector with a custom line finder.
func NewEdgeDetectorWithFinder(finder LineFinder) *EdgeDetector {
	return &EdgeDetector{findLines: finder}
}

// Detect reports whether the grayscale image contains at least one
// horizontal line.
func (d *EdgeDetector) Detect(gray *image.Gray) bool {
	return len(d.findLines(EdgeMap(gray))) > 0
}

// EdgeMap convolves the image with the horizontal-gradient kernel using
// symmetric boundary extension, takes absolute values, and rescales the
// result linearly into [0, 10]. A flat image (no intensity variation)
// yields an all-zero map.
func EdgeMap(gray *image.Gray) [][]int {
	bounds := gray.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	raw := make([][]int, height)
	minVal, maxVal := 0, 0
	first := true
	for y := 0; y < height; y++ {
		raw[y] = make([]int, width)
		for x := 0; x < width; x++ {
			sum := 0
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					sum += edgeKernel[ky+1][kx+1] * int(grayAtSym(gray, x+kx, y+ky))
				}
			}
			if sum < 0 {
				sum = -sum
			}
			raw[y][x] = sum
			if first {
				minVal, maxVal = sum, sum
				first = false
				continue
			}
			if sum < minVal {
				minVal = sum
			}
			if sum > maxVal {
				maxVal = sum
			}
		}
	}

	out := make([][]int, height)
	for y := range out {
		out[y] = make([]int, width)
	}
	if minVal == maxVal {
		return out
	}

	span := float64(maxVal - minVal)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			out[y][x] = int(float64(raw[y][x]-minVal) * edgeMapScale / span)
		}
	}
	return out
}

// grayAtSym reads a pixel with symmetric boundary extension: indices past
// an edge reflect back including the edge pixel itself.
func grayAtSym(gray *image.Gray, x, y int) uint8 {
	bounds := gray.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	if x < 0 {
		x = -x - 1
	}
	if x >= width {
		x = 2*width - 1 - x
	}
	if y < 0 {
		y = -y - 1
	}
	if y >= height {
		y = 2*height - 1 - y
	}

	return gray.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y
}

// Default line finder tuning.
const (
	// lineStrength is the minimum rescaled gradient for a cell to count
	// as part of a line.
	lineStrength = 8
	// lineCoverage is the fraction of a row that must carry a strong
	// gradient for the row to qualify as a line.
	lineCoverage = 0.9
)

// HorizontalLineRows is the default LineFinder: a row qualifies when at
// least 90% of its cells carry a near-maximal gradient.
func HorizontalLineRows(edges [][]int) []int {
	var rows []int
	for y, row := range edges {
		if len(row) == 0 {
			continue
		}
		strong := 0
		for _, v := range row {
			if v >= lineStrength {
				strong++
			}
		}
		if float64(strong) >= lineCoverage*float64(len(row)) {
			rows = append(rows, y)
		}
	}
	return rows
}
