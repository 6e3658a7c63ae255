package classify

import (
	"image"
	"image/color"
	"testing"
)

func TestEdgeMapFlatImage(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 50, 50))
	for i := range gray.Pix {
		gray.Pix[i] = 128
	}

	edges := EdgeMap(gray)
	for y, row := range edges {
		for x, v := range row {
			if v != 0 {
				t.Fatalf("flat image produced edge value %d at (%d,%d)", v, x, y)
			}
		}
	}

	if NewEdgeDetector().Detect(gray) {
		t.Fatal("flat image classified as screenshot")
	}
}

func TestDetectHorizontalTransition(t *testing.T) {
	// Dark upper half, bright lower half: the transition excites the
	// horizontal-gradient kernel across the full row width.
	gray := image.NewGray(image.Rect(0, 0, 40, 40))
	for y := 20; y < 40; y++ {
		for x := 0; x < 40; x++ {
			gray.SetGray(x, y, color.Gray{Y: 255})
		}
	}

	if !NewEdgeDetector().Detect(gray) {
		t.Fatal("horizontal transition not detected")
	}
}

func TestEdgeMapRescalesToBounds(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 30, 30))
	for y := 10; y < 30; y++ {
		for x := 0; x < 30; x++ {
			gray.SetGray(x, y, color.Gray{Y: 200})
		}
	}

	edges := EdgeMap(gray)
	sawMax := false
	for _, row := range edges {
		for _, v := range row {
			if v < 0 || v > edgeMapScale {
				t.Fatalf("edge value %d outside [0,%d]", v, edgeMapScale)
			}
			if v == edgeMapScale {
				sawMax = true
			}
		}
	}
	if !sawMax {
		t.Fatal("rescaled edge map never reaches the upper bound")
	}
}

func TestHorizontalLineRows(t *testing.T) {
	edges := make([][]int, 5)
	for y := range edges {
		edges[y] = make([]int, 10)
	}
	for x := range edges[2] {
		edges[2][x] = 10
	}
	// A row with weak coverage must not qualify.
	for x := 0; x < 5; x++ {
		edges[4][x] = 10
	}

	rows := HorizontalLineRows(edges)
	if len(rows) != 1 || rows[0] != 2 {
		t.Fatalf("expected row [2], got %v", rows)
	}
}

func TestDetectCustomFinder(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 8, 8))

	detector := NewEdgeDetectorWithFinder(func(edges [][]int) []int {
		return []int{0}
	})
	if !detector.Detect(gray) {
		t.Fatal("detector ignored finder result")
	}

	detector = NewEdgeDetectorWithFinder(func(edges [][]int) []int {
		return nil
	})
	if detector.Detect(gray) {
		t.Fatal("detector reported lines from an empty finder result")
	}
}
