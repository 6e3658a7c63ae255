package system

import (
	"errors"
	"fmt"

	"github.com/shirou/gopsutil/v3/mem"
)

// ErrImageTooLarge is returned when decoding an image would exhaust the
// memory headroom of the process.
var ErrImageTooLarge = errors.New("image exceeds available memory")

// bytesPerPixel approximates the peak allocation per pixel across decode,
// grayscale conversion, and the edge-map buffers.
const bytesPerPixel = 16

// maxPixels caps image size regardless of available memory. 512 megapixels
// is far beyond any real screenshot.
const maxPixels = 512 << 20

// CheckImageFit reports whether an image of the given dimensions can be
// processed without exhausting memory. When system memory stats cannot be
// read the check degrades to the hard pixel cap only.
func CheckImageFit(width, height int) error {
	if width <= 0 || height <= 0 {
		return nil
	}

	pixels := uint64(width) * uint64(height)
	if pixels > maxPixels {
		return fmt.Errorf("%w: %dx%d", ErrImageTooLarge, width, height)
	}

	vm, err := mem.VirtualMemory()
	if err != nil {
		return nil
	}

	if pixels*bytesPerPixel > vm.Available {
		return fmt.Errorf("%w: %dx%d needs %d bytes, %d available",
			ErrImageTooLarge, width, height, pixels*bytesPerPixel, vm.Available)
	}
	return nil
}
