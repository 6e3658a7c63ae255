package pipeline

import (
	"sync"

	"github.com/corona10/goimagehash"

	"github.com/daveio/ssdetect/pkg/imgutil"
)

// dedupThreshold is the maximum Hamming distance between two dHash
// values below which images are considered perceptually identical.
const dedupThreshold = 10

// dedupFilter is a per-run duplicate filter based on perceptual hashing.
// It is safe for concurrent use by all workers.
type dedupFilter struct {
	mu     sync.Mutex
	hashes []*goimagehash.ImageHash
}

// isDuplicate reports whether the image at path is perceptually identical
// to a previously seen one. Any decode or hash failure accepts the image
// as unique (graceful degradation). A unique image's hash is retained for
// future comparisons.
func (d *dedupFilter) isDuplicate(path string) bool {
	img, err := imgutil.Decode(path)
	if err != nil {
		return false
	}

	hash, err := goimagehash.DifferenceHash(img)
	if err != nil {
		return false
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	for _, h := range d.hashes {
		dist, err := hash.Distance(h)
		if err == nil && dist < dedupThreshold {
			return true
		}
	}

	d.hashes = append(d.hashes, hash)
	return false
}
