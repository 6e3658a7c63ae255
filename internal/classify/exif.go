package classify

import (
	"os"
	"strings"

	exif "github.com/dsoprea/go-exif/v3"
)

// HasCameraMetadata reports whether the file carries camera make/model
// EXIF tags. Camera-originated photos carry them; screenshots never do,
// so their presence is a cheap negative signal. Missing or unreadable
// EXIF reports false.
func HasCameraMetadata(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	tags, _, err := exif.GetFlatExifDataUniversalSearchWithReadSeeker(f, nil, true)
	if err != nil {
		return false
	}

	for _, tag := range tags {
		switch tag.TagName {
		case "Make", "Model", "CameraModelName":
			if value, ok := tag.Value.(string); !ok || strings.TrimSpace(value) != "" {
				return true
			}
		}
	}
	return false
}
