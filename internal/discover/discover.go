// Package discover lists the image files a run will classify.
package discover

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// imageExtensions is the case-insensitive allow-list of image formats.
var imageExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".bmp":  {},
	".gif":  {},
	".webp": {},
	".tiff": {},
	".tif":  {},
	".heic": {},
	".heif": {},
	".avif": {},
}

// ImageFiles recursively finds all image files under root and returns
// them sorted by path. The sort order defines task submission order.
func ImageFiles(root string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		if IsImageFile(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// IsImageFile reports whether the path has a supported image extension.
func IsImageFile(path string) bool {
	_, ok := imageExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}
