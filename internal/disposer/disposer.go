// Package disposer relocates classified screenshots with conflict-safe
// naming and best-effort sidecar handling.
package disposer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// sidecarExt is the auxiliary metadata extension expected to travel with
// an image on move or copy.
const sidecarExt = ".xmp"

// Move relocates src into dstDir and returns the final destination path.
// Name collisions are resolved with a numeric suffix before the
// extension. Collision probing re-checks existence on every candidate but
// is only best-effort across concurrent processes: a window remains
// between the existence check and the rename.
func Move(src, dstDir string) (string, error) {
	dst, err := dispose(src, dstDir, true)
	if err != nil {
		return "", fmt.Errorf("failed to move: %v", err)
	}
	return dst, nil
}

// Copy copies src into dstDir and returns the final destination path,
// with the same collision handling as Move.
func Copy(src, dstDir string) (string, error) {
	dst, err := dispose(src, dstDir, false)
	if err != nil {
		return "", fmt.Errorf("failed to copy: %v", err)
	}
	return dst, nil
}

func dispose(src, dstDir string, move bool) (string, error) {
	// MkdirAll succeeds when another worker creates the directory first.
	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return "", err
	}

	dst := probeDestination(dstDir, filepath.Base(src))

	var err error
	if move {
		err = moveFile(src, dst)
	} else {
		err = copyFile(src, dst)
	}
	if err != nil {
		return "", err
	}

	// Sidecar failures never escalate past the primary operation.
	disposeSidecars(src, dst, move)

	return dst, nil
}

// probeDestination returns the first free path in dstDir keeping the
// original name, inserting _1, _2, ... before the extension on collision.
func probeDestination(dstDir, name string) string {
	dst := filepath.Join(dstDir, name)
	if !exists(dst) {
		return dst
	}

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for counter := 1; ; counter++ {
		dst = filepath.Join(dstDir, fmt.Sprintf("%s_%d%s", stem, counter, ext))
		if !exists(dst) {
			return dst
		}
	}
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// moveFile renames src to dst, falling back to copy-and-remove when the
// rename crosses filesystems.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	if err := copyFile(src, dst); err != nil {
		return err
	}
	return os.Remove(src)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return err
	}
	return out.Close()
}

// disposeSidecars relocates any sidecar sharing the primary file's base
// name, renamed to follow the (possibly suffixed) destination name.
func disposeSidecars(src, dst string, move bool) {
	dir := filepath.Dir(src)
	srcExt := filepath.Ext(src)
	stem := strings.TrimSuffix(filepath.Base(src), srcExt)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	dstStem := strings.TrimSuffix(dst, filepath.Ext(dst))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := filepath.Ext(name)
		if !strings.EqualFold(ext, sidecarExt) {
			continue
		}
		if strings.TrimSuffix(name, ext) != stem {
			continue
		}

		sidecarSrc := filepath.Join(dir, name)
		sidecarDst := dstStem + ext
		if move {
			_ = moveFile(sidecarSrc, sidecarDst)
		} else {
			_ = copyFile(sidecarSrc, sidecarDst)
		}
	}
}
