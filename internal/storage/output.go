// Package storage persists upscaled images and the job history.
package storage

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"superres/internal/codec"
	"superres/internal/upscale"
)

const upscaledSuffix = "-upscaled"

// UpscaledName derives the output file name for a source path by inserting
// the suffix before the extension: photo.jpg becomes photo-upscaled.jpg.
func UpscaledName(sourcePath string) string {
	base := filepath.Base(sourcePath)
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext) + upscaledSuffix + ext
}

// Save encodes img in the format implied by path's extension and writes it,
// creating parent directories as needed.
func Save(path string, img image.Image) error {
	if img == nil {
		return fmt.Errorf("%w: nothing to save", upscale.ErrEncode)
	}

	data, err := codec.EncodeBytes(img, codec.FormatForPath(path))
	if err != nil {
		return fmt.Errorf("%w: %w", upscale.ErrEncode, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("%w: %w", upscale.ErrPersist, err)
	}

	// Write through a temp file so a failed write never leaves a truncated image.
	tmp, err := os.CreateTemp(filepath.Dir(path), ".superres-*")
	if err != nil {
		return fmt.Errorf("%w: %w", upscale.ErrPersist, err)
	}
	tmpName := tmp.Name()

	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: %w", upscale.ErrPersist, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: %w", upscale.ErrPersist, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %w", upscale.ErrPersist, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %w", upscale.ErrPersist, err)
	}
	return nil
}

// SaveToFolder writes img into dir under the upscaled name derived from
// sourcePath and returns the written path.
func SaveToFolder(dir, sourcePath string, img image.Image) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("%w: no output folder configured", upscale.ErrPersist)
	}
	path := filepath.Join(dir, UpscaledName(sourcePath))
	if err := Save(path, img); err != nil {
		return "", err
	}
	return path, nil
}
