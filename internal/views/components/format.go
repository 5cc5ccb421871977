package components

import (
	"fmt"
	"image"
	"path/filepath"

	"superres/internal/config"
	"superres/internal/models"
)

func ItemTitle(item models.ImageItem) string {
	return filepath.Base(item.SourcePath)
}

// ItemDetail is the second row line: size and where the item stands.
func ItemDetail(item models.ImageItem) string {
	size := ""
	if item.Original != nil {
		size = DimensionsText(item.Original.Bounds()) + " · "
	}

	switch item.State() {
	case models.StateUpscaling:
		return size + "upscaling…"
	case models.StateDone:
		if item.SavedPath != "" {
			return size + "saved to " + config.DisplayPath(filepath.Dir(item.SavedPath))
		}
		return size + "upscaled to " + DimensionsText(item.Upscaled.Bounds())
	case models.StateFailed:
		return "failed: " + item.LastError
	default:
		return size + "waiting"
	}
}

func DimensionsText(r image.Rectangle) string {
	return fmt.Sprintf("%d×%d", r.Dx(), r.Dy())
}

// IndexOf returns the position of id in items, or -1.
func IndexOf(items []models.ImageItem, id string) int {
	if id == "" {
		return -1
	}
	for i, item := range items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

// StatusText summarises the batch for the status bar.
func StatusText(items []models.ImageItem, status models.Status) string {
	var pending, busy, done, failed int
	for _, item := range items {
		switch item.State() {
		case models.StateUpscaling:
			busy++
		case models.StateDone:
			done++
		case models.StateFailed:
			failed++
		default:
			pending++
		}
	}

	switch {
	case len(items) == 0:
		return "Ready"
	case status.Working:
		return fmt.Sprintf("Upscaling %d of %d images…", busy, len(items))
	case pending+failed > 0 && done > 0:
		return fmt.Sprintf("%d upscaled, %d to go", done, pending+failed)
	case pending+failed > 0:
		return "Ready to upscale"
	default:
		return "All images upscaled"
	}
}

func CountText(n int) string {
	if n == 1 {
		return "1 image"
	}
	return fmt.Sprintf("%d images", n)
}
