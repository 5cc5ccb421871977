package components

import (
	"image"
	"testing"

	"superres/internal/models"

	"github.com/stretchr/testify/assert"
)

func item(id string, mutate func(*models.ImageItem)) models.ImageItem {
	it := models.ImageItem{
		ID:         id,
		SourcePath: "/photos/" + id + ".png",
		Original:   image.NewRGBA(image.Rect(0, 0, 10, 5)),
	}
	if mutate != nil {
		mutate(&it)
	}
	return it
}

func TestItemDetail(t *testing.T) {
	tests := []struct {
		name string
		item models.ImageItem
		want string
	}{
		{"pending", item("a", nil), "10×5 · waiting"},
		{"busy", item("a", func(i *models.ImageItem) { i.Upscaling = true }), "10×5 · upscaling…"},
		{"done", item("a", func(i *models.ImageItem) {
			i.Upscaled = image.NewRGBA(image.Rect(0, 0, 40, 20))
		}), "10×5 · upscaled to 40×20"},
		{"saved", item("a", func(i *models.ImageItem) {
			i.Upscaled = image.NewRGBA(image.Rect(0, 0, 40, 20))
			i.SavedPath = "/out/a-upscaled.png"
		}), "10×5 · saved to /out"},
		{"failed", item("a", func(i *models.ImageItem) { i.LastError = "boom" }), "failed: boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ItemDetail(tt.item))
		})
	}
	assert.Equal(t, "a.png", ItemTitle(item("a", nil)))
}

func TestStatusText(t *testing.T) {
	done := func(i *models.ImageItem) { i.Upscaled = image.NewRGBA(image.Rect(0, 0, 1, 1)) }
	busy := func(i *models.ImageItem) { i.Upscaling = true }

	assert.Equal(t, "Ready", StatusText(nil, models.Status{}))
	assert.Equal(t, "Ready to upscale", StatusText([]models.ImageItem{item("a", nil)}, models.Status{}))
	assert.Equal(t, "Upscaling 1 of 2 images…",
		StatusText([]models.ImageItem{item("a", busy), item("b", done)}, models.Status{Working: true}))
	assert.Equal(t, "1 upscaled, 1 to go",
		StatusText([]models.ImageItem{item("a", nil), item("b", done)}, models.Status{}))
	assert.Equal(t, "All images upscaled", StatusText([]models.ImageItem{item("a", done)}, models.Status{}))
}

func TestIndexOfAndCount(t *testing.T) {
	items := []models.ImageItem{item("a", nil), item("b", nil)}
	assert.Equal(t, 1, IndexOf(items, "b"))
	assert.Equal(t, -1, IndexOf(items, "c"))
	assert.Equal(t, -1, IndexOf(items, ""))

	assert.Equal(t, "1 image", CountText(1))
	assert.Equal(t, "3 images", CountText(3))
}
