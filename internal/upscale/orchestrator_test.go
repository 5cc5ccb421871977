package upscale

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"superres/internal/codec"
	"superres/internal/timing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeImage(t *testing.T, dir, name string, img image.Image) string {
	t.Helper()
	path := filepath.Join(dir, name)
	data, err := codec.EncodeBytes(img, codec.FormatForPath(name))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestUpscaleProducesPNG(t *testing.T) {
	dir := t.TempDir()
	src := image.NewRGBA(image.Rect(0, 0, 10, 6))
	src.SetRGBA(9, 5, color.RGBA{B: 255, A: 255})
	path := writeImage(t, dir, "photo.png", src)

	tracker := timing.NewTracker()
	upscaler := NewUpscaler(NewTileAdapter(ReplicateModel{Scale: ScaleFactor}, 8, ScaleFactor), nil, tracker)

	data, err := upscaler.Upscale(context.Background(), path)
	require.NoError(t, err)

	out, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 40, 24), out.Bounds())

	r, g, b, a := out.At(39, 23).RGBA()
	assert.Equal(t, [4]uint32{0, 0, 0xffff, 0xffff}, [4]uint32{r, g, b, a})

	for _, stage := range []string{"load", "decode", "composite", "encode"} {
		assert.Len(t, tracker.GetTimings(stage), 1, stage)
	}
}

func TestUpscaleReadsOtherFormats(t *testing.T) {
	dir := t.TempDir()
	upscaler := NewUpscaler(NewTileAdapter(ReplicateModel{Scale: 2}, 4, 2), nil, nil)

	for _, name := range []string{"a.bmp", "b.gif", "c.jpg", "d.tiff"} {
		path := writeImage(t, dir, name, image.NewRGBA(image.Rect(0, 0, 5, 3)))
		data, err := upscaler.Upscale(context.Background(), path)
		require.NoError(t, err, name)

		cfg, err := png.DecodeConfig(bytes.NewReader(data))
		require.NoError(t, err, name)
		assert.Equal(t, 10, cfg.Width, name)
		assert.Equal(t, 6, cfg.Height, name)
	}
}

func TestUpscaleMissingFile(t *testing.T) {
	upscaler := NewUpscaler(NewTileAdapter(ReplicateModel{Scale: 2}, 4, 2), nil, nil)
	_, err := upscaler.Upscale(context.Background(), filepath.Join(t.TempDir(), "missing.png"))
	assert.ErrorIs(t, err, ErrLoad)
}

func TestUpscaleCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.png")
	require.NoError(t, os.WriteFile(path, []byte("definitely not an image"), 0o644))

	upscaler := NewUpscaler(NewTileAdapter(ReplicateModel{Scale: 2}, 4, 2), nil, nil)
	_, err := upscaler.Upscale(context.Background(), path)
	assert.ErrorIs(t, err, ErrDecode)
}

func TestUpscalePropagatesInferenceFailure(t *testing.T) {
	path := writeImage(t, t.TempDir(), "photo.png", image.NewRGBA(image.Rect(0, 0, 8, 8)))

	upscaler := NewUpscaler(NewTileAdapter(&failingModel{}, 4, 2), nil, nil)
	_, err := upscaler.Upscale(context.Background(), path)
	assert.ErrorIs(t, err, ErrInference)
}
