package upscale

import (
	"context"
	"errors"
	"image"
	"image/color"
	"math/rand"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingModel struct {
	failAfter int
	calls     atomic.Int32
}

func (m *failingModel) Predict(ctx context.Context, in PixelBuffer) (PixelBuffer, error) {
	if int(m.calls.Add(1)) > m.failAfter {
		return PixelBuffer{}, errors.New("runtime exploded")
	}
	return ReplicateModel{Scale: 2}.Predict(ctx, in)
}

func (m *failingModel) Close() error { return nil }

func randomImage(rng *rand.Rand, width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	rng.Read(img.Pix)
	return img
}

func replicate(src *image.RGBA, scale int) *image.RGBA {
	b := src.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx()*scale, b.Dy()*scale))
	for y := 0; y < out.Bounds().Dy(); y++ {
		for x := 0; x < out.Bounds().Dx(); x++ {
			out.SetRGBA(x, y, src.RGBAAt(b.Min.X+x/scale, b.Min.Y+y/scale))
		}
	}
	return out
}

func TestCompositeMatchesDirectReplication(t *testing.T) {
	const tileSize, scale = 8, 3
	compositor := NewCompositor(NewTileAdapter(ReplicateModel{Scale: scale}, tileSize, scale), nil)
	rng := rand.New(rand.NewSource(7))

	sizes := [][2]int{{1, 1}, {8, 8}, {7, 9}, {16, 8}, {17, 23}, {33, 5}, {3, 40}}
	for _, size := range sizes {
		src := randomImage(rng, size[0], size[1])

		got, err := compositor.Composite(context.Background(), src)
		require.NoError(t, err, "size %v", size)

		want := replicate(src, scale)
		require.Equal(t, want.Bounds(), got.Bounds(), "size %v", size)
		require.Equal(t, want.Pix, got.Pix, "size %v", size)
	}
}

func TestCompositeHandlesOffsetSource(t *testing.T) {
	const tileSize, scale = 4, 2
	compositor := NewCompositor(NewTileAdapter(ReplicateModel{Scale: scale}, tileSize, scale), nil)

	parent := randomImage(rand.New(rand.NewSource(1)), 20, 20)
	sub := parent.SubImage(image.Rect(3, 5, 12, 11)).(*image.RGBA)

	got, err := compositor.Composite(context.Background(), sub)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 18, 12), got.Bounds())
	assert.Equal(t, replicate(sub, scale).Pix, got.Pix)
}

func TestCompositeOutputDimensions(t *testing.T) {
	compositor := NewCompositor(NewTileAdapter(ReplicateModel{Scale: ScaleFactor}, 32, ScaleFactor), nil)

	tests := []struct {
		width, height int
	}{
		{32, 32},
		{1, 1},
		{100, 70},
		{31, 65},
	}
	for _, tt := range tests {
		src := image.NewRGBA(image.Rect(0, 0, tt.width, tt.height))
		got, err := compositor.Composite(context.Background(), src)
		require.NoError(t, err)
		assert.Equal(t, tt.width*ScaleFactor, got.Bounds().Dx())
		assert.Equal(t, tt.height*ScaleFactor, got.Bounds().Dy())
	}
}

func TestCompositeLandscapePhotoAtModelContract(t *testing.T) {
	if testing.Short() {
		t.Skip("allocates full-size canvases")
	}
	model := &countingModel{scale: ScaleFactor}
	compositor := NewCompositor(NewTileAdapter(model, TileSize, ScaleFactor), nil)

	got, err := compositor.Composite(context.Background(), image.NewRGBA(image.Rect(0, 0, 1000, 700)))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 4000, 2800), got.Bounds())
	assert.EqualValues(t, 4, model.calls.Load())
}

type countingModel struct {
	scale int
	calls atomic.Int32
}

func (m *countingModel) Predict(ctx context.Context, in PixelBuffer) (PixelBuffer, error) {
	m.calls.Add(1)
	return ReplicateModel{Scale: m.scale}.Predict(ctx, in)
}

func (m *countingModel) Close() error { return nil }

func TestCompositeSingleTileHasNoPadding(t *testing.T) {
	model := &failingModel{failAfter: 1}
	compositor := NewCompositor(NewTileAdapter(model, 16, 2), nil)

	src := image.NewRGBA(image.Rect(0, 0, 16, 16))
	src.SetRGBA(15, 15, color.RGBA{R: 255, A: 255})

	got, err := compositor.Composite(context.Background(), src)
	require.NoError(t, err)
	assert.EqualValues(t, 1, model.calls.Load())
	assert.Equal(t, color.RGBA{R: 255, A: 255}, got.RGBAAt(31, 31))
}

func TestCompositeAbortsOnTileFailure(t *testing.T) {
	model := &failingModel{failAfter: 2}
	compositor := NewCompositor(NewTileAdapter(model, 4, 2), nil)

	got, err := compositor.Composite(context.Background(), image.NewRGBA(image.Rect(0, 0, 12, 12)))
	require.Error(t, err)
	assert.Nil(t, got)
	assert.ErrorIs(t, err, ErrInference)
	assert.EqualValues(t, 3, model.calls.Load())
}

type wrongSizeInferer struct{}

func (wrongSizeInferer) TileSize() int    { return 4 }
func (wrongSizeInferer) ScaleFactor() int { return 2 }
func (wrongSizeInferer) Infer(_ context.Context, _ *image.RGBA) (*image.RGBA, error) {
	return image.NewRGBA(image.Rect(0, 0, 4, 4)), nil
}

func TestCompositeRejectsWrongTileSize(t *testing.T) {
	compositor := NewCompositor(wrongSizeInferer{}, nil)
	_, err := compositor.Composite(context.Background(), image.NewRGBA(image.Rect(0, 0, 4, 4)))
	assert.ErrorIs(t, err, ErrInference)
}

func TestCompositeStopsWhenContextCancelled(t *testing.T) {
	compositor := NewCompositor(NewTileAdapter(ReplicateModel{Scale: 2}, 4, 2), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := compositor.Composite(ctx, image.NewRGBA(image.Rect(0, 0, 8, 8)))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCompositeRejectsEmptyImage(t *testing.T) {
	compositor := NewCompositor(NewTileAdapter(ReplicateModel{Scale: 2}, 4, 2), nil)

	_, err := compositor.Composite(context.Background(), image.NewRGBA(image.Rect(0, 0, 0, 5)))
	assert.ErrorIs(t, err, ErrContextCreation)

	_, err = compositor.Composite(context.Background(), nil)
	assert.ErrorIs(t, err, ErrContextCreation)
}

func TestCropOutsideCanvas(t *testing.T) {
	canvas := image.NewRGBA(image.Rect(0, 0, 8, 8))
	_, err := crop(canvas, image.Rect(4, 4, 12, 12))
	assert.ErrorIs(t, err, ErrTileCrop)
}
