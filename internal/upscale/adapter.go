package upscale

import (
	"context"
	"fmt"
	"image"
)

// PixelBuffer is a packed 32-bit ARGB raster, the layout super-resolution
// runtimes exchange tiles in. Each pixel is A, R, G, B in that byte order.
type PixelBuffer struct {
	Width  int
	Height int
	Stride int
	Pix    []byte
}

func NewPixelBuffer(width, height int) PixelBuffer {
	return PixelBuffer{
		Width:  width,
		Height: height,
		Stride: width * 4,
		Pix:    make([]byte, width*height*4),
	}
}

// Valid reports whether the buffer is large enough for its declared geometry.
func (b PixelBuffer) Valid() bool {
	if b.Width <= 0 || b.Height <= 0 || b.Stride < b.Width*4 {
		return false
	}
	return len(b.Pix) >= (b.Height-1)*b.Stride+b.Width*4
}

// BufferFromRGBA repacks an RGBA image into ARGB order.
func BufferFromRGBA(img *image.RGBA) PixelBuffer {
	bounds := img.Bounds()
	buf := NewPixelBuffer(bounds.Dx(), bounds.Dy())
	for y := 0; y < buf.Height; y++ {
		src := img.Pix[img.PixOffset(bounds.Min.X, bounds.Min.Y+y):]
		dst := buf.Pix[y*buf.Stride:]
		for x := 0; x < buf.Width; x++ {
			s, d := x*4, x*4
			dst[d] = src[s+3]
			dst[d+1] = src[s]
			dst[d+2] = src[s+1]
			dst[d+3] = src[s+2]
		}
	}
	return buf
}

// RGBA repacks the buffer into a new RGBA image at the origin.
func (b PixelBuffer) RGBA() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, b.Width, b.Height))
	for y := 0; y < b.Height; y++ {
		src := b.Pix[y*b.Stride:]
		dst := img.Pix[y*img.Stride:]
		for x := 0; x < b.Width; x++ {
			s, d := x*4, x*4
			dst[d] = src[s+1]
			dst[d+1] = src[s+2]
			dst[d+2] = src[s+3]
			dst[d+3] = src[s]
		}
	}
	return img
}

// Model is the black-box network: one fixed-size tile in, one upscaled tile out.
type Model interface {
	Predict(ctx context.Context, in PixelBuffer) (PixelBuffer, error)
	Close() error
}

// TileInferer runs a single tile through the network.
type TileInferer interface {
	TileSize() int
	ScaleFactor() int
	Infer(ctx context.Context, tile *image.RGBA) (*image.RGBA, error)
}

// TileAdapter converts tiles to the model's buffer layout and enforces the
// tile contract on both sides of the call.
type TileAdapter struct {
	model    Model
	tileSize int
	scale    int
}

func NewTileAdapter(model Model, tileSize, scale int) *TileAdapter {
	return &TileAdapter{model: model, tileSize: tileSize, scale: scale}
}

func (a *TileAdapter) TileSize() int    { return a.tileSize }
func (a *TileAdapter) ScaleFactor() int { return a.scale }

func (a *TileAdapter) Infer(ctx context.Context, tile *image.RGBA) (*image.RGBA, error) {
	if tile == nil {
		return nil, fmt.Errorf("%w: nil tile", ErrInference)
	}
	b := tile.Bounds()
	if b.Dx() != a.tileSize || b.Dy() != a.tileSize {
		return nil, fmt.Errorf("%w: tile is %dx%d, model expects %dx%d",
			ErrInference, b.Dx(), b.Dy(), a.tileSize, a.tileSize)
	}

	out, err := a.model.Predict(ctx, BufferFromRGBA(tile))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInference, err)
	}

	want := a.tileSize * a.scale
	if out.Width != want || out.Height != want || !out.Valid() {
		return nil, fmt.Errorf("%w: model returned %dx%d, expected %dx%d",
			ErrInference, out.Width, out.Height, want, want)
	}

	return out.RGBA(), nil
}

// Close releases the wrapped model.
func (a *TileAdapter) Close() error {
	return a.model.Close()
}
