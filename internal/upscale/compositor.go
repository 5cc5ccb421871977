package upscale

import (
	"context"
	"errors"
	"fmt"
	"image"

	"superres/internal/logger"

	"golang.org/x/image/draw"
)

// Largest canvas edge the compositor will allocate.
const maxCanvasDimension = 1 << 16

// Compositor upscales images of any size with a fixed-tile network. It holds
// no state between calls.
//
// Coordinates are top-left origin: the source is drawn at (0,0) of the padded
// canvas, so padding occupies the right and bottom edges and the final crop
// keeps the top-left region of the upscaled canvas.
type Compositor struct {
	inferer TileInferer
	logger  logger.Logger
}

func NewCompositor(inferer TileInferer, log logger.Logger) *Compositor {
	if log == nil {
		log = logger.Nop()
	}
	return &Compositor{inferer: inferer, logger: log}
}

// Composite returns src upscaled by the network's scale factor, exactly
// width*scale × height*scale pixels. Any tile failure aborts the whole image.
func (c *Compositor) Composite(ctx context.Context, src image.Image) (*image.RGBA, error) {
	if src == nil {
		return nil, fmt.Errorf("%w: nil source image", ErrContextCreation)
	}

	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	tileSize, scale := c.inferer.TileSize(), c.inferer.ScaleFactor()

	grid, err := ComputeTileGrid(width, height, tileSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrContextCreation, err)
	}

	c.logger.Debug("Compositor", "tile grid computed", map[string]interface{}{
		"width":         width,
		"height":        height,
		"padded_width":  grid.PaddedWidth,
		"padded_height": grid.PaddedHeight,
		"columns":       grid.Columns,
		"rows":          grid.Rows,
	})

	padded, err := newCanvas(grid.PaddedWidth, grid.PaddedHeight)
	if err != nil {
		return nil, err
	}
	draw.Draw(padded, image.Rect(0, 0, width, height), src, bounds.Min, draw.Src)

	output, err := newCanvas(grid.PaddedWidth*scale, grid.PaddedHeight*scale)
	if err != nil {
		return nil, err
	}

	upscaledTile := tileSize * scale
	for row := 0; row < grid.Rows; row++ {
		for col := 0; col < grid.Columns; col++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			tileRect := image.Rect(col*tileSize, row*tileSize, (col+1)*tileSize, (row+1)*tileSize)
			tile, err := crop(padded, tileRect)
			if err != nil {
				return nil, err
			}

			upscaled, err := c.inferer.Infer(ctx, tile)
			if err != nil {
				if !errors.Is(err, ErrInference) {
					err = fmt.Errorf("%w: %w", ErrInference, err)
				}
				return nil, fmt.Errorf("tile (%d,%d): %w", col, row, err)
			}

			ub := upscaled.Bounds()
			if ub.Dx() != upscaledTile || ub.Dy() != upscaledTile {
				return nil, fmt.Errorf("tile (%d,%d): %w: got %dx%d, expected %dx%d",
					col, row, ErrInference, ub.Dx(), ub.Dy(), upscaledTile, upscaledTile)
			}

			dst := image.Rect(col*upscaledTile, row*upscaledTile, (col+1)*upscaledTile, (row+1)*upscaledTile)
			draw.Draw(output, dst, upscaled, ub.Min, draw.Src)
		}
	}

	// Padding was added on the right and bottom, so the content starts at the origin.
	return crop(output, image.Rect(0, 0, width*scale, height*scale))
}

func newCanvas(width, height int) (*image.RGBA, error) {
	if width <= 0 || height <= 0 || width > maxCanvasDimension || height > maxCanvasDimension {
		return nil, fmt.Errorf("%w: unsupported size %dx%d", ErrContextCreation, width, height)
	}
	return image.NewRGBA(image.Rect(0, 0, width, height)), nil
}

// crop copies rect out of src into a new origin-anchored canvas.
func crop(src *image.RGBA, rect image.Rectangle) (*image.RGBA, error) {
	if rect.Empty() || !rect.In(src.Bounds()) {
		return nil, fmt.Errorf("%w: %v outside canvas %v", ErrTileCrop, rect, src.Bounds())
	}
	dst, err := newCanvas(rect.Dx(), rect.Dy())
	if err != nil {
		return nil, err
	}
	draw.Draw(dst, dst.Bounds(), src, rect.Min, draw.Src)
	return dst, nil
}
