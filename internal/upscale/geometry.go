package upscale

import "fmt"

// TileGrid is the padded layout of an image cut into square tiles.
type TileGrid struct {
	PaddedWidth  int
	PaddedHeight int
	Columns      int
	Rows         int
	TileSize     int
}

// RoundUpToMultiple returns the smallest k >= n that is a multiple of m.
func RoundUpToMultiple(n, m int) int {
	if n%m == 0 {
		return n
	}
	return (n/m + 1) * m
}

// ComputeTileGrid pads width and height to the next multiple of tileSize.
func ComputeTileGrid(width, height, tileSize int) (TileGrid, error) {
	if width <= 0 || height <= 0 {
		return TileGrid{}, fmt.Errorf("invalid image dimensions %dx%d", width, height)
	}
	if tileSize <= 0 {
		return TileGrid{}, fmt.Errorf("invalid tile size %d", tileSize)
	}

	paddedWidth := RoundUpToMultiple(width, tileSize)
	paddedHeight := RoundUpToMultiple(height, tileSize)

	return TileGrid{
		PaddedWidth:  paddedWidth,
		PaddedHeight: paddedHeight,
		Columns:      paddedWidth / tileSize,
		Rows:         paddedHeight / tileSize,
		TileSize:     tileSize,
	}, nil
}

// Tiles returns the number of cells in the grid.
func (g TileGrid) Tiles() int {
	return g.Columns * g.Rows
}
