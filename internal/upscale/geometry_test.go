package upscale

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundUpToMultiple(t *testing.T) {
	for _, m := range []int{1, 512} {
		for n := 1; n <= 10000; n++ {
			k := RoundUpToMultiple(n, m)
			if n%m == 0 {
				require.Equal(t, n, k, "n=%d m=%d", n, m)
				continue
			}
			require.Zero(t, k%m, "n=%d m=%d", n, m)
			require.Greater(t, k, n, "n=%d m=%d", n, m)
			require.Less(t, k-m, n, "n=%d m=%d", n, m)
		}
	}
}

func TestComputeTileGrid(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		tileSize      int
		want          TileGrid
	}{
		{
			name: "landscape photo", width: 1000, height: 700, tileSize: 512,
			want: TileGrid{PaddedWidth: 1024, PaddedHeight: 1024, Columns: 2, Rows: 2, TileSize: 512},
		},
		{
			name: "exact tile", width: 512, height: 512, tileSize: 512,
			want: TileGrid{PaddedWidth: 512, PaddedHeight: 512, Columns: 1, Rows: 1, TileSize: 512},
		},
		{
			name: "smaller than tile", width: 30, height: 7, tileSize: 512,
			want: TileGrid{PaddedWidth: 512, PaddedHeight: 512, Columns: 1, Rows: 1, TileSize: 512},
		},
		{
			name: "one pixel over", width: 513, height: 1024, tileSize: 512,
			want: TileGrid{PaddedWidth: 1024, PaddedHeight: 1024, Columns: 2, Rows: 2, TileSize: 512},
		},
		{
			name: "tall strip", width: 8, height: 33, tileSize: 8,
			want: TileGrid{PaddedWidth: 8, PaddedHeight: 40, Columns: 1, Rows: 5, TileSize: 8},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grid, err := ComputeTileGrid(tt.width, tt.height, tt.tileSize)
			require.NoError(t, err)
			assert.Equal(t, tt.want, grid)
			assert.Equal(t, tt.want.Columns*tt.want.Rows, grid.Tiles())
		})
	}
}

func TestComputeTileGridRejectsInvalidInput(t *testing.T) {
	_, err := ComputeTileGrid(0, 10, 512)
	assert.Error(t, err)
	_, err = ComputeTileGrid(10, -1, 512)
	assert.Error(t, err)
	_, err = ComputeTileGrid(10, 10, 0)
	assert.Error(t, err)
}
