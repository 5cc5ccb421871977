package codec

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatForPath(t *testing.T) {
	tests := map[string]Format{
		"photo.BMP":         BMP,
		"scan.dib":          BMP,
		"anim.gif":          GIF,
		"a.jpg":             JPEG,
		"a.JPEG":            JPEG,
		"a.jpe":             JPEG,
		"a.jfif":            JPEG,
		"a.jfi":             JPEG,
		"a.jif":             JPEG,
		"shot.png":          PNG,
		"page.tif":          TIFF,
		"page.tiff":         TIFF,
		"raw.webp":          PNG,
		"noextension":       PNG,
		"/tmp/dir.v2/file.": PNG,
	}

	for path, want := range tests {
		assert.Equal(t, want, FormatForPath(path), path)
	}
}

func TestIsSupported(t *testing.T) {
	assert.True(t, IsSupported("/x/y/cat.PNG"))
	assert.True(t, IsSupported("cat.tif"))
	assert.False(t, IsSupported("cat.webp"))
	assert.False(t, IsSupported("notes.txt"))
	assert.False(t, IsSupported("cat"))
}

func testImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 6, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 6; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x * 40), G: uint8(y * 60), B: 200, A: 255})
		}
	}
	return img
}

func TestLosslessFormatsPreservePixels(t *testing.T) {
	src := testImage()

	for _, format := range []Format{PNG, BMP, TIFF} {
		t.Run(string(format), func(t *testing.T) {
			data, err := EncodeBytes(src, format)
			require.NoError(t, err)

			decoded, name, err := DecodeBytes(data)
			require.NoError(t, err)
			assert.Equal(t, string(format), name)

			got := ToRGBA(decoded)
			require.Equal(t, src.Bounds(), got.Bounds())
			for y := 0; y < 4; y++ {
				for x := 0; x < 6; x++ {
					assert.Equal(t, src.RGBAAt(x, y), got.RGBAAt(x, y), "pixel %d,%d", x, y)
				}
			}
		})
	}
}

func TestLossyFormatsRoundTripDimensions(t *testing.T) {
	src := testImage()

	for _, format := range []Format{JPEG, GIF} {
		data, err := EncodeBytes(src, format)
		require.NoError(t, err)

		decoded, name, err := DecodeBytes(data)
		require.NoError(t, err)
		assert.Equal(t, string(format), name)
		assert.Equal(t, 6, decoded.Bounds().Dx())
		assert.Equal(t, 4, decoded.Bounds().Dy())
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, _, err := Decode(bytes.NewReader([]byte("not an image")))
	assert.Error(t, err)
}

func TestEncodeRejectsNil(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, Encode(&buf, nil, PNG))
}

func TestToRGBARebasesOffsetImages(t *testing.T) {
	src := testImage()
	sub := src.SubImage(image.Rect(2, 1, 5, 3))

	got := ToRGBA(sub)
	assert.Equal(t, image.Rect(0, 0, 3, 2), got.Bounds())
	assert.Equal(t, src.RGBAAt(2, 1), got.RGBAAt(0, 0))
	assert.Equal(t, src.RGBAAt(4, 2), got.RGBAAt(2, 1))
}
