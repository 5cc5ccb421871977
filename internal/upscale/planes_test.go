package upscale

import (
	"bytes"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferChannelPlanes(t *testing.T) {
	buf := PixelBuffer{Width: 2, Height: 1, Stride: 8, Pix: []byte{
		200, 10, 20, 30,
		100, 1, 2, 3,
	}}

	assert.Equal(t, []byte{30, 20, 10, 3, 2, 1}, buf.BGR())
	assert.Equal(t, []byte{200, 100}, buf.Alpha())
}

func TestBufferFromPlanarRGB(t *testing.T) {
	planes := []float32{
		0, 1, // R
		0.5, 2, // G
		-1, 0.2, // B
	}

	buf, err := BufferFromPlanarRGB(2, 1, planes, []byte{7, 200})
	require.NoError(t, err)
	assert.Equal(t, []byte{
		7, 0, 7, 0,
		200, 200, 200, 51,
	}, buf.Pix)

	opaque, err := BufferFromPlanarRGB(2, 1, planes, nil)
	require.NoError(t, err)
	assert.Equal(t, byte(255), opaque.Pix[0])
}

func TestSemiTransparentOutputSurvivesPNG(t *testing.T) {
	planes := []float32{0.9, 0.9, 0.9}

	buf, err := BufferFromPlanarRGB(1, 1, planes, []byte{64})
	require.NoError(t, err)

	var encoded bytes.Buffer
	require.NoError(t, png.Encode(&encoded, buf.RGBA()))
	decoded, err := png.Decode(&encoded)
	require.NoError(t, err)

	got := color.NRGBAModel.Convert(decoded.At(0, 0)).(color.NRGBA)
	assert.Equal(t, uint8(64), got.A)
	assert.Equal(t, uint8(255), got.R)
	assert.Equal(t, uint8(255), got.G)
	assert.Equal(t, uint8(255), got.B)
}

func TestBufferFromPlanarRGBRejectsShortInput(t *testing.T) {
	_, err := BufferFromPlanarRGB(2, 2, make([]float32, 11), nil)
	assert.Error(t, err)

	_, err = BufferFromPlanarRGB(2, 2, make([]float32, 12), []byte{1})
	assert.Error(t, err)

	_, err = BufferFromPlanarRGB(0, 2, nil, nil)
	assert.Error(t, err)
}
