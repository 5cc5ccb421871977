package upscale

import "fmt"

// BGR returns the colour channels as interleaved B, G, R bytes.
func (b PixelBuffer) BGR() []byte {
	out := make([]byte, b.Width*b.Height*3)
	for y := 0; y < b.Height; y++ {
		src := b.Pix[y*b.Stride:]
		dst := out[y*b.Width*3:]
		for x := 0; x < b.Width; x++ {
			dst[x*3] = src[x*4+3]
			dst[x*3+1] = src[x*4+2]
			dst[x*3+2] = src[x*4+1]
		}
	}
	return out
}

// Alpha returns the alpha channel as one byte per pixel.
func (b PixelBuffer) Alpha() []byte {
	out := make([]byte, b.Width*b.Height)
	for y := 0; y < b.Height; y++ {
		src := b.Pix[y*b.Stride:]
		for x := 0; x < b.Width; x++ {
			out[y*b.Width+x] = src[x*4]
		}
	}
	return out
}

// BufferFromPlanarRGB packs a network output blob (three consecutive R, G, B
// planes of normalized floats) and an alpha plane into an ARGB buffer.
// Values are clamped to [0, 1] and colour never exceeds alpha, since the
// buffer is premultiplied. A nil alpha plane means fully opaque.
func BufferFromPlanarRGB(width, height int, planes []float32, alpha []byte) (PixelBuffer, error) {
	plane := width * height
	if width <= 0 || height <= 0 {
		return PixelBuffer{}, fmt.Errorf("invalid output size %dx%d", width, height)
	}
	if len(planes) < plane*3 {
		return PixelBuffer{}, fmt.Errorf("output blob has %d values, expected %d", len(planes), plane*3)
	}
	if alpha != nil && len(alpha) < plane {
		return PixelBuffer{}, fmt.Errorf("alpha plane has %d values, expected %d", len(alpha), plane)
	}

	buf := NewPixelBuffer(width, height)
	for i := 0; i < plane; i++ {
		a := byte(255)
		if alpha != nil {
			a = alpha[i]
		}
		buf.Pix[i*4] = a
		buf.Pix[i*4+1] = min(unitToByte(planes[i]), a)
		buf.Pix[i*4+2] = min(unitToByte(planes[plane+i]), a)
		buf.Pix[i*4+3] = min(unitToByte(planes[2*plane+i]), a)
	}
	return buf, nil
}

func unitToByte(v float32) byte {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	default:
		return byte(v*255 + 0.5)
	}
}
