package upscale

import (
	"context"
	"fmt"
)

// ReplicateModel upscales by repeating every pixel scale×scale times. It backs
// the "nearest" backend when no network is configured.
type ReplicateModel struct {
	Scale int
}

func (m ReplicateModel) Predict(ctx context.Context, in PixelBuffer) (PixelBuffer, error) {
	if err := ctx.Err(); err != nil {
		return PixelBuffer{}, err
	}
	if m.Scale < 1 {
		return PixelBuffer{}, fmt.Errorf("invalid scale %d", m.Scale)
	}
	if !in.Valid() {
		return PixelBuffer{}, fmt.Errorf("malformed %dx%d input buffer", in.Width, in.Height)
	}

	out := NewPixelBuffer(in.Width*m.Scale, in.Height*m.Scale)
	for y := 0; y < out.Height; y++ {
		src := in.Pix[(y/m.Scale)*in.Stride:]
		dst := out.Pix[y*out.Stride:]
		for x := 0; x < out.Width; x++ {
			copy(dst[x*4:x*4+4], src[(x/m.Scale)*4:(x/m.Scale)*4+4])
		}
	}
	return out, nil
}

func (m ReplicateModel) Close() error { return nil }
