// Package conversion moves tiles between the ARGB pixel buffer the upscaler
// works in and the Mats and blobs OpenCV's DNN module consumes.
package conversion

import (
	"fmt"
	"image"

	"superres/internal/opencv/safe"
	"superres/internal/upscale"

	"gocv.io/x/gocv"
)

// BufferToBGR builds the 8-bit BGR Mat a network input blob is made from.
func BufferToBGR(buf upscale.PixelBuffer) (*safe.Mat, error) {
	if !buf.Valid() {
		return nil, fmt.Errorf("invalid %dx%d pixel buffer", buf.Width, buf.Height)
	}
	return safe.NewMatFromBytes(buf.Height, buf.Width, gocv.MatTypeCV8UC3, buf.BGR(), "tile_bgr")
}

// ScaleAlpha upscales the buffer's alpha channel with bicubic interpolation.
// Fully opaque tiles return nil.
func ScaleAlpha(buf upscale.PixelBuffer, scale int) ([]byte, error) {
	alpha := buf.Alpha()
	if opaque(alpha) {
		return nil, nil
	}

	src, err := safe.NewMatFromBytes(buf.Height, buf.Width, gocv.MatTypeCV8UC1, alpha, "tile_alpha")
	if err != nil {
		return nil, err
	}
	defer src.Close()

	dst, err := safe.NewMat(buf.Height*scale, buf.Width*scale, gocv.MatTypeCV8UC1, "tile_alpha_scaled")
	if err != nil {
		return nil, err
	}
	defer dst.Close()

	srcMat := src.GetMat()
	dstMat := dst.GetMat()
	gocv.Resize(srcMat, &dstMat, image.Point{X: buf.Width * scale, Y: buf.Height * scale}, 0, 0, gocv.InterpolationCubic)

	return dst.Bytes()
}

// BlobToBuffer unpacks a 1×3×H×W float output blob in RGB channel order.
func BlobToBuffer(blob *safe.Mat, width, height int, alpha []byte) (upscale.PixelBuffer, error) {
	if err := safe.ValidateMatForOperation(blob, "blob unpacking"); err != nil {
		return upscale.PixelBuffer{}, err
	}
	if err := safe.ValidateBlobShape(blob.Size(), 3, height, width); err != nil {
		return upscale.PixelBuffer{}, err
	}

	planes, err := blob.Float32s()
	if err != nil {
		return upscale.PixelBuffer{}, err
	}
	return upscale.BufferFromPlanarRGB(width, height, planes, alpha)
}

func opaque(alpha []byte) bool {
	for _, a := range alpha {
		if a != 255 {
			return false
		}
	}
	return true
}
