// Package codec reads and writes the raster formats the upscaler accepts.
package codec

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
)

type Format string

const (
	BMP  Format = "bmp"
	GIF  Format = "gif"
	JPEG Format = "jpeg"
	PNG  Format = "png"
	TIFF Format = "tiff"
)

const jpegQuality = 95

var extensionFormats = map[string]Format{
	".bmp":  BMP,
	".dib":  BMP,
	".gif":  GIF,
	".jpg":  JPEG,
	".jpeg": JPEG,
	".jpe":  JPEG,
	".jif":  JPEG,
	".jfif": JPEG,
	".jfi":  JPEG,
	".png":  PNG,
	".tiff": TIFF,
	".tif":  TIFF,
}

// FormatForPath selects the output format from the file extension, falling
// back to PNG for anything unrecognized.
func FormatForPath(path string) Format {
	if format, ok := extensionFormats[strings.ToLower(filepath.Ext(path))]; ok {
		return format
	}
	return PNG
}

// IsSupported reports whether path carries one of the accepted image extensions.
func IsSupported(path string) bool {
	_, ok := extensionFormats[strings.ToLower(filepath.Ext(path))]
	return ok
}

// SupportedExtensions lists accepted extensions, used by file pickers.
func SupportedExtensions() []string {
	return []string{".bmp", ".dib", ".gif", ".jpg", ".jpeg", ".jpe", ".jif", ".jfif", ".jfi", ".png", ".tiff", ".tif"}
}

// Decode reads any registered format and returns the image with its format name.
func Decode(r io.Reader) (image.Image, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image data: %w", err)
	}
	return img, format, nil
}

func DecodeBytes(data []byte) (image.Image, string, error) {
	return Decode(bytes.NewReader(data))
}

// Encode writes img in the requested format. Unknown formats are written as PNG.
func Encode(w io.Writer, img image.Image, format Format) error {
	if img == nil {
		return fmt.Errorf("no image data to encode")
	}

	var err error
	switch format {
	case BMP:
		err = bmp.Encode(w, img)
	case GIF:
		err = gif.Encode(w, img, nil)
	case JPEG:
		err = jpeg.Encode(w, img, &jpeg.Options{Quality: jpegQuality})
	case TIFF:
		err = tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	default:
		err = png.Encode(w, img)
	}
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", format, err)
	}
	return nil
}

// EncodeBytes is Encode into a fresh buffer.
func EncodeBytes(img image.Image, format Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, img, format); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ToRGBA returns img as an *image.RGBA anchored at the origin, copying only
// when the source is some other type or offset.
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Bounds().Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}
