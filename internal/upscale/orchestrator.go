package upscale

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"time"

	"superres/internal/codec"
	"superres/internal/logger"
	"superres/internal/timing"
)

// Tile contract of the supported Real-ESRGAN x4 network.
const (
	TileSize    = 512
	ScaleFactor = 4
)

// Upscaler is the per-image entry point: load, decode, composite, encode.
type Upscaler struct {
	compositor *Compositor
	logger     logger.Logger
	tracker    *timing.Tracker
}

func NewUpscaler(inferer TileInferer, log logger.Logger, tracker *timing.Tracker) *Upscaler {
	if log == nil {
		log = logger.Nop()
	}
	return &Upscaler{
		compositor: NewCompositor(inferer, log),
		logger:     log,
		tracker:    tracker,
	}
}

// Upscale reads the image at path and returns the upscaled result as PNG
// bytes. Callers re-encode to their destination format.
func (u *Upscaler) Upscale(ctx context.Context, path string) ([]byte, error) {
	start := time.Now()

	stageCtx := u.tracker.StartTiming(ctx, "load")
	data, err := os.ReadFile(path)
	u.tracker.EndTiming(stageCtx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}

	stageCtx = u.tracker.StartTiming(ctx, "decode")
	src, format, err := codec.DecodeBytes(data)
	u.tracker.EndTiming(stageCtx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	u.logger.Debug("Upscaler", "image decoded", map[string]interface{}{
		"path":   path,
		"format": format,
		"width":  src.Bounds().Dx(),
		"height": src.Bounds().Dy(),
	})

	out, err := u.UpscaleImage(ctx, src)
	if err != nil {
		return nil, err
	}

	stageCtx = u.tracker.StartTiming(ctx, "encode")
	var buf bytes.Buffer
	err = png.Encode(&buf, out)
	u.tracker.EndTiming(stageCtx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncode, err)
	}

	u.logger.Info("Upscaler", "image upscaled", map[string]interface{}{
		"path":        path,
		"width":       out.Bounds().Dx(),
		"height":      out.Bounds().Dy(),
		"duration_ms": time.Since(start).Milliseconds(),
	})

	return buf.Bytes(), nil
}

// UpscaleImage runs an already decoded image through the compositor.
func (u *Upscaler) UpscaleImage(ctx context.Context, src image.Image) (*image.RGBA, error) {
	stageCtx := u.tracker.StartTiming(ctx, "composite")
	defer u.tracker.EndTiming(stageCtx)

	return u.compositor.Composite(ctx, src)
}
