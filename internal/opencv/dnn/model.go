// Package dnn runs the Real-ESRGAN network through OpenCV's DNN module.
package dnn

import (
	"context"
	"fmt"
	"image"
	"os"
	"strings"

	"superres/internal/config"
	"superres/internal/logger"
	"superres/internal/opencv/conversion"
	"superres/internal/opencv/safe"
	"superres/internal/upscale"

	"gocv.io/x/gocv"
)

type Options struct {
	// Path to any network OpenCV can read (ONNX, Caffe, TensorFlow, ...).
	Path string
	// Config is the optional companion file some formats need.
	Config    string
	Backend   string
	Target    string
	Instances int
	Scale     int
}

// Model is an upscale.Model backed by one or more loaded gocv networks.
type Model struct {
	pool   *netPool
	scale  int
	logger logger.Logger
}

// Load reads the network Instances times. Any failure is an ErrModelLoad.
func Load(opts Options, log logger.Logger) (*Model, error) {
	if log == nil {
		log = logger.Nop()
	}
	if opts.Instances <= 0 {
		opts.Instances = 1
	}
	if opts.Scale <= 0 {
		opts.Scale = upscale.ScaleFactor
	}
	if _, err := os.Stat(opts.Path); err != nil {
		return nil, fmt.Errorf("%w: %w", upscale.ErrModelLoad, err)
	}

	backend := gocv.ParseNetBackend(strings.ToLower(opts.Backend))
	target := gocv.ParseNetTarget(strings.ToLower(opts.Target))

	nets := make([]*gocv.Net, 0, opts.Instances)
	closeAll := func() {
		for _, net := range nets {
			net.Close()
		}
	}

	for i := 0; i < opts.Instances; i++ {
		net := gocv.ReadNet(opts.Path, opts.Config)
		if net.Empty() {
			net.Close()
			closeAll()
			return nil, fmt.Errorf("%w: %s could not be read", upscale.ErrModelLoad, opts.Path)
		}
		if err := net.SetPreferableBackend(backend); err != nil {
			net.Close()
			closeAll()
			return nil, fmt.Errorf("%w: backend %q: %w", upscale.ErrModelLoad, opts.Backend, err)
		}
		if err := net.SetPreferableTarget(target); err != nil {
			net.Close()
			closeAll()
			return nil, fmt.Errorf("%w: target %q: %w", upscale.ErrModelLoad, opts.Target, err)
		}
		nets = append(nets, &net)
	}

	log.Info("DNNModel", "network loaded", map[string]interface{}{
		"path":      opts.Path,
		"backend":   opts.Backend,
		"target":    opts.Target,
		"instances": opts.Instances,
		"scale":     opts.Scale,
	})

	return &Model{
		pool:   newNetPool(nets),
		scale:  opts.Scale,
		logger: log,
	}, nil
}

// Predict upscales one tile. The colour channels go through the network; the
// alpha channel, which the network does not model, is resized bicubically.
func (m *Model) Predict(ctx context.Context, in upscale.PixelBuffer) (upscale.PixelBuffer, error) {
	net, err := m.pool.acquire(ctx)
	if err != nil {
		return upscale.PixelBuffer{}, err
	}
	defer m.pool.release(net)

	bgr, err := conversion.BufferToBGR(in)
	if err != nil {
		return upscale.PixelBuffer{}, err
	}
	defer bgr.Close()

	alpha, err := conversion.ScaleAlpha(in, m.scale)
	if err != nil {
		return upscale.PixelBuffer{}, err
	}

	blob, err := safe.Take(gocv.BlobFromImage(bgr.GetMat(), 1.0/255.0,
		image.Pt(in.Width, in.Height), gocv.NewScalar(0, 0, 0, 0), true, false), "input_blob")
	if err != nil {
		return upscale.PixelBuffer{}, err
	}
	defer blob.Close()

	net.SetInput(blob.GetMat(), "")
	output, err := safe.Take(net.Forward(""), "output_blob")
	if err != nil {
		return upscale.PixelBuffer{}, err
	}
	defer output.Close()

	return conversion.BlobToBuffer(output, in.Width*m.scale, in.Height*m.scale, alpha)
}

// LoadModel opens the network described by the model configuration.
func LoadModel(cfg config.ModelConfig, log logger.Logger) (upscale.Model, error) {
	model, err := Load(Options{
		Path:      cfg.Path,
		Backend:   cfg.Backend,
		Target:    cfg.Target,
		Instances: cfg.Instances,
	}, log)
	if err != nil {
		return nil, err
	}
	return model, nil
}

func (m *Model) Instances() int {
	return m.pool.size()
}

func (m *Model) Close() error {
	return m.pool.close()
}
