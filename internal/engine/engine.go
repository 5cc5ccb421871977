// Package engine wires configuration into a ready-to-use upscaling stack
// shared by the CLI and the desktop application.
package engine

import (
	"fmt"

	"superres/internal/batch"
	"superres/internal/config"
	"superres/internal/logger"
	"superres/internal/shutdown"
	"superres/internal/storage"
	"superres/internal/timing"
	"superres/internal/upscale"
)

// ModelLoader opens the network named by the model configuration.
type ModelLoader func(cfg config.ModelConfig, log logger.Logger) (upscale.Model, error)

type Options struct {
	// Loader opens non-nearest backends. Without one, only the nearest
	// backend is available.
	Loader   ModelLoader
	Executor batch.Executor
}

// Engine is the assembled stack. Close it through its shutdown manager.
type Engine struct {
	Config      config.Config
	Logger      logger.Logger
	Tracker     *timing.Tracker
	Model       upscale.Model
	Upscaler    *upscale.Upscaler
	Coordinator *batch.Coordinator
	History     *storage.History
	Shutdown    *shutdown.Manager
}

func New(cfg config.Config, log logger.Logger, opts Options) (*Engine, error) {
	if log == nil {
		log = logger.Nop()
	}

	model, err := openModel(cfg, log, opts.Loader)
	if err != nil {
		return nil, err
	}

	var history *storage.History
	if cfg.History.Enabled {
		history, err = storage.OpenHistory(cfg.History.Path)
		if err != nil {
			model.Close()
			return nil, err
		}
	}

	tracker := timing.NewTracker()
	upscaler := upscale.NewUpscaler(
		upscale.NewTileAdapter(model, upscale.TileSize, upscale.ScaleFactor), log, tracker)

	batchOpts := batch.Options{
		MaxWorkers:    cfg.Batch.MaxWorkers,
		AutoSave:      cfg.Batch.AutoSave,
		OutputDir:     cfg.Batch.OutputDir,
		SuccessNotice: cfg.Batch.SuccessNotice,
		Executor:      opts.Executor,
		Tracker:       tracker,
	}
	if history != nil {
		batchOpts.Recorder = history
	}
	var serial *batch.SerialExecutor
	if batchOpts.Executor == nil {
		serial = batch.NewSerialExecutor()
		batchOpts.Executor = serial
	}
	coordinator := batch.NewCoordinator(upscaler, log, batchOpts)

	manager := shutdown.NewManager(log)
	manager.Register("model", model)
	if history != nil {
		manager.Register("history", history)
	}
	if serial != nil {
		manager.Register("executor", serial)
	}
	manager.Register("coordinator", coordinator)

	log.Info("Engine", "engine ready", map[string]interface{}{
		"backend":     cfg.BackendName(),
		"tile_size":   upscale.TileSize,
		"scale":       upscale.ScaleFactor,
		"max_workers": cfg.Batch.MaxWorkers,
		"auto_save":   cfg.Batch.AutoSave,
		"output_dir":  config.DisplayPath(cfg.Batch.OutputDir),
		"history":     cfg.History.Enabled,
	})

	return &Engine{
		Config:      cfg,
		Logger:      log,
		Tracker:     tracker,
		Model:       model,
		Upscaler:    upscaler,
		Coordinator: coordinator,
		History:     history,
		Shutdown:    manager,
	}, nil
}

func openModel(cfg config.Config, log logger.Logger, loader ModelLoader) (upscale.Model, error) {
	if cfg.BackendName() == config.BackendNearest {
		log.Warning("Engine", "no model configured, using nearest-neighbour upscaling", nil)
		return upscale.ReplicateModel{Scale: upscale.ScaleFactor}, nil
	}
	if loader == nil {
		return nil, fmt.Errorf("%w: no loader for %s", upscale.ErrModelLoad, cfg.Model.Path)
	}
	model, err := loader(cfg.Model, log)
	if err != nil {
		return nil, err
	}
	return model, nil
}

// Close runs the shutdown sequence.
func (e *Engine) Close() error {
	e.Shutdown.Shutdown()
	return nil
}
