// Package cli is the headless command-line front end.
package cli

import (
	"errors"

	"superres/internal/config"
	"superres/internal/engine"
	"superres/internal/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// ErrItemsFailed makes the process exit non-zero when any image failed.
var ErrItemsFailed = errors.New("some images failed to upscale")

type rootOptions struct {
	configPath string
	logLevel   string
	jsonLogs   bool
	loader     engine.ModelLoader
}

// NewRootCmd builds the command tree. loader opens network backends; nil
// limits the CLI to nearest-neighbour upscaling.
func NewRootCmd(loader engine.ModelLoader) *cobra.Command {
	opts := &rootOptions{loader: loader}

	cmd := &cobra.Command{
		Use:   "superres-cli",
		Short: "Upscale images 4x with Real-ESRGAN",
		Long: `superres-cli upscales images with a Real-ESRGAN x4 network, tile by tile,
so images of any size fit the network's fixed 512px input.

Settings come from ~/.config/superres/config.yaml, then SUPERRES_* environment
variables (a .env file in the working directory is loaded first), then flags.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default ~/.config/superres/config.yaml)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	cmd.PersistentFlags().BoolVar(&opts.jsonLogs, "json-logs", false, "log JSON lines instead of console output")

	cmd.AddCommand(newUpscaleCmd(opts))
	cmd.AddCommand(newWatchCmd(opts))
	cmd.AddCommand(newHistoryCmd(opts))

	return cmd
}

// modelFlags are shared by the commands that run the network.
type modelFlags struct {
	model     string
	backend   string
	target    string
	outputDir string
	workers   int
}

func (f *modelFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.model, "model", "m", "", "path to the Real-ESRGAN x4 network (empty: nearest neighbour)")
	cmd.Flags().StringVar(&f.backend, "backend", "", "OpenCV DNN backend (default, opencv, cuda, openvino, vulkan)")
	cmd.Flags().StringVar(&f.target, "target", "", "OpenCV DNN target (cpu, cuda, cudafp16, opencl, vulkan)")
	cmd.Flags().StringVarP(&f.outputDir, "output-dir", "o", "", "folder for upscaled images (default ~/Downloads)")
	cmd.Flags().IntVarP(&f.workers, "workers", "w", 0, "images upscaled concurrently (default: CPU count)")
}

func (f *modelFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("model") {
		cfg.Model.Path = config.ExpandPath(f.model)
	}
	if cmd.Flags().Changed("backend") {
		cfg.Model.Backend = f.backend
	}
	if cmd.Flags().Changed("target") {
		cfg.Model.Target = f.target
	}
	if cmd.Flags().Changed("output-dir") {
		cfg.Batch.OutputDir = config.ExpandPath(f.outputDir)
	}
	if cmd.Flags().Changed("workers") && f.workers > 0 {
		cfg.Batch.MaxWorkers = f.workers
	}
}

func (o *rootOptions) loadConfig() (config.Config, logger.Logger, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return config.Config{}, nil, err
	}
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}
	if o.jsonLogs {
		cfg.Logging.JSON = true
	}
	return cfg, logger.New(cfg.Logging.Level, cfg.Logging.JSON), nil
}
