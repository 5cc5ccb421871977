package cli

import (
	"fmt"
	"io"
	"time"

	"superres/internal/config"
	"superres/internal/engine"
	"superres/internal/models"

	"github.com/spf13/cobra"
)

func newUpscaleCmd(root *rootOptions) *cobra.Command {
	var flags modelFlags

	cmd := &cobra.Command{
		Use:   "upscale <image>...",
		Short: "Upscale images and save them to the output folder",
		Example: `  # Upscale two photos into ~/Downloads
  superres-cli upscale cat.jpg dog.png

  # Use a network on the GPU and write next to a project
  superres-cli upscale -m ~/models/realesrgan-x4.onnx --backend cuda --target cuda -o ./out scans/*.tif`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := root.loadConfig()
			if err != nil {
				return err
			}
			flags.apply(cmd, &cfg)
			cfg.Batch.AutoSave = true
			if err := cfg.Validate(); err != nil {
				return err
			}

			e, err := engine.New(cfg, log, engine.Options{Loader: root.loader})
			if err != nil {
				return err
			}
			defer e.Close()

			out := cmd.OutOrStdout()
			_, addErr := e.Coordinator.Add(args...)
			if addErr != nil {
				fmt.Fprintf(out, "Skipped:\n%v\n", addErr)
			}

			summary := <-e.Coordinator.UpscaleAll(cmd.Context())
			printSummary(out, summary, cfg.Batch.OutputDir)

			if summary.Failed() > 0 || addErr != nil {
				return ErrItemsFailed
			}
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

func printSummary(w io.Writer, summary models.Summary, outputDir string) {
	if summary.Attempted == 0 {
		fmt.Fprintln(w, "Nothing to upscale.")
		return
	}

	fmt.Fprintf(w, "Upscaled %d of %d images in %s", summary.Succeeded, summary.Attempted,
		summary.Duration.Round(time.Millisecond))
	if summary.Saved > 0 {
		fmt.Fprintf(w, ", saved to %s", config.DisplayPath(outputDir))
	}
	fmt.Fprintln(w, ".")

	if summary.Failed() > 0 {
		fmt.Fprintf(w, "Failed:\n%s\n", summary.Report())
	}
}
