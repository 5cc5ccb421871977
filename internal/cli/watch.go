package cli

import (
	"fmt"
	"time"

	"superres/internal/engine"
	"superres/internal/models"
	"superres/internal/watch"

	"github.com/spf13/cobra"
)

func newWatchCmd(root *rootOptions) *cobra.Command {
	var (
		flags    modelFlags
		debounce time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Upscale every image dropped into a folder",
		Long: `Watches a folder and upscales each new image once it has finished being
written. Results are saved to the output folder with the -upscaled suffix; the
watched folder may be the output folder. Stop with Ctrl+C.`,
		Args: cobra.ExactArgs(1),
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

			watcher, err := watch.New(args[0], debounce, log)
			if err != nil {
				return err
			}
			e.Shutdown.Register("watcher", watcher)

			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Watching %s\n", args[0])

			for {
				select {
				case <-ctx.Done():
					return nil
				case path, ok := <-watcher.Events():
					if !ok {
						return nil
					}
					if _, err := e.Coordinator.Add(path); err != nil {
						fmt.Fprintf(out, "Skipped %v\n", err)
						continue
					}
					go func() {
						summary := <-e.Coordinator.UpscaleAll(ctx)
						printSummary(out, summary, cfg.Batch.OutputDir)
						// Saved items are released so a long watch does not hold every bitmap.
						for _, item := range e.Coordinator.Snapshot() {
							if item.State() == models.StateDone {
								e.Coordinator.Remove(item.ID)
							}
						}
					}()
				}
			}
		},
	}

	flags.register(cmd)
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "quiet period before a new file is picked up")
	return cmd
}
