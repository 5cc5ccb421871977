package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"superres/internal/config"
	"superres/internal/storage"

	"github.com/spf13/cobra"
)

func newHistoryCmd(root *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recently upscaled images",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := root.loadConfig()
			if err != nil {
				return err
			}

			history, err := storage.OpenHistory(cfg.History.Path)
			if err != nil {
				return err
			}
			defer history.Close()

			jobs, err := history.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(jobs) == 0 {
				fmt.Fprintln(out, "No upscaling history.")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "WHEN\tSTATUS\tSOURCE\tRESULT\tTIME")
			for _, job := range jobs {
				result := config.DisplayPath(job.OutputPath)
				if job.Status == storage.JobFailed {
					result = job.ErrorMessage
				} else if job.OutputPath == "" {
					result = fmt.Sprintf("%dx%d (not saved)", job.Width, job.Height)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					job.CreatedAt.Format(time.DateTime), job.Status,
					config.DisplayPath(job.SourcePath), result, job.Duration.Round(time.Millisecond))
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of entries to show")
	return cmd
}
