package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"scribe/internal/config"
	"scribe/internal/core"
	"scribe/internal/queue"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonFlag bool

	cmd := &cobra.Command{
		Use:   "status <job-id>",
		Short: "Show the state and progress of a job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withCore(func(cfg *config.Config, c *core.Core) error {
				status, err := c.Status(cmd.Context(), args[0])
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if jsonFlag {
					encoder := json.NewEncoder(out)
					encoder.SetIndent("", "  ")
					return encoder.Encode(status)
				}

				colorize := shouldColorize(out)
				fmt.Fprintf(out, "job:      %s\n", status.ID)
				fmt.Fprintf(out, "state:    %s\n", colorizeStatus(string(status.State), colorize))
				fmt.Fprintf(out, "progress: %d%%\n", status.Progress)
				switch status.State {
				case queue.StatusFailed:
					fmt.Fprintf(out, "error:    %s\n", status.Error)
				case queue.StatusSucceeded:
					fmt.Fprintln(out, "result:")
					var pretty map[string]any
					if err := json.Unmarshal(status.Result, &pretty); err == nil {
						encoder := json.NewEncoder(out)
						encoder.SetIndent("  ", "  ")
						return encoder.Encode(pretty)
					}
					fmt.Fprintf(out, "  %s\n", status.Result)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonFlag, "json", false, "Print machine-readable JSON")

	return cmd
}
