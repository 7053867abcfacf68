package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"scribe/internal/config"
	"scribe/internal/core"
)

func newDeleteCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <job-id>",
		Short: "Delete the output files of a job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withCore(func(cfg *config.Config, c *core.Core) error {
				deleted, err := c.DeleteArtifacts(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(deleted) == 0 {
					fmt.Fprintln(out, "nothing to delete")
					return nil
				}
				for _, name := range deleted {
					fmt.Fprintln(out, name)
				}
				return nil
			})
		},
	}
	return cmd
}
