package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"scribe/internal/config"
	"scribe/internal/core"
	"scribe/internal/fileutil"
)

func newAudioCommand(ctx *commandContext) *cobra.Command {
	var dirFlag string

	cmd := &cobra.Command{
		Use:   "audio <job-id>",
		Short: "Copy the MP3 rendition of a finished job to a local file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withCore(func(cfg *config.Config, c *core.Core) error {
				src, name, err := c.AudioArtifact(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				dest := filepath.Join(dirFlag, name)
				if err := fileutil.CopyFile(src, dest); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), dest)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&dirFlag, "dir", "d", ".", "Directory to place the copied file in")

	return cmd
}
