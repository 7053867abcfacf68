package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"scribe/internal/config"
	"scribe/internal/core"
	"scribe/internal/export"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var (
		formatFlag     string
		outputFlag     string
		timestampsFlag bool
		speakersFlag   bool
	)

	cmd := &cobra.Command{
		Use:   "export <job-id>",
		Short: "Render a finished transcript in srt, vtt, txt, csv, or doc form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := export.ParseFormat(formatFlag)
			if err != nil {
				return err
			}
			opts := export.Options{Timestamps: timestampsFlag, Speakers: speakersFlag}

			return ctx.withCore(func(cfg *config.Config, c *core.Core) error {
				rendered, err := c.Export(cmd.Context(), args[0], format, opts)
				if err != nil {
					return err
				}
				if outputFlag == "" {
					_, err = cmd.OutOrStdout().Write(rendered)
					return err
				}
				if err := os.WriteFile(outputFlag, rendered, 0o644); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), outputFlag)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&formatFlag, "format", "f", "srt", "Output format: srt, vtt, txt, csv, or doc")
	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Write to a file instead of stdout")
	cmd.Flags().BoolVar(&timestampsFlag, "timestamps", false, "Include timestamps where the format allows")
	cmd.Flags().BoolVar(&speakersFlag, "speakers", false, "Include speaker labels where present")

	return cmd
}
