package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"scribe/internal/config"
	"scribe/internal/core"
)

func newSubmitCommand(ctx *commandContext) *cobra.Command {
	var (
		urlFlag      string
		languageFlag string
		modelFlag    string
		diarizeFlag  bool
	)

	cmd := &cobra.Command{
		Use:   "submit [media-file]",
		Short: "Queue a media file or URL for transcription",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (len(args) == 0) == (urlFlag == "") {
				return errors.New("provide either a media file or --url")
			}

			opts := core.SubmitOptions{
				Language: languageFlag,
				Model:    modelFlag,
				Diarize:  diarizeFlag,
			}

			return ctx.withCore(func(cfg *config.Config, c *core.Core) error {
				var (
					jobID string
					err   error
				)
				if urlFlag != "" {
					jobID, err = c.SubmitURL(cmd.Context(), urlFlag, opts)
				} else {
					jobID, err = submitFile(cmd, c, args[0], opts)
				}
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), jobID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&urlFlag, "url", "", "Source media URL to download")
	cmd.Flags().StringVar(&languageFlag, "language", "", "Language code or auto")
	cmd.Flags().StringVar(&modelFlag, "model", "", "Transcription model size")
	cmd.Flags().BoolVar(&diarizeFlag, "diarize", false, "Label speakers in the transcript")

	return cmd
}

func submitFile(cmd *cobra.Command, c *core.Core, path string, opts core.SubmitOptions) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return c.SubmitUpload(cmd.Context(), filepath.Base(path), f, opts)
}
