package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ivlev/video2manual/internal/manual"
	"github.com/ivlev/video2manual/internal/video"
)

func newValidateCommand() *cobra.Command {
	var videoPath string

	cmd := &cobra.Command{
		Use:   "validate <project.json>",
		Short: "Check a project file for schema and range violations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, logger, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync()

			project, err := manual.Load(args[0])
			if err != nil {
				return err
			}

			// With a video at hand, also flag steps pointing past its end.
			path := videoPath
			if path == "" {
				path = project.VideoPath
			}
			if path != "" {
				src, err := video.Open(cmd.Context(), path, logger)
				if err != nil {
					logger.Warn("video unavailable, skipping timestamp check", zap.Error(err))
				} else {
					defer src.Close()
					for _, id := range project.ExceededTimestamps(src.Info().Duration) {
						logger.Warn("step timestamp exceeds video duration", zap.Int("step", id))
					}
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d steps, ok\n", args[0], len(project.Steps))
			return nil
		},
	}
	cmd.Flags().StringVar(&videoPath, "video", "", "video to check step timestamps against")
	return cmd
}
