package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ivlev/video2manual/internal/video"
)

func newProbeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "probe <video>",
		Short: "Print the container properties of a video file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, logger, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync()

			src, err := video.Open(cmd.Context(), args[0], logger)
			if err != nil {
				return err
			}
			defer src.Close()

			info := src.Info()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "resolution: %dx%d\n", info.Width, info.Height)
			fmt.Fprintf(out, "fps:        %.3f\n", info.FPS)
			fmt.Fprintf(out, "frames:     %d\n", info.FrameCount)
			fmt.Fprintf(out, "duration:   %.3fs\n", info.Duration)
			return nil
		},
	}
}
