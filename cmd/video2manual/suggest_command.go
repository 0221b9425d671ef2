package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/ivlev/video2manual/internal/analyzer"
	"github.com/ivlev/video2manual/internal/manual"
	"github.com/ivlev/video2manual/internal/video"
)

func newSuggestCommand() *cobra.Command {
	var atTime float64

	cmd := &cobra.Command{
		Use:   "suggest <video>",
		Short: "Suggest annotation rectangles for the frame at a timestamp",
		Long: "Suggest finds high-contrast regions in the frame and prints them as\n" +
			"ready-to-paste annotation records.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync()

			src, err := video.Open(cmd.Context(), args[0], logger)
			if err != nil {
				return err
			}
			defer src.Close()

			frame, err := src.ExtractFrame(cmd.Context(), atTime)
			if err != nil {
				return err
			}

			det := analyzer.NewDetector()
			det.MinArea = cfg.SuggestMinArea
			det.EdgeThreshold = cfg.SuggestEdgeThreshold
			det.MaxSuggestions = cfg.SuggestMax

			suggestions, err := det.SuggestRects(frame)
			if err != nil {
				return err
			}

			anns := make([]manual.Annotation, 0, len(suggestions))
			for _, s := range suggestions {
				anns = append(anns, manual.Annotation{
					Kind:      manual.KindRect,
					Coords:    [4]float64{s.Rect.X1, s.Rect.Y1, s.Rect.X2, s.Rect.Y2},
					Color:     cfg.Color(),
					Thickness: cfg.DefaultThickness,
				})
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(anns)
		},
	}
	cmd.Flags().Float64VarP(&atTime, "time", "t", 0, "timestamp in seconds")
	return cmd
}
