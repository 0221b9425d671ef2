package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ivlev/video2manual/internal/docx"
	"github.com/ivlev/video2manual/internal/manual"
	"github.com/ivlev/video2manual/internal/pipeline"
	"github.com/ivlev/video2manual/internal/system"
	"github.com/ivlev/video2manual/internal/video"
)

func newExportCommand() *cobra.Command {
	var (
		projectPath string
		videoPath   string
		outputPath  string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Render the project into an annotated .docx manual",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync()

			if err := system.CheckTools(); err != nil {
				return err
			}

			project, err := manual.Load(projectPath)
			if err != nil {
				return err
			}
			if len(project.Steps) == 0 {
				return fmt.Errorf("project %s has no steps", projectPath)
			}

			// Video resolution order: flag, project record, newest file in
			// the input directory.
			path := videoPath
			if path == "" {
				path = project.VideoPath
			}
			if path == "" {
				path, err = system.FindLatestVideo(cfg.InputDir)
				if err != nil {
					return err
				}
				logger.Info("using latest video from input dir", zap.String("path", path))
			}

			src, err := video.Open(cmd.Context(), path, logger)
			if err != nil {
				return err
			}
			defer src.Close()

			info := src.Info()
			for _, id := range project.ExceededTimestamps(info.Duration) {
				logger.Warn("step timestamp exceeds video duration, frame will be missing",
					zap.Int("step", id))
			}

			p := pipeline.New(src, logger, cfg.Workers)
			logger.Info("rendering steps",
				zap.Int("steps", len(project.Steps)),
				zap.Int("workers", p.Workers()))

			results, err := p.RenderAll(cmd.Context(), project.Steps)
			if err != nil {
				return err
			}

			docSteps := make([]docx.Step, len(results))
			for i, r := range results {
				docSteps[i] = docx.Step{
					Number:      i + 1,
					Title:       r.Step.Title,
					Description: r.Step.Description,
				}
				if r.Image != nil {
					docSteps[i].Image = r.Image
				}
			}

			out := outputPath
			if out == "" {
				out = cfg.OutputPath
			}
			title := project.ProjectName
			if title == "" {
				title = cfg.ProjectName
			}

			err = docx.Write(out, docSteps, docx.Options{
				Title:            title,
				SourceLink:       cfg.SourceLink,
				ImageWidthInches: cfg.ImageWidthInches,
				ImageMaxWidthPx:  cfg.ImageMaxWidth,
				Logger:           logger,
			})
			if err != nil {
				return err
			}

			missing := pipeline.Missing(results)
			logger.Info("manual exported",
				zap.String("output", out),
				zap.Int("steps", len(docSteps)),
				zap.Int("missing_frames", len(missing)))
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d steps, %d without frames)\n",
				out, len(docSteps), len(missing))
			return nil
		},
	}

	cmd.Flags().StringVarP(&projectPath, "project", "p", "project.json", "project file with step records")
	cmd.Flags().StringVar(&videoPath, "video", "", "source video (defaults to the project's, then the newest in input dir)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output .docx path")
	return cmd
}
