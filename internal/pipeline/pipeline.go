// Package pipeline turns manual steps into annotated frames, extracting
// and rendering in parallel.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ivlev/video2manual/internal/manual"
	"github.com/ivlev/video2manual/internal/render"
	"github.com/ivlev/video2manual/internal/system"
	"github.com/ivlev/video2manual/internal/video"
)

// RenderedStep is the per-step outcome. Missing marks steps whose frame
// could not be extracted; the step still appears in the document with a
// placeholder.
type RenderedStep struct {
	Step    manual.Step
	Image   *image.RGBA
	Missing bool
}

// Pipeline extracts frames for steps and burns their annotations in.
type Pipeline struct {
	src     video.FrameSource
	log     *zap.Logger
	workers int
}

// New builds a pipeline over src. workers <= 0 auto-sizes from CPU count
// and available memory against the source's frame footprint.
func New(src video.FrameSource, logger *zap.Logger, workers int) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	if workers <= 0 {
		info := src.Info()
		workers = system.AutoWorkers(int64(info.Width) * int64(info.Height) * 4)
	}
	return &Pipeline{src: src, log: logger, workers: workers}
}

// Workers reports the effective parallelism.
func (p *Pipeline) Workers() int { return p.workers }

// RenderStep extracts the step's frame and draws its annotations. A frame
// that cannot be extracted yields a Missing result, not an error; a
// malformed annotation is a defect and fails the call.
func (p *Pipeline) RenderStep(ctx context.Context, step manual.Step) (RenderedStep, error) {
	frame, err := p.src.ExtractFrame(ctx, step.Timestamp)
	if err != nil {
		if ctx.Err() != nil {
			return RenderedStep{}, ctx.Err()
		}
		if !errors.Is(err, video.ErrFrameNotFound) {
			p.log.Warn("frame extraction failed",
				zap.Int("step", step.ID),
				zap.Float64("timestamp", step.Timestamp),
				zap.Error(err))
		} else {
			p.log.Warn("no frame at timestamp",
				zap.Int("step", step.ID),
				zap.Float64("timestamp", step.Timestamp))
		}
		return RenderedStep{Step: step, Missing: true}, nil
	}

	out, err := render.DrawAnnotations(frame, step.Annotations)
	if err != nil {
		return RenderedStep{}, fmt.Errorf("step %d: %w", step.ID, err)
	}
	return RenderedStep{Step: step, Image: out}, nil
}

// RenderAll renders every step concurrently and returns the results in
// step order. The first annotation defect or context cancellation aborts
// the whole batch; missing frames do not.
func (p *Pipeline) RenderAll(ctx context.Context, steps []manual.Step) ([]RenderedStep, error) {
	results := make([]RenderedStep, len(steps))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for i, step := range steps {
		i, step := i, step
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := p.RenderStep(gctx, step)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	p.log.Info("steps rendered",
		zap.Int("total", len(results)),
		zap.Int("missing", len(Missing(results))))
	return results, nil
}

// Missing returns the positions of results whose frame was unavailable.
func Missing(results []RenderedStep) []int {
	var idx []int
	for i, r := range results {
		if r.Missing {
			idx = append(idx, i)
		}
	}
	return idx
}
