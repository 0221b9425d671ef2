// Package analyzer suggests annotation rectangles by finding high-contrast
// regions in a frame: UI controls, dialogs and text blocks stand out from
// the background as connected edge clusters.
package analyzer

import (
	"image"
	"sort"

	"github.com/ivlev/video2manual/internal/geometry"
)

// Suggestion is a candidate annotation region with a rough confidence
// score.
type Suggestion struct {
	Rect       geometry.RelRect
	Confidence float64
}

// Detector finds candidate regions using Sobel edge detection followed by
// dilation and connected-component grouping.
type Detector struct {
	// MinArea is the smallest region to report, in pixels squared.
	MinArea int
	// EdgeThreshold is the gradient magnitude above which a pixel counts
	// as an edge.
	EdgeThreshold float64
	// MaxSuggestions caps the number of regions returned. Zero means no
	// cap.
	MaxSuggestions int
}

// NewDetector returns a detector tuned for screen captures, where
// interface elements produce crisp edges.
func NewDetector() *Detector {
	return &Detector{
		MinArea:        500,
		EdgeThreshold:  30.0,
		MaxSuggestions: 10,
	}
}

// SuggestRects finds candidate annotation regions in frame and returns
// them as relative rectangles in reading order, top to bottom then left to
// right. When MaxSuggestions is set, the largest regions win.
func (d *Detector) SuggestRects(frame image.Image) ([]Suggestion, error) {
	b := frame.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil, geometry.ErrInvalidDimension
	}

	gray := toGrayscale(frame)
	edges := sobel(gray, d.EdgeThreshold)
	dilated := dilate(edges, 5, 2)
	regions := connectedRegions(dilated)

	var kept []image.Rectangle
	for _, r := range regions {
		if r.Dx()*r.Dy() >= d.MinArea {
			kept = append(kept, r)
		}
	}
	if d.MaxSuggestions > 0 && len(kept) > d.MaxSuggestions {
		sort.Slice(kept, func(i, j int) bool {
			return kept[i].Dx()*kept[i].Dy() > kept[j].Dx()*kept[j].Dy()
		})
		kept = kept[:d.MaxSuggestions]
	}
	sort.Slice(kept, func(i, j int) bool {
		if kept[i].Min.Y != kept[j].Min.Y {
			return kept[i].Min.Y < kept[j].Min.Y
		}
		return kept[i].Min.X < kept[j].Min.X
	})

	out := make([]Suggestion, 0, len(kept))
	for _, r := range kept {
		rel, err := geometry.RectToRelative(
			geometry.PixRect{X1: r.Min.X, Y1: r.Min.Y, X2: r.Max.X, Y2: r.Max.Y}, w, h)
		if err != nil {
			return nil, err
		}
		out = append(out, Suggestion{Rect: rel, Confidence: 0.7})
	}
	return out, nil
}
