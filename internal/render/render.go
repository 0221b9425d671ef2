// Package render burns annotation shapes into copies of video frames.
package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/ivlev/video2manual/internal/geometry"
	"github.com/ivlev/video2manual/internal/manual"
)

var (
	// ErrInvalidGeometry reports a non-positive stroke thickness or
	// otherwise malformed shape parameters.
	ErrInvalidGeometry = errors.New("invalid geometry")

	// ErrUnsupportedKind reports an annotation kind the renderer does not
	// know. Unknown kinds fail loudly, they are never skipped.
	ErrUnsupportedKind = errors.New("unsupported annotation kind")
)

// Arrowhead proportions: head length as a fraction of the shaft, and the
// angle between each head stroke and the shaft.
const (
	arrowTipLength = 0.3
	arrowWingAngle = math.Pi / 6
)

// DrawAnnotations applies each annotation in list order onto a copy of
// frame; later annotations paint over earlier ones. The input frame is
// never mutated and the output has identical bounds.
func DrawAnnotations(frame *image.RGBA, anns []manual.Annotation) (*image.RGBA, error) {
	out := cloneFrame(frame)
	for i, a := range anns {
		col := color.RGBA{R: a.Color[0], G: a.Color[1], B: a.Color[2], A: 255}
		var err error
		switch a.Kind {
		case manual.KindRect:
			err = drawRect(out, a.Rect(), col, a.Thickness)
		case manual.KindLine:
			err = drawLine(out, a.Line(), col, a.Thickness)
		case manual.KindArrow:
			err = drawArrow(out, a.Line(), col, a.Thickness)
		default:
			err = fmt.Errorf("%w: %q", ErrUnsupportedKind, a.Kind)
		}
		if err != nil {
			return nil, fmt.Errorf("annotation %d: %w", i, err)
		}
	}
	return out, nil
}

// DrawRect draws an axis-aligned rectangle outline onto a copy of frame.
func DrawRect(frame *image.RGBA, r geometry.RelRect, col color.RGBA, thickness int) (*image.RGBA, error) {
	out := cloneFrame(frame)
	if err := drawRect(out, r, col, thickness); err != nil {
		return nil, err
	}
	return out, nil
}

// DrawLine draws a straight line (no arrowhead) onto a copy of frame.
func DrawLine(frame *image.RGBA, l geometry.RelLine, col color.RGBA, thickness int) (*image.RGBA, error) {
	out := cloneFrame(frame)
	if err := drawLine(out, l, col, thickness); err != nil {
		return nil, err
	}
	return out, nil
}

// DrawArrow draws a line from point 1 to point 2 with an arrowhead at
// point 2, onto a copy of frame.
func DrawArrow(frame *image.RGBA, l geometry.RelLine, col color.RGBA, thickness int) (*image.RGBA, error) {
	out := cloneFrame(frame)
	if err := drawArrow(out, l, col, thickness); err != nil {
		return nil, err
	}
	return out, nil
}

func cloneFrame(frame *image.RGBA) *image.RGBA {
	out := image.NewRGBA(frame.Bounds())
	copy(out.Pix, frame.Pix)
	return out
}

func drawRect(img *image.RGBA, r geometry.RelRect, col color.RGBA, thickness int) error {
	if thickness < 1 {
		return fmt.Errorf("%w: thickness %d", ErrInvalidGeometry, thickness)
	}
	b := img.Bounds()
	pr, err := geometry.RectToPixel(r, b.Dx(), b.Dy())
	if err != nil {
		return err
	}

	// Stroke straddles the boundary the way OpenCV strokes do.
	lo := -(thickness / 2)
	hi := lo + thickness
	fillSpan(img, pr.X1+lo, pr.Y1+lo, pr.X2+hi, pr.Y1+hi, col) // top
	fillSpan(img, pr.X1+lo, pr.Y2+lo, pr.X2+hi, pr.Y2+hi, col) // bottom
	fillSpan(img, pr.X1+lo, pr.Y1+lo, pr.X1+hi, pr.Y2+hi, col) // left
	fillSpan(img, pr.X2+lo, pr.Y1+lo, pr.X2+hi, pr.Y2+hi, col) // right
	return nil
}

func drawLine(img *image.RGBA, l geometry.RelLine, col color.RGBA, thickness int) error {
	if thickness < 1 {
		return fmt.Errorf("%w: thickness %d", ErrInvalidGeometry, thickness)
	}
	b := img.Bounds()
	pl, err := geometry.LineToPixel(l, b.Dx(), b.Dy())
	if err != nil {
		return err
	}
	strokeSegment(img, pl.X1, pl.Y1, pl.X2, pl.Y2, col, thickness)
	return nil
}

func drawArrow(img *image.RGBA, l geometry.RelLine, col color.RGBA, thickness int) error {
	if thickness < 1 {
		return fmt.Errorf("%w: thickness %d", ErrInvalidGeometry, thickness)
	}
	b := img.Bounds()
	pl, err := geometry.LineToPixel(l, b.Dx(), b.Dy())
	if err != nil {
		return err
	}
	strokeSegment(img, pl.X1, pl.Y1, pl.X2, pl.Y2, col, thickness)

	dx := float64(pl.X1 - pl.X2)
	dy := float64(pl.Y1 - pl.Y2)
	shaft := math.Hypot(dx, dy)
	if shaft == 0 {
		return nil
	}
	headLen := shaft * arrowTipLength
	angle := math.Atan2(dy, dx)
	for _, wing := range []float64{arrowWingAngle, -arrowWingAngle} {
		wx := pl.X2 + int(math.Round(headLen*math.Cos(angle+wing)))
		wy := pl.Y2 + int(math.Round(headLen*math.Sin(angle+wing)))
		strokeSegment(img, pl.X2, pl.Y2, wx, wy, col, thickness)
	}
	return nil
}

// strokeSegment walks the segment with Bresenham steps and stamps a
// thickness-sized square at each point.
func strokeSegment(img *image.RGBA, x1, y1, x2, y2 int, col color.RGBA, thickness int) {
	lo := -(thickness / 2)
	hi := lo + thickness

	dx := abs(x2 - x1)
	dy := -abs(y2 - y1)
	sx, sy := 1, 1
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}
	err := dx + dy

	x, y := x1, y1
	for {
		fillSpan(img, x+lo, y+lo, x+hi, y+hi, col)
		if x == x2 && y == y2 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
}

// fillSpan fills the half-open rectangle [x1,x2) x [y1,y2), clipped to the
// image bounds.
func fillSpan(img *image.RGBA, x1, y1, x2, y2 int, col color.RGBA) {
	b := img.Bounds()
	if x1 < b.Min.X {
		x1 = b.Min.X
	}
	if y1 < b.Min.Y {
		y1 = b.Min.Y
	}
	if x2 > b.Max.X {
		x2 = b.Max.X
	}
	if y2 > b.Max.Y {
		y2 = b.Max.Y
	}
	for y := y1; y < y2; y++ {
		for x := x1; x < x2; x++ {
			img.SetRGBA(x, y, col)
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
