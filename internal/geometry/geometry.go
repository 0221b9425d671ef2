package geometry

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidDimension is returned when a conversion is asked to use a
// non-positive width or height.
var ErrInvalidDimension = errors.New("invalid dimension")

// RelRect is a rectangle expressed as fractions of an image's width and
// height, origin top-left. (X1,Y1) and (X2,Y2) are opposite corners.
// Values are not clamped to [0,1] here; range validation happens when a
// step record is constructed.
type RelRect struct {
	X1, Y1, X2, Y2 float64
}

// RelLine is a directed line from (X1,Y1) to (X2,Y2) in the same
// fractional space. Direction matters: arrowheads go on point 2.
type RelLine struct {
	X1, Y1, X2, Y2 float64
}

// PixRect is the integer counterpart of RelRect, valid only for a
// specific image size. Derived on demand, never persisted.
type PixRect struct {
	X1, Y1, X2, Y2 int
}

// PixLine is the integer counterpart of RelLine.
type PixLine struct {
	X1, Y1, X2, Y2 int
}

func checkDimensions(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimension, width, height)
	}
	return nil
}

// PointToRelative converts a pixel position to fractions of the given
// image size.
func PointToRelative(x, y, width, height int) (rx, ry float64, err error) {
	if err := checkDimensions(width, height); err != nil {
		return 0, 0, err
	}
	return float64(x) / float64(width), float64(y) / float64(height), nil
}

// PointToPixel converts a fractional position to a pixel position.
//
// The result is floored, not rounded: 0.253*1920 = 485.76 maps to 485.
// Floor keeps the inverse PointToRelative within one pixel of the input
// and is the policy the whole coordinate path is pinned to in tests.
func PointToPixel(rx, ry float64, width, height int) (x, y int, err error) {
	if err := checkDimensions(width, height); err != nil {
		return 0, 0, err
	}
	return int(math.Floor(rx * float64(width))), int(math.Floor(ry * float64(height))), nil
}

// RectToRelative converts both corners of a pixel rectangle.
func RectToRelative(r PixRect, width, height int) (RelRect, error) {
	x1, y1, err := PointToRelative(r.X1, r.Y1, width, height)
	if err != nil {
		return RelRect{}, err
	}
	x2, y2, _ := PointToRelative(r.X2, r.Y2, width, height)
	return RelRect{X1: x1, Y1: y1, X2: x2, Y2: y2}, nil
}

// RectToPixel converts both corners of a relative rectangle.
func RectToPixel(r RelRect, width, height int) (PixRect, error) {
	x1, y1, err := PointToPixel(r.X1, r.Y1, width, height)
	if err != nil {
		return PixRect{}, err
	}
	x2, y2, _ := PointToPixel(r.X2, r.Y2, width, height)
	return PixRect{X1: x1, Y1: y1, X2: x2, Y2: y2}, nil
}

// LineToRelative converts both endpoints of a pixel line.
func LineToRelative(l PixLine, width, height int) (RelLine, error) {
	x1, y1, err := PointToRelative(l.X1, l.Y1, width, height)
	if err != nil {
		return RelLine{}, err
	}
	x2, y2, _ := PointToRelative(l.X2, l.Y2, width, height)
	return RelLine{X1: x1, Y1: y1, X2: x2, Y2: y2}, nil
}

// LineToPixel converts both endpoints of a relative line.
func LineToPixel(l RelLine, width, height int) (PixLine, error) {
	x1, y1, err := PointToPixel(l.X1, l.Y1, width, height)
	if err != nil {
		return PixLine{}, err
	}
	x2, y2, _ := PointToPixel(l.X2, l.Y2, width, height)
	return PixLine{X1: x1, Y1: y1, X2: x2, Y2: y2}, nil
}
