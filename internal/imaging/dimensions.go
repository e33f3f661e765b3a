package imaging

import (
	"errors"
	"fmt"
	"math"
)

// MaxPixels is the largest pixel area, summed over all frames, that Decode
// accepts and that Resize will produce.
const MaxPixels = 50_000_000

// pixelLimit is MaxPixels; tests lower it.
var pixelLimit int64 = MaxPixels

// ErrTooManyPixels is wrapped by the errors returned when an image or a
// resize target exceeds MaxPixels.
var ErrTooManyPixels = errors.New("image exceeds the pixel limit")

// Dimensions is a width/height pair in pixels.
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Equal reports whether d and o describe the same size.
func (d Dimensions) Equal(o Dimensions) bool {
	return d.Width == o.Width && d.Height == o.Height
}

// Pixels returns the area of d.
func (d Dimensions) Pixels() int64 {
	return int64(d.Width) * int64(d.Height)
}

// checkArea reports ErrTooManyPixels when frames frames of size d exceed the
// pixel limit.
func checkArea(d Dimensions, frames int) error {
	if frames < 1 {
		frames = 1
	}
	if d.Pixels() > pixelLimit/int64(frames) {
		return fmt.Errorf("%dx%d x %d frames: %w", d.Width, d.Height, frames, ErrTooManyPixels)
	}
	return nil
}

// Fit computes the target size for an image of the given intrinsic size.
//
// width and height are optional bounds; nil means unbounded. The result
// preserves the intrinsic aspect ratio and is a "contain" fit:
//
//   - both bounds: the result fits inside width x height and touches at least
//     one of them
//   - one bound: that side is used as given and the other follows the ratio
//   - no bounds: the intrinsic size is returned unchanged
//
// Scaled sides are rounded to the nearest pixel and never drop below 1.
func Fit(intrinsic Dimensions, width, height *int) Dimensions {
	w, h := intrinsic.Width, intrinsic.Height
	if w <= 0 || h <= 0 {
		return intrinsic
	}

	switch {
	case width != nil && height != nil:
		return Dimensions{
			Width:  atLeastOne(min(*width, scale(w, *height, h))),
			Height: atLeastOne(min(*height, scale(h, *width, w))),
		}
	case width != nil:
		return Dimensions{Width: atLeastOne(*width), Height: atLeastOne(scale(h, *width, w))}
	case height != nil:
		return Dimensions{Width: atLeastOne(scale(w, *height, h)), Height: atLeastOne(*height)}
	default:
		return intrinsic
	}
}

// scale returns round(side * target / reference).
func scale(side, target, reference int) int {
	return int(math.Round(float64(side) * float64(target) / float64(reference)))
}

func atLeastOne(v int) int {
	if v < 1 {
		return 1
	}
	return v
}

// RoundDimension converts a requested fractional size to whole pixels.
// nil stays nil. NaN, infinities and sizes above MaxPixels are rejected so the
// conversion to int never overflows.
func RoundDimension(v *float64) (*int, error) {
	if v == nil {
		return nil, nil
	}
	if math.IsNaN(*v) || math.IsInf(*v, 0) || math.Abs(*v) > MaxPixels {
		return nil, fmt.Errorf("dimension %v out of range", *v)
	}
	r := int(math.Round(*v))
	return &r, nil
}
