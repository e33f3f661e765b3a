package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/color/palette"
	"math"

	"github.com/anthonynsimon/bild/blur"
	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"

	"github.com/ironsheep/image-resizer/internal/apperror"
)

const defaultQuality = 85

// Variant selects how Resize treats the frames of an image.
type Variant int

const (
	// Thumbnail resizes the first frame only.
	Thumbnail Variant = iota
	// FitScene resizes every frame of an animated image.
	FitScene
)

func (v Variant) String() string {
	if v == FitScene {
		return "fit_scene"
	}
	return "thumbnail"
}

// Image is a decoded, mutable image handle.
//
// An Image is owned by exactly one request: Resize, Blur, StripMetadata,
// SetQuality and Encode mutate it in place and it must not be shared between
// goroutines.
type Image struct {
	frames    []image.Image
	delays    []int
	loopCount int
	format    Format
	quality   int
	metadata  *Metadata
}

// Dimensions returns the intrinsic size of the image.
func (i *Image) Dimensions() Dimensions {
	b := i.frames[0].Bounds()
	return Dimensions{Width: b.Dx(), Height: b.Dy()}
}

// Frames returns the number of frames, 1 for still images.
func (i *Image) Frames() int {
	return len(i.frames)
}

// IsMultiFrame reports whether the image is animated.
func (i *Image) IsMultiFrame() bool {
	return len(i.frames) > 1
}

// ResizeVariant is the variant Resize should use for this image.
func (i *Image) ResizeVariant() Variant {
	if i.IsMultiFrame() {
		return FitScene
	}
	return Thumbnail
}

// Resize scales the image to d using the Lanczos filter.
//
// With Thumbnail only the first frame is resized and any further frames are
// dropped; with FitScene every frame is resized. A target whose area over the
// resized frames exceeds MaxPixels is rejected with apperror.InvalidRequest
// and leaves the image unchanged.
func (i *Image) Resize(d Dimensions, v Variant) error {
	frames := 1
	if v == FitScene {
		frames = len(i.frames)
	}
	if d.Width < 1 || d.Height < 1 {
		return apperror.New(apperror.InvalidRequest, fmt.Errorf("target %dx%d is empty", d.Width, d.Height))
	}
	if err := checkArea(d, frames); err != nil {
		return apperror.New(apperror.InvalidRequest, err)
	}

	if v == FitScene {
		for n, frame := range i.frames {
			i.frames[n] = imaging.Resize(frame, d.Width, d.Height, imaging.Lanczos)
		}
		return nil
	}

	i.frames = []image.Image{imaging.Resize(i.frames[0], d.Width, d.Height, imaging.Lanczos)}
	i.delays = nil
	return nil
}

// MaxBlurRadius is the largest radius Blur accepts.
const MaxBlurRadius = 100

// ValidateBlur checks a requested blur radius. 0 means no blur; negative,
// non-finite and radii above MaxBlurRadius yield apperror.InvalidRequest.
func ValidateBlur(radius float64) error {
	if math.IsNaN(radius) || radius < 0 || radius > MaxBlurRadius {
		return apperror.New(apperror.InvalidRequest, fmt.Errorf("blur radius %v outside 0-%d", radius, MaxBlurRadius))
	}
	return nil
}

// Blur applies a Gaussian blur of the given radius to every frame.
// A radius of 0 leaves the image unchanged.
func (i *Image) Blur(radius float64) error {
	if err := ValidateBlur(radius); err != nil {
		return err
	}
	if radius == 0 {
		return nil
	}
	for n, frame := range i.frames {
		i.frames[n] = blur.Gaussian(frame, radius)
	}
	return nil
}

// AttachMetadata records source metadata on the handle.
func (i *Image) AttachMetadata(m *Metadata) {
	i.metadata = m
}

// Metadata returns the metadata still attached to the image, or nil.
func (i *Image) Metadata() *Metadata {
	return i.metadata
}

// StripMetadata drops any metadata so that it is not carried into the
// encoded output. Pixel data is written without EXIF, IPTC or XMP blocks.
func (i *Image) StripMetadata() {
	i.metadata = nil
}

// SetQuality sets the compression quality used by lossy encoders.
// q must be within 0-100, otherwise apperror.FailedWrite is returned.
func (i *Image) SetQuality(q int) error {
	if q < 0 || q > 100 {
		return apperror.New(apperror.FailedWrite, fmt.Errorf("quality %d outside 0-100", q))
	}
	i.quality = q
	return nil
}

// Quality returns the current compression quality.
func (i *Image) Quality() int {
	return i.quality
}

// DetectedFormat returns the format the image was decoded from.
// An unsupported source format yields apperror.InvalidFormat.
func (i *Image) DetectedFormat() (Format, error) {
	if _, ok := mimeTypes[i.format]; !ok {
		return "", apperror.New(apperror.InvalidFormat, fmt.Errorf("unsupported source format %q", i.format))
	}
	return i.format, nil
}

// Encode writes the image in format f. Animation is preserved for GIF output;
// other formats encode the first frame.
func (i *Image) Encode(f Format) ([]byte, error) {
	Startup()

	enc, ok := encoders[f]
	if !ok {
		return nil, apperror.New(apperror.InvalidFormat, fmt.Errorf("no encoder for %q", f))
	}

	var buf bytes.Buffer
	if err := enc(&buf, i.frames[0], i.frames, i.delays, i.loopCount, i.quality); err != nil {
		return nil, apperror.New(apperror.FailedWrite, fmt.Errorf("failed to encode %s: %w", f, err))
	}
	return buf.Bytes(), nil
}

// HasAlpha reports whether the first frame has any non-opaque pixel.
func (i *Image) HasAlpha() bool {
	if o, ok := i.frames[0].(interface{ Opaque() bool }); ok {
		return !o.Opaque()
	}
	return false
}

// gifPalette is Plan 9 with its last entry replaced by full transparency.
var gifPalette = func() color.Palette {
	p := make(color.Palette, len(palette.Plan9))
	copy(p, palette.Plan9)
	p[len(p)-1] = color.Transparent
	return p
}()

// paletted converts a frame to the fixed GIF palette with Floyd-Steinberg dithering.
func paletted(frame image.Image) *image.Paletted {
	b := frame.Bounds()
	dst := image.NewPaletted(image.Rect(0, 0, b.Dx(), b.Dy()), gifPalette)
	draw.FloydSteinberg.Draw(dst, dst.Bounds(), frame, b.Min)
	return dst
}
