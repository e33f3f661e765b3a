package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"io"
	"log/slog"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/gen2brain/webp"
	_ "golang.org/x/image/webp" // Register WebP format decoder

	"github.com/ironsheep/image-resizer/internal/apperror"
)

// encoder writes img to w in one format. frames holds every frame when the
// source was animated; encoders that cannot animate use img only.
type encoder func(w io.Writer, img image.Image, frames []image.Image, delays []int, loop int, quality int) error

var (
	startOnce sync.Once
	encoders  map[Format]encoder
)

// Startup initialises the codec registry. It is safe to call any number of
// times from any goroutine; only the first call does work. The server calls it
// once before accepting requests, and Decode calls it as a guard.
func Startup() {
	startOnce.Do(func() {
		encoders = map[Format]encoder{
			JPEG: encodeJPEG,
			PNG:  encodeWith(imaging.PNG),
			GIF:  encodeGIF,
			BMP:  encodeWith(imaging.BMP),
			TIFF: encodeWith(imaging.TIFF),
			WebP: encodeWebP,
		}
		slog.Debug("image codec initialised", "formats", len(encoders))
	})
}

// Decode reads an image from data. Animated GIFs keep every frame, each
// composited onto the full canvas so that frames can be resized uniformly.
//
// Any decoding failure is reported as apperror.InvalidImage, as is a source
// whose declared size exceeds MaxPixels.
func Decode(data []byte) (*Image, error) {
	Startup()

	cfg, name, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, apperror.New(apperror.InvalidImage, fmt.Errorf("failed to decode image config: %w", err))
	}
	canvas := Dimensions{Width: cfg.Width, Height: cfg.Height}
	if err := checkArea(canvas, 1); err != nil {
		return nil, apperror.New(apperror.InvalidImage, err)
	}

	if name == string(GIF) {
		g, err := gif.DecodeAll(bytes.NewReader(data))
		if err != nil {
			return nil, apperror.New(apperror.InvalidImage, fmt.Errorf("failed to decode gif: %w", err))
		}
		// Every frame is coalesced onto a full-size canvas.
		if err := checkArea(canvas, len(g.Image)); err != nil {
			return nil, apperror.New(apperror.InvalidImage, err)
		}
		return fromGIF(g), nil
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, apperror.New(apperror.InvalidImage, fmt.Errorf("failed to decode image: %w", err))
	}

	return &Image{
		frames:  []image.Image{img},
		format:  Format(name),
		quality: defaultQuality,
	}, nil
}

// fromGIF coalesces the frames of g honouring each frame's disposal method.
func fromGIF(g *gif.GIF) *Image {
	canvasRect := image.Rect(0, 0, g.Config.Width, g.Config.Height)
	if canvasRect.Empty() && len(g.Image) > 0 {
		canvasRect = g.Image[0].Bounds()
	}
	canvas := image.NewNRGBA(canvasRect)

	frames := make([]image.Image, 0, len(g.Image))
	for i, frame := range g.Image {
		disposal := byte(gif.DisposalNone)
		if i < len(g.Disposal) {
			disposal = g.Disposal[i]
		}

		var previous *image.NRGBA
		if disposal == gif.DisposalPrevious {
			previous = imaging.Clone(canvas)
		}

		draw.Draw(canvas, frame.Bounds(), frame, frame.Bounds().Min, draw.Over)
		frames = append(frames, imaging.Clone(canvas))

		switch disposal {
		case gif.DisposalBackground:
			draw.Draw(canvas, frame.Bounds(), image.Transparent, image.Point{}, draw.Src)
		case gif.DisposalPrevious:
			canvas = previous
		}
	}

	delays := make([]int, len(frames))
	copy(delays, g.Delay)

	return &Image{
		frames:    frames,
		delays:    delays,
		loopCount: g.LoopCount,
		format:    GIF,
		quality:   defaultQuality,
	}
}

func encodeWith(f imaging.Format) encoder {
	return func(w io.Writer, img image.Image, _ []image.Image, _ []int, _ int, _ int) error {
		return imaging.Encode(w, img, f)
	}
}

func encodeJPEG(w io.Writer, img image.Image, _ []image.Image, _ []int, _ int, quality int) error {
	return imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(max(quality, 1)))
}

func encodeWebP(w io.Writer, img image.Image, _ []image.Image, _ []int, _ int, quality int) error {
	return webp.Encode(w, img, webp.Options{Quality: quality})
}

func encodeGIF(w io.Writer, img image.Image, frames []image.Image, delays []int, loop int, _ int) error {
	if len(frames) <= 1 {
		return imaging.Encode(w, img, imaging.GIF)
	}

	out := &gif.GIF{
		Image:     make([]*image.Paletted, len(frames)),
		Delay:     delays,
		LoopCount: loop,
	}
	for i, frame := range frames {
		out.Image[i] = paletted(frame)
	}
	return gif.EncodeAll(w, out)
}
