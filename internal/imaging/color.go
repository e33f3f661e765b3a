package imaging

import (
	"image"
	"math"
	"sort"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
)

// RGBColor represents an RGB color with 8-bit components.
type RGBColor struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// HSLColor represents a color in HSL (Hue, Saturation, Lightness) color space.
type HSLColor struct {
	H int `json:"h"` // Hue: 0-360 degrees (0=red, 120=green, 240=blue)
	S int `json:"s"` // Saturation: 0-100 percent (0=gray, 100=vivid)
	L int `json:"l"` // Lightness: 0-100 percent (0=black, 50=normal, 100=white)
}

// ColorFrequency represents a color and its occurrence frequency in an image.
type ColorFrequency struct {
	Hex        string   `json:"hex"`        // Hex color "#rrggbb" (quantized)
	Percentage float64  `json:"percentage"` // Percentage of opaque pixels with this color (0-100)
	RGB        RGBColor `json:"rgb"`
	HSL        HSLColor `json:"hsl"`
}

// paletteSampleSize bounds the side of the thumbnail that colors are counted on.
const paletteSampleSize = 64

// DominantColors extracts the count most common colors of img.
//
// The image is first reduced to at most 64x64 pixels with a box filter, so the
// cost does not depend on the source size. Fully transparent pixels are
// ignored. Colors are quantized by dividing each 8-bit component by 16 and
// rounding down, grouping colors within 16 units of each other:
//
//	quantized = (original / 16) * 16
//
// Results are sorted by frequency, most common first; ties are broken by hex
// value so that the output is deterministic.
func DominantColors(img image.Image, count int) []ColorFrequency {
	if count <= 0 {
		return nil
	}

	sample := imaging.Fit(img, paletteSampleSize, paletteSampleSize, imaging.Box)
	bounds := sample.Bounds()

	counts := make(map[colorful.Color]int)
	total := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			px := sample.NRGBAAt(x, y)
			if px.A == 0 {
				continue
			}
			c := colorful.Color{
				R: float64(px.R/16*16) / 255,
				G: float64(px.G/16*16) / 255,
				B: float64(px.B/16*16) / 255,
			}
			counts[c]++
			total++
		}
	}

	colors := make([]ColorFrequency, 0, len(counts))
	for c, n := range counts {
		r, g, b := c.RGB255()
		colors = append(colors, ColorFrequency{
			Hex:        c.Hex(),
			Percentage: math.Round(float64(n)/float64(total)*10000) / 100,
			RGB:        RGBColor{R: r, G: g, B: b},
			HSL:        toHSL(c),
		})
	}

	sort.Slice(colors, func(i, j int) bool {
		if colors[i].Percentage != colors[j].Percentage {
			return colors[i].Percentage > colors[j].Percentage
		}
		return colors[i].Hex < colors[j].Hex
	})

	if len(colors) > count {
		colors = colors[:count]
	}
	return colors
}

func toHSL(c colorful.Color) HSLColor {
	h, s, l := c.Hsl()
	if math.IsNaN(h) {
		h = 0
	}
	return HSLColor{
		H: int(math.Round(h)) % 360,
		S: int(math.Round(s * 100)),
		L: int(math.Round(l * 100)),
	}
}
