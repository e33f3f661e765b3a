package imaging

import (
	"image"
	"image/color"
	"testing"
)

func TestDominantColors_SolidColor(t *testing.T) {
	img := createInMemoryImage(100, 100, color.RGBA{255, 0, 0, 255})

	colors := DominantColors(img, 5)
	if len(colors) != 1 {
		t.Fatalf("expected 1 color, got %d", len(colors))
	}
	if colors[0].Hex != "#f00000" {
		t.Errorf("Hex: got %s, want #f00000", colors[0].Hex)
	}
	if colors[0].Percentage != 100 {
		t.Errorf("Percentage: got %v, want 100", colors[0].Percentage)
	}
	if colors[0].RGB != (RGBColor{240, 0, 0}) {
		t.Errorf("RGB: got %+v, want {240 0 0}", colors[0].RGB)
	}
	if colors[0].HSL.H != 0 || colors[0].HSL.S != 100 {
		t.Errorf("HSL: got %+v, want hue 0 and saturation 100", colors[0].HSL)
	}
}

func TestDominantColors_TieBreakByHex(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			if x < 16 {
				img.Set(x, y, color.RGBA{255, 0, 0, 255})
			} else {
				img.Set(x, y, color.RGBA{0, 0, 255, 255})
			}
		}
	}

	colors := DominantColors(img, 5)
	if len(colors) != 2 {
		t.Fatalf("expected 2 colors, got %d", len(colors))
	}
	if colors[0].Hex != "#0000f0" || colors[1].Hex != "#f00000" {
		t.Errorf("order: got %s, %s; want #0000f0, #f00000", colors[0].Hex, colors[1].Hex)
	}
	for _, c := range colors {
		if c.Percentage != 50 {
			t.Errorf("%s: got %v%%, want 50%%", c.Hex, c.Percentage)
		}
	}
}

func TestDominantColors_SkipsTransparent(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 20, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			if y < 5 {
				img.Set(x, y, color.NRGBA{0, 255, 0, 255})
			} else {
				img.Set(x, y, color.NRGBA{255, 255, 255, 0})
			}
		}
	}

	colors := DominantColors(img, 3)
	if len(colors) != 1 {
		t.Fatalf("expected 1 color, got %d: %+v", len(colors), colors)
	}
	if colors[0].Hex != "#00f000" || colors[0].Percentage != 100 {
		t.Errorf("got %s at %v%%, want #00f000 at 100%%", colors[0].Hex, colors[0].Percentage)
	}
}

func TestDominantColors_Count(t *testing.T) {
	img := createPatternImage(32, 32)

	colors := DominantColors(img, 2)
	if len(colors) != 2 {
		t.Fatalf("expected 2 colors, got %d", len(colors))
	}
	if colors[0].Hex != "#0000f0" || colors[1].Hex != "#00f000" {
		t.Errorf("got %s, %s; want #0000f0, #00f000", colors[0].Hex, colors[1].Hex)
	}

	if got := DominantColors(img, 0); got != nil {
		t.Errorf("count 0 should return nil, got %+v", got)
	}
}
