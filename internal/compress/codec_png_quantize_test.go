package compress

import (
	"image/color"
	"testing"
)

func TestMedianCutRespectsMaxColors(t *testing.T) {
	pb := gradientBuffer(64, 64)
	palette := medianCut(toNRGBA(pb), 16)
	if len(palette) > 16 {
		t.Errorf("medianCut() produced %d colors, want <= 16", len(palette))
	}
	if len(palette) == 0 {
		t.Error("medianCut() produced an empty palette")
	}
}

func TestMedianCutSolidImageCollapsesToFewColors(t *testing.T) {
	pb := solidBuffer(32, 32, 50, 100, 150, 255)
	palette := medianCut(toNRGBA(pb), 256)
	if len(palette) > 2 {
		t.Errorf("medianCut() on a solid image produced %d colors, want very few", len(palette))
	}
}

func TestQuantizeToPaletteDimensions(t *testing.T) {
	pb := gradientBuffer(40, 30)
	paletted := quantizeToPalette(pb, 64, 0.8)
	if paletted.Bounds().Dx() != 40 || paletted.Bounds().Dy() != 30 {
		t.Errorf("quantizeToPalette() dims = %dx%d, want 40x30", paletted.Bounds().Dx(), paletted.Bounds().Dy())
	}
	if len(paletted.Palette) > 64 {
		t.Errorf("quantizeToPalette() palette size = %d, want <= 64", len(paletted.Palette))
	}
}

func TestNearestPaletteIndexPicksClosest(t *testing.T) {
	palette := color.Palette{
		color.NRGBA{R: 255, G: 0, B: 0, A: 255},
		color.NRGBA{R: 0, G: 255, B: 0, A: 255},
		color.NRGBA{R: 0, G: 0, B: 255, A: 255},
	}
	idx := nearestPaletteIndex(palette, [3]uint8{250, 10, 10})
	if idx != 0 {
		t.Errorf("nearestPaletteIndex() = %d, want 0 (closest to red)", idx)
	}
}
