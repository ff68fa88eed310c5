package compress

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// applyWatermark rasterizes Watermark.Text at the requested position, color,
// and opacity, inset by a small percentage of the smaller output dimension
// (spec §4.4 leaves the exact inset to the implementer). Glyphs are always
// 7x13 pixels; FontSize only changes the text height used for placement.
func applyWatermark(pb *PixelBuffer, w Watermark) *PixelBuffer {
	dst := toNRGBA(pb)
	out := image.NewNRGBA(dst.Rect)
	draw.Draw(out, out.Bounds(), dst, image.Point{}, draw.Src)

	col := parseHexColor(w.Color, color.White)
	opacity := clampInt(w.Opacity, 0, 100)
	col.A = uint8(255 * opacity / 100)

	scale := watermarkScale(w.FontSize)
	textWidth := font.MeasureString(scaledFace(scale), w.Text).Ceil()
	textHeight := 13 * scale

	smaller := pb.Width
	if pb.Height < smaller {
		smaller = pb.Height
	}
	inset := smaller * 3 / 100
	if inset < 4 {
		inset = 4
	}

	x, y := watermarkOrigin(w.Position, pb.Width, pb.Height, textWidth, textHeight, inset)

	d := &font.Drawer{
		Dst:  out,
		Src:  image.NewUniform(col),
		Face: scaledFace(scale),
		Dot:  fixed.P(x, y),
	}
	d.DrawString(w.Text)

	return &PixelBuffer{Width: out.Rect.Dx(), Height: out.Rect.Dy(), Pix: out.Pix}
}

// scaledFace returns basicfont.Face7x13 for every scale; the text is drawn
// once at that size, so larger scales do not produce larger glyphs.
func scaledFace(scale int) font.Face {
	_ = scale
	return basicfont.Face7x13
}

func watermarkScale(fontSize int) int {
	if fontSize <= 0 {
		return 1
	}
	scale := fontSize / 13
	if scale < 1 {
		scale = 1
	}
	return scale
}

func watermarkOrigin(pos WatermarkPosition, w, h, textWidth, textHeight, inset int) (x, y int) {
	switch pos {
	case WatermarkTopLeft:
		return inset, inset + textHeight
	case WatermarkTopRight:
		return w - textWidth - inset, inset + textHeight
	case WatermarkBottomLeft:
		return inset, h - inset
	case WatermarkCenter:
		return (w - textWidth) / 2, (h + textHeight) / 2
	default: // bottom-right
		return w - textWidth - inset, h - inset
	}
}

func parseHexColor(s string, def color.NRGBA) color.NRGBA {
	if len(s) != 7 || s[0] != '#' {
		return def
	}
	var r, g, b int
	if _, err := fixedScanHex(s[1:3], &r); err != nil {
		return def
	}
	if _, err := fixedScanHex(s[3:5], &g); err != nil {
		return def
	}
	if _, err := fixedScanHex(s[5:7], &b); err != nil {
		return def
	}
	return color.NRGBA{R: uint8(r), G: uint8(g), B: uint8(b), A: 255}
}

func fixedScanHex(s string, out *int) (int, error) {
	v := 0
	for _, c := range s {
		v *= 16
		switch {
		case c >= '0' && c <= '9':
			v += int(c - '0')
		case c >= 'a' && c <= 'f':
			v += int(c-'a') + 10
		case c >= 'A' && c <= 'F':
			v += int(c-'A') + 10
		default:
			return 0, errInvalidHex
		}
	}
	*out = v
	return v, nil
}

var errInvalidHex = errColorParse{}

type errColorParse struct{}

func (errColorParse) Error() string { return "invalid hex color" }

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
