package compress

import (
	"image/color"
	"testing"
)

func TestParseHexColor(t *testing.T) {
	def := color.NRGBA{R: 1, G: 2, B: 3, A: 255}

	tests := []struct {
		in   string
		want color.NRGBA
	}{
		{"#ffffff", color.NRGBA{R: 255, G: 255, B: 255, A: 255}},
		{"#000000", color.NRGBA{R: 0, G: 0, B: 0, A: 255}},
		{"#ff0080", color.NRGBA{R: 255, G: 0, B: 128, A: 255}},
		{"not-a-color", def},
		{"#zzzzzz", def},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := parseHexColor(tt.in, def)
			if got != tt.want {
				t.Errorf("parseHexColor(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestWatermarkOriginPositions(t *testing.T) {
	w, h := 200, 100
	tw, th := 50, 13
	inset := 6

	tests := []struct {
		pos  WatermarkPosition
		want [2]int
	}{
		{WatermarkTopLeft, [2]int{inset, inset + th}},
		{WatermarkTopRight, [2]int{w - tw - inset, inset + th}},
		{WatermarkBottomLeft, [2]int{inset, h - inset}},
		{WatermarkBottomRight, [2]int{w - tw - inset, h - inset}},
	}
	for _, tt := range tests {
		t.Run(string(tt.pos), func(t *testing.T) {
			x, y := watermarkOrigin(tt.pos, w, h, tw, th, inset)
			if x != tt.want[0] || y != tt.want[1] {
				t.Errorf("watermarkOrigin(%s) = (%d,%d), want (%d,%d)", tt.pos, x, y, tt.want[0], tt.want[1])
			}
		})
	}
}

func TestApplyWatermarkPreservesDimensions(t *testing.T) {
	pb := solidBuffer(200, 100, 10, 10, 10, 255)
	out := applyWatermark(pb, Watermark{
		Text:     "sample",
		Position: WatermarkBottomRight,
		Opacity:  80,
		FontSize: 13,
		Color:    "#ffffff",
	})
	if out.Width != pb.Width || out.Height != pb.Height {
		t.Errorf("applyWatermark() changed dimensions: got %dx%d, want %dx%d", out.Width, out.Height, pb.Width, pb.Height)
	}
}
