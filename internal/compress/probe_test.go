package compress

import "testing"

func gradientBuffer(w, h int) *PixelBuffer {
	pb := &PixelBuffer{Width: w, Height: h, Pix: make([]byte, w*h*4)}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			pb.Set(x, y, byte(x%256), byte(y%256), byte((x+y)%256), 255)
		}
	}
	return pb
}

func TestProbeEligible(t *testing.T) {
	tests := []struct {
		name   string
		source Format
		target Format
		opts   Options
		want   bool
	}{
		{"same format no target size", FormatPNG, FormatPNG, Options{}, true},
		{"different formats", FormatPNG, FormatJPEG, Options{}, false},
		{"target size set", FormatPNG, FormatPNG, Options{TargetSizeKb: 50}, false},
		{"auto target", FormatPNG, FormatAuto, Options{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ProbeEligible(tt.source, tt.target, tt.opts); got != tt.want {
				t.Errorf("ProbeEligible() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestQuickProbeNeverPanics(t *testing.T) {
	pb := gradientBuffer(800, 600)
	result := QuickProbe(pb, FormatPNG, 500000)
	if result.ProbeTimeMs < 0 {
		t.Errorf("ProbeTimeMs = %d, want >= 0", result.ProbeTimeMs)
	}
}

func TestNearestDownsampleClampsToOnePixel(t *testing.T) {
	pb := solidBuffer(4, 4, 1, 2, 3, 255)
	out := nearestDownsample(pb, 0, 0)
	if out.Width != 1 || out.Height != 1 {
		t.Errorf("nearestDownsample(0,0) = %dx%d, want 1x1", out.Width, out.Height)
	}
}
