package compress

import "testing"

func solidBuffer(w, h int, r, g, b, a byte) *PixelBuffer {
	pb := &PixelBuffer{Width: w, Height: h, Pix: make([]byte, w*h*4)}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			pb.Set(x, y, r, g, b, a)
		}
	}
	return pb
}

func TestAnalyzeSolidIsGraphic(t *testing.T) {
	pb := solidBuffer(64, 64, 10, 20, 30, 255)
	a := Analyze(pb)
	if a.Type != TypeGraphic {
		t.Errorf("Type = %q, want %q", a.Type, TypeGraphic)
	}
	if a.HasTransparency {
		t.Error("HasTransparency = true for fully opaque buffer")
	}
}

func TestAnalyzeTransparencyDetected(t *testing.T) {
	pb := solidBuffer(16, 16, 0, 0, 0, 128)
	a := Analyze(pb)
	if !a.HasTransparency {
		t.Error("HasTransparency = false, want true")
	}
}

func TestAnalyzeEmptyBuffer(t *testing.T) {
	pb := &PixelBuffer{Width: 0, Height: 0}
	a := Analyze(pb)
	if a.Type != TypeGraphic {
		t.Errorf("Type for empty buffer = %q, want %q", a.Type, TypeGraphic)
	}
}

func TestAnalyzePhotoLikeGradient(t *testing.T) {
	w, h := 200, 200
	pb := &PixelBuffer{Width: w, Height: h, Pix: make([]byte, w*h*4)}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r := byte((x * 7) % 256)
			g := byte((y * 13) % 256)
			b := byte(((x + y) * 3) % 256)
			pb.Set(x, y, r, g, b, 255)
		}
	}
	a := Analyze(pb)
	if a.UniqueColors < 5000 {
		t.Errorf("UniqueColors = %d, want a high-cardinality estimate for a noisy gradient", a.UniqueColors)
	}
}
