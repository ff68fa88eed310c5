package compress

import (
	"bytes"
	"image/png"
	"testing"
)

func encodeTestPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	pb := gradientBuffer(w, h)
	lossless := true
	out, err := Encode(pb, FormatPNG, Options{Lossless: &lossless})
	if err != nil {
		t.Fatalf("fixture Encode() error = %v", err)
	}
	return out
}

func TestEngineCompressRoundTripsPNG(t *testing.T) {
	engine := NewEngine()
	defer engine.Shutdown()

	src := encodeTestPNG(t, 64, 64)
	lossless := true
	result, err := engine.Compress(Request{
		Bytes: src,
		Options: Options{
			Format:       FormatPNG,
			Lossless:     &lossless,
			TargetWidth:  32,
			TargetHeight: 32,
			FitMode:      FitContain,
		},
	})
	if err != nil {
		t.Fatalf("Compress() error = %v", err)
	}
	if result.Format != FormatPNG {
		t.Errorf("Format = %q, want png", result.Format)
	}
	if result.Width > 32 || result.Height > 32 {
		t.Errorf("result dims %dx%d exceed 32x32 box", result.Width, result.Height)
	}
	if !result.ResizeApplied {
		t.Error("ResizeApplied = false, want true")
	}

	if _, err := png.Decode(bytes.NewReader(result.Blob)); err != nil {
		t.Errorf("result blob is not a valid PNG: %v", err)
	}
}

func TestEngineCompressRejectsUnknownSource(t *testing.T) {
	engine := NewEngine()
	defer engine.Shutdown()

	_, err := engine.Compress(Request{Bytes: []byte("not an image")})
	if err == nil {
		t.Fatal("Compress() with garbage bytes returned nil error")
	}
	ce, ok := err.(*Error)
	if !ok || ce.Kind != KindUnsupportedFormat {
		t.Errorf("error = %v, want KindUnsupportedFormat", err)
	}
}

func TestEngineCompressNeverExceedsOriginalSize(t *testing.T) {
	engine := NewEngine()
	defer engine.Shutdown()

	src := encodeTestPNG(t, 8, 8)
	lossless := true
	result, err := engine.Compress(Request{
		Bytes:   src,
		Options: Options{Format: FormatPNG, Lossless: &lossless},
	})
	if err != nil {
		t.Fatalf("Compress() error = %v", err)
	}
	if len(result.Blob) > len(src) && result.Warning == "" {
		t.Errorf("result larger than source (%d > %d) without a safety warning", len(result.Blob), len(src))
	}
}

func TestResolveAutoFormatPicksWebpForTransparencyOrPhoto(t *testing.T) {
	tests := []struct {
		name     string
		analysis Analysis
		want     Format
	}{
		{"transparent", Analysis{HasTransparency: true}, FormatWebP},
		{"photo", Analysis{Type: TypePhoto}, FormatWebP},
		{"graphic opaque", Analysis{Type: TypeGraphic}, FormatPNG},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolveAutoFormat(FormatAuto, tt.analysis); got != tt.want {
				t.Errorf("resolveAutoFormat() = %q, want %q", got, tt.want)
			}
		})
	}
	if got := resolveAutoFormat(FormatJPEG, Analysis{}); got != FormatJPEG {
		t.Errorf("resolveAutoFormat() with explicit format = %q, want jpeg passthrough", got)
	}
}

func TestResolveAutoPoliciesDerivesPNGLosslessAndJPEGFloor(t *testing.T) {
	opts := resolveAutoPolicies(Options{Quality: 50}, FormatPNG, Analysis{Type: TypeGraphic, UniqueColors: 10})
	if opts.Lossless == nil || !*opts.Lossless {
		t.Error("PNG graphic with few colors should auto-derive lossless=true")
	}

	opts = resolveAutoPolicies(Options{Quality: 50}, FormatJPEG, Analysis{Type: TypePhoto})
	if opts.Quality != 70 {
		t.Errorf("JPEG photo quality floor = %d, want 70", opts.Quality)
	}
}
