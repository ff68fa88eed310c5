package compress

import "testing"

func TestTransformResizeFitContain(t *testing.T) {
	pb := gradientBuffer(400, 200)
	out, resized, err := Transform(pb, Options{
		TargetWidth:  100,
		TargetHeight: 100,
		FitMode:      FitContain,
		ResizeFilter: FilterLanczos3,
	})
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	if !resized {
		t.Error("resizeApplied = false, want true")
	}
	if out.Width > 100 || out.Height > 100 {
		t.Errorf("output %dx%d exceeds 100x100 box under contain", out.Width, out.Height)
	}
	if out.Width != 100 && out.Height != 100 {
		t.Errorf("output %dx%d should touch the box on at least one axis", out.Width, out.Height)
	}
}

func TestTransformResizeFitCoverFillsBox(t *testing.T) {
	pb := gradientBuffer(400, 200)
	out, _, err := Transform(pb, Options{
		TargetWidth:  100,
		TargetHeight: 100,
		FitMode:      FitCover,
		ResizeFilter: FilterLanczos3,
	})
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	if out.Width != 100 || out.Height != 100 {
		t.Errorf("cover fit output = %dx%d, want exactly 100x100", out.Width, out.Height)
	}
}

func TestTransformContainSkipsUpscale(t *testing.T) {
	pb := gradientBuffer(50, 50)
	out, resized, err := Transform(pb, Options{
		TargetWidth:  200,
		TargetHeight: 200,
		FitMode:      FitContain,
		ResizeFilter: FilterLanczos3,
	})
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	if resized {
		t.Error("resizeApplied = true, want false: contain should not upscale")
	}
	if out.Width != 50 || out.Height != 50 {
		t.Errorf("output = %dx%d, want unchanged 50x50", out.Width, out.Height)
	}
}

func TestTransformCrop(t *testing.T) {
	pb := gradientBuffer(100, 100)
	out, _, err := Transform(pb, Options{Crop: &Crop{X: 10, Y: 10, Width: 30, Height: 40}})
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	if out.Width != 30 || out.Height != 40 {
		t.Errorf("cropped = %dx%d, want 30x40", out.Width, out.Height)
	}
}

func TestTransformRotate90SwapsDimensions(t *testing.T) {
	pb := gradientBuffer(60, 30)
	out, _, err := Transform(pb, Options{Rotate: 90})
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	if out.Width != 30 || out.Height != 60 {
		t.Errorf("rotated = %dx%d, want 30x60", out.Width, out.Height)
	}
}

func TestAutoTrimRemovesUniformBorder(t *testing.T) {
	pb := solidBuffer(40, 40, 255, 255, 255, 255)
	for y := 10; y < 30; y++ {
		for x := 10; x < 30; x++ {
			pb.Set(x, y, 0, 0, 0, 255)
		}
	}
	out := autoTrim(pb, 10)
	if out.Width != 20 || out.Height != 20 {
		t.Errorf("autoTrim() = %dx%d, want 20x20", out.Width, out.Height)
	}
}

func TestAutoTrimNoOpOnUniformImage(t *testing.T) {
	pb := solidBuffer(20, 20, 128, 128, 128, 255)
	out := autoTrim(pb, 10)
	if out.Width != pb.Width || out.Height != pb.Height {
		t.Errorf("autoTrim() on a uniform image changed dimensions: got %dx%d", out.Width, out.Height)
	}
}
