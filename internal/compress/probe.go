package compress

import "time"

// QuickProbe estimates whether a full encode is worth running by encoding a
// downscaled copy with fast settings (spec §4.6). Probe failure of any kind
// returns ShouldSkip=false — it is always safer to attempt the full encode.
func QuickProbe(pb *PixelBuffer, format Format, originalSize int) ProbeResult {
	start := time.Now()

	scale := 512.0 / maxFloat(float64(pb.Width), float64(pb.Height))
	if scale > 0.5 {
		scale = 0.5
	}
	probeW := ceilInt(float64(pb.Width) * scale)
	probeH := ceilInt(float64(pb.Height) * scale)

	downsampled := nearestDownsample(pb, probeW, probeH)

	lossless := false
	probeOpts := Options{
		Quality:   50,
		SpeedMode: true,
		Lossless:  &lossless,
	}

	probeBytes, err := Encode(downsampled, format, probeOpts)
	if err != nil {
		return ProbeResult{ShouldSkip: false, ProbeTimeMs: time.Since(start).Milliseconds()}
	}

	rawProbeSize := float64(probeW * probeH * 4)
	if rawProbeSize == 0 {
		return ProbeResult{ShouldSkip: false, ProbeTimeMs: time.Since(start).Milliseconds()}
	}
	ratio := float64(len(probeBytes)) / rawProbeSize

	originalArea := float64(pb.Width * pb.Height)
	probeArea := float64(probeW * probeH)
	if originalArea == 0 {
		originalArea = 1
	}

	estimated := float64(originalSize) * ratio * (probeArea / originalArea)
	savings := 0.0
	if originalSize > 0 {
		savings = (float64(originalSize) - estimated) / float64(originalSize)
	}
	if savings < 0 {
		savings = 0
	}

	return ProbeResult{
		ShouldSkip:       savings < 0.03,
		EstimatedSavings: savings,
		ProbeTimeMs:      time.Since(start).Milliseconds(),
	}
}

// ProbeEligible implements the spec §4.6 eligibility rule: only for
// same-format conversions with no targetSizeKb, never for auto.
func ProbeEligible(sourceFormat, targetFormat Format, opts Options) bool {
	if opts.TargetSizeKb > 0 {
		return false
	}
	if targetFormat == FormatAuto {
		return false
	}
	return sourceFormat == targetFormat
}

// nearestDownsample is a cheap nearest-neighbor resize; the spec explicitly
// allows this fidelity for probes ("nearest-neighbor is sufficient").
func nearestDownsample(pb *PixelBuffer, w, h int) *PixelBuffer {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	out := &PixelBuffer{Width: w, Height: h, Pix: make([]byte, w*h*4)}
	for y := 0; y < h; y++ {
		sy := y * pb.Height / h
		for x := 0; x < w; x++ {
			sx := x * pb.Width / w
			r, g, b, a := pb.At(sx, sy)
			out.Set(x, y, r, g, b, a)
		}
	}
	return out
}
