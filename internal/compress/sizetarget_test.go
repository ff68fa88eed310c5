package compress

import "testing"

func TestHitTargetSizeAlreadyUnderBudget(t *testing.T) {
	pb := solidBuffer(16, 16, 10, 20, 30, 255)
	lossless := false
	opts := Options{Quality: 85, Lossless: &lossless}

	first, err := encodeAt(pb, FormatPNG, opts, opts.Quality)
	if err != nil {
		t.Fatalf("encodeAt() error = %v", err)
	}

	candidate, met, err := HitTargetSize(pb, FormatPNG, opts, len(first.bytes)+1000)
	if err != nil {
		t.Fatalf("HitTargetSize() error = %v", err)
	}
	if !met {
		t.Error("met = false, want true when the first attempt is already under budget")
	}
	if len(candidate.bytes) > len(first.bytes)+1000 {
		t.Errorf("candidate size %d exceeds target", len(candidate.bytes))
	}
}

func TestHitTargetSizeNarrowBudgetFallsBackToResize(t *testing.T) {
	pb := gradientBuffer(256, 256)
	lossless := false
	opts := Options{Quality: 85, Lossless: &lossless, ResizeFilter: FilterLanczos3}

	// An aggressively small budget should force at least one resize round,
	// and must never error out.
	_, _, err := HitTargetSize(pb, FormatPNG, opts, 200)
	if err != nil {
		t.Fatalf("HitTargetSize() error = %v", err)
	}
}

func TestSafetyCheckReturnsOriginalWhenNoSmallerEncodeExists(t *testing.T) {
	pb := solidBuffer(8, 8, 1, 1, 1, 255)
	lossless := true
	opts := Options{Quality: 85, Lossless: &lossless}

	encoded, err := Encode(pb, FormatPNG, opts)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	// original smaller than anything the codec could produce
	original := make([]byte, 1)
	out, warning := SafetyCheck(pb, FormatPNG, opts, encoded, original)
	if warning == "" {
		t.Error("warning = \"\", want a non-empty safety warning")
	}
	if len(out) != len(original) {
		t.Errorf("SafetyCheck() returned %d bytes, want original's %d bytes", len(out), len(original))
	}
}

func TestSafetyCheckPassesThroughWhenAlreadySmaller(t *testing.T) {
	pb := gradientBuffer(64, 64)
	lossless := false
	opts := Options{Quality: 85, Lossless: &lossless}

	encoded, err := Encode(pb, FormatPNG, opts)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	original := make([]byte, len(encoded)*10)
	out, warning := SafetyCheck(pb, FormatPNG, opts, encoded, original)
	if warning != "" {
		t.Errorf("warning = %q, want empty when the encode is already smaller", warning)
	}
	if len(out) != len(encoded) {
		t.Errorf("SafetyCheck() changed output when it should pass through")
	}
}
