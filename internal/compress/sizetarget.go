package compress

// sizeCandidate is one encode attempt considered by the size-target search.
type sizeCandidate struct {
	bytes   []byte
	quality int
	width   int
	height  int
}

// HitTargetSize implements the §4.7 cascade: an initial attempt at the
// requested quality/resolution, a quality binary search within [1,
// requestedQuality] bounded to 12 iterations, and up to 3 resize-fallback
// rounds (0.75x scale, 100px floor) each restarting the quality search.
// Returns the best candidate found and whether the budget was ultimately met.
func HitTargetSize(pb *PixelBuffer, format Format, opts Options, targetBytes int) (*sizeCandidate, bool, error) {
	first, err := encodeAt(pb, format, opts, opts.Quality)
	if err != nil {
		return nil, false, err
	}
	if len(first.bytes) <= targetBytes {
		return first, true, nil
	}

	best := first
	current := pb
	for resizeAttempt := 0; resizeAttempt <= 3; resizeAttempt++ {
		candidate, met, err := qualityBinarySearch(current, format, opts, targetBytes, best)
		if err != nil {
			return best, false, err
		}
		if candidate != nil {
			best = candidate
		}
		if met {
			return best, true, nil
		}
		if resizeAttempt == 3 {
			break
		}

		nw := maxInt(100, int(float64(current.Width)*0.75))
		nh := maxInt(100, int(float64(current.Height)*0.75))
		if nw == current.Width && nh == current.Height {
			break
		}
		current = resizeFit(current, nw, nh, FitFill, opts.ResizeFilter)
	}

	return best, false, nil
}

// qualityBinarySearch narrows [1, requestedQuality]; minQ tracks the best
// quality that met budget, maxQ the lowest that did not. Up to 12
// iterations, terminating when maxQ-minQ <= 1.
func qualityBinarySearch(pb *PixelBuffer, format Format, opts Options, targetBytes int, fallback *sizeCandidate) (*sizeCandidate, bool, error) {
	minQ, maxQ := 1, opts.Quality
	var best *sizeCandidate

	for i := 0; i < 12 && maxQ-minQ > 1; i++ {
		mid := (minQ + maxQ) / 2
		candidate, err := encodeAt(pb, format, opts, mid)
		if err != nil {
			return best, false, err
		}
		if len(candidate.bytes) <= targetBytes {
			minQ = mid
			best = candidate
		} else {
			maxQ = mid
		}
	}

	if best != nil {
		return best, true, nil
	}
	return fallback, false, nil
}

func encodeAt(pb *PixelBuffer, format Format, opts Options, quality int) (*sizeCandidate, error) {
	o := opts
	o.Quality = quality
	b, err := Encode(pb, format, o)
	if err != nil {
		return nil, err
	}
	return &sizeCandidate{bytes: b, quality: quality, width: pb.Width, height: pb.Height}, nil
}

// SafetyCheck implements spec §4.7's non-negotiable invariant: the pipeline
// never returns an output that is not smaller than the original. It
// progressively lowers quality in 10-point steps to 40; if still not
// smaller, the original bytes are returned with a warning.
func SafetyCheck(pb *PixelBuffer, format Format, opts Options, encoded []byte, original []byte) ([]byte, string) {
	if len(encoded) < len(original) {
		return encoded, ""
	}

	for q := opts.Quality - 10; q >= 40; q -= 10 {
		candidate, err := encodeAt(pb, format, opts, q)
		if err != nil {
			continue
		}
		if len(candidate.bytes) < len(original) {
			return candidate.bytes, ""
		}
	}
	return original, "returned original: already optimized"
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
