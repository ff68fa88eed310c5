package compress

// Analyze classifies content per spec §4.3: stratified sampling at
// step = max(1, totalPixels/10000), hashing (R<<16)|(G<<8)|B into a set and
// comparing each sampled pixel to its next sampled neighbor to estimate
// gradient and solid-region prevalence. Deterministic by construction —
// non-determinism across runs on the same input would be a bug.
func Analyze(pb *PixelBuffer) Analysis {
	totalPixels := pb.Width * pb.Height
	if totalPixels == 0 {
		return Analysis{Type: TypeGraphic}
	}

	step := totalPixels / 10000
	if step < 1 {
		step = 1
	}

	seen := make(map[uint32]struct{})
	var sampled, gradientCount, solidCount int
	hasTransparency := false

	var prevR, prevG, prevB int
	havePrev := false

	for idx := 0; idx < totalPixels; idx += step {
		x := idx % pb.Width
		y := idx / pb.Width
		r, g, b, a := pb.At(x, y)

		if a < 255 {
			hasTransparency = true
		}

		hash := uint32(r)<<16 | uint32(g)<<8 | uint32(b)
		seen[hash] = struct{}{}

		if havePrev {
			diff := absInt(int(r)-prevR) + absInt(int(g)-prevG) + absInt(int(b)-prevB)
			switch {
			case diff == 0:
				solidCount++
			case diff > 0 && diff < 30:
				gradientCount++
			}
		}
		prevR, prevG, prevB = int(r), int(g), int(b)
		havePrev = true

		sampled++
	}

	sampleRatio := float64(sampled) / float64(totalPixels)
	uniqueColors := int(float64(len(seen))/sampleRatio + 0.5)
	if uniqueColors > totalPixels {
		uniqueColors = totalPixels
	}

	var gradientFraction, solidFraction float64
	if sampled > 0 {
		gradientFraction = float64(gradientCount) / float64(sampled)
		solidFraction = float64(solidCount) / float64(sampled)
	}

	a := Analysis{
		UniqueColors:    uniqueColors,
		HasGradients:    gradientFraction > 0,
		HasSolidRegions: solidFraction > 0,
		HasTransparency: hasTransparency,
	}

	switch {
	case uniqueColors < 5000 || solidFraction > 0.3:
		a.Type = TypeGraphic
	case uniqueColors > 50000 && gradientFraction > 0.3:
		a.Type = TypePhoto
	default:
		a.Type = TypeMixed
	}

	return a
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
