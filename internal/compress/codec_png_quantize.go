package compress

import (
	"image"
	"image/color"
	"math"
	"sort"
)

// quantizeToPalette reduces pb to a ≤maxColors palette via median-cut, then
// remaps pixels with an error-diffusion strength controlled by dither
// (0.0-1.0), matching spec §4.5's "dithering parameter is the palette
// remap's error-diffusion strength."
func quantizeToPalette(pb *PixelBuffer, maxColors int, dither float64) *image.Paletted {
	src := toNRGBA(pb)
	palette := medianCut(src, maxColors)
	return applyPaletteDithered(src, palette, dither)
}

type colorBox struct {
	pixels     [][3]uint8
	rMin, rMax uint8
	gMin, gMax uint8
	bMin, bMax uint8
}

func newColorBox(pixels [][3]uint8) *colorBox {
	box := &colorBox{pixels: pixels, rMin: 255, gMin: 255, bMin: 255}
	for _, p := range pixels {
		if p[0] < box.rMin {
			box.rMin = p[0]
		}
		if p[0] > box.rMax {
			box.rMax = p[0]
		}
		if p[1] < box.gMin {
			box.gMin = p[1]
		}
		if p[1] > box.gMax {
			box.gMax = p[1]
		}
		if p[2] < box.bMin {
			box.bMin = p[2]
		}
		if p[2] > box.bMax {
			box.bMax = p[2]
		}
	}
	return box
}

func (b *colorBox) longestAxis() int {
	rRange := int(b.rMax) - int(b.rMin)
	gRange := int(b.gMax) - int(b.gMin)
	bRange := int(b.bMax) - int(b.bMin)
	if rRange >= gRange && rRange >= bRange {
		return 0
	}
	if gRange >= bRange {
		return 1
	}
	return 2
}

func (b *colorBox) average() color.NRGBA {
	if len(b.pixels) == 0 {
		return color.NRGBA{A: 255}
	}
	var rSum, gSum, bSum int64
	for _, p := range b.pixels {
		rSum += int64(p[0])
		gSum += int64(p[1])
		bSum += int64(p[2])
	}
	n := int64(len(b.pixels))
	return color.NRGBA{R: uint8(rSum / n), G: uint8(gSum / n), B: uint8(bSum / n), A: 255}
}

func (b *colorBox) volume() int {
	return (int(b.rMax) - int(b.rMin) + 1) *
		(int(b.gMax) - int(b.gMin) + 1) *
		(int(b.bMax) - int(b.bMin) + 1)
}

// medianCut builds a ≤maxColors palette by recursively splitting the box
// with the largest volume*population score along its longest axis. Boxes
// that hold a single color are not split.
func medianCut(img *image.NRGBA, maxColors int) color.Palette {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	const maxSamples = 100000
	step := 1
	if w*h > maxSamples {
		step = (w * h) / maxSamples
		if step < 1 {
			step = 1
		}
	}

	pixels := make([][3]uint8, 0, w*h/step+1)
	for i := 0; i < w*h; i += step {
		off := i * 4
		if off+3 < len(img.Pix) {
			pixels = append(pixels, [3]uint8{img.Pix[off], img.Pix[off+1], img.Pix[off+2]})
		}
	}
	if len(pixels) == 0 {
		return color.Palette{color.NRGBA{A: 255}}
	}

	boxes := []*colorBox{newColorBox(pixels)}

	for len(boxes) < maxColors {
		bestIdx, bestScore := -1, -1
		for i, box := range boxes {
			if len(box.pixels) < 2 || box.volume() == 1 {
				continue
			}
			score := box.volume() * len(box.pixels)
			if score > bestScore {
				bestScore = score
				bestIdx = i
			}
		}
		if bestIdx == -1 {
			break
		}

		box := boxes[bestIdx]
		axis := box.longestAxis()
		sort.Slice(box.pixels, func(i, j int) bool {
			return box.pixels[i][axis] < box.pixels[j][axis]
		})

		mid := len(box.pixels) / 2
		boxes[bestIdx] = newColorBox(box.pixels[:mid])
		boxes = append(boxes, newColorBox(box.pixels[mid:]))
	}

	palette := make(color.Palette, len(boxes))
	for i, box := range boxes {
		palette[i] = box.average()
	}
	return palette
}

// applyPaletteDithered remaps src onto palette, diffusing quantization error
// to neighboring pixels (Floyd-Steinberg kernel) scaled by dither. dither==0
// is plain nearest-color remap.
func applyPaletteDithered(src *image.NRGBA, palette color.Palette, dither float64) *image.Paletted {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	indexed := image.NewPaletted(bounds, palette)

	if dither <= 0 {
		cache := make(map[[3]uint8]uint8, 256)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				off := y*src.Stride + x*4
				key := [3]uint8{src.Pix[off], src.Pix[off+1], src.Pix[off+2]}
				idx, ok := cache[key]
				if !ok {
					idx = uint8(nearestPaletteIndex(palette, key))
					cache[key] = idx
				}
				indexed.Pix[y*indexed.Stride+x] = idx
			}
		}
		return indexed
	}

	// working buffer of float error accumulators, row-major RGB
	errR := make([]float64, w*h)
	errG := make([]float64, w*h)
	errB := make([]float64, w*h)

	clamp255 := func(v float64) uint8 {
		if v < 0 {
			return 0
		}
		if v > 255 {
			return 255
		}
		return uint8(v)
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			off := y*src.Stride + x*4
			i := y*w + x
			r := clamp255(float64(src.Pix[off]) + errR[i])
			g := clamp255(float64(src.Pix[off+1]) + errG[i])
			b := clamp255(float64(src.Pix[off+2]) + errB[i])

			idx := nearestPaletteIndex(palette, [3]uint8{r, g, b})
			indexed.Pix[y*indexed.Stride+x] = uint8(idx)

			pr, pg, pb, _ := palette[idx].RGBA()
			dr := (float64(r) - float64(pr>>8)) * dither
			dg := (float64(g) - float64(pg>>8)) * dither
			db := (float64(b) - float64(pb>>8)) * dither

			diffuse := func(dx, dy int, frac float64) {
				nx, ny := x+dx, y+dy
				if nx < 0 || nx >= w || ny < 0 || ny >= h {
					return
				}
				ni := ny*w + nx
				errR[ni] += dr * frac
				errG[ni] += dg * frac
				errB[ni] += db * frac
			}
			diffuse(1, 0, 7.0/16)
			diffuse(-1, 1, 3.0/16)
			diffuse(0, 1, 5.0/16)
			diffuse(1, 1, 1.0/16)
		}
	}
	return indexed
}

func nearestPaletteIndex(palette color.Palette, rgb [3]uint8) int {
	bestIdx, bestDist := 0, math.MaxInt32
	for i, c := range palette {
		pr, pg, pb, _ := c.RGBA()
		dr := int(rgb[0]) - int(pr>>8)
		dg := int(rgb[1]) - int(pg>>8)
		db := int(rgb[2]) - int(pb>>8)
		dist := dr*dr + dg*dg + db*db
		if dist < bestDist {
			bestDist = dist
			bestIdx = i
		}
	}
	return bestIdx
}
