package compress

import (
	"image"

	"github.com/disintegration/imaging"
)

// Transform applies the Pixel Transformer pipeline (C4) in the fixed order
// mandated by spec §4.4: crop → rotate/flip → resize/fit → sharpen → blur →
// auto-trim → watermark. Each stage consumes and produces a PixelBuffer.
func Transform(pb *PixelBuffer, opts Options) (*PixelBuffer, bool, error) {
	resizeApplied := false

	if opts.Crop != nil {
		pb = cropBuffer(pb, *opts.Crop)
	}

	if opts.Rotate != 0 || opts.FlipH || opts.FlipV {
		pb = rotateFlip(pb, opts.Rotate, opts.FlipH, opts.FlipV)
	}

	if opts.TargetWidth > 0 || opts.TargetHeight > 0 {
		resized := resizeFit(pb, opts.TargetWidth, opts.TargetHeight, opts.FitMode, opts.ResizeFilter)
		if resized != pb {
			pb = resized
			resizeApplied = true
		}
	}

	if opts.Sharpen > 0 {
		pb = sharpen(pb, opts.Sharpen)
	}

	if opts.Blur > 0 {
		pb = blur(pb, opts.Blur)
	}

	if opts.AutoTrim {
		pb = autoTrim(pb, opts.AutoTrimThreshold)
	}

	if opts.Watermark != nil && opts.Watermark.Text != "" {
		pb = applyWatermark(pb, *opts.Watermark)
	}

	return pb, resizeApplied, nil
}

func toNRGBA(pb *PixelBuffer) *image.NRGBA {
	return &image.NRGBA{
		Pix:    pb.Pix,
		Stride: pb.Stride(),
		Rect:   image.Rect(0, 0, pb.Width, pb.Height),
	}
}

func fromNRGBA(img *image.NRGBA) *PixelBuffer {
	if img.Rect.Min == (image.Point{}) && img.Stride == img.Rect.Dx()*4 {
		return &PixelBuffer{Width: img.Rect.Dx(), Height: img.Rect.Dy(), Pix: img.Pix}
	}
	clean := imaging.Clone(img)
	return &PixelBuffer{Width: clean.Rect.Dx(), Height: clean.Rect.Dy(), Pix: clean.Pix}
}

func cropBuffer(pb *PixelBuffer, c Crop) *PixelBuffer {
	src := toNRGBA(pb)
	rect := image.Rect(c.X, c.Y, c.X+c.Width, c.Y+c.Height).Intersect(src.Bounds())
	if rect.Empty() {
		return pb
	}
	cropped := imaging.Crop(src, rect)
	return fromNRGBA(cropped)
}

func rotateFlip(pb *PixelBuffer, rotate int, flipH, flipV bool) *PixelBuffer {
	img := image.Image(toNRGBA(pb))

	switch rotate {
	case 90:
		img = imaging.Rotate90(img)
	case 180:
		img = imaging.Rotate180(img)
	case 270:
		img = imaging.Rotate270(img)
	}

	if flipH {
		img = imaging.FlipH(img)
	}
	if flipV {
		img = imaging.FlipV(img)
	}

	return fromNRGBA(imaging.Clone(img))
}

// resizeFit implements the §4.4 fit-mode table. Returns the same pointer
// when no resize was necessary (inside/contain already within bounds).
func resizeFit(pb *PixelBuffer, tw, th int, mode FitMode, filter ResizeFilter) *PixelBuffer {
	src := toNRGBA(pb)
	sw, sh := pb.Width, pb.Height

	if tw == 0 {
		tw = sw
	}
	if th == 0 {
		th = sh
	}

	f := resampleFilter(filter)

	switch mode {
	case FitFill:
		return fromNRGBA(imaging.Resize(src, tw, th, f))

	case FitCover, FitOutside:
		scale := maxFloat(float64(tw)/float64(sw), float64(th)/float64(sh))
		rw, rh := ceilInt(float64(sw)*scale), ceilInt(float64(sh)*scale)
		resized := imaging.Resize(src, rw, rh, f)
		return fromNRGBA(imaging.CropCenter(resized, tw, th))

	default: // contain, inside: scale-down-only, preserve aspect (Open Question 1)
		if sw <= tw && sh <= th {
			return pb
		}
		scale := minFloat(float64(tw)/float64(sw), float64(th)/float64(sh))
		rw, rh := ceilInt(float64(sw)*scale), ceilInt(float64(sh)*scale)
		return fromNRGBA(imaging.Resize(src, rw, rh, f))
	}
}

func resampleFilter(f ResizeFilter) imaging.ResampleFilter {
	switch f {
	case FilterMitchell:
		return imaging.MitchellNetravali
	case FilterBilinear:
		return imaging.Linear
	case FilterNearest:
		return imaging.NearestNeighbor
	default:
		return imaging.Lanczos
	}
}

func sharpen(pb *PixelBuffer, amount int) *PixelBuffer {
	sigma := float64(amount) / 100.0
	out := imaging.Sharpen(toNRGBA(pb), sigma)
	return fromNRGBA(out)
}

func blur(pb *PixelBuffer, amount int) *PixelBuffer {
	radius := float64(amount) / 100.0 * 50.0
	out := imaging.Blur(toNRGBA(pb), radius)
	return fromNRGBA(out)
}

// autoTrim scans inward from each edge until a row/column's max per-channel
// deviation from the corner color exceeds the threshold, then crops to the
// bounding box (spec §4.4).
func autoTrim(pb *PixelBuffer, threshold0to100 int) *PixelBuffer {
	if pb.Width == 0 || pb.Height == 0 {
		return pb
	}
	thresh := int(float64(threshold0to100) / 100.0 * 255.0)
	cr, cg, cb, _ := pb.At(0, 0)

	exceeds := func(x, y int) bool {
		r, g, b, _ := pb.At(x, y)
		return maxDelta(r, cr) > thresh || maxDelta(g, cg) > thresh || maxDelta(b, cb) > thresh
	}

	top := 0
	for top < pb.Height {
		rowDiffers := false
		for x := 0; x < pb.Width; x++ {
			if exceeds(x, top) {
				rowDiffers = true
				break
			}
		}
		if rowDiffers {
			break
		}
		top++
	}

	bottom := pb.Height - 1
	for bottom > top {
		rowDiffers := false
		for x := 0; x < pb.Width; x++ {
			if exceeds(x, bottom) {
				rowDiffers = true
				break
			}
		}
		if rowDiffers {
			break
		}
		bottom--
	}

	left := 0
	for left < pb.Width {
		colDiffers := false
		for y := top; y <= bottom; y++ {
			if exceeds(left, y) {
				colDiffers = true
				break
			}
		}
		if colDiffers {
			break
		}
		left++
	}

	right := pb.Width - 1
	for right > left {
		colDiffers := false
		for y := top; y <= bottom; y++ {
			if exceeds(right, y) {
				colDiffers = true
				break
			}
		}
		if colDiffers {
			break
		}
		right--
	}

	if left >= right || top >= bottom {
		return pb
	}

	return cropBuffer(pb, Crop{X: left, Y: top, Width: right - left + 1, Height: bottom - top + 1})
}

func maxDelta(a, b byte) int {
	return absInt(int(a) - int(b))
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func ceilInt(v float64) int {
	i := int(v)
	if float64(i) < v {
		i++
	}
	if i < 1 {
		i = 1
	}
	return i
}
