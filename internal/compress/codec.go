package compress

import (
	"bytes"
	"image/png"

	"github.com/davidbyttow/govips/v2/vips"
)

// Encode routes a PixelBuffer to the per-format encoder selected by format,
// enforcing each codec's option set (spec §4.5). PNG is encoded in pure Go
// (encodePNG). For every other format the PixelBuffer is first flattened to
// a lossless PNG intermediate (cheap, always available, exact) and handed to
// libvips, which does the real per-format compression work — the same
// two-step load-then-export shape every govips caller in the reference pack
// uses.
func Encode(pb *PixelBuffer, format Format, opts Options) ([]byte, error) {
	switch format {
	case FormatPNG:
		return encodePNG(pb, opts)
	case FormatJPEG:
		return encodeViaVips(pb, opts, func(img *vips.ImageRef) ([]byte, error) {
			ep := vips.NewJpegExportParams()
			ep.Quality = opts.Quality
			ep.StripMetadata = !opts.PreserveMetadata
			ep.Interlace = opts.Progressive == nil || *opts.Progressive
			ep.OptimizeCoding = true
			ep.TrellisQuant = !opts.SpeedMode
			if opts.ChromaSubsampling != nil && !*opts.ChromaSubsampling {
				ep.SubsampleMode = vips.VipsForeignSubsampleOff // 4:4:4, sharper
			} else {
				ep.SubsampleMode = vips.VipsForeignSubsampleOn // 4:2:0, smaller
			}
			b, _, err := img.ExportJpeg(ep)
			return b, err
		})
	case FormatWebP:
		return encodeViaVips(pb, opts, func(img *vips.ImageRef) ([]byte, error) {
			ep := vips.NewWebpExportParams()
			ep.Quality = opts.Quality
			ep.StripMetadata = !opts.PreserveMetadata
			ep.ReductionEffort = webpReductionEffort(opts)
			switch opts.WebpLosslessMode {
			case WebpLossless:
				ep.Lossless = true
			case WebpNearLossless:
				ep.NearLossless = true
				ep.Quality = clampInt(opts.NearLosslessLevel, 0, 100)
			default:
				ep.Lossless = false
			}
			b, _, err := img.ExportWebp(ep)
			return b, err
		})
	case FormatAVIF:
		return encodeViaVips(pb, opts, func(img *vips.ImageRef) ([]byte, error) {
			ep := vips.NewAvifExportParams()
			ep.Quality = opts.Quality
			ep.StripMetadata = !opts.PreserveMetadata
			ep.Speed = clampInt(opts.AvifSpeed, 0, 10)
			if ep.Speed == 0 && opts.SpeedMode {
				ep.Speed = 8
			}
			b, _, err := img.ExportAvif(ep)
			return b, err
		})
	case FormatJXL:
		return encodeViaVips(pb, opts, func(img *vips.ImageRef) ([]byte, error) {
			ep := vips.NewJxlExportParams()
			ep.Quality = opts.Quality
			ep.Effort = clampInt(opts.JxlEffort, 1, 9)
			if opts.Lossless != nil {
				ep.Lossless = *opts.Lossless
			}
			b, _, err := img.ExportJxl(ep)
			return b, err
		})
	case FormatGIF:
		return encodeViaVips(pb, opts, func(img *vips.ImageRef) ([]byte, error) {
			ep := vips.NewGifExportParams()
			ep.Quality = opts.Quality
			b, _, err := img.ExportGIF(ep)
			return b, err
		})
	default:
		return nil, unsupportedFormat(string(format))
	}
}

// webpReductionEffort maps speedMode onto govips' 0-6 method knob (spec §4.5:
// "speedMode forces 0", otherwise balanced-to-best per quality).
func webpReductionEffort(opts Options) int {
	if opts.SpeedMode {
		return 0
	}
	if opts.Quality >= 90 {
		return 6
	}
	return 4
}

func encodeViaVips(pb *PixelBuffer, opts Options, export func(*vips.ImageRef) ([]byte, error)) ([]byte, error) {
	intermediate, err := pixelBufferToPNG(pb)
	if err != nil {
		return nil, encodeError("intermediate", err)
	}

	img, err := vips.NewImageFromBuffer(intermediate)
	if err != nil {
		return nil, encodeError("intermediate", err)
	}
	defer img.Close()

	out, err := export(img)
	if err != nil {
		return nil, encodeError("", err)
	}
	return out, nil
}

func pixelBufferToPNG(pb *PixelBuffer) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, toNRGBA(pb)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// encodePNG implements the lossy/lossless split in spec §4.5: lossy mode
// quantizes to a ≤256-color palette with dithering then deflates; lossless
// mode deflates the full RGBA buffer. Palette quantization stays pure Go
// (codec_png_quantize.go) since it is a pixel-domain operation, independent
// of the libvips backend used for every other format.
func encodePNG(pb *PixelBuffer, opts Options) ([]byte, error) {
	lossless := opts.Lossless != nil && *opts.Lossless

	level := png.BestCompression
	if opts.SpeedMode {
		level = png.BestSpeed
	}

	var buf bytes.Buffer
	enc := &png.Encoder{CompressionLevel: level}

	if lossless {
		if err := enc.Encode(&buf, toNRGBA(pb)); err != nil {
			return nil, encodeError("png", err)
		}
		return buf.Bytes(), nil
	}

	maxColors := 256
	paletted := quantizeToPalette(pb, maxColors, opts.Dithering)
	if err := enc.Encode(&buf, paletted); err != nil {
		return nil, encodeError("png", err)
	}
	return buf.Bytes(), nil
}
