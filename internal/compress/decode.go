package compress

import (
	"bytes"
	"image"
	"image/draw"
	"image/gif"
	"image/jpeg"
	"image/png"

	"github.com/davidbyttow/govips/v2/vips"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Decode produces a canonical Pixel Buffer from source bytes of the given
// format. It is the only entry point that produces a PixelBuffer; every
// later stage shares this contract. HEIC/AVIF/JXL route through the govips
// collaborator first (transcoded to lossless PNG, then re-decoded), exactly
// as spec.md §4.2 describes for formats without a native Go decoder.
func Decode(data []byte, format Format) (*PixelBuffer, error) {
	switch format {
	case FormatHEIC, FormatAVIF, FormatJXL:
		return decodeViaVips(data, format)
	default:
		pb, err := decodeStdlib(data, format)
		if err != nil {
			if pb2, err2 := decodeViaVips(data, format); err2 == nil {
				return pb2, nil
			}
			return nil, decodeError(string(format), err)
		}
		return pb, nil
	}
}

func decodeStdlib(data []byte, format Format) (*PixelBuffer, error) {
	var img image.Image
	var err error

	switch format {
	case FormatPNG:
		img, err = png.Decode(bytes.NewReader(data))
	case FormatJPEG:
		img, err = jpeg.Decode(bytes.NewReader(data))
	case FormatGIF:
		img, err = gif.Decode(bytes.NewReader(data)) // first frame only
	default:
		img, _, err = image.Decode(bytes.NewReader(data)) // webp/bmp/tiff via blank-imported decoders
	}
	if err != nil {
		return nil, err
	}
	return toPixelBuffer(img), nil
}

// decodeViaVips transcodes the source through libvips to a lossless PNG and
// re-enters the stdlib decoder, matching the "transcode to PNG then re-decode"
// collaborator contract in spec.md §4.2.
func decodeViaVips(data []byte, format Format) (*PixelBuffer, error) {
	img, err := vips.NewImageFromBuffer(data)
	if err != nil {
		return nil, decodeError(string(format), err)
	}
	defer img.Close()

	if err := img.AutoRotate(); err != nil {
		return nil, decodeError(string(format), err)
	}

	ep := vips.NewPngExportParams()
	ep.Compression = 1 // fast; this is a transient intermediate, not the final output
	ep.StripMetadata = false

	pngBytes, _, err := img.ExportPng(ep)
	if err != nil {
		return nil, decodeError(string(format), err)
	}

	pb, err := decodeStdlib(pngBytes, FormatPNG)
	if err != nil {
		return nil, decodeError(string(format), err)
	}
	return pb, nil
}

// toPixelBuffer flattens any image.Image into the canonical RGBA8 shape.
func toPixelBuffer(img image.Image) *PixelBuffer {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	if rgba, ok := img.(*image.NRGBA); ok && rgba.Stride == w*4 && b.Min.X == 0 && b.Min.Y == 0 {
		return &PixelBuffer{Width: w, Height: h, Pix: rgba.Pix}
	}

	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return &PixelBuffer{Width: w, Height: h, Pix: dst.Pix}
}
