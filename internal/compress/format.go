package compress

import (
	"bytes"
	"path/filepath"
	"strings"
)

var (
	pngMagic  = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
	jpegMagic = []byte{0xFF, 0xD8, 0xFF}
	gifMagic  = []byte{0x47, 0x49, 0x46, 0x38}
	bmpMagic  = []byte{0x42, 0x4D}
	jxlMagic  = []byte{0xFF, 0x0A}                                           // bare JXL codestream
	jxlBox    = []byte{0x00, 0x00, 0x00, 0x0C, 0x4A, 0x58, 0x4C, 0x20, 0x0D, 0x0A, 0x87, 0x0A} // ISOBMFF JXL box
	tiffLE    = []byte{0x49, 0x49, 0x2A, 0x00}
	tiffBE    = []byte{0x4D, 0x4D, 0x00, 0x2A}
)

// DetectFormat identifies the canonical source format from magic bytes,
// falling back to declared MIME and filename extension only as tie-breakers
// when the bytes are ambiguous. Never fabricates a format: returns
// FormatUnknown when indeterminate, and the orchestrator is responsible for
// failing with UnsupportedFormat.
func DetectFormat(data []byte, declaredMime, filename string) Format {
	if f := detectFromBytes(data); f != FormatUnknown {
		return f
	}
	if f := detectFromMime(declaredMime); f != FormatUnknown {
		return f
	}
	return detectFromExtension(filename)
}

func detectFromBytes(data []byte) Format {
	if len(data) < 4 {
		return FormatUnknown
	}

	if bytes.HasPrefix(data, jpegMagic) {
		return FormatJPEG
	}
	if bytes.HasPrefix(data, pngMagic) {
		return FormatPNG
	}
	if bytes.HasPrefix(data, gifMagic) {
		return FormatGIF
	}
	if bytes.HasPrefix(data, bmpMagic) {
		return FormatBMP
	}
	if bytes.HasPrefix(data, tiffLE) || bytes.HasPrefix(data, tiffBE) {
		return FormatTIFF
	}
	if bytes.HasPrefix(data, jxlMagic) || bytes.HasPrefix(data, jxlBox) {
		return FormatJXL
	}

	if len(data) >= 12 && bytes.Equal(data[0:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WEBP")) {
		return FormatWebP
	}

	// ISO-BMFF ftyp box: brand sits at byte offset 8-12 (the box header is
	// a 4-byte size then "ftyp" at offset 4-8).
	if len(data) >= 12 && bytes.Equal(data[4:8], []byte("ftyp")) {
		brand := string(data[8:12])
		switch brand {
		case "heic", "heix", "hevc", "hevx", "mif1", "msf1":
			return FormatHEIC
		case "avif", "avis":
			return FormatAVIF
		}
	}

	return FormatUnknown
}

func detectFromMime(mime string) Format {
	switch strings.ToLower(strings.TrimSpace(mime)) {
	case "image/png":
		return FormatPNG
	case "image/jpeg", "image/jpg":
		return FormatJPEG
	case "image/webp":
		return FormatWebP
	case "image/avif":
		return FormatAVIF
	case "image/heic", "image/heif":
		return FormatHEIC
	case "image/gif":
		return FormatGIF
	case "image/tiff":
		return FormatTIFF
	case "image/bmp", "image/x-ms-bmp":
		return FormatBMP
	case "image/jxl":
		return FormatJXL
	default:
		return FormatUnknown
	}
}

func detectFromExtension(filename string) Format {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".png":
		return FormatPNG
	case ".jpg", ".jpeg":
		return FormatJPEG
	case ".webp":
		return FormatWebP
	case ".avif":
		return FormatAVIF
	case ".heic", ".heif":
		return FormatHEIC
	case ".gif":
		return FormatGIF
	case ".tif", ".tiff":
		return FormatTIFF
	case ".bmp":
		return FormatBMP
	case ".jxl":
		return FormatJXL
	default:
		return FormatUnknown
	}
}
