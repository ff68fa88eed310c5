// Package compress implements the client-side image compression pipeline:
// format detection, decode, content analysis, pixel transforms, multi-codec
// encode, quick-probe estimation, and size-targeted search, composed behind a
// single Compress entry point.
package compress

// Format is a canonical source or target image container tag.
type Format string

const (
	FormatAuto    Format = "auto"
	FormatPNG     Format = "png"
	FormatJPEG    Format = "jpeg"
	FormatWebP    Format = "webp"
	FormatAVIF    Format = "avif"
	FormatJXL     Format = "jxl"
	FormatGIF     Format = "gif"
	FormatTIFF    Format = "tiff"
	FormatBMP     Format = "bmp"
	FormatHEIC    Format = "heic"
	FormatUnknown Format = "unknown"
)

// FitMode is the policy by which a source image is mapped into a target box.
type FitMode string

const (
	FitContain FitMode = "contain"
	FitCover   FitMode = "cover"
	FitFill    FitMode = "fill"
	FitInside  FitMode = "inside"
	FitOutside FitMode = "outside"
)

// ResizeFilter selects the resampling kernel used during resize.
type ResizeFilter string

const (
	FilterLanczos3 ResizeFilter = "Lanczos3"
	FilterMitchell ResizeFilter = "Mitchell"
	FilterBilinear ResizeFilter = "Bilinear"
	FilterNearest  ResizeFilter = "Nearest"
)

// WebpPreset names a WebP image hint (Options.WebpPreset). Encode does not
// pass it to the WebP encoder.
type WebpPreset string

const (
	WebpPresetPhoto   WebpPreset = "photo"
	WebpPresetPicture WebpPreset = "picture"
	WebpPresetGraph   WebpPreset = "graph"
)

// WebpLosslessMode is authoritative for WebP encode lossless behavior,
// taking precedence over the generic Lossless flag (see DESIGN.md Open
// Question 2).
type WebpLosslessMode string

const (
	WebpLossy        WebpLosslessMode = "lossy"
	WebpNearLossless WebpLosslessMode = "near-lossless"
	WebpLossless     WebpLosslessMode = "lossless"
)

// WatermarkPosition anchors watermark text within the output image.
type WatermarkPosition string

const (
	WatermarkTopLeft     WatermarkPosition = "top-left"
	WatermarkTopRight    WatermarkPosition = "top-right"
	WatermarkBottomLeft  WatermarkPosition = "bottom-left"
	WatermarkBottomRight WatermarkPosition = "bottom-right"
	WatermarkCenter      WatermarkPosition = "center"
)

// Crop is a rectangle in source pixel coordinates.
type Crop struct {
	X, Y, Width, Height int
}

// Watermark describes text to be rasterized onto the output image.
type Watermark struct {
	Text     string
	Position WatermarkPosition
	Opacity  int // 0-100
	FontSize int
	Color    string // e.g. "#ffffff"
}

// Options is the Compression Options record (spec §3). Every field is
// optional unless noted; zero values are resolved by the orchestrator.
type Options struct {
	Format Format

	Quality int // 1-100, default 85

	TargetWidth, TargetHeight int
	FitMode                   FitMode
	ResizeFilter              ResizeFilter

	TargetSizeKb int

	Lossless  *bool // nil => auto-derive (PNG only)
	Dithering float64

	ChromaSubsampling *bool // JPEG only; nil => default true (4:2:0)
	PreserveMetadata  bool
	Progressive       *bool
	SpeedMode         bool

	WebpPreset        WebpPreset
	WebpLosslessMode  WebpLosslessMode
	NearLosslessLevel int

	AvifSpeed    int // 0-10
	AvifBitDepth int // 8 or 10

	JxlEffort     int // 1-9
	JxlProgressive bool

	Rotate int // 0, 90, 180, 270
	FlipH  bool
	FlipV  bool
	Crop   *Crop

	Sharpen int // 0-100
	Blur    int // 0-100

	AutoTrim          bool
	AutoTrimThreshold int // 0-100

	Watermark *Watermark
}

// WithDefaults returns a copy of o with unset fields resolved to the spec's
// stated defaults (quality 85, contain fit, Lanczos3 filter).
func (o Options) WithDefaults() Options {
	if o.Quality == 0 {
		o.Quality = 85
	}
	if o.FitMode == "" {
		o.FitMode = FitContain
	}
	if o.ResizeFilter == "" {
		o.ResizeFilter = FilterLanczos3
	}
	if o.Format == "" {
		o.Format = FormatAuto
	}
	if o.WebpLosslessMode == "" {
		o.WebpLosslessMode = WebpLossy
		if o.Lossless != nil && *o.Lossless {
			o.WebpLosslessMode = WebpLossless
		}
	}
	if o.AvifSpeed == 0 {
		o.AvifSpeed = 6
	}
	if o.AvifBitDepth == 0 {
		o.AvifBitDepth = 8
	}
	if o.JxlEffort == 0 {
		o.JxlEffort = 7
	}
	return o
}

// PixelBuffer is the canonical, owned 8-bit RGBA image shape. Row-major,
// stride = Width*4. Created by the Decoder and carried by exclusive
// ownership through every pipeline stage until the encoder consumes it.
type PixelBuffer struct {
	Width, Height int
	Pix           []byte // len == Width*Height*4
}

// Stride is the byte length of one image row.
func (p *PixelBuffer) Stride() int {
	return p.Width * 4
}

// At returns the RGBA bytes at (x, y).
func (p *PixelBuffer) At(x, y int) (r, g, b, a byte) {
	i := y*p.Stride() + x*4
	return p.Pix[i], p.Pix[i+1], p.Pix[i+2], p.Pix[i+3]
}

// Set writes the RGBA bytes at (x, y).
func (p *PixelBuffer) Set(x, y int, r, g, b, a byte) {
	i := y*p.Stride() + x*4
	p.Pix[i] = r
	p.Pix[i+1] = g
	p.Pix[i+2] = b
	p.Pix[i+3] = a
}

// Clone returns a deep copy of the buffer.
func (p *PixelBuffer) Clone() *PixelBuffer {
	out := &PixelBuffer{Width: p.Width, Height: p.Height, Pix: make([]byte, len(p.Pix))}
	copy(out.Pix, p.Pix)
	return out
}

// ImageType classifies an image's visual content, produced by the analyzer.
type ImageType string

const (
	TypePhoto   ImageType = "photo"
	TypeGraphic ImageType = "graphic"
	TypeMixed   ImageType = "mixed"
)

// Analysis is the immutable record produced by the Content Analyzer (C3).
type Analysis struct {
	Type            ImageType
	UniqueColors    int
	HasGradients    bool
	HasSolidRegions bool
	HasTransparency bool
}

// ProbeResult is C6's output.
type ProbeResult struct {
	ShouldSkip       bool
	EstimatedSavings float64
	ProbeTimeMs      int64
	Analysis         *Analysis
}

// Result is the Compression Result returned to the caller (spec §3).
type Result struct {
	Blob                          []byte
	Format                        Format
	Analysis                      Analysis
	ResizeApplied                 bool
	TargetSizeMet                 bool
	OriginalWidth, OriginalHeight int
	Width, Height                 int
	Warning                       string
}

// Request is the primary entry point's input (spec §6): compress(request).
type Request struct {
	ID           string
	Bytes        []byte
	DeclaredMime string
	Filename     string
	Options      Options
}

// Capabilities is the process-wide, memoized capability record (C11).
type Capabilities struct {
	AvifEncode bool
	AvifDecode bool
	JxlEncode  bool
	SIMD       bool
}
