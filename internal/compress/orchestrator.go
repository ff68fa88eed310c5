package compress

import (
	"context"
	"log/slog"

	"imagecompressor/internal/compress/pool"
)

// Engine owns the shared worker pool and exposes the top-level Compress
// entry point (C9). One Engine is expected per process.
type Engine struct {
	pool *pool.Pool
}

// NewEngine constructs an Engine around a fresh worker pool.
func NewEngine(opts ...pool.Option) *Engine {
	return &Engine{pool: pool.New(opts...)}
}

// Shutdown drains the worker pool.
func (e *Engine) Shutdown() {
	e.pool.Shutdown()
}

// Compress is the primary entry point (spec §6): compress(request) → result.
// It wires C1-C8 per the 12-step sequence in §4.9 and never panics — every
// failure surfaces as a typed *Error.
func (e *Engine) Compress(req Request) (*Result, error) {
	opts := req.Options.WithDefaults()

	// 1. Detect source format.
	sourceFormat := DetectFormat(req.Bytes, req.DeclaredMime, req.Filename)
	if sourceFormat == FormatUnknown {
		return nil, unsupportedFormat("unknown")
	}

	// 2. Decode to Pixel Buffer.
	pb, err := Decode(req.Bytes, sourceFormat)
	if err != nil {
		return nil, err
	}
	originalW, originalH := pb.Width, pb.Height

	// 3. Analyze — cheap, always run.
	analysis := Analyze(pb)

	// 4. Resolve format=auto.
	targetFormat := resolveAutoFormat(opts.Format, analysis)

	// 5. Resolve PNG lossless + JPEG quality floor.
	opts = resolveAutoPolicies(opts, targetFormat, analysis)

	// 6. Probe eligibility.
	if ProbeEligible(sourceFormat, targetFormat, opts) {
		probe := QuickProbe(pb, targetFormat, len(req.Bytes))
		if probe.ShouldSkip {
			slog.Debug("compress: skipped by quick probe",
				"source_format", sourceFormat, "target_format", targetFormat,
				"probe_time_ms", probe.ProbeTimeMs)
			return &Result{
				Blob:           req.Bytes,
				Format:         sourceFormat,
				Analysis:       analysis,
				TargetSizeMet:  true,
				OriginalWidth:  originalW,
				OriginalHeight: originalH,
				Width:          originalW,
				Height:         originalH,
				Warning:        "returned original: already optimized (estimated savings below 3% threshold)",
			}, nil
		}
	}

	// 7. Apply Pixel Transformer pipeline.
	transformed, resizeApplied, err := Transform(pb, opts)
	if err != nil {
		return nil, err
	}

	// 8 + 9. Encode via worker pool, governed by the size-target controller.
	var encoded []byte
	targetSizeMet := true
	var warning string

	resultWidth, resultHeight := transformed.Width, transformed.Height

	if opts.TargetSizeKb > 0 {
		targetBytes := opts.TargetSizeKb * 1024
		v, err := e.pool.Submit(pool.PriorityNormal, func(ctx context.Context) (any, error) {
			candidate, met, err := HitTargetSize(transformed, targetFormat, opts, targetBytes)
			if err != nil {
				return nil, err
			}
			return struct {
				bytes  []byte
				met    bool
				width  int
				height int
			}{candidate.bytes, met, candidate.width, candidate.height}, nil
		})
		if err != nil {
			return nil, asCompressError(err)
		}
		out := v.(struct {
			bytes  []byte
			met    bool
			width  int
			height int
		})
		encoded = out.bytes
		targetSizeMet = out.met
		resultWidth, resultHeight = out.width, out.height
		if !targetSizeMet {
			warning = "target size not met within iteration bounds"
		}
	} else {
		v, err := e.pool.Submit(pool.PriorityNormal, func(ctx context.Context) (any, error) {
			return Encode(transformed, targetFormat, opts)
		})
		if err != nil {
			return nil, asCompressError(err)
		}
		encoded = v.([]byte)
	}

	// 10. Safety check: never return something larger than the original.
	safe, safetyWarning := SafetyCheck(transformed, targetFormat, opts, encoded, req.Bytes)
	if safetyWarning != "" {
		slog.Warn("compress: safety check rejected candidate, returning original",
			"source_format", sourceFormat, "target_format", targetFormat)
		encoded = safe
		warning = safetyWarning
		targetSizeMet = true
		resultFormat := sourceFormat
		return &Result{
			Blob:           encoded,
			Format:         resultFormat,
			Analysis:       analysis,
			ResizeApplied:  resizeApplied,
			TargetSizeMet:  targetSizeMet,
			OriginalWidth:  originalW,
			OriginalHeight: originalH,
			Width:          originalW,
			Height:         originalH,
			Warning:        warning,
		}, nil
	}

	// 11. Metadata handling.
	encoded = ApplyMetadataPolicy(req.Bytes, encoded, sourceFormat, targetFormat, opts.PreserveMetadata)

	// 12. Assemble result.
	return &Result{
		Blob:           encoded,
		Format:         targetFormat,
		Analysis:       analysis,
		ResizeApplied:  resizeApplied,
		TargetSizeMet:  targetSizeMet,
		OriginalWidth:  originalW,
		OriginalHeight: originalH,
		Width:          resultWidth,
		Height:         resultHeight,
		Warning:        warning,
	}, nil
}

// resolveAutoFormat implements §4.5's auto format resolution: any pixel
// with alpha < 255 -> webp; photo -> webp; else -> png.
func resolveAutoFormat(requested Format, analysis Analysis) Format {
	if requested != FormatAuto {
		return requested
	}
	if analysis.HasTransparency {
		return FormatWebP
	}
	if analysis.Type == TypePhoto {
		return FormatWebP
	}
	return FormatPNG
}

// resolveAutoPolicies implements §4.5's auto-lossless (PNG) and
// auto-quality-floor (JPEG) resolution.
func resolveAutoPolicies(opts Options, format Format, analysis Analysis) Options {
	if format == FormatPNG && opts.Lossless == nil {
		lossless := analysis.Type == TypeGraphic && analysis.UniqueColors < 256
		opts.Lossless = &lossless
	}
	if format == FormatJPEG && analysis.Type == TypePhoto && opts.Quality < 70 {
		opts.Quality = 70
	}
	return opts
}

func asCompressError(err error) error {
	if _, ok := err.(*Error); ok {
		return err
	}
	if err == pool.ErrQueueFull {
		return newErr(KindQueueFull, "", err)
	}
	if err == pool.ErrWorkerCrashed {
		return newErr(KindWorkerCrashed, "", err)
	}
	return internalError(err)
}
