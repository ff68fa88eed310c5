// Package imaging holds the pre-decode upload guard the compression job
// service runs before handing bytes to the compress pipeline: size and
// dimension ceilings, a decompression-bomb check, and the content hash
// stored on the job. This mirrors the teacher's own upload-time validation step, now
// generalized from per-category limits to the single flat limit a
// compression job needs.
package imaging

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"imagecompressor/internal/compress"
)

// ValidationResult is the outcome of a pre-decode validation pass.
type ValidationResult struct {
	Format       compress.Format
	Width        int
	Height       int
	ContentHash  string
	OriginalSize int64
}

// UploadLimits bounds what a compression job will accept before it ever
// reaches the decoder, guarding against oversized or decompression-bomb
// payloads.
type UploadLimits struct {
	MaxBytes     int64
	MaxDimension int
	MaxPixels    int64
}

// DefaultUploadLimits mirrors the teacher's former per-category ceiling,
// now applied uniformly: 15MB, 6000px per side, 64 megapixels.
var DefaultUploadLimits = UploadLimits{
	MaxBytes:     15 * 1024 * 1024,
	MaxDimension: 6000,
	MaxPixels:    64 * 1024 * 1024,
}

// ValidateUpload checks size, format, and dimension ceilings and returns the
// content hash stored on the job. It intentionally stops short of a full
// pixel decode — that's the compress pipeline's job once the guard clears.
func ValidateUpload(data []byte, limits UploadLimits) (*ValidationResult, error) {
	if int64(len(data)) > limits.MaxBytes {
		return nil, fmt.Errorf("upload: %d bytes exceeds the %d byte limit", len(data), limits.MaxBytes)
	}

	format := compress.DetectFormat(data, "", "")
	if format == compress.FormatUnknown {
		return nil, fmt.Errorf("upload: unrecognized image format")
	}

	result := &ValidationResult{
		Format:       format,
		ContentHash:  ComputeContentHash(data),
		OriginalSize: int64(len(data)),
	}

	// HEIC/AVIF/JXL aren't decodable by image.DecodeConfig, so their
	// dimension and pixel ceilings are not checked; the compress pipeline's
	// govips decode path applies no such limit either.
	if format == compress.FormatHEIC || format == compress.FormatAVIF || format == compress.FormatJXL {
		return result, nil
	}

	config, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("upload: failed to read image header: %w", err)
	}
	result.Width, result.Height = config.Width, config.Height

	if config.Width > limits.MaxDimension || config.Height > limits.MaxDimension {
		return nil, fmt.Errorf("upload: dimensions %dx%d exceed the %dpx limit",
			config.Width, config.Height, limits.MaxDimension)
	}
	if int64(config.Width)*int64(config.Height) > limits.MaxPixels {
		return nil, fmt.Errorf("upload: %dx%d exceeds the %d pixel decompression-bomb ceiling",
			config.Width, config.Height, limits.MaxPixels)
	}

	return result, nil
}

// ComputeContentHash computes the SHA-256 hash of data, stored on the job
// record and used as the storage key prefix for compression results.
func ComputeContentHash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
