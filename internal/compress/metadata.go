package compress

import "log/slog"

// ApplyMetadataPolicy implements C10: when preserveMetadata is set and
// source/target are EXIF-compatible (JPEG -> JPEG in practice), splice the
// source's EXIF/ICC segments into the encoded output; otherwise the output
// carries none, since every encoder starts from the bare pixel buffer (and
// codec.go sets StripMetadata opposite of preserveMetadata for JPEG, WebP
// and AVIF). Splice failures are non-fatal: logged and
// the encoded bytes are returned unchanged, per spec §4.10/§7.
func ApplyMetadataPolicy(sourceBytes, encodedBytes []byte, sourceFormat, targetFormat Format, preserveMetadata bool) []byte {
	if !preserveMetadata {
		return encodedBytes
	}
	if sourceFormat != FormatJPEG || targetFormat != FormatJPEG {
		return encodedBytes
	}

	spliced, err := spliceJPEGMetadata(sourceBytes, encodedBytes)
	if err != nil {
		slog.Warn("metadata splice failed, returning encoded image unchanged",
			slog.String("error", err.Error()))
		return encodedBytes
	}
	return spliced
}

// spliceJPEGMetadata copies APP1 (EXIF) and APP2 (ICC) segments from src
// into dst, inserting them immediately after the SOI marker.
func spliceJPEGMetadata(src, dst []byte) ([]byte, error) {
	segments := jpegAPPnSegments(src)
	if len(segments) == 0 {
		return dst, nil
	}
	if len(dst) < 2 || dst[0] != 0xFF || dst[1] != 0xD8 {
		return nil, errNotJPEG
	}

	out := make([]byte, 0, len(dst)+segmentsLen(segments))
	out = append(out, dst[0], dst[1]) // SOI
	for _, seg := range segments {
		out = append(out, seg...)
	}
	out = append(out, dst[2:]...)
	return out, nil
}

func segmentsLen(segments [][]byte) int {
	n := 0
	for _, s := range segments {
		n += len(s)
	}
	return n
}

// jpegAPPnSegments walks JPEG markers and returns the raw bytes (marker +
// length + payload) of APP1 and APP2 segments, which carry EXIF and ICC
// profile data respectively.
func jpegAPPnSegments(data []byte) [][]byte {
	var segments [][]byte
	if len(data) < 2 || data[0] != 0xFF || data[1] != 0xD8 {
		return nil
	}

	i := 2
	for i+4 <= len(data) {
		if data[i] != 0xFF {
			break
		}
		marker := data[i+1]
		if marker == 0xD8 || marker == 0xD9 { // SOI/EOI, no length field
			i += 2
			continue
		}
		if marker == 0x01 || (marker >= 0xD0 && marker <= 0xD7) {
			i += 2
			continue
		}
		if i+4 > len(data) {
			break
		}
		length := int(data[i+2])<<8 | int(data[i+3])
		segEnd := i + 2 + length
		if segEnd > len(data) || length < 2 {
			break
		}
		if marker == 0xE1 || marker == 0xE2 { // APP1 (EXIF) / APP2 (ICC)
			segments = append(segments, append([]byte{}, data[i:segEnd]...))
		}
		if marker == 0xDA { // SOS: compressed data follows, stop scanning headers
			break
		}
		i = segEnd
	}
	return segments
}

var errNotJPEG = jpegFormatError{}

type jpegFormatError struct{}

func (jpegFormatError) Error() string { return "destination bytes are not a JPEG" }
