package compress

import "testing"

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		mime string
		file string
		want Format
	}{
		{"png magic", []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}, "", "", FormatPNG},
		{"jpeg magic", []byte{0xFF, 0xD8, 0xFF, 0xE0}, "", "", FormatJPEG},
		{"gif magic", []byte("GIF89a"), "", "", FormatGIF},
		{"bmp magic", []byte("BM\x00\x00\x00\x00"), "", "", FormatBMP},
		{"mime fallback", []byte{}, "image/webp", "", FormatWebP},
		{"extension fallback", []byte{}, "", "photo.jxl", FormatJXL},
		{"unknown", []byte{0x01, 0x02}, "", "", FormatUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectFormat(tt.data, tt.mime, tt.file)
			if got != tt.want {
				t.Errorf("DetectFormat() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDetectFormatHeicFtyp(t *testing.T) {
	// ftyp box: size(4) "ftyp" "heic" ...
	data := append([]byte{0, 0, 0, 24}, []byte("ftypheic")...)
	data = append(data, make([]byte, 16)...)
	if got := DetectFormat(data, "", ""); got != FormatHEIC {
		t.Errorf("DetectFormat(heic ftyp) = %q, want %q", got, FormatHEIC)
	}
}

func TestDetectFormatAvifFtyp(t *testing.T) {
	data := append([]byte{0, 0, 0, 24}, []byte("ftypavif")...)
	data = append(data, make([]byte, 16)...)
	if got := DetectFormat(data, "", ""); got != FormatAVIF {
		t.Errorf("DetectFormat(avif ftyp) = %q, want %q", got, FormatAVIF)
	}
}
