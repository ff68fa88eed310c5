package compress

import "testing"

func buildJPEG(segments ...[]byte) []byte {
	data := []byte{0xFF, 0xD8} // SOI
	for _, s := range segments {
		data = append(data, s...)
	}
	data = append(data, 0xFF, 0xDA, 0x00, 0x02) // SOS (no scan data needed for this test)
	data = append(data, 0xFF, 0xD9)             // EOI
	return data
}

func app1Segment(payload []byte) []byte {
	length := len(payload) + 2
	seg := []byte{0xFF, 0xE1, byte(length >> 8), byte(length)}
	return append(seg, payload...)
}

func TestJpegAPPnSegmentsExtractsExif(t *testing.T) {
	exif := app1Segment([]byte("Exif\x00\x00fake-exif-payload"))
	data := buildJPEG(exif)

	segs := jpegAPPnSegments(data)
	if len(segs) != 1 {
		t.Fatalf("jpegAPPnSegments() returned %d segments, want 1", len(segs))
	}
	if segs[0][1] != 0xE1 {
		t.Errorf("segment marker = 0x%X, want 0xE1", segs[0][1])
	}
}

func TestJpegAPPnSegmentsNoSegments(t *testing.T) {
	data := buildJPEG()
	segs := jpegAPPnSegments(data)
	if segs != nil {
		t.Errorf("jpegAPPnSegments() = %v, want nil for a JPEG with no APPn markers", segs)
	}
}

func TestSpliceJPEGMetadataInsertsAfterSOI(t *testing.T) {
	exif := app1Segment([]byte("Exif\x00\x00source"))
	src := buildJPEG(exif)
	dst := buildJPEG() // encoder output, stripped of metadata

	spliced, err := spliceJPEGMetadata(src, dst)
	if err != nil {
		t.Fatalf("spliceJPEGMetadata() error = %v", err)
	}
	if spliced[0] != 0xFF || spliced[1] != 0xD8 {
		t.Fatalf("spliced output does not start with SOI")
	}
	if spliced[2] != 0xFF || spliced[3] != 0xE1 {
		t.Errorf("spliced output byte[2:4] = %X %X, want APP1 marker immediately after SOI", spliced[2], spliced[3])
	}
	if len(spliced) != len(dst)+len(exif) {
		t.Errorf("spliced length = %d, want %d", len(spliced), len(dst)+len(exif))
	}
}

func TestApplyMetadataPolicyStripsWhenDisabled(t *testing.T) {
	exif := app1Segment([]byte("Exif\x00\x00source"))
	src := buildJPEG(exif)
	dst := buildJPEG()

	out := ApplyMetadataPolicy(src, dst, FormatJPEG, FormatJPEG, false)
	if len(out) != len(dst) {
		t.Errorf("ApplyMetadataPolicy(preserve=false) changed length: got %d, want %d", len(out), len(dst))
	}
}

func TestApplyMetadataPolicySkipsNonJPEGTarget(t *testing.T) {
	src := buildJPEG(app1Segment([]byte("Exif\x00\x00source")))
	dst := []byte{0x89, 'P', 'N', 'G'}

	out := ApplyMetadataPolicy(src, dst, FormatJPEG, FormatPNG, true)
	if len(out) != len(dst) {
		t.Errorf("ApplyMetadataPolicy(target=png) should pass dst through unchanged")
	}
}
