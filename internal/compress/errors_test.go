package compress

import (
	"errors"
	"testing"
)

func TestErrorMessageFormatting(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"kind only", newErr(KindInternalError, "", nil), "InternalError"},
		{"kind and format", newErr(KindUnsupportedFormat, "tiff", nil), "UnsupportedFormat (tiff)"},
		{"kind and cause", newErr(KindInternalError, "", errors.New("boom")), "InternalError: boom"},
		{"kind format and cause", newErr(KindDecodeError, "jpeg", errors.New("truncated")), "DecodeError (jpeg): truncated"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestErrorUnwrapExposesCause(t *testing.T) {
	cause := errors.New("underlying")
	err := encodeError("webp", cause)
	if !errors.Is(err, cause) {
		t.Error("errors.Is() did not find the wrapped cause")
	}
}

func TestConstructorsSetExpectedKind(t *testing.T) {
	if unsupportedFormat("x").Kind != KindUnsupportedFormat {
		t.Error("unsupportedFormat() did not set KindUnsupportedFormat")
	}
	if decodeError("x", nil).Kind != KindDecodeError {
		t.Error("decodeError() did not set KindDecodeError")
	}
	if encodeError("x", nil).Kind != KindEncodeError {
		t.Error("encodeError() did not set KindEncodeError")
	}
	if capabilityMissing("x").Kind != KindCapabilityMissing {
		t.Error("capabilityMissing() did not set KindCapabilityMissing")
	}
	if internalError(nil).Kind != KindInternalError {
		t.Error("internalError() did not set KindInternalError")
	}
}
