package benchmark

import (
	"errors"
	"testing"
)

func TestVectorCodecRoundTrip(t *testing.T) {
	vec := []float32{0.25, -1.5, 3.75, 0}

	blob, err := EncodeVector(vec)
	if err != nil {
		t.Fatalf("EncodeVector() error: %v", err)
	}

	got, err := DecodeVector(blob)
	if err != nil {
		t.Fatalf("DecodeVector() error: %v", err)
	}
	if len(got) != len(vec) {
		t.Fatalf("decoded %d values, want %d", len(got), len(vec))
	}
	for i := range vec {
		if got[i] != vec[i] {
			t.Errorf("decoded[%d] = %v, want %v", i, got[i], vec[i])
		}
	}
}

func TestEncodeVectorEmpty(t *testing.T) {
	if _, err := EncodeVector(nil); !errors.Is(err, ErrEmptyVectorBlob) {
		t.Errorf("EncodeVector(nil) error = %v, want ErrEmptyVectorBlob", err)
	}
}

func TestDecodeVectorErrors(t *testing.T) {
	t.Run("empty blob", func(t *testing.T) {
		if _, err := DecodeVector(nil); !errors.Is(err, ErrEmptyVectorBlob) {
			t.Errorf("error = %v, want ErrEmptyVectorBlob", err)
		}
	})

	t.Run("garbage blob", func(t *testing.T) {
		if _, err := DecodeVector([]byte{0xff, 0x00, 0x01}); !errors.Is(err, ErrInvalidVector) {
			t.Errorf("error = %v, want ErrInvalidVector", err)
		}
	})
}

func TestValidPlatform(t *testing.T) {
	tests := []struct {
		platform string
		want     bool
	}{
		{PlatformGitHub, true},
		{PlatformLinkedIn, true},
		{"", false},
		{"twitter", false},
		{"GitHub", false},
	}
	for _, tt := range tests {
		if got := ValidPlatform(tt.platform); got != tt.want {
			t.Errorf("ValidPlatform(%q) = %v, want %v", tt.platform, got, tt.want)
		}
	}
}
