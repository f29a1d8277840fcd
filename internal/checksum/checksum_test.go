package checksum

import (
	"hash/crc32"
	"testing"
)

func TestCRC32(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
		want    uint32
	}{
		{
			name:    "empty payload",
			payload: nil,
			want:    0,
		},
		{
			name:    "known vector",
			payload: []byte("123456789"),
			want:    0xCBF43926, // standard CRC-32/IEEE check value
		},
		{
			name:    "single byte",
			payload: []byte{0x00},
			want:    crc32.ChecksumIEEE([]byte{0x00}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CRC32(tt.payload); got != tt.want {
				t.Errorf("CRC32() = 0x%08x, want 0x%08x", got, tt.want)
			}
		})
	}
}

func TestCRC32C(t *testing.T) {
	// Standard CRC-32C check value for "123456789".
	if got := CRC32C([]byte("123456789")); got != 0xE3069283 {
		t.Errorf("CRC32C() = 0x%08x, want 0xE3069283", got)
	}
}

func TestNone(t *testing.T) {
	if got := None([]byte("anything at all")); got != 0 {
		t.Errorf("None() = %d, want 0", got)
	}
	if got := None(nil); got != 0 {
		t.Errorf("None(nil) = %d, want 0", got)
	}
}

func TestByName(t *testing.T) {
	tests := []struct {
		name     string
		arg      string
		wantErr  bool
		checkVec uint32 // expected value over "123456789", ignored on error
	}{
		{name: "crc32", arg: NameCRC32, checkVec: 0xCBF43926},
		{name: "crc32c", arg: NameCRC32C, checkVec: 0xE3069283},
		{name: "none", arg: NameNone, checkVec: 0},
		{name: "unknown", arg: "md5", wantErr: true},
		{name: "empty", arg: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fn, err := ByName(tt.arg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ByName(%q) error = %v, wantErr %v", tt.arg, err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if got := fn([]byte("123456789")); got != tt.checkVec {
				t.Errorf("fn() = 0x%08x, want 0x%08x", got, tt.checkVec)
			}
		})
	}
}

func TestIsPlaceholder(t *testing.T) {
	if !IsPlaceholder(NameNone) {
		t.Error("none should be the placeholder")
	}
	if IsPlaceholder(NameCRC32) {
		t.Error("crc32 is not the placeholder")
	}
}
