package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/muurk/msgwire/internal/checksum"
	"github.com/muurk/msgwire/internal/session"
)

func TestDefault(t *testing.T) {
	p := Default()
	if p.MaxSegmentSize != session.DefaultMaxSegment {
		t.Errorf("MaxSegmentSize = %d, want %d", p.MaxSegmentSize, session.DefaultMaxSegment)
	}
	if p.Checksum != checksum.NameCRC32 {
		t.Errorf("Checksum = %q, want %q", p.Checksum, checksum.NameCRC32)
	}
	if err := p.Validate(); err != nil {
		t.Errorf("default profile should validate, got %v", err)
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr bool
		verify  func(t *testing.T, p *Profile)
	}{
		{
			name: "full profile",
			yaml: `max_segment_size: 4096
max_retries: 5
checksum: crc32c
listen_addr: "0.0.0.0:7000"
`,
			verify: func(t *testing.T, p *Profile) {
				if p.MaxSegmentSize != 4096 {
					t.Errorf("MaxSegmentSize = %d, want 4096", p.MaxSegmentSize)
				}
				if p.MaxRetries != 5 {
					t.Errorf("MaxRetries = %d, want 5", p.MaxRetries)
				}
				if p.Checksum != "crc32c" {
					t.Errorf("Checksum = %q, want crc32c", p.Checksum)
				}
				if p.ListenAddr != "0.0.0.0:7000" {
					t.Errorf("ListenAddr = %q, want 0.0.0.0:7000", p.ListenAddr)
				}
			},
		},
		{
			name: "partial profile keeps defaults",
			yaml: "max_retries: 2\n",
			verify: func(t *testing.T, p *Profile) {
				if p.MaxRetries != 2 {
					t.Errorf("MaxRetries = %d, want 2", p.MaxRetries)
				}
				if p.MaxSegmentSize != session.DefaultMaxSegment {
					t.Errorf("MaxSegmentSize = %d, want default %d", p.MaxSegmentSize, session.DefaultMaxSegment)
				}
				if p.Checksum != checksum.NameCRC32 {
					t.Errorf("Checksum = %q, want default crc32", p.Checksum)
				}
			},
		},
		{
			name:    "unknown checksum",
			yaml:    "checksum: sha999\n",
			wantErr: true,
		},
		{
			name:    "negative retries",
			yaml:    "max_retries: -1\n",
			wantErr: true,
		},
		{
			name:    "malformed yaml",
			yaml:    "max_retries: [not a number\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "profile.yaml")
			if err := os.WriteFile(path, []byte(tt.yaml), 0600); err != nil {
				t.Fatalf("write fixture: %v", err)
			}

			p, err := Load(path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Load() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && tt.verify != nil {
				tt.verify(t, p)
			}
		})
	}

	t.Run("missing file", func(t *testing.T) {
		if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
			t.Error("Load() of a missing file should fail")
		}
	})
}

func TestSaveRoundTrip(t *testing.T) {
	p := Default()
	p.MaxRetries = 3
	p.Checksum = checksum.NameCRC32C

	path := filepath.Join(t.TempDir(), "profile.yaml")
	if err := p.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if *got != *p {
		t.Errorf("round trip = %+v, want %+v", got, p)
	}
}

func TestSessionOptions(t *testing.T) {
	t.Run("real checksum", func(t *testing.T) {
		p := Default()
		opts, err := p.SessionOptions()
		if err != nil {
			t.Fatalf("SessionOptions() error = %v", err)
		}
		if opts.Checksum == nil {
			t.Error("crc32 profile should produce a checksum function")
		}
		if opts.MaxSegment != p.MaxSegmentSize {
			t.Errorf("MaxSegment = %d, want %d", opts.MaxSegment, p.MaxSegmentSize)
		}
	})

	t.Run("placeholder maps to nil", func(t *testing.T) {
		p := Default()
		p.Checksum = checksum.NameNone
		opts, err := p.SessionOptions()
		if err != nil {
			t.Fatalf("SessionOptions() error = %v", err)
		}
		if opts.Checksum != nil {
			t.Error("placeholder profile must leave the checksum nil")
		}
	})
}
