// Package config loads and validates msgwire profiles.
//
// A profile is a small YAML file describing how sessions on this host
// should behave: segment size, retry limit, checksum algorithm, and the
// addresses the CLI tools default to. The zero configuration is usable;
// every field has a default.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/muurk/msgwire/internal/checksum"
	"github.com/muurk/msgwire/internal/session"
)

// Profile is the on-disk configuration for msgwire sessions and tools.
type Profile struct {
	// MaxSegmentSize bounds one segment's payload in bytes.
	MaxSegmentSize int `yaml:"max_segment_size,omitempty"`

	// MaxRetries bounds transmissions per segment before the link is
	// declared unreliable.
	MaxRetries int `yaml:"max_retries,omitempty"`

	// MaxMessageSize bounds the whole-message length a receiver accepts.
	MaxMessageSize uint64 `yaml:"max_message_size,omitempty"`

	// Checksum names the integrity algorithm: "crc32", "crc32c", or
	// "none" (placeholder, no integrity guarantee).
	Checksum string `yaml:"checksum,omitempty"`

	// ListenAddr is the default address for `msgwire listen`.
	ListenAddr string `yaml:"listen_addr,omitempty"`

	// LogLevel overrides MSGWIRE_LOG_LEVEL when set.
	LogLevel string `yaml:"log_level,omitempty"`
}

// Default returns a Profile with the standard settings.
func Default() *Profile {
	return &Profile{
		MaxSegmentSize: session.DefaultMaxSegment,
		MaxRetries:     session.DefaultMaxRetries,
		MaxMessageSize: session.DefaultMaxMessage,
		Checksum:       checksum.NameCRC32,
		ListenAddr:     "127.0.0.1:9555",
	}
}

// Load reads a profile from path, filling unset fields with defaults.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	p := Default()
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return p, nil
}

// Save writes the profile to path as YAML.
func (p *Profile) Save(path string) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

// Validate checks field values for consistency.
func (p *Profile) Validate() error {
	if p.MaxSegmentSize < 0 {
		return fmt.Errorf("max_segment_size must not be negative, got %d", p.MaxSegmentSize)
	}
	if p.MaxRetries < 0 {
		return fmt.Errorf("max_retries must not be negative, got %d", p.MaxRetries)
	}
	if p.Checksum != "" {
		if _, err := checksum.ByName(p.Checksum); err != nil {
			return err
		}
	}
	return nil
}

// SessionOptions translates the profile into session options. The "none"
// checksum maps to a nil function so the session knows it is running on
// the placeholder.
func (p *Profile) SessionOptions() (*session.Options, error) {
	opts := &session.Options{
		MaxSegment: p.MaxSegmentSize,
		MaxRetries: p.MaxRetries,
		MaxMessage: p.MaxMessageSize,
	}
	if p.Checksum != "" && !checksum.IsPlaceholder(p.Checksum) {
		fn, err := checksum.ByName(p.Checksum)
		if err != nil {
			return nil, err
		}
		opts.Checksum = fn
	}
	return opts, nil
}
