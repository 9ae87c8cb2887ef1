package envelope

import "github.com/Aurora-Community/BitMagic/internal/options"

// Config holds Wrap's tunables, set via functional options over *Config.
type Config struct {
	compression CompressionType
}

// Option configures a Config via the shared functional-options plumbing.
type Option = options.Option[*Config]

// NewConfig creates a Config with the codec's default: no outer
// compression, header checksum always present.
func NewConfig() *Config {
	return &Config{compression: CompressionNone}
}

// WithCompression selects the outer codec Wrap compresses the payload
// with. Unwrap never needs this option: the compression type travels in
// the envelope header.
func WithCompression(compression CompressionType) Option {
	return options.NoError(func(c *Config) { c.compression = compression })
}
