// Package serial implements the top-level stream serializer and
// deserializer (C6/C7): the header, the block-token body produced by
// codec.BlockEncoder/BlockDecoder, and the functional-option config
// both sides share.
package serial

import (
	"github.com/Aurora-Community/BitMagic/errs"
	"github.com/Aurora-Community/BitMagic/format"
	"github.com/Aurora-Community/BitMagic/internal/options"
)

// Config holds the serializer/deserializer's shared tunables, set via
// functional options over *Config.
type Config struct {
	level          int
	gapLengthsSet  bool
	byteOrderByte  bool
	engine         byteOrderChoice
	gapLevels      format.GapLevels
	idListOnRead   bool
	addressWidth64 bool
}

type byteOrderChoice uint8

const (
	byteOrderLittle byteOrderChoice = iota
	byteOrderBig
)

// Option configures a Config via the shared functional-options plumbing.
type Option = options.Option[*Config]

// NewConfig creates a Config with the codec's defaults: compression
// level 5 (full candidate table), gap_levels and byte_order byte both
// present, little-endian, 32-bit addressing.
func NewConfig() *Config {
	return &Config{
		level:         5,
		gapLengthsSet: true,
		byteOrderByte: true,
		engine:        byteOrderLittle,
		gapLevels:     format.DefaultGapLevels,
	}
}

// SetCompressionLevel sets the classifier's compression level (0-5);
// see spec §4.3's cost table for what each level enables.
func SetCompressionLevel(level int) Option {
	return options.New(func(c *Config) error {
		if level < 0 || level > 5 {
			return errs.ErrInvalidCompressionLevel
		}
		c.level = level

		return nil
	})
}

// GapLengthSerialization controls whether the header carries an
// explicit gap_levels array (true) or omits it in favor of the
// decoder's compiled-in defaults (false, sets NO_GAPL).
func GapLengthSerialization(enabled bool) Option {
	return options.NoError(func(c *Config) { c.gapLengthsSet = enabled })
}

// ByteOrderSerialization controls whether the header carries an
// explicit byte_order byte (true) or omits it in favor of the native
// order (false, sets NO_BO).
func ByteOrderSerialization(enabled bool) Option {
	return options.NoError(func(c *Config) { c.byteOrderByte = enabled })
}

// BigEndian selects big-endian framing for the multi-byte header and
// body fields; the default is little-endian.
func BigEndian() Option {
	return options.NoError(func(c *Config) { c.engine = byteOrderBig })
}

// GapLevels overrides the four GAP length-class thresholds the header
// records. The block decoder does not consult them.
func GapLevels(levels format.GapLevels) Option {
	return options.NoError(func(c *Config) { c.gapLevels = levels })
}

// AddressWidth64 selects the 64-bit address-width framing (the
// header's 64_BIT flag), needed once any set bit's position exceeds
// 2^32-1.
func AddressWidth64(enabled bool) Option {
	return options.NoError(func(c *Config) { c.addressWidth64 = enabled })
}

func (c *Config) byteOrderTag() format.ByteOrderTag {
	if c.engine == byteOrderBig {
		return format.ByteOrderBig
	}

	return format.ByteOrderLittle
}
