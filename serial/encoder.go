package serial

import (
	"github.com/Aurora-Community/BitMagic/bitset"
	"github.com/Aurora-Community/BitMagic/codec"
	"github.com/Aurora-Community/BitMagic/endian"
	"github.com/Aurora-Community/BitMagic/errs"
	"github.com/Aurora-Community/BitMagic/format"
	"github.com/Aurora-Community/BitMagic/internal/options"
	"github.com/Aurora-Community/BitMagic/internal/pool"
	"github.com/Aurora-Community/BitMagic/wire"
)

// Stats mirrors the teacher's CompressionStats shape, reporting what a
// SerializeAppend call actually cost.
type Stats struct {
	MaxSerializeMem int
	BytesWritten    int
	Ratio           float64
}

// Serializer turns a bitset.BitVector into the tag-framed byte stream
// spec §4.6 describes: a fixed header followed by the block-token body
// codec.BlockEncoder produces.
type Serializer struct {
	cfg *Config
}

// NewSerializer creates a Serializer with the given options applied
// over the codec's defaults.
func NewSerializer(opts ...Option) (*Serializer, error) {
	cfg := NewConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return &Serializer{cfg: cfg}, nil
}

func (s *Serializer) header(bv *bitset.BitVector) format.Header {
	h := format.Header{ByteOrder: s.cfg.byteOrderTag(), GapLevels: s.cfg.gapLevels}

	if !s.cfg.byteOrderByte {
		h.Flags = h.Flags.With(format.FlagNoBO)
	}
	if !s.cfg.gapLengthsSet {
		h.Flags = h.Flags.With(format.FlagNoGAPL)
	}
	if s.cfg.addressWidth64 {
		h.Flags = h.Flags.With(format.Flag64Bit)
	}

	h.Flags = h.Flags.With(format.FlagDefault)

	return h
}

func (s *Serializer) engine() endian.EndianEngine {
	if s.cfg.engine == byteOrderBig {
		return endian.GetBigEndianEngine()
	}

	return endian.GetLittleEndianEngine()
}

// Serialize writes bv into buf using the hard pre-sizing contract:
// buf must be at least bv.CalcStat's MaxSerializeMem bytes, or
// ErrBufferTooSmall is returned. Returns the number of bytes written.
func (s *Serializer) Serialize(bv *bitset.BitVector, buf []byte) (int, error) {
	h := s.header(bv)

	headerBytes := pool.NewByteBuffer(16)
	he := wire.NewEncoderBuffer(headerBytes, s.engine())
	h.Encode(he)

	stat := bv.CalcStat(headerBytes.Len())
	if len(buf) < stat.MaxSerializeMem {
		return 0, errs.ErrBufferTooSmall
	}

	n := copy(buf, headerBytes.Bytes())

	bodyBuf := pool.NewByteBuffer(headerBytes.Len())
	be := wire.NewEncoderBuffer(bodyBuf, s.engine())

	enc := codec.NewBlockEncoder(s.cfg.level, s.cfg.gapLevels)
	defer enc.Close()
	enc.EncodeAll(be, bv, bv.MaxBlockIndex(), false)

	n += copy(buf[n:], be.Bytes())

	return n, nil
}

// SerializeAppend serializes bv into a freshly pooled, amortized-growth
// buffer sized from bv.CalcStat, returning the encoded bytes and the
// resulting Stats.
func (s *Serializer) SerializeAppend(bv *bitset.BitVector) ([]byte, *Stats, error) {
	h := s.header(bv)

	buf := pool.GetScratchBuffer()
	defer pool.PutScratchBuffer(buf)

	e := wire.NewEncoderBuffer(buf, s.engine())
	h.Encode(e)

	headerBytes := e.Pos()
	stat := bv.CalcStat(headerBytes)
	buf.Grow(stat.MaxSerializeMem - headerBytes)

	enc := codec.NewBlockEncoder(s.cfg.level, s.cfg.gapLevels)
	defer enc.Close()
	enc.EncodeAll(e, bv, bv.MaxBlockIndex(), false)

	out := make([]byte, e.Pos())
	copy(out, e.Bytes())

	ratio := 0.0
	if stat.MaxSerializeMem > 0 {
		ratio = float64(len(out)) / float64(stat.MaxSerializeMem)
	}

	return out, &Stats{
		MaxSerializeMem: stat.MaxSerializeMem,
		BytesWritten:    len(out),
		Ratio:           ratio,
	}, nil
}

// OptimizeSerializeDestroy is the destructive serialize entry point:
// it asks bv to re-evaluate its block representations (Optimize), then
// serializes in destructive mode, clearing each block's source bits
// right after its token is emitted so memory is not held twice.
func (s *Serializer) OptimizeSerializeDestroy(bv *bitset.BitVector) ([]byte, error) {
	bv.Optimize()

	h := s.header(bv)

	buf := pool.GetScratchBuffer()
	defer pool.PutScratchBuffer(buf)

	e := wire.NewEncoderBuffer(buf, s.engine())
	h.Encode(e)

	maxBlock := bv.MaxBlockIndex()
	headerBytes := e.Pos()
	stat := bv.CalcStat(headerBytes)
	buf.Grow(stat.MaxSerializeMem - headerBytes)

	enc := codec.NewBlockEncoder(s.cfg.level, s.cfg.gapLevels)
	defer enc.Close()
	enc.EncodeAll(e, bv, maxBlock, true)

	out := make([]byte, e.Pos())
	copy(out, e.Bytes())

	return out, nil
}
