package envelope

// NoOpCodec bypasses compression entirely; used when CompressionNone is
// selected, or for baseline size comparisons.
type NoOpCodec struct{}

var _ Codec = (*NoOpCodec)(nil)

// NewNoOpCodec creates a NoOpCodec.
func NewNoOpCodec() *NoOpCodec { return &NoOpCodec{} }

// Compress returns data unchanged.
func (c *NoOpCodec) Compress(data []byte) ([]byte, error) { return data, nil }

// Decompress returns data unchanged.
func (c *NoOpCodec) Decompress(data []byte) ([]byte, error) { return data, nil }
