// Package envelope wraps a fully-serialized bit-vector stream (the output
// of serial.Serializer) with an optional outer compression codec and a
// mandatory xxHash64 integrity checksum carried in the envelope header.
//
// A serialized stream is already compact — the block tag table is itself a
// compression scheme — but large sparse vectors still benefit from a second
// pass of general-purpose compression over the whole stream, and every
// caller benefits from a cheap way to detect a corrupted or truncated blob
// before handing it to serial.Deserializer. Wrap produces that outer
// framing; Unwrap verifies and strips it.
//
// Choosing a codec is a space/speed tradeoff, not a correctness one:
// CompressionNone skips the second pass entirely, CompressionLZ4 and
// CompressionS2 trade ratio for decompression speed, and CompressionZstd
// trades CPU for the best ratio of the three. The header checksum applies
// identically regardless of which codec produced the compressed body.
package envelope
