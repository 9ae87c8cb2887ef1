// Package setop implements the set-algebra operation engine (C9): the
// top-level Deserialize/DeserializeRange entry points that drive the
// stream iterator per (state, op) and fold a stream into a target
// bit-vector under one of thirteen operations.
package setop

import "github.com/Aurora-Community/BitMagic/stream"

// Op identifies a set-algebra operation. It is the same vocabulary the
// stream iterator's typed accessors take, re-exported here since C9 is
// the package callers reach for when they want op semantics by name;
// defining it in package stream (instead of a setop<->stream cycle)
// keeps stream.Iterator's own GetBitBlock/GetArrBit signatures self-
// contained.
type Op = stream.Op

const (
	Assign     = stream.Assign
	Or         = stream.Or
	And        = stream.And
	Xor        = stream.Xor
	Sub        = stream.Sub
	Count      = stream.Count
	CountAnd   = stream.CountAnd
	CountOr    = stream.CountOr
	CountXor   = stream.CountXor
	CountSubAB = stream.CountSubAB
	CountSubBA = stream.CountSubBA
	CountA     = stream.CountA
	CountB     = stream.CountB
)
