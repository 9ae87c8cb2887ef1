package pool

import (
	"bytes"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewByteBuffer(t *testing.T) {
	bb := NewByteBuffer(1024)

	require.NotNil(t, bb)
	assert.Equal(t, 0, bb.Len())
	assert.Equal(t, 1024, bb.Cap())
}

func TestByteBuffer_Bytes(t *testing.T) {
	bb := NewByteBuffer(ScratchDefaultSize)
	bb.MustWrite([]byte("hello"))

	assert.Equal(t, []byte("hello"), bb.Bytes())
}

func TestByteBuffer_Reset(t *testing.T) {
	bb := NewByteBuffer(ScratchDefaultSize)
	bb.MustWrite([]byte("some data"))
	originalCap := bb.Cap()

	bb.Reset()

	assert.Equal(t, 0, bb.Len())
	assert.Equal(t, originalCap, bb.Cap())
}

func TestByteBuffer_ExtendOrGrow(t *testing.T) {
	bb := NewByteBuffer(8)
	bb.ExtendOrGrow(4)
	assert.Equal(t, 4, bb.Len())

	bb.ExtendOrGrow(100)
	assert.Equal(t, 104, bb.Len())
	assert.GreaterOrEqual(t, bb.Cap(), 104)
}

func TestByteBuffer_SetLength_Panics(t *testing.T) {
	bb := NewByteBuffer(4)
	assert.Panics(t, func() { bb.SetLength(5) })
	assert.Panics(t, func() { bb.SetLength(-1) })
}

func TestByteBuffer_Grow_PreservesData(t *testing.T) {
	bb := NewByteBuffer(ScratchDefaultSize)
	data := []byte("important data that must be preserved")
	bb.MustWrite(data)

	bb.Grow(ScratchDefaultSize * 2)

	assert.Equal(t, data, bb.Bytes())
}

func TestByteBuffer_WriteTo(t *testing.T) {
	bb := NewByteBuffer(ScratchDefaultSize)
	bb.MustWrite([]byte("test data"))

	var buf bytes.Buffer
	n, err := bb.WriteTo(&buf)

	require.NoError(t, err)
	assert.Equal(t, int64(9), n)
	assert.Equal(t, "test data", buf.String())
}

func TestScratchPool_GetPutResets(t *testing.T) {
	bb := GetScratchBuffer()
	bb.MustWrite([]byte("sensitive"))

	PutScratchBuffer(bb)

	assert.Equal(t, 0, bb.Len(), "PutScratchBuffer should reset the buffer")
}

func TestBlobPool_GetPutResets(t *testing.T) {
	bb := GetBlobBuffer()
	bb.MustWrite([]byte("serialized stream"))

	PutBlobBuffer(bb)

	assert.Equal(t, 0, bb.Len())
}

func TestByteBufferPool_MaxThreshold_Discard(t *testing.T) {
	p := NewByteBufferPool(1024, 4096)

	bb := p.Get()
	bb.Grow(10000)
	require.Greater(t, bb.Cap(), 4096)

	p.Put(bb)

	bb2 := p.Get()
	assert.LessOrEqual(t, bb2.Cap(), 4096*2, "should not reuse a buffer larger than the threshold")
}

func TestByteBufferPool_PutNil(t *testing.T) {
	p := NewByteBufferPool(1024, 4096)
	assert.NotPanics(t, func() { p.Put(nil) })
}

func TestPool_ConcurrentAccess(t *testing.T) {
	const goroutines = 32
	const iterations = 200

	var wg sync.WaitGroup
	wg.Add(goroutines)

	for range goroutines {
		go func() {
			defer wg.Done()
			for range iterations {
				bb := GetScratchBuffer()
				bb.MustWrite([]byte("data"))
				PutScratchBuffer(bb)
			}
		}()
	}

	wg.Wait()
}
