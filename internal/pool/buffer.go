// Package pool provides reusable byte buffers for the archive encoder.
//
// TAR headers carry the entry size up front, so the encoder stages each
// entry in memory before writing it. Those staging buffers are recycled
// here to keep allocations flat across entries.
package pool

import (
	"sync"
)

const (
	// SmallBufferSize defines the size for small staging buffers (64KB)
	SmallBufferSize = 64 * 1024
	// LargeBufferSize defines the size for large staging buffers (1MB)
	LargeBufferSize = 1024 * 1024
)

// BufferPool manages reusable buffers of two sizes to reduce allocations.
type BufferPool struct {
	small *sync.Pool
	large *sync.Pool
}

// NewBufferPool creates a new buffer pool with default sizes.
func NewBufferPool() *BufferPool {
	return &BufferPool{
		small: &sync.Pool{
			New: func() interface{} {
				buf := make([]byte, 0, SmallBufferSize)
				return &buf
			},
		},
		large: &sync.Pool{
			New: func() interface{} {
				buf := make([]byte, 0, LargeBufferSize)
				return &buf
			},
		},
	}
}

// Get returns a zero-length buffer with at least the requested capacity.
// Requests above LargeBufferSize are allocated fresh and never pooled.
// The caller is responsible for calling Put to return the buffer.
func (bp *BufferPool) Get(size int) []byte {
	switch {
	case size <= SmallBufferSize:
		bufPtr := bp.small.Get().(*[]byte)
		return (*bufPtr)[:0]
	case size <= LargeBufferSize:
		bufPtr := bp.large.Get().(*[]byte)
		return (*bufPtr)[:0]
	default:
		return make([]byte, 0, size)
	}
}

// Put returns a buffer to the appropriate pool based on its capacity.
// Buffers whose capacity matches neither pool size are dropped; a staging
// buffer that grew past its original capacity is not worth keeping.
func (bp *BufferPool) Put(buf []byte) {
	buf = buf[:0]
	switch cap(buf) {
	case SmallBufferSize:
		bp.small.Put(&buf)
	case LargeBufferSize:
		bp.large.Put(&buf)
	}
}

// Global buffer pool instance for use throughout the module.
var globalBufferPool = NewBufferPool()

// GetBuffer returns a buffer from the global pool with the given minimum capacity.
func GetBuffer(size int) []byte {
	return globalBufferPool.Get(size)
}

// PutBuffer returns a buffer to the global pool.
func PutBuffer(buf []byte) {
	globalBufferPool.Put(buf)
}
