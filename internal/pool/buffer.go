package pool

import "sync"

// StreamChunkSize is the copy buffer size used when relaying media
const StreamChunkSize = 64 * 1024

// ChunkPool recycles fixed-size copy buffers
type ChunkPool struct {
	pool sync.Pool
	size int
}

// NewChunkPool creates a pool of size-byte buffers
func NewChunkPool(size int) *ChunkPool {
	p := &ChunkPool{size: size}
	p.pool.New = func() interface{} {
		buf := make([]byte, size)
		return &buf
	}
	return p
}

// Get returns a buffer of exactly the pool's size
func (p *ChunkPool) Get() []byte {
	return (*p.pool.Get().(*[]byte))[:p.size]
}

// Put recycles buf. Buffers not allocated by this pool are dropped.
func (p *ChunkPool) Put(buf []byte) {
	if cap(buf) != p.size {
		return
	}
	p.pool.Put(&buf)
}

// StreamChunks hands out StreamChunkSize buffers to the stream proxy
var StreamChunks = NewChunkPool(StreamChunkSize)
