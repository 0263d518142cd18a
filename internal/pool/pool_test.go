package pool

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChunkPool(t *testing.T) {
	p := NewChunkPool(16)

	buf := p.Get()
	assert.Len(t, buf, 16)

	// A resliced buffer comes back at full length.
	p.Put(buf[:3])
	assert.Len(t, p.Get(), 16)

	// Foreign buffers are dropped.
	p.Put(make([]byte, 4))
	p.Put(make([]byte, 64))
	assert.Len(t, p.Get(), 16)
}

func TestHTTPClientPool(t *testing.T) {
	p := NewHTTPClientPool()
	defer p.Close()

	assert.Zero(t, p.Client().Timeout, "streams must not carry an overall deadline")
	assert.True(t, p.transport.DisableCompression)
}
