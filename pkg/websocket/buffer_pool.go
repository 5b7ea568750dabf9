package websocket

import (
	"sync"
)

// BufferPool provides []byte pooling with a single size class.
type BufferPool struct {
	pool *sync.Pool
}

// DefaultBufferPool returns a pool of 64 KiB buffers.
func DefaultBufferPool() *BufferPool {
	return NewBufferPool(64 << 10)
}

// NewBufferPool creates a pool whose new buffers are allocated with the
// given size.
func NewBufferPool(size int64) *BufferPool {
	return &BufferPool{
		pool: &sync.Pool{
			New: func() any {
				return make([]byte, size)
			},
		},
	}
}

// Get returns a pooled buffer resliced to length size. There is one size
// class, so size has to fit the capacity of the pooled buffer.
func (p *BufferPool) Get(size int) []byte {
	if size <= 0 {
		return nil
	}

	buf := p.pool.Get().([]byte)
	return buf[:size]
}

// Put returns any non-nil buffer to the pool, whatever its capacity.
func (p *BufferPool) Put(buf []byte) {
	if buf == nil {
		return
	}

	buf = buf[:0]
	p.pool.Put(buf)
}
