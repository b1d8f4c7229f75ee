package png

import (
	"fmt"
	"image/png"
	"sync"
)

// DefaultAllocLimit caps a single pixel buffer at 1 GiB.
const DefaultAllocLimit = 1 << 30

// Allocator hands out the pixel and scratch buffers used by an Adapter. Every
// buffer obtained from Alloc is passed back to Release exactly once.
type Allocator interface {
	Alloc(size int) ([]byte, error)
	Release(buf []byte)
}

type heapAllocator struct {
	limit int
}

// NewHeapAllocator returns an Allocator backed by the Go heap which refuses
// requests larger than limit bytes. A limit of zero or less means unbounded.
func NewHeapAllocator(limit int) Allocator {
	return &heapAllocator{limit: limit}
}

func (a *heapAllocator) Alloc(size int) ([]byte, error) {
	if size <= 0 {
		return nil, fmt.Errorf("cannot allocate %d bytes", size)
	}
	if a.limit > 0 && size > a.limit {
		return nil, fmt.Errorf("allocation of %d bytes exceeds limit of %d", size, a.limit)
	}
	return make([]byte, size), nil
}

func (a *heapAllocator) Release([]byte) {}

// encoderPool lets concurrent Write calls reuse deflate state without sharing
// it: each encode takes its own buffer from the pool.
type encoderPool struct {
	pool sync.Pool
}

func (p *encoderPool) Get() *png.EncoderBuffer {
	b, _ := p.pool.Get().(*png.EncoderBuffer)
	return b
}

func (p *encoderPool) Put(b *png.EncoderBuffer) {
	p.pool.Put(b)
}
