package memres

import (
	"math/bits"
	"unsafe"
)

const (
	minBlockSize = 8
	maxBlockSize = 4 << 10

	// blocks carved out of the first chunk of a class; doubles per refill.
	minBlocksPerChunk = 16
	maxBlocksPerChunk = 1024
)

type poolClass struct {
	size     int
	free     [][]byte
	perChunk int
}

// Pool is an unsynchronized pool. Requests up to 4KB are rounded up to a
// power-of-two size class and served from per-class free lists that are
// refilled with chunks from upstream. Larger requests go straight upstream.
type Pool struct {
	upstream  Resource
	classes   []poolClass
	chunks    []chunk
	oversized map[uintptr]chunk
}

// NewPool creates a Pool over upstream. A nil upstream means Heap().
func NewPool(upstream Resource) *Pool {
	if upstream == nil {
		upstream = Heap()
	}
	p := &Pool{
		upstream:  upstream,
		oversized: make(map[uintptr]chunk),
	}
	for sz := minBlockSize; sz <= maxBlockSize; sz <<= 1 {
		p.classes = append(p.classes, poolClass{size: sz, perChunk: minBlocksPerChunk})
	}
	return p
}

// classIndex returns the index of the smallest class holding sz bytes.
func classIndex(sz int) int {
	if sz <= minBlockSize {
		return 0
	}
	return bits.Len(uint(sz-1)) - bits.Len(uint(minBlockSize-1))
}

func blockSize(size, align int) int {
	if align > size {
		return align
	}
	return size
}

// Allocate implements Resource.
func (p *Pool) Allocate(size, align int) ([]byte, error) {
	if err := validate(size, align); err != nil {
		return nil, err
	}
	if size == 0 {
		return []byte{}, nil
	}
	n := blockSize(size, align)
	if n > maxBlockSize {
		b, err := p.upstream.Allocate(size, align)
		if err != nil {
			return nil, err
		}
		p.oversized[addr(b)] = chunk{buf: b, align: align}
		return b, nil
	}

	c := &p.classes[classIndex(n)]
	if len(c.free) == 0 {
		if err := p.refill(c); err != nil {
			return nil, err
		}
	}
	last := len(c.free) - 1
	b := c.free[last]
	c.free[last] = nil
	c.free = c.free[:last]
	return b[:size], nil
}

func (p *Pool) refill(c *poolClass) error {
	buf, err := p.upstream.Allocate(c.size*c.perChunk, c.size)
	if err != nil {
		return err
	}
	p.chunks = append(p.chunks, chunk{buf: buf, align: c.size})
	for i := c.perChunk - 1; i >= 0; i-- {
		off := i * c.size
		c.free = append(c.free, buf[off:off+c.size:off+c.size])
	}
	if c.perChunk < maxBlocksPerChunk {
		c.perChunk *= 2
	}
	return nil
}

// Deallocate implements Resource. The block goes back to its class free list.
func (p *Pool) Deallocate(b []byte, align int) {
	if len(b) == 0 {
		return
	}
	n := blockSize(len(b), align)
	if n > maxBlockSize {
		if ch, ok := p.oversized[addr(b)]; ok {
			delete(p.oversized, addr(b))
			p.upstream.Deallocate(ch.buf, ch.align)
		}
		return
	}
	c := &p.classes[classIndex(n)]
	c.free = append(c.free, unsafe.Slice(unsafe.SliceData(b), c.size))
}

// Release returns all chunks and oversized blocks to upstream, including
// blocks that were never deallocated.
func (p *Pool) Release() {
	for i := range p.classes {
		c := &p.classes[i]
		c.free = nil
		c.perChunk = minBlocksPerChunk
	}
	for _, ch := range p.chunks {
		p.upstream.Deallocate(ch.buf, ch.align)
	}
	p.chunks = nil
	for k, ch := range p.oversized {
		p.upstream.Deallocate(ch.buf, ch.align)
		delete(p.oversized, k)
	}
}

// Chunks returns the number of chunks obtained from upstream for size classes.
func (p *Pool) Chunks() int {
	return len(p.chunks)
}
