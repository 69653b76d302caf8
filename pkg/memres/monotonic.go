package memres

const (
	// defaultChunkSize is the first upstream chunk of a Monotonic without an
	// initial buffer.
	defaultChunkSize = 1024

	// chunkAlign is the alignment requested for upstream chunks, so most
	// requests fit a chunk without padding.
	chunkAlign = 8
)

type chunk struct {
	buf   []byte
	align int
}

// Monotonic is a bump allocator. It serves requests from an initial buffer
// first and then from upstream chunks whose sizes grow geometrically.
// Deallocate does nothing; memory comes back only through Release.
type Monotonic struct {
	upstream Resource
	initial  []byte

	cur []byte
	off int

	chunks    []chunk
	firstSize int
	nextSize  int
}

// NewMonotonic creates a Monotonic over buf (may be nil) that falls back to
// upstream once buf is used up. A nil upstream means Heap().
func NewMonotonic(buf []byte, upstream Resource) *Monotonic {
	if upstream == nil {
		upstream = Heap()
	}
	first := defaultChunkSize
	if len(buf) > 0 {
		first = 2 * len(buf)
	}
	return &Monotonic{
		upstream:  upstream,
		initial:   buf,
		cur:       buf,
		firstSize: first,
		nextSize:  first,
	}
}

// Allocate implements Resource.
func (m *Monotonic) Allocate(size, align int) ([]byte, error) {
	if err := validate(size, align); err != nil {
		return nil, err
	}
	if size == 0 {
		return []byte{}, nil
	}
	if b, ok := m.bump(size, align); ok {
		return b, nil
	}

	n := m.nextSize
	for n < size {
		n *= 2
	}
	// chunks start aligned, so the first block never needs padding
	ca := chunkAlign
	if align > ca {
		ca = align
	}
	buf, err := m.upstream.Allocate(n, ca)
	if err != nil {
		return nil, err
	}
	m.chunks = append(m.chunks, chunk{buf: buf, align: ca})
	m.cur = buf
	m.off = 0
	m.nextSize = n * 2

	b, _ := m.bump(size, align)
	return b, nil
}

func (m *Monotonic) bump(size, align int) ([]byte, bool) {
	if len(m.cur) == 0 {
		return nil, false
	}
	base := addr(m.cur)
	start := int(alignUp(base+uintptr(m.off), align) - base)
	end := start + size
	if end > len(m.cur) {
		return nil, false
	}
	m.off = end
	return m.cur[start:end:end], true
}

// Deallocate is a no-op.
func (m *Monotonic) Deallocate([]byte, int) {}

// Release returns every upstream chunk and rewinds to the initial buffer.
// Blocks handed out before Release must not be used afterwards.
func (m *Monotonic) Release() {
	for i := len(m.chunks) - 1; i >= 0; i-- {
		m.upstream.Deallocate(m.chunks[i].buf, m.chunks[i].align)
		m.chunks[i] = chunk{}
	}
	m.chunks = m.chunks[:0]
	m.cur = m.initial
	m.off = 0
	m.nextSize = m.firstSize
}

// Chunks returns the number of upstream chunks currently held.
func (m *Monotonic) Chunks() int {
	return len(m.chunks)
}

// InInitial reports whether b lies inside the initial buffer.
func (m *Monotonic) InInitial(b []byte) bool {
	if len(b) == 0 || len(m.initial) == 0 {
		return false
	}
	lo := addr(m.initial)
	p := addr(b)
	return p >= lo && p+uintptr(len(b)) <= lo+uintptr(len(m.initial))
}
