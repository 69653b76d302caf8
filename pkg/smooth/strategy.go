package smooth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Faultbox/meshlab/pkg/memres"
)

// ArenaCapacity is the number of neighbor indices the arena strategy holds
// without touching its upstream resource. Vertices of a subdivided sphere
// have valence 4 or 6.
const ArenaCapacity = 6

// ErrUnknownKind is returned for an unrecognized strategy name.
var ErrUnknownKind = errors.New("unknown allocation strategy")

// Strategy provides the scratch buffer that receives a vertex's neighbor
// indices. Rewind is called once the buffer is no longer used.
type Strategy interface {
	Buffer(n int) ([]uint32, error)
	Rewind()
}

// Kind selects a Strategy at runtime.
type Kind int

const (
	// KindHeap allocates a fresh buffer for every vertex.
	KindHeap Kind = iota
	// KindArena reuses a small bounded arena for every vertex.
	KindArena
)

// Kinds lists every strategy kind.
var Kinds = []Kind{KindHeap, KindArena}

func (k Kind) String() string {
	switch k {
	case KindHeap:
		return "heap"
	case KindArena:
		return "arena"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind converts a strategy name to its Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "heap", "vector":
		return KindHeap, nil
	case "arena", "pmr":
		return KindArena, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// NewStrategy returns a fresh strategy of the given kind. upstream feeds the
// arena once a vertex has more than ArenaCapacity neighbors; nil means
// memres.Heap(). The heap strategy ignores it.
func NewStrategy(kind Kind, upstream memres.Resource) (Strategy, error) {
	switch kind {
	case KindHeap:
		return Heap{}, nil
	case KindArena:
		return NewArena(upstream), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
}

// Heap allocates every buffer with make.
type Heap struct{}

// Buffer implements Strategy.
func (Heap) Buffer(n int) ([]uint32, error) {
	return make([]uint32, n), nil
}

// Rewind implements Strategy.
func (Heap) Rewind() {}

// Arena serves buffers from inline storage for ArenaCapacity indices and
// falls back to its upstream for larger ones. Rewind releases the fallback
// memory and starts over at the beginning of the storage.
//
// An Arena must not be shared between goroutines.
type Arena struct {
	storage [ArenaCapacity]uint32
	res     *memres.Monotonic
}

// NewArena returns an Arena backed by upstream; nil means memres.Heap().
func NewArena(upstream memres.Resource) *Arena {
	a := &Arena{}
	a.res = memres.NewMonotonic(memres.AsBytes(a.storage[:]), upstream)
	return a
}

// Buffer implements Strategy.
func (a *Arena) Buffer(n int) ([]uint32, error) {
	buf, err := memres.Slice[uint32](a.res, n)
	if err != nil {
		return nil, fmt.Errorf("arena buffer for %d indices: %w", n, err)
	}
	return buf, nil
}

// Rewind implements Strategy.
func (a *Arena) Rewind() {
	a.res.Release()
}
