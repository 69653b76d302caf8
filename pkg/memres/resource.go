// Package memres provides chainable memory resources.
//
// A Resource hands out byte blocks. Downstream resources (Tracking, Monotonic,
// Pool) obtain their memory from an upstream Resource, so strategies can be
// stacked: a Pool over a Tracking over the Heap reports how much memory the
// pool actually requested.
//
// Deallocate must be called with a slice of the same length and the same
// alignment that Allocate was called with. None of the downstream resources
// are safe for concurrent use.
package memres

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/bytedance/gopkg/lang/dirtmake"
	"github.com/bytedance/gopkg/lang/mcache"
)

// Errors returned by resources.
var (
	ErrExhausted   = errors.New("memres: resource exhausted")
	ErrInvalidSize = errors.New("memres: invalid size or alignment")
)

// Resource allocates and frees byte blocks.
type Resource interface {
	// Allocate returns a block of len size whose first byte is aligned to align.
	// The content of the block is undefined.
	Allocate(size, align int) ([]byte, error)

	// Deallocate returns a block obtained from Allocate.
	Deallocate(b []byte, align int)
}

func validate(size, align int) error {
	if size < 0 {
		return fmt.Errorf("%w: size %d", ErrInvalidSize, size)
	}
	if align <= 0 || align&(align-1) != 0 {
		return fmt.Errorf("%w: alignment %d is not a power of two", ErrInvalidSize, align)
	}
	return nil
}

func addr(b []byte) uintptr {
	return uintptr(unsafe.Pointer(unsafe.SliceData(b)))
}

func alignUp(p uintptr, align int) uintptr {
	a := uintptr(align) - 1
	return (p + a) &^ a
}

// aligned returns b[off:off+size] where off is the first aligned offset.
// b must hold at least size+align-1 bytes.
func aligned(b []byte, size, align int) []byte {
	off := int(alignUp(addr(b), align) - addr(b))
	return b[off : off+size : off+size]
}

type heap struct{}

// Heap returns the leaf resource backed by the Go allocator. Blocks are not
// zeroed and are reclaimed by the garbage collector, so Deallocate is a no-op.
func Heap() Resource { return heap{} }

func (heap) Allocate(size, align int) ([]byte, error) {
	if err := validate(size, align); err != nil {
		return nil, err
	}
	if size == 0 {
		return []byte{}, nil
	}
	b := dirtmake.Bytes(size, size)
	if addr(b)&uintptr(align-1) == 0 {
		return b, nil
	}
	return aligned(dirtmake.Bytes(size+align-1, size+align-1), size, align), nil
}

func (heap) Deallocate([]byte, int) {}

type pooled struct{}

// MCache returns a leaf resource backed by size-class pools. Deallocated blocks
// are handed back to the pool for reuse.
func MCache() Resource { return pooled{} }

func (pooled) Allocate(size, align int) ([]byte, error) {
	if err := validate(size, align); err != nil {
		return nil, err
	}
	if size == 0 {
		return []byte{}, nil
	}
	b := mcache.Malloc(size)
	if addr(b)&uintptr(align-1) == 0 {
		return b, nil
	}
	mcache.Free(b)
	return aligned(mcache.Malloc(size+align-1), size, align), nil
}

func (pooled) Deallocate(b []byte, _ int) {
	if cap(b) == 0 {
		return
	}
	// blocks handed out with an offset have a cap that is not a power of two,
	// mcache drops those and the collector takes them.
	mcache.Free(b)
}

type null struct{}

// Null returns a resource that fails every non-empty allocation. It is used as
// the upstream of a resource that must never leave its initial buffer.
func Null() Resource { return null{} }

func (null) Allocate(size, align int) ([]byte, error) {
	if err := validate(size, align); err != nil {
		return nil, err
	}
	if size == 0 {
		return []byte{}, nil
	}
	return nil, fmt.Errorf("%w: null resource cannot allocate %d bytes", ErrExhausted, size)
}

func (null) Deallocate([]byte, int) {}

// Slice allocates a []T of length n from r.
// T must not contain pointers: the garbage collector does not scan the block.
func Slice[T any](r Resource, n int) ([]T, error) {
	var zero T
	size := int(unsafe.Sizeof(zero))
	if n < 0 {
		return nil, fmt.Errorf("%w: length %d", ErrInvalidSize, n)
	}
	if n == 0 || size == 0 {
		return make([]T, n), nil
	}
	b, err := r.Allocate(n*size, int(unsafe.Alignof(zero)))
	if err != nil {
		return nil, err
	}
	return unsafe.Slice((*T)(unsafe.Pointer(unsafe.SliceData(b))), n), nil
}

// FreeSlice returns a slice obtained from Slice to r.
func FreeSlice[T any](r Resource, s []T) {
	var zero T
	size := int(unsafe.Sizeof(zero))
	if len(s) == 0 || size == 0 {
		return
	}
	r.Deallocate(AsBytes(s), int(unsafe.Alignof(zero)))
}

// AsBytes returns the memory of s as a byte slice. Use it to hand typed
// storage, such as a fixed array, to NewMonotonic with the alignment of T.
func AsBytes[T any](s []T) []byte {
	var zero T
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(s))), len(s)*int(unsafe.Sizeof(zero)))
}
