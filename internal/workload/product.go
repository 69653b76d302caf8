package workload

import (
	"fmt"
	"strings"
	"unsafe"

	"github.com/Faultbox/meshlab/pkg/memres"
)

// DemoName is the product name stored by the buffer demo.
const DemoName = "foo bar baz qux lorem ipsum dolor"

// header is the fixed part of a product as laid out in resource memory.
type header struct {
	Data uintptr
	Len  uint64
	Cap  uint64
}

// Product is a named item whose header lives in resource memory. When the
// product is allocator-aware its name bytes come from the same resource;
// otherwise they come from the Go heap.
type Product struct {
	hdr  []header
	name []byte
}

// NewProduct stores name through r. If aware is false only the header is
// allocated from r.
func NewProduct(r memres.Resource, name string, aware bool) (*Product, error) {
	hdr, err := memres.Slice[header](r, 1)
	if err != nil {
		return nil, fmt.Errorf("allocating product header: %w", err)
	}

	var data []byte
	if aware {
		data, err = memres.Slice[byte](r, len(name))
		if err != nil {
			return nil, fmt.Errorf("allocating product name: %w", err)
		}
		copy(data, name)
	} else {
		data = []byte(name)
	}

	hdr[0] = header{Data: uintptr(unsafe.Pointer(unsafe.SliceData(data))), Len: uint64(len(data)), Cap: uint64(cap(data))}
	return &Product{hdr: hdr, name: data}, nil
}

// Name returns the product name.
func (p *Product) Name() string { return string(p.name) }

// NameBytes returns the storage of the name.
func (p *Product) NameBytes() []byte { return p.name }

// Printable renders buf with non-printable bytes replaced by '#'.
func Printable(buf []byte) string {
	var sb strings.Builder
	sb.Grow(len(buf))
	for _, c := range buf {
		if c < 0x20 || c > 0x7e {
			c = '#'
		}
		sb.WriteByte(c)
	}
	return sb.String()
}

// BufferDemo fills a buffer of the given size with '_', stores DemoName as a
// product through a Monotonic over that buffer with a Null upstream, and
// returns the buffer contents before and after.
func BufferDemo(size int, aware bool) (before, after string, inBuffer bool, err error) {
	// uint64 storage keeps the buffer aligned for the header
	storage := make([]uint64, (size+7)/8)
	buf := memres.AsBytes(storage)[:size]
	for i := range buf {
		buf[i] = '_'
	}
	mono := memres.NewMonotonic(buf, memres.Null())
	before = Printable(buf)

	p, err := NewProduct(mono, DemoName, aware)
	if err != nil {
		return before, Printable(buf), false, err
	}
	return before, Printable(buf), mono.InInitial(p.NameBytes()), nil
}
