// Package workload drives the memory resources with allocator-aware
// containers, so their statistics can be compared on identical request
// streams.
package workload

import (
	"fmt"

	"github.com/Faultbox/meshlab/pkg/memres"
)

// Entry is the value stored per key.
type Entry struct {
	Key    uint64
	Value  uint64
	Weight float32
}

type slot struct {
	node []Entry // one element, owned by the table's resource
	pos  int     // index into order
}

// Table is a node-based hash table whose nodes and key order array come
// from a Resource. Every insert allocates one node, every erase frees it,
// and the order array grows by doubling like a vector.
//
// The Go map only indexes nodes; it holds no entry data.
type Table struct {
	res   memres.Resource
	index map[uint64]slot
	order []uint64 // keys in insertion order modulo swap-removals; resource memory
	n     int
}

// NewTable returns an empty table allocating from r.
func NewTable(r memres.Resource) *Table {
	return &Table{res: r, index: make(map[uint64]slot)}
}

// Len returns the number of entries.
func (t *Table) Len() int { return t.n }

// Get returns the entry stored under key.
func (t *Table) Get(key uint64) (Entry, bool) {
	s, ok := t.index[key]
	if !ok {
		return Entry{}, false
	}
	return s.node[0], true
}

// Insert adds e unless its key is present. It reports whether e was added.
func (t *Table) Insert(e Entry) (bool, error) {
	if _, ok := t.index[e.Key]; ok {
		return false, nil
	}
	if err := t.grow(); err != nil {
		return false, err
	}
	node, err := memres.Slice[Entry](t.res, 1)
	if err != nil {
		return false, fmt.Errorf("allocating node: %w", err)
	}
	node[0] = e
	t.order[t.n] = e.Key
	t.index[e.Key] = slot{node: node, pos: t.n}
	t.n++
	return true, nil
}

func (t *Table) grow() error {
	if t.n < len(t.order) {
		return nil
	}
	size := max(8, 2*len(t.order))
	order, err := memres.Slice[uint64](t.res, size)
	if err != nil {
		return fmt.Errorf("growing order array to %d: %w", size, err)
	}
	copy(order, t.order[:t.n])
	memres.FreeSlice(t.res, t.order)
	t.order = order
	return nil
}

// EraseAt removes the entry at position i of the order array, 0 <= i < Len().
func (t *Table) EraseAt(i int) {
	key := t.order[i]
	s := t.index[key]
	delete(t.index, key)
	memres.FreeSlice(t.res, s.node)

	last := t.n - 1
	if i != last {
		moved := t.order[last]
		t.order[i] = moved
		ms := t.index[moved]
		ms.pos = i
		t.index[moved] = ms
	}
	t.n--
}

// Erase removes key and reports whether it was present.
func (t *Table) Erase(key uint64) bool {
	s, ok := t.index[key]
	if !ok {
		return false
	}
	t.EraseAt(s.pos)
	return true
}

// Clear frees every node and the order array.
func (t *Table) Clear() {
	for _, s := range t.index {
		memres.FreeSlice(t.res, s.node)
	}
	clear(t.index)
	memres.FreeSlice(t.res, t.order)
	t.order = nil
	t.n = 0
}
