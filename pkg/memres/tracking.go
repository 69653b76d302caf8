package memres

import "fmt"

// Stats is a snapshot of the requests a Tracking resource has forwarded.
type Stats struct {
	Allocations      int
	Deallocations    int
	BytesAllocated   int
	BytesDeallocated int
	PeakBytes        int
}

// Outstanding returns the number of bytes allocated and not yet deallocated.
func (s Stats) Outstanding() int {
	return s.BytesAllocated - s.BytesDeallocated
}

// String formats the statistics the way the demo drivers print them.
func (s Stats) String() string {
	return fmt.Sprintf("allocated %.1f KiB in %d allocation requests.\ndeallocated %.1f KiB in %d deallocation requests.",
		float64(s.BytesAllocated)/1024, s.Allocations,
		float64(s.BytesDeallocated)/1024, s.Deallocations)
}

// Tracking forwards every request to its upstream and counts them.
type Tracking struct {
	upstream Resource
	stats    Stats
}

// NewTracking wraps upstream. A nil upstream means Heap().
func NewTracking(upstream Resource) *Tracking {
	if upstream == nil {
		upstream = Heap()
	}
	return &Tracking{upstream: upstream}
}

// Allocate implements Resource. Failed requests are not counted.
func (t *Tracking) Allocate(size, align int) ([]byte, error) {
	b, err := t.upstream.Allocate(size, align)
	if err != nil {
		return nil, err
	}
	t.stats.Allocations++
	t.stats.BytesAllocated += size
	if o := t.stats.Outstanding(); o > t.stats.PeakBytes {
		t.stats.PeakBytes = o
	}
	return b, nil
}

// Deallocate implements Resource.
func (t *Tracking) Deallocate(b []byte, align int) {
	t.stats.Deallocations++
	t.stats.BytesDeallocated += len(b)
	t.upstream.Deallocate(b, align)
}

// Stats returns the current counters.
func (t *Tracking) Stats() Stats {
	return t.stats
}

// Reset zeroes the counters.
func (t *Tracking) Reset() {
	t.stats = Stats{}
}
