package memres

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTrackingCounts(t *testing.T) {
	tr := NewTracking(nil)

	a, err := tr.Allocate(100, 8)
	require.NoError(t, err)
	b, err := tr.Allocate(28, 4)
	require.NoError(t, err)

	s := tr.Stats()
	require.Equal(t, 2, s.Allocations)
	require.Equal(t, 128, s.BytesAllocated)
	require.Equal(t, 128, s.PeakBytes)
	require.Equal(t, 128, s.Outstanding())

	tr.Deallocate(a, 8)
	s = tr.Stats()
	require.Equal(t, 1, s.Deallocations)
	require.Equal(t, 100, s.BytesDeallocated)
	require.Equal(t, 28, s.Outstanding())

	c, err := tr.Allocate(50, 8)
	require.NoError(t, err)
	require.Equal(t, 128, tr.Stats().PeakBytes)

	tr.Deallocate(b, 4)
	tr.Deallocate(c, 8)
	require.Zero(t, tr.Stats().Outstanding())

	tr.Reset()
	require.Equal(t, Stats{}, tr.Stats())
}

func TestTrackingFailedRequest(t *testing.T) {
	tr := NewTracking(Null())
	_, err := tr.Allocate(16, 8)
	require.ErrorIs(t, err, ErrExhausted)
	require.Equal(t, Stats{}, tr.Stats())
}

func TestStatsString(t *testing.T) {
	s := Stats{Allocations: 3, Deallocations: 1, BytesAllocated: 1536, BytesDeallocated: 512}
	require.Equal(t,
		"allocated 1.5 KiB in 3 allocation requests.\ndeallocated 0.5 KiB in 1 deallocation requests.",
		s.String())
}
