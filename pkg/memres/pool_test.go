package memres

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassIndex(t *testing.T) {
	tests := []struct {
		size int
		want int
	}{
		{1, 0},
		{8, 0},
		{9, 1},
		{16, 1},
		{17, 2},
		{1000, 7},
		{1024, 7},
		{4096, 9},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, classIndex(tt.size), "size=%d", tt.size)
	}
}

func TestPoolReuse(t *testing.T) {
	up := NewTracking(Heap())
	p := NewPool(up)

	a, err := p.Allocate(24, 8)
	require.NoError(t, err)
	require.Len(t, a, 24)
	require.Equal(t, 1, up.Stats().Allocations)
	require.Equal(t, 32*minBlocksPerChunk, up.Stats().BytesAllocated)

	p.Deallocate(a, 8)
	b, err := p.Allocate(30, 8)
	require.NoError(t, err)
	require.Equal(t, addr(a), addr(b))
	require.Equal(t, 1, up.Stats().Allocations)
}

func TestPoolRefillGrows(t *testing.T) {
	up := NewTracking(Heap())
	p := NewPool(up)

	seen := make(map[uintptr]bool)
	for i := 0; i < minBlocksPerChunk*3; i++ {
		b, err := p.Allocate(8, 8)
		require.NoError(t, err)
		require.Zero(t, addr(b)%8)
		require.False(t, seen[addr(b)], "block handed out twice")
		seen[addr(b)] = true
	}
	require.Equal(t, 2, p.Chunks())
	require.Equal(t, 8*minBlocksPerChunk*3, up.Stats().BytesAllocated)

	p.Release()
	require.Zero(t, p.Chunks())
	require.Zero(t, up.Stats().Outstanding())
}

func TestPoolOversized(t *testing.T) {
	up := NewTracking(Heap())
	p := NewPool(up)

	b, err := p.Allocate(maxBlockSize+1, 8)
	require.NoError(t, err)
	require.Equal(t, 1, up.Stats().Allocations)
	require.Equal(t, maxBlockSize+1, up.Stats().BytesAllocated)

	p.Deallocate(b, 8)
	require.Zero(t, up.Stats().Outstanding())

	_, err = p.Allocate(maxBlockSize*2, 8)
	require.NoError(t, err)
	p.Release()
	require.Zero(t, up.Stats().Outstanding())
	require.Zero(t, p.Chunks())
}

func TestPoolAlignment(t *testing.T) {
	p := NewPool(nil)
	for _, align := range []int{1, 4, 16, 64, 256} {
		b, err := p.Allocate(3, align)
		require.NoError(t, err)
		require.Zero(t, addr(b)%uintptr(align))
		p.Deallocate(b, align)
	}
}

func TestPoolUpstreamFailure(t *testing.T) {
	p := NewPool(Null())
	_, err := p.Allocate(16, 8)
	require.ErrorIs(t, err, ErrExhausted)
}
