// Package smooth implements uniform Laplacian smoothing of triangle meshes.
//
// The neighbor indices of every visited vertex are copied into a scratch
// buffer supplied by a Strategy. Strategies differ only in how that buffer is
// allocated; all of them produce bit-identical positions.
package smooth

import (
	"errors"
	"fmt"

	"github.com/Faultbox/meshlab/pkg/math"
	"github.com/Faultbox/meshlab/pkg/mesh"
)

// ErrInvalidIterations is returned for a negative iteration count.
var ErrInvalidIterations = errors.New("iterations must not be negative")

// Laplacian moves every vertex of m to the mean of its neighbors, iterations
// times. Each pass reads the positions as they were at the start of the pass.
// Vertices without neighbors keep their position. Only positions change.
func Laplacian[S Strategy](m mesh.Mesh, iterations int, s S) error {
	if iterations < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidIterations, iterations)
	}
	n := m.VertexCount()
	if iterations == 0 || n == 0 {
		return nil
	}

	orig := make([]math.Vec3, n)
	for pass := 0; pass < iterations; pass++ {
		for i, v := range mesh.Vertices(m) {
			orig[i] = v
		}
		for i := 0; i < n; i++ {
			v, err := smoothed(m, i, orig, s)
			if err != nil {
				return fmt.Errorf("pass %d: %w", pass, err)
			}
			if err := m.SetVertex(i, v); err != nil {
				return fmt.Errorf("pass %d: %w", pass, err)
			}
		}
	}
	return nil
}

func smoothed[S Strategy](m mesh.Mesh, i int, orig []math.Vec3, s S) (math.Vec3, error) {
	valence, err := m.Valence(i)
	if err != nil {
		return math.Vec3{}, err
	}
	if valence == 0 {
		return orig[i], nil
	}

	buf, err := s.Buffer(valence)
	if err != nil {
		return math.Vec3{}, err
	}
	defer s.Rewind()

	k, err := m.Neighbors(i, buf)
	if err != nil {
		return math.Vec3{}, err
	}

	var sum math.Vec3
	for _, vi := range buf[:k] {
		sum = sum.Add(orig[vi])
	}
	return sum.Scale(1 / float32(valence)), nil
}

// Run smooths m with a new strategy of the given kind. The strategy lives
// for this call only.
func Run(m mesh.Mesh, iterations int, kind Kind) error {
	s, err := NewStrategy(kind, nil)
	if err != nil {
		return err
	}
	return Laplacian(m, iterations, s)
}
