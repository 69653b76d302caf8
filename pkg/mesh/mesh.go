// Package mesh provides an indexed triangle mesh with per-vertex adjacency,
// a procedural sphere generator and a Wavefront OBJ text codec.
package mesh

import (
	"errors"
	"iter"

	"github.com/Faultbox/meshlab/pkg/math"
)

// Mesh errors.
var (
	ErrOutOfRange    = errors.New("index out of range")
	ErrParse         = errors.New("malformed mesh data")
	ErrInvalidSphere = errors.New("invalid sphere parameters")
)

// Face holds the three vertex indices of a triangle.
type Face [3]uint32

// Mesh is a triangle mesh whose vertex positions can be rewritten in place.
// Topology is fixed once the mesh is built.
type Mesh interface {
	VertexCount() int
	FaceCount() int

	Vertex(i int) (math.Vec3, error)
	SetVertex(i int, v math.Vec3) error

	// Valence returns the number of distinct neighbors of vertex i.
	Valence(i int) (int, error)
	// Neighbors copies up to len(buf) neighbors of vertex i into buf, in the
	// order they were first seen while adding faces, and returns the count.
	Neighbors(i int, buf []uint32) (int, error)

	Face(i int) (Face, error)

	// Clone returns a deep copy that shares no storage with the receiver.
	Clone() Mesh
}

// Vertices iterates over the positions of m. Each step reads the current
// position, so the sequence can be ranged over again after mutation.
func Vertices(m Mesh) iter.Seq2[int, math.Vec3] {
	return func(yield func(int, math.Vec3) bool) {
		for i := 0; i < m.VertexCount(); i++ {
			v, err := m.Vertex(i)
			if err != nil {
				return
			}
			if !yield(i, v) {
				return
			}
		}
	}
}

// Faces iterates over the faces of m.
func Faces(m Mesh) iter.Seq2[int, Face] {
	return func(yield func(int, Face) bool) {
		for i := 0; i < m.FaceCount(); i++ {
			f, err := m.Face(i)
			if err != nil {
				return
			}
			if !yield(i, f) {
				return
			}
		}
	}
}

// AverageValence returns the mean valence over all vertices of m, or 0 for an
// empty mesh.
func AverageValence(m Mesh) float64 {
	n := m.VertexCount()
	if n == 0 {
		return 0
	}
	total := 0
	for i := 0; i < n; i++ {
		v, _ := m.Valence(i)
		total += v
	}
	return float64(total) / float64(n)
}
