package mesh

import (
	"fmt"

	"golang.org/x/exp/rand"

	"github.com/Faultbox/meshlab/pkg/math"
)

// DefaultSeed seeds the vertex noise of GenerateSphere.
const DefaultSeed uint64 = 42

var (
	octahedronVertices = [6]math.Vec3{
		{X: 0, Y: 1, Z: 0},
		{X: 1, Y: 0, Z: 0},
		{X: 0, Y: 0, Z: 1},
		{X: -1, Y: 0, Z: 0},
		{X: 0, Y: 0, Z: -1},
		{X: 0, Y: -1, Z: 0},
	}
	octahedronFaces = [8]Face{
		{0, 2, 1}, {0, 3, 2}, {0, 4, 3}, {0, 1, 4},
		{5, 1, 2}, {5, 2, 3}, {5, 3, 4}, {5, 4, 1},
	}
)

type edge [2]uint32

func makeEdge(a, b uint32) edge {
	if a > b {
		a, b = b, a
	}
	return edge{a, b}
}

// faceKey is the same for every ordering of a triangle's corners.
func faceKey(f Face) Face {
	a, b, c := f[0], f[1], f[2]
	if a > b {
		a, b = b, a
	}
	if b > c {
		b, c = c, b
	}
	if a > b {
		a, b = b, a
	}
	return Face{a, b, c}
}

// SphereFaceCount returns the number of faces GenerateSphere builds.
func SphereFaceCount(subdivisions int) int {
	return 8 << (2 * subdivisions)
}

// SphereVertexCount returns the number of vertices GenerateSphere builds:
// the 6 octahedron corners plus one vertex per edge split on every level.
func SphereVertexCount(subdivisions int) int {
	n := 6
	for level := 0; level < subdivisions; level++ {
		n += 3 * SphereFaceCount(level) / 2
	}
	return n
}

// GenerateSphere builds a unit sphere by subdividing an octahedron and scales
// each vertex by a normally distributed factor with mean 1 and the given
// standard deviation, drawn from a generator seeded with DefaultSeed.
func GenerateSphere(subdivisions int, stddev float32) (*TriMesh, error) {
	return GenerateSphereWithSeed(subdivisions, stddev, DefaultSeed)
}

// GenerateSphereWithSeed is GenerateSphere with an explicit noise seed.
func GenerateSphereWithSeed(subdivisions int, stddev float32, seed uint64) (*TriMesh, error) {
	if subdivisions < 0 {
		return nil, fmt.Errorf("%w: %d subdivisions", ErrInvalidSphere, subdivisions)
	}
	if stddev < 0 {
		return nil, fmt.Errorf("%w: standard deviation %v", ErrInvalidSphere, stddev)
	}

	vertices := make([]math.Vec3, 0, SphereVertexCount(subdivisions))
	vertices = append(vertices, octahedronVertices[:]...)
	faces := append([]Face(nil), octahedronFaces[:]...)

	midpoints := make(map[edge]uint32)
	midpoint := func(v0, v1 uint32) uint32 {
		e := makeEdge(v0, v1)
		if vi, ok := midpoints[e]; ok {
			return vi
		}
		vertices = append(vertices, vertices[v0].Midpoint(vertices[v1]).Normalize())
		vi := uint32(len(vertices) - 1)
		midpoints[e] = vi
		return vi
	}

	for level := 0; level < subdivisions; level++ {
		next := make([]Face, 0, 4*len(faces))
		seen := make(map[Face]struct{}, 4*len(faces))
		insert := func(f Face) {
			k := faceKey(f)
			if _, ok := seen[k]; ok {
				return
			}
			seen[k] = struct{}{}
			next = append(next, f)
		}

		for _, f := range faces {
			a := midpoint(f[0], f[1])
			b := midpoint(f[1], f[2])
			c := midpoint(f[2], f[0])

			insert(Face{a, b, c})
			insert(Face{f[0], a, c})
			insert(Face{a, f[1], b})
			insert(Face{c, b, f[2]})
		}
		faces = next
	}

	rng := rand.New(rand.NewSource(seed))
	m := NewWithCapacity(len(vertices), len(faces))
	for _, v := range vertices {
		factor := float32(1 + float64(stddev)*rng.NormFloat64())
		m.AddVertex(v.Scale(factor))
	}
	for _, f := range faces {
		if err := m.AddFace(f[0], f[1], f[2]); err != nil {
			return nil, err
		}
	}
	return m, nil
}
