package mesh

import (
	"fmt"
	"slices"

	"github.com/Faultbox/meshlab/pkg/math"
)

// TriMesh is the in-memory Mesh implementation.
type TriMesh struct {
	vertices  []math.Vec3
	neighbors [][]uint32
	faces     []Face
}

// New returns an empty mesh.
func New() *TriMesh {
	return &TriMesh{}
}

// NewWithCapacity returns an empty mesh with room for the given number of
// vertices and faces.
func NewWithCapacity(vertices, faces int) *TriMesh {
	return &TriMesh{
		vertices:  make([]math.Vec3, 0, vertices),
		neighbors: make([][]uint32, 0, vertices),
		faces:     make([]Face, 0, faces),
	}
}

func (m *TriMesh) VertexCount() int { return len(m.vertices) }

func (m *TriMesh) FaceCount() int { return len(m.faces) }

func (m *TriMesh) checkVertex(i int) error {
	if i < 0 || i >= len(m.vertices) {
		return fmt.Errorf("%w: vertex %d of %d", ErrOutOfRange, i, len(m.vertices))
	}
	return nil
}

// Vertex returns the position of vertex i.
func (m *TriMesh) Vertex(i int) (math.Vec3, error) {
	if err := m.checkVertex(i); err != nil {
		return math.Vec3{}, err
	}
	return m.vertices[i], nil
}

// SetVertex overwrites the position of vertex i.
func (m *TriMesh) SetVertex(i int, v math.Vec3) error {
	if err := m.checkVertex(i); err != nil {
		return err
	}
	m.vertices[i] = v
	return nil
}

// Valence returns the number of neighbors of vertex i.
func (m *TriMesh) Valence(i int) (int, error) {
	if err := m.checkVertex(i); err != nil {
		return 0, err
	}
	return len(m.neighbors[i]), nil
}

// Neighbors copies the first len(buf) neighbors of vertex i into buf.
func (m *TriMesh) Neighbors(i int, buf []uint32) (int, error) {
	if err := m.checkVertex(i); err != nil {
		return 0, err
	}
	return copy(buf, m.neighbors[i]), nil
}

// Face returns face i.
func (m *TriMesh) Face(i int) (Face, error) {
	if i < 0 || i >= len(m.faces) {
		return Face{}, fmt.Errorf("%w: face %d of %d", ErrOutOfRange, i, len(m.faces))
	}
	return m.faces[i], nil
}

// AddVertex appends a vertex and returns its index.
func (m *TriMesh) AddVertex(v math.Vec3) uint32 {
	m.vertices = append(m.vertices, v)
	m.neighbors = append(m.neighbors, nil)
	return uint32(len(m.vertices) - 1)
}

// AddFace appends the triangle (a, b, c) and links each corner to the other
// two. Links that already exist are not repeated. The mesh is left untouched
// if any index is out of range.
func (m *TriMesh) AddFace(a, b, c uint32) error {
	f := Face{a, b, c}
	for _, vi := range f {
		if err := m.checkVertex(int(vi)); err != nil {
			return fmt.Errorf("adding face %v: %w", f, err)
		}
	}
	m.faces = append(m.faces, f)

	for k := 0; k < 3; k++ {
		v := f[k]
		m.link(v, f[(k+1)%3])
		m.link(v, f[(k+2)%3])
	}
	return nil
}

func (m *TriMesh) link(v, n uint32) {
	if v == n || slices.Contains(m.neighbors[v], n) {
		return
	}
	m.neighbors[v] = append(m.neighbors[v], n)
}

// Clone implements Mesh.
func (m *TriMesh) Clone() Mesh {
	return m.clone()
}

func (m *TriMesh) clone() *TriMesh {
	c := &TriMesh{
		vertices:  slices.Clone(m.vertices),
		faces:     slices.Clone(m.faces),
		neighbors: make([][]uint32, len(m.neighbors)),
	}

	total := 0
	for _, n := range m.neighbors {
		total += len(n)
	}
	// one backing array for all neighbor lists; full slice expressions keep
	// an append on one list from running into the next
	backing := make([]uint32, 0, total)
	for i, n := range m.neighbors {
		start := len(backing)
		backing = append(backing, n...)
		c.neighbors[i] = backing[start:len(backing):len(backing)]
	}
	return c
}
