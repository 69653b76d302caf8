package mesh

import (
	"math"

	vec "github.com/Faultbox/meshlab/pkg/math"
)

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Min vec.Vec3
	Max vec.Vec3
}

// BoundsOf returns the bounding box of all vertices. An empty mesh has
// zero bounds.
func BoundsOf(m Mesh) Bounds {
	var b Bounds
	first := true
	for _, v := range Vertices(m) {
		if first {
			b.Min, b.Max = v, v
			first = false
			continue
		}
		b.Min = b.Min.Min(v)
		b.Max = b.Max.Max(v)
	}
	return b
}

// RadiusStats describes the distances of the vertices from the origin.
type RadiusStats struct {
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
}

// Radius returns distance statistics of the vertices from the origin. For a
// noisy unit sphere StdDev measures the remaining noise.
func Radius(m Mesh) RadiusStats {
	n := m.VertexCount()
	if n == 0 {
		return RadiusStats{}
	}
	rs := RadiusStats{Min: math.Inf(1), Max: math.Inf(-1)}
	var sum, sumSq float64
	for _, v := range Vertices(m) {
		l := float64(v.Length())
		sum += l
		sumSq += l * l
		rs.Min = min(rs.Min, l)
		rs.Max = max(rs.Max, l)
	}
	rs.Mean = sum / float64(n)
	rs.StdDev = math.Sqrt(max(0, sumSq/float64(n)-rs.Mean*rs.Mean))
	return rs
}

// FaceNormal returns the unit normal of face i, oriented by its winding.
// Degenerate faces have a zero normal.
func FaceNormal(m Mesh, i int) (vec.Vec3, error) {
	f, err := m.Face(i)
	if err != nil {
		return vec.Vec3{}, err
	}
	var p [3]vec.Vec3
	for k, vi := range f {
		if p[k], err = m.Vertex(int(vi)); err != nil {
			return vec.Vec3{}, err
		}
	}
	return p[1].Sub(p[0]).Cross(p[2].Sub(p[0])).Normalize(), nil
}

// OutwardFaces counts the faces whose normal points away from the origin.
// Every face of a closed convex mesh around the origin wound counterclockwise
// seen from outside is outward.
func OutwardFaces(m Mesh) (int, error) {
	count := 0
	for i, f := range Faces(m) {
		nrm, err := FaceNormal(m, i)
		if err != nil {
			return 0, err
		}
		c, err := m.Vertex(int(f[0]))
		if err != nil {
			return 0, err
		}
		if nrm.Dot(c) > 0 {
			count++
		}
	}
	return count, nil
}
