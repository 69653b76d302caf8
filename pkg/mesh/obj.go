package mesh

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Faultbox/meshlab/pkg/math"
)

// ReadOBJ reads the vertex and triangle records of a Wavefront OBJ stream.
//
// A "v" record carries three coordinates and an "f" record three 1-based
// vertex indices; the keyword is matched case-insensitively. Index tokens of
// the form "i/t/n" use their first component. Every other record is skipped.
func ReadOBJ(r io.Reader) (*TriMesh, error) {
	m := New()
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}

		switch strings.ToLower(fields[0]) {
		case "v":
			v, err := parseVertex(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			m.AddVertex(v)
		case "f":
			f, err := parseFace(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			if err := m.AddFace(f[0], f[1], f[2]); err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading OBJ: %w", err)
	}
	return m, nil
}

func parseVertex(tokens []string) (math.Vec3, error) {
	if len(tokens) < 3 {
		return math.Vec3{}, fmt.Errorf("%w: vertex needs 3 coordinates, got %d", ErrParse, len(tokens))
	}
	var a [3]float32
	for i := range a {
		f, err := strconv.ParseFloat(tokens[i], 32)
		if err != nil {
			return math.Vec3{}, fmt.Errorf("%w: coordinate %q: %w", ErrParse, tokens[i], err)
		}
		a[i] = float32(f)
	}
	return math.Vec3FromArray(a), nil
}

func parseFace(tokens []string) (Face, error) {
	if len(tokens) < 3 {
		return Face{}, fmt.Errorf("%w: face needs 3 indices, got %d", ErrParse, len(tokens))
	}
	var f Face
	for i := range f {
		tok, _, _ := strings.Cut(tokens[i], "/")
		n, err := strconv.ParseUint(tok, 10, 32)
		if err != nil {
			return Face{}, fmt.Errorf("%w: index %q: %w", ErrParse, tokens[i], err)
		}
		if n == 0 {
			return Face{}, fmt.Errorf("%w: OBJ indices start at 1", ErrOutOfRange)
		}
		f[i] = uint32(n - 1)
	}
	return f, nil
}

// WriteOBJ writes m as "v x y z" records followed by "f a b c" records with
// 1-based indices. Coordinates use the shortest text that reads back to the
// same float32.
func WriteOBJ(w io.Writer, m Mesh) error {
	bw := bufio.NewWriter(w)
	buf := make([]byte, 0, 64)

	for _, v := range Vertices(m) {
		buf = append(buf[:0], 'v')
		for _, c := range v.Array() {
			buf = append(buf, ' ')
			buf = strconv.AppendFloat(buf, float64(c), 'g', -1, 32)
		}
		buf = append(buf, '\n')
		if _, err := bw.Write(buf); err != nil {
			return err
		}
	}
	for _, f := range Faces(m) {
		buf = append(buf[:0], 'f')
		for _, vi := range f {
			buf = append(buf, ' ')
			buf = strconv.AppendUint(buf, uint64(vi)+1, 10)
		}
		buf = append(buf, '\n')
		if _, err := bw.Write(buf); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// LoadOBJ reads an OBJ file from disk.
func LoadOBJ(path string) (*TriMesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening OBJ file: %w", err)
	}
	defer f.Close()

	m, err := ReadOBJ(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// SaveOBJ writes m to path, replacing any existing file.
func SaveOBJ(path string, m Mesh) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating OBJ file: %w", err)
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()
	return WriteOBJ(f, m)
}
