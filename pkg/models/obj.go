package models

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/taigrr/rasterize/pkg/math3d"
)

// LoadOBJ loads a Wavefront OBJ file.
func LoadOBJ(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open obj: %w", err)
	}
	defer f.Close()

	mesh, err := ParseOBJ(f, filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return mesh, nil
}

// ParseOBJ reads OBJ geometry from r.
//
// Only v, vn and f records are used; everything else is ignored. Face
// corners may be written v, v/vt, v//vn or v/vt/vn, with 1-based or negative
// (relative) indices. Polygons are fan-triangulated. A corner without a
// normal index uses its vertex index instead. If the file has no vn records
// at all, smooth normals are derived from the faces.
func ParseOBJ(r io.Reader, name string) (*Mesh, error) {
	mesh := NewMesh(name)

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "v":
			v, err := parseVec3(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("line %d: vertex: %w", lineNo, err)
			}
			mesh.Positions = append(mesh.Positions, v)

		case "vn":
			n, err := parseVec3(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("line %d: normal: %w", lineNo, err)
			}
			mesh.Normals = append(mesh.Normals, n.Normalize())

		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: face needs at least 3 corners, got %d", lineNo, len(fields)-1)
			}
			corners := make([][2]int, 0, len(fields)-1)
			for _, tok := range fields[1:] {
				c, err := parseCorner(tok, len(mesh.Positions), len(mesh.Normals))
				if err != nil {
					return nil, fmt.Errorf("line %d: face corner %q: %w", lineNo, tok, err)
				}
				corners = append(corners, c)
			}
			for k := 1; k+1 < len(corners); k++ {
				a, b, c := corners[0], corners[k], corners[k+1]
				mesh.Faces = append(mesh.Faces, Face{
					V:        [3]int{a[0], b[0], c[0]},
					N:        [3]int{a[1], b[1], c[1]},
					Material: -1,
				})
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	if len(mesh.Normals) == 0 {
		if err := mesh.validatePositions(); err != nil {
			return nil, err
		}
		mesh.CalculateSmoothNormals()
	} else {
		for i := range mesh.Faces {
			f := &mesh.Faces[i]
			for k := range 3 {
				if f.N[k] < 0 {
					f.N[k] = f.V[k]
				}
			}
		}
	}

	if err := mesh.Validate(); err != nil {
		return nil, err
	}
	mesh.CalculateBounds()
	return mesh, nil
}

func parseVec3(fields []string) (math3d.Vec3, error) {
	if len(fields) < 3 {
		return math3d.Vec3{}, fmt.Errorf("want 3 components, got %d", len(fields))
	}
	var xyz [3]float64
	for i := range 3 {
		f, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return math3d.Vec3{}, err
		}
		xyz[i] = f
	}
	return math3d.V3(xyz[0], xyz[1], xyz[2]), nil
}

// parseCorner parses one "v/vt/vn" token into 0-based vertex and normal
// indices. A missing normal is returned as -1.
func parseCorner(tok string, numV, numN int) ([2]int, error) {
	parts := strings.Split(tok, "/")

	v, err := resolveIndex(parts[0], numV)
	if err != nil {
		return [2]int{}, err
	}

	n := -1
	if len(parts) > 2 && parts[2] != "" {
		n, err = resolveIndex(parts[2], numN)
		if err != nil {
			return [2]int{}, err
		}
	}
	return [2]int{v, n}, nil
}

// resolveIndex turns a 1-based or negative OBJ index into a 0-based one.
func resolveIndex(s string, count int) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	switch {
	case i > 0:
		return i - 1, nil
	case i < 0 && count+i >= 0:
		return count + i, nil
	default:
		return 0, fmt.Errorf("index %d: %w", i, ErrIndexOutOfRange)
	}
}
