// Package models loads triangle meshes from OBJ and glTF files into the shape
// the rasterizer consumes.
package models

import (
	"errors"
	"fmt"

	"github.com/taigrr/rasterize/pkg/math3d"
)

// ErrIndexOutOfRange is returned when a face references a position or
// normal that does not exist.
var ErrIndexOutOfRange = errors.New("index out of range")

// Mesh is an indexed triangle mesh with separate position and normal pools.
// It implements render.Mesh.
type Mesh struct {
	Name      string
	Positions []math3d.Vec3
	Normals   []math3d.Vec3
	Faces     []Face
	Materials []Material

	// Bounding box (calculated on load)
	BoundsMin math3d.Vec3
	BoundsMax math3d.Vec3
}

// Face is a triangle. V indexes Mesh.Positions and N indexes Mesh.Normals.
type Face struct {
	V        [3]int
	N        [3]int
	Material int // Index into Mesh.Materials (-1 for no material)
}

// Material is the part of a glTF PBR material the Phong shader can use.
type Material struct {
	Name      string
	BaseColor [4]float64 // RGBA in 0-1 range
}

// NewMesh creates an empty mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{
		Name:      name,
		Positions: make([]math3d.Vec3, 0),
		Normals:   make([]math3d.Vec3, 0),
		Faces:     make([]Face, 0),
	}
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Faces)
}

// TriangleVertexIndices returns the position indices of face i.
func (m *Mesh) TriangleVertexIndices(i int) [3]int {
	return m.Faces[i].V
}

// TriangleNormalIndices returns the normal indices of face i.
func (m *Mesh) TriangleNormalIndices(i int) [3]int {
	return m.Faces[i].N
}

// VertexPosition returns position i.
func (m *Mesh) VertexPosition(i int) math3d.Vec3 {
	return m.Positions[i]
}

// VertexNormal returns normal i.
func (m *Mesh) VertexNormal(i int) math3d.Vec3 {
	return m.Normals[i]
}

// VertexCount returns the number of positions.
func (m *Mesh) VertexCount() int {
	return len(m.Positions)
}

// Validate checks that every face index is in range.
func (m *Mesh) Validate() error {
	if err := m.validatePositions(); err != nil {
		return err
	}
	for i, f := range m.Faces {
		for k := range 3 {
			if f.N[k] < 0 || f.N[k] >= len(m.Normals) {
				return fmt.Errorf("face %d: normal %d: %w", i, f.N[k], ErrIndexOutOfRange)
			}
		}
		if f.Material < -1 || f.Material >= len(m.Materials) {
			return fmt.Errorf("face %d: material %d: %w", i, f.Material, ErrIndexOutOfRange)
		}
	}
	return nil
}

// validatePositions checks the position indices only. It must pass before
// CalculateSmoothNormals runs.
func (m *Mesh) validatePositions() error {
	for i, f := range m.Faces {
		for _, v := range f.V {
			if v < 0 || v >= len(m.Positions) {
				return fmt.Errorf("face %d: vertex %d: %w", i, v, ErrIndexOutOfRange)
			}
		}
	}
	return nil
}

// CalculateBounds computes the axis-aligned bounding box.
func (m *Mesh) CalculateBounds() {
	if len(m.Positions) == 0 {
		m.BoundsMin, m.BoundsMax = math3d.Zero3(), math3d.Zero3()
		return
	}

	m.BoundsMin = m.Positions[0]
	m.BoundsMax = m.Positions[0]

	for _, p := range m.Positions[1:] {
		m.BoundsMin = m.BoundsMin.Min(p)
		m.BoundsMax = m.BoundsMax.Max(p)
	}
}

// Center returns the center of the bounding box.
func (m *Mesh) Center() math3d.Vec3 {
	return m.BoundsMin.Add(m.BoundsMax).Scale(0.5)
}

// Size returns the dimensions of the bounding box.
func (m *Mesh) Size() math3d.Vec3 {
	return m.BoundsMax.Sub(m.BoundsMin)
}

// CalculateSmoothNormals replaces the normal pool with one normal per
// position: the renormalized sum of the unit normals of every face touching
// it. Faces are re-pointed so N == V. Positions no face uses get a zero
// normal.
func (m *Mesh) CalculateSmoothNormals() {
	normals := make([]math3d.Vec3, len(m.Positions))

	for i := range m.Faces {
		f := &m.Faces[i]
		v0 := m.Positions[f.V[0]]
		v1 := m.Positions[f.V[1]]
		v2 := m.Positions[f.V[2]]

		// Unit face normal: each face counts once regardless of area
		n := v1.Sub(v0).Cross(v2.Sub(v0)).Normalize()
		for k := range 3 {
			normals[f.V[k]] = normals[f.V[k]].Add(n)
		}
		f.N = f.V
	}

	for i := range normals {
		normals[i] = normals[i].Normalize()
	}
	m.Normals = normals
}

// Transform applies mat to every position and normal, then recomputes the
// bounds. Normals go through TransformDirection and share its limitation
// under non-uniform scale.
func (m *Mesh) Transform(mat math3d.Mat4) {
	for i := range m.Positions {
		m.Positions[i] = mat.TransformPoint(m.Positions[i])
	}
	for i := range m.Normals {
		m.Normals[i] = mat.TransformDirection(m.Normals[i])
	}
	m.CalculateBounds()
}

// Fit recentres the mesh on the origin and scales it uniformly so its
// largest dimension equals size.
func (m *Mesh) Fit(size float64) {
	s := m.Size()
	extent := max(s.X, s.Y, s.Z)
	if extent == 0 {
		m.Transform(math3d.Translate(m.Center().Negate()))
		return
	}
	m.Transform(math3d.ScaleUniform(size / extent).Mul(math3d.Translate(m.Center().Negate())))
}

// BaseColor returns the RGB base colour of the first material, if any.
func (m *Mesh) BaseColor() (math3d.Vec3, bool) {
	if len(m.Materials) == 0 {
		return math3d.Vec3{}, false
	}
	c := m.Materials[0].BaseColor
	return math3d.V3(c[0], c[1], c[2]), true
}

// Clone creates a deep copy of the mesh.
func (m *Mesh) Clone() *Mesh {
	clone := &Mesh{
		Name:      m.Name,
		Positions: make([]math3d.Vec3, len(m.Positions)),
		Normals:   make([]math3d.Vec3, len(m.Normals)),
		Faces:     make([]Face, len(m.Faces)),
		Materials: make([]Material, len(m.Materials)),
		BoundsMin: m.BoundsMin,
		BoundsMax: m.BoundsMax,
	}
	copy(clone.Positions, m.Positions)
	copy(clone.Normals, m.Normals)
	copy(clone.Faces, m.Faces)
	copy(clone.Materials, m.Materials)
	return clone
}
