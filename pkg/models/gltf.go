package models

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/taigrr/rasterize/pkg/math3d"
)

// GLTFLoader loads glTF/GLB files into Mesh format.
type GLTFLoader struct {
	// CalculateNormals derives smooth normals when the file has none.
	CalculateNormals bool
}

// NewGLTFLoader creates a new glTF loader with default options.
func NewGLTFLoader() *GLTFLoader {
	return &GLTFLoader{
		CalculateNormals: true,
	}
}

// LoadGLTF loads a .gltf or .glb file with the default loader.
func LoadGLTF(path string) (*Mesh, error) {
	return NewGLTFLoader().Load(path)
}

// Load loads a glTF or GLB file and returns a Mesh.
// All triangle primitives of all meshes are merged into one Mesh.
func (l *GLTFLoader) Load(path string) (*Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}
	return l.FromDocument(doc, filepath.Base(path))
}

// FromDocument converts an already decoded glTF document.
func (l *GLTFLoader) FromDocument(doc *gltf.Document, name string) (*Mesh, error) {
	mesh := NewMesh(name)

	for _, mat := range doc.Materials {
		mesh.Materials = append(mesh.Materials, convertMaterial(mat))
	}

	hasNormals := true
	for _, m := range doc.Meshes {
		ok, err := l.processMesh(doc, m, mesh)
		if err != nil {
			return nil, fmt.Errorf("process mesh %q: %w", m.Name, err)
		}
		hasNormals = hasNormals && ok
	}

	if !hasNormals {
		if !l.CalculateNormals {
			return nil, errors.New("gltf has primitives without normals")
		}
		if err := mesh.validatePositions(); err != nil {
			return nil, err
		}
		mesh.CalculateSmoothNormals()
	}

	if err := mesh.Validate(); err != nil {
		return nil, err
	}
	mesh.CalculateBounds()

	return mesh, nil
}

func convertMaterial(mat *gltf.Material) Material {
	out := Material{Name: mat.Name, BaseColor: [4]float64{1, 1, 1, 1}}
	if pbr := mat.PBRMetallicRoughness; pbr != nil && pbr.BaseColorFactor != nil {
		out.BaseColor = *pbr.BaseColorFactor
	}
	return out
}

// processMesh extracts geometry from a glTF mesh. It reports whether every
// triangle primitive carried normals.
func (l *GLTFLoader) processMesh(doc *gltf.Document, m *gltf.Mesh, mesh *Mesh) (bool, error) {
	allNormals := true
	for _, prim := range m.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles && prim.Mode != 0 {
			// Skip non-triangle primitives (lines, points, etc)
			continue
		}

		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}

		positions, err := readVec3Accessor(doc, posIdx)
		if err != nil {
			return false, fmt.Errorf("read positions: %w", err)
		}

		var normals []math3d.Vec3
		if normIdx, ok := prim.Attributes[gltf.NORMAL]; ok {
			normals, err = readVec3Accessor(doc, normIdx)
			if err != nil {
				return false, fmt.Errorf("read normals: %w", err)
			}
		}
		if len(normals) != len(positions) {
			allNormals = false
		}

		// Positions and normals share indices, so the pools grow in step
		baseVertex := len(mesh.Positions)
		for i, p := range positions {
			mesh.Positions = append(mesh.Positions, p)
			var n math3d.Vec3
			if i < len(normals) {
				n = normals[i].Normalize()
			}
			mesh.Normals = append(mesh.Normals, n)
		}

		material := -1
		if prim.Material != nil {
			material = *prim.Material
		}

		var indices []int
		if prim.Indices != nil {
			indices, err = readIndices(doc, *prim.Indices)
			if err != nil {
				return false, fmt.Errorf("read indices: %w", err)
			}
		} else {
			// No indices, assume sequential triangles
			indices = make([]int, len(positions))
			for i := range indices {
				indices[i] = i
			}
		}

		for i := 0; i+2 < len(indices); i += 3 {
			v := [3]int{
				baseVertex + indices[i],
				baseVertex + indices[i+1],
				baseVertex + indices[i+2],
			}
			mesh.Faces = append(mesh.Faces, Face{V: v, N: v, Material: material})
		}
	}

	return allNormals, nil
}

// readVec3Accessor reads float VEC3 data from a glTF accessor.
func readVec3Accessor(doc *gltf.Document, accessorIdx int) ([]math3d.Vec3, error) {
	if accessorIdx < 0 || accessorIdx >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d: %w", accessorIdx, ErrIndexOutOfRange)
	}
	accessor := doc.Accessors[accessorIdx]
	if accessor.Type != gltf.AccessorVec3 {
		return nil, fmt.Errorf("expected VEC3, got %v", accessor.Type)
	}
	if accessor.ComponentType != gltf.ComponentFloat {
		return nil, fmt.Errorf("expected float VEC3, got %v", accessor.ComponentType)
	}

	data, stride, err := accessorBytes(doc, accessor, 12)
	if err != nil {
		return nil, err
	}

	result := make([]math3d.Vec3, accessor.Count)
	for i := range accessor.Count {
		b := data[i*stride:]
		result[i] = math3d.V3(readFloat32(b), readFloat32(b[4:]), readFloat32(b[8:]))
	}
	return result, nil
}

// readIndices reads SCALAR index data from a glTF accessor.
func readIndices(doc *gltf.Document, accessorIdx int) ([]int, error) {
	if accessorIdx < 0 || accessorIdx >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d: %w", accessorIdx, ErrIndexOutOfRange)
	}
	accessor := doc.Accessors[accessorIdx]
	if accessor.Type != gltf.AccessorScalar {
		return nil, fmt.Errorf("expected SCALAR indices, got %v", accessor.Type)
	}

	var size int
	switch accessor.ComponentType {
	case gltf.ComponentUbyte:
		size = 1
	case gltf.ComponentUshort:
		size = 2
	case gltf.ComponentUint:
		size = 4
	default:
		return nil, fmt.Errorf("unexpected index type: %v", accessor.ComponentType)
	}

	data, stride, err := accessorBytes(doc, accessor, size)
	if err != nil {
		return nil, err
	}

	result := make([]int, accessor.Count)
	for i := range accessor.Count {
		b := data[i*stride:]
		switch size {
		case 1:
			result[i] = int(b[0])
		case 2:
			result[i] = int(binary.LittleEndian.Uint16(b))
		case 4:
			result[i] = int(binary.LittleEndian.Uint32(b))
		}
	}
	return result, nil
}

// accessorBytes returns the buffer bytes starting at the accessor's first
// element, and the element stride. elemSize is the tightly packed size.
// The returned slice is checked to hold every element.
func accessorBytes(doc *gltf.Document, accessor *gltf.Accessor, elemSize int) ([]byte, int, error) {
	if accessor.BufferView == nil {
		return nil, 0, errors.New("accessor has no buffer view")
	}
	if *accessor.BufferView >= len(doc.BufferViews) {
		return nil, 0, fmt.Errorf("buffer view %d: %w", *accessor.BufferView, ErrIndexOutOfRange)
	}

	bufferView := doc.BufferViews[*accessor.BufferView]
	if bufferView.Buffer >= len(doc.Buffers) {
		return nil, 0, fmt.Errorf("buffer %d: %w", bufferView.Buffer, ErrIndexOutOfRange)
	}

	// gltf.Open resolves both GLB chunks and external URIs into Data
	bufData := doc.Buffers[bufferView.Buffer].Data
	if bufData == nil {
		return nil, 0, errors.New("buffer has no data")
	}

	stride := bufferView.ByteStride
	if stride == 0 {
		stride = elemSize
	}

	start := bufferView.ByteOffset + accessor.ByteOffset
	if accessor.Count == 0 {
		return nil, stride, nil
	}
	end := start + (accessor.Count-1)*stride + elemSize
	if start < 0 || end > len(bufData) {
		return nil, 0, fmt.Errorf("accessor reads bytes [%d, %d) of a %d byte buffer", start, end, len(bufData))
	}
	return bufData[start:end], stride, nil
}

// readFloat32 reads a little-endian float32.
func readFloat32(b []byte) float64 {
	return float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
}
