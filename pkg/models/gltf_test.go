package models

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/taigrr/rasterize/pkg/math3d"
)

func index(i int) *int { return &i }

// triangleDoc builds an in-memory glTF document holding one indexed triangle.
// Layout: positions (36 bytes), optional normals (36 bytes), ushort indices.
func triangleDoc(withNormals bool) *gltf.Document {
	var data []byte
	putVec3 := func(v ...float32) {
		for _, f := range v {
			data = binary.LittleEndian.AppendUint32(data, math.Float32bits(f))
		}
	}

	putVec3(0, 0, 0, 2, 0, 0, 0, 1, 0)
	doc := &gltf.Document{
		BufferViews: []*gltf.BufferView{{Buffer: 0, ByteOffset: 0}},
		Accessors: []*gltf.Accessor{
			{BufferView: index(0), ComponentType: gltf.ComponentFloat, Count: 3, Type: gltf.AccessorVec3},
		},
		Materials: []*gltf.Material{{
			Name: "red",
			PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
				BaseColorFactor: &[4]float64{1, 0, 0, 1},
			},
		}},
	}
	attrs := map[string]int{gltf.POSITION: 0}

	if withNormals {
		putVec3(0, 0, 3, 0, 0, 1, 0, 0, 1)
		doc.BufferViews = append(doc.BufferViews, &gltf.BufferView{Buffer: 0, ByteOffset: 36})
		doc.Accessors = append(doc.Accessors, &gltf.Accessor{
			BufferView: index(1), ComponentType: gltf.ComponentFloat, Count: 3, Type: gltf.AccessorVec3,
		})
		attrs[gltf.NORMAL] = 1
	}

	idxOffset := len(data)
	for _, i := range []uint16{0, 1, 2} {
		data = binary.LittleEndian.AppendUint16(data, i)
	}
	doc.BufferViews = append(doc.BufferViews, &gltf.BufferView{Buffer: 0, ByteOffset: idxOffset})
	doc.Accessors = append(doc.Accessors, &gltf.Accessor{
		BufferView:    index(len(doc.BufferViews) - 1),
		ComponentType: gltf.ComponentUshort,
		Count:         3,
		Type:          gltf.AccessorScalar,
	})

	doc.Buffers = []*gltf.Buffer{{Data: data}}
	doc.Meshes = []*gltf.Mesh{{
		Name: "tri",
		Primitives: []*gltf.Primitive{{
			Attributes: attrs,
			Indices:    index(len(doc.Accessors) - 1),
			Material:   index(0),
		}},
	}}
	return doc
}

func TestGLTFFromDocument(t *testing.T) {
	tests := []struct {
		name        string
		withNormals bool
	}{
		{"with normals", true},
		{"derived normals", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mesh, err := NewGLTFLoader().FromDocument(triangleDoc(tt.withNormals), "tri.glb")
			if err != nil {
				t.Fatalf("FromDocument: %v", err)
			}

			if mesh.TriangleCount() != 1 {
				t.Fatalf("TriangleCount() = %d, want 1", mesh.TriangleCount())
			}
			if got := mesh.TriangleVertexIndices(0); got != [3]int{0, 1, 2} {
				t.Errorf("TriangleVertexIndices(0) = %v, want CCW order preserved", got)
			}
			if got := mesh.VertexPosition(1); got != math3d.V3(2, 0, 0) {
				t.Errorf("VertexPosition(1) = %v", got)
			}
			for i := range 3 {
				if !approxVec3(mesh.VertexNormal(i), math3d.V3(0, 0, 1)) {
					t.Errorf("VertexNormal(%d) = %v, want unit +Z", i, mesh.VertexNormal(i))
				}
			}
			if c, ok := mesh.BaseColor(); !ok || c != math3d.V3(1, 0, 0) {
				t.Errorf("BaseColor() = %v, %v", c, ok)
			}
			if mesh.Faces[0].Material != 0 {
				t.Errorf("face material = %d, want 0", mesh.Faces[0].Material)
			}
		})
	}
}

func TestGLTFWithoutNormalsWhenDisabled(t *testing.T) {
	loader := &GLTFLoader{CalculateNormals: false}
	if _, err := loader.FromDocument(triangleDoc(false), "tri.glb"); err == nil {
		t.Error("expected error for missing normals with CalculateNormals disabled")
	}
}

func TestGLTFBadIndices(t *testing.T) {
	doc := triangleDoc(true)
	// Patch the last index to point past the three vertices
	data := doc.Buffers[0].Data
	binary.LittleEndian.PutUint16(data[len(data)-2:], 7)

	_, err := NewGLTFLoader().FromDocument(doc, "bad.glb")
	if !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("error = %v, want ErrIndexOutOfRange", err)
	}
}

func TestGLTFTruncatedBuffer(t *testing.T) {
	doc := triangleDoc(false)
	doc.Buffers[0].Data = doc.Buffers[0].Data[:20]

	if _, err := NewGLTFLoader().FromDocument(doc, "short.glb"); err == nil {
		t.Error("expected error for truncated buffer")
	}
}

func TestLoadGLTFInvalidPath(t *testing.T) {
	_, err := LoadGLTF("/nonexistent/path.glb")
	if err == nil {
		t.Error("Expected error for nonexistent file")
	}
}

func TestGLTFLoaderCreation(t *testing.T) {
	loader := NewGLTFLoader()
	if loader == nil {
		t.Fatal("NewGLTFLoader returned nil")
	}
	if !loader.CalculateNormals {
		t.Error("CalculateNormals should default to true")
	}
}
