package models

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat is returned by Load for unknown file extensions.
var ErrUnsupportedFormat = errors.New("unsupported model format")

// Load reads a mesh, choosing the parser by file extension:
// .obj, .gltf or .glb.
func Load(path string) (*Mesh, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".obj":
		return LoadOBJ(path)
	case ".gltf", ".glb":
		return LoadGLTF(path)
	default:
		return nil, fmt.Errorf("%s: %w %q", path, ErrUnsupportedFormat, ext)
	}
}
