package render

import (
	"github.com/taigrr/rasterize/pkg/math3d"
)

// FlatShader paints every covered pixel the same colour.
type FlatShader struct {
	Transform
	color math3d.Vec3
}

// NewFlatShader creates a flat shader of the given colour.
func NewFlatShader(c math3d.Vec3) *FlatShader {
	return &FlatShader{Transform: newTransform(), color: c}
}

// SetColor changes the fill colour.
func (s *FlatShader) SetColor(c math3d.Vec3) {
	s.color = c
}

// Fragment ignores its inputs.
func (s *FlatShader) Fragment(math3d.Vec3, [3]VertexOutput) math3d.Vec3 {
	return s.color
}
