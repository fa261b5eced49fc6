package render

import (
	"github.com/taigrr/rasterize/pkg/math3d"
)

// WireframeShader overlays triangle edges on another shader. A fragment
// whose smallest barycentric weight is below the edge width gets the edge
// colour; everything else is shaded by the inner shader.
//
// Edge width is in barycentric units, so edges look thicker on small
// triangles.
type WireframeShader struct {
	inner Shader
	color math3d.Vec3
	width float64
}

// NewWireframeShader wraps inner with edges of the given colour and width.
func NewWireframeShader(inner Shader, color math3d.Vec3, width float64) *WireframeShader {
	return &WireframeShader{inner: inner, color: color, width: width}
}

// Vertex delegates to the inner shader.
func (s *WireframeShader) Vertex(in VertexInput) VertexOutput {
	return s.inner.Vertex(in)
}

// Fragment returns the edge colour near an edge and the inner shader's colour
// elsewhere.
func (s *WireframeShader) Fragment(bary math3d.Vec3, v [3]VertexOutput) math3d.Vec3 {
	if min(bary.X, bary.Y, bary.Z) < s.width {
		return s.color
	}
	return s.inner.Fragment(bary, v)
}
