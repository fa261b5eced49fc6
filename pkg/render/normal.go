package render

import (
	"github.com/taigrr/rasterize/pkg/math3d"
)

// NormalShader visualises world-space normals, mapping each axis from
// [-1,1] to [0,1].
type NormalShader struct {
	Transform
}

// NewNormalShader creates a normal-visualising shader.
func NewNormalShader() *NormalShader {
	return &NormalShader{Transform: newTransform()}
}

// Fragment returns the interpolated normal as a colour, or black when the
// weights sum to zero.
func (s *NormalShader) Fragment(bary math3d.Vec3, v [3]VertexOutput) math3d.Vec3 {
	w, ok := perspectiveWeights(bary, v)
	if !ok {
		return math3d.Vec3{}
	}
	n := interpolate(w, v[0].Normal, v[1].Normal, v[2].Normal).Normalize()
	return n.Add(math3d.V3(1, 1, 1)).Scale(0.5)
}
