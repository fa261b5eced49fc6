package render

import (
	"math"

	"github.com/taigrr/rasterize/pkg/math3d"
)

// PhongShader lights a mesh with a directional key light, an optional
// diffuse-only fill light, and a Phong specular highlight.
type PhongShader struct {
	Transform

	lightDir   math3d.Vec3
	lightColor math3d.Vec3
	fillDir    math3d.Vec3
	fillColor  math3d.Vec3
	viewPos    math3d.Vec3

	ambient   math3d.Vec3
	diffuse   math3d.Vec3
	specular  math3d.Vec3
	shininess float64
	exposure  float64
}

// NewPhongShader returns a Phong shader with a white key light shining down
// -Z, no fill light, and a grey material.
func NewPhongShader() *PhongShader {
	return &PhongShader{
		Transform:  newTransform(),
		lightDir:   math3d.V3(0, 0, -1),
		lightColor: math3d.V3(1, 1, 1),
		fillDir:    math3d.V3(0, 0, -1),
		viewPos:    math3d.V3(0, 0, 3),
		ambient:    math3d.V3(0.1, 0.1, 0.1),
		diffuse:    math3d.V3(0.7, 0.7, 0.7),
		specular:   math3d.V3(0.3, 0.3, 0.3),
		shininess:  32,
		exposure:   1,
	}
}

// SetLightDirection sets the direction the key light travels in.
func (s *PhongShader) SetLightDirection(dir math3d.Vec3) {
	s.lightDir = dir.Normalize()
}

// SetLightColor sets the key light colour.
func (s *PhongShader) SetLightColor(c math3d.Vec3) {
	s.lightColor = c
}

// SetFillLight sets the fill light. A zero colour disables it.
func (s *PhongShader) SetFillLight(dir, c math3d.Vec3) {
	s.fillDir = dir.Normalize()
	s.fillColor = c
}

// SetViewPosition sets the eye position used for specular highlights.
func (s *PhongShader) SetViewPosition(pos math3d.Vec3) {
	s.viewPos = pos
}

// SetMaterial sets the surface colours and specular exponent.
func (s *PhongShader) SetMaterial(ambient, diffuse, specular math3d.Vec3, shininess float64) {
	s.ambient = ambient
	s.diffuse = diffuse
	s.specular = specular
	s.shininess = shininess
}

// SetExposure scales the key-lit colour.
func (s *PhongShader) SetExposure(exposure float64) {
	s.exposure = exposure
}

// Ambient returns the material ambient colour.
func (s *PhongShader) Ambient() math3d.Vec3 {
	return s.ambient
}

// Fragment shades one pixel. The result is not clamped.
func (s *PhongShader) Fragment(bary math3d.Vec3, v [3]VertexOutput) math3d.Vec3 {
	w, ok := perspectiveWeights(bary, v)
	if !ok {
		return s.ambient
	}

	pos := interpolate(w, v[0].WorldPosition, v[1].WorldPosition, v[2].WorldPosition)
	n := interpolate(w, v[0].Normal, v[1].Normal, v[2].Normal).Normalize()

	diff := math.Max(n.Dot(s.lightDir.Negate()), 0)
	diffuse := s.diffuse.Scale(diff)

	viewDir := s.viewPos.Sub(pos).Normalize()
	reflectDir := s.lightDir.Reflect(n).Normalize()
	spec := math.Pow(math.Max(viewDir.Dot(reflectDir), 0), s.shininess)
	specular := s.specular.Scale(spec)

	color := s.ambient.Add(diffuse).Add(specular).Scale(s.exposure).Mul(s.lightColor)

	if s.fillColor.Len() > 0 {
		fill := math.Max(n.Dot(s.fillDir.Negate()), 0)
		color = color.Add(s.diffuse.Scale(fill).Mul(s.fillColor))
	}

	return color
}
