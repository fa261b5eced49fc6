package render

import (
	"github.com/taigrr/rasterize/pkg/math3d"
)

// VertexInput is one mesh corner handed to Shader.Vertex.
type VertexInput struct {
	Position math3d.Vec3 // Model space
	Normal   math3d.Vec3 // Model space
}

// VertexOutput is what the vertex stage produces for one corner.
type VertexOutput struct {
	ClipPosition  math3d.Vec4
	WorldPosition math3d.Vec3
	Normal        math3d.Vec3 // World space, unit length
	ReciprocalW   float64     // 1 / ClipPosition.W, for perspective-correct interpolation
}

// Shader is the programmable stage of the pipeline.
//
// Vertex is called three times per triangle. Fragment is called once per
// covered pixel with the screen-space barycentric weights of the pixel centre
// and the three vertex outputs of its triangle; it returns a linear RGB colour
// that the framebuffer clamps to [0,1].
//
// A shader must not be reconfigured while a render that uses it is running.
type Shader interface {
	Vertex(in VertexInput) VertexOutput
	Fragment(bary math3d.Vec3, v [3]VertexOutput) math3d.Vec3
}

// Transform holds the matrices shared by the built-in shaders.
// The MVP product is recomputed whenever SetMatrices is called.
type Transform struct {
	model      math3d.Mat4
	view       math3d.Mat4
	projection math3d.Mat4
	mvp        math3d.Mat4
}

func newTransform() Transform {
	id := math3d.Identity()
	return Transform{model: id, view: id, projection: id, mvp: id}
}

// SetMatrices sets model, view and projection together.
func (t *Transform) SetMatrices(model, view, projection math3d.Mat4) {
	t.model = model
	t.view = view
	t.projection = projection
	t.mvp = projection.Mul(view).Mul(model)
}

// MVP returns projection * view * model.
func (t *Transform) MVP() math3d.Mat4 {
	return t.mvp
}

// Model returns the model matrix.
func (t *Transform) Model() math3d.Mat4 {
	return t.model
}

// Vertex runs the standard vertex transform: clip position via the MVP,
// world position and normal via the model matrix.
// A clip w of exactly zero yields an infinite ReciprocalW; the rasterizer
// drops such triangles.
func (t *Transform) Vertex(in VertexInput) VertexOutput {
	clip := t.mvp.MulVec4(math3d.V4FromV3(in.Position, 1))
	return VertexOutput{
		ClipPosition:  clip,
		WorldPosition: t.model.MulVec4(math3d.V4FromV3(in.Position, 1)).Vec3(),
		Normal:        t.model.TransformDirection(in.Normal),
		ReciprocalW:   1 / clip.W,
	}
}

// perspectiveWeights turns screen-space barycentrics into perspective-correct
// ones. ok is false when the weights sum to zero.
func perspectiveWeights(bary math3d.Vec3, v [3]VertexOutput) (w math3d.Vec3, ok bool) {
	w = math3d.V3(
		bary.X*v[0].ReciprocalW,
		bary.Y*v[1].ReciprocalW,
		bary.Z*v[2].ReciprocalW,
	)
	sum := w.X + w.Y + w.Z
	if sum == 0 {
		return math3d.Vec3{}, false
	}
	return w.Scale(1 / sum), true
}

func interpolate(w math3d.Vec3, a, b, c math3d.Vec3) math3d.Vec3 {
	return a.Scale(w.X).Add(b.Scale(w.Y)).Add(c.Scale(w.Z))
}
