package render

import (
	"github.com/taigrr/rasterize/pkg/math3d"
)

// Camera is a look-at perspective camera. It is immutable once built; make a
// new one to move it.
type Camera struct {
	eye    math3d.Vec3
	target math3d.Vec3
	up     math3d.Vec3

	// Projection parameters
	fov    float64 // Vertical field of view in degrees
	aspect float64 // Width / Height
	near   float64 // Near plane distance
	far    float64 // Far plane distance
}

// NewCamera creates a camera at eye looking at target. up is normalized here;
// it must not be zero or parallel to target-eye. fov is the vertical field of
// view in degrees.
func NewCamera(eye, target, up math3d.Vec3, fov, aspect, near, far float64) *Camera {
	return &Camera{
		eye:    eye,
		target: target,
		up:     up.Normalize(),
		fov:    fov,
		aspect: aspect,
		near:   near,
		far:    far,
	}
}

// ViewMatrix returns the world-to-view transform.
func (c *Camera) ViewMatrix() math3d.Mat4 {
	return math3d.LookAt(c.eye, c.target, c.up)
}

// ProjectionMatrix returns the view-to-clip transform.
func (c *Camera) ProjectionMatrix() math3d.Mat4 {
	return math3d.Perspective(math3d.Radians(c.fov), c.aspect, c.near, c.far)
}

// Position returns the eye position in world space.
func (c *Camera) Position() math3d.Vec3 {
	return c.eye
}

// Target returns the point the camera looks at.
func (c *Camera) Target() math3d.Vec3 {
	return c.target
}

// FOV returns the vertical field of view in degrees.
func (c *Camera) FOV() float64 {
	return c.fov
}

// Aspect returns the width/height ratio.
func (c *Camera) Aspect() float64 {
	return c.aspect
}
