package render

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/taigrr/rasterize/pkg/math3d"
)

// Mesh is the triangle source consumed by Render. Implementations live in
// pkg/models; the interface is declared here to keep render free of file
// formats.
//
// Indices returned by the triangle accessors must be valid for the vertex
// accessors. Render panics otherwise.
type Mesh interface {
	TriangleCount() int
	TriangleVertexIndices(i int) [3]int
	TriangleNormalIndices(i int) [3]int
	VertexPosition(i int) math3d.Vec3
	VertexNormal(i int) math3d.Vec3
}

// degenerateEpsilon is the smallest screen-space doubled area (in pixels²)
// treated as a real triangle.
const degenerateEpsilon = 1e-8

// Stats counts the work done by the last Render.
type Stats struct {
	Triangles    int // Triangles submitted
	Skipped      int // Triangles dropped for non-finite screen coordinates
	Fragments    int // Pixels that passed the depth test and were shaded
	DepthRejects int // Covered pixels that lost the depth test
}

// Rasterizer turns a mesh into pixels with a bounding-box scan, a
// barycentric coverage test and a depth buffer. A Rasterizer owns its
// buffers; use one per goroutine.
type Rasterizer struct {
	width  int
	height int
	fb     *Framebuffer
	zbuf   []float64 // Depth buffer (1D array, row-major)
	stats  Stats
}

// NewRasterizer creates a rasterizer with a width×height framebuffer.
func NewRasterizer(width, height int) *Rasterizer {
	width = max(width, 0)
	height = max(height, 0)
	r := &Rasterizer{
		width:  width,
		height: height,
		fb:     newFramebuffer(width, height),
		zbuf:   make([]float64, width*height),
	}
	r.clear()
	return r
}

// Width returns the framebuffer width.
func (r *Rasterizer) Width() int { return r.width }

// Height returns the framebuffer height.
func (r *Rasterizer) Height() int { return r.height }

// Framebuffer returns the colour output. Its contents change on every Render.
func (r *Rasterizer) Framebuffer() *Framebuffer { return r.fb }

// Stats returns the counters of the last Render.
func (r *Rasterizer) Stats() Stats { return r.stats }

// Depth returns the depth buffer value at (x, y), +Inf where nothing was
// drawn or when out of bounds.
func (r *Rasterizer) Depth(x, y int) float64 {
	if x < 0 || x >= r.width || y < 0 || y >= r.height {
		return math.Inf(1)
	}
	return r.zbuf[y*r.width+x]
}

func (r *Rasterizer) clear() {
	r.fb.clear()
	n := len(r.zbuf)
	if n == 0 {
		return
	}
	r.zbuf[0] = math.Inf(1)
	for i := 1; i < n; i *= 2 {
		copy(r.zbuf[i:], r.zbuf[:i])
	}
}

// rasterVertex is a shaded corner mapped to screen space.
type rasterVertex struct {
	X, Y  float64 // Pixel coordinates, +Y down
	Depth float64 // [0,1] inside the view volume
}

// Render clears both buffers and draws every triangle of mesh with shader.
// Triangles are drawn in mesh order; on equal depth the first one wins.
func (r *Rasterizer) Render(mesh Mesh, shader Shader) {
	start := time.Now()
	r.clear()
	r.stats = Stats{}

	for i := range mesh.TriangleCount() {
		r.drawTriangle(mesh, i, shader)
	}

	logger := Logger()
	if logger.Enabled(context.Background(), slog.LevelDebug) {
		logger.Debug("render complete",
			"width", r.width,
			"height", r.height,
			"triangles", r.stats.Triangles,
			"skipped", r.stats.Skipped,
			"fragments", r.stats.Fragments,
			"depth_rejects", r.stats.DepthRejects,
			"elapsed", time.Since(start),
		)
	}
}

func (r *Rasterizer) drawTriangle(mesh Mesh, tri int, shader Shader) {
	r.stats.Triangles++

	vi := mesh.TriangleVertexIndices(tri)
	ni := mesh.TriangleNormalIndices(tri)

	var out [3]VertexOutput
	var sv [3]rasterVertex
	for k := range 3 {
		out[k] = shader.Vertex(VertexInput{
			Position: mesh.VertexPosition(vi[k]),
			Normal:   mesh.VertexNormal(ni[k]),
		})
		sv[k] = r.toScreen(out[k])
	}

	// Find bounding box
	fminX := math.Floor(math.Max(0, min(sv[0].X, sv[1].X, sv[2].X)))
	fmaxX := math.Ceil(math.Min(float64(r.width-1), max(sv[0].X, sv[1].X, sv[2].X)))
	fminY := math.Floor(math.Max(0, min(sv[0].Y, sv[1].Y, sv[2].Y)))
	fmaxY := math.Ceil(math.Min(float64(r.height-1), max(sv[0].Y, sv[1].Y, sv[2].Y)))

	// A zero clip w gives infinite or NaN coordinates. NaN would survive the
	// clamps above and turn into an arbitrary int.
	if math.IsNaN(fminX + fmaxX + fminY + fmaxY) {
		r.stats.Skipped++
		return
	}
	minX, maxX := int(fminX), int(fmaxX)
	minY, maxY := int(fminY), int(fmaxY)

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			bc := barycentric(sv, float64(x)+0.5, float64(y)+0.5)
			if bc.X < 0 || bc.Y < 0 || bc.Z < 0 {
				continue
			}

			// Screen-linear, not perspective-corrected
			z := bc.X*sv[0].Depth + bc.Y*sv[1].Depth + bc.Z*sv[2].Depth

			idx := y*r.width + x
			if !(z < r.zbuf[idx]) {
				r.stats.DepthRejects++
				continue
			}

			r.zbuf[idx] = z
			r.fb.set(x, y, shader.Fragment(bc, out))
			r.stats.Fragments++
		}
	}
}

// toScreen maps a clip-space vertex to pixel coordinates and [0,1] depth.
func (r *Rasterizer) toScreen(v VertexOutput) rasterVertex {
	ndc := v.ClipPosition.Vec3().Scale(v.ReciprocalW)
	return rasterVertex{
		X:     (ndc.X + 1) * 0.5 * float64(r.width-1),
		Y:     (1 - (ndc.Y+1)*0.5) * float64(r.height-1),
		Depth: (ndc.Z + 1) * 0.5,
	}
}

// barycentric returns the weights of (px, py) relative to the triangle's
// three screen positions. A triangle with (nearly) zero screen area yields
// (-1, 1, 1), which every caller treats as outside.
func barycentric(sv [3]rasterVertex, px, py float64) math3d.Vec3 {
	u := math3d.V3(sv[1].X-sv[0].X, sv[2].X-sv[0].X, sv[0].X-px)
	v := math3d.V3(sv[1].Y-sv[0].Y, sv[2].Y-sv[0].Y, sv[0].Y-py)
	c := u.Cross(v)
	if math.Abs(c.Z) < degenerateEpsilon {
		return math3d.V3(-1, 1, 1)
	}
	return math3d.V3(1-(c.X+c.Y)/c.Z, c.X/c.Z, c.Y/c.Z)
}
