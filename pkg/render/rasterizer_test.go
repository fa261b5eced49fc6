package render

import (
	"bytes"
	"image/color"
	"log/slog"
	"math"
	"slices"
	"strings"
	"testing"

	"github.com/taigrr/rasterize/pkg/math3d"
)

// mockMesh implements Mesh with shared vertex and normal indices.
type mockMesh struct {
	positions []math3d.Vec3
	normals   []math3d.Vec3
	faces     [][3]int
}

func (m *mockMesh) TriangleCount() int                 { return len(m.faces) }
func (m *mockMesh) TriangleVertexIndices(i int) [3]int { return m.faces[i] }
func (m *mockMesh) TriangleNormalIndices(i int) [3]int { return m.faces[i] }
func (m *mockMesh) VertexPosition(i int) math3d.Vec3   { return m.positions[i] }
func (m *mockMesh) VertexNormal(i int) math3d.Vec3     { return m.normals[i] }

// triangles builds a mesh of independent triangles facing +Z.
func triangles(corners ...math3d.Vec3) *mockMesh {
	m := &mockMesh{}
	for i := 0; i+2 < len(corners); i += 3 {
		m.positions = append(m.positions, corners[i], corners[i+1], corners[i+2])
		m.normals = append(m.normals, math3d.V3(0, 0, 1), math3d.V3(0, 0, 1), math3d.V3(0, 0, 1))
		m.faces = append(m.faces, [3]int{i, i + 1, i + 2})
	}
	return m
}

// testCamera looks down -Z from z=1 with a 90° FOV, so at z=0 NDC x/y equal
// world x/y.
func testCamera() *Camera {
	return NewCamera(math3d.V3(0, 0, 1), math3d.Zero3(), math3d.Up(), 90, 1, 0.5, 10)
}

func setup[S interface {
	Shader
	SetMatrices(model, view, projection math3d.Mat4)
}](s S, cam *Camera) S {
	s.SetMatrices(math3d.Identity(), cam.ViewMatrix(), cam.ProjectionMatrix())
	return s
}

// depthShader colours fragments by interpolated world z: red for z > -0.25,
// blue otherwise.
type depthShader struct {
	Transform
}

func (s *depthShader) Fragment(bary math3d.Vec3, v [3]VertexOutput) math3d.Vec3 {
	w, ok := perspectiveWeights(bary, v)
	if !ok {
		return math3d.Vec3{}
	}
	p := interpolate(w, v[0].WorldPosition, v[1].WorldPosition, v[2].WorldPosition)
	if p.Z > -0.25 {
		return math3d.V3(1, 0, 0)
	}
	return math3d.V3(0, 0, 1)
}

func TestBarycentric(t *testing.T) {
	sv := [3]rasterVertex{{X: 1, Y: 1}, {X: 7, Y: 4}, {X: 1, Y: 7}}

	tests := []struct {
		name     string
		px, py   float64
		expected math3d.Vec3
	}{
		{"vertex 0", 1, 1, math3d.V3(1, 0, 0)},
		{"vertex 1", 7, 4, math3d.V3(0, 1, 0)},
		{"vertex 2", 1, 7, math3d.V3(0, 0, 1)},
		{"centroid", 3, 4, math3d.V3(1.0/3, 1.0/3, 1.0/3)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			bc := barycentric(sv, tc.px, tc.py)

			if math.Abs(bc.X-tc.expected.X) > 1e-9 ||
				math.Abs(bc.Y-tc.expected.Y) > 1e-9 ||
				math.Abs(bc.Z-tc.expected.Z) > 1e-9 {
				t.Errorf("barycentric(%v, %v) = %v, want %v", tc.px, tc.py, bc, tc.expected)
			}
		})
	}

	t.Run("outside triangle", func(t *testing.T) {
		bc := barycentric(sv, 0, 0)
		if bc.X >= 0 && bc.Y >= 0 && bc.Z >= 0 {
			t.Error("point outside triangle should have negative barycentric coordinate")
		}
	})

	t.Run("degenerate", func(t *testing.T) {
		line := [3]rasterVertex{{X: 0, Y: 0}, {X: 2, Y: 2}, {X: 4, Y: 4}}
		if bc := barycentric(line, 1, 1); bc != math3d.V3(-1, 1, 1) {
			t.Errorf("barycentric on zero-area triangle = %v, want (-1, 1, 1)", bc)
		}
	})
}

func TestRenderGolden(t *testing.T) {
	// Screen corners land exactly on (1,1), (7,4), (1,7) of an 8×8 buffer
	mesh := triangles(
		math3d.V3(-5.0/7, 5.0/7, 0),
		math3d.V3(1, -1.0/7, 0),
		math3d.V3(-5.0/7, -1, 0),
	)
	want := []string{
		"........",
		".#......",
		".###....",
		".#####..",
		".#####..",
		".###....",
		".#......",
		"........",
	}

	r := NewRasterizer(8, 8)
	r.Render(mesh, setup(NewFlatShader(math3d.V3(1, 0.5, 0.25)), testCamera()))

	fg := color.RGBA{255, 127, 63, 255}
	fb := r.Framebuffer()
	for y, row := range want {
		for x, ch := range row {
			got := fb.RGBAAt(x, y)
			expected := Background
			if ch == '#' {
				expected = fg
			}
			if got != expected {
				t.Errorf("pixel (%d, %d) = %v, want %v", x, y, got, expected)
			}
		}
	}

	if got := r.Stats().Fragments; got != 18 {
		t.Errorf("Fragments = %d, want 18", got)
	}
}

func TestRenderDepthOrder(t *testing.T) {
	near := []math3d.Vec3{math3d.V3(-10, -10, 0), math3d.V3(10, -10, 0), math3d.V3(0, 10, 0)}
	far := []math3d.Vec3{math3d.V3(-10, -10, -0.5), math3d.V3(10, -10, -0.5), math3d.V3(0, 10, -0.5)}

	tests := []struct {
		name string
		mesh *mockMesh
	}{
		{"near first", triangles(slices.Concat(near, far)...)},
		{"far first", triangles(slices.Concat(far, near)...)},
	}

	var images [][]color.RGBA
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRasterizer(16, 16)
			r.Render(tt.mesh, setup(&depthShader{Transform: newTransform()}, testCamera()))

			red := color.RGBA{255, 0, 0, 255}
			if got := r.Framebuffer().RGBAAt(8, 8); got != red {
				t.Errorf("centre pixel = %v, want near triangle %v", got, red)
			}
			images = append(images, slices.Clone(r.Framebuffer().pixels))
		})
	}

	if len(images) == 2 && !slices.Equal(images[0], images[1]) {
		t.Error("image depends on submission order")
	}
}

func TestRenderDepthTieFirstWins(t *testing.T) {
	tri := []math3d.Vec3{math3d.V3(-10, -10, 0), math3d.V3(10, -10, 0), math3d.V3(0, 10, 0)}
	mesh := triangles(slices.Concat(tri, tri)...)

	r := NewRasterizer(4, 4)
	r.Render(mesh, setup(NewFlatShader(math3d.V3(1, 1, 1)), testCamera()))

	st := r.Stats()
	if st.Fragments != 16 {
		t.Errorf("Fragments = %d, want 16", st.Fragments)
	}
	if st.DepthRejects != 16 {
		t.Errorf("DepthRejects = %d, want 16 (equal depth must lose)", st.DepthRejects)
	}
}

func TestRenderIdempotent(t *testing.T) {
	mesh := triangles(
		math3d.V3(-0.8, -0.6, 0), math3d.V3(0.7, -0.5, -0.3), math3d.V3(0, 0.9, 0.2),
		math3d.V3(-0.9, 0.5, -0.4), math3d.V3(0.6, 0.8, 0.1), math3d.V3(0.2, -0.9, -0.2),
	)
	cam := testCamera()
	shader := setup(NewPhongShader(), cam)
	shader.SetViewPosition(cam.Position())

	r := NewRasterizer(32, 24)
	r.Render(mesh, shader)
	pixels := slices.Clone(r.fb.pixels)
	depth := slices.Clone(r.zbuf)

	r.Render(mesh, shader)
	if !slices.Equal(pixels, r.fb.pixels) {
		t.Error("second render produced different colours")
	}
	if !slices.Equal(depth, r.zbuf) {
		t.Error("second render produced different depths")
	}
}

func TestRenderClearsPreviousFrame(t *testing.T) {
	cam := testCamera()
	r := NewRasterizer(8, 8)
	r.Render(triangles(math3d.V3(-10, -10, 0), math3d.V3(10, -10, 0), math3d.V3(0, 10, 0)),
		setup(NewFlatShader(math3d.V3(1, 1, 1)), cam))

	r.Render(&mockMesh{}, setup(NewFlatShader(math3d.V3(1, 1, 1)), cam))
	for y := range 8 {
		for x := range 8 {
			if got := r.Framebuffer().RGBAAt(x, y); got != Background {
				t.Fatalf("pixel (%d, %d) = %v after empty render, want background", x, y, got)
			}
			if d := r.Depth(x, y); !math.IsInf(d, 1) {
				t.Fatalf("depth (%d, %d) = %v after empty render, want +Inf", x, y, d)
			}
		}
	}
}

func TestRenderNoWrites(t *testing.T) {
	tests := []struct {
		name        string
		mesh        *mockMesh
		wantSkipped int
	}{
		{
			name:        "degenerate",
			mesh:        triangles(math3d.V3(-0.5, -0.5, 0), math3d.V3(0, 0, 0), math3d.V3(0.5, 0.5, 0)),
			wantSkipped: 0,
		},
		{
			name:        "offscreen",
			mesh:        triangles(math3d.V3(5, 0, 0), math3d.V3(6, 0, 0), math3d.V3(5.5, 1, 0)),
			wantSkipped: 0,
		},
		{
			name:        "vertex on camera plane",
			mesh:        triangles(math3d.V3(0, 0, 1), math3d.V3(1, 0, 0), math3d.V3(0, 1, 0)),
			wantSkipped: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRasterizer(16, 16)
			r.Render(tt.mesh, setup(NewFlatShader(math3d.V3(1, 1, 1)), testCamera()))

			st := r.Stats()
			if st.Triangles != 1 {
				t.Errorf("Triangles = %d, want 1", st.Triangles)
			}
			if st.Fragments != 0 {
				t.Errorf("Fragments = %d, want 0", st.Fragments)
			}
			if st.Skipped != tt.wantSkipped {
				t.Errorf("Skipped = %d, want %d", st.Skipped, tt.wantSkipped)
			}
			for y := range 16 {
				for x := range 16 {
					if got := r.Framebuffer().RGBAAt(x, y); got != Background {
						t.Fatalf("pixel (%d, %d) = %v, want background", x, y, got)
					}
				}
			}
		})
	}
}

func TestRenderPanicsOnBadIndex(t *testing.T) {
	mesh := triangles(math3d.V3(0, 0, 0), math3d.V3(1, 0, 0), math3d.V3(0, 1, 0))
	mesh.faces[0] = [3]int{0, 1, 5}

	defer func() {
		if recover() == nil {
			t.Error("Render with out-of-range index did not panic")
		}
	}()

	r := NewRasterizer(4, 4)
	r.Render(mesh, setup(NewFlatShader(math3d.V3(1, 1, 1)), testCamera()))
}

func TestRenderDepthRange(t *testing.T) {
	mesh := triangles(math3d.V3(-10, -10, -1), math3d.V3(10, -10, -1), math3d.V3(0, 10, -1))

	r := NewRasterizer(4, 4)
	r.Render(mesh, setup(NewFlatShader(math3d.V3(1, 1, 1)), testCamera()))

	for y := range 4 {
		for x := range 4 {
			d := r.Depth(x, y)
			if d <= 0 || d >= 1 {
				t.Errorf("depth (%d, %d) = %v, want inside (0, 1)", x, y, d)
			}
		}
	}
	if d := r.Depth(-1, 0); !math.IsInf(d, 1) {
		t.Errorf("out-of-bounds depth = %v, want +Inf", d)
	}
}

func TestRenderLogsStats(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	r := NewRasterizer(4, 4)
	r.Render(triangles(math3d.V3(-10, -10, 0), math3d.V3(10, -10, 0), math3d.V3(0, 10, 0)),
		setup(NewFlatShader(math3d.V3(1, 1, 1)), testCamera()))

	out := buf.String()
	for _, want := range []string{"render complete", "triangles=1", "fragments=16", "depth_rejects=0"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q: %s", want, out)
		}
	}
}

func TestNewRasterizerZeroSize(t *testing.T) {
	r := NewRasterizer(0, 0)
	r.Render(triangles(math3d.V3(-10, -10, 0), math3d.V3(10, -10, 0), math3d.V3(0, 10, 0)),
		setup(NewFlatShader(math3d.V3(1, 1, 1)), testCamera()))
	if got := r.Stats().Fragments; got != 0 {
		t.Errorf("Fragments = %d, want 0", got)
	}
}

func BenchmarkRender(b *testing.B) {
	mesh := triangles(
		math3d.V3(-0.8, -0.6, 0), math3d.V3(0.7, -0.5, -0.3), math3d.V3(0, 0.9, 0.2),
		math3d.V3(-0.9, 0.5, -0.4), math3d.V3(0.6, 0.8, 0.1), math3d.V3(0.2, -0.9, -0.2),
	)
	shader := setup(NewPhongShader(), testCamera())
	r := NewRasterizer(256, 256)

	for b.Loop() {
		r.Render(mesh, shader)
	}
}
