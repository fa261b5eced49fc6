// Package scene describes everything needed to render a mesh: image size,
// camera, model transform, lights and material. Scenes are stored as YAML.
package scene

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/taigrr/rasterize/pkg/math3d"
	"github.com/taigrr/rasterize/pkg/render"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid scene config")

// Shader names accepted in Config.Shader.
const (
	ShaderPhong  = "phong"
	ShaderFlat   = "flat"
	ShaderNormal = "normal"
	// ShaderWireframe is phong with triangle edges drawn over it.
	ShaderWireframe = "wireframe"
)

// Vec is a YAML-friendly 3-vector, written as [x, y, z].
type Vec [3]float64

// V3 converts to a math3d vector.
func (v Vec) V3() math3d.Vec3 { return math3d.V3(v[0], v[1], v[2]) }

// Config is a complete scene description.
type Config struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Model  string `yaml:"model,omitempty"`
	Output string `yaml:"output"`
	Shader string `yaml:"shader"`

	// Fit recentres the model and scales its largest side to 2 units
	// before the transform below is applied.
	Fit bool `yaml:"fit,omitempty"`
	// Scale resizes the rendered image before it is written. 0 or 1 keeps
	// the render size.
	Scale float64 `yaml:"scale,omitempty"`

	Camera    CameraConfig    `yaml:"camera"`
	Transform TransformConfig `yaml:"transform"`
	Light     LightConfig     `yaml:"light"`
	Fill      LightConfig     `yaml:"fill"`
	Material  MaterialConfig  `yaml:"material"`
	Exposure  float64         `yaml:"exposure"`
	Wireframe WireframeConfig `yaml:"wireframe"`
	Turntable TurntableConfig `yaml:"turntable"`
}

// CameraConfig places the camera.
type CameraConfig struct {
	Eye    Vec     `yaml:"eye"`
	Target Vec     `yaml:"target"`
	Up     Vec     `yaml:"up"`
	FOV    float64 `yaml:"fov"` // vertical, degrees
	Near   float64 `yaml:"near"`
	Far    float64 `yaml:"far"`
}

// TransformConfig positions the model in the world.
type TransformConfig struct {
	Translate Vec     `yaml:"translate"`
	Scale     float64 `yaml:"scale"`
	Yaw       float64 `yaml:"yaw,omitempty"` // degrees
}

// LightConfig is a directional light.
type LightConfig struct {
	// Direction the light travels in; normalized on use.
	Direction Vec `yaml:"direction"`
	Color     Vec `yaml:"color"`
}

// MaterialConfig holds the Phong material colours.
type MaterialConfig struct {
	Ambient   Vec     `yaml:"ambient"`
	Diffuse   Vec     `yaml:"diffuse"`
	Specular  Vec     `yaml:"specular"`
	Shininess float64 `yaml:"shininess"`
	// FromModel replaces Diffuse with the model's first material base
	// colour when it has one.
	FromModel bool `yaml:"fromModel,omitempty"`
}

// WireframeConfig styles the edges of the wireframe shader.
type WireframeConfig struct {
	Color Vec `yaml:"color"`
	// Width in barycentric units, in (0, 1/3).
	Width float64 `yaml:"width"`
}

// Default returns the reference scene: a 1024×1024 portrait of a model at
// the origin, lit by a warm key light and a cool fill.
func Default() Config {
	return Config{
		Width:  1024,
		Height: 1024,
		Output: "output.png",
		Shader: ShaderPhong,
		Camera: CameraConfig{
			Eye:    Vec{0, 0.1, 4.2},
			Target: Vec{0, 0, 0},
			Up:     Vec{0, 1, 0},
			FOV:    45,
			Near:   0.1,
			Far:    10,
		},
		Transform: TransformConfig{
			Translate: Vec{0, -0.05, 0},
			Scale:     1.4,
		},
		Light: LightConfig{
			Direction: Vec{0.4, 0.8, 0.1},
			Color:     Vec{1, 0.96, 0.9},
		},
		Fill: LightConfig{
			Direction: Vec{-0.3, 0.4, -0.2},
			Color:     Vec{0.45, 0.5, 0.6},
		},
		Material: MaterialConfig{
			Ambient:   Vec{0.15, 0.1, 0.08},
			Diffuse:   Vec{0.7, 0.5, 0.45},
			Specular:  Vec{0.4, 0.35, 0.3},
			Shininess: 42,
		},
		Exposure:  1.8,
		Wireframe: WireframeConfig{
			Color: Vec{0, 1, 0.5},
			Width: 0.02,
		},
		Turntable: DefaultTurntable(),
	}
}

// Load reads a YAML scene. Keys missing from the file keep their Default
// values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read scene: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Write stores c as YAML at path.
func (c Config) Write(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(path), err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", filepath.Base(path), cerr)
		}
	}()

	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	if err := enc.Encode(&c); err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("flush %s: %w", filepath.Base(path), err)
	}
	return nil
}

// parallelEpsilon is the smallest |sin| between view direction and up that
// still gives a usable view basis.
const parallelEpsilon = 1e-6

func (c Config) viewDir() math3d.Vec3 {
	return c.Camera.Target.V3().Sub(c.Camera.Eye.V3()).Normalize()
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}

// Validate reports the first problem that would make the scene unrenderable.
func (c Config) Validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return invalid("image size must be positive, got %dx%d", c.Width, c.Height)
	case !(c.Camera.FOV > 0 && c.Camera.FOV < 180):
		return invalid("fov must be in (0, 180), got %v", c.Camera.FOV)
	case !(c.Camera.Near > 0):
		return invalid("near must be positive, got %v", c.Camera.Near)
	case !(c.Camera.Near < c.Camera.Far):
		return invalid("near (%v) must be less than far (%v)", c.Camera.Near, c.Camera.Far)
	case c.Camera.Eye == c.Camera.Target:
		return invalid("camera eye and target coincide")
	case c.Camera.Up.V3().Len() == 0:
		return invalid("camera up is zero")
	case c.viewDir().Cross(c.Camera.Up.V3().Normalize()).Len() < parallelEpsilon:
		return invalid("camera up %v is parallel to the view direction", c.Camera.Up)
	case c.Scale < 0 || math.IsNaN(c.Scale):
		return invalid("scale must not be negative, got %v", c.Scale)
	case c.Transform.Scale == 0:
		return invalid("transform scale is zero")
	}

	switch c.Shader {
	case ShaderPhong, ShaderFlat, ShaderNormal:
	case ShaderWireframe:
		if !(c.Wireframe.Width > 0 && c.Wireframe.Width < 1.0/3) {
			return invalid("wireframe width must be in (0, 1/3), got %v", c.Wireframe.Width)
		}
	default:
		return invalid("unknown shader %q", c.Shader)
	}

	return c.Turntable.validate()
}

// BuildCamera builds the render camera. The aspect ratio follows the image size.
func (c Config) BuildCamera() *render.Camera {
	return render.NewCamera(
		c.Camera.Eye.V3(),
		c.Camera.Target.V3(),
		c.Camera.Up.V3(),
		c.Camera.FOV,
		float64(c.Width)/float64(c.Height),
		c.Camera.Near,
		c.Camera.Far,
	)
}

// ModelMatrix returns translate · rotateY(yaw + extraYaw) · scale.
// extraYaw is in radians.
func (c Config) ModelMatrix(extraYaw float64) math3d.Mat4 {
	return math3d.Translate(c.Transform.Translate.V3()).
		Mul(math3d.RotateY(math3d.Radians(c.Transform.Yaw) + extraYaw)).
		Mul(math3d.ScaleUniform(c.Transform.Scale))
}

// BuildShader builds the configured shader with its matrices set for cam and
// model. Each call returns a fresh instance, so concurrent renders can each
// own one.
func (c Config) BuildShader(cam *render.Camera, model math3d.Mat4) (render.Shader, error) {
	view, proj := cam.ViewMatrix(), cam.ProjectionMatrix()

	switch c.Shader {
	case ShaderPhong:
		return c.phong(cam, model), nil
	case ShaderWireframe:
		return render.NewWireframeShader(c.phong(cam, model), c.Wireframe.Color.V3(), c.Wireframe.Width), nil
	case ShaderFlat:
		s := render.NewFlatShader(c.Material.Diffuse.V3())
		s.SetMatrices(model, view, proj)
		return s, nil
	case ShaderNormal:
		s := render.NewNormalShader()
		s.SetMatrices(model, view, proj)
		return s, nil
	default:
		return nil, invalid("unknown shader %q", c.Shader)
	}
}

func (c Config) phong(cam *render.Camera, model math3d.Mat4) *render.PhongShader {
	s := render.NewPhongShader()
	s.SetMatrices(model, cam.ViewMatrix(), cam.ProjectionMatrix())
	s.SetLightDirection(c.Light.Direction.V3())
	s.SetLightColor(c.Light.Color.V3())
	s.SetFillLight(c.Fill.Direction.V3(), c.Fill.Color.V3())
	s.SetViewPosition(cam.Position())
	s.SetMaterial(c.Material.Ambient.V3(), c.Material.Diffuse.V3(), c.Material.Specular.V3(), c.Material.Shininess)
	s.SetExposure(c.Exposure)
	return s
}
