// rasterize - CPU model renderer
// Renders OBJ and glTF models to PNG, BMP, TIFF, WebP or TGA images with a
// software triangle rasterizer and Phong lighting.
//
// Usage:
//
//	rasterize model.obj                      render with the default scene
//	rasterize -c scene.yaml -o bust.webp     render a described scene
//	rasterize --preview model.glb            render and show it in the terminal
//	rasterize turntable model.obj            render a spinning frame sequence
//	rasterize init scene.yaml                write the default scene to edit
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/taigrr/rasterize/pkg/models"
	"github.com/taigrr/rasterize/pkg/output"
	"github.com/taigrr/rasterize/pkg/render"
	"github.com/taigrr/rasterize/pkg/scene"
)

// options holds flag values. Scene fields only override the loaded scene
// when their flag was given.
type options struct {
	config     string
	out        string
	width      int
	height     int
	shader     string
	scale      float64
	fit        bool
	modelColor bool
	preview    bool
	verbose    bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := fang.Execute(ctx, newRootCmd(&options{})); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rasterize [model]",
		Short: "Render a 3D model to an image on the CPU",
		Long: `Render an OBJ or glTF model with a software rasterizer.

The scene (camera, lights, material, image size) comes from --config, or
the built-in portrait scene when no config is given. Flags override the
scene. The output format follows the --out extension.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(opts.verbose)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, args, opts)
		},
	}

	f := cmd.PersistentFlags()
	f.StringVarP(&opts.config, "config", "c", "", "scene YAML file")
	f.StringVarP(&opts.out, "out", "o", "", "output image path (.png, .bmp, .tif, .webp, .tga)")
	f.IntVar(&opts.width, "width", 0, "image width in pixels")
	f.IntVar(&opts.height, "height", 0, "image height in pixels")
	f.StringVar(&opts.shader, "shader", "", "shader: phong, flat, normal or wireframe")
	f.Float64Var(&opts.scale, "scale", 0, "resize the image by this factor before saving")
	f.BoolVar(&opts.fit, "fit", false, "recentre the model and scale it to a 2 unit cube")
	f.BoolVar(&opts.modelColor, "model-color", false, "use the model's base colour as the diffuse colour")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "log render statistics")
	cmd.Flags().BoolVarP(&opts.preview, "preview", "p", false, "show the result in the terminal")

	cmd.AddCommand(newTurntableCmd(opts), newInitCmd())
	return cmd
}

func setupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	render.SetLogger(logger)
}

// loadScene builds the scene from --config and the flags that were set.
func loadScene(cmd *cobra.Command, args []string, opts *options) (scene.Config, error) {
	cfg := scene.Default()
	if opts.config != "" {
		var err error
		if cfg, err = scene.Load(opts.config); err != nil {
			return scene.Config{}, err
		}
	}

	changed := cmd.Flags().Changed
	if len(args) > 0 {
		cfg.Model = args[0]
	}
	if changed("out") {
		cfg.Output = opts.out
	}
	if changed("width") {
		cfg.Width = opts.width
	}
	if changed("height") {
		cfg.Height = opts.height
	}
	if changed("shader") {
		cfg.Shader = opts.shader
	}
	if changed("scale") {
		cfg.Scale = opts.scale
	}
	if changed("fit") {
		cfg.Fit = opts.fit
	}
	if changed("model-color") {
		cfg.Material.FromModel = opts.modelColor
	}

	if cfg.Model == "" {
		return scene.Config{}, fmt.Errorf("no model given: pass a path or set model in the scene")
	}
	if err := cfg.Validate(); err != nil {
		return scene.Config{}, err
	}
	return cfg, nil
}

// loadMesh reads the scene's model and applies the mesh-level options.
// It may update cfg's diffuse colour.
func loadMesh(cfg *scene.Config) (*models.Mesh, error) {
	start := time.Now()
	mesh, err := models.Load(cfg.Model)
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}

	if cfg.Fit {
		mesh.Fit(2)
	}
	if cfg.Material.FromModel {
		if c, ok := mesh.BaseColor(); ok {
			cfg.Material.Diffuse = scene.Vec{c.X, c.Y, c.Z}
		} else {
			slog.Warn("model has no base colour, keeping scene diffuse", "model", filepath.Base(cfg.Model))
		}
	}

	slog.Info("loaded model",
		"model", filepath.Base(cfg.Model),
		"vertices", mesh.VertexCount(),
		"triangles", mesh.TriangleCount(),
		"elapsed", time.Since(start),
	)
	return mesh, nil
}

// renderFrame renders mesh with the model spun by yaw radians.
func renderFrame(cfg scene.Config, mesh render.Mesh, yaw float64) (*render.Framebuffer, error) {
	cam := cfg.BuildCamera()
	shader, err := cfg.BuildShader(cam, cfg.ModelMatrix(yaw))
	if err != nil {
		return nil, err
	}

	r := render.NewRasterizer(cfg.Width, cfg.Height)
	r.Render(mesh, shader)
	return r.Framebuffer(), nil
}

func runRender(cmd *cobra.Command, args []string, opts *options) error {
	cfg, err := loadScene(cmd, args, opts)
	if err != nil {
		return err
	}
	mesh, err := loadMesh(&cfg)
	if err != nil {
		return err
	}

	fb, err := renderFrame(cfg, mesh, 0)
	if err != nil {
		return err
	}

	if err := output.Save(cfg.Output, output.Resize(fb, cfg.Scale)); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	slog.Info("wrote image", "path", cfg.Output, "width", cfg.Width, "height", cfg.Height)

	if opts.preview {
		return preview(cmd.Context(), fb)
	}
	return nil
}

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init <scene.yaml>",
		Short: "Write the default scene to a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists", path)
			}
			if err := scene.Default().Write(path); err != nil {
				return err
			}
			slog.Info("wrote scene", "path", path)
			return nil
		},
	}
}
