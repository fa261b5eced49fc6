package main

import (
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/taigrr/rasterize/pkg/output"
)

func newTurntableCmd(opts *options) *cobra.Command {
	var (
		frames  int
		fps     int
		easing  string
		pattern string
		workers int
	)

	cmd := &cobra.Command{
		Use:   "turntable [model]",
		Short: "Render one full turn of the model as an image sequence",
		Long: `Render the model spinning once around the vertical axis.

Each frame is written to a path built from --pattern, e.g.
frames/%04d.png. Spring easing starts and stops the spin smoothly; linear
easing gives a sequence that loops.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadScene(cmd, args, opts)
			if err != nil {
				return err
			}

			changed := cmd.Flags().Changed
			if changed("frames") {
				cfg.Turntable.Frames = frames
			}
			if changed("fps") {
				cfg.Turntable.FPS = fps
			}
			if changed("easing") {
				cfg.Turntable.Easing = easing
			}
			if changed("pattern") {
				cfg.Turntable.Pattern = pattern
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if _, err := output.FormatFromPath(cfg.Turntable.FramePath(0)); err != nil {
				return fmt.Errorf("frame pattern: %w", err)
			}

			mesh, err := loadMesh(&cfg)
			if err != nil {
				return err
			}

			angles := cfg.Turntable.Angles()
			bar := progressbar.Default(int64(len(angles)), "rendering")
			start := time.Now()

			g, ctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(max(1, workers))
			for i, yaw := range angles {
				g.Go(func() error {
					if err := ctx.Err(); err != nil {
						return err
					}
					fb, err := renderFrame(cfg, mesh, yaw)
					if err != nil {
						return err
					}
					path := cfg.Turntable.FramePath(i)
					if err := output.Save(path, output.Resize(fb, cfg.Scale)); err != nil {
						return fmt.Errorf("frame %d: %w", i, err)
					}
					return bar.Add(1)
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			slog.Info("wrote turntable",
				"frames", len(angles),
				"pattern", cfg.Turntable.Pattern,
				"elapsed", time.Since(start),
			)
			return nil
		},
	}

	f := cmd.Flags()
	f.IntVar(&frames, "frames", 0, "number of frames (default from scene)")
	f.IntVar(&fps, "fps", 0, "frames per second used to time the spring")
	f.StringVar(&easing, "easing", "", "spin easing: spring or linear")
	f.StringVar(&pattern, "pattern", "", "frame path pattern, e.g. frames/%04d.png")
	f.IntVarP(&workers, "workers", "j", runtime.GOMAXPROCS(0), "frames rendered in parallel")
	return cmd
}
