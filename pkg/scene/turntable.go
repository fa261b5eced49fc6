package scene

import (
	"fmt"
	"math"

	"github.com/charmbracelet/harmonica"
)

// Easing names accepted in TurntableConfig.Easing.
const (
	EasingLinear = "linear"
	EasingSpring = "spring"
)

// TurntableConfig controls the turntable animation: the model spins once
// around Y over Frames frames.
type TurntableConfig struct {
	Frames int    `yaml:"frames"`
	FPS    int    `yaml:"fps"`
	Easing string `yaml:"easing"`
	// Pattern is a fmt pattern for frame file names, e.g. "frames/%04d.png".
	Pattern string `yaml:"pattern"`
}

// DefaultTurntable is a 4 second, 30 fps spin with spring easing.
func DefaultTurntable() TurntableConfig {
	return TurntableConfig{
		Frames:  120,
		FPS:     30,
		Easing:  EasingSpring,
		Pattern: "frames/%04d.png",
	}
}

func (t TurntableConfig) validate() error {
	switch {
	case t.Frames <= 0:
		return invalid("turntable frames must be positive, got %d", t.Frames)
	case t.FPS <= 0:
		return invalid("turntable fps must be positive, got %d", t.FPS)
	}
	switch t.Easing {
	case EasingLinear, EasingSpring:
	default:
		return invalid("unknown turntable easing %q", t.Easing)
	}
	return nil
}

// FramePath returns the output path of frame i.
func (t TurntableConfig) FramePath(i int) string {
	return fmt.Sprintf(t.Pattern, i)
}

// Angles returns one yaw angle per frame, in radians, covering a full turn.
//
// Linear easing steps evenly and leaves out 2π so the sequence loops.
// Spring easing follows a critically damped spring from 0 towards 2π, tuned
// so it has settled by the last frame; it starts slow, never overshoots and
// never runs backwards.
func (t TurntableConfig) Angles() []float64 {
	const turn = 2 * math.Pi
	angles := make([]float64, t.Frames)

	if t.Easing != EasingSpring {
		for i := range angles {
			angles[i] = turn * float64(i) / float64(t.Frames)
		}
		return angles
	}

	// Critically damped: 1 - (1 + ωt)e^(-ωt) is within 0.3% of the target at ωt = 9
	duration := float64(t.Frames) / float64(t.FPS)
	spring := harmonica.NewSpring(harmonica.FPS(t.FPS), 9/duration, 1.0)

	var pos, vel float64
	for i := range angles {
		angles[i] = math.Min(math.Max(pos, 0), turn)
		pos, vel = spring.Update(pos, vel, turn)
	}
	if t.Frames > 1 {
		angles[len(angles)-1] = turn
	}
	return angles
}
