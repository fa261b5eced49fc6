package main

import (
	"context"
	"fmt"

	uv "github.com/charmbracelet/ultraviolet"

	"github.com/taigrr/rasterize/pkg/render"
)

// preview shows fb in the alternate screen until a quit key is pressed.
// Resizing the terminal redraws the image to fit.
func preview(ctx context.Context, fb *render.Framebuffer) error {
	term := uv.DefaultTerminal()

	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}

	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}
	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	defer func() {
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}()

	draw := func() error {
		term.Erase()
		fb.Draw(term, term.Bounds())
		return term.Display()
	}
	if err := draw(); err != nil {
		return fmt.Errorf("draw: %w", err)
	}

	events := term.Events()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			switch ev := ev.(type) {
			case uv.WindowSizeEvent:
				term.Resize(ev.Width, ev.Height)
				if err := draw(); err != nil {
					return fmt.Errorf("draw: %w", err)
				}
			case uv.KeyPressEvent:
				if ev.MatchString("escape", "q", "ctrl+c", "enter") {
					return nil
				}
			}
		}
	}
}
