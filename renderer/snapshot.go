package renderer

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"

	"go.uber.org/zap"

	"github.com/richinsley/goshadereffect/logging"
)

// Snapshot renders a single frame offscreen and writes it as a PNG.
func Snapshot(ctx context.Context, scene *Scene, angle float32, width, height int, path string) error {
	or, err := NewOffscreenRenderer(width, height)
	if err != nil {
		return err
	}
	defer or.Destroy()

	or.Bind()
	scene.Resize(0, 0, width, height)
	scene.Render(angle)
	img := or.Image()
	or.Unbind()

	if err := writePNG(path, img); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	logging.From(ctx).Info("Snapshot written", zap.String("output", path))
	return nil
}

// writePNG encodes img to path.
func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
