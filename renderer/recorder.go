package renderer

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/richinsley/goshadereffect/animation"
	"github.com/richinsley/goshadereffect/encoder"
	"github.com/richinsley/goshadereffect/logging"
	"github.com/richinsley/goshadereffect/options"
)

// Record renders duration*fps frames offscreen and streams them to ffmpeg.
// The rotation advances by exactly one frame period per frame, independent
// of how long rendering takes.
func Record(ctx context.Context, scene *Scene, rotator *animation.Rotator, opts *options.EffectOptions) error {
	logger, ctx := logging.SubFrom(ctx, "recorder")
	or, err := NewOffscreenRenderer(opts.Width, opts.Height)
	if err != nil {
		return err
	}
	defer or.Destroy()

	cfg := encoder.Config{
		Width:      opts.Width,
		Height:     opts.Height,
		FPS:        opts.FPS,
		Output:     opts.OutputFile(),
		FFmpegPath: opts.FFmpegPath,
		Codec:      opts.Codec,
	}
	enc := encoder.Start(ctx, cfg)

	totalFrames := int(opts.Duration * float64(opts.FPS))
	frameDuration := time.Second / time.Duration(opts.FPS)
	logger.Info("Starting record mode", zap.Int("frames", totalFrames), zap.String("output", cfg.Output))

	or.Bind()
	scene.Resize(0, 0, opts.Width, opts.Height)
	var renderErr error
	for i := 0; i < totalFrames; i++ {
		if err := ctx.Err(); err != nil {
			renderErr = err
			break
		}
		scene.Render(rotator.Angle())
		if err := enc.Write(&encoder.Frame{Pixels: or.ReadPixels(), PTS: int64(i)}); err != nil {
			renderErr = fmt.Errorf("frame %d: %w", i, err)
			break
		}
		rotator.Step(frameDuration)
	}
	or.Unbind()

	if err := enc.Close(); err != nil {
		return err
	}
	return renderErr
}
