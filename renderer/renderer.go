package renderer

import (
	"context"
	"fmt"
	"sync"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/richinsley/goshadereffect/animation"
	"github.com/richinsley/goshadereffect/graphics"
	"github.com/richinsley/goshadereffect/logging"
)

var glInitOnce sync.Once

// InitGL loads the GL function pointers for the current context.
func InitGL(ctx graphics.Context) error {
	ctx.MakeCurrent()
	var initErr error
	glInitOnce.Do(func() {
		initErr = gl.Init()
	})
	if initErr != nil {
		return fmt.Errorf("failed to initialize OpenGL: %w", initErr)
	}
	return nil
}

// ReloadSignal reports, and clears, a pending request to rebuild the scene.
type ReloadSignal interface {
	Dirty() bool
}

// Viewer drives the interactive window.
type Viewer struct {
	context graphics.Context
	scene   *Scene
	rotator *animation.Rotator
	signals []ReloadSignal
	reload  atomic.Bool
}

func NewViewer(ctx graphics.Context, scene *Scene, rotator *animation.Rotator, signals ...ReloadSignal) *Viewer {
	return &Viewer{
		context: ctx,
		scene:   scene,
		rotator: rotator,
		signals: signals,
	}
}

// RequestReload schedules a scene rebuild before the next frame. It is safe
// to call from any goroutine.
func (v *Viewer) RequestReload() {
	v.reload.Store(true)
}

func (v *Viewer) Dirty() bool {
	return v.reload.Swap(false)
}

func (v *Viewer) pendingReload() bool {
	pending := v.Dirty()
	for _, s := range v.signals {
		if s.Dirty() {
			pending = true
		}
	}
	return pending
}

// Run renders until the window is closed or ctx is cancelled.
func (v *Viewer) Run(ctx context.Context) error {
	logger := logging.From(ctx)
	width, height := v.context.GetFramebufferSize()
	v.scene.Resize(0, 0, width, height)

	for !v.context.ShouldClose() {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if v.pendingReload() {
			if err := v.scene.Reload(ctx); err != nil {
				logger.Warn("Reload failed, keeping current effect", zap.Error(err))
			} else {
				logger.Info("Effect reloaded")
			}
		}

		fbWidth, fbHeight := v.context.GetFramebufferSize()
		if fbWidth != width || fbHeight != height {
			width, height = fbWidth, fbHeight
			v.scene.Resize(0, 0, width, height)
		}

		v.scene.Render(v.rotator.Angle())
		v.context.EndFrame()
	}
	return nil
}
