package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"github.com/go-gl/glfw/v3.3/glfw"
	"go.uber.org/zap"

	"github.com/richinsley/goshadereffect/animation"
	"github.com/richinsley/goshadereffect/assets"
	"github.com/richinsley/goshadereffect/glfwcontext"
	"github.com/richinsley/goshadereffect/graphics"
	"github.com/richinsley/goshadereffect/headless"
	"github.com/richinsley/goshadereffect/logging"
	"github.com/richinsley/goshadereffect/options"
	"github.com/richinsley/goshadereffect/renderer"
	"github.com/richinsley/goshadereffect/watcher"
)

func init() {
	runtime.LockOSThread()
}

func library(opts *options.EffectOptions) *assets.Library {
	if opts.Resources != "" {
		return assets.Dir(opts.Resources)
	}
	return assets.Default()
}

func list(lib *assets.Library) error {
	effects, err := lib.Effects()
	if err != nil {
		return err
	}
	images, err := lib.Images()
	if err != nil {
		return err
	}
	fmt.Println("Effects:", strings.Join(effects, ", "))
	fmt.Println("Images: ", strings.Join(images, ", "))
	return nil
}

// openContext returns the GL context for opts.Mode: a visible window for
// view mode, otherwise a hidden window or an EGL pbuffer.
func openContext(ctx context.Context, opts *options.EffectOptions) (graphics.Context, *glfwcontext.Context, error) {
	if opts.Headless {
		h, err := headless.NewHeadless(ctx, opts.Width, opts.Height)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create headless context: %w", err)
		}
		return h, nil, nil
	}
	if err := glfwcontext.InitGraphics(); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize glfw: %w", err)
	}
	win, err := glfwcontext.New(opts, opts.Mode == options.ModeView)
	if err != nil {
		glfwcontext.TerminateGraphics()
		return nil, nil, fmt.Errorf("failed to initialize glfw context: %w", err)
	}
	return win, win, nil
}

func run(ctx context.Context, opts *options.EffectOptions, lib *assets.Library) error {
	logger := logging.From(ctx)

	gctx, win, err := openContext(ctx, opts)
	if err != nil {
		return err
	}
	defer func() {
		gctx.Shutdown()
		if win != nil {
			glfwcontext.TerminateGraphics()
		}
	}()
	if err := renderer.InitGL(gctx); err != nil {
		return err
	}

	width, height := opts.Width, opts.Height
	if opts.Mode == options.ModeView {
		width, height = gctx.GetFramebufferSize()
	}
	scene := renderer.NewScene(lib, opts)
	if err := scene.Init(ctx, width, height); err != nil {
		return err
	}
	defer scene.Destroy()

	rotator := animation.NewRotator(opts.RotationSpeed, animation.NewSystemClock())

	switch opts.Mode {
	case options.ModeRecord:
		if err := renderer.Record(ctx, scene, rotator, opts); err != nil {
			return fmt.Errorf("offscreen rendering failed: %w", err)
		}
		logger.Info("Recording finished", zap.String("output", opts.OutputFile()))
		return nil
	case options.ModeSnapshot:
		return renderer.Snapshot(ctx, scene, rotator.Angle(), opts.Width, opts.Height, opts.OutputFile())
	}

	var signals []renderer.ReloadSignal
	if opts.HotReload {
		w, err := watcher.Watch(ctx, opts.Resources, watcher.Relevant(opts.Effect, opts.Image))
		if err != nil {
			return err
		}
		defer w.Close()
		signals = append(signals, w)
	}
	viewer := renderer.NewViewer(gctx, scene, rotator, signals...)
	win.RegisterKeyCallback(glfw.KeyR, viewer.RequestReload)
	win.RegisterKeyCallback(glfw.KeySpace, func() { rotator.SetAngle(0) })

	go rotator.Run(ctx)
	logger.Info("Starting interactive render loop")
	return viewer.Run(ctx)
}

// parseOptions parses args and reports whether main should exit right away,
// with which code. Errors and help go to the given writers since no logger
// exists yet.
func parseOptions(name string, args []string, stdout, stderr io.Writer) (*options.EffectOptions, bool, int) {
	opts, err := options.Parse(name, args)
	if errors.Is(err, flag.ErrHelp) {
		opts, err = &options.EffectOptions{Help: true}, nil
	}
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", name, err)
		fmt.Fprintf(stderr, "Run %s -help for usage.\n", name)
		return nil, true, 2
	}
	if opts.Help {
		fmt.Fprintln(stdout, "Shader effect viewer/recorder")
		options.Usage(name, stdout)
		fmt.Fprintln(stdout, "Keys: Escape quits, R reloads the effect, Space resets the rotation.")
		return opts, true, 0
	}
	return opts, false, 0
}

func main() {
	opts, exit, code := parseOptions(os.Args[0], os.Args[1:], os.Stdout, os.Stderr)
	if exit {
		os.Exit(code)
	}

	logger := logging.Init(opts.Debug)
	defer logger.Sync() //nolint:errcheck
	ctx := logging.Context(context.Background(), logger)

	lib := library(opts)
	if opts.List {
		if err := list(lib); err != nil {
			logger.Fatal("Failed to list resources", zap.Error(err))
		}
		return
	}
	if err := opts.Validate(); err != nil {
		logger.Fatal("Invalid options", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, lib); err != nil {
		logger.Error("Failed", zap.Error(err))
		stop()
		logger.Sync() //nolint:errcheck
		os.Exit(1)
	}
}
