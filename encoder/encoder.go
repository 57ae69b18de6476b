package encoder

import (
	"context"
	"fmt"
	"io"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"
	"go.uber.org/zap"

	"github.com/richinsley/goshadereffect/logging"
)

// Frame represents a single rendered video frame's data, ready for encoding.
// Pixels are tightly packed RGBA rows, bottom row first as read from GL.
type Frame struct {
	Pixels []byte
	PTS    int64
}

type Config struct {
	Width      int
	Height     int
	FPS        int
	Output     string
	FFmpegPath string
	Codec      string
}

// FrameSize is the byte length of one frame.
func (c Config) FrameSize() int {
	return c.Width * c.Height * 4
}

// Args returns the ffmpeg arguments for raw RGBA frames on stdin.
func Args(cfg Config) (inputArgs ffmpeg.KwArgs, outputArgs ffmpeg.KwArgs) {
	inputArgs = ffmpeg.KwArgs{
		"format":    "rawvideo",
		"pix_fmt":   "rgba",
		"s":         fmt.Sprintf("%dx%d", cfg.Width, cfg.Height),
		"framerate": cfg.FPS,
	}

	outputArgs = ffmpeg.KwArgs{
		// GL rows arrive bottom first.
		"vf":      "vflip",
		"pix_fmt": "yuv420p",
		"b:v":     "8M",
	}
	if cfg.Codec == "hevc" {
		outputArgs["c:v"] = "libx265"
		if strings.HasSuffix(cfg.Output, ".mp4") {
			outputArgs["tag:v"] = "hvc1"
		}
	} else {
		outputArgs["c:v"] = "libx264"
	}
	return
}

// Encoder pipes frames into an ffmpeg process. Frames are queued from the
// render thread and written by the encoder goroutine.
type Encoder struct {
	cfg    Config
	frames chan *Frame
	done   chan error
}

const queueLen = 3

// Start launches ffmpeg and the goroutine feeding it.
func Start(ctx context.Context, cfg Config) *Encoder {
	e := &Encoder{
		cfg:    cfg,
		frames: make(chan *Frame, queueLen),
		done:   make(chan error, 1),
	}
	go e.run(ctx)
	return e
}

// Write queues a frame. It blocks while the queue is full.
func (e *Encoder) Write(frame *Frame) error {
	if len(frame.Pixels) != e.cfg.FrameSize() {
		return fmt.Errorf("frame %d has %d bytes, expected %d", frame.PTS, len(frame.Pixels), e.cfg.FrameSize())
	}
	e.frames <- frame
	return nil
}

// Close flushes the queue and waits for ffmpeg to exit.
func (e *Encoder) Close() error {
	close(e.frames)
	return <-e.done
}

func (e *Encoder) run(ctx context.Context) {
	logger, _ := logging.SubFrom(ctx, "encoder")
	pipeReader, pipeWriter := io.Pipe()
	inputArgs, outputArgs := Args(e.cfg)

	ffmpegCmd := ffmpeg.Input("pipe:", inputArgs).
		Output(e.cfg.Output, outputArgs).
		OverWriteOutput().WithInput(pipeReader).ErrorToStdOut()

	if e.cfg.FFmpegPath != "" {
		ffmpegCmd = ffmpegCmd.SetFfmpegPath(e.cfg.FFmpegPath)
	}

	errc := make(chan error, 1)
	go func() {
		err := ffmpegCmd.Run()
		closeErr := err
		if closeErr == nil {
			closeErr = io.ErrClosedPipe
		}
		// Unblock the writer if ffmpeg exits before consuming every frame.
		pipeReader.CloseWithError(closeErr)
		errc <- err
	}()

	var writeErr error
	for frame := range e.frames {
		if writeErr != nil {
			continue
		}
		if _, err := pipeWriter.Write(frame.Pixels); err != nil {
			writeErr = fmt.Errorf("failed to write frame %d to ffmpeg: %w", frame.PTS, err)
			logger.Error("Encoder stopped, dropping remaining frames", zap.Error(writeErr))
		}
	}
	pipeWriter.Close()

	if err := <-errc; err != nil {
		e.done <- fmt.Errorf("ffmpeg failed: %w", err)
		return
	}
	logger.Info("Encoding finished", zap.String("output", e.cfg.Output))
	e.done <- writeErr
}
