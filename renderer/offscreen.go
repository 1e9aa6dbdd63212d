package renderer

import (
	"context"
	"fmt"
	"time"

	"github.com/richinsley/goshaderbg/encoder"
	"github.com/richinsley/goshaderbg/graphics"
	"github.com/richinsley/goshaderbg/headless"
	"github.com/richinsley/goshaderbg/options"
)

// FrameSink consumes rendered frames, usually an *encoder.Encoder.
type FrameSink interface {
	WriteFrame(f *encoder.Frame) error
}

// RecordSize returns the frame size a recording with opts produces.
func RecordSize(opts *options.Options) (int, int) {
	s := ComputeSurface(float64(opts.Width), float64(opts.Height), 1, opts.RenderScale)
	return s.BackingWidth, s.BackingHeight
}

// RunOffscreen mounts a background on a manually clocked host, renders
// opts.Duration seconds at opts.FPS into surface and sends every frame to
// sink. Unlike Mount, a background that fails to start is an error here.
func RunOffscreen(ctx context.Context, dev graphics.Device, surface graphics.Surface, cfg Config, opts *options.Options, sink FrameSink) error {
	host := headless.New(float64(opts.Width), float64(opts.Height), 1)
	host.SetSurface(surface)

	bg := Mount(dev, host, cfg)
	defer bg.Dispose()
	if err := bg.Err(); err != nil {
		return fmt.Errorf("background failed to start: %w", err)
	}

	// The smoothed pointer glides from the centre towards this target.
	host.MovePointer(opts.PointerX*float64(opts.Width), (1-opts.PointerY)*float64(opts.Height))

	s := bg.Surface()
	frameSize := s.BackingWidth * s.BackingHeight * 4
	totalFrames := opts.TotalFrames()
	fps := time.Duration(opts.FPS)

	logger.Infof("recording %d frames at %dx%d", totalFrames, s.BackingWidth, s.BackingHeight)
	for i := 0; i < totalFrames; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		// Derive each timestamp from the frame index so rounding never accumulates.
		at := time.Duration(i) * time.Second / fps
		host.Advance(at - host.Now())
		if host.RunFrame() == 0 || bg.State() != Running {
			return ErrNotRunning
		}

		pixels := make([]byte, frameSize)
		if err := surface.ReadPixels(pixels); err != nil {
			return fmt.Errorf("failed to read frame %d: %w", i, err)
		}
		if err := sink.WriteFrame(&encoder.Frame{Pixels: pixels, PTS: int64(i)}); err != nil {
			return fmt.Errorf("failed to encode frame %d: %w", i, err)
		}
		if i > 0 && i%(opts.FPS*5) == 0 {
			logger.Infof("recorded %d/%d frames", i, totalFrames)
		}
	}
	return nil
}
