package options

import (
	"errors"
	"fmt"
)

// Options configures the background renderer and the host programs around it.
type Options struct {
	// Window dims in logical pixels.
	Width  int
	Height int

	Fullscreen bool
	VSync      bool

	// Backing store multiplier in (0,1]. Trades resolution for shader cost.
	RenderScale float64

	// Per-frame pointer smoothing factor in (0,1].
	Smoothing float64

	// Optional replacement fragment shader.
	FragmentFile string

	// Window presentation: blur radius in logical pixels, zoom >= 1 and
	// opacity over black in [0,1].
	Blur    float64
	Zoom    float64
	Opacity float64

	// Recording.
	Duration   float64
	FPS        int
	OutputFile string
	Codec      string
	FFMPEGPath string

	// Simulated pointer target while recording, normalized.
	PointerX float64
	PointerY float64
}

// Default values match the production background.
const (
	DefaultRenderScale = 0.75
	DefaultSmoothing   = 0.05
)

func Default() Options {
	return Options{
		Width:       1280,
		Height:      720,
		VSync:       true,
		RenderScale: DefaultRenderScale,
		Smoothing:   DefaultSmoothing,
		Blur:        20,
		Zoom:        1.1,
		Opacity:     0.9,
		Duration:    10,
		FPS:         60,
		OutputFile:  "background.mp4",
		Codec:       "h264",
		PointerX:    0.5,
		PointerY:    0.5,
	}
}

var (
	ErrBadSize         = errors.New("options: width and height must be positive")
	ErrBadRenderScale  = errors.New("options: render scale must be in (0,1]")
	ErrBadSmoothing    = errors.New("options: smoothing must be in (0,1]")
	ErrBadPresentation = errors.New("options: blur must be >= 0, zoom in [1,2] and opacity in [0,1]")
)

// Validate checks the options used by the interactive renderer.
func (o *Options) Validate() error {
	if o.Width <= 0 || o.Height <= 0 {
		return ErrBadSize
	}
	if !(o.RenderScale > 0 && o.RenderScale <= 1) {
		return ErrBadRenderScale
	}
	if !(o.Smoothing > 0 && o.Smoothing <= 1) {
		return ErrBadSmoothing
	}
	if !(o.Blur >= 0) || !(o.Zoom >= 1 && o.Zoom <= 2) || !(o.Opacity >= 0 && o.Opacity <= 1) {
		return ErrBadPresentation
	}
	return nil
}

// ValidateRecord additionally checks the recording options.
func (o *Options) ValidateRecord() error {
	if err := o.Validate(); err != nil {
		return err
	}
	if o.Duration <= 0 {
		return fmt.Errorf("options: duration must be positive, got %v", o.Duration)
	}
	if o.FPS <= 0 {
		return fmt.Errorf("options: fps must be positive, got %d", o.FPS)
	}
	if o.OutputFile == "" {
		return errors.New("options: output file is required")
	}
	switch o.Codec {
	case "h264", "hevc":
	default:
		return fmt.Errorf("options: unsupported codec %q", o.Codec)
	}
	if o.PointerX < 0 || o.PointerX > 1 || o.PointerY < 0 || o.PointerY > 1 {
		return fmt.Errorf("options: pointer position (%v,%v) outside [0,1]", o.PointerX, o.PointerY)
	}
	return nil
}

// TotalFrames is the number of frames a recording produces.
func (o *Options) TotalFrames() int {
	return int(o.Duration * float64(o.FPS))
}
