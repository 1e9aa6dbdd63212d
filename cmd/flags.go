package main

import (
	"github.com/richinsley/goshaderbg/options"
	"github.com/richinsley/goshaderbg/renderer"
	"github.com/richinsley/goshaderbg/shader"
	"github.com/richinsley/goshaderbg/translator"
	"github.com/urfave/cli"
)

var defaults = options.Default()

var commonFlags = []cli.Flag{
	cli.IntFlag{
		Name:  "width",
		Value: defaults.Width,
		Usage: "viewport width",
	},
	cli.IntFlag{
		Name:  "height",
		Value: defaults.Height,
		Usage: "viewport height",
	},
	cli.BoolFlag{
		Name:  "fullscreen",
		Usage: "cover the primary monitor",
	},
	cli.BoolTFlag{
		Name:  "vsync",
		Usage: "pace frames to the display refresh",
	},
	cli.Float64Flag{
		Name:  "render-scale",
		Value: defaults.RenderScale,
		Usage: "backing store scale in (0,1]",
	},
	cli.Float64Flag{
		Name:  "smoothing",
		Value: defaults.Smoothing,
		Usage: "pointer smoothing factor per frame in (0,1]",
	},
	cli.Float64Flag{
		Name:  "blur",
		Value: defaults.Blur,
		Usage: "window blur radius in logical pixels",
	},
	cli.Float64Flag{
		Name:  "zoom",
		Value: defaults.Zoom,
		Usage: "window zoom in [1,2], hides the blurred edges",
	},
	cli.Float64Flag{
		Name:  "opacity",
		Value: defaults.Opacity,
		Usage: "window opacity over black in [0,1]",
	},
	cli.StringFlag{
		Name:   "fragment",
		Usage:  "WebGL2 fragment shader replacing the built-in visual",
		EnvVar: "GOSHADERBG_FRAGMENT",
	},
}

var recordFlags = []cli.Flag{
	cli.Float64Flag{
		Name:  "duration",
		Value: defaults.Duration,
		Usage: "seconds to record",
	},
	cli.IntFlag{
		Name:  "fps",
		Value: defaults.FPS,
		Usage: "frames per second",
	},
	cli.StringFlag{
		Name:  "output, o",
		Value: defaults.OutputFile,
		Usage: "output video file",
	},
	cli.StringFlag{
		Name:  "codec",
		Value: defaults.Codec,
		Usage: "h264 or hevc",
	},
	cli.StringFlag{
		Name:   "ffmpeg",
		Usage:  "path to the ffmpeg executable",
		EnvVar: "GOSHADERBG_FFMPEG",
	},
	cli.Float64Flag{
		Name:  "pointer-x",
		Value: defaults.PointerX,
		Usage: "simulated pointer x in [0,1]",
	},
	cli.Float64Flag{
		Name:  "pointer-y",
		Value: defaults.PointerY,
		Usage: "simulated pointer y in [0,1], 1 is the top",
	},
}

func optionsFromContext(ctx *cli.Context) options.Options {
	opts := options.Default()
	opts.Width = ctx.Int("width")
	opts.Height = ctx.Int("height")
	opts.Fullscreen = ctx.Bool("fullscreen")
	opts.VSync = ctx.BoolT("vsync")
	opts.RenderScale = ctx.Float64("render-scale")
	opts.Smoothing = ctx.Float64("smoothing")
	opts.FragmentFile = ctx.String("fragment")
	opts.Blur = ctx.Float64("blur")
	opts.Zoom = ctx.Float64("zoom")
	opts.Opacity = ctx.Float64("opacity")

	if ctx.IsSet("duration") {
		opts.Duration = ctx.Float64("duration")
	}
	if ctx.IsSet("fps") {
		opts.FPS = ctx.Int("fps")
	}
	if ctx.IsSet("output") {
		opts.OutputFile = ctx.String("output")
	}
	if ctx.IsSet("codec") {
		opts.Codec = ctx.String("codec")
	}
	if ctx.IsSet("pointer-x") {
		opts.PointerX = ctx.Float64("pointer-x")
	}
	if ctx.IsSet("pointer-y") {
		opts.PointerY = ctx.Float64("pointer-y")
	}
	opts.FFMPEGPath = ctx.String("ffmpeg")
	return opts
}

// backgroundConfig loads the shader sources selected by opts.
func backgroundConfig(opts *options.Options, tr translator.Translator) (renderer.Config, error) {
	src := shader.Default()
	if opts.FragmentFile != "" {
		var err error
		if src, err = shader.LoadFragment(opts.FragmentFile); err != nil {
			return renderer.Config{}, err
		}
	}
	return renderer.Config{
		Sources:     src,
		Translator:  tr,
		RenderScale: opts.RenderScale,
		Smoothing:   opts.Smoothing,
	}, nil
}
