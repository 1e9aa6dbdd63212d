package main

import (
	"context"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/richinsley/goshaderbg/gldevice"
	"github.com/richinsley/goshaderbg/glfwcontext"
	"github.com/richinsley/goshaderbg/graphics"
	"github.com/richinsley/goshaderbg/renderer"
	"github.com/richinsley/goshaderbg/shader"
	"github.com/richinsley/goshaderbg/translator"
	"github.com/urfave/cli"
)

func runBackground(ctx *cli.Context) error {
	setupLogging(ctx)

	opts := optionsFromContext(ctx)
	if err := opts.Validate(); err != nil {
		return err
	}
	cfg, err := backgroundConfig(&opts, nil)
	if err != nil {
		return err
	}

	// Without a window there is nothing to draw behind; leave quietly.
	if err := glfwcontext.InitGraphics(); err != nil {
		logger.Warningf("graphics unavailable, rendering nothing: %v", err)
		return nil
	}
	defer glfwcontext.TerminateGraphics()

	win, err := glfwcontext.New(&opts, true)
	if err != nil {
		logger.Warningf("could not create a GL 4.1 window, rendering nothing: %v", err)
		return nil
	}
	defer win.Shutdown()

	// A nil device makes Mount fail with ErrUnsupported; the window stays up.
	var dev graphics.Device
	var surface *gldevice.Surface
	if d, err := gldevice.New(); err != nil {
		logger.Warning(err)
	} else if s, err := gldevice.NewSurface(); err != nil {
		logger.Warning(err)
	} else {
		dev, surface = d, s
		defer surface.Destroy()
		surface.SetPresentation(shader.Presentation{
			Blur:    opts.Blur * win.DevicePixelRatio(),
			Zoom:    opts.Zoom,
			Opacity: opts.Opacity,
		})
	}

	tr, err := translator.New(context.Background(), false)
	if err != nil {
		logger.Warningf("shader translator unavailable: %v", err)
	} else {
		cfg.Translator = tr
	}

	// The surface must be attached while mounting so the initial resize sizes
	// it. Only a running background keeps presenting it.
	mount := func(cfg renderer.Config) *renderer.Background {
		if surface != nil {
			win.SetSurface(surface)
		}
		bg := renderer.Mount(dev, win, cfg)
		if bg.State() != renderer.Running {
			win.SetSurface(nil)
		}
		return bg
	}

	bg := mount(cfg)

	win.RegisterKeyCallback(glfw.KeyR, func() {
		next, err := backgroundConfig(&opts, cfg.Translator)
		if err != nil {
			logger.Warningf("keeping current shader: %v", err)
			return
		}
		bg.Dispose()
		bg = mount(next)
		logger.Infof("reloaded background: %s", bg.State())
	})

	win.Run()
	bg.Dispose()
	logger.Infof("rendered %d frames", bg.Frames())
	return nil
}
