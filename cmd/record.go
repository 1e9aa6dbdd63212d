package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/richinsley/goshaderbg/encoder"
	"github.com/richinsley/goshaderbg/gldevice"
	"github.com/richinsley/goshaderbg/glfwcontext"
	"github.com/richinsley/goshaderbg/renderer"
	"github.com/richinsley/goshaderbg/translator"
	"github.com/urfave/cli"
)

func recordBackground(ctx *cli.Context) error {
	setupLogging(ctx)

	opts := optionsFromContext(ctx)
	if err := opts.ValidateRecord(); err != nil {
		return err
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	tr, err := translator.New(sigCtx, false)
	if err != nil {
		return err
	}
	cfg, err := backgroundConfig(&opts, tr)
	if err != nil {
		return err
	}

	if err := glfwcontext.InitGraphics(); err != nil {
		return err
	}
	defer glfwcontext.TerminateGraphics()

	// The hidden window only provides the GL context; frames go to the surface.
	win, err := glfwcontext.New(&opts, false)
	if err != nil {
		return err
	}
	defer win.Shutdown()

	dev, err := gldevice.New()
	if err != nil {
		return err
	}
	surface, err := gldevice.NewSurface()
	if err != nil {
		return err
	}
	defer surface.Destroy()

	width, height := renderer.RecordSize(&opts)
	enc, err := encoder.Start(encoder.Config{
		Width:      width,
		Height:     height,
		FPS:        opts.FPS,
		OutputFile: opts.OutputFile,
		Codec:      opts.Codec,
		FFMPEGPath: opts.FFMPEGPath,
	})
	if err != nil {
		return err
	}

	runErr := renderer.RunOffscreen(sigCtx, dev, surface, cfg, &opts, enc)
	closeErr := enc.Close()
	if runErr != nil {
		return runErr
	}
	if closeErr != nil {
		return closeErr
	}
	logger.Infof("wrote %s", opts.OutputFile)
	return nil
}
