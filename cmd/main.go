package main

import (
	"os"
	"runtime"

	"github.com/richinsley/goshaderbg/log"
	"github.com/urfave/cli"
)

var logger = log.New("goshaderbg")

func init() {
	// GLFW and GL calls must stay on the main thread.
	runtime.LockOSThread()
}

func main() {
	app := cli.NewApp()
	app.Name = "goshaderbg"
	app.Usage = "real-time procedural shader background"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "run",
			Usage: "render the background in a window",
			Description: `
Open a window and render the background behind nothing else, following the
pointer and adapting to window resizes and display scale changes.

Press R to reload the fragment shader and Escape to quit.`,
			Flags:  commonFlags,
			Action: runBackground,
		},
		{
			Name:  "record",
			Usage: "render the background to a video file",
			Description: `
Render the background offscreen with a fixed timestep and pipe the frames to
ffmpeg. The pointer glides from the centre towards --pointer-x/--pointer-y.`,
			Flags:  append(append([]cli.Flag{}, commonFlags...), recordFlags...),
			Action: recordBackground,
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Error(err)
		os.Exit(1)
	}
}
