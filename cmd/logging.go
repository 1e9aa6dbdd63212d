package main

import (
	"github.com/richinsley/goshaderbg/log"
	"github.com/urfave/cli"
)

func setupLogging(ctx *cli.Context) {
	verbose := 0
	if ctx.GlobalBool("v") {
		verbose = 1
	}
	if ctx.GlobalBool("vv") {
		verbose = 2
	}
	log.SetLevel(log.Verbosity(verbose))
}
