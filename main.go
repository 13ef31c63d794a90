package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"wvrender/cmd"
	"wvrender/internal/build"
	"wvrender/internal/log"
)

// main renders one input file and exits. An interrupt cancels the context,
// which stops the decoder and encoder subprocesses and ends the render
// with an error; the partial video is left on disk.
func main() {
	// Initialize build information including version, commit hash, and build time
	if err := build.Initialize(); err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Execute(ctx, os.Args[1:]); err != nil {
		stop()
		log.Fatal(err)
	}
}
