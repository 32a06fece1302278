package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/gekko3d/morph"
	"github.com/gekko3d/morph/render/term"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

func run(args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("morph-term", flag.ContinueOnError)
	fs.SetOutput(stderr)
	opts := morph.DefaultOptions()
	opts.Bind(fs)
	fps := fs.Int("fps", term.DefaultFPS, "frames per second")
	logPath := fs.String("log", "", "write logs to this file (the terminal belongs to the screen)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if err := opts.Validate(); err != nil {
		fmt.Fprintln(stderr, err)
		fs.Usage()
		return 2
	}

	var logOut io.Writer = io.Discard
	if *logPath != "" {
		f, err := os.Create(*logPath)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to open log: %v\n", err)
			return 1
		}
		defer f.Close()
		logOut = f
	}

	cfg := term.DefaultConfig()
	cfg.FPS = *fps
	cfg.Camera.Parallax = float32(opts.Parallax)

	renderer, err := term.New(nil, cfg)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to initialize terminal: %v\n", err)
		return 1
	}

	var loadErr error
	app := morph.NewSessionBuilder().
		UseModule(
			morph.LoggingModule{Prefix: "morph", Debug: opts.Debug, Output: logOut},
			morph.TimeModule{},
			morph.AssetServerModule{},
			opts.ParticleModule(func(err error) { loadErr = err }),
		).
		UseRenderer(morph.RendererTerminal, renderer).
		Build()

	runErr := app.Run(nil)
	// the screen is restored by now, so errors are visible again
	if loadErr != nil {
		fmt.Fprintf(stderr, "Failed to load %s: %v\n", opts.Image, loadErr)
	}
	if runErr != nil {
		fmt.Fprintf(stderr, "%v\n", runErr)
		return 1
	}
	return 0
}
