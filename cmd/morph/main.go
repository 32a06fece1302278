package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"

	"github.com/gekko3d/morph"
	"github.com/gekko3d/morph/render/gpu"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	opts := morph.DefaultOptions()
	opts.Bind(flag.CommandLine)
	flag.Parse()
	if err := opts.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		flag.Usage()
		os.Exit(2)
	}

	cfg := gpu.DefaultConfig()
	cfg.Width, cfg.Height = opts.Width, opts.Height
	cfg.Camera.Parallax = float32(opts.Parallax)

	renderer, err := gpu.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize renderer: %v\n", err)
		os.Exit(1)
	}

	app := morph.NewSessionBuilder().
		UseModule(
			morph.LoggingModule{Prefix: "morph", Debug: opts.Debug},
			morph.TimeModule{},
			morph.AssetServerModule{},
			opts.ParticleModule(nil),
		).
		UseRenderer(morph.RendererWGPU, renderer).
		Build()

	if err := app.Run(nil); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}
