package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gekko3d/morph"
	"github.com/gekko3d/morph/render/ebit"
)

func main() {
	opts := morph.DefaultOptions()
	opts.Bind(flag.CommandLine)
	flag.Parse()
	if err := opts.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		flag.Usage()
		os.Exit(2)
	}

	cfg := ebit.DefaultConfig()
	cfg.Width, cfg.Height = opts.Width, opts.Height
	cfg.Camera.Parallax = float32(opts.Parallax)
	cfg.Overlay = opts.Debug

	app := morph.NewSessionBuilder().
		UseModule(
			morph.LoggingModule{Prefix: "morph", Debug: opts.Debug},
			morph.TimeModule{},
			morph.AssetServerModule{},
			opts.ParticleModule(nil),
		).
		UseRenderer(morph.RendererEbiten, ebit.New(cfg)).
		Build()

	if err := app.Run(nil); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}
