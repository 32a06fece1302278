package morph

import (
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/gekko3d/morph/field"
)

// Options are the settings shared by every executable.
type Options struct {
	Image    string
	Scale    float64
	Ambient  int
	Period   time.Duration
	Seed     int64
	Width    int
	Height   int
	Debug    bool
	Parallax float64
}

func DefaultOptions() Options {
	return Options{
		Scale:   DefaultSourceScale,
		Ambient: field.DefaultAmbient,
		Period:  field.DefaultPeriod,
		Width:   1280,
		Height:  720,
	}
}

func (o *Options) Bind(fs *flag.FlagSet) {
	fs.StringVar(&o.Image, "image", o.Image, "source image: file path or http(s) URL (png, jpeg, gif, webp, bmp, tiff, svg)")
	fs.Float64Var(&o.Scale, "scale", o.Scale, "down-sample factor applied to the source before sampling")
	fs.IntVar(&o.Ambient, "ambient", o.Ambient, "number of ambient particles")
	fs.DurationVar(&o.Period, "period", o.Period, "time between mode flips (0 disables)")
	fs.Int64Var(&o.Seed, "seed", o.Seed, "random seed (0 seeds from the clock)")
	fs.IntVar(&o.Width, "width", o.Width, "window width")
	fs.IntVar(&o.Height, "height", o.Height, "window height")
	fs.BoolVar(&o.Debug, "debug", o.Debug, "enable debug logging")
	fs.Float64Var(&o.Parallax, "parallax", o.Parallax, "camera shift in world units per unit of cursor offset")
}

func (o Options) Validate() error {
	var errs []error
	if o.Image == "" {
		errs = append(errs, errors.New("-image is required"))
	}
	if !(o.Scale > 0) {
		errs = append(errs, fmt.Errorf("-scale %v: %w", o.Scale, field.ErrInvalidScale))
	}
	if o.Ambient < 0 {
		errs = append(errs, fmt.Errorf("-ambient %d must not be negative", o.Ambient))
	}
	if o.Period < 0 {
		errs = append(errs, fmt.Errorf("-period %v must not be negative", o.Period))
	}
	return errors.Join(errs...)
}

func (o Options) ParticleModule(onFailed func(error)) ParticleFieldModule {
	return ParticleFieldModule{
		Source:   o.Image,
		Scale:    o.Scale,
		Ambient:  o.Ambient,
		Period:   o.Period,
		Seed:     o.Seed,
		OnFailed: onFailed,
	}
}
