package config

import (
	"flag"
	"io"

	"github.com/soypat/meshsdf/accel"
)

type flags struct {
	fs       *flag.FlagSet
	config   string
	debug    bool
	backend  string
	eightBit bool
	compress bool
	scale    float64
	twoSided bool
	workers  int
	jobs     int
	out      string
	slice    int
	logFile  string
}

func newFlags(output io.Writer) *flags {
	f := &flags{fs: flag.NewFlagSet("sdfbake", flag.ContinueOnError)}
	f.fs.SetOutput(output)
	f.fs.StringVar(&f.config, "config", "", "path to config file")
	f.fs.BoolVar(&f.debug, "debug", false, "enable debug logging")
	f.fs.StringVar(&f.backend, "backend", "", "ray tracing backend: "+string(accel.BackendBIH)+" or "+string(accel.BackendCollider))
	f.fs.BoolVar(&f.eightBit, "eight-bit", false, "store 8 bit distances instead of half floats")
	f.fs.BoolVar(&f.compress, "compress", false, "zlib compress volume data")
	f.fs.Float64Var(&f.scale, "scale", 0, "resolution scale")
	f.fs.BoolVar(&f.twoSided, "two-sided", false, "build as if every material were two sided")
	f.fs.IntVar(&f.workers, "workers", 0, "concurrent Z slices per mesh")
	f.fs.IntVar(&f.jobs, "jobs", 0, "concurrent mesh builds")
	f.fs.StringVar(&f.out, "out", "", "output directory")
	f.fs.IntVar(&f.slice, "slice", -1, "write PNG previews of this Z slice")
	f.fs.StringVar(&f.logFile, "log", "", "rotating log file")
	return f
}

// apply overrides cfg with the flags present on the command line.
func (f *flags) apply(cfg *Config) {
	f.fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "debug":
			if f.debug {
				cfg.Logging.Level = "debug"
			}
		case "backend":
			cfg.Build.Backend = accel.Backend(f.backend)
		case "eight-bit":
			cfg.Build.EightBit = f.eightBit
		case "compress":
			cfg.Build.Compress = f.compress
		case "scale":
			cfg.Bake.Scale = f.scale
		case "two-sided":
			cfg.Bake.TwoSided = f.twoSided
		case "workers":
			cfg.Build.Workers = f.workers
		case "jobs":
			cfg.Bake.Jobs = f.jobs
		case "out":
			cfg.Bake.OutDir = f.out
		case "slice":
			cfg.Bake.Slice = f.slice
		case "log":
			cfg.Logging.LogFile = f.logFile
		}
	})
	if args := f.fs.Args(); len(args) > 0 {
		cfg.Bake.Inputs = args
	}
}
