// Command sdfbake bakes signed distance field volumes from mesh files.
//
//	sdfbake [flags] mesh.stl [mesh.obj ...]
//
// Each mesh is written to the output directory as NAME.sdf holding the
// quantized voxels and NAME.sdf.yaml describing them.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/soypat/meshsdf/internal/config"
	"github.com/soypat/meshsdf/internal/logger"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "sdfbake:", err)
		os.Exit(2)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintln(os.Stderr, "sdfbake:", err)
		os.Exit(2)
	}
	err = run(cfg, logger.Log)
	if err != nil {
		logger.Log.Error("bake failed", zap.Error(err))
	}
	logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}
