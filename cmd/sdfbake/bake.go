package main

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/soypat/meshsdf"
	"github.com/soypat/meshsdf/internal/config"
	"github.com/soypat/meshsdf/meshio"
	"github.com/soypat/meshsdf/preview"
	"go.uber.org/zap"
	"gonum.org/v1/plot/vg"
	"gopkg.in/yaml.v3"
)

// header is written next to the raw voxel data.
type header struct {
	Mesh              string     `yaml:"mesh"`
	Key               string     `yaml:"key"`
	Size              [3]int     `yaml:"size"`
	BoundsMin         [3]float64 `yaml:"bounds_min"`
	BoundsMax         [3]float64 `yaml:"bounds_max"`
	DistanceMin       float64    `yaml:"distance_min"`
	DistanceMax       float64    `yaml:"distance_max"`
	Format            string     `yaml:"format"`
	Compressed        bool       `yaml:"compressed"`
	MeshWasClosed     bool       `yaml:"mesh_was_closed"`
	MeshWasPlane      bool       `yaml:"mesh_was_plane"`
	BuiltAsIfTwoSided bool       `yaml:"built_as_if_two_sided"`
}

type job struct {
	name string
	path string
	key  string
	tris []meshio.Triangle
}

func run(cfg *config.Config, log *zap.Logger) error {
	if err := os.MkdirAll(cfg.Bake.OutDir, 0o755); err != nil {
		return err
	}
	gen := meshsdf.NewGenerator(cfg.Build, log)
	queue := meshsdf.NewBuildQueue(gen, cfg.Bake.Jobs)
	queue.OnRelease = func(name string, v *meshsdf.VolumeData) {
		log.Debug("volume released", zap.String("mesh", name), zap.Int("bytes", v.ResourceSize()))
	}

	var jobs []job
	names := meshNames(cfg.Bake.Inputs)
	for i, path := range cfg.Bake.Inputs {
		j, src, err := load(path, names[i], cfg, log)
		if err != nil {
			queue.Close()
			return err
		}
		if err := queue.Submit(src, cfg.Bake.Scale, cfg.Bake.TwoSided); err != nil {
			queue.Close()
			return fmt.Errorf("%s: %w", path, err)
		}
		jobs = append(jobs, j)
	}

	var errs []error
	for _, j := range jobs {
		if err := write(queue, j, cfg, log); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", j.path, err))
		}
		if err := queue.Release(j.name); err != nil && !errors.Is(err, meshsdf.ErrUnknownBuild) {
			errs = append(errs, err)
		}
	}
	if err := queue.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// meshNames returns a distinct mesh name per input path: the file name
// without extension, suffixed with _2, _3... when already taken.
func meshNames(paths []string) []string {
	names := make([]string, len(paths))
	taken := make(map[string]bool, len(paths))
	for i, path := range paths {
		base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		name := base
		for n := 2; taken[name]; n++ {
			name = fmt.Sprintf("%s_%d", base, n)
		}
		taken[name] = true
		names[i] = name
	}
	return names
}

func load(path, name string, cfg *config.Config, log *zap.Logger) (job, meshsdf.MeshSource, error) {
	tris, err := meshio.Load(path)
	if errors.Is(err, meshio.ErrNormalMismatch) {
		log.Warn("stored normals disagree with winding", zap.String("path", path))
	} else if err != nil {
		return job{}, meshsdf.MeshSource{}, err
	}
	src, err := meshio.ToMeshSource(name, tris, cfg.Bake.WeldTolerance)
	if err != nil {
		return job{}, meshsdf.MeshSource{}, fmt.Errorf("%s: %w", path, err)
	}
	key := meshsdf.DerivedDataKey(src, cfg.Build, cfg.Bake.Scale, cfg.Bake.TwoSided)
	log.Info("mesh loaded",
		zap.String("mesh", name),
		zap.String("path", path),
		zap.Int("triangles", src.NumTriangles()),
		zap.Int("vertices", len(src.Positions)),
		zap.String("key", key),
	)
	return job{name: name, path: path, key: key, tris: tris}, src, nil
}

func write(queue *meshsdf.BuildQueue, j job, cfg *config.Config, log *zap.Logger) error {
	start := time.Now()
	h, err := queue.Wait(j.name)
	if err != nil {
		return err
	}
	defer h.Release()
	vol := h.Data()
	base := filepath.Join(cfg.Bake.OutDir, j.name)
	if err := os.WriteFile(base+".sdf", vol.Data, 0o644); err != nil {
		return err
	}
	bb := vol.LocalBoundingBox
	hdr := header{
		Mesh:              j.name,
		Key:               j.key,
		Size:              [3]int(vol.Size),
		BoundsMin:         [3]float64{bb.Min.X, bb.Min.Y, bb.Min.Z},
		BoundsMax:         [3]float64{bb.Max.X, bb.Max.Y, bb.Max.Z},
		DistanceMin:       vol.DistanceMinMax.X,
		DistanceMax:       vol.DistanceMinMax.Y,
		Format:            vol.Format.String(),
		Compressed:        vol.Compressed,
		MeshWasClosed:     vol.MeshWasClosed,
		MeshWasPlane:      vol.MeshWasPlane,
		BuiltAsIfTwoSided: vol.BuiltAsIfTwoSided,
	}
	b, err := yaml.Marshal(hdr)
	if err != nil {
		return err
	}
	if err := os.WriteFile(base+".sdf.yaml", b, 0o644); err != nil {
		return err
	}
	if cfg.Bake.Slice >= 0 {
		if err := writePreviews(base, j.tris, vol, cfg); err != nil {
			return err
		}
	}
	log.Info("volume written",
		zap.String("mesh", j.name),
		zap.String("path", base+".sdf"),
		zap.Bool("closed", vol.MeshWasClosed),
		zap.Int("bytes", len(vol.Data)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}

func writePreviews(base string, tris []meshio.Triangle, vol *meshsdf.VolumeData, cfg *config.Config) error {
	width := cfg.Bake.PreviewWidth
	img, err := preview.MeshImage(meshio.ToFauxgl(tris), int(width), int(width), preview.DefaultView())
	if err != nil {
		return err
	}
	if err := savePNG(base+"_mesh.png", img); err != nil {
		return err
	}
	if vol.IsEmpty() {
		return nil
	}
	interior, err := preview.InteriorMesh(vol)
	if err != nil {
		return err
	}
	if len(interior.Triangles) > 0 {
		img, err = preview.MeshImage(interior, int(width), int(width), preview.DefaultView())
		if err != nil {
			return err
		}
		if err := savePNG(base+"_voxels.png", img); err != nil {
			return err
		}
	}
	z := min(cfg.Bake.Slice, vol.Size[2]-1)
	img, err = preview.SliceImage(vol, z, width)
	if err != nil {
		return err
	}
	if err := savePNG(fmt.Sprintf("%s_z%d.png", base, z), img); err != nil {
		return err
	}
	p, err := preview.SlicePlot(vol, z)
	if err != nil {
		return err
	}
	return p.Save(5*vg.Inch, 5*vg.Inch, fmt.Sprintf("%s_z%d_plot.png", base, z))
}

func savePNG(path string, img image.Image) error {
	fp, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(fp, img); err != nil {
		fp.Close()
		return err
	}
	return fp.Close()
}
