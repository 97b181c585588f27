// Package preview renders debug images of baked distance field volumes
// and of the meshes they were baked from.
package preview

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/fogleman/fauxgl"
	"github.com/nfnt/resize"
	"github.com/soypat/meshsdf"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
)

// slice is a decoded Z slice of a volume.
type slice struct {
	nx, ny int
	d      []float32
	box    [2][2]float64 // X and Y ranges of the volume box.
}

func zSlice(vol *meshsdf.VolumeData, z int) (slice, error) {
	if z < 0 || z >= vol.Size[2] {
		return slice{}, fmt.Errorf("slice %d out of range [0,%d)", z, vol.Size[2])
	}
	dist, err := vol.Distances()
	if err != nil {
		return slice{}, err
	}
	n := vol.Size[0] * vol.Size[1]
	bb := vol.LocalBoundingBox
	return slice{
		nx:  vol.Size[0],
		ny:  vol.Size[1],
		d:   dist[z*n : (z+1)*n],
		box: [2][2]float64{{bb.Min.X, bb.Max.X}, {bb.Min.Y, bb.Max.Y}},
	}, nil
}

// SliceImage returns slice z of vol as a grayscale image scaled to
// width pixels wide, +Y pointing up. Black is the minimum distance and
// white the maximum.
func SliceImage(vol *meshsdf.VolumeData, z int, width uint) (image.Image, error) {
	s, err := zSlice(vol, z)
	if err != nil {
		return nil, err
	}
	lo, hi := float32(vol.DistanceMinMax.X), float32(vol.DistanceMinMax.Y)
	img := image.NewGray(image.Rect(0, 0, s.nx, s.ny))
	for y := 0; y < s.ny; y++ {
		for x := 0; x < s.nx; x++ {
			var g uint8
			if hi > lo {
				v := (s.d[y*s.nx+x] - lo) / (hi - lo)
				g = uint8(255*min(max(v, 0), 1) + 0.5)
			}
			img.SetGray(x, s.ny-1-y, color.Gray{Y: g})
		}
	}
	if width == 0 || width == uint(s.nx) {
		return img, nil
	}
	return resize.Resize(width, 0, img, resize.NearestNeighbor), nil
}

// SlicePlot returns a heat map plot of slice z of vol in local coordinates.
// Interior voxels are blue and exterior voxels red.
func SlicePlot(vol *meshsdf.VolumeData, z int) (*plot.Plot, error) {
	s, err := zSlice(vol, z)
	if err != nil {
		return nil, err
	}
	cm := moreland.SmoothBlueRed()
	cm.SetMin(-1)
	cm.SetMax(1)
	h := plotter.NewHeatMap(s, cm.Palette(255))
	h.Min, h.Max = -1, 1

	p := plot.New()
	p.Title.Text = fmt.Sprintf("distance field slice z=%d", z)
	p.X.Label.Text = "X"
	p.Y.Label.Text = "Y"
	p.Add(h)
	return p, nil
}

// Dims implements plotter.GridXYZ.
func (s slice) Dims() (c, r int) { return s.nx, s.ny }

// Z implements plotter.GridXYZ. Values outside [-1, 1] are clamped.
func (s slice) Z(c, r int) float64 {
	return float64(min(max(s.d[r*s.nx+c], -1), 1))
}

// X implements plotter.GridXYZ.
func (s slice) X(c int) float64 {
	step := (s.box[0][1] - s.box[0][0]) / float64(s.nx)
	return s.box[0][0] + (float64(c)+0.5)*step
}

// Y implements plotter.GridXYZ.
func (s slice) Y(r int) float64 {
	step := (s.box[1][1] - s.box[1][0]) / float64(s.ny)
	return s.box[1][0] + (float64(r)+0.5)*step
}

// View is the camera used by MeshImage.
type View struct {
	Eye, Center, Up fauxgl.Vector
	Near, Far       float64
	// Fovy is the vertical field of view in degrees.
	Fovy float64
}

// DefaultView looks at the bi-unit cube from the +X+Y+Z octant.
func DefaultView() View {
	return View{
		Eye:    fauxgl.V(3, 3, 2),
		Center: fauxgl.V(0, 0, 0),
		Up:     fauxgl.V(0, 0, 1),
		Near:   1,
		Far:    10,
		Fovy:   30,
	}
}

// MeshImage renders mesh with a phong shader after fitting it into the
// bi-unit cube. The mesh is modified.
func MeshImage(mesh *fauxgl.Mesh, width, height int, view View) (image.Image, error) {
	if len(mesh.Triangles) == 0 {
		return nil, errors.New("empty mesh")
	}
	const scale = 2 // supersampling
	var (
		light       = fauxgl.V(-0.75, 1, 0.25).Normalize()
		objectColor = fauxgl.HexColor("#468966")
	)
	mesh.BiUnitCube()
	context := fauxgl.NewContext(width*scale, height*scale)
	context.ClearColorBufferWith(fauxgl.HexColor("#FFF8E3"))
	aspect := float64(width) / float64(height)
	matrix := fauxgl.LookAt(view.Eye, view.Center, view.Up).Perspective(view.Fovy, aspect, view.Near, view.Far)
	shader := fauxgl.NewPhongShader(matrix, light, view.Eye)
	shader.ObjectColor = objectColor
	context.Shader = shader
	context.DrawMesh(mesh)
	// downsample image for antialiasing
	return resize.Resize(uint(width), uint(height), context.Image(), resize.Bilinear), nil
}
