package meshsdf

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/klauspost/compress/zlib"
	"github.com/soypat/meshsdf/internal/d3"
	"github.com/x448/float16"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// Format is the storage format of a quantized volume.
type Format uint8

const (
	// FormatHalf stores each voxel as an IEEE 754 half float, little endian.
	FormatHalf Format = iota
	// FormatEightBit stores each voxel as an 8 bit unsigned normalized value
	// spanning VolumeData.DistanceMinMax.
	FormatEightBit
)

func (f Format) String() string {
	switch f {
	case FormatHalf:
		return "half"
	case FormatEightBit:
		return "8bit"
	}
	return fmt.Sprintf("Format(%d)", uint8(f))
}

// BytesPerVoxel returns the uncompressed voxel size in bytes.
func (f Format) BytesPerVoxel() int {
	if f == FormatEightBit {
		return 1
	}
	return 2
}

// VolumeData is a baked signed distance field. Distances are in volume
// space: local distances divided by the largest half extent of
// LocalBoundingBox. Negative values lie inside the mesh.
type VolumeData struct {
	// Size is the number of voxels along each axis. It is zero when the
	// mesh was not closed or the build was skipped.
	Size V3i
	// LocalBoundingBox is the mesh bounds expanded so that border voxels
	// lie outside the mesh.
	LocalBoundingBox r3.Box
	// DistanceMinMax is the minimum (X) and maximum (Y) volume space
	// distance clamped to [-1, 1].
	DistanceMinMax    r2.Vec
	MeshWasClosed     bool
	BuiltAsIfTwoSided bool
	MeshWasPlane      bool
	Format            Format
	Compressed        bool
	// Data holds Size.Prod() quantized voxels, X varying fastest then Y then Z.
	Data []byte
}

// ErrEmptyVolume is returned when decoding a volume that holds no voxels.
var ErrEmptyVolume = errors.New("meshsdf: empty volume")

// IsEmpty reports whether v holds no voxels.
func (v *VolumeData) IsEmpty() bool {
	return v.Size.Prod() == 0 || len(v.Data) == 0
}

// ResourceSize returns the bytes held by v: its voxel data plus the
// fixed size fields describing it.
func (v *VolumeData) ResourceSize() int {
	const flags = 5 // MeshWasClosed, BuiltAsIfTwoSided, MeshWasPlane, Format, Compressed
	fixed := 8*len(v.Size) + binary.Size(v.LocalBoundingBox) + binary.Size(v.DistanceMinMax) + flags
	return fixed + cap(v.Data)
}

// Quantized returns the uncompressed quantized voxel bytes.
func (v *VolumeData) Quantized() ([]byte, error) {
	if v.IsEmpty() {
		return nil, ErrEmptyVolume
	}
	raw := v.Data
	if v.Compressed {
		var err error
		raw, err = decompress(v.Data)
		if err != nil {
			return nil, err
		}
	}
	want := v.Size.Prod() * v.Format.BytesPerVoxel()
	if len(raw) != want {
		return nil, fmt.Errorf("meshsdf: volume holds %d bytes, want %d for size %v", len(raw), want, v.Size)
	}
	return raw, nil
}

// Distances decodes every voxel to a volume space distance.
func (v *VolumeData) Distances() ([]float32, error) {
	raw, err := v.Quantized()
	if err != nil {
		return nil, err
	}
	dst := make([]float32, v.Size.Prod())
	for i := range dst {
		dst[i] = v.decode(raw, i)
	}
	return dst, nil
}

// Sample decodes the voxel at grid index (x, y, z).
func (v *VolumeData) Sample(x, y, z int) (float32, error) {
	if x < 0 || y < 0 || z < 0 || x >= v.Size[0] || y >= v.Size[1] || z >= v.Size[2] {
		return 0, fmt.Errorf("meshsdf: voxel (%d,%d,%d) out of range %v", x, y, z, v.Size)
	}
	raw, err := v.Quantized()
	if err != nil {
		return 0, err
	}
	return v.decode(raw, v.Size.index(x, y, z)), nil
}

func (v *VolumeData) decode(raw []byte, i int) float32 {
	if v.Format == FormatEightBit {
		lo, hi := float32(v.DistanceMinMax.X), float32(v.DistanceMinMax.Y)
		return lo + float32(raw[i])/255*(hi-lo)
	}
	return float16.Frombits(binary.LittleEndian.Uint16(raw[2*i:])).Float32()
}

// VoxelCenter returns the local space center of voxel (x, y, z).
func (v *VolumeData) VoxelCenter(x, y, z int) r3.Vec {
	box := d3.Box(v.LocalBoundingBox)
	voxel := d3.DivElem(box.Size(), v.Size.ToV3())
	return r3.Add(box.Min, d3.MulElem(r3.Vec{X: float64(x) + 0.5, Y: float64(y) + 0.5, Z: float64(z) + 0.5}, voxel))
}

func decompress(b []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("meshsdf: opening compressed volume: %w", err)
	}
	defer zr.Close()
	raw, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("meshsdf: decompressing volume: %w", err)
	}
	return raw, nil
}

// expandedBounds pads the mesh bounds so that every border voxel of the
// volume lies outside the mesh surface.
func expandedBounds(mesh d3.Box, cfg *Config) d3.Box {
	extent := mesh.Extent()
	maxExtent := d3.Max(extent)
	pad := d3.MaxElem(d3.Elem(0.2*maxExtent), r3.Scale(4/float64(cfg.MinVoxelsOneDim), extent))
	pad = d3.MaxElem(pad, d3.Elem(cfg.Heuristics.MinBoundsPadding))
	return d3.CenteredBox(mesh.Center(), r3.Add(extent, pad))
}

// volumeDims returns the voxel counts of box at the configured density.
func volumeDims(box d3.Box, cfg *Config, resolutionScale float64) V3i {
	density := cfg.VoxelDensity * resolutionScale
	size := r3.Scale(density, box.Size())
	// clamp before truncation so huge meshes do not overflow int.
	ceil := float64(cfg.MaxVoxelsOneDim)
	dims := V3i{int(math.Min(size.X, ceil)), int(math.Min(size.Y, ceil)), int(math.Min(size.Z, ceil))}
	return dims.Clamp(cfg.MinVoxelsOneDim, cfg.MaxVoxelsOneDim)
}
