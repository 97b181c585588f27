package meshsdf

import (
	"strconv"

	"github.com/soypat/meshsdf/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// BlendMode is the blend mode of a material slot.
type BlendMode uint8

const (
	Opaque BlendMode = iota
	Masked
	Translucent
	Additive
	Modulate
	AlphaComposite
)

// ContributesGeometry reports whether sections drawn with b are voxelized.
// Only opaque and masked materials occlude.
func (b BlendMode) ContributesGeometry() bool {
	return b == Opaque || b == Masked
}

func (b BlendMode) String() string {
	switch b {
	case Opaque:
		return "opaque"
	case Masked:
		return "masked"
	case Translucent:
		return "translucent"
	case Additive:
		return "additive"
	case Modulate:
		return "modulate"
	case AlphaComposite:
		return "alphacomposite"
	}
	return "BlendMode(" + strconv.Itoa(int(b)) + ")"
}

// Material holds the material slot properties that affect voxelization.
type Material struct {
	Blend    BlendMode
	TwoSided bool
}

// Section is a contiguous run of triangles drawn with one material slot.
type Section struct {
	FirstTriangle int
	NumTriangles  int
	MaterialIndex int
}

// BoxSphereBounds is an axis aligned box and a bounding sphere sharing
// the same origin.
type BoxSphereBounds struct {
	Origin       r3.Vec
	BoxExtent    r3.Vec
	SphereRadius float64
}

// Box returns the axis aligned box of the bounds.
func (b BoxSphereBounds) Box() r3.Box {
	return r3.Box(d3.CenteredBox(b.Origin, b.BoxExtent))
}

// IsZero reports whether b is the zero value.
func (b BoxSphereBounds) IsZero() bool {
	return b == BoxSphereBounds{}
}

// BoundsFromPositions returns the tightest box bounds around positions.
// An empty slice yields the zero value.
func BoundsFromPositions(positions []r3.Vec) BoxSphereBounds {
	if len(positions) == 0 {
		return BoxSphereBounds{}
	}
	bb := d3.Set(positions).Bounds()
	center := bb.Center()
	var radius float64
	for _, p := range positions {
		radius = max(radius, r3.Norm(r3.Sub(p, center)))
	}
	return BoxSphereBounds{Origin: center, BoxExtent: bb.Extent(), SphereRadius: radius}
}

// MeshSource is a single LOD of a static mesh as seen by the distance
// field builder. Indices holds three position indices per triangle.
//
// An empty Sections slice means a single section spanning every triangle
// using material slot 0. Slots missing from Materials are opaque and one sided.
type MeshSource struct {
	Name      string
	Positions []r3.Vec
	Indices   []uint32
	Sections  []Section
	Materials []Material
	// Bounds of the mesh in local space. The zero value is replaced
	// with bounds computed from Positions.
	Bounds BoxSphereBounds
}

// NumTriangles returns the number of triangles in the index buffer.
func (m *MeshSource) NumTriangles() int { return len(m.Indices) / 3 }

// LocalBounds returns m.Bounds, or the bounds of m.Positions when unset.
func (m *MeshSource) LocalBounds() BoxSphereBounds {
	if m.Bounds.IsZero() {
		return BoundsFromPositions(m.Positions)
	}
	return m.Bounds
}

func (m *MeshSource) sections() []Section {
	if len(m.Sections) == 0 {
		return []Section{{NumTriangles: m.NumTriangles()}}
	}
	return m.Sections
}

func (m *MeshSource) material(slot int) Material {
	if slot < 0 || slot >= len(m.Materials) {
		return Material{Blend: Opaque}
	}
	return m.Materials[slot]
}

// triangle returns the positions of triangle i. ok is false if any index
// is out of range.
func (m *MeshSource) triangle(i int) (tri [3]r3.Vec, ok bool) {
	if i < 0 || 3*i+2 >= len(m.Indices) {
		return tri, false
	}
	for j := 0; j < 3; j++ {
		idx := int(m.Indices[3*i+j])
		if idx >= len(m.Positions) {
			return tri, false
		}
		tri[j] = m.Positions[idx]
	}
	return tri, true
}
