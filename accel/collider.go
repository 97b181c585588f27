package accel

import (
	"errors"
	"fmt"

	"github.com/soypat/meshsdf/internal/d3"
	"github.com/unixpickle/model3d/model3d"
	"gonum.org/v1/gonum/spatial/r3"
)

// Collider is a Structure backed by a model3d triangle collider.
type Collider struct {
	collider model3d.Collider
	tags     map[*model3d.Triangle]uint8
	bb       d3.Box
	n        int
}

var _ Structure = (*Collider)(nil)

// NewCollider builds a model3d collider over tris. Initialization failures
// are reported as a *BackendError naming the failing call.
func NewCollider(tris []Triangle) (*Collider, error) {
	c := &Collider{
		tags: make(map[*model3d.Triangle]uint8, len(tris)),
		bb:   d3.EmptyBox(),
		n:    len(tris),
	}
	if len(tris) == 0 {
		return c, nil
	}
	mtris := make([]*model3d.Triangle, len(tris))
	for i := range tris {
		mt := &model3d.Triangle{}
		for j, v := range tris[i].V {
			if !d3.IsFinite(v) {
				return nil, &BackendError{
					Call: "model3d.Triangle",
					Code: CodeInvalidArgument,
					Err:  fmt.Errorf("triangle %d vertex %d is not finite: %v", i, j, v),
				}
			}
			mt[j] = model3d.XYZ(v.X, v.Y, v.Z)
			c.bb = c.bb.Include(v)
		}
		mtris[i] = mt
		c.tags[mt] = tris[i].Tag
	}
	collider, err := groupedCollider(mtris)
	if err != nil {
		return nil, err
	}
	c.collider = collider
	return c, nil
}

func groupedCollider(mtris []*model3d.Triangle) (collider model3d.Collider, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &BackendError{
				Call: "model3d.GroupedTrianglesToCollider",
				Code: CodeInvalidOperation,
				Err:  fmt.Errorf("%v", r),
			}
		}
	}()
	collider = model3d.GroupedTrianglesToCollider(mtris)
	if collider == nil {
		return nil, &BackendError{
			Call: "model3d.GroupedTrianglesToCollider",
			Code: CodeInvalidOperation,
			Err:  errors.New("nil collider"),
		}
	}
	return collider, nil
}

// Intersect implements Structure.
func (c *Collider) Intersect(origin, dir r3.Vec, tMin, tMax float64) (Hit, bool) {
	if c.collider == nil {
		return Hit{}, false
	}
	ray := &model3d.Ray{
		Origin:    model3d.XYZ(origin.X, origin.Y, origin.Z),
		Direction: model3d.XYZ(dir.X, dir.Y, dir.Z),
	}
	coll, ok := c.collider.FirstRayCollision(ray)
	if !ok || coll.Scale < tMin || coll.Scale > tMax {
		return Hit{}, false
	}
	var tag uint8
	if tc, ok := coll.Extra.(*model3d.TriangleCollision); ok {
		tag = c.tags[tc.Triangle]
	}
	return Hit{
		T:      coll.Scale,
		Normal: r3.Unit(r3.Vec{X: coll.Normal.X, Y: coll.Normal.Y, Z: coll.Normal.Z}),
		Tag:    tag,
	}, true
}

// Bounds implements Structure.
func (c *Collider) Bounds() r3.Box { return r3.Box(c.bb) }

// Len implements Structure.
func (c *Collider) Len() int { return c.n }
