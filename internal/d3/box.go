package d3

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// d3.Box is a 3d bounding box.
type Box r3.Box

// NewBox creates a 3d box with a given center and size.
func NewBox(center, size r3.Vec) Box {
	half := r3.Scale(0.5, size)
	return Box{Min: r3.Sub(center, half), Max: r3.Add(center, half)}
}

// CenteredBox creates a Box with a given center and half extent.
// Negative components of extent will be interpreted as zero.
func CenteredBox(center, extent r3.Vec) Box {
	extent = MaxElem(extent, r3.Vec{}) // set negative values to zero.
	return Box{Min: r3.Sub(center, extent), Max: r3.Add(center, extent)}
}

// EmptyBox returns an inverted box that any call to Include
// or Extend will collapse onto its argument.
func EmptyBox() Box {
	return Box{Min: Elem(math.MaxFloat64), Max: Elem(-math.MaxFloat64)}
}

// IsEmpty returns true if the box has a negative size along any axis.
func (a Box) IsEmpty() bool {
	return a.Max.X < a.Min.X || a.Max.Y < a.Min.Y || a.Max.Z < a.Min.Z
}

// Equals test the equality of 3d boxes.
func (a Box) Equals(b Box, tol float64) bool {
	return EqualWithin(a.Min, b.Min, tol) && EqualWithin(a.Max, b.Max, tol)
}

// Extend returns a box enclosing two 3d boxes.
func (a Box) Extend(b Box) Box {
	return Box{
		Min: MinElem(a.Min, b.Min),
		Max: MaxElem(a.Max, b.Max),
	}
}

// Include enlarges a 3d box to include a point.
func (a Box) Include(v r3.Vec) Box {
	return Box{
		Min: MinElem(a.Min, v),
		Max: MaxElem(a.Max, v),
	}
}

// Size returns the size of a 3d box.
func (a Box) Size() r3.Vec {
	return r3.Sub(a.Max, a.Min)
}

// Extent returns the half size of a 3d box.
func (a Box) Extent() r3.Vec {
	return r3.Scale(0.5, a.Size())
}

// Center returns the center of a 3d box.
func (a Box) Center() r3.Vec {
	return r3.Add(a.Min, r3.Scale(0.5, a.Size()))
}

// Enlarge returns a new 3d box enlarged by a size vector.
func (a Box) Enlarge(v r3.Vec) Box {
	v = r3.Scale(0.5, v)
	return Box{
		Min: r3.Sub(a.Min, v),
		Max: r3.Add(a.Max, v),
	}
}

// Contains checks if the 3d box contains the given vector (considering bounds as inside).
func (a Box) Contains(v r3.Vec) bool {
	return a.Min.X <= v.X && a.Min.Y <= v.Y && a.Min.Z <= v.Z &&
		v.X <= a.Max.X && v.Y <= a.Max.Y && v.Z <= a.Max.Z
}

// StrictlyContains returns true if b lies inside a without touching any of a's faces.
func (a Box) StrictlyContains(b Box) bool {
	return a.Min.X < b.Min.X && a.Min.Y < b.Min.Y && a.Min.Z < b.Min.Z &&
		b.Max.X < a.Max.X && b.Max.Y < a.Max.Y && b.Max.Z < a.Max.Z
}

// IntersectRay clips the parametric ray origin + t*dir against the box
// using the slab method. It returns the clipped interval within [tMin, tMax]
// and false if the ray misses the box in that interval.
func (a Box) IntersectRay(origin, dir r3.Vec, tMin, tMax float64) (t0, t1 float64, ok bool) {
	if a.IsEmpty() {
		return 0, 0, false
	}
	t0, t1 = tMin, tMax
	o := [3]float64{origin.X, origin.Y, origin.Z}
	d := [3]float64{dir.X, dir.Y, dir.Z}
	lo := [3]float64{a.Min.X, a.Min.Y, a.Min.Z}
	hi := [3]float64{a.Max.X, a.Max.Y, a.Max.Z}
	for i := 0; i < 3; i++ {
		if d[i] == 0 {
			if o[i] < lo[i] || o[i] > hi[i] {
				return 0, 0, false
			}
			continue
		}
		inv := 1 / d[i]
		tNear := (lo[i] - o[i]) * inv
		tFar := (hi[i] - o[i]) * inv
		if tNear > tFar {
			tNear, tFar = tFar, tNear
		}
		if tNear > t0 {
			t0 = tNear
		}
		if tFar < t1 {
			t1 = tFar
		}
		if t0 > t1 {
			return 0, 0, false
		}
	}
	return t0, t1, true
}
