/*

Integer 3D Vectors

*/

package meshsdf

import "gonum.org/v1/gonum/spatial/r3"

// V3i is a 3D integer vector.
type V3i [3]int

// ToV3 converts V3i (integer) to r3.Vec (float).
func (a V3i) ToV3() r3.Vec {
	return r3.Vec{X: float64(a[0]), Y: float64(a[1]), Z: float64(a[2])}
}

// Prod returns the product of the components of a.
func (a V3i) Prod() int {
	return a[0] * a[1] * a[2]
}

// Clamp clamps each component of a into [lo, hi].
func (a V3i) Clamp(lo, hi int) V3i {
	return V3i{min(max(a[0], lo), hi), min(max(a[1], lo), hi), min(max(a[2], lo), hi)}
}

// IsZero reports whether every component is zero.
func (a V3i) IsZero() bool {
	return a == V3i{}
}

// onBorder reports whether the grid index (x, y, z) lies on the outer
// layer of a grid of dimensions a.
func (a V3i) onBorder(x, y, z int) bool {
	return x == 0 || y == 0 || z == 0 || x == a[0]-1 || y == a[1]-1 || z == a[2]-1
}

// index returns the linear index of (x, y, z), X varying fastest.
func (a V3i) index(x, y, z int) int {
	return (z*a[1]+y)*a[0] + x
}
