// Package accel implements ray intersection acceleration structures
// over triangle soups. Two interchangeable backends are provided: a
// bounding interval hierarchy built directly over the triangles and a
// collider backed by github.com/unixpickle/model3d.
package accel

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// Triangle tags.
const (
	OneSided uint8 = 0
	TwoSided uint8 = 1
)

// Triangle is a triangle in local space with a per-triangle tag.
// Tag is OneSided or TwoSided and is reported back on hits.
type Triangle struct {
	V   [3]r3.Vec
	Tag uint8
}

// Normal returns the unit normal of the triangle following the
// right hand rule on its vertex order.
func (t Triangle) Normal() r3.Vec {
	e1 := r3.Sub(t.V[1], t.V[0])
	e2 := r3.Sub(t.V[2], t.V[0])
	return r3.Unit(r3.Cross(e1, e2))
}

// Hit is the nearest intersection reported by a Structure.
type Hit struct {
	// T is the hit position as a fraction of the ray segment.
	T float64
	// Normal is the unit geometric normal of the hit triangle.
	Normal r3.Vec
	// Tag of the hit triangle.
	Tag uint8
}

// Structure answers nearest-hit queries against a fixed set of triangles.
// Implementations are safe for concurrent use once built.
type Structure interface {
	// Intersect returns the nearest hit along origin + t*dir for t in [tMin, tMax].
	Intersect(origin, dir r3.Vec, tMin, tMax float64) (Hit, bool)
	// Bounds returns the bounding box of all triangles. It is empty
	// (Min > Max) when the structure holds no triangles.
	Bounds() r3.Box
	// Len returns the number of triangles.
	Len() int
}

// Backend selects the acceleration structure implementation.
type Backend string

const (
	// BackendBIH is the in-package bounding interval hierarchy.
	BackendBIH Backend = "bih"
	// BackendCollider is the model3d collider backend.
	BackendCollider Backend = "model3d"
)

// ParseBackend parses a backend name. The empty string selects BackendBIH.
func ParseBackend(s string) (Backend, error) {
	switch Backend(strings.ToLower(s)) {
	case "", BackendBIH:
		return BackendBIH, nil
	case BackendCollider:
		return BackendCollider, nil
	}
	return "", fmt.Errorf("unknown acceleration backend %q", s)
}

// Build constructs the structure for backend over tris.
func Build(backend Backend, tris []Triangle) (Structure, error) {
	switch backend {
	case "", BackendBIH:
		return NewBIH(tris), nil
	case BackendCollider:
		return NewCollider(tris)
	}
	return nil, fmt.Errorf("unknown acceleration backend %q", backend)
}

// BackendError is returned when a backend fails to initialize.
type BackendError struct {
	// Call names the library call that failed.
	Call string
	// Code identifies the failure.
	Code int
	Err  error
}

// Backend error codes.
const (
	CodeInvalidArgument = 1 + iota
	CodeInvalidOperation
)

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s failed with code %d: %v", e.Call, e.Code, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

// intersectTriangle is the Möller–Trumbore ray/triangle test. Both faces
// are hit; t is relative to dir's length.
func intersectTriangle(origin, dir r3.Vec, tri *Triangle) (t float64, ok bool) {
	const eps = 1e-12
	e1 := r3.Sub(tri.V[1], tri.V[0])
	e2 := r3.Sub(tri.V[2], tri.V[0])
	p := r3.Cross(dir, e2)
	det := r3.Dot(e1, p)
	if math.Abs(det) <= eps*r3.Norm(e1)*r3.Norm(e2)*r3.Norm(dir) {
		return 0, false
	}
	inv := 1 / det
	s := r3.Sub(origin, tri.V[0])
	u := r3.Dot(s, p) * inv
	if u < 0 || u > 1 {
		return 0, false
	}
	q := r3.Cross(s, e1)
	v := r3.Dot(dir, q) * inv
	if v < 0 || u+v > 1 {
		return 0, false
	}
	return r3.Dot(e2, q) * inv, true
}
