package accel

import (
	"math"
	"sort"

	"github.com/soypat/meshsdf/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	leafNode = iota
	xClip
	yClip
	zClip
)

// maxLeafTriangles is the largest triangle count stored in a single leaf.
const maxLeafTriangles = 4

type bihNode struct {
	flags int // offset to children is stored in the upper bits, lower two bits are used as flags
	// either:
	// - left and right clipping plane values (as float64 bits)
	// - or offset into the triangle list and the end of the leaf range
	left, right int64
}

func (b *bihNode) isLeaf() bool { return (b.flags & 3) == leafNode }

func (b *bihNode) axis() int { return (b.flags & 3) - 1 }

func (b *bihNode) children() int { return b.flags >> 2 }

func (b *bihNode) leftClip() float64 { return math.Float64frombits(uint64(b.left)) }

func (b *bihNode) rightClip() float64 { return math.Float64frombits(uint64(b.right)) }

// BIH is a bounding interval hierarchy over a triangle list. Each inner
// node stores two clip planes on a single axis: the maximum extent of its
// left child and the minimum extent of its right child.
type BIH struct {
	nodes   []bihNode
	tris    []Triangle // reordered so every leaf is a contiguous range
	normals []r3.Vec
	bb      d3.Box
	// pad widens traversal boxes so rays grazing a clip plane are not lost to rounding.
	pad float64
}

var _ Structure = (*BIH)(nil)

// NewBIH builds a bounding interval hierarchy over tris. The argument
// slice is not modified. An empty slice builds a structure that never
// reports a hit.
func NewBIH(tris []Triangle) *BIH {
	b := &BIH{bb: d3.EmptyBox()}
	if len(tris) == 0 {
		return b
	}
	order := make([]int, len(tris))
	centroids := make([]r3.Vec, len(tris))
	for i := range tris {
		order[i] = i
		centroids[i] = r3.Scale(1./3., r3.Add(r3.Add(tris[i].V[0], tris[i].V[1]), tris[i].V[2]))
		for _, v := range tris[i].V {
			b.bb = b.bb.Include(v)
		}
	}
	b.pad = 1e-9 * (1 + d3.Max(b.bb.Size()))
	b.bb = b.bb.Enlarge(d3.Elem(2 * b.pad))
	b.nodes = make([]bihNode, 1, 2*len(tris)/maxLeafTriangles+1)
	b.nodes = subdivide(b.nodes, 0, 0, order, tris, centroids, b.bb)

	b.tris = make([]Triangle, len(tris))
	b.normals = make([]r3.Vec, len(tris))
	for i, idx := range order {
		b.tris[i] = tris[idx]
		b.normals[i] = tris[idx].Normal()
	}
	return b
}

func subdivide(b []bihNode, bihIdx, meshIdx int, order []int, tris []Triangle, centroids []r3.Vec, bb d3.Box) []bihNode {
	if len(order) <= maxLeafTriangles {
		b[bihIdx] = bihNode{
			flags: leafNode,
			left:  int64(meshIdx),
			right: int64(meshIdx + len(order)),
		}
		return b
	}
	// classical heuristic, the longest axis
	// using the median as the pivot point
	dims := bb.Size()
	var clip int
	if dims.X >= dims.Y && dims.X >= dims.Z {
		clip = xClip
	} else if dims.Y >= dims.X && dims.Y >= dims.Z {
		clip = yClip
	} else {
		clip = zClip
	}
	axis := clip - 1
	sort.SliceStable(order, func(i, j int) bool {
		return d3.Index(centroids[order[i]], axis) < d3.Index(centroids[order[j]], axis)
	})

	half := len(order) / 2
	leftBB := d3.EmptyBox()
	rightBB := d3.EmptyBox()
	for _, idx := range order[:half] {
		for _, v := range tris[idx].V {
			leftBB = leftBB.Include(v)
		}
	}
	for _, idx := range order[half:] {
		for _, v := range tris[idx].V {
			rightBB = rightBB.Include(v)
		}
	}

	// append two new nodes to store the children
	childIdx := len(b)
	b = append(b, bihNode{}, bihNode{})
	b = subdivide(b, childIdx, meshIdx, order[:half], tris, centroids, leftBB)
	b = subdivide(b, childIdx+1, meshIdx+half, order[half:], tris, centroids, rightBB)

	b[bihIdx] = bihNode{
		flags: childIdx<<2 | clip,
		left:  int64(math.Float64bits(d3.Index(leftBB.Max, axis))),
		right: int64(math.Float64bits(d3.Index(rightBB.Min, axis))),
	}
	return b
}

// Intersect implements Structure.
func (b *BIH) Intersect(origin, dir r3.Vec, tMin, tMax float64) (Hit, bool) {
	if len(b.tris) == 0 {
		return Hit{}, false
	}
	if _, _, ok := b.bb.IntersectRay(origin, dir, tMin, tMax); !ok {
		return Hit{}, false
	}
	best, hitIdx := b.intersectHelper(0, b.bb, origin, dir, tMin, tMax, -1)
	if hitIdx < 0 {
		return Hit{}, false
	}
	return Hit{T: best, Normal: b.normals[hitIdx], Tag: b.tris[hitIdx].Tag}, true
}

func (b *BIH) intersectHelper(idx int, bb d3.Box, origin, dir r3.Vec, tMin, best float64, hitIdx int) (float64, int) {
	node := &b.nodes[idx]
	if node.isLeaf() {
		for i := node.left; i < node.right; i++ {
			t, ok := intersectTriangle(origin, dir, &b.tris[i])
			if ok && t >= tMin && (t < best || hitIdx < 0 && t <= best) {
				best = t
				hitIdx = int(i)
			}
		}
		return best, hitIdx
	}

	leftBB, rightBB := bb, bb
	switch node.axis() {
	case 0:
		leftBB.Max.X = node.leftClip() + b.pad
		rightBB.Min.X = node.rightClip() - b.pad
	case 1:
		leftBB.Max.Y = node.leftClip() + b.pad
		rightBB.Min.Y = node.rightClip() - b.pad
	case 2:
		leftBB.Max.Z = node.leftClip() + b.pad
		rightBB.Min.Z = node.rightClip() - b.pad
	}
	leftIdx := node.children()
	rightIdx := leftIdx + 1

	lt, _, lok := leftBB.IntersectRay(origin, dir, tMin, best)
	rt, _, rok := rightBB.IntersectRay(origin, dir, tMin, best)
	// visit the child the ray enters first
	if lok && rok && rt < lt {
		best, hitIdx = b.intersectHelper(rightIdx, rightBB, origin, dir, tMin, best, hitIdx)
		if lt <= best {
			best, hitIdx = b.intersectHelper(leftIdx, leftBB, origin, dir, tMin, best, hitIdx)
		}
		return best, hitIdx
	}
	if lok {
		best, hitIdx = b.intersectHelper(leftIdx, leftBB, origin, dir, tMin, best, hitIdx)
	}
	if rok && rt <= best {
		best, hitIdx = b.intersectHelper(rightIdx, rightBB, origin, dir, tMin, best, hitIdx)
	}
	return best, hitIdx
}

// Bounds implements Structure.
func (b *BIH) Bounds() r3.Box { return r3.Box(b.bb) }

// Len implements Structure.
func (b *BIH) Len() int { return len(b.tris) }
