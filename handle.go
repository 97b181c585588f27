package meshsdf

import (
	"sync"
	"sync/atomic"
)

// VolumeHandle shares ownership of a VolumeData. The release function
// runs exactly once, after the last reference is released.
type VolumeHandle struct {
	data    *VolumeData
	refs    atomic.Int64
	once    sync.Once
	release func(*VolumeData)
}

// NewVolumeHandle returns a handle holding one reference to v.
// release may be nil.
func NewVolumeHandle(v *VolumeData, release func(*VolumeData)) *VolumeHandle {
	h := &VolumeHandle{data: v, release: release}
	h.refs.Store(1)
	return h
}

// Data returns the volume. It must not be used after the caller's
// reference is released.
func (h *VolumeHandle) Data() *VolumeData { return h.data }

// Refs returns the current number of references.
func (h *VolumeHandle) Refs() int { return int(h.refs.Load()) }

// Retain adds a reference. It returns false if the handle was already
// fully released, in which case no reference is taken.
func (h *VolumeHandle) Retain() bool {
	for {
		n := h.refs.Load()
		if n <= 0 {
			return false
		}
		if h.refs.CompareAndSwap(n, n+1) {
			return true
		}
	}
}

// Release drops a reference. Releasing more times than retained has no
// effect past the first time the count reaches zero.
func (h *VolumeHandle) Release() {
	for {
		n := h.refs.Load()
		if n <= 0 {
			return
		}
		if h.refs.CompareAndSwap(n, n-1) {
			if n == 1 {
				h.once.Do(func() {
					if h.release != nil {
						h.release(h.data)
					}
				})
			}
			return
		}
	}
}
