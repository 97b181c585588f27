package meshsdf

import (
	"errors"
	"sync"
	"testing"

	"github.com/soypat/meshsdf/internal/d3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func fastConfig() Config {
	cfg := DefaultConfig()
	cfg.NumSamples = 100
	return cfg
}

func TestVolumeHandle(t *testing.T) {
	var released int
	vol := &VolumeData{Size: V3i{1, 1, 1}}
	h := NewVolumeHandle(vol, func(v *VolumeData) {
		if v != vol {
			t.Error("release called with the wrong volume")
		}
		released++
	})
	if h.Refs() != 1 || h.Data() != vol {
		t.Fatal("new handle must hold one reference")
	}
	if !h.Retain() || h.Refs() != 2 {
		t.Fatal("retain failed")
	}
	h.Release()
	if released != 0 {
		t.Fatal("released while referenced")
	}
	h.Release()
	h.Release()
	if released != 1 {
		t.Fatalf("release callback called %d times", released)
	}
	if h.Retain() {
		t.Error("retain succeeded on a released handle")
	}
	NewVolumeHandle(vol, nil).Release() // nil callback.
}

func TestVolumeHandleConcurrent(t *testing.T) {
	var mu sync.Mutex
	var released int
	h := NewVolumeHandle(&VolumeData{}, func(*VolumeData) {
		mu.Lock()
		released++
		mu.Unlock()
	})
	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		require.True(t, h.Retain())
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.Release()
		}()
	}
	h.Release()
	wg.Wait()
	assert.Equal(t, 1, released)
	assert.Equal(t, 0, h.Refs())
}

func TestBuildQueue(t *testing.T) {
	q := NewBuildQueue(NewGenerator(fastConfig(), nil), 2)
	var mu sync.Mutex
	releases := map[string]int{}
	q.OnRelease = func(name string, v *VolumeData) {
		mu.Lock()
		releases[name]++
		mu.Unlock()
	}
	names := []string{"a", "b", "c"}
	for i, name := range names {
		src := boxSource(name, r3.Vec{X: float64(i)}, d3.Elem(1+float64(i)))
		require.NoError(t, q.Submit(src, 1, false))
	}
	require.NoError(t, q.WaitAll())

	for _, name := range names {
		h, err := q.Wait(name)
		require.NoError(t, err, name)
		assert.True(t, h.Data().MeshWasClosed, name)
		assert.Equal(t, 2, h.Refs(), "queue and caller hold references")
		h.Release()
	}
	_, err := q.Wait("missing")
	assert.ErrorIs(t, err, ErrUnknownBuild)

	// resubmitting a completed build drops the old volume.
	require.NoError(t, q.Submit(boxSource("a", r3.Vec{}, d3.Elem(2)), 1, true))
	h, err := q.Wait("a")
	require.NoError(t, err)
	assert.True(t, h.Data().BuiltAsIfTwoSided)

	for _, name := range names {
		require.NoError(t, q.Release(name))
	}
	assert.ErrorIs(t, q.Release("a"), ErrUnknownBuild)
	h.Release()

	mu.Lock()
	assert.Equal(t, map[string]int{"a": 2, "b": 1, "c": 1}, releases)
	mu.Unlock()

	require.NoError(t, q.Close())
	assert.ErrorIs(t, q.Submit(unitCube(), 1, false), ErrQueueClosed)
}

func TestBuildQueuePending(t *testing.T) {
	q := NewBuildQueue(NewGenerator(fastConfig(), nil), 1)
	// stand in for a build that has not finished.
	pending := &pendingBuild{done: make(chan struct{})}
	q.builds["cube"] = pending
	assert.ErrorIs(t, q.Submit(unitCube(), 1, false), ErrBuildPending)
	assert.ErrorIs(t, q.Release("cube"), ErrBuildPending)
	pending.err = errors.New("failed build")
	close(pending.done)

	_, err := q.Wait("cube")
	assert.EqualError(t, err, "failed build")
	assert.EqualError(t, q.WaitAll(), "failed build")
	require.NoError(t, q.Release("cube"))
}

func TestBuildQueueError(t *testing.T) {
	cfg := fastConfig()
	cfg.VoxelDensity = 0
	q := NewBuildQueue(NewGenerator(cfg, nil), 0)
	require.NoError(t, q.Submit(unitCube(), 1, false))
	_, err := q.Wait("cube")
	assert.ErrorIs(t, err, errConfig)
	assert.ErrorIs(t, q.Close(), errConfig)
}
