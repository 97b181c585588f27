package meshsdf

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

var (
	// ErrBuildPending is returned when submitting or releasing a mesh
	// whose build has not completed.
	ErrBuildPending = errors.New("meshsdf: build already pending")
	// ErrUnknownBuild is returned when waiting on a mesh never submitted.
	ErrUnknownBuild = errors.New("meshsdf: no build submitted")
	// ErrQueueClosed is returned by Submit after Close.
	ErrQueueClosed = errors.New("meshsdf: build queue closed")
)

// BuildQueue runs Generate asynchronously for meshes keyed by name.
type BuildQueue struct {
	// OnRelease, when set before the first Submit, is called once per
	// completed build after its last reference is released.
	OnRelease func(name string, v *VolumeData)

	gen   *Generator
	group errgroup.Group
	// submitting counts Submit calls between the closed check and group.Go.
	submitting sync.WaitGroup
	mu         sync.Mutex
	builds     map[string]*pendingBuild
	closed     bool
}

type pendingBuild struct {
	done   chan struct{}
	handle *VolumeHandle
	err    error
}

// NewBuildQueue returns a queue running at most workers builds at once.
// A non-positive workers places no limit.
func NewBuildQueue(gen *Generator, workers int) *BuildQueue {
	q := &BuildQueue{gen: gen, builds: make(map[string]*pendingBuild)}
	if workers > 0 {
		q.group.SetLimit(workers)
	}
	return q
}

// Submit starts building src. It blocks while the queue is running its
// maximum number of builds. Submitting a name whose previous build
// completed replaces it and drops the queue's reference to the old volume.
func (q *BuildQueue) Submit(src MeshSource, resolutionScale float64, buildAsIfTwoSided bool) error {
	name := src.Name
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrQueueClosed
	}
	old := q.builds[name]
	if old != nil && !old.isDone() {
		q.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrBuildPending, name)
	}
	b := &pendingBuild{done: make(chan struct{})}
	q.builds[name] = b
	q.submitting.Add(1)
	q.mu.Unlock()
	defer q.submitting.Done()
	if old != nil && old.handle != nil {
		old.handle.Release()
	}

	q.group.Go(func() error {
		defer close(b.done)
		vol, err := q.gen.Generate(src, resolutionScale, buildAsIfTwoSided)
		if err != nil {
			b.err = err
			return nil
		}
		b.handle = NewVolumeHandle(vol, q.releaseFunc(name))
		return nil
	})
	return nil
}

func (q *BuildQueue) releaseFunc(name string) func(*VolumeData) {
	if q.OnRelease == nil {
		return nil
	}
	return func(v *VolumeData) { q.OnRelease(name, v) }
}

// Wait blocks until the build of name completes and returns a new
// reference to its volume, which the caller must Release.
func (q *BuildQueue) Wait(name string) (*VolumeHandle, error) {
	q.mu.Lock()
	b := q.builds[name]
	q.mu.Unlock()
	if b == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBuild, name)
	}
	<-b.done
	if b.err != nil {
		return nil, b.err
	}
	if !b.handle.Retain() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBuild, name)
	}
	return b.handle, nil
}

// WaitAll blocks until every build submitted so far completes and
// returns the first build error encountered.
func (q *BuildQueue) WaitAll() error {
	q.mu.Lock()
	builds := make([]*pendingBuild, 0, len(q.builds))
	for _, b := range q.builds {
		builds = append(builds, b)
	}
	q.mu.Unlock()
	var first error
	for _, b := range builds {
		<-b.done
		if first == nil && b.err != nil {
			first = b.err
		}
	}
	return first
}

// Release drops the queue's reference to the completed build of name and
// forgets it.
func (q *BuildQueue) Release(name string) error {
	q.mu.Lock()
	b := q.builds[name]
	if b == nil {
		q.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrUnknownBuild, name)
	}
	if !b.isDone() {
		q.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrBuildPending, name)
	}
	delete(q.builds, name)
	q.mu.Unlock()
	if b.handle != nil {
		b.handle.Release()
	}
	return nil
}

// Close rejects further submissions and waits for running builds.
func (q *BuildQueue) Close() error {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.submitting.Wait()
	q.group.Wait()
	return q.WaitAll()
}

func (b *pendingBuild) isDone() bool {
	select {
	case <-b.done:
		return true
	default:
		return false
	}
}
