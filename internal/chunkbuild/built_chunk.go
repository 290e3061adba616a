package chunkbuild

import (
	"sync"

	"chunkmesh/internal/block"
	"chunkmesh/internal/world"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/atomic"
)

// placement is the position of a BuiltChunk slot. It is replaced as a whole
// when the slot is relocated.
type placement struct {
	origin   world.BlockPos
	min, max mgl64.Vec3
}

func newPlacement(origin world.BlockPos) *placement {
	lo := mgl64.Vec3{float64(origin.X), float64(origin.Y), float64(origin.Z)}
	return &placement{
		origin: origin,
		min:    lo,
		max:    lo.Add(mgl64.Vec3{world.SectionSize, world.SectionSize, world.SectionSize}),
	}
}

// BuiltChunk is the render state of one section slot. Data may be read from
// any goroutine; the task bookkeeping belongs to the render thread.
type BuiltChunk struct {
	sched *Scheduler
	index int

	place atomic.Pointer[placement]
	data  atomic.Pointer[ChunkData]

	dirtyMu   sync.Mutex
	dirty     bool
	important bool

	// buildGen is bumped for every rebuild task and on reset; only the
	// newest rebuild may install its snapshot.
	installMu sync.Mutex
	buildGen  uint64

	lastRebuild *RebuildTask
	lastSort    *SortTask

	beMu                sync.Mutex
	globalBlockEntities map[world.BlockPos]world.BlockEntity

	buffers [block.NumLayers]VertexBuffer
}

// NewBuiltChunk creates a slot at origin. index is the caller's slot number.
func (s *Scheduler) NewBuiltChunk(index int, origin world.BlockPos) *BuiltChunk {
	c := &BuiltChunk{
		sched:               s,
		index:               index,
		dirty:               true,
		globalBlockEntities: make(map[world.BlockPos]world.BlockEntity),
	}
	c.place.Store(newPlacement(origin))
	c.data.Store(Empty)
	for _, l := range block.Layers() {
		c.buffers[l] = s.opts.Buffers.NewVertexBuffer(l)
	}
	return c
}

func (c *BuiltChunk) placement() *placement { return c.place.Load() }

func (c *BuiltChunk) Index() int { return c.index }

// Origin returns the minimum block corner of the section.
func (c *BuiltChunk) Origin() world.BlockPos {
	return c.placement().origin
}

// SectionPos returns the section the slot currently covers.
func (c *BuiltChunk) SectionPos() world.SectionPos {
	return c.Origin().Section()
}

// Bounds returns the bounding box of the section.
func (c *BuiltChunk) Bounds() (lo, hi mgl64.Vec3) {
	p := c.placement()
	return p.min, p.max
}

// Data returns the current snapshot. It is never nil and never partially built.
func (c *BuiltChunk) Data() *ChunkData {
	return c.data.Load()
}

// Buffer returns the GPU buffer of layer l.
func (c *BuiltChunk) Buffer(l block.Layer) VertexBuffer {
	return c.buffers[l]
}

// SetOrigin relocates the slot. Moving to a new origin cancels outstanding
// tasks, drops the snapshot and marks the chunk dirty.
func (c *BuiltChunk) SetOrigin(origin world.BlockPos) {
	if c.Origin() == origin {
		return
	}
	c.reset()
	c.place.Store(newPlacement(origin))
}

func (c *BuiltChunk) reset() {
	c.cancelTasks()
	c.installMu.Lock()
	c.buildGen++
	c.data.Store(Empty)
	c.installMu.Unlock()

	c.dirtyMu.Lock()
	c.dirty = true
	c.dirtyMu.Unlock()

	c.updateGlobalBlockEntities(nil)
}

// DistanceSq returns the squared distance from the camera to the section centre.
func (c *BuiltChunk) DistanceSq() float64 {
	p := c.placement()
	centre := p.min.Add(mgl64.Vec3{8, 8, 8})
	d := c.sched.Camera().Sub(centre)
	return d.Dot(d)
}

// HasAllNeighbors reports whether the section may be built: close sections
// always can, distant ones only with all four horizontal neighbour columns loaded.
func (c *BuiltChunk) HasAllNeighbors() bool {
	limit := c.sched.cfg.NeighborCheckDistance
	if c.DistanceSq() <= limit*limit {
		return true
	}
	if c.sched.opts.Loader == nil {
		return true
	}
	origin := c.Origin()
	for _, d := range world.Horizontals {
		n := origin.Offset(d, world.SectionSize)
		cp := world.ChunkOf(n.X, n.Z)
		if !c.sched.opts.Loader.IsChunkLoaded(cp.X, cp.Z) {
			return false
		}
	}
	return true
}

// SetDirty requests a rebuild. A pending important request stays important.
func (c *BuiltChunk) SetDirty(important bool) {
	c.dirtyMu.Lock()
	wasDirty := c.dirty
	c.dirty = true
	c.important = important || (wasDirty && c.important)
	c.dirtyMu.Unlock()
}

// SetNotDirty clears the rebuild request once a rebuild was scheduled.
func (c *BuiltChunk) SetNotDirty() {
	c.dirtyMu.Lock()
	c.dirty = false
	c.important = false
	c.dirtyMu.Unlock()
}

func (c *BuiltChunk) IsDirty() bool {
	c.dirtyMu.Lock()
	defer c.dirtyMu.Unlock()
	return c.dirty
}

// IsDirtyFromPlayer reports an important pending rebuild.
func (c *BuiltChunk) IsDirtyFromPlayer() bool {
	c.dirtyMu.Lock()
	defer c.dirtyMu.Unlock()
	return c.dirty && c.important
}

func (c *BuiltChunk) cancelTasks() {
	if c.lastRebuild != nil {
		c.lastRebuild.Cancel()
		c.lastRebuild = nil
	}
	if c.lastSort != nil {
		c.lastSort.Cancel()
		c.lastSort = nil
	}
}

// CreateRebuildTask cancels outstanding work and snapshots the section for a
// new rebuild.
func (c *BuiltChunk) CreateRebuildTask() *RebuildTask {
	c.cancelTasks()

	c.installMu.Lock()
	c.buildGen++
	gen := c.buildGen
	c.installMu.Unlock()

	t := &RebuildTask{
		taskBase: newTaskBase(c),
		gen:      gen,
	}
	if c.sched.opts.Regions != nil {
		t.region = c.sched.opts.Regions.Region(t.place.origin)
	}
	c.lastRebuild = t
	return t
}

// RebuildAsync schedules a rebuild on the worker pool.
func (c *BuiltChunk) RebuildAsync() {
	c.sched.Schedule(c.CreateRebuildTask())
}

// ScheduleSort schedules a translucency resort of the current snapshot and
// reports whether one was scheduled. It refuses when the snapshot has no
// translucent geometry, and also while a rebuild of the chunk is still
// outstanding, since that rebuild sorts for the camera it sees.
func (c *BuiltChunk) ScheduleSort() bool {
	data := c.Data()
	if c.lastSort != nil {
		c.lastSort.Cancel()
		c.lastSort = nil
	}
	if !data.HasLayer(block.LayerTranslucent) || data.sortState == nil {
		return false
	}
	if r := c.lastRebuild; r != nil && !r.Done() && !r.Cancelled() {
		return false
	}
	t := &SortTask{
		taskBase: newTaskBase(c),
		target:   data,
	}
	c.lastSort = t
	c.sched.Schedule(t)
	return true
}

// install publishes data unless a newer rebuild or a reset superseded gen.
func (c *BuiltChunk) install(gen uint64, data *ChunkData) bool {
	c.installMu.Lock()
	defer c.installMu.Unlock()
	if gen != c.buildGen {
		return false
	}
	c.data.Store(data)
	return true
}

// updateGlobalBlockEntities replaces the off-screen block entity set and
// reports the difference to the tracker.
func (c *BuiltChunk) updateGlobalBlockEntities(next map[world.BlockPos]world.BlockEntity) {
	c.beMu.Lock()
	var removed, added []world.BlockEntity
	for pos, be := range c.globalBlockEntities {
		if _, ok := next[pos]; !ok {
			removed = append(removed, be)
		}
	}
	for pos, be := range next {
		if old, ok := c.globalBlockEntities[pos]; !ok || old != be {
			added = append(added, be)
		}
	}
	c.globalBlockEntities = make(map[world.BlockPos]world.BlockEntity, len(next))
	for pos, be := range next {
		c.globalBlockEntities[pos] = be
	}
	c.beMu.Unlock()

	if tracker := c.sched.opts.Tracker; tracker != nil && (len(removed) > 0 || len(added) > 0) {
		tracker.UpdateGlobalBlockEntities(removed, added)
	}
}

// Release cancels outstanding work and frees the GPU buffers. The chunk
// must not be used afterwards. The buffers stay in place so a task still
// holding one gets an error from its closed buffer.
func (c *BuiltChunk) Release() {
	c.reset()
	for _, b := range c.buffers {
		if b != nil {
			b.Close()
		}
	}
}
