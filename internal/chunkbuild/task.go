package chunkbuild

import (
	"context"

	"chunkmesh/internal/block"
	"chunkmesh/internal/meshing"
	"chunkmesh/internal/world"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"go.uber.org/atomic"
)

// Kind distinguishes the task variants.
type Kind uint8

const (
	KindRebuild Kind = iota
	KindSort
)

func (k Kind) String() string {
	if k == KindSort {
		return "sort"
	}
	return "rebuild"
}

// Result is the outcome of a task body.
type Result uint8

const (
	Successful Result = iota
	Cancelled
)

func (r Result) String() string {
	if r == Cancelled {
		return "cancelled"
	}
	return "successful"
}

// Task is a cancellable unit of work on one BuiltChunk. The variants are
// *RebuildTask and *SortTask.
type Task interface {
	Kind() Kind
	// Distance is the squared camera distance when the task was created.
	Distance() float64
	Chunk() *BuiltChunk
	Cancel()
	Cancelled() bool
	// Done reports whether a worker finished with the task.
	Done() bool

	base() *taskBase
	run(ctx context.Context, env *taskEnv, pack *meshing.BufferPack) (Result, error)
}

// taskEnv is what a task body needs from the scheduler.
type taskEnv struct {
	sched    *Scheduler
	uploader uploader
}

type taskBase struct {
	distance  float64
	cancelled atomic.Bool
	done      atomic.Bool
	chunk     *BuiltChunk
	place     *placement
	seq       uint64 // set by the actor
}

func newTaskBase(c *BuiltChunk) taskBase {
	return taskBase{
		distance: c.DistanceSq(),
		chunk:    c,
		place:    c.placement(),
	}
}

func (t *taskBase) base() *taskBase    { return t }
func (t *taskBase) Distance() float64  { return t.distance }
func (t *taskBase) Chunk() *BuiltChunk { return t.chunk }
func (t *taskBase) Cancelled() bool    { return t.cancelled.Load() }
func (t *taskBase) Done() bool         { return t.done.Load() }

func (t *taskBase) stop(ctx context.Context) bool {
	return t.cancelled.Load() || ctx.Err() != nil
}

// relativeCamera returns the camera position relative to the task's section origin.
func (t *taskBase) relativeCamera(s *Scheduler) mgl32.Vec3 {
	cam := s.Camera()
	o := t.place.origin
	return mgl32.Vec3{
		float32(cam[0]) - float32(o.X),
		float32(cam[1]) - float32(o.Y),
		float32(cam[2]) - float32(o.Z),
	}
}

// RebuildTask regenerates all geometry of a section from a region snapshot.
type RebuildTask struct {
	taskBase
	region *world.RegionView
	gen    uint64
}

func (t *RebuildTask) Kind() Kind { return KindRebuild }

// Cancel marks the task cancelled. The first cancellation re-marks the
// chunk dirty so the section is rebuilt later; repeated calls do nothing.
func (t *RebuildTask) Cancel() {
	if t.cancelled.CompareAndSwap(false, true) {
		t.chunk.SetDirty(false)
	}
}

func (t *RebuildTask) run(ctx context.Context, env *taskEnv, pack *meshing.BufferPack) (Result, error) {
	defer func() { t.region = nil }()

	if t.stop(ctx) {
		return Cancelled, nil
	}
	if !t.chunk.HasAllNeighbors() {
		t.Cancel()
		return Cancelled, nil
	}
	if t.stop(ctx) {
		return Cancelled, nil
	}

	data, global := t.compile(env.sched, pack)
	t.chunk.updateGlobalBlockEntities(global)
	if t.stop(ctx) {
		return Cancelled, nil
	}

	var uploads []*pendingUpload
	for _, l := range data.nonEmpty.Layers() {
		rendered := pack.Builder(l).Rendered()
		vb := t.chunk.Buffer(l)
		uploads = append(uploads, env.uploader.enqueue(func() error {
			if t.Cancelled() {
				return ErrCancelled
			}
			return errors.Wrapf(vb.Upload(rendered), "upload %s layer", l)
		}))
	}
	if err := awaitUploads(uploads); err != nil {
		if errors.Is(err, ErrCancelled) {
			return Cancelled, nil
		}
		return Cancelled, err
	}

	if t.stop(ctx) {
		return Cancelled, nil
	}
	if !t.chunk.install(t.gen, data) {
		return Cancelled, nil
	}
	return Successful, nil
}

// compile scans the section and fills the pack. It returns the new snapshot
// and the block entities that render off-screen.
func (t *RebuildTask) compile(s *Scheduler, pack *meshing.BufferPack) (*ChunkData, map[world.BlockPos]world.BlockEntity) {
	data := &ChunkData{}
	vis := meshing.NewVisGraph()
	var global map[world.BlockPos]world.BlockEntity

	if r := t.region; r != nil {
		origin := t.place.origin
		beginLayer := func(l block.Layer) *meshing.Builder {
			b := pack.Builder(l)
			if !data.initialized.Has(l) {
				data.initialized = data.initialized.With(l)
				b.Begin()
			}
			return b
		}

		for x := 0; x < world.SectionSize; x++ {
			for y := 0; y < world.SectionSize; y++ {
				for z := 0; z < world.SectionSize; z++ {
					pos := origin.Add(x, y, z)
					def := r.DefinitionAt(pos)
					if def.Opaque {
						vis.SetOpaque(x, y, z)
					}

					if be, ok := r.BlockEntityAt(pos); ok && s.opts.BlockEntities != nil {
						if renderer := s.opts.BlockEntities.RendererFor(be); renderer != nil {
							data.blockEntities = append(data.blockEntities, be)
							if renderer.RendersOffScreen() {
								if global == nil {
									global = make(map[world.BlockPos]world.BlockEntity)
								}
								global[pos] = be
							}
						}
					}

					if fluid := r.FluidAt(pos); !fluid.IsEmpty() {
						l := fluid.Layer()
						if s.opts.FluidEmitter.EmitFluid(fluid, pos, r, beginLayer(l)) {
							data.nonEmpty = data.nonEmpty.With(l)
						}
					}

					if def.Shape != block.ShapeInvisible {
						l := def.Layer
						if s.opts.BlockEmitter.EmitBlock(def, pos, r, beginLayer(l)) {
							data.nonEmpty = data.nonEmpty.With(l)
						}
					}
				}
			}
		}

		if data.nonEmpty.Has(block.LayerTranslucent) {
			b := pack.Builder(block.LayerTranslucent)
			data.sortState = meshing.CaptureSortState(b.Raw())
			b.ApplySort(data.sortState, t.relativeCamera(s))
		}
		for _, l := range data.initialized.Layers() {
			pack.Builder(l).End()
		}
	}

	data.visibility = vis.Resolve()
	return data, global
}

// SortTask reorders the translucent geometry of an existing snapshot for
// the current camera position.
type SortTask struct {
	taskBase
	target *ChunkData
}

func (t *SortTask) Kind() Kind { return KindSort }

// Target returns the snapshot the task sorts.
func (t *SortTask) Target() *ChunkData { return t.target }

func (t *SortTask) Cancel() {
	t.cancelled.Store(true)
}

func (t *SortTask) run(ctx context.Context, env *taskEnv, pack *meshing.BufferPack) (Result, error) {
	if t.stop(ctx) {
		return Cancelled, nil
	}
	if !t.chunk.HasAllNeighbors() {
		if t.cancelled.CompareAndSwap(false, true) {
			t.chunk.SetDirty(false)
		}
		return Cancelled, nil
	}
	if t.stop(ctx) {
		return Cancelled, nil
	}

	state := t.target.sortState
	if t.chunk.Data() != t.target || state == nil || !t.target.HasLayer(block.LayerTranslucent) {
		t.Cancel()
		return Cancelled, nil
	}

	b := pack.Builder(block.LayerTranslucent)
	b.Begin()
	b.ApplySort(state, t.relativeCamera(env.sched))
	rendered := b.End()

	if t.stop(ctx) {
		return Cancelled, nil
	}

	vb := t.chunk.Buffer(block.LayerTranslucent)
	u := env.uploader.enqueue(func() error {
		if t.Cancelled() || t.chunk.Data() != t.target {
			return ErrCancelled
		}
		return errors.Wrap(vb.Upload(rendered), "upload sorted translucent layer")
	})
	if err := u.Wait(); err != nil {
		if errors.Is(err, ErrCancelled) {
			return Cancelled, nil
		}
		return Cancelled, err
	}
	if t.Cancelled() {
		return Cancelled, nil
	}
	return Successful, nil
}
