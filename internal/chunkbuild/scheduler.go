package chunkbuild

import (
	"context"
	"fmt"
	"sync"
	"time"

	"chunkmesh/internal/block"
	"chunkmesh/internal/config"
	"chunkmesh/internal/meshing"
	"chunkmesh/internal/profiling"
	"chunkmesh/internal/world"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"
)

// Options wires the scheduler to its collaborators.
type Options struct {
	Config config.Pipeline

	Regions       RegionSource
	Loader        world.Loader
	BlockEmitter  meshing.BlockEmitter
	FluidEmitter  meshing.FluidEmitter
	BlockEntities BlockEntityRenderers
	Tracker       BlockEntityTracker
	Buffers       BufferFactory

	Logger  logrus.FieldLogger
	Metrics *Metrics

	// PoolSize overrides the computed number of buffer packs when positive.
	PoolSize  int
	Allocator PackAllocator
	// OnFatal receives unrecoverable failures. Defaults to FatalLogger.
	OnFatal func(CrashReport)
}

// discardBuffer is used when no BufferFactory is configured, e.g. headless runs.
type discardBuffer struct{}

func (discardBuffer) Upload(*meshing.RenderedBuffer) error { return nil }
func (discardBuffer) Close()                              {}

// Stats is a point-in-time view of the scheduler queues.
type Stats struct {
	PendingTasks   int
	PendingUploads int
	FreeBuffers    int
	TotalBuffers   int
}

// Scheduler runs rebuild and sort tasks nearest-first on a bounded pool of
// buffer packs. Queue and pool are only touched by the actor goroutine.
type Scheduler struct {
	opts Options
	cfg  config.Pipeline
	log  logrus.FieldLogger

	camera atomic.Pointer[mgl64.Vec3]

	actor *mailbox
	// actor state
	queue   taskQueue
	pool    *BufferPool
	seq     uint64
	stopped bool

	pendingTasks atomic.Int32
	freeBuffers  atomic.Int32
	totalBuffers int

	uploads  *UploadQueue
	workers  *workerPool
	ctx      context.Context
	cancel   context.CancelFunc
	stopOnce sync.Once
	halted   atomic.Bool

	// render thread only; set once in New
	syncPack *meshing.BufferPack
}

// New creates a scheduler and starts its actor and workers.
func New(opts Options) *Scheduler {
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if opts.OnFatal == nil {
		opts.OnFatal = FatalLogger(opts.Logger)
	}
	if opts.Config == (config.Pipeline{}) {
		opts.Config = config.DefaultPipeline()
	}
	if opts.Buffers == nil {
		opts.Buffers = BufferFactoryFunc(func(block.Layer) VertexBuffer { return discardBuffer{} })
	}

	log := opts.Logger.WithField("component", "chunkbuild")
	size := opts.PoolSize
	if size <= 0 {
		size = DefaultPoolSize(opts.Config, log)
	}
	alloc := opts.Allocator
	if alloc == nil {
		alloc = func() (*meshing.BufferPack, error) { return meshing.NewBufferPack(), nil }
	}

	s := &Scheduler{
		opts:    opts,
		cfg:     opts.Config,
		log:     log,
		uploads: &UploadQueue{},
	}
	s.camera.Store(&mgl64.Vec3{})
	s.pool = newBufferPool(size, alloc, log)
	s.syncPack = meshing.NewBufferPack()
	s.totalBuffers = s.pool.Total()
	s.freeBuffers.Store(int32(s.pool.Free()))
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.actor = newMailbox()
	s.workers = newWorkerPool(s.ctx, s.pool.Total(), s.runJob)

	log.Infof("buffer pool: %s", s.pool)
	return s
}

// SetCamera records the camera position used for distances and sorting.
func (s *Scheduler) SetCamera(pos mgl64.Vec3) {
	s.camera.Store(&pos)
}

func (s *Scheduler) Camera() mgl64.Vec3 {
	return *s.camera.Load()
}

// Config returns the pipeline tuning in use.
func (s *Scheduler) Config() config.Pipeline {
	return s.cfg
}

// Schedule queues t. After Stop the task is cancelled instead.
func (s *Scheduler) Schedule(t Task) {
	if !s.actor.tell(func() { s.enqueue(t) }) {
		s.log.WithError(ErrStopped).WithField("section", t.Chunk().SectionPos()).Debug("task rejected")
		t.Cancel()
	}
}

func (s *Scheduler) enqueue(t Task) {
	if s.stopped {
		s.log.WithError(ErrStopped).WithField("section", t.Chunk().SectionPos()).Debug("task rejected")
		t.Cancel()
		return
	}
	s.seq++
	t.base().seq = s.seq
	s.queue.push(t)
	s.drain()
}

// drain dispatches queued tasks while packs are free. Runs on the actor.
func (s *Scheduler) drain() {
	for s.pool.Free() > 0 && s.queue.Len() > 0 {
		t := s.queue.pop()
		if t.Cancelled() {
			t.base().done.Store(true)
			s.opts.Metrics.observeTask(t.Kind(), Cancelled, 0)
			continue
		}
		pack, _ := s.pool.get()
		if !s.workers.submit(job{task: t, pack: pack}) {
			s.pool.put(pack)
			t.Cancel()
			break
		}
	}
	s.publish()
}

func (s *Scheduler) publish() {
	s.pendingTasks.Store(int32(s.queue.Len()))
	s.freeBuffers.Store(int32(s.pool.Free()))
	s.opts.Metrics.setQueues(s.queue.Len(), s.uploads.Len(), s.pool.Free())
}

// runJob executes a task on a worker goroutine and reports back to the actor.
func (s *Scheduler) runJob(ctx context.Context, j job) {
	start := time.Now()
	result := s.execute(ctx, j.task, j.pack, s.uploads)
	s.opts.Metrics.observeTask(j.task.Kind(), result, time.Since(start))

	s.actor.tell(func() { s.complete(j.pack, result) })
}

// execute runs the task body, turning panics and unexpected errors into a
// crash report.
func (s *Scheduler) execute(ctx context.Context, t Task, pack *meshing.BufferPack, up uploader) Result {
	defer t.base().done.Store(true)
	defer profiling.Track("chunkbuild." + t.Kind().String())()

	env := &taskEnv{sched: s, uploader: up}
	var result Result
	err := safeCall(func() error {
		var err error
		result, err = t.run(ctx, env, pack)
		return err
	})
	if err != nil && !errors.Is(err, ErrCancelled) {
		s.fatal(t, err)
		return Cancelled
	}
	if err != nil {
		return Cancelled
	}
	if result == Cancelled {
		s.log.WithFields(logrus.Fields{"section": t.Chunk().SectionPos(), "task": t.Kind()}).Debug("task cancelled")
	}
	return result
}

func (s *Scheduler) fatal(t Task, err error) {
	title := fmt.Sprintf("Batching chunk %s", t.Kind())
	s.opts.OnFatal(newCrashReport(title, err, map[string]string{
		"section":  t.Chunk().SectionPos().String(),
		"distance": fmt.Sprintf("%.1f", t.Distance()),
	}))
}

// complete returns a pack to the pool. Runs on the actor.
func (s *Scheduler) complete(pack *meshing.BufferPack, result Result) {
	if result == Successful {
		pack.ClearAll()
	} else {
		pack.ResetAll()
	}
	if s.stopped {
		return
	}
	s.pool.put(pack)
	s.drain()
}

// CancelAll cancels every task that has not started yet.
func (s *Scheduler) CancelAll() {
	s.actor.tell(s.cancelPending)
}

func (s *Scheduler) cancelPending() {
	for s.queue.Len() > 0 {
		s.queue.pop().Cancel()
	}
	s.publish()
}

// UploadAll runs every queued upload on the calling (render) thread and
// reports whether anything ran.
func (s *Scheduler) UploadAll() bool {
	defer profiling.Track("chunkbuild.UploadAll")()
	ran := s.uploads.drain()
	s.opts.Metrics.setQueues(int(s.pendingTasks.Load()), s.uploads.Len(), int(s.freeBuffers.Load()))
	return ran
}

// RebuildSync builds c on the calling (render) thread with a dedicated pack;
// uploads run inline.
func (s *Scheduler) RebuildSync(c *BuiltChunk) Result {
	if s.halted.Load() {
		return Cancelled
	}
	t := c.CreateRebuildTask()
	result := s.execute(s.ctx, t, s.syncPack, inlineUploader{})
	if result == Successful {
		s.syncPack.ClearAll()
	} else {
		s.syncPack.ResetAll()
	}
	return result
}

// Stats returns queue depths for diagnostics.
func (s *Scheduler) Stats() Stats {
	return Stats{
		PendingTasks:   int(s.pendingTasks.Load()),
		PendingUploads: s.uploads.Len(),
		FreeBuffers:    int(s.freeBuffers.Load()),
		TotalBuffers:   s.totalBuffers,
	}
}

// DebugString formats Stats for the debug overlay.
func (s *Scheduler) DebugString() string {
	st := s.Stats()
	return fmt.Sprintf("pC: %03d, pU: %02d, aB: %02d", st.PendingTasks, st.PendingUploads, st.FreeBuffers)
}

// IsQueueEmpty reports whether no task and no upload is waiting.
func (s *Scheduler) IsQueueEmpty() bool {
	return s.pendingTasks.Load() == 0 && s.uploads.Len() == 0
}

// Stop cancels pending work, drops queued uploads, releases the pool and
// shuts down the actor and workers. Later Schedule calls are rejected.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		s.halted.Store(true)
		done := make(chan struct{})
		if s.actor.tell(func() {
			s.stopped = true
			s.cancelPending()
			s.pool.release()
			s.freeBuffers.Store(0)
			close(done)
		}) {
			<-done
		}
		// waiters see ErrCancelled, so workers blocked on uploads return
		s.uploads.close()
		s.cancel()
		s.workers.shutdown()
		s.actor.close()
		s.log.Debug("stopped")
	})
}
