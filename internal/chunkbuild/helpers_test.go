package chunkbuild

import (
	"sync"
	"testing"
	"time"

	"chunkmesh/internal/block"
	"chunkmesh/internal/config"
	"chunkmesh/internal/logging"
	"chunkmesh/internal/meshing"
	"chunkmesh/internal/world"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
)

// uploadRecorder is a BufferFactory whose buffers count uploads per layer.
type uploadRecorder struct {
	mu     sync.Mutex
	counts map[block.Layer]int
	closed int
	fail   error
}

func newUploadRecorder() *uploadRecorder {
	return &uploadRecorder{counts: make(map[block.Layer]int)}
}

type recordingBuffer struct {
	layer block.Layer
	rec   *uploadRecorder
}

func (b *recordingBuffer) Upload(buf *meshing.RenderedBuffer) error {
	b.rec.mu.Lock()
	defer b.rec.mu.Unlock()
	if b.rec.fail != nil {
		return b.rec.fail
	}
	if buf.Layer != b.layer {
		panic("upload into the wrong layer")
	}
	b.rec.counts[b.layer]++
	return nil
}

func (b *recordingBuffer) Close() {
	b.rec.mu.Lock()
	b.rec.closed++
	b.rec.mu.Unlock()
}

func (r *uploadRecorder) factory() BufferFactory {
	return BufferFactoryFunc(func(l block.Layer) VertexBuffer {
		return &recordingBuffer{layer: l, rec: r}
	})
}

func (r *uploadRecorder) count(l block.Layer) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[l]
}

func (r *uploadRecorder) total() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.counts {
		n += c
	}
	return n
}

func (r *uploadRecorder) setFail(err error) {
	r.mu.Lock()
	r.fail = err
	r.mu.Unlock()
}

// gateEmitter wraps a BlockEmitter, recording the order sections are
// emitted in and optionally holding one section until the gate closes.
type gateEmitter struct {
	inner meshing.BlockEmitter

	mu    sync.Mutex
	order []world.SectionPos

	hold  *world.SectionPos
	gate  chan struct{}
	delay time.Duration
	explode bool

	active    atomic.Int32
	maxActive atomic.Int32
}

func (g *gateEmitter) EmitBlock(def *block.Definition, pos world.BlockPos, getter world.BlockGetter, b *meshing.Builder) bool {
	n := g.active.Inc()
	defer g.active.Dec()
	for {
		m := g.maxActive.Load()
		if n <= m || g.maxActive.CompareAndSwap(m, n) {
			break
		}
	}

	sec := pos.Section()
	g.mu.Lock()
	g.order = append(g.order, sec)
	g.mu.Unlock()

	if g.explode {
		panic("boom")
	}
	if g.hold != nil && *g.hold == sec {
		<-g.gate
	}
	if g.delay > 0 {
		time.Sleep(g.delay)
	}
	return g.inner.EmitBlock(def, pos, getter, b)
}

func (g *gateEmitter) seen() []world.SectionPos {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]world.SectionPos(nil), g.order...)
}

func (g *gateEmitter) saw(sec world.SectionPos) bool {
	for _, s := range g.seen() {
		if s == sec {
			return true
		}
	}
	return false
}

type testEnv struct {
	t       *testing.T
	store   *world.ChunkStore
	sched   *Scheduler
	rec     *uploadRecorder
	emitter *gateEmitter
	fatals  chan CrashReport
}

// newTestEnv loads columns -2..6 x -2..2 and starts a scheduler with two
// packs and the camera at the centre of section 0/0/0.
func newTestEnv(t *testing.T, mod func(*Options)) *testEnv {
	t.Helper()
	reg := block.NewDefaultRegistry()
	store := world.NewChunkStore(reg)
	for x := -2; x <= 6; x++ {
		for z := -2; z <= 2; z++ {
			store.AddChunk(world.NewChunk(x, z))
		}
	}

	e := &testEnv{
		t:       t,
		store:   store,
		rec:     newUploadRecorder(),
		emitter: &gateEmitter{inner: meshing.NewCubeEmitter(reg)},
		fatals:  make(chan CrashReport, 16),
	}
	opts := Options{
		Config:       config.DefaultPipeline(),
		Regions:      store,
		Loader:       store,
		BlockEmitter: e.emitter,
		FluidEmitter: meshing.NewFluidRenderer(reg),
		Buffers:      e.rec.factory(),
		Logger:       logging.Discard(),
		PoolSize:     2,
		OnFatal:      func(r CrashReport) { e.fatals <- r },
	}
	if mod != nil {
		mod(&opts)
	}
	e.sched = New(opts)
	e.sched.SetCamera(mgl64.Vec3{8, 8, 8})
	t.Cleanup(e.sched.Stop)
	return e
}

func (e *testEnv) chunk(x, y, z int) *BuiltChunk {
	return e.sched.NewBuiltChunk(0, world.SectionPos{X: x, Y: y, Z: z}.Origin())
}

// await pumps uploads like a render loop until cond holds.
func (e *testEnv) await(cond func() bool) {
	e.t.Helper()
	require.Eventually(e.t, func() bool {
		e.sched.UploadAll()
		return cond()
	}, 5*time.Second, time.Millisecond)
}

// build runs an async rebuild of c to completion and returns the task.
func (e *testEnv) build(c *BuiltChunk) *RebuildTask {
	e.t.Helper()
	c.SetNotDirty()
	c.RebuildAsync()
	task := c.lastRebuild
	e.await(task.Done)
	return task
}

func (e *testEnv) awaitIdle() {
	e.t.Helper()
	e.await(func() bool {
		st := e.sched.Stats()
		return st.FreeBuffers == st.TotalBuffers && e.sched.IsQueueEmpty()
	})
}

func (e *testEnv) noFatals() {
	e.t.Helper()
	select {
	case r := <-e.fatals:
		e.t.Fatalf("unexpected crash report: %s", r)
	default:
	}
}
