package world

import (
	"math"
	"runtime"
	"sync"

	"chunkmesh/internal/profiling"
)

// ChunkStreamer manages asynchronous chunk generation and loading.
type ChunkStreamer struct {
	jobs       chan ChunkPos
	pending    map[ChunkPos]struct{}
	pendingMu  sync.Mutex
	maxPending int

	maxJobsPerCall int
	wg             sync.WaitGroup

	// Dependencies
	store *ChunkStore
	gen   TerrainGenerator
}

// NewChunkStreamer creates a new chunk streamer with one worker per CPU.
func NewChunkStreamer(store *ChunkStore, gen TerrainGenerator) *ChunkStreamer {
	cs := &ChunkStreamer{
		jobs:           make(chan ChunkPos, 1024),
		pending:        make(map[ChunkPos]struct{}),
		maxJobsPerCall: 256,
		maxPending:     4096,
		store:          store,
		gen:            gen,
	}

	workers := max(runtime.NumCPU(), 1)
	for i := 0; i < workers; i++ {
		cs.wg.Add(1)
		go cs.worker()
	}

	return cs
}

// Close stops the background generation workers and waits for them.
func (cs *ChunkStreamer) Close() {
	close(cs.jobs)
	cs.wg.Wait()
}

func (cs *ChunkStreamer) worker() {
	defer cs.wg.Done()
	for pos := range cs.jobs {
		cs.generateChunkSync(pos)
		cs.pendingMu.Lock()
		delete(cs.pending, pos)
		cs.pendingMu.Unlock()
	}
}

// generateChunkSync builds and installs a chunk if missing.
func (cs *ChunkStreamer) generateChunkSync(pos ChunkPos) {
	if cs.store.IsChunkLoaded(pos.X, pos.Z) {
		return
	}

	chunk := NewChunk(pos.X, pos.Z)
	cs.gen.PopulateChunk(chunk)

	cs.store.AddChunk(chunk)
}

// StreamChunksAroundSync loads chunks synchronously.
func (cs *ChunkStreamer) StreamChunksAroundSync(x, z float64, radius int) {
	defer profiling.Track("world.StreamChunksAroundSync")()
	cx := floorDiv(int(math.Floor(x)), SectionSize)
	cz := floorDiv(int(math.Floor(z)), SectionSize)
	for dx := -radius; dx <= radius; dx++ {
		for dz := -radius; dz <= radius; dz++ {
			cs.generateChunkSync(ChunkPos{cx + dx, cz + dz})
		}
	}
}

// StreamChunksAroundAsync queues chunks for async loading in rings around
// the camera column, nearest ring first.
func (cs *ChunkStreamer) StreamChunksAroundAsync(x, z float64, radius int) int {
	defer profiling.Track("world.StreamChunksAroundAsync")()
	cx := floorDiv(int(math.Floor(x)), SectionSize)
	cz := floorDiv(int(math.Floor(z)), SectionSize)

	jobsPushed := 0
	push := func(pos ChunkPos) bool {
		if cs.requestChunkLimited(pos) {
			jobsPushed++
		}
		return jobsPushed < cs.maxJobsPerCall
	}

	for r := 0; r <= radius; r++ {
		if r == 0 {
			if !push(ChunkPos{cx, cz}) {
				return jobsPushed
			}
			continue
		}

		x0, x1 := cx-r, cx+r
		z0, z1 := cz-r, cz+r

		for xk := x0; xk <= x1; xk++ {
			if !push(ChunkPos{xk, z0}) || !push(ChunkPos{xk, z1}) {
				return jobsPushed
			}
		}
		for zk := z0 + 1; zk <= z1-1; zk++ {
			if !push(ChunkPos{x0, zk}) || !push(ChunkPos{x1, zk}) {
				return jobsPushed
			}
		}
	}
	return jobsPushed
}

// requestChunkLimited respects pending cap and returns true if enqueued.
func (cs *ChunkStreamer) requestChunkLimited(pos ChunkPos) bool {
	// already present?
	if cs.store.IsChunkLoaded(pos.X, pos.Z) {
		return false
	}

	cs.pendingMu.Lock()
	if _, ok := cs.pending[pos]; ok {
		cs.pendingMu.Unlock()
		return false
	}
	if cs.maxPending > 0 && len(cs.pending) >= cs.maxPending {
		cs.pendingMu.Unlock()
		return false
	}
	cs.pending[pos] = struct{}{}
	cs.pendingMu.Unlock()

	select {
	case cs.jobs <- pos:
		return true
	default:
		// queue full: rollback
		cs.pendingMu.Lock()
		delete(cs.pending, pos)
		cs.pendingMu.Unlock()
		return false
	}
}

// EvictFarChunks removes chunks outside the given radius.
func (cs *ChunkStreamer) EvictFarChunks(x, z float64, radius int) int {
	cx := floorDiv(int(math.Floor(x)), SectionSize)
	cz := floorDiv(int(math.Floor(z)), SectionSize)
	return cs.store.EvictFarChunks(cx, cz, radius)
}
