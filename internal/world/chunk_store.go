package world

import (
	"sync"

	"chunkmesh/internal/block"
	"chunkmesh/internal/profiling"
)

// Loader reports whether a chunk column is currently loaded.
type Loader interface {
	IsChunkLoaded(chunkX, chunkZ int) bool
}

// SectionListener is notified about sections whose geometry may have changed.
// important is true for edits caused directly by the player.
type SectionListener func(pos SectionPos, important bool)

// ChunkStore manages the storage and retrieval of chunk columns.
type ChunkStore struct {
	registry *block.Registry

	chunks   map[ChunkPos]*Chunk
	mu       sync.RWMutex
	modCount uint64 // Increases on any chunk add/remove

	listenersMu sync.RWMutex
	listeners   []SectionListener
}

// NewChunkStore creates a new chunk store resolving blocks through registry.
func NewChunkStore(registry *block.Registry) *ChunkStore {
	return &ChunkStore{
		registry: registry,
		chunks:   make(map[ChunkPos]*Chunk),
	}
}

// Registry returns the block registry the store was created with.
func (cs *ChunkStore) Registry() *block.Registry {
	return cs.registry
}

// Subscribe registers fn for section change notifications.
func (cs *ChunkStore) Subscribe(fn SectionListener) {
	cs.listenersMu.Lock()
	cs.listeners = append(cs.listeners, fn)
	cs.listenersMu.Unlock()
}

func (cs *ChunkStore) notify(pos SectionPos, important bool) {
	cs.listenersMu.RLock()
	defer cs.listenersMu.RUnlock()
	for _, fn := range cs.listeners {
		fn(pos, important)
	}
}

// GetChunk returns the loaded column at x/z or nil.
func (cs *ChunkStore) GetChunk(x, z int) *Chunk {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.chunks[ChunkPos{x, z}]
}

// IsChunkLoaded implements Loader.
func (cs *ChunkStore) IsChunkLoaded(x, z int) bool {
	cs.mu.RLock()
	_, exists := cs.chunks[ChunkPos{x, z}]
	cs.mu.RUnlock()
	return exists
}

// AddChunk adds a populated chunk and marks its sections and the adjacent
// sections of horizontal neighbours dirty.
func (cs *ChunkStore) AddChunk(chunk *Chunk) {
	cs.mu.Lock()
	if _, ok := cs.chunks[chunk.Pos()]; ok {
		cs.mu.Unlock()
		return
	}
	cs.chunks[chunk.Pos()] = chunk
	cs.modCount++
	cs.mu.Unlock()

	for sy := 0; sy < NumSections; sy++ {
		cs.notify(SectionPos{chunk.X, sy, chunk.Z}, false)
		for _, d := range Horizontals {
			n := d.Normal()
			cs.notify(SectionPos{chunk.X + n[0], sy, chunk.Z + n[2]}, false)
		}
	}
}

// RemoveChunk unloads the column at x/z.
func (cs *ChunkStore) RemoveChunk(x, z int) bool {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if _, ok := cs.chunks[ChunkPos{x, z}]; !ok {
		return false
	}
	delete(cs.chunks, ChunkPos{x, z})
	cs.modCount++
	return true
}

// EvictFarChunks removes chunks outside the given radius from the store.
// Returns number of removed chunks.
func (cs *ChunkStore) EvictFarChunks(cx, cz, radius int) int {
	defer profiling.Track("world.EvictFarChunks")()
	removed := 0
	cs.mu.Lock()
	for pos := range cs.chunks {
		dx := pos.X - cx
		dz := pos.Z - cz
		if dx*dx+dz*dz > radius*radius {
			delete(cs.chunks, pos)
			cs.modCount++
			removed++
		}
	}
	cs.mu.Unlock()
	return removed
}

// GetModCount returns the current modification count of the chunk map.
func (cs *ChunkStore) GetModCount() uint64 {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.modCount
}

// Len returns the number of loaded columns.
func (cs *ChunkStore) Len() int {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return len(cs.chunks)
}

// Get returns the block at the specified world position.
func (cs *ChunkStore) Get(pos BlockPos) block.ID {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.getLocked(pos)
}

func (cs *ChunkStore) getLocked(pos BlockPos) block.ID {
	chunk := cs.chunks[ChunkOf(pos.X, pos.Z)]
	if chunk == nil {
		return block.Air
	}
	return chunk.GetBlock(mod(pos.X, SectionSize), pos.Y, mod(pos.Z, SectionSize))
}

// Set places a block in a loaded chunk and notifies listeners about the
// section and any neighbour section sharing the touched face.
func (cs *ChunkStore) Set(pos BlockPos, id block.ID, important bool) bool {
	cs.mu.Lock()
	chunk := cs.chunks[ChunkOf(pos.X, pos.Z)]
	if chunk == nil {
		cs.mu.Unlock()
		return false
	}
	changed := chunk.SetBlock(mod(pos.X, SectionSize), pos.Y, mod(pos.Z, SectionSize), id)
	if changed && !cs.registry.Lookup(id).HasBlockEntity {
		delete(chunk.blockEntities, pos)
	}
	cs.mu.Unlock()

	if !changed {
		return false
	}

	sec := pos.Section()
	cs.notify(sec, important)

	// Mark neighbour sections dirty if we touched a border block
	lx, ly, lz := pos.Local()
	if lx == 0 {
		cs.notify(SectionPos{sec.X - 1, sec.Y, sec.Z}, important)
	} else if lx == SectionSize-1 {
		cs.notify(SectionPos{sec.X + 1, sec.Y, sec.Z}, important)
	}
	if ly == 0 {
		cs.notify(SectionPos{sec.X, sec.Y - 1, sec.Z}, important)
	} else if ly == SectionSize-1 {
		cs.notify(SectionPos{sec.X, sec.Y + 1, sec.Z}, important)
	}
	if lz == 0 {
		cs.notify(SectionPos{sec.X, sec.Y, sec.Z - 1}, important)
	} else if lz == SectionSize-1 {
		cs.notify(SectionPos{sec.X, sec.Y, sec.Z + 1}, important)
	}
	return true
}

// SetBlockEntity attaches a block entity to a loaded position.
func (cs *ChunkStore) SetBlockEntity(be BlockEntity) bool {
	cs.mu.Lock()
	chunk := cs.chunks[ChunkOf(be.Pos.X, be.Pos.Z)]
	if chunk == nil {
		cs.mu.Unlock()
		return false
	}
	chunk.blockEntities[be.Pos] = be
	cs.mu.Unlock()

	cs.notify(be.Pos.Section(), false)
	return true
}
