package world

import "chunkmesh/internal/block"

const (
	// Chunk dimensions
	ChunkHeight = 256
	NumSections = ChunkHeight / SectionSize
)

// Section represents a 16x16x16 sub-volume of a chunk.
// Block storage is allocated on the first non-air write.
type Section struct {
	blocks   []block.ID
	nonEmpty int
}

// indexInSection converts local section coordinates to a flat index
func indexInSection(x, y, z int) int {
	return x*SectionSize*SectionSize + y*SectionSize + z
}

func (s *Section) get(x, y, z int) block.ID {
	if s == nil || s.blocks == nil {
		return block.Air
	}
	return s.blocks[indexInSection(x, y, z)]
}

// set stores id and reports whether the stored value changed.
func (s *Section) set(x, y, z int, id block.ID) bool {
	if s.blocks == nil {
		if id == block.Air {
			return false
		}
		s.blocks = make([]block.ID, SectionVolume)
	}
	idx := indexInSection(x, y, z)
	old := s.blocks[idx]
	if old == id {
		return false
	}
	s.blocks[idx] = id
	switch {
	case old == block.Air:
		s.nonEmpty++
	case id == block.Air:
		s.nonEmpty--
	}
	if s.nonEmpty == 0 {
		s.blocks = nil
	}
	return true
}

// IsEmpty reports whether the section holds only air.
func (s *Section) IsEmpty() bool {
	return s == nil || s.nonEmpty == 0
}

// BlockEntity is block-attached data rendered by a dedicated renderer.
type BlockEntity struct {
	Pos  BlockPos
	Kind string
}

// Chunk represents a full-height 16x256x16 column.
type Chunk struct {
	X, Z          int
	sections      [NumSections]*Section
	blockEntities map[BlockPos]BlockEntity
}

// NewChunk creates an empty chunk at the specified chunk coordinates
func NewChunk(x, z int) *Chunk {
	return &Chunk{
		X:             x,
		Z:             z,
		blockEntities: make(map[BlockPos]BlockEntity),
	}
}

// Pos returns the column coordinates of the chunk.
func (c *Chunk) Pos() ChunkPos {
	return ChunkPos{c.X, c.Z}
}

// GetBlock returns the block at the specified local coordinates
func (c *Chunk) GetBlock(x, y, z int) block.ID {
	if x < 0 || x >= SectionSize || y < 0 || y >= ChunkHeight || z < 0 || z >= SectionSize {
		return block.Air
	}
	return c.sections[y/SectionSize].get(x, y%SectionSize, z)
}

// SetBlock sets the block at the specified local coordinates and reports whether it changed.
func (c *Chunk) SetBlock(x, y, z int, id block.ID) bool {
	if x < 0 || x >= SectionSize || y < 0 || y >= ChunkHeight || z < 0 || z >= SectionSize {
		return false
	}
	secIdx := y / SectionSize
	sec := c.sections[secIdx]
	if sec == nil {
		if id == block.Air {
			return false
		}
		sec = &Section{}
		c.sections[secIdx] = sec
	}
	return sec.set(x, y%SectionSize, z, id)
}

// Section returns the section at index i (0 is the bottom one), or nil.
func (c *Chunk) Section(i int) *Section {
	if i < 0 || i >= NumSections {
		return nil
	}
	return c.sections[i]
}

// BlockEntity returns the block entity stored at world position pos.
func (c *Chunk) BlockEntity(pos BlockPos) (BlockEntity, bool) {
	be, ok := c.blockEntities[pos]
	return be, ok
}
