package meshing

import "chunkmesh/internal/block"

// BufferPack holds one Builder per render layer. A pack is owned by exactly
// one task at a time.
type BufferPack struct {
	builders [block.NumLayers]*Builder
}

// NewBufferPack allocates builders for every layer.
func NewBufferPack() *BufferPack {
	p := &BufferPack{}
	for _, l := range block.Layers() {
		p.builders[l] = NewBuilder(l)
	}
	return p
}

// PackBytes is the storage a fresh BufferPack reserves.
func PackBytes() int {
	n := 0
	for _, l := range block.Layers() {
		n += l.BufferSize()
	}
	return n
}

func (p *BufferPack) Builder(l block.Layer) *Builder {
	return p.builders[l]
}

// ClearAll clears every builder after a successful task.
func (p *BufferPack) ClearAll() {
	for _, b := range p.builders {
		b.Clear()
	}
}

// ResetAll resets every builder after a cancelled or failed task.
func (p *BufferPack) ResetAll() {
	for _, b := range p.builders {
		b.Reset()
	}
}

// Idle reports whether every builder is idle.
func (p *BufferPack) Idle() bool {
	for _, b := range p.builders {
		if !b.Idle() {
			return false
		}
	}
	return true
}

// Bytes returns the storage currently reserved by the pack.
func (p *BufferPack) Bytes() int {
	n := 0
	for _, b := range p.builders {
		n += b.CapacityBytes()
	}
	return n
}
