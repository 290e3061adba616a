package world

import "fmt"

const (
	// SectionSize is the edge length of a cubic chunk section.
	SectionSize   = 16
	SectionVolume = SectionSize * SectionSize * SectionSize
)

// BlockPos is an integer block position in world coordinates.
type BlockPos struct {
	X, Y, Z int
}

func (p BlockPos) Add(dx, dy, dz int) BlockPos {
	return BlockPos{p.X + dx, p.Y + dy, p.Z + dz}
}

// Offset returns the position n blocks away in direction d.
func (p BlockPos) Offset(d Direction, n int) BlockPos {
	o := d.Normal()
	return BlockPos{p.X + o[0]*n, p.Y + o[1]*n, p.Z + o[2]*n}
}

// Local returns the coordinates of p inside its section (0..15).
func (p BlockPos) Local() (int, int, int) {
	return mod(p.X, SectionSize), mod(p.Y, SectionSize), mod(p.Z, SectionSize)
}

// Section returns the section containing p.
func (p BlockPos) Section() SectionPos {
	return SectionPos{floorDiv(p.X, SectionSize), floorDiv(p.Y, SectionSize), floorDiv(p.Z, SectionSize)}
}

func (p BlockPos) String() string {
	return fmt.Sprintf("(%d, %d, %d)", p.X, p.Y, p.Z)
}

// SectionPos addresses a 16x16x16 section in section coordinates.
type SectionPos struct {
	X, Y, Z int
}

// Origin returns the minimum block corner of the section.
func (s SectionPos) Origin() BlockPos {
	return BlockPos{s.X * SectionSize, s.Y * SectionSize, s.Z * SectionSize}
}

func (s SectionPos) String() string {
	return fmt.Sprintf("[%d, %d, %d]", s.X, s.Y, s.Z)
}

// ChunkPos addresses a full-height chunk column.
type ChunkPos struct {
	X, Z int
}

// ChunkOf returns the column containing block x/z.
func ChunkOf(x, z int) ChunkPos {
	return ChunkPos{floorDiv(x, SectionSize), floorDiv(z, SectionSize)}
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}

// FloorDiv is floor division for negative world coordinates.
func FloorDiv(a, b int) int { return floorDiv(a, b) }

// FloorMod is the non-negative remainder of a/b.
func FloorMod(a, b int) int { return mod(a, b) }
