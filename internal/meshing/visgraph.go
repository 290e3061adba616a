package meshing

import (
	"math/bits"
	"strings"

	"chunkmesh/internal/world"
)

const (
	visCells = world.SectionVolume
	// Below this many opaque cells the section is treated as see-through.
	visMinOpaque = 256
)

// VisibilitySet records for every ordered pair of section faces whether one
// can be seen from the other through the section. Bit a+b*6.
type VisibilitySet uint64

const visAll = VisibilitySet(1<<(world.NumDirections*world.NumDirections) - 1)

// VisibleBetween reports whether face b can be seen when entering through face a.
func (v VisibilitySet) VisibleBetween(a, b world.Direction) bool {
	return v&(1<<(uint(a)+uint(b)*world.NumDirections)) != 0
}

// With returns the set with a<->b marked visible in both directions.
func (v VisibilitySet) With(a, b world.Direction) VisibilitySet {
	v |= 1 << (uint(a) + uint(b)*world.NumDirections)
	v |= 1 << (uint(b) + uint(a)*world.NumDirections)
	return v
}

// AllVisible returns a set where every face sees every other face.
func AllVisible() VisibilitySet { return visAll }

func (v VisibilitySet) Count() int { return bits.OnesCount64(uint64(v)) }

func (v VisibilitySet) String() string {
	var sb strings.Builder
	for _, a := range world.Directions {
		sb.WriteString(a.String()[:1])
		sb.WriteByte(':')
		for _, b := range world.Directions {
			if v.VisibleBetween(a, b) {
				sb.WriteByte('1')
			} else {
				sb.WriteByte('0')
			}
		}
		if a != world.East {
			sb.WriteByte(' ')
		}
	}
	return sb.String()
}

// VisGraph collects the opaque cells of one section during a build and
// resolves them into a VisibilitySet by flood filling the open cells.
type VisGraph struct {
	opaque [visCells / 64]uint64
	empty  int
}

func NewVisGraph() *VisGraph {
	return &VisGraph{empty: visCells}
}

func visIndex(x, y, z int) int {
	return x | z<<4 | y<<8
}

func isSet(bitsArr *[visCells / 64]uint64, i int) bool {
	return bitsArr[i>>6]&(1<<(i&63)) != 0
}

// SetOpaque marks the section-local cell x/y/z as fully opaque.
func (g *VisGraph) SetOpaque(x, y, z int) {
	i := visIndex(x, y, z)
	if isSet(&g.opaque, i) {
		return
	}
	g.opaque[i>>6] |= 1 << (i & 63)
	g.empty--
}

// Resolve computes face-to-face visibility.
func (g *VisGraph) Resolve() VisibilitySet {
	if visCells-g.empty < visMinOpaque {
		return visAll
	}
	if g.empty == 0 {
		return 0
	}

	var set VisibilitySet
	visited := g.opaque
	queue := make([]int, 0, 512)
	for _, start := range edgeIndices {
		if isSet(&visited, start) {
			continue
		}
		var faces uint8
		visited[start>>6] |= 1 << (start & 63)
		queue = append(queue[:0], start)
		for len(queue) > 0 {
			i := queue[0]
			queue = queue[1:]
			for _, d := range world.Directions {
				n, ok := visStep(i, d)
				if !ok {
					faces |= 1 << d
					continue
				}
				if !isSet(&visited, n) {
					visited[n>>6] |= 1 << (n & 63)
					queue = append(queue, n)
				}
			}
		}
		for _, a := range world.Directions {
			if faces&(1<<a) == 0 {
				continue
			}
			for _, b := range world.Directions {
				if faces&(1<<b) != 0 {
					set = set.With(a, b)
				}
			}
		}
	}
	return set
}

// visStep moves from cell i one step in d. ok is false when the step leaves
// the section through face d.
func visStep(i int, d world.Direction) (int, bool) {
	x, z, y := i&15, (i>>4)&15, (i>>8)&15
	switch d {
	case world.Down:
		if y == 0 {
			return 0, false
		}
		return i - 256, true
	case world.Up:
		if y == 15 {
			return 0, false
		}
		return i + 256, true
	case world.North:
		if z == 0 {
			return 0, false
		}
		return i - 16, true
	case world.South:
		if z == 15 {
			return 0, false
		}
		return i + 16, true
	case world.West:
		if x == 0 {
			return 0, false
		}
		return i - 1, true
	default:
		if x == 15 {
			return 0, false
		}
		return i + 1, true
	}
}

var edgeIndices = func() []int {
	out := make([]int, 0, 1352)
	for x := 0; x < 16; x++ {
		for y := 0; y < 16; y++ {
			for z := 0; z < 16; z++ {
				if x == 0 || x == 15 || y == 0 || y == 15 || z == 0 || z == 15 {
					out = append(out, visIndex(x, y, z))
				}
			}
		}
	}
	return out
}()
