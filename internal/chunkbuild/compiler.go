package chunkbuild

import (
	"sort"

	"chunkmesh/internal/block"
	"chunkmesh/internal/config"
	"chunkmesh/internal/profiling"

	"github.com/go-gl/mathgl/mgl64"
)

// Compiler is the per-frame policy deciding which dirty chunks to rebuild,
// where, and when to resort translucent geometry. Render thread only.
type Compiler struct {
	sched *Scheduler

	lastResort mgl64.Vec3
	resorted   bool
}

func NewCompiler(s *Scheduler) *Compiler {
	return &Compiler{sched: s}
}

// CompileDirty schedules rebuilds for the dirty chunks in draw order. Chunks
// selected by the chunk update priority are rebuilt synchronously.
func (c *Compiler) CompileDirty(chunks []*BuiltChunk) (async, sync int) {
	defer profiling.Track("chunkbuild.CompileDirty")()

	cam := c.sched.Camera()
	cfg := c.sched.Config()
	priority := config.GetChunkUpdatePriority()

	var deferred []*BuiltChunk
	for _, ch := range chunks {
		if !ch.IsDirty() {
			continue
		}
		buildSync := false
		switch priority {
		case config.PriorityNearby:
			lo, _ := ch.Bounds()
			d := lo.Add(mgl64.Vec3{8, 8, 8}).Sub(cam)
			buildSync = d.Dot(d) < cfg.SyncRebuildDistanceSq || ch.IsDirtyFromPlayer()
		case config.PriorityPlayerAffected:
			buildSync = ch.IsDirtyFromPlayer()
		}

		if buildSync {
			// cleared first so a failed precondition leaves the chunk dirty
			ch.SetNotDirty()
			c.sched.RebuildSync(ch)
			sync++
			continue
		}
		deferred = append(deferred, ch)
	}

	for _, ch := range deferred {
		ch.RebuildAsync()
		ch.SetNotDirty()
		async++
	}
	return async, sync
}

// ResortTranslucent schedules translucency sorts for the nearest chunks once
// the camera moved far enough since the last resort. It returns the number
// of sorts scheduled.
func (c *Compiler) ResortTranslucent(chunks []*BuiltChunk) int {
	cam := c.sched.Camera()
	cfg := c.sched.Config()
	if c.resorted {
		d := cam.Sub(c.lastResort)
		if d.Dot(d) <= cfg.ResortMoveThreshold*cfg.ResortMoveThreshold {
			return 0
		}
	}
	c.lastResort = cam
	c.resorted = true

	candidates := make([]*BuiltChunk, 0, len(chunks))
	dist := make(map[*BuiltChunk]float64, len(chunks))
	for _, ch := range chunks {
		if ch.Data().HasLayer(block.LayerTranslucent) {
			candidates = append(candidates, ch)
			dist[ch] = ch.DistanceSq()
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return dist[candidates[i]] < dist[candidates[j]]
	})

	n := 0
	for _, ch := range candidates {
		if n >= cfg.MaxResortsPerFrame {
			break
		}
		if ch.ScheduleSort() {
			n++
		}
	}
	return n
}
