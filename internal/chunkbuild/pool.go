package chunkbuild

import (
	"fmt"
	"runtime"
	"strconv"
	"sync"

	"chunkmesh/internal/config"
	"chunkmesh/internal/meshing"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/sirupsen/logrus"
)

// ErrOutOfMemory is returned by a PackAllocator that cannot provide another pack.
var ErrOutOfMemory = errors.New("chunkbuild: buffer pack allocation exceeds memory budget")

// PackAllocator provides new buffer packs for the pool.
type PackAllocator func() (*meshing.BufferPack, error)

// BudgetAllocator hands out packs until their combined reservation would
// exceed budget bytes.
func BudgetAllocator(budget uint64) PackAllocator {
	var mu sync.Mutex
	var used uint64
	packBytes := uint64(meshing.PackBytes())
	return func() (*meshing.BufferPack, error) {
		mu.Lock()
		defer mu.Unlock()
		if used+packBytes > budget {
			return nil, errors.Wrapf(ErrOutOfMemory, "%s of %s used",
				humanize.IBytes(used), humanize.IBytes(budget))
		}
		used += packBytes
		return meshing.NewBufferPack(), nil
	}
}

// AvailableMemory probes the host for available memory and falls back to
// the configured amount when that fails.
func AvailableMemory(cfg config.Pipeline, log logrus.FieldLogger) uint64 {
	vm, err := mem.VirtualMemory()
	if err != nil || vm.Available == 0 {
		log.WithError(err).Warnf("memory probe failed, assuming %s", humanize.IBytes(cfg.FallbackMemoryBytes))
		return cfg.FallbackMemoryBytes
	}
	return vm.Available
}

// PoolSize returns how many buffer packs to allocate: bounded by the memory
// budget and by the logical CPU count (capped on 32-bit builds), at least one.
func PoolSize(cfg config.Pipeline, budget uint64, numCPU int, is64bit bool) int {
	packBytes := meshing.PackBytes()
	byMemory := int(float64(budget)*cfg.MemoryBudgetFraction)/(packBytes*4) - 1
	byMemory = max(byMemory, 1)

	cpus := numCPU
	if !is64bit {
		cpus = min(numCPU, cfg.CPUCap32)
	}
	return max(1, min(cpus, byMemory))
}

// DefaultPoolSize applies PoolSize to the running host.
func DefaultPoolSize(cfg config.Pipeline, log logrus.FieldLogger) int {
	return PoolSize(cfg, AvailableMemory(cfg, log), runtime.NumCPU(), strconv.IntSize == 64)
}

// BufferPool holds the packs not currently owned by a task. Owned by the actor.
type BufferPool struct {
	free  []*meshing.BufferPack
	total int
}

// newBufferPool allocates up to size packs. On a shortfall after k packs it
// keeps k - min(k/3, k-1) of them, never fewer than one.
func newBufferPool(size int, alloc PackAllocator, log logrus.FieldLogger) *BufferPool {
	packs := make([]*meshing.BufferPack, 0, size)
	for len(packs) < size {
		p, err := alloc()
		if err != nil {
			k := len(packs)
			keep := 1
			if k > 0 {
				keep = k - min(k/3, k-1)
			}
			log.WithError(err).Warnf("allocated only %d/%d buffer packs, keeping %d", k, size, keep)
			if k == 0 {
				packs = append(packs, meshing.NewBufferPack())
			}
			packs = packs[:keep]
			break
		}
		packs = append(packs, p)
	}
	return &BufferPool{free: packs, total: len(packs)}
}

func (p *BufferPool) get() (*meshing.BufferPack, bool) {
	n := len(p.free)
	if n == 0 {
		return nil, false
	}
	pack := p.free[n-1]
	p.free[n-1] = nil
	p.free = p.free[:n-1]
	return pack, true
}

func (p *BufferPool) put(pack *meshing.BufferPack) {
	if p.total == 0 {
		return
	}
	p.free = append(p.free, pack)
}

// release drops every pack. Packs returned later are dropped too.
func (p *BufferPool) release() {
	p.free = nil
	p.total = 0
}

func (p *BufferPool) Free() int  { return len(p.free) }
func (p *BufferPool) Total() int { return p.total }

func (p *BufferPool) String() string {
	return fmt.Sprintf("%d packs (%s)", p.total, humanize.IBytes(uint64(p.total*meshing.PackBytes())))
}
