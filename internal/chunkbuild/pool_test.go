package chunkbuild

import (
	"testing"

	"chunkmesh/internal/config"
	"chunkmesh/internal/logging"
	"chunkmesh/internal/meshing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolSize(t *testing.T) {
	cfg := config.DefaultPipeline()

	tests := []struct {
		name    string
		budget  uint64
		cpus    int
		is64bit bool
		want    int
	}{
		{"bounded by cpus", 8 << 30, 8, true, 8},
		{"bounded by memory", 8 << 30, 1000, true, 222},
		{"32-bit cpu cap", 8 << 30, 16, false, 4},
		{"32-bit few cpus", 8 << 30, 2, false, 2},
		{"tiny budget", 1 << 20, 8, true, 1},
		{"no budget", 0, 8, true, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PoolSize(cfg, tt.budget, tt.cpus, tt.is64bit))
		})
	}
}

// failingAllocator succeeds n times, then reports out of memory.
func failingAllocator(n int) PackAllocator {
	return func() (*meshing.BufferPack, error) {
		if n == 0 {
			return nil, errors.WithStack(ErrOutOfMemory)
		}
		n--
		return meshing.NewBufferPack(), nil
	}
}

func TestBufferPoolShrinksOnShortfall(t *testing.T) {
	tests := []struct {
		allocated int
		want      int
	}{
		{0, 1},
		{1, 1},
		{2, 2},
		{3, 2},
		{6, 4},
		{9, 6},
	}
	for _, tt := range tests {
		p := newBufferPool(16, failingAllocator(tt.allocated), logging.Discard())
		assert.Equal(t, tt.want, p.Total(), "after %d packs", tt.allocated)
		assert.Equal(t, tt.want, p.Free())
	}
}

func TestBufferPoolFullAllocation(t *testing.T) {
	p := newBufferPool(3, failingAllocator(10), logging.Discard())
	assert.Equal(t, 3, p.Total())
	assert.Contains(t, p.String(), "3 packs")
}

func TestBufferPoolGetPut(t *testing.T) {
	p := newBufferPool(2, failingAllocator(2), logging.Discard())

	a, ok := p.get()
	require.True(t, ok)
	b, ok := p.get()
	require.True(t, ok)
	_, ok = p.get()
	assert.False(t, ok)
	assert.Zero(t, p.Free())

	p.put(a)
	assert.Equal(t, 1, p.Free())

	p.release()
	p.put(b)
	assert.Zero(t, p.Free(), "packs returned after release are dropped")
	assert.Zero(t, p.Total())
}

func TestBudgetAllocator(t *testing.T) {
	alloc := BudgetAllocator(uint64(meshing.PackBytes()*2 + 1))

	for i := 0; i < 2; i++ {
		p, err := alloc()
		require.NoError(t, err)
		assert.NotNil(t, p)
	}
	_, err := alloc()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOutOfMemory)
}

func TestAvailableMemoryIsPositive(t *testing.T) {
	cfg := config.DefaultPipeline()
	assert.Positive(t, AvailableMemory(cfg, logging.Discard()))
}
