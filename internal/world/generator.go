package world

import (
	"math"

	"chunkmesh/internal/block"
	"chunkmesh/internal/config"

	"github.com/aquilax/go-perlin"
)

// TerrainGenerator fills freshly created chunks.
type TerrainGenerator interface {
	HeightAt(worldX, worldZ int) int
	PopulateChunk(c *Chunk)
}

// Generator handles terrain generation logic.
type Generator struct {
	noise      *perlin.Perlin
	scale      float64
	baseHeight int
	amp        float64
	seaLevel   int
}

// NewGenerator creates a new generator with default settings.
func NewGenerator(seed int64) *Generator {
	return &Generator{
		noise:      perlin.NewPerlin(2, 2, 4, seed),
		scale:      1.0 / 64.0,
		baseHeight: 64,
		amp:        24,
		seaLevel:   config.GetSeaLevel(),
	}
}

// HeightAt computes world surface height (block Y) at world X,Z.
func (g *Generator) HeightAt(worldX, worldZ int) int {
	n := g.noise.Noise2D(float64(worldX)*g.scale, float64(worldZ)*g.scale)
	height := float64(g.baseHeight) + n*g.amp
	if height < 1 {
		height = 1
	}
	if height > ChunkHeight-1 {
		height = ChunkHeight - 1
	}
	return int(math.Floor(height))
}

// PopulateChunk fills a chunk using the noise heightmap, with water up to
// sea level and sand on the shore.
func (g *Generator) PopulateChunk(c *Chunk) {
	for lx := 0; lx < SectionSize; lx++ {
		for lz := 0; lz < SectionSize; lz++ {
			worldX := c.X*SectionSize + lx
			worldZ := c.Z*SectionSize + lz
			height := g.HeightAt(worldX, worldZ)

			c.SetBlock(lx, 0, lz, block.Bedrock)
			for y := 1; y < height-3; y++ {
				c.SetBlock(lx, y, lz, block.Stone)
			}
			for y := max(1, height-3); y < height; y++ {
				c.SetBlock(lx, y, lz, block.Dirt)
			}
			if height <= g.seaLevel+1 {
				c.SetBlock(lx, height, lz, block.Sand)
			} else {
				c.SetBlock(lx, height, lz, block.Grass)
			}
			for y := height + 1; y <= g.seaLevel; y++ {
				c.SetBlock(lx, y, lz, block.Water)
			}
		}
	}
}

// FlatGenerator produces flat terrain of constant height.
type FlatGenerator struct {
	height int
}

// NewFlatGenerator creates a flat generator whose surface is at height.
func NewFlatGenerator(height int) *FlatGenerator {
	return &FlatGenerator{height: height}
}

func (g *FlatGenerator) HeightAt(worldX, worldZ int) int {
	return g.height
}

func (g *FlatGenerator) PopulateChunk(c *Chunk) {
	for lx := 0; lx < SectionSize; lx++ {
		for lz := 0; lz < SectionSize; lz++ {
			c.SetBlock(lx, 0, lz, block.Bedrock)
			for y := 1; y < g.height; y++ {
				c.SetBlock(lx, y, lz, block.Dirt)
			}
			if g.height > 0 {
				c.SetBlock(lx, g.height, lz, block.Grass)
			}
		}
	}
}
