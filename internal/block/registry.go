package block

import (
	"fmt"
	"sync"
)

// ID identifies a block type. ID 0 is always air.
type ID uint16

const Air ID = 0

// RenderShape tells the chunk builder whether a block emits batched geometry.
type RenderShape uint8

const (
	ShapeInvisible RenderShape = iota
	ShapeModel
	// ShapeEntity blocks are drawn by their block entity renderer only.
	ShapeEntity
)

// Face selects which texture of a definition to use.
type Face uint8

const (
	FaceSide Face = iota
	FaceTop
	FaceBottom
)

// Definition defines the render properties of a block type
type Definition struct {
	ID          ID
	Name        string
	TextureTop  string
	TextureSide string
	TextureBot  string
	Shape       RenderShape
	Layer       Layer
	// Opaque blocks are full cubes that hide their neighbours and block visibility.
	Opaque bool
	// Fluid is the fluid this block contains, FluidNone for dry blocks.
	Fluid     FluidKind
	TintColor uint32
	// HasBlockEntity marks blocks that carry a block entity.
	HasBlockEntity bool
}

// Registry is a read-only-after-setup table of block definitions and their
// texture indices. It is passed explicitly to everything that needs it.
type Registry struct {
	mu         sync.RWMutex
	defs       []*Definition
	byName     map[string]ID
	textureMap map[string]int
	textures   []string
}

// NewRegistry returns a registry that only knows air.
func NewRegistry() *Registry {
	r := &Registry{
		byName:     make(map[string]ID),
		textureMap: make(map[string]int),
	}
	_ = r.Register(&Definition{ID: Air, Name: "air", Shape: ShapeInvisible})
	return r
}

// Register adds a definition. IDs and names must be unique.
func (r *Registry) Register(def *Definition) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if int(def.ID) < len(r.defs) && r.defs[def.ID] != nil {
		return fmt.Errorf("block id %d already registered as %q", def.ID, r.defs[def.ID].Name)
	}
	if _, ok := r.byName[def.Name]; ok {
		return fmt.Errorf("block name %q already registered", def.Name)
	}
	for int(def.ID) >= len(r.defs) {
		r.defs = append(r.defs, nil)
	}
	r.defs[def.ID] = def
	r.byName[def.Name] = def.ID

	r.registerTexture(def.TextureTop)
	r.registerTexture(def.TextureSide)
	r.registerTexture(def.TextureBot)
	return nil
}

func (r *Registry) registerTexture(name string) {
	if name == "" {
		return
	}
	if _, exists := r.textureMap[name]; !exists {
		r.textureMap[name] = len(r.textures)
		r.textures = append(r.textures, name)
	}
}

// Lookup returns the definition for id, falling back to air for unknown ids.
func (r *Registry) Lookup(id ID) *Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if int(id) < len(r.defs) {
		if def := r.defs[id]; def != nil {
			return def
		}
	}
	return r.defs[Air]
}

// ByName returns the id registered under name.
func (r *Registry) ByName(name string) (ID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byName[name]
	return id, ok
}

// TextureIndex returns the texture layer index of def for the given face.
func (r *Registry) TextureIndex(def *Definition, face Face) int {
	var name string
	switch face {
	case FaceTop:
		name = def.TextureTop
	case FaceBottom:
		name = def.TextureBot
	default:
		name = def.TextureSide
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if idx, ok := r.textureMap[name]; ok {
		return idx
	}
	return 0
}

// TextureNames lists registered textures in index order.
func (r *Registry) TextureNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.textures...)
}

// Block ids of the default registry.
const (
	Stone ID = iota + 1
	Dirt
	Grass
	Bedrock
	Sand
	Glass
	Leaves
	Water
	Lava
	StainedGlass
	Chest
	Tripwire
)

// NewDefaultRegistry registers the built-in block set.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	defs := []*Definition{
		{ID: Stone, Name: "stone", TextureTop: "stone.png", TextureSide: "stone.png", TextureBot: "stone.png", Shape: ShapeModel, Layer: LayerSolid, Opaque: true},
		{ID: Dirt, Name: "dirt", TextureTop: "dirt.png", TextureSide: "dirt.png", TextureBot: "dirt.png", Shape: ShapeModel, Layer: LayerSolid, Opaque: true},
		{ID: Grass, Name: "grass", TextureTop: "grass_top.png", TextureSide: "grass_side.png", TextureBot: "dirt.png", Shape: ShapeModel, Layer: LayerSolid, Opaque: true, TintColor: 0x7DFF5C},
		{ID: Bedrock, Name: "bedrock", TextureTop: "bedrock.png", TextureSide: "bedrock.png", TextureBot: "bedrock.png", Shape: ShapeModel, Layer: LayerSolid, Opaque: true},
		{ID: Sand, Name: "sand", TextureTop: "sand.png", TextureSide: "sand.png", TextureBot: "sand.png", Shape: ShapeModel, Layer: LayerSolid, Opaque: true},
		{ID: Glass, Name: "glass", TextureTop: "glass.png", TextureSide: "glass.png", TextureBot: "glass.png", Shape: ShapeModel, Layer: LayerCutout},
		{ID: Leaves, Name: "leaves", TextureTop: "leaves_oak.png", TextureSide: "leaves_oak.png", TextureBot: "leaves_oak.png", Shape: ShapeModel, Layer: LayerCutoutMipped, TintColor: 0x48B518},
		{ID: Water, Name: "water", TextureTop: "water_still.png", TextureSide: "water_flow.png", TextureBot: "water_still.png", Shape: ShapeInvisible, Layer: LayerTranslucent, Fluid: FluidWater},
		{ID: Lava, Name: "lava", TextureTop: "lava_still.png", TextureSide: "lava_flow.png", TextureBot: "lava_still.png", Shape: ShapeInvisible, Layer: LayerSolid, Fluid: FluidLava},
		{ID: StainedGlass, Name: "stained_glass", TextureTop: "glass_red.png", TextureSide: "glass_red.png", TextureBot: "glass_red.png", Shape: ShapeModel, Layer: LayerTranslucent},
		{ID: Chest, Name: "chest", Shape: ShapeEntity, Layer: LayerSolid, HasBlockEntity: true},
		{ID: Tripwire, Name: "tripwire", TextureTop: "trip_wire.png", TextureSide: "trip_wire.png", TextureBot: "trip_wire.png", Shape: ShapeModel, Layer: LayerTripwire},
	}
	for _, def := range defs {
		if err := r.Register(def); err != nil {
			panic(err)
		}
	}
	return r
}
