package block

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryRejectsDuplicates(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&Definition{ID: 1, Name: "stone"}))
	assert.Error(t, r.Register(&Definition{ID: 1, Name: "other"}))
	assert.Error(t, r.Register(&Definition{ID: 2, Name: "stone"}))
}

func TestRegistryLookupFallsBackToAir(t *testing.T) {
	r := NewDefaultRegistry()
	assert.Equal(t, "stone", r.Lookup(Stone).Name)
	assert.Equal(t, Air, r.Lookup(9999).ID)

	id, ok := r.ByName("stained_glass")
	require.True(t, ok)
	assert.Equal(t, LayerTranslucent, r.Lookup(id).Layer)
}

func TestTextureIndexPerFace(t *testing.T) {
	r := NewDefaultRegistry()
	grass := r.Lookup(Grass)
	top := r.TextureIndex(grass, FaceTop)
	side := r.TextureIndex(grass, FaceSide)
	bottom := r.TextureIndex(grass, FaceBottom)
	assert.NotEqual(t, top, side)
	assert.Equal(t, r.TextureIndex(r.Lookup(Dirt), FaceSide), bottom)
	assert.Equal(t, "grass_top.png", r.TextureNames()[top])
}

func TestLayerSet(t *testing.T) {
	var s LayerSet
	assert.True(t, s.Empty())
	s = s.With(LayerTranslucent).With(LayerSolid).With(LayerSolid)
	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Has(LayerSolid))
	assert.False(t, s.Has(LayerCutout))
	assert.Equal(t, []Layer{LayerSolid, LayerTranslucent}, s.Layers())
	assert.Equal(t, "[solid translucent]", s.String())
}

func TestFluidLayer(t *testing.T) {
	assert.True(t, NoFluid.IsEmpty())
	assert.Equal(t, LayerTranslucent, Fluid{Kind: FluidWater, Level: 8}.Layer())
	assert.Equal(t, LayerSolid, Fluid{Kind: FluidLava, Level: 8}.Layer())
	assert.InDelta(t, 8.0/9.0, Fluid{Kind: FluidWater}.Height(), 1e-6)
}
