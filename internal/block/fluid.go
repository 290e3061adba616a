package block

// FluidKind identifies a fluid.
type FluidKind uint8

const (
	FluidNone FluidKind = iota
	FluidWater
	FluidLava
)

func (k FluidKind) String() string {
	switch k {
	case FluidWater:
		return "water"
	case FluidLava:
		return "lava"
	default:
		return "none"
	}
}

// Fluid is the fluid state of a single position.
type Fluid struct {
	Kind FluidKind
	// Level is 8 for a source block and lower for flowing fluid.
	Level uint8
}

// NoFluid is the empty fluid state.
var NoFluid = Fluid{}

func (f Fluid) IsEmpty() bool {
	return f.Kind == FluidNone
}

// Layer returns the render layer fluid geometry is emitted into.
func (f Fluid) Layer() Layer {
	if f.Kind == FluidWater {
		return LayerTranslucent
	}
	return LayerSolid
}

// Height returns the surface height of the fluid inside its cell in [0,1].
func (f Fluid) Height() float32 {
	if f.IsEmpty() {
		return 0
	}
	lvl := f.Level
	if lvl == 0 || lvl > 8 {
		lvl = 8
	}
	return float32(lvl) / 9.0
}
