package block

import "strings"

// Layer is a render layer that chunk geometry is bucketed into.
type Layer uint8

const (
	LayerSolid Layer = iota
	LayerCutoutMipped
	LayerCutout
	LayerTranslucent
	LayerTripwire

	NumLayers = 5
)

var layerNames = [NumLayers]string{"solid", "cutout_mipped", "cutout", "translucent", "tripwire"}

// Initial scratch capacity per layer in bytes
var layerBufferSizes = [NumLayers]int{2097152, 131072, 131072, 262144, 262144}

func (l Layer) String() string {
	if int(l) < len(layerNames) {
		return layerNames[l]
	}
	return "unknown"
}

// BufferSize returns the number of bytes a scratch builder reserves for the layer.
func (l Layer) BufferSize() int {
	if int(l) < len(layerBufferSizes) {
		return layerBufferSizes[l]
	}
	return 0
}

// Layers returns every chunk layer in draw order.
func Layers() []Layer {
	return []Layer{LayerSolid, LayerCutoutMipped, LayerCutout, LayerTranslucent, LayerTripwire}
}

// LayerSet is a small bitset of layers. The zero value is empty.
type LayerSet uint8

// Has reports whether l is in the set.
func (s LayerSet) Has(l Layer) bool {
	return s&(1<<l) != 0
}

// With returns a copy of the set with l added.
func (s LayerSet) With(l Layer) LayerSet {
	return s | 1<<l
}

func (s LayerSet) Empty() bool {
	return s == 0
}

func (s LayerSet) Len() int {
	n := 0
	for _, l := range Layers() {
		if s.Has(l) {
			n++
		}
	}
	return n
}

// Layers lists the members of the set in draw order.
func (s LayerSet) Layers() []Layer {
	out := make([]Layer, 0, NumLayers)
	for _, l := range Layers() {
		if s.Has(l) {
			out = append(out, l)
		}
	}
	return out
}

func (s LayerSet) String() string {
	names := make([]string, 0, NumLayers)
	for _, l := range s.Layers() {
		names = append(names, l.String())
	}
	return "[" + strings.Join(names, " ") + "]"
}
