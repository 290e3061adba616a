package config

import "sync"

// WorldGenSettings holds world generation configuration
type WorldGenSettings struct {
	mu         sync.RWMutex
	flat       bool
	flatHeight int
	seaLevel   int
}

var globalWorldGenSettings = &WorldGenSettings{
	flat:       false,
	flatHeight: 20,
	seaLevel:   62,
}

// GetFlat returns whether the flat generator is selected
func GetFlat() bool {
	globalWorldGenSettings.mu.RLock()
	defer globalWorldGenSettings.mu.RUnlock()
	return globalWorldGenSettings.flat
}

// SetFlat selects the flat generator with the surface at height.
func SetFlat(enabled bool, height int) {
	globalWorldGenSettings.mu.Lock()
	defer globalWorldGenSettings.mu.Unlock()
	globalWorldGenSettings.flat = enabled
	if height > 0 {
		globalWorldGenSettings.flatHeight = height
	}
}

// GetFlatHeight returns the surface height used by the flat generator
func GetFlatHeight() int {
	globalWorldGenSettings.mu.RLock()
	defer globalWorldGenSettings.mu.RUnlock()
	return globalWorldGenSettings.flatHeight
}

// GetSeaLevel returns the configured sea level
func GetSeaLevel() int {
	globalWorldGenSettings.mu.RLock()
	defer globalWorldGenSettings.mu.RUnlock()
	return globalWorldGenSettings.seaLevel
}

// SetSeaLevel sets the sea level
func SetSeaLevel(level int) {
	globalWorldGenSettings.mu.Lock()
	defer globalWorldGenSettings.mu.Unlock()
	globalWorldGenSettings.seaLevel = level
}
