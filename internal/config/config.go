package config

import "sync"

// ChunkUpdatePriority selects which dirty sections are rebuilt on the render
// thread instead of being handed to the worker pool.
type ChunkUpdatePriority int

const (
	// PriorityNone rebuilds everything asynchronously.
	PriorityNone ChunkUpdatePriority = iota
	// PriorityPlayerAffected rebuilds sections changed by the player synchronously.
	PriorityPlayerAffected
	// PriorityNearby also rebuilds sections close to the camera synchronously.
	PriorityNearby
)

func (p ChunkUpdatePriority) String() string {
	switch p {
	case PriorityPlayerAffected:
		return "player_affected"
	case PriorityNearby:
		return "nearby"
	default:
		return "none"
	}
}

// ParseChunkUpdatePriority is the inverse of ChunkUpdatePriority.String.
func ParseChunkUpdatePriority(s string) (ChunkUpdatePriority, bool) {
	switch s {
	case "none", "":
		return PriorityNone, true
	case "player_affected":
		return PriorityPlayerAffected, true
	case "nearby":
		return PriorityNearby, true
	}
	return PriorityNone, false
}

// RenderSettings holds render configuration
type RenderSettings struct {
	mu             sync.RWMutex
	renderDistance int // in chunks
	priority       ChunkUpdatePriority
}

const (
	MinRenderDistance = 2
	MaxRenderDistance = 32
)

var globalRenderSettings = &RenderSettings{
	renderDistance: 12, // default value
	priority:       PriorityNearby,
}

// GetRenderDistance returns the current render distance in chunks
func GetRenderDistance() int {
	globalRenderSettings.mu.RLock()
	defer globalRenderSettings.mu.RUnlock()
	return globalRenderSettings.renderDistance
}

// SetRenderDistance sets the render distance in chunks
func SetRenderDistance(distance int) {
	globalRenderSettings.mu.Lock()
	defer globalRenderSettings.mu.Unlock()

	// Clamp to reasonable values
	if distance < MinRenderDistance {
		distance = MinRenderDistance
	}
	if distance > MaxRenderDistance {
		distance = MaxRenderDistance
	}

	globalRenderSettings.renderDistance = distance
}

// GetChunkUpdatePriority returns the current synchronous rebuild policy.
func GetChunkUpdatePriority() ChunkUpdatePriority {
	globalRenderSettings.mu.RLock()
	defer globalRenderSettings.mu.RUnlock()
	return globalRenderSettings.priority
}

// SetChunkUpdatePriority sets the synchronous rebuild policy.
func SetChunkUpdatePriority(p ChunkUpdatePriority) {
	globalRenderSettings.mu.Lock()
	defer globalRenderSettings.mu.Unlock()
	globalRenderSettings.priority = p
}

// GetChunkLoadRadius returns radius for chunk loading (one column past the render distance,
// so edge sections have their horizontal neighbours)
func GetChunkLoadRadius() int {
	return GetRenderDistance() + 1
}

// GetChunkEvictRadius returns radius for chunk eviction (larger than load radius)
func GetChunkEvictRadius() int {
	return GetRenderDistance() * 2
}
