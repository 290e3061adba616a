package main

import (
	"chunkmesh/internal/block"
	"chunkmesh/internal/graphics"
	"chunkmesh/internal/world"

	"github.com/go-gl/glfw/v3.3/glfw"
)

const (
	moveSpeed        = 20.0 // blocks per second
	mouseSensitivity = 0.1
	reach            = 6.0
)

// input turns keyboard and mouse state into camera motion and block edits.
type input struct {
	window *glfw.Window
	camera *graphics.Camera
	store  *world.ChunkStore

	firstMouse   bool
	lastX, lastY float64
}

func newInput(window *glfw.Window, camera *graphics.Camera, store *world.ChunkStore) *input {
	in := &input{window: window, camera: camera, store: store, firstMouse: true}

	window.SetCursorPosCallback(func(w *glfw.Window, xpos, ypos float64) {
		if in.firstMouse {
			in.lastX, in.lastY = xpos, ypos
			in.firstMouse = false
			return
		}
		in.camera.Look((xpos-in.lastX)*mouseSensitivity, (in.lastY-ypos)*mouseSensitivity)
		in.lastX, in.lastY = xpos, ypos
	})

	window.SetMouseButtonCallback(func(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		if action != glfw.Press {
			return
		}
		switch button {
		case glfw.MouseButtonLeft:
			in.edit(block.Air)
		case glfw.MouseButtonRight:
			in.edit(block.StainedGlass)
		}
	})

	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press {
			w.SetShouldClose(true)
		}
	})
	return in
}

func (in *input) update(dt float64) {
	pressed := func(k glfw.Key) float64 {
		if in.window.GetKey(k) == glfw.Press {
			return 1
		}
		return 0
	}
	step := moveSpeed * dt
	forward := pressed(glfw.KeyW) - pressed(glfw.KeyS)
	right := pressed(glfw.KeyD) - pressed(glfw.KeyA)
	up := pressed(glfw.KeySpace) - pressed(glfw.KeyLeftShift)
	if forward != 0 || right != 0 || up != 0 {
		in.camera.Move(forward*step, right*step, up*step)
	}
}

// edit replaces the block the camera looks at, or places id next to it.
// Edits are marked as player changes so the affected sections rebuild
// synchronously.
func (in *input) edit(id block.ID) {
	res := world.Raycast(in.camera.Position, in.camera.Front(), 0.1, reach, in.store)
	if !res.Hit {
		return
	}
	if id == block.Air {
		in.store.Set(res.Pos, block.Air, true)
		return
	}
	if res.Adjacent != res.Pos {
		in.store.Set(res.Adjacent, id, true)
	}
}
