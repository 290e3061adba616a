package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"
	"time"

	"chunkmesh/internal/block"
	"chunkmesh/internal/chunkbuild"
	"chunkmesh/internal/config"
	"chunkmesh/internal/graphics"
	"chunkmesh/internal/logging"
	"chunkmesh/internal/meshing"
	"chunkmesh/internal/profiling"
	"chunkmesh/internal/world"

	"github.com/faiface/mainthread"
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/xlab/closer"
)

const (
	winWidth  = 1280
	winHeight = 720
)

var (
	configPath     = flag.String("config", "", "pipeline config file (yaml)")
	renderDistance = flag.Int("rd", 0, "render distance in sections, 0 keeps the default")
	priority       = flag.String("priority", "", "chunk update priority: none, player_affected or nearby")
	flat           = flag.Bool("flat", false, "generate flat terrain")
	seed           = flag.Int64("seed", 1, "terrain seed")
)

func main() {
	flag.Parse()
	mainthread.Run(run)
}

func run() {
	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	log := logging.New(cfg.LogLevel, os.Stderr)
	if err := applyFlags(); err != nil {
		log.WithError(err).Fatal("invalid flags")
	}

	var window *glfw.Window
	mainthread.Call(func() {
		window, err = setupWindow()
	})
	if err != nil {
		log.WithError(err).Fatal("setup window")
	}

	v, err := newViewer(cfg, log, window)
	if err != nil {
		log.WithError(err).Fatal("setup viewer")
	}
	closer.Bind(func() {
		mainthread.Call(func() {
			v.Close()
			glfw.Terminate()
		})
	})
	defer closer.Close()

	v.Loop()
}

func applyFlags() error {
	if *renderDistance > 0 {
		config.SetRenderDistance(*renderDistance)
	}
	if *priority != "" {
		p, ok := config.ParseChunkUpdatePriority(*priority)
		if !ok {
			return errors.Errorf("unknown chunk update priority %q", *priority)
		}
		config.SetChunkUpdatePriority(p)
	}
	if *flat {
		config.SetFlat(true, config.GetFlatHeight())
	}
	return nil
}

func setupWindow() (*glfw.Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, err
	}
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)

	window, err := glfw.CreateWindow(winWidth, winHeight, "meshview", nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, err
	}
	window.MakeContextCurrent()

	// Initialize OpenGL bindings
	if err := gl.Init(); err != nil {
		return nil, err
	}

	glfw.SwapInterval(1)
	window.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)
	return window, nil
}

// viewer owns the world, the build pipeline and the GL state. Everything
// touching GL runs through mainthread.Call.
type viewer struct {
	log      logrus.FieldLogger
	window   *glfw.Window
	store    *world.ChunkStore
	streamer *world.ChunkStreamer
	sched    *chunkbuild.Scheduler
	area     *chunkbuild.ViewArea
	compiler *chunkbuild.Compiler
	renderer *graphics.SectionRenderer
	camera   *graphics.Camera
	input    *input
}

func newViewer(cfg config.Pipeline, log logrus.FieldLogger, window *glfw.Window) (*viewer, error) {
	registry := block.NewDefaultRegistry()
	store := world.NewChunkStore(registry)

	var gen world.TerrainGenerator = world.NewGenerator(*seed)
	if config.GetFlat() {
		gen = world.NewFlatGenerator(config.GetFlatHeight())
	}

	v := &viewer{
		log:      log,
		window:   window,
		store:    store,
		streamer: world.NewChunkStreamer(store, gen),
		camera:   graphics.NewCamera(winWidth, winHeight),
	}
	v.camera.Position[1] = float64(gen.HeightAt(0, 0) + 4)
	v.streamer.StreamChunksAroundSync(0, 0, 2)

	var err error
	mainthread.Call(func() {
		v.renderer, err = graphics.NewSectionRenderer()
		if err != nil {
			return
		}
		v.sched = chunkbuild.New(chunkbuild.Options{
			Config:       cfg,
			Regions:      store,
			Loader:       store,
			BlockEmitter: meshing.NewCubeEmitter(registry),
			FluidEmitter: meshing.NewFluidRenderer(registry),
			Buffers:      graphics.NewBufferFactory(),
			Logger:       log,
		})
		v.sched.SetCamera(v.camera.Position)
		v.area = chunkbuild.NewViewArea(v.sched, config.GetRenderDistance())
		v.compiler = chunkbuild.NewCompiler(v.sched)
	})
	if err != nil {
		v.streamer.Close()
		return nil, err
	}
	store.Subscribe(v.area.SetDirty)
	v.input = newInput(window, v.camera, store)
	return v, nil
}

// Loop renders frames until the window is closed.
func (v *viewer) Loop() {
	lastTime := time.Now()
	lastTitle := time.Now()
	lastEvict := time.Now()
	frames := 0

	for {
		var closing bool
		now := time.Now()
		dt := now.Sub(lastTime).Seconds()
		lastTime = now

		mainthread.Call(func() {
			closing = v.window.ShouldClose()
			if !closing {
				v.frame(dt)
			}
		})
		if closing {
			return
		}
		frames++

		pos := v.camera.Position
		if time.Since(lastEvict) > 750*time.Millisecond {
			v.streamer.EvictFarChunks(pos[0], pos[2], config.GetChunkEvictRadius())
			lastEvict = time.Now()
		}
		if time.Since(lastTitle) >= time.Second {
			title := fmt.Sprintf("meshview | %d fps | %s | %s", frames, v.sched.DebugString(), profiling.TopN(3))
			mainthread.Call(func() { v.window.SetTitle(title) })
			frames = 0
			lastTitle = time.Now()
		}
	}
}

func (v *viewer) frame(dt float64) {
	profiling.ResetFrame()
	v.input.update(dt)

	pos := v.camera.Position
	v.sched.SetCamera(pos)
	v.streamer.StreamChunksAroundAsync(pos[0], pos[2], config.GetChunkLoadRadius())
	v.area.Reposition(pos[0], pos[2])

	chunks := v.area.Chunks()
	v.compiler.CompileDirty(chunks)
	v.compiler.ResortTranslucent(chunks)
	v.sched.UploadAll()

	gl.ClearColor(0.55, 0.7, 0.9, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	v.renderer.Render(chunks, v.camera)

	func() { defer profiling.Track("glfw.SwapBuffers")(); v.window.SwapBuffers() }()
	func() { defer profiling.Track("glfw.PollEvents")(); glfw.PollEvents() }()
}

// Close stops the pipeline and frees GL objects. Must run on the main thread.
func (v *viewer) Close() {
	v.sched.Stop()
	v.streamer.Close()
	v.area.Release()
	v.renderer.Delete()
	v.log.WithField("goroutines", runtime.NumGoroutine()).Info("viewer closed")
}
