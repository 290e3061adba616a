// Command meshbench builds the sections around a moving camera without a
// window and reports throughput. Prometheus metrics are served while it runs.
package main

import (
	"flag"
	"net/http"
	"os"
	"sync"
	"time"

	"chunkmesh/internal/block"
	"chunkmesh/internal/chunkbuild"
	"chunkmesh/internal/config"
	"chunkmesh/internal/logging"
	"chunkmesh/internal/meshing"
	"chunkmesh/internal/profiling"
	"chunkmesh/internal/world"

	"github.com/dustin/go-humanize"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/xlab/closer"
)

var (
	configPath     = flag.String("config", "", "pipeline config file (yaml)")
	renderDistance = flag.Int("rd", 8, "render distance in sections")
	steps          = flag.Int("steps", 16, "camera steps along +X")
	stepSize       = flag.Float64("step", 8, "blocks per camera step")
	flat           = flag.Bool("flat", false, "generate flat terrain")
	seed           = flag.Int64("seed", 1, "terrain seed")
	serveMetrics   = flag.Bool("metrics", false, "serve prometheus metrics on the configured address")
)

const settleTimeout = 30 * time.Second

// uploadCounter is a BufferFactory that only counts what would be uploaded.
type uploadCounter struct {
	mu       sync.Mutex
	uploads  int
	vertices int
	bytes    uint64
}

type countingBuffer struct {
	c *uploadCounter
}

func (b countingBuffer) Upload(buf *meshing.RenderedBuffer) error {
	b.c.mu.Lock()
	defer b.c.mu.Unlock()
	b.c.uploads++
	b.c.vertices += buf.VertexCount
	b.c.bytes += uint64(buf.VertexCount * meshing.VertexBytes)
	return nil
}

func (countingBuffer) Close() {}

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	log := logging.New(cfg.LogLevel, os.Stderr)
	config.SetRenderDistance(*renderDistance)
	config.SetChunkUpdatePriority(config.PriorityNone)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	metrics := chunkbuild.NewMetrics(reg)
	if *serveMetrics && cfg.MetricsAddr != "" {
		go serve(log, cfg.MetricsAddr, reg)
	}

	registry := block.NewDefaultRegistry()
	store := world.NewChunkStore(registry)
	var gen world.TerrainGenerator = world.NewGenerator(*seed)
	if *flat {
		gen = world.NewFlatGenerator(config.GetFlatHeight())
	}
	streamer := world.NewChunkStreamer(store, gen)

	counter := &uploadCounter{}
	sched := chunkbuild.New(chunkbuild.Options{
		Config:       cfg,
		Regions:      store,
		Loader:       store,
		BlockEmitter: meshing.NewCubeEmitter(registry),
		FluidEmitter: meshing.NewFluidRenderer(registry),
		Buffers: chunkbuild.BufferFactoryFunc(func(block.Layer) chunkbuild.VertexBuffer {
			return countingBuffer{c: counter}
		}),
		Logger:  log,
		Metrics: metrics,
	})
	closer.Bind(func() {
		sched.Stop()
		streamer.Close()
	})
	defer closer.Close()

	area := chunkbuild.NewViewArea(sched, config.GetRenderDistance())
	store.Subscribe(area.SetDirty)
	compiler := chunkbuild.NewCompiler(sched)

	start := time.Now()
	cam := mgl64.Vec3{8, float64(gen.HeightAt(8, 8) + 2), 8}
	var sorts int
	for i := 0; i <= *steps; i++ {
		// one extra ring so edge sections have all their neighbours
		streamer.StreamChunksAroundSync(cam[0], cam[2], config.GetChunkLoadRadius()+1)
		sched.SetCamera(cam)
		area.Reposition(cam[0], cam[2])
		settle(log, sched, compiler, area)
		sorts += compiler.ResortTranslucent(area.Chunks())
		settle(log, sched, compiler, area)

		log.WithFields(logrus.Fields{
			"step":    i,
			"camera":  cam,
			"uploads": counter.uploads,
		}).Debug(sched.DebugString())
		cam = cam.Add(mgl64.Vec3{*stepSize, 0, 0})
		streamer.EvictFarChunks(cam[0], cam[2], config.GetChunkEvictRadius())
	}
	elapsed := time.Since(start)

	counter.mu.Lock()
	log.WithFields(logrus.Fields{
		"elapsed":  elapsed.Round(time.Millisecond),
		"uploads":  humanize.Comma(int64(counter.uploads)),
		"vertices": humanize.Comma(int64(counter.vertices)),
		"bytes":    humanize.IBytes(counter.bytes),
		"sorts":    sorts,
		"rebuilds": profiling.Count("chunkbuild.rebuild"),
	}).Info("benchmark finished")
	counter.mu.Unlock()
}

// settle compiles dirty sections and pumps uploads until the pipeline is idle.
func settle(log logrus.FieldLogger, sched *chunkbuild.Scheduler, compiler *chunkbuild.Compiler, area *chunkbuild.ViewArea) {
	deadline := time.Now().Add(settleTimeout)
	for {
		if time.Now().After(deadline) {
			log.Warnf("pipeline not idle after %s: %s", settleTimeout, sched.DebugString())
			return
		}
		async, sync := compiler.CompileDirty(area.Chunks())
		ran := sched.UploadAll()
		st := sched.Stats()
		if async == 0 && sync == 0 && !ran && sched.IsQueueEmpty() && st.FreeBuffers == st.TotalBuffers {
			return
		}
		time.Sleep(time.Millisecond)
	}
}

func serve(log logrus.FieldLogger, addr string, reg *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	log.WithField("addr", addr).Info("serving metrics")
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.WithError(err).Error("metrics server stopped")
	}
}
