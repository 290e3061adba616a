package chunkbuild

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exports pipeline state to Prometheus. A nil *Metrics records nothing.
type Metrics struct {
	pendingTasks   prometheus.Gauge
	pendingUploads prometheus.Gauge
	freeBuffers    prometheus.Gauge
	tasks          *prometheus.CounterVec
	taskSeconds    *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them on reg when it is not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		pendingTasks: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "chunkbuild",
			Name:      "pending_tasks",
			Help:      "Tasks waiting for a free buffer pack.",
		}),
		pendingUploads: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "chunkbuild",
			Name:      "pending_uploads",
			Help:      "Uploads waiting for the render thread.",
		}),
		freeBuffers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "chunkbuild",
			Name:      "free_buffers",
			Help:      "Buffer packs not owned by a task.",
		}),
		tasks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chunkbuild",
			Name:      "tasks_total",
			Help:      "Finished tasks by kind and result.",
		}, []string{"kind", "result"}),
		taskSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "chunkbuild",
			Name:      "task_seconds",
			Help:      "Time spent running a task on a worker.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
		}, []string{"kind"}),
	}
	if reg != nil {
		reg.MustRegister(m.pendingTasks, m.pendingUploads, m.freeBuffers, m.tasks, m.taskSeconds)
	}
	return m
}

func (m *Metrics) observeTask(kind Kind, result Result, d time.Duration) {
	if m == nil {
		return
	}
	m.tasks.WithLabelValues(kind.String(), result.String()).Inc()
	m.taskSeconds.WithLabelValues(kind.String()).Observe(d.Seconds())
}

func (m *Metrics) setQueues(tasks, uploads, free int) {
	if m == nil {
		return
	}
	m.pendingTasks.Set(float64(tasks))
	m.pendingUploads.Set(float64(uploads))
	m.freeBuffers.Set(float64(free))
}
