package chunkbuild

import (
	"context"
	"sync"

	"chunkmesh/internal/meshing"
)

// job pairs a task with the buffer pack it owns while it runs.
type job struct {
	task Task
	pack *meshing.BufferPack
}

// workerPool manages the goroutines that execute task bodies.
type workerPool struct {
	jobQueue chan job
	workers  int
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	run      func(ctx context.Context, j job)
}

// newWorkerPool starts workers goroutines. The queue holds one job per
// worker; the actor never has more jobs in flight than packs, and there is
// one worker per pack.
func newWorkerPool(parent context.Context, workers int, run func(ctx context.Context, j job)) *workerPool {
	ctx, cancel := context.WithCancel(parent)

	pool := &workerPool{
		jobQueue: make(chan job, workers),
		workers:  workers,
		ctx:      ctx,
		cancel:   cancel,
		run:      run,
	}

	for i := 0; i < workers; i++ {
		pool.wg.Add(1)
		go pool.worker(i)
	}

	return pool
}

// submit hands a job to an idle worker. Returns false once the pool is shut down.
func (p *workerPool) submit(j job) bool {
	select {
	case <-p.ctx.Done():
		return false
	default:
	}
	select {
	case p.jobQueue <- j:
		return true
	case <-p.ctx.Done():
		return false
	}
}

func (p *workerPool) worker(id int) {
	defer p.wg.Done()

	for {
		// shutdown wins over queued jobs
		select {
		case <-p.ctx.Done():
			return
		default:
		}
		select {
		case j := <-p.jobQueue:
			p.run(p.ctx, j)
		case <-p.ctx.Done():
			return
		}
	}
}

// shutdown stops the workers and waits for running jobs to return. Jobs
// no worker picked up are cancelled and marked done.
func (p *workerPool) shutdown() {
	p.cancel()
	p.wg.Wait()
	for {
		select {
		case j := <-p.jobQueue:
			j.task.Cancel()
			j.task.base().done.Store(true)
			j.pack.ResetAll()
		default:
			return
		}
	}
}

// queued returns the number of jobs not yet picked up by a worker.
func (p *workerPool) queued() int {
	return len(p.jobQueue)
}
