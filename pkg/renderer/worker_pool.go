package renderer

import (
	"context"
	"runtime"
	"sync"

	"github.com/df07/go-weekend-raytracer/pkg/core"
)

// RowTask represents a scanline rendering task for the worker pool
type RowTask struct {
	Y int
}

// RowResult contains the accumulated colors of one scanline
type RowResult struct {
	Y      int
	Pixels []core.Vec3
}

// WorkerPool manages parallel scanline rendering
type WorkerPool struct {
	taskQueue   chan RowTask
	resultQueue chan RowResult
	workers     []*Worker
	numWorkers  int
	wg          sync.WaitGroup
}

// Worker handles individual scanline rendering tasks
type Worker struct {
	ID          int
	ctx         context.Context
	raytracer   *Raytracer
	taskQueue   chan RowTask
	resultQueue chan RowResult
}

// NewWorkerPool creates a worker pool with the specified number of workers.
// Both queues hold maxTasks entries so submitting and reporting never block.
func NewWorkerPool(ctx context.Context, raytracer *Raytracer, numWorkers, maxTasks int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}

	wp := &WorkerPool{
		taskQueue:   make(chan RowTask, maxTasks),
		resultQueue: make(chan RowResult, maxTasks),
		numWorkers:  numWorkers,
	}

	for i := 0; i < numWorkers; i++ {
		worker := &Worker{
			ID:          i,
			ctx:         ctx,
			raytracer:   raytracer,
			taskQueue:   wp.taskQueue,
			resultQueue: wp.resultQueue,
		}
		wp.workers = append(wp.workers, worker)
	}

	return wp
}

// Start begins all workers
func (wp *WorkerPool) Start() {
	for _, worker := range wp.workers {
		wp.wg.Add(1)
		go worker.run(&wp.wg)
	}
}

// Stop shuts down all workers and waits for them to exit
func (wp *WorkerPool) Stop() {
	close(wp.taskQueue) // No more tasks
	wp.wg.Wait()        // Wait for workers to finish
	close(wp.resultQueue)
}

// SubmitTask submits a row task to the worker pool
func (wp *WorkerPool) SubmitTask(task RowTask) {
	wp.taskQueue <- task
}

// Results returns the channel completed rows arrive on
func (wp *WorkerPool) Results() <-chan RowResult {
	return wp.resultQueue
}

// GetNumWorkers returns the number of workers in the pool
func (wp *WorkerPool) GetNumWorkers() int {
	return wp.numWorkers
}

// run is the main worker loop
func (w *Worker) run(wg *sync.WaitGroup) {
	defer wg.Done()

	for task := range w.taskQueue {
		// Abandoned renders leave the remaining tasks unprocessed
		if w.ctx.Err() != nil {
			return
		}

		w.resultQueue <- RowResult{
			Y:      task.Y,
			Pixels: w.raytracer.RenderRow(task.Y),
		}
	}
}
