package renderer

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/df07/go-particle-renderer/pkg/integrator"
)

// TileTask represents a tile rendering task for the worker pool
type TileTask struct {
	Tile    *Tile
	Frame   *integrator.Frame
	Samples int                 // Samples per pixel in this batch
	TaskID  int                 // Index of the tile in the batch
	Buffer  *AccumulationBuffer // Shared buffer; tiles write disjoint pixels
}

// TileResult contains the result from rendering a tile
type TileResult struct {
	TaskID  int
	Samples int // Pixel samples traced
	Error   error
}

// WorkerPool manages parallel tile rendering
type WorkerPool struct {
	taskQueue   chan TileTask
	resultQueue chan TileResult
	workers     []*Worker
	numWorkers  int
	wg          sync.WaitGroup
	startOnce   sync.Once
	stopOnce    sync.Once
}

// Worker handles individual tile rendering tasks
type Worker struct {
	ID          int
	renderer    *TileRenderer
	taskQueue   chan TileTask
	resultQueue chan TileResult
}

// NewWorkerPool creates a worker pool sized for numTiles tasks per batch
func NewWorkerPool(tracer *integrator.PathTracer, numTiles, numWorkers int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}

	wp := &WorkerPool{
		taskQueue:   make(chan TileTask, numTiles),   // Buffer for all tiles of a batch
		resultQueue: make(chan TileResult, numTiles), // Buffer for all results of a batch
		numWorkers:  numWorkers,
	}

	for i := 0; i < numWorkers; i++ {
		wp.workers = append(wp.workers, &Worker{
			ID:          i,
			renderer:    NewTileRenderer(tracer),
			taskQueue:   wp.taskQueue,
			resultQueue: wp.resultQueue,
		})
	}

	return wp
}

// Start begins all workers
func (wp *WorkerPool) Start() {
	wp.startOnce.Do(func() {
		for _, worker := range wp.workers {
			wp.wg.Add(1)
			go worker.run(&wp.wg)
		}
	})
}

// Stop gracefully shuts down all workers
func (wp *WorkerPool) Stop() {
	wp.stopOnce.Do(func() {
		close(wp.taskQueue) // No more tasks
		wp.wg.Wait()        // Wait for workers to finish
		close(wp.resultQueue)
	})
}

// SubmitTask submits a tile task to the worker pool
func (wp *WorkerPool) SubmitTask(task TileTask) {
	wp.taskQueue <- task
}

// GetResult retrieves a completed tile result
func (wp *WorkerPool) GetResult() (TileResult, bool) {
	result, ok := <-wp.resultQueue
	return result, ok
}

// GetNumWorkers returns the number of workers in the pool
func (wp *WorkerPool) GetNumWorkers() int {
	return wp.numWorkers
}

// run is the main worker loop
func (w *Worker) run(wg *sync.WaitGroup) {
	defer wg.Done()

	for task := range w.taskQueue {
		w.resultQueue <- w.render(task)
	}
}

// render traces one task, turning a panic into an error result so the batch can finish
func (w *Worker) render(task TileTask) (result TileResult) {
	result.TaskID = task.TaskID
	defer func() {
		if r := recover(); r != nil {
			result.Error = fmt.Errorf("worker %d: tile %d: %v", w.ID, task.Tile.ID, r)
		}
	}()

	result.Samples = w.renderer.RenderTile(task.Frame, task.Tile, task.Samples, task.Buffer)
	return result
}
