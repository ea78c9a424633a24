package verify

import (
	"context"
	"sync"
)

const defaultWorkers = 4

// workerPool fans URL checks out over a bounded set of workers. Fetches are
// independent of each other, so the only synchronization point is the
// results channel the caller drains.
type workerPool struct {
	tasks      chan string
	results    chan *Verdict
	wg         sync.WaitGroup
	numWorkers int
	process    func(ctx context.Context, url string) *Verdict
}

// newWorkerPool builds a pool running process on each submitted URL.
// process may return nil to drop a URL from the output.
func newWorkerPool(numWorkers int, process func(ctx context.Context, url string) *Verdict) *workerPool {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}

	return &workerPool{
		numWorkers: numWorkers,
		tasks:      make(chan string, numWorkers*2),
		results:    make(chan *Verdict, numWorkers*2),
		process:    process,
	}
}

// Start launches the workers. They exit when the task channel closes or the
// context is canceled; every completed verdict is self-contained, so partial
// result sets after cancellation remain valid.
func (wp *workerPool) Start(ctx context.Context) {
	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(ctx)
	}
}

func (wp *workerPool) worker(ctx context.Context) {
	defer wp.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case url, ok := <-wp.tasks:
			if !ok {
				return
			}
			if verdict := wp.process(ctx, url); verdict != nil {
				select {
				case wp.results <- verdict:
				case <-ctx.Done():
					return
				}
			}
		}
	}
}

// Submit queues one URL unless the context is already canceled.
func (wp *workerPool) Submit(ctx context.Context, url string) {
	select {
	case wp.tasks <- url:
	case <-ctx.Done():
	}
}

// Close signals that no more URLs are coming and, once the workers drain,
// closes the results channel.
func (wp *workerPool) Close() {
	close(wp.tasks)
	go func() {
		wp.wg.Wait()
		close(wp.results)
	}()
}

// Results returns the channel verdicts arrive on.
func (wp *workerPool) Results() <-chan *Verdict {
	return wp.results
}
