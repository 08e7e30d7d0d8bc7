package resolver

import (
	"context"
	"sync"

	"github.com/jamesainslie/vidtally/pkg/vidtally/types"
)

// Pool resolves files on a bounded number of goroutines.
type Pool struct {
	Resolver *Resolver

	// Workers is the number of concurrent resolutions. Values below 1
	// are treated as 1, which resolves strictly one file at a time.
	Workers int
}

// EmitFunc receives the result for files[i].
type EmitFunc func(i int, f types.MediaFile, r types.Result)

type outcome struct {
	index  int
	result types.Result
}

// Run resolves every file and calls emit once per file, sequentially and
// in the order of files, whatever order the resolutions complete in.
// emit is never called concurrently, so it may own unsynchronised state.
//
// If ctx is cancelled, Run stops handing out work, waits for in-flight
// probes, emits whatever prefix is complete, and returns ctx.Err().
func (p *Pool) Run(ctx context.Context, files []types.MediaFile, emit EmitFunc) error {
	workers := p.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(files) {
		workers = len(files)
	}

	if workers <= 1 {
		for i, f := range files {
			if err := ctx.Err(); err != nil {
				return err
			}
			emit(i, f, p.Resolver.Resolve(ctx, f))
		}
		return nil
	}

	jobs := make(chan int)
	results := make(chan outcome, workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results <- outcome{index: i, result: p.Resolver.Resolve(ctx, files[i])}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := range files {
			if ctx.Err() != nil {
				return
			}
			select {
			case jobs <- i:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	// Reorder buffer: hold completed results until every earlier index
	// has been emitted.
	pending := make(map[int]types.Result)
	next := 0
	for o := range results {
		pending[o.index] = o.result
		for {
			r, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			emit(next, files[next], r)
			next++
		}
	}

	if next < len(files) {
		return ctx.Err()
	}
	return nil
}
