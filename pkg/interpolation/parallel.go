package interpolation

import (
	"runtime"
	"sync"
)

// minParallelItems is the work size below which spawning goroutines costs more
// than it saves.
const minParallelItems = 1024

// resolveCores maps a non-positive core count to every available CPU.
func resolveCores(numCores int) int {
	if numCores <= 0 {
		return runtime.NumCPU()
	}
	return numCores
}

// parallelFor splits [0, n) into contiguous chunks, one per worker, and calls
// fn on each chunk. It returns once every chunk has been processed. fn must
// only write to indices inside its own chunk.
func parallelFor(n, numCores int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	numCores = resolveCores(numCores)
	if numCores == 1 || n < minParallelItems {
		fn(0, n)
		return
	}

	perWorker := (n + numCores - 1) / numCores

	var wg sync.WaitGroup
	for i := 0; i < numCores; i++ {
		startIdx := i * perWorker
		if startIdx >= n {
			break
		}
		endIdx := min(startIdx+perWorker, n)

		wg.Add(1)
		go func(startIdx, endIdx int) {
			defer wg.Done()
			fn(startIdx, endIdx)
		}(startIdx, endIdx)
	}
	wg.Wait()
}
