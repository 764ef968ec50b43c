package inspect

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/Faultbox/rose-io/internal/logger"
)

// Inspector decodes many files concurrently.
type Inspector struct {
	Workers int

	// OnReport, when set, is called from worker goroutines as each file
	// finishes. It must be safe for concurrent use.
	OnReport func(*Report)
}

// Run inspects paths with a pool of workers and returns reports in the same
// order as paths. Files not started before ctx is cancelled get no report
// (nil entry) and Run returns ctx.Err().
func (in *Inspector) Run(ctx context.Context, paths []string) ([]*Report, error) {
	workers := in.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(paths) {
		workers = len(paths)
	}

	reports := make([]*Report, len(paths))
	var failed atomic.Int64

	jobs := make(chan int, workers*2)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				r := InspectFile(paths[idx])
				if !r.OK() {
					failed.Add(1)
				}
				reports[idx] = r
				if in.OnReport != nil {
					in.OnReport(r)
				}
			}
		}()
	}

send:
	for i := range paths {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break send
		}
	}
	close(jobs)
	wg.Wait()

	logger.Info("inspection finished",
		zap.Int("files", len(paths)),
		zap.Int64("failed", failed.Load()),
		zap.Int("workers", workers))

	return reports, ctx.Err()
}

// Failed returns the reports that carry an error.
func Failed(reports []*Report) []*Report {
	var out []*Report
	for _, r := range reports {
		if r != nil && !r.OK() {
			out = append(out, r)
		}
	}
	return out
}
