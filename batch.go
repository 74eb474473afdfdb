package tlunit

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// BatchResult is the outcome for one file of a batch.
type BatchResult struct {
	Path   string
	Result *Result
	Err    error
}

// FileFunc processes a single file.
type FileFunc func(ctx context.Context, path string) (*Result, error)

// RunBatch runs fn over paths with at most workers in flight. A failing file
// is recorded in its BatchResult and never stops the others. Duplicate paths
// are processed once, so no file is ever handled by two workers at the same
// time. Results are returned in input order.
func RunBatch(ctx context.Context, paths []string, workers int, fn FileFunc, logger zerolog.Logger) []BatchResult {
	if workers < 1 {
		workers = 1
	}

	seen := make(map[string]bool, len(paths))
	unique := make([]string, 0, len(paths))
	for _, p := range paths {
		if !seen[p] {
			seen[p] = true
			unique = append(unique, p)
		}
	}

	results := make([]BatchResult, len(unique))
	jobs := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for idx := range jobs {
				path := unique[idx]
				res, err := fn(ctx, path)
				results[idx] = BatchResult{Path: path, Result: res, Err: err}
				if err != nil {
					logger.Error().Err(err).Str("file", path).Int("worker", worker).Msg("file skipped")
					continue
				}
				logger.Info().
					Str("file", path).
					Int("segments", res.TotalSegments).
					Int("cached", res.CachedCount).
					Int("translated", res.TranslatedCount).
					Msg("file localized")
			}
		}(w)
	}

feed:
	for i := range unique {
		select {
		case <-ctx.Done():
			for j := i; j < len(unique); j++ {
				results[j] = BatchResult{Path: unique[j], Err: ctx.Err()}
			}
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	return results
}

// ProcessFiles localizes every file with ProcessFile.
func (l *Localizer) ProcessFiles(ctx context.Context, paths []string, workers int) []BatchResult {
	return RunBatch(ctx, paths, workers, l.ProcessFile, l.logger)
}

// Failed returns the results that carry an error.
func Failed(results []BatchResult) []BatchResult {
	var out []BatchResult
	for _, r := range results {
		if r.Err != nil {
			out = append(out, r)
		}
	}
	return out
}
