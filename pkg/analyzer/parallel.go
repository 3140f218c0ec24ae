package analyzer

import (
	"context"
	"runtime"
	"sync"

	"github.com/simonhull/firebird-suite/magpie/pkg/logger"
)

// parseResult holds the result of parsing one file
type parseResult struct {
	index  int
	record *FileRecord
	err    error
}

// fileJob represents a file to be parsed
type fileJob struct {
	index int
	key   string
}

// AnalyzeParallel analyzes a project using parallel workers. The result is
// identical to AnalyzeWithContext. numWorkers <= 0 means one per CPU.
func (a *Analyzer) AnalyzeParallel(ctx context.Context, rootPath string, numWorkers int) (*Project, error) {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}

	a.logger.Info("Starting parallel project analysis",
		logger.F("path", rootPath),
		logger.F("workers", numWorkers))

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	keys, err := a.discover(rootPath)
	if err != nil {
		return nil, err
	}

	jobs := make(chan fileJob, len(keys))
	results := make(chan parseResult, len(keys))
	var wg sync.WaitGroup

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go a.parseWorker(ctx, rootPath, jobs, results, &wg)
	}

	go func() {
		defer close(jobs)
		for i, key := range keys {
			select {
			case <-ctx.Done():
				return
			case jobs <- fileJob{index: i, key: key}:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	// Results arrive out of order; slot them back by discovery index.
	records := make([]*FileRecord, len(keys))
	var firstErr error
	for result := range results {
		if result.err != nil {
			if firstErr == nil {
				firstErr = result.err
			}
			continue
		}
		records[result.index] = result.record
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	if firstErr != nil {
		return nil, firstErr
	}

	proj := &Project{
		RootPath: rootPath,
		Files:    records,
	}
	for _, record := range records {
		if !record.Parsed {
			proj.Skipped++
		}
	}

	a.logger.Info("Parallel project analysis complete",
		logger.F("files", len(proj.Files)),
		logger.F("skipped", proj.Skipped),
		logger.F("workers", numWorkers))

	return proj, nil
}

// parseWorker is a worker that processes file parsing jobs
func (a *Analyzer) parseWorker(ctx context.Context, rootPath string, jobs <-chan fileJob, results chan<- parseResult, wg *sync.WaitGroup) {
	defer wg.Done()

	for job := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		record, err := a.parseFile(ctx, rootPath, job.key)
		results <- parseResult{index: job.index, record: record, err: err}
	}
}
