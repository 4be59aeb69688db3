package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"dupescan/config"
	"dupescan/hasher"
	"dupescan/ledger"
	"dupescan/logger"
	"dupescan/utils"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/time/rate"
)

// ErrRootNotFound marks a scan invoked on a nonexistent root. It is the
// pipeline's only fatal precondition.
var ErrRootNotFound = errors.New("scan root does not exist")

// Stats summarizes one scan run.
type Stats struct {
	StartTime    time.Time
	EndTime      time.Time
	FilesMatched int64
	FilesHashed  int64
	FilesSkipped int64
	Batches      int
}

type fileTask struct {
	path string
}

// ValidateRoot checks the scan precondition without touching anything
// else, so callers can refuse to create output files for a bad root.
func ValidateRoot(path string) error {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrRootNotFound, path)
	}
	return nil
}

// ScanFiles walks cfg.Path, hashes every file matching the name filter
// and not under an excluded folder, and appends one ledger row per
// successfully hashed file. Per-file failures are contained; only a
// missing root aborts the run.
func ScanFiles(ctx context.Context, cfg *config.Config, lw *ledger.Writer) (*Stats, error) {
	if err := ValidateRoot(cfg.Path); err != nil {
		return nil, err
	}
	root, err := filepath.Abs(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("could not resolve scan root %s: %v", cfg.Path, err)
	}

	stats := &Stats{StartTime: time.Now()}
	excludes := utils.NormalizeExcludes(cfg.ExcludedFolders)
	matcher := utils.NewNameMatcher(cfg.Filter)
	adjustConcurrency(cfg)

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription("Hashing files"),
		progressbar.OptionShowCount(),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetVisibility(progressVisible()),
		progressbar.OptionFullWidth(),
	)

	var ioLimiter *rate.Limiter
	if cfg.MaxIOPerSecond > 0 {
		ioLimiter = rate.NewLimiter(rate.Limit(cfg.MaxIOPerSecond), cfg.MaxIOPerSecond)
	}

	filesChan := make(chan fileTask, cfg.ConcurrencyLevel*2)

	go func() {
		defer close(filesChan)
		w := stackWalker{}
		err := w.Walk(ctx, root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				logger.Warnf("Failed to access %s: %v", path, err)
				return nil
			}
			if d == nil || d.IsDir() {
				return nil
			}
			if !matcher.Match(path) {
				return nil
			}
			if utils.IsExcluded(filepath.Dir(path), excludes) {
				return nil
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case filesChan <- fileTask{path: path}:
				if ioLimiter != nil {
					if err := ioLimiter.Wait(ctx); err != nil {
						return err
					}
				}
			}
			return nil
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Warnf("Error walking path %s: %v", root, err)
		}
	}()

	// Fixed-size batches bound memory and give periodic progress; the
	// chunk boundaries have no effect on ledger content.
	batch := make([]fileTask, 0, cfg.BatchSize)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		processBatch(ctx, batch, cfg, lw, bar, stats)
		stats.Batches++
		logger.Infof("Batch %d done: %d files hashed, %d skipped", stats.Batches, stats.FilesHashed, stats.FilesSkipped)
		batch = batch[:0]
	}
	for task := range filesChan {
		stats.FilesMatched++
		batch = append(batch, task)
		if len(batch) == cfg.BatchSize {
			flush()
		}
	}
	flush()

	_ = bar.Finish()
	stats.EndTime = time.Now()
	return stats, nil
}

// processBatch hashes one batch through a bounded worker pool. Ledger
// appends stream out file by file; a failed hash is a logged skip.
func processBatch(ctx context.Context, batch []fileTask, cfg *config.Config, lw *ledger.Writer, bar *progressbar.ProgressBar, stats *Stats) {
	workers := cfg.ConcurrencyLevel
	if workers > len(batch) {
		workers = len(batch)
	}

	jobs := make(chan string, len(batch))
	var hashed, skipped atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}
				sum, err := hasher.HashFile(ctx, path)
				switch {
				case errors.Is(err, hasher.ErrFileVanished):
					logger.Debugf("File vanished before hashing: %s", path)
					skipped.Add(1)
				case err != nil:
					logger.Warnf("Skipping %s: %v", path, err)
					skipped.Add(1)
				default:
					if err := lw.Append(sum, path); err != nil {
						logger.Warnf("Failed to record %s: %v", path, err)
						skipped.Add(1)
					} else {
						hashed.Add(1)
					}
				}
				_ = bar.Add(1)
			}
		}()
	}

	for _, task := range batch {
		jobs <- task.path
	}
	close(jobs)
	wg.Wait()

	stats.FilesHashed += hashed.Load()
	stats.FilesSkipped += skipped.Load()
}

func adjustConcurrency(cfg *config.Config) {
	if cfg.ConcurrencySet {
		return
	}
	numCPU := runtime.NumCPU()
	switch cfg.NiceLevel {
	case "high":
		cfg.ConcurrencyLevel = numCPU
	case "medium":
		cfg.ConcurrencyLevel = numCPU / 2
		if cfg.ConcurrencyLevel < 1 {
			cfg.ConcurrencyLevel = 1
		}
	case "low":
		cfg.ConcurrencyLevel = 1
	}
}

func progressVisible() bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv("DUPESCAN_DISABLE_PROGRESS")))
	return value != "1" && value != "true" && value != "yes" && value != "on"
}
