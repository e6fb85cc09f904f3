package simulator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"diagnostics-recorder/engine/internal/logger"
)

// Runner drives a set of sources, each on its own goroutine
type Runner struct {
	sources  []Source
	interval time.Duration
	rec      *logger.Recorder
}

// NewRunner creates the named sources. An empty names list uses every
// registered source.
func NewRunner(rec *logger.Recorder, names []string, interval time.Duration) (*Runner, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("interval must be positive, got %s", interval)
	}
	if len(names) == 0 {
		names = Available()
	}

	r := &Runner{interval: interval, rec: rec}
	for _, name := range names {
		src, err := Create(name, rec)
		if err != nil {
			return nil, err
		}
		r.sources = append(r.sources, src)
	}
	return r, nil
}

// Sources returns the names of the sources being driven
func (r *Runner) Sources() []string {
	names := make([]string, len(r.sources))
	for i, s := range r.sources {
		names[i] = s.Name()
	}
	return names
}

// Run steps every source once per interval until ctx is done
func (r *Runner) Run(ctx context.Context) error {
	r.rec.Infof(logger.CategoryUtils, "simulator started with %d sources", len(r.sources))

	var wg sync.WaitGroup
	for _, src := range r.sources {
		wg.Add(1)
		go func(src Source) {
			defer wg.Done()
			ticker := time.NewTicker(r.interval)
			defer ticker.Stop()

			for tick := 0; ; tick++ {
				src.Step(tick)
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
				}
			}
		}(src)
	}
	wg.Wait()

	r.rec.Info(logger.CategoryUtils, "simulator stopped")
	return nil
}

// StepAll runs ticks steps of every source concurrently, without waiting
// between steps, and returns when all sources are done.
func (r *Runner) StepAll(ticks int) {
	var wg sync.WaitGroup
	for _, src := range r.sources {
		wg.Add(1)
		go func(src Source) {
			defer wg.Done()
			for tick := 0; tick < ticks; tick++ {
				src.Step(tick)
			}
		}(src)
	}
	wg.Wait()
}
