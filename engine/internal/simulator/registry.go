package simulator

import (
	"fmt"
	"sort"
	"sync"

	"diagnostics-recorder/engine/internal/logger"
)

// Source is a simulated subsystem that writes to the recorder once per tick
type Source interface {
	Name() string
	Category() logger.Category
	Step(tick int)
}

type registry struct {
	mu      sync.RWMutex
	sources map[string]func(*logger.Recorder) Source
}

var globalRegistry = &registry{
	sources: make(map[string]func(*logger.Recorder) Source),
}

// Register adds a source factory to the global registry
func Register(name string, factory func(*logger.Recorder) Source) {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()
	globalRegistry.sources[name] = factory
}

// Available returns the registered source names, sorted
func Available() []string {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	names := make([]string, 0, len(globalRegistry.sources))
	for name := range globalRegistry.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Create instantiates a source by name
func Create(name string, rec *logger.Recorder) (Source, error) {
	globalRegistry.mu.RLock()
	factory, exists := globalRegistry.sources[name]
	globalRegistry.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("source not found: %s", name)
	}
	return factory(rec), nil
}
