package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/turing/pkg/domain"
)

// Loader implements ports.ProgramLoader using an in-memory map.
// Safe for concurrent use.
type Loader struct {
	mu       sync.RWMutex
	programs map[string]string
}

// NewLoader creates a new Loader with the provided program sources keyed by name.
func NewLoader(data map[string]string) *Loader {
	programs := make(map[string]string, len(data))
	for k, v := range data {
		programs[k] = v
	}
	return &Loader{
		programs: programs,
	}
}

// Add registers (or replaces) a program source.
func (l *Loader) Add(name, source string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.programs[name] = source
}

// Load retrieves the source of a program by name.
func (l *Loader) Load(ctx context.Context, name string) (string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	source, ok := l.programs[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", domain.ErrProgramNotFound, name)
	}
	return source, nil
}

// List returns all available program names.
func (l *Loader) List(ctx context.Context) ([]string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	keys := make([]string, 0, len(l.programs))
	for k := range l.programs {
		keys = append(keys, k)
	}
	sort.Strings(keys) // Deterministic order
	return keys, nil
}
