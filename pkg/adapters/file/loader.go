package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/ports"
)

// ProgramExt is the file extension of rule programs on disk.
const ProgramExt = ".tm"

// Loader implements ports.ProgramLoader over a directory of .tm files.
type Loader struct {
	Dir string
}

// NewLoader creates a loader rooted at dir.
func NewLoader(dir string) *Loader {
	return &Loader{Dir: dir}
}

// Load reads <Dir>/<name>.tm. A name that already carries the extension is accepted.
func (l *Loader) Load(ctx context.Context, name string) (string, error) {
	clean := filepath.Base(strings.TrimSuffix(name, ProgramExt))
	data, err := os.ReadFile(filepath.Join(l.Dir, clean+ProgramExt))
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", domain.ErrProgramNotFound, name)
		}
		return "", fmt.Errorf("failed to read program %s: %w", name, err)
	}
	return string(data), nil
}

// List returns the program names found in Dir.
func (l *Loader) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(l.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list programs: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ProgramExt {
			names = append(names, strings.TrimSuffix(e.Name(), ProgramExt))
		}
	}
	sort.Strings(names)
	return names, nil
}

// ReadSource loads a program given either a path to a file or, when no such
// file exists, a name resolved through fallback.
func ReadSource(ctx context.Context, pathOrName string, fallback ports.ProgramLoader) (string, error) {
	if info, err := os.Stat(pathOrName); err == nil && !info.IsDir() {
		data, err := os.ReadFile(pathOrName)
		if err != nil {
			return "", fmt.Errorf("failed to read program file: %w", err)
		}
		return string(data), nil
	}
	if fallback == nil {
		return "", fmt.Errorf("%w: %s", domain.ErrProgramNotFound, pathOrName)
	}
	return fallback.Load(ctx, pathOrName)
}
