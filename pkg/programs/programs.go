// Package programs ships rule programs embedded in the binary and exposes
// them through a ports.ProgramLoader.
package programs

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/aretw0/turing/pkg/domain"
)

// Extension is the file suffix of rule programs.
const Extension = ".tm"

const (
	// Multiply multiplies two binary numbers laid out as B..B num1 # num2 $ B..B.
	Multiply = "multiply"
	// BusyBeaver2 is the two-state busy beaver.
	BusyBeaver2 = "busybeaver2"
)

//go:embed *.tm
var embedded embed.FS

// Registry implements ports.ProgramLoader over the embedded programs.
type Registry struct {
	fsys fs.FS
}

// NewRegistry returns a loader for the shipped programs.
func NewRegistry() *Registry {
	return &Registry{fsys: embedded}
}

// Load returns the source of a shipped program.
func (r *Registry) Load(ctx context.Context, name string) (string, error) {
	data, err := fs.ReadFile(r.fsys, strings.TrimSuffix(name, Extension)+Extension)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", domain.ErrProgramNotFound, name)
		}
		return "", fmt.Errorf("failed to read program %s: %w", name, err)
	}
	return string(data), nil
}

// List returns the names of the shipped programs.
func (r *Registry) List(ctx context.Context) ([]string, error) {
	entries, err := fs.ReadDir(r.fsys, ".")
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != Extension {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), Extension))
	}
	sort.Strings(names)
	return names, nil
}

// MustSource returns a shipped program's source and panics if it is missing.
func MustSource(name string) string {
	src, err := NewRegistry().Load(context.Background(), name)
	if err != nil {
		panic(err)
	}
	return src
}
