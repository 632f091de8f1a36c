package programs

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/ports"
)

// Chain consults several loaders in order. The first loader that knows a
// name wins, so user directories can shadow shipped programs.
type Chain []ports.ProgramLoader

// Load returns the source from the first loader that has name.
func (c Chain) Load(ctx context.Context, name string) (string, error) {
	for _, l := range c {
		src, err := l.Load(ctx, name)
		if err == nil {
			return src, nil
		}
		if !errors.Is(err, domain.ErrProgramNotFound) {
			return "", err
		}
	}
	return "", fmt.Errorf("%w: %s", domain.ErrProgramNotFound, name)
}

// List merges the names of every loader.
func (c Chain) List(ctx context.Context) ([]string, error) {
	seen := map[string]struct{}{}
	names := []string{}
	for _, l := range c {
		list, err := l.List(ctx)
		if err != nil {
			return nil, err
		}
		for _, n := range list {
			if _, ok := seen[n]; !ok {
				seen[n] = struct{}{}
				names = append(names, n)
			}
		}
	}
	sort.Strings(names)
	return names, nil
}
