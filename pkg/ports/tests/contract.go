package tests

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/ports"
)

// ProgramLoaderContractTest is a reusable test suite that verifies if an adapter complies with ports.ProgramLoader.
// setupData maps program names to the exact source the loader is expected to return.
// The loader may hold more programs than setupData names.
func ProgramLoaderContractTest(t *testing.T, loader ports.ProgramLoader, setupData map[string]string) {
	t.Helper()
	ctx := context.Background()

	t.Run("Load_Success", func(t *testing.T) {
		for name, expected := range setupData {
			src, err := loader.Load(ctx, name)
			if err != nil {
				t.Fatalf("unexpected error loading program %s: %v", name, err)
			}
			if src != expected {
				t.Errorf("source mismatch for %s. got %q, want %q", name, src, expected)
			}
		}
	})

	t.Run("Load_NotFound", func(t *testing.T) {
		_, err := loader.Load(ctx, "non-existent-program")
		if !errors.Is(err, domain.ErrProgramNotFound) {
			t.Errorf("expected ErrProgramNotFound, got %v", err)
		}
	})

	t.Run("List", func(t *testing.T) {
		names, err := loader.List(ctx)
		if err != nil {
			t.Fatalf("unexpected error listing programs: %v", err)
		}
		if len(names) < len(setupData) {
			t.Errorf("expected at least %d programs, got %d", len(setupData), len(names))
		}
		if !sort.StringsAreSorted(names) {
			t.Errorf("expected sorted names, got %v", names)
		}

		lookup := make(map[string]bool)
		for _, name := range names {
			lookup[name] = true
		}
		for name := range setupData {
			if !lookup[name] {
				t.Errorf("program %s missing from list", name)
			}
		}
	})
}
