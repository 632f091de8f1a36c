package ports

import "context"

// ProgramLoader defines how program sources are retrieved by name.
// This allows the storage layer (embedded, FS, Memory) to be decoupled.
type ProgramLoader interface {
	// Load returns the raw source text of a program.
	// Returns domain.ErrProgramNotFound if the name is unknown.
	Load(ctx context.Context, name string) (string, error)

	// List returns the names of all available programs, sorted.
	List(ctx context.Context) ([]string, error)
}
