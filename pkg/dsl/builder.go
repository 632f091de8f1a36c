package dsl

import (
	"fmt"
	"strings"

	"github.com/aretw0/turing/internal/compiler"
	"github.com/aretw0/turing/pkg/adapters/memory"
	"github.com/aretw0/turing/pkg/domain"
)

// Builder manages the program construction.
type Builder struct {
	states []*StateBuilder
	index  map[string]*StateBuilder
}

// New creates a new program builder.
func New() *Builder {
	return &Builder{
		index: make(map[string]*StateBuilder),
	}
}

// State declares a state, or returns the existing builder if it was already declared.
// Declaration order decides rule order in the rendered source.
func (b *Builder) State(name string) *StateBuilder {
	if sb, ok := b.index[name]; ok {
		return sb
	}
	sb := &StateBuilder{name: name}
	b.states = append(b.states, sb)
	b.index[name] = sb
	return sb
}

// Source renders the program text, one rule per line.
func (b *Builder) Source() string {
	var sb strings.Builder
	for _, s := range b.states {
		for _, r := range s.rules {
			sb.WriteString(r.String())
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// Build compiles the rendered source into a Program.
func (b *Builder) Build() (*domain.Program, error) {
	prog, err := compiler.Compile(b.Source())
	if err != nil {
		return nil, fmt.Errorf("failed to build program: %w", err)
	}
	return prog, nil
}

// Install compiles the program and registers its source on the loader under name.
func (b *Builder) Install(loader *memory.Loader, name string) error {
	if _, err := b.Build(); err != nil {
		return err
	}
	loader.Add(name, b.Source())
	return nil
}

// StateBuilder provides a fluent API for the rules leaving one state.
type StateBuilder struct {
	name  string
	rules []domain.Rule
}

// On adds an exact rule: reading read, write write, move, then enter next.
// Pass "*" as write to keep the symbol that was read.
func (s *StateBuilder) On(read, write string, move domain.Direction, next string) *StateBuilder {
	s.rules = append(s.rules, domain.Rule{
		State: s.name,
		Read:  domain.Symbol(read),
		Action: domain.Action{
			Write:     domain.Symbol(write),
			Move:      move,
			NextState: next,
		},
	})
	return s
}

// Otherwise adds the wildcard rule used when no exact rule matches.
func (s *StateBuilder) Otherwise(write string, move domain.Direction, next string) *StateBuilder {
	return s.On(string(domain.Wildcard), write, move, next)
}

// Halt is shorthand for a wildcard rule that leaves the tape alone and stops in final.
func (s *StateBuilder) Halt(final string) *StateBuilder {
	return s.Otherwise(string(domain.Wildcard), domain.None, final)
}
