package domain

import (
	"sort"
)

// Match tells which table resolved a transition.
type Match int

const (
	MatchNone Match = iota
	MatchExact
	MatchWildcard
)

func (m Match) String() string {
	switch m {
	case MatchExact:
		return "exact"
	case MatchWildcard:
		return "wildcard"
	}
	return "none"
}

// Program is the compiled, immutable form of a rule program.
// It is safe to share across concurrent runs.
type Program struct {
	exact    map[Key]Rule
	wildcard map[string]Rule
	initial  string
	finals   map[string]struct{}
	rules    []Rule
}

// NewProgram takes ownership of the given tables. Callers must not modify
// them afterwards.
func NewProgram(exact map[Key]Rule, wildcard map[string]Rule, initial string, finals map[string]struct{}) *Program {
	if exact == nil {
		exact = map[Key]Rule{}
	}
	if wildcard == nil {
		wildcard = map[string]Rule{}
	}
	if finals == nil {
		finals = map[string]struct{}{}
	}

	rules := make([]Rule, 0, len(exact)+len(wildcard))
	for _, r := range exact {
		rules = append(rules, r)
	}
	for _, r := range wildcard {
		rules = append(rules, r)
	}
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].Line != rules[j].Line {
			return rules[i].Line < rules[j].Line
		}
		return rules[i].String() < rules[j].String()
	})

	return &Program{
		exact:    exact,
		wildcard: wildcard,
		initial:  initial,
		finals:   finals,
		rules:    rules,
	}
}

// InitialState is the state every run starts in.
func (p *Program) InitialState() string {
	return p.initial
}

// IsFinal reports whether the state is one of the program's final states.
func (p *Program) IsFinal(state string) bool {
	_, ok := p.finals[state]
	return ok
}

// FinalStates returns the final states in lexical order.
func (p *Program) FinalStates() []string {
	out := make([]string, 0, len(p.finals))
	for s := range p.finals {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Resolve finds the action for (state, read).
// The exact table is consulted first, then the per-state wildcard table.
func (p *Program) Resolve(state string, read Symbol) (Action, Match) {
	if r, ok := p.exact[Key{State: state, Read: read}]; ok {
		return r.Action, MatchExact
	}
	if r, ok := p.wildcard[state]; ok {
		return r.Action, MatchWildcard
	}
	return Action{}, MatchNone
}

// Rules returns the effective rules (after overwrites) ordered by source line.
func (p *Program) Rules() []Rule {
	out := make([]Rule, len(p.rules))
	copy(out, p.rules)
	return out
}

// ExactTable returns a copy of the exact transition table.
func (p *Program) ExactTable() map[Key]Action {
	out := make(map[Key]Action, len(p.exact))
	for k, r := range p.exact {
		out[k] = r.Action
	}
	return out
}

// WildcardTable returns a copy of the wildcard transition table.
func (p *Program) WildcardTable() map[string]Action {
	out := make(map[string]Action, len(p.wildcard))
	for k, r := range p.wildcard {
		out[k] = r.Action
	}
	return out
}

// States returns every state named by the program, in lexical order.
func (p *Program) States() []string {
	seen := map[string]struct{}{p.initial: {}}
	for _, r := range p.rules {
		seen[r.State] = struct{}{}
		seen[r.NextState] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
