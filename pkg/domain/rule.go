package domain

import "strings"

// FinalStatePrefix marks a state name as final (halting).
const FinalStatePrefix = "halt"

// IsFinalName reports whether a state name follows the halting convention.
func IsFinalName(state string) bool {
	return strings.HasPrefix(state, FinalStatePrefix)
}

// Action is the right-hand side of a transition rule.
type Action struct {
	// Write is the symbol to write. Wildcard means "write back what was read".
	Write     Symbol    `json:"write"`
	Move      Direction `json:"move"`
	NextState string    `json:"next_state"`
}

// Apply returns the symbol that ends up on the tape when the action fires
// after reading the given symbol.
func (a Action) Apply(read Symbol) Symbol {
	if a.Write == Wildcard {
		return read
	}
	return a.Write
}

// Rule is a single line of a program: (state, read) -> action.
type Rule struct {
	State string `json:"state"`
	Read  Symbol `json:"read"`
	Action
	// Line is the 1-based source line the rule was compiled from.
	Line int `json:"line,omitempty"`
}

// IsWildcard reports whether the rule matches any read symbol.
func (r Rule) IsWildcard() bool {
	return r.Read == Wildcard
}

// String renders the rule back in the program text format.
func (r Rule) String() string {
	return strings.Join([]string{r.State, string(r.Read), string(r.Write), r.Move.Token(), r.NextState}, " ")
}

// Key identifies an exact transition.
type Key struct {
	State string `json:"state"`
	Read  Symbol `json:"read"`
}
