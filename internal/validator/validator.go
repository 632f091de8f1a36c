package validator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/turing/pkg/domain"
)

// Kind classifies a structural problem found in a program.
type Kind string

const (
	// KindUnreachable marks a state no transition chain from the initial state can enter.
	KindUnreachable Kind = "unreachable"
	// KindDeadEnd marks a non-final state with no outgoing rule at all.
	// Entering it always ends the run with a missing transition.
	KindDeadEnd Kind = "dead_end"
	// KindNoFinal marks a program whose final states cannot be reached.
	KindNoFinal Kind = "no_final"
)

// Issue is a single finding. State is empty for program-wide issues.
type Issue struct {
	Kind  Kind   `json:"kind"`
	State string `json:"state,omitempty"`
}

func (i Issue) String() string {
	switch i.Kind {
	case KindUnreachable:
		return fmt.Sprintf("state '%s' is unreachable from the initial state", i.State)
	case KindDeadEnd:
		return fmt.Sprintf("state '%s' is not final and has no outgoing rules", i.State)
	case KindNoFinal:
		return "no final state is reachable from the initial state"
	}
	return string(i.Kind)
}

// Inspect crawls the transition graph from the initial state and reports
// structural problems. Issues are ordered by kind, then by state name.
// A program with issues still compiles and runs; these are warnings.
func Inspect(prog *domain.Program) []Issue {
	out := make(map[string][]string)
	for _, r := range prog.Rules() {
		out[r.State] = append(out[r.State], r.NextState)
	}

	visited := make(map[string]bool)
	queue := []string{prog.InitialState()}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if visited[current] {
			continue
		}
		visited[current] = true

		for _, next := range out[current] {
			if !visited[next] {
				queue = append(queue, next)
			}
		}
	}

	var issues []Issue
	for _, s := range prog.States() {
		if !visited[s] {
			issues = append(issues, Issue{Kind: KindUnreachable, State: s})
		}
	}
	for _, s := range prog.States() {
		if _, ok := out[s]; !ok && !prog.IsFinal(s) {
			issues = append(issues, Issue{Kind: KindDeadEnd, State: s})
		}
	}

	reachable := false
	for _, f := range prog.FinalStates() {
		if visited[f] {
			reachable = true
			break
		}
	}
	if !reachable {
		issues = append(issues, Issue{Kind: KindNoFinal})
	}

	sort.SliceStable(issues, func(i, j int) bool {
		return kindOrder(issues[i].Kind) < kindOrder(issues[j].Kind)
	})
	return issues
}

// Validate is Inspect with the findings folded into a single error.
func Validate(prog *domain.Program) error {
	issues := Inspect(prog)
	if len(issues) == 0 {
		return nil
	}

	lines := make([]string, len(issues))
	for i, issue := range issues {
		lines[i] = issue.String()
	}
	return fmt.Errorf("found %d issues:\n- %s", len(issues), strings.Join(lines, "\n- "))
}

func kindOrder(k Kind) int {
	switch k {
	case KindNoFinal:
		return 0
	case KindDeadEnd:
		return 1
	}
	return 2
}
