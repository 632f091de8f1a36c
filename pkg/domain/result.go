package domain

import "fmt"

// Outcome is the terminal condition of a run.
type Outcome string

const (
	OutcomeHalted            Outcome = "halted"              // Reached a final state
	OutcomeNoTransition      Outcome = "no_transition"       // No exact or wildcard rule applied
	OutcomeStepLimitExceeded Outcome = "step_limit_exceeded" // Opt-in step guard tripped
)

// Configuration is a read-only snapshot of the machine at a given step.
type Configuration struct {
	Step  int    `json:"step"`
	State string `json:"state"`
	Head  int    `json:"head"`
	Tape  string `json:"tape"`
}

// String renders the configuration as a trace line.
func (c Configuration) String() string {
	return fmt.Sprintf("Step %04d: State=%s, Head=%d, Tape=%s", c.Step, c.State, c.Head, c.Tape)
}

// NoTransitionLine renders the diagnostic emitted before the final record of
// a run that found no applicable rule.
func NoTransitionLine(state string, symbol Symbol) string {
	return fmt.Sprintf("No transition found in state=%s, symbol=%s. Halting.", state, symbol)
}

// Result summarizes a finished run.
type Result struct {
	Steps   int     `json:"steps"`
	Outcome Outcome `json:"outcome"`
	State   string  `json:"state"`
	Head    int     `json:"head"`
	Tape    string  `json:"tape"`

	// Stuck names the unmatched (state, symbol) pair when Outcome is OutcomeNoTransition.
	Stuck *Key `json:"stuck,omitempty"`
}

// Halted reports whether the run reached a final state.
func (r *Result) Halted() bool {
	return r.Outcome == OutcomeHalted
}
