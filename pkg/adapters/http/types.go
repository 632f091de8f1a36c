package http

import (
	"github.com/aretw0/turing/internal/validator"
	"github.com/aretw0/turing/pkg/domain"
)

// CompileRequest is the body of POST /compile.
type CompileRequest struct {
	Program string `json:"program"`
}

// RuleView is one effective rule of a compiled program.
type RuleView struct {
	Line      int    `json:"line"`
	State     string `json:"state"`
	Read      string `json:"read"`
	Write     string `json:"write"`
	Move      string `json:"move"`
	NextState string `json:"next_state"`
}

// CompileResponse describes a compiled program.
type CompileResponse struct {
	InitialState string     `json:"initial_state"`
	FinalStates  []string   `json:"final_states"`
	States       []string   `json:"states"`
	Rules        []RuleView `json:"rules"`
	// Warnings lists structural findings. They do not prevent running.
	Warnings []validator.Issue `json:"warnings,omitempty"`
}

// RunRequest is the body of POST /run and POST /run/stream.
// Exactly one of Program and ProgramName must be set.
type RunRequest struct {
	Program     string `json:"program,omitempty"`
	ProgramName string `json:"program_name,omitempty"`
	Tape        string `json:"tape"`
	Head        int    `json:"head"`
	MaxSteps    int    `json:"max_steps,omitempty"`
	Trace       bool   `json:"trace,omitempty"`
}

// RunResponse reports a finished run.
type RunResponse struct {
	ID     string        `json:"id,omitempty"`
	Result domain.Result `json:"result"`
	Trace  []string      `json:"trace,omitempty"`
	// TraceTruncated is set when the trace hit the server's trace bound.
	// Use POST /run/stream for the complete trace.
	TraceTruncated bool `json:"trace_truncated,omitempty"`
}

// ErrorResponse is returned for every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Line  int    `json:"line,omitempty"`
}

func rulesView(prog *domain.Program) []RuleView {
	rules := prog.Rules()
	out := make([]RuleView, len(rules))
	for i, r := range rules {
		out[i] = RuleView{
			Line:      r.Line,
			State:     r.State,
			Read:      string(r.Read),
			Write:     string(r.Write),
			Move:      r.Move.Token(),
			NextState: r.NextState,
		}
	}
	return out
}
