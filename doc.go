/*
Package turing is a deterministic single-tape Turing machine simulator.

A rule program (one transition per line, with "*" wildcards) is compiled once
into an immutable Program and then executed step by step against an input
tape until the machine reaches a final state or finds no applicable rule.

# Concept

The compiler turns text into two lookup tables: exact (state, symbol) rules
and per-state wildcard rules. The engine resolves each step with an ordered
fallback (exact first, then wildcard), writes, moves the head and switches
state. Tapes grow blank cells on demand at both ends. Tracing is delegated to
a pluggable ports.TraceSink, so the engine itself never performs I/O.

# Program Format

	<old_state> <read> <write> <l|r|*> <new_state>   ; comment

  - read "*" matches any symbol when no exact rule exists for the state.
  - write "*" writes back the symbol that was read.
  - direction "*" leaves the head where it is.
  - states whose name begins with "halt" are final.
  - the first rule's old_state is the initial state.

Because ";" starts a comment, no symbol or state may contain it.

# Usage

	m, err := turing.New(source, turing.WithMaxSteps(1_000_000))
	if err != nil {
		log.Fatal(err)
	}

	rec := memory.NewRecorder()
	res, err := m.Run(ctx, "BB101#11$BB", turing.WithTrace(rec))
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(res.Outcome, res.Steps, res.Tape)
*/
package turing
