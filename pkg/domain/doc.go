/*
Package domain contains the core domain models of the Turing machine simulator.

It defines the fundamental entities of the machine, such as Symbols, Rules,
the compiled Program and the Configuration snapshots emitted while running.
This package is kept pure and free of external dependencies like I/O or
persistence, following Hexagonal Architecture principles.

# Key Entities

  - Program: immutable bundle of exact and wildcard transition tables, the
    initial state and the set of final states.
  - Action: what to do once a rule matched (write, move, next state).
  - Configuration: a point-in-time snapshot of step, state, head and tape.
  - Result: the step count, outcome and final tape of a finished run.
*/
package domain
