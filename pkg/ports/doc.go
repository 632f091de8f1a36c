/*
Package ports defines the driven ports (interfaces) of the Turing machine engine.

These interfaces decouple the core logic from external implementations, allowing
the engine to trace into files or memory and results to be kept in any backend.

# Key Interfaces

  - TraceSink: receives one Configuration per step (write-only for the engine).
  - ProgramLoader: resolves program source text by name (embedded, directory, memory).
  - ResultStore: persists RunRecords (memory, file, redis).
*/
package ports
