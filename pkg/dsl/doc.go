/*
Package dsl provides a Go DSL for programmatically constructing rule programs.

It lets callers define a machine with a fluent builder instead of writing rule
text by hand. The builder renders ordinary program source and compiles it, so a
built program behaves exactly like one loaded from a .tm file. This is useful
for generated machines, unit tests and IDE autocompletion.

Example usage:

	b := dsl.New()

	b.State("a").
		On("B", "1", domain.Right, "b").
		On("1", "1", domain.Left, "b")

	b.State("b").
		On("B", "1", domain.Left, "a").
		Otherwise("*", domain.None, "halt")

	prog, err := b.Build()
	if err != nil {
		log.Fatal(err)
	}
	// ... pass prog to turing.New(...)

The first state declared with at least one rule is the initial state.
*/
package dsl
