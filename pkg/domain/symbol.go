package domain

import "fmt"

// Symbol is a single token of the tape alphabet.
type Symbol string

const (
	// Blank fills every cell created by tape extension.
	Blank Symbol = "B"
	// Wildcard is the meta-symbol used inside rules. It never appears on the tape.
	Wildcard Symbol = "*"
)

// Direction is the head movement applied after a write.
type Direction int

const (
	None Direction = iota
	Left
	Right
)

// ParseDirection maps the rule encoding (l, r, *) to a Direction.
func ParseDirection(token string) (Direction, error) {
	switch token {
	case "l":
		return Left, nil
	case "r":
		return Right, nil
	case "*":
		return None, nil
	}
	return None, fmt.Errorf("unknown direction %q", token)
}

// Delta is the head offset for the direction.
func (d Direction) Delta() int {
	switch d {
	case Left:
		return -1
	case Right:
		return 1
	}
	return 0
}

// Token returns the rule encoding of the direction.
func (d Direction) Token() string {
	switch d {
	case Left:
		return "l"
	case Right:
		return "r"
	}
	return "*"
}

func (d Direction) String() string {
	switch d {
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return "none"
}

// SplitSymbols converts a flat tape string into one Symbol per character.
func SplitSymbols(s string) []Symbol {
	out := make([]Symbol, 0, len(s))
	for _, r := range s {
		out = append(out, Symbol(r))
	}
	return out
}

// JoinSymbols concatenates symbols back into a flat tape string.
func JoinSymbols(symbols []Symbol) string {
	n := 0
	for _, s := range symbols {
		n += len(s)
	}
	buf := make([]byte, 0, n)
	for _, s := range symbols {
		buf = append(buf, s...)
	}
	return string(buf)
}
