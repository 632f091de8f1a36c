package runtime

import (
	"strings"

	"github.com/aretw0/turing/pkg/domain"
)

// Tape is a bi-infinite symbol sequence realized by on-demand blank padding.
//
// Cells are addressed by a physical index in [0, Len()). Cells grown at the
// left end live in a reversed slice so that both ends extend in amortized
// constant time; after a left extension every existing cell's physical index
// shifts right by one.
type Tape struct {
	left  []domain.Symbol // left[0] is the cell just before right[0]
	right []domain.Symbol
}

// NewTape builds a tape with one symbol per character of s.
func NewTape(s string) *Tape {
	return &Tape{right: domain.SplitSymbols(s)}
}

// NewTapeFromSymbols copies the given symbols into a new tape.
func NewTapeFromSymbols(symbols []domain.Symbol) *Tape {
	right := make([]domain.Symbol, len(symbols))
	copy(right, symbols)
	return &Tape{right: right}
}

// Len is the number of materialized cells.
func (t *Tape) Len() int {
	return len(t.left) + len(t.right)
}

// Extend materializes blank cells until head is in bounds and returns the
// effective head. A negative head becomes 0; content is never dropped.
// Every cell between the old end and head is filled, so a head k cells
// outside the tape costs k blanks. Steps only move by one; only an initial
// head can be further out.
func (t *Tape) Extend(head int) int {
	for head < 0 {
		t.left = append(t.left, domain.Blank)
		head++
	}
	for head >= t.Len() {
		t.right = append(t.right, domain.Blank)
	}
	return head
}

// Read extends the tape if needed and returns the symbol under the effective head.
func (t *Tape) Read(head int) (domain.Symbol, int) {
	head = t.Extend(head)
	return *t.cell(head), head
}

// Write extends the tape if needed, stores s and returns the effective head.
func (t *Tape) Write(head int, s domain.Symbol) int {
	head = t.Extend(head)
	*t.cell(head) = s
	return head
}

// cell expects an in-bounds physical index.
func (t *Tape) cell(i int) *domain.Symbol {
	if i < len(t.left) {
		return &t.left[len(t.left)-1-i]
	}
	return &t.right[i-len(t.left)]
}

// Symbols returns a copy of the tape contents in order.
func (t *Tape) Symbols() []domain.Symbol {
	out := make([]domain.Symbol, 0, t.Len())
	for i := len(t.left) - 1; i >= 0; i-- {
		out = append(out, t.left[i])
	}
	return append(out, t.right...)
}

// String concatenates the tape contents.
func (t *Tape) String() string {
	var sb strings.Builder
	sb.Grow(t.Len())
	for i := len(t.left) - 1; i >= 0; i-- {
		sb.WriteString(string(t.left[i]))
	}
	for _, s := range t.right {
		sb.WriteString(string(s))
	}
	return sb.String()
}
