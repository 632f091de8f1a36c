package analysis

import (
	"errors"
	"fmt"
	"math/big"
	"math/rand/v2"
	"strings"

	"github.com/aretw0/turing/pkg/domain"
)

// Separators of the multiplication tape layout.
const (
	OperandSeparator = "#"
	InputTerminator  = "$"
)

// ErrInvalidLength is returned when an operand would have fewer than one bit.
var ErrInvalidLength = errors.New("binary length must be at least 1")

// RandomBinary returns n random bits, the first of which is always 1.
func RandomBinary(rng *rand.Rand, n int) (string, error) {
	if n < 1 {
		return "", fmt.Errorf("%w: got %d", ErrInvalidLength, n)
	}
	var b strings.Builder
	b.Grow(n)
	b.WriteByte('1')
	for i := 1; i < n; i++ {
		if rng.IntN(2) == 0 {
			b.WriteByte('0')
		} else {
			b.WriteByte('1')
		}
	}
	return b.String(), nil
}

// BuildTape lays out two operands for the multiplication program.
func BuildTape(num1, num2 string, blanks int) string {
	pad := strings.Repeat(string(domain.Blank), max(blanks, 0))
	return pad + num1 + OperandSeparator + num2 + InputTerminator + pad
}

// Product decodes the binary number left on a finished multiplication tape.
// Blanks are ignored; any other non-binary symbol is an error.
func Product(tape string) (*big.Int, error) {
	digits := strings.ReplaceAll(tape, string(domain.Blank), "")
	if digits == "" {
		return new(big.Int), nil
	}
	n, ok := new(big.Int).SetString(digits, 2)
	if !ok {
		return nil, fmt.Errorf("tape %q does not hold a binary number", tape)
	}
	return n, nil
}
