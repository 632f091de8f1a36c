package testutils

import (
	"context"
	"strings"
	"testing"

	"github.com/aretw0/turing/internal/compiler"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/programs"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MustCompile joins the lines into a program source and compiles it.
// It fails the test immediately on error.
func MustCompile(t testing.TB, lines ...string) *domain.Program {
	t.Helper()

	prog, err := compiler.Compile(strings.Join(lines, "\n"))
	require.NoError(t, err, "Failed to compile test program")
	return prog
}

// MustShipped compiles one of the programs embedded in the binary.
func MustShipped(t testing.TB, name string) *domain.Program {
	t.Helper()

	src, err := programs.NewRegistry().Load(context.Background(), name)
	require.NoError(t, err, "Failed to read shipped program %s", name)
	return MustCompile(t, src)
}

// MockSink is a ports.TraceSink backed by testify's mock.
type MockSink struct {
	mock.Mock
}

func (m *MockSink) Record(cfg domain.Configuration) {
	m.Called(cfg)
}

func (m *MockSink) NoTransition(state string, symbol domain.Symbol) {
	m.Called(state, symbol)
}
