package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/turing/pkg/adapters/memory"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunResultStoreContract(t, store)
}

func TestMemoryStore_Isolation(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	rec := &domain.RunRecord{
		ID:     "iso",
		Result: domain.Result{Outcome: domain.OutcomeNoTransition, Stuck: &domain.Key{State: "S", Read: "0"}},
	}
	require.NoError(t, store.Save(ctx, rec))

	rec.Result.Stuck.State = "mutated"

	loaded, err := store.Load(ctx, "iso")
	require.NoError(t, err)
	assert.Equal(t, "S", loaded.Result.Stuck.State)
}
