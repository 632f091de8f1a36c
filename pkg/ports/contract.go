package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/turing/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contractRecord(id string) *domain.RunRecord {
	return &domain.RunRecord{
		ID:      id,
		Program: "contract",
		Input:   "01",
		Result: domain.Result{
			Steps:   3,
			Outcome: domain.OutcomeHalted,
			State:   "halt",
			Tape:    "11",
		},
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
}

// RunResultStoreContract runs a suite of tests to verify that a ResultStore implementation
// adheres to the defined interface contract.
func RunResultStoreContract(t *testing.T, store ResultStore) {
	ctx := context.Background()
	id := "contract-run-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		rec := contractRecord(id)

		err := store.Save(ctx, rec)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, id)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, rec.Program, loaded.Program)
		assert.Equal(t, rec.Input, loaded.Input)
		assert.Equal(t, rec.Result.Steps, loaded.Result.Steps)
		assert.Equal(t, domain.OutcomeHalted, loaded.Result.Outcome)
		assert.Equal(t, "11", loaded.Result.Tape)
		assert.True(t, rec.CreatedAt.Equal(loaded.CreatedAt))
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+id)
		assert.ErrorIs(t, err, domain.ErrResultNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, contractRecord(id))
		require.NoError(t, err)

		err = store.Delete(ctx, id)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, id)
		assert.ErrorIs(t, err, domain.ErrResultNotFound, "Load after Delete should return ErrResultNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := id + "-1"
		id2 := id + "-2"
		_ = store.Save(ctx, contractRecord(id1))
		_ = store.Save(ctx, contractRecord(id2))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, id1)
		assert.Contains(t, ids, id2)
	})
}

// RunTraceSinkContract drives sink through a short no-transition run and
// checks the rendered trace. lines must return everything the sink has
// produced so far, one entry per line.
func RunTraceSinkContract(t *testing.T, sink TraceSink, lines func() []string) {
	sink.Record(domain.Configuration{Step: 0, State: "q0", Head: 0, Tape: "01"})
	sink.Record(domain.Configuration{Step: 1, State: "q1", Head: 1, Tape: "11"})
	sink.NoTransition("q1", "1")
	sink.Record(domain.Configuration{Step: 2, State: "q1", Head: 1, Tape: "11"})

	got := lines()
	require.Len(t, got, 4)
	assert.Equal(t, "Step 0000: State=q0, Head=0, Tape=01", got[0])
	assert.Equal(t, "Step 0001: State=q1, Head=1, Tape=11", got[1])
	assert.Equal(t, "No transition found in state=q1, symbol=1. Halting.", got[2])
	assert.Equal(t, "Step 0002: State=q1, Head=1, Tape=11", got[3])
}
