package sync

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/openledgerhq/txbridge/internal/ledger"
)

func TestCountersFold(t *testing.T) {
	t.Parallel()

	start := Counters{}

	folded := start.
		addProcessed(10).
		addFailed(2).
		addBatch(ledger.BulkResult{Inserted: 6, Duplicated: 1, Failed: 1}).
		addProcessed(3).
		addBatch(ledger.BulkResult{Inserted: 3})

	require.Equal(t, Counters{Duplicated: 1, Failed: 3, Inserted: 9, Processed: 13}, folded)

	// The receiver is never mutated.
	require.Equal(t, Counters{}, start)
}
