package txn_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kavedb/ledgerdb/concurrency/txn"
)

func TestBeginStartsRunning(t *testing.T) {
	tr := txn.Begin()
	require.Equal(t, txn.Running, tr.State())
	require.NotZero(t, tr.ID())
}

func TestSetStateTransitions(t *testing.T) {
	tr := txn.Begin()
	tr.SetState(txn.Committed)
	require.Equal(t, txn.Committed, tr.State())

	tr.SetState(txn.Aborted)
	require.Equal(t, txn.Aborted, tr.State())
}

func TestIDsAreUniqueAndNeverZero(t *testing.T) {
	a := txn.NewID()
	b := txn.NewID()
	require.NotEqual(t, a, b)
	require.NotZero(t, a)
	require.NotZero(t, b)
}

func TestStateString(t *testing.T) {
	require.Equal(t, "running", txn.Running.String())
	require.Equal(t, "committed", txn.Committed.String())
	require.Equal(t, "aborted", txn.Aborted.String())
}
