package buffer_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kavedb/ledgerdb/catalog"
	"github.com/kavedb/ledgerdb/common"
	"github.com/kavedb/ledgerdb/concurrency/txn"
	"github.com/kavedb/ledgerdb/storage/buffer"
	"github.com/kavedb/ledgerdb/storage/dberrors"
	"github.com/kavedb/ledgerdb/storage/heap"
	"github.com/kavedb/ledgerdb/storage/pageid"
	"github.com/kavedb/ledgerdb/storage/rawstore"
	"github.com/kavedb/ledgerdb/storage/tuple"
)

func newTestTable(t *testing.T, name string) (catalog.Catalog, pageid.TableID) {
	t.Helper()
	common.SetPageSize(512)
	t.Cleanup(common.ResetPageSize)

	store := rawstore.NewMemStore()
	desc := tuple.NewTupleDesc([]tuple.FieldType{tuple.IntType}, []string{"n"})
	tableID := pageid.TableID(1)
	file := heap.NewFile(tableID, desc, store)

	cat := catalog.NewCatalog()
	cat.AddTable(file, name)
	return cat, tableID
}

func TestNewDefaultPoolAcceptsInsertAndCommit(t *testing.T) {
	cat, tableID := newTestTable(t, "t")
	pool := buffer.NewDefaultPool(cat)
	tid := txn.NewID()

	_, err := pool.InsertTuple(tid, tableID, tuple.NewTuple(
		tuple.NewTupleDesc([]tuple.FieldType{tuple.IntType}, []string{"n"}),
		[]tuple.Field{tuple.IntField{Value: 1}},
	))
	require.NoError(t, err)
	pool.TransactionComplete(tid, true)
}

func TestPoolFaultsPageInFromDisk(t *testing.T) {
	cat, tableID := newTestTable(t, "t")
	pool := buffer.NewPool(2, cat)
	tid := txn.NewID()

	_, err := pool.InsertTuple(tid, tableID, tuple.NewTuple(
		tuple.NewTupleDesc([]tuple.FieldType{tuple.IntType}, []string{"n"}),
		[]tuple.Field{tuple.IntField{Value: 1}},
	))
	require.NoError(t, err)

	pid := pageid.PageID{TableID: tableID, PageNo: 0}
	page, err := pool.GetPage(tid, pid, heap.ReadOnly)
	require.NoError(t, err)
	require.Equal(t, pid, page.ID())
}

func TestPoolEvictsLRUCleanPage(t *testing.T) {
	cat, tableID := newTestTable(t, "t")
	desc := tuple.NewTupleDesc([]tuple.FieldType{tuple.IntType}, []string{"n"})

	// Build and commit 3 pages' worth of data using a generously sized
	// pool, so filling the table isn't itself constrained by eviction.
	writer := buffer.NewPool(10, cat)
	tid := txn.NewID()
	for i := 0; i < 300; i++ {
		_, err := writer.InsertTuple(tid, tableID, tuple.NewTuple(desc, []tuple.Field{tuple.IntField{Value: int32(i)}}))
		require.NoError(t, err)
	}
	writer.TransactionComplete(tid, true)

	// A fresh, small pool now reads the committed table and must evict
	// under strict LRU.
	pool := buffer.NewPool(2, cat)
	r := txn.NewID()
	p0 := pageid.PageID{TableID: tableID, PageNo: 0}
	p1 := pageid.PageID{TableID: tableID, PageNo: 1}
	p2 := pageid.PageID{TableID: tableID, PageNo: 2}

	_, err := pool.GetPage(r, p0, heap.ReadOnly)
	require.NoError(t, err)
	_, err = pool.GetPage(r, p1, heap.ReadOnly)
	require.NoError(t, err)
	// p0 is now LRU tail; fetching p2 should evict it.
	_, err = pool.GetPage(r, p2, heap.ReadOnly)
	require.NoError(t, err)

	// Re-fetching p0 must succeed (reloaded from disk), proving it was
	// evicted rather than erroring out.
	_, err = pool.GetPage(r, p0, heap.ReadOnly)
	require.NoError(t, err)
}

func TestPoolNoSpaceWhenEveryPageDirty(t *testing.T) {
	cat, tableID := newTestTable(t, "t")
	pool := buffer.NewPool(1, cat)

	t1 := txn.NewID()
	desc := tuple.NewTupleDesc([]tuple.FieldType{tuple.IntType}, []string{"n"})
	_, err := pool.InsertTuple(t1, tableID, tuple.NewTuple(desc, []tuple.Field{tuple.IntField{Value: 1}}))
	require.NoError(t, err)

	t2 := txn.NewID()
	// Page 0 is dirty and pool capacity is 1; a second page can't be
	// faulted in because there is no clean victim. Use GetPage directly
	// against a page id that doesn't exist yet: page 0 is the only page,
	// so force a second page to exist first outside this pool's view by
	// growing the file through another insert path is unnecessary here —
	// request of a different (nonexistent) page number against a full,
	// all-dirty pool must fail with ErrNoSpace before ever reaching disk.
	_, err = pool.GetPage(t2, pageid.PageID{TableID: tableID, PageNo: 1}, heap.ReadOnly)
	require.ErrorIs(t, err, dberrors.ErrNoSpace)
}

func TestTransactionCompleteCommitFlushesAndCleans(t *testing.T) {
	cat, tableID := newTestTable(t, "t")
	pool := buffer.NewPool(4, cat)
	tid := txn.NewID()

	desc := tuple.NewTupleDesc([]tuple.FieldType{tuple.IntType}, []string{"n"})
	pages, err := pool.InsertTuple(tid, tableID, tuple.NewTuple(desc, []tuple.Field{tuple.IntField{Value: 42}}))
	require.NoError(t, err)
	require.NotNil(t, pages[0].IsDirty())

	pool.TransactionComplete(tid, true)

	require.Nil(t, pages[0].IsDirty())
	require.False(t, pool.HoldsLock(tid, pages[0].ID()))

	// A fresh scan by another transaction sees the committed tuple.
	r := txn.NewID()
	file, err := cat.GetDatabaseFile(tableID)
	require.NoError(t, err)
	it := file.Iterator(r, pool)
	tup, ok, err := it.Next()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int32(42), tup.Fields[0].(tuple.IntField).Value)
}

func TestTransactionCompleteAbortDiscardsDirtyPage(t *testing.T) {
	cat, tableID := newTestTable(t, "t")
	pool := buffer.NewPool(4, cat)

	committer := txn.NewID()
	desc := tuple.NewTupleDesc([]tuple.FieldType{tuple.IntType}, []string{"n"})
	_, err := pool.InsertTuple(committer, tableID, tuple.NewTuple(desc, []tuple.Field{tuple.IntField{Value: 1}}))
	require.NoError(t, err)
	pool.TransactionComplete(committer, true)

	aborter := txn.NewID()
	_, err = pool.InsertTuple(aborter, tableID, tuple.NewTuple(desc, []tuple.Field{tuple.IntField{Value: 99}}))
	require.NoError(t, err)
	pool.TransactionComplete(aborter, false)

	r := txn.NewID()
	file, err := cat.GetDatabaseFile(tableID)
	require.NoError(t, err)
	it := file.Iterator(r, pool)

	seen := []int32{}
	for {
		tup, ok, err := it.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		seen = append(seen, tup.Fields[0].(tuple.IntField).Value)
	}
	require.Equal(t, []int32{1}, seen)
}
