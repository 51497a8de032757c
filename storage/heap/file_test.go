package heap_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kavedb/ledgerdb/common"
	"github.com/kavedb/ledgerdb/concurrency/txn"
	"github.com/kavedb/ledgerdb/storage/dberrors"
	"github.com/kavedb/ledgerdb/storage/heap"
	"github.com/kavedb/ledgerdb/storage/pageid"
	"github.com/kavedb/ledgerdb/storage/rawstore"
	"github.com/kavedb/ledgerdb/storage/tuple"
)

// fakePool is the minimal heap.Pool a File's own tests need: it loads a
// page from the file on first request and hands back that same cached page
// afterward, with no locking or eviction, enough to exercise File's own
// logic in isolation from the buffer package.
type fakePool struct {
	file  *heap.File
	pages map[pageid.PageID]*heap.Page
}

func (f *fakePool) GetPage(tid txn.ID, pid pageid.PageID, perm heap.Permission) (*heap.Page, error) {
	if p, ok := f.pages[pid]; ok {
		return p, nil
	}
	p, err := f.file.ReadPage(pid)
	if err != nil {
		return nil, err
	}
	f.pages[pid] = p
	return p, nil
}

func newTestFile(t *testing.T) (*heap.File, *fakePool) {
	t.Helper()
	common.SetPageSize(512)
	t.Cleanup(common.ResetPageSize)

	store := rawstore.NewMemStore()
	desc := tuple.NewTupleDesc([]tuple.FieldType{tuple.IntType}, []string{"n"})
	file := heap.NewFile(pageid.TableID(1), desc, store)
	return file, &fakePool{file: file, pages: make(map[pageid.PageID]*heap.Page)}
}

func TestFileNumPagesIntegerDivision(t *testing.T) {
	file, pool := newTestFile(t)
	n, err := file.NumPages()
	require.NoError(t, err)
	require.Equal(t, 0, n)

	desc := file.TupleDesc()
	_, err = file.InsertTuple(txn.NewID(), tuple.NewTuple(desc, []tuple.Field{tuple.IntField{Value: 1}}), pool)
	require.NoError(t, err)

	n, err = file.NumPages()
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestFileInsertGrowsWhenFull(t *testing.T) {
	file, pool := newTestFile(t)
	desc := file.TupleDesc()
	tid := txn.NewID()

	numSlots, _, _ := pageLayoutForTest(t)
	for i := 0; i < numSlots; i++ {
		_, err := file.InsertTuple(tid, tuple.NewTuple(desc, []tuple.Field{tuple.IntField{Value: int32(i)}}), pool)
		require.NoError(t, err)
	}
	n, err := file.NumPages()
	require.NoError(t, err)
	require.Equal(t, 1, n)

	pages, err := file.InsertTuple(tid, tuple.NewTuple(desc, []tuple.Field{tuple.IntField{Value: 999}}), pool)
	require.NoError(t, err)
	require.Len(t, pages, 1)
	require.EqualValues(t, 1, pages[0].ID().PageNo)

	n, err = file.NumPages()
	require.NoError(t, err)
	require.Equal(t, 2, n)
}

func TestFileDeleteTupleNotFound(t *testing.T) {
	file, pool := newTestFile(t)
	desc := file.TupleDesc()
	tup := tuple.NewTuple(desc, []tuple.Field{tuple.IntField{Value: 1}})
	rid := pageid.RecordID{PageID: pageid.PageID{TableID: file.ID(), PageNo: 0}, Slot: 3}
	tup.RecordID = &rid

	_, err := file.DeleteTuple(txn.NewID(), tup, pool)
	require.ErrorIs(t, err, dberrors.ErrTupleNotFound)
}

func TestFileIteratorSeesAllInsertedTuples(t *testing.T) {
	file, pool := newTestFile(t)
	desc := file.TupleDesc()
	tid := txn.NewID()

	const total = 504
	for i := 0; i < total; i++ {
		_, err := file.InsertTuple(tid, tuple.NewTuple(desc, []tuple.Field{tuple.IntField{Value: int32(i)}}), pool)
		require.NoError(t, err)
	}

	it := file.Iterator(tid, pool)
	count := 0
	seen := make(map[int32]bool)
	for {
		tup, ok, err := it.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		seen[tup.Fields[0].(tuple.IntField).Value] = true
		count++
	}
	require.Equal(t, total, count)
	for i := 0; i < total; i++ {
		require.True(t, seen[int32(i)])
	}
}

// pageLayoutForTest mirrors heap's unexported layout() to compute how many
// single-int tuples fit on one page at the 512-byte test page size, so
// TestFileInsertGrowsWhenFull can fill exactly one page before growing.
func pageLayoutForTest(t *testing.T) (numSlots, headerSize, tupleSize int) {
	t.Helper()
	tupleSize = 4
	pageSize := common.PageSize()
	numSlots = (pageSize * 8) / (tupleSize*8 + 1)
	headerSize = (numSlots + 7) / 8
	return
}
