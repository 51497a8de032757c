// this code is grounded on https://github.com/ryogrid/SamehadaDB's
// storage/disk disk manager and simpledb's HeapFile (see original_source/)
// there is license and copyright notice in licenses/SamehadaDB dir

package heap

import (
	"sync"

	"github.com/kavedb/ledgerdb/common"
	"github.com/kavedb/ledgerdb/concurrency/txn"
	"github.com/kavedb/ledgerdb/storage/dberrors"
	"github.com/kavedb/ledgerdb/storage/pageid"
	"github.com/kavedb/ledgerdb/storage/rawstore"
	"github.com/kavedb/ledgerdb/storage/tuple"
)

// File is a heap file: an unordered, page-aligned sequence of slotted
// pages backed by a rawstore.Store. It has no cache and no locking of its
// own beyond growMu, which serializes the scan-for-room-then-append
// sequence in InsertTuple so two concurrent inserters never both decide
// the file needs a new page and append two.
type File struct {
	id    pageid.TableID
	desc  *tuple.TupleDesc
	store rawstore.Store

	growMu sync.Mutex
}

// NewFile opens a heap file over store, identified by id and described by
// desc. The store's current size need not be page-aligned by the caller;
// NumPages truncates toward zero, silently ignoring any trailing partial
// page, which is the fix for the floating point division bug the original
// numPages() had.
func NewFile(id pageid.TableID, desc *tuple.TupleDesc, store rawstore.Store) *File {
	return &File{id: id, desc: desc, store: store}
}

// ID returns the file's table id.
func (f *File) ID() pageid.TableID { return f.id }

// TupleDesc returns the file's schema.
func (f *File) TupleDesc() *tuple.TupleDesc { return f.desc }

// NumPages returns the number of complete pages currently in the file.
func (f *File) NumPages() (int, error) {
	size, err := f.store.Size()
	if err != nil {
		return 0, dberrors.WrapIO("size", err)
	}
	return int(size) / common.PageSize(), nil
}

// ReadPage reads and parses the page numbered pid.PageNo. It fails with
// dberrors.ErrInvalidPage if that page does not exist in the file.
func (f *File) ReadPage(pid pageid.PageID) (*Page, error) {
	pageSize := common.PageSize()
	off := int64(pid.PageNo) * int64(pageSize)

	size, err := f.store.Size()
	if err != nil {
		return nil, dberrors.WrapIO("size", err)
	}
	if off < 0 || off+int64(pageSize) > size {
		return nil, dberrors.ErrInvalidPage
	}

	buf := make([]byte, pageSize)
	if _, err := f.store.ReadAt(buf, off); err != nil {
		return nil, dberrors.WrapIO("read", err)
	}
	return NewPage(pid, f.desc, buf)
}

// WritePage writes p's current image back to its page number. The page
// must already exist in the file; WritePage never grows it.
func (f *File) WritePage(p *Page) error {
	pageSize := common.PageSize()
	off := int64(p.ID().PageNo) * int64(pageSize)
	if _, err := f.store.WriteAt(p.Data(), off); err != nil {
		return dberrors.WrapIO("write", err)
	}
	return nil
}

// appendEmptyPage grows the file by one page and returns its page number.
// Callers must hold growMu.
func (f *File) appendEmptyPage() (int32, error) {
	numPages, err := f.NumPages()
	if err != nil {
		return 0, err
	}
	if err := f.store.Grow(int64(common.PageSize())); err != nil {
		return 0, dberrors.WrapIO("grow", err)
	}
	return int32(numPages), nil
}

// InsertTuple places t on the first page with a free slot, growing the
// file by one page if every existing page is full. It acquires each
// candidate page through pool under an exclusive lock, so the caller's
// transaction holds the lock on whichever page it ends up dirtying.
// Returns the page(s) modified, which for a heap file is always exactly one.
func (f *File) InsertTuple(tid txn.ID, t *tuple.Tuple, pool Pool) ([]*Page, error) {
	if err := t.CheckSchema(f.desc); err != nil {
		return nil, err
	}

	f.growMu.Lock()
	defer f.growMu.Unlock()

	numPages, err := f.NumPages()
	if err != nil {
		return nil, err
	}

	for pageNo := int32(0); pageNo < int32(numPages); pageNo++ {
		pid := pageid.PageID{TableID: f.id, PageNo: pageNo}
		p, err := pool.GetPage(tid, pid, ReadWrite)
		if err != nil {
			return nil, err
		}
		if p.NumEmptySlots() == 0 {
			continue
		}
		if err := p.InsertTuple(t); err != nil {
			return nil, err
		}
		p.MarkDirty(true, tid)
		return []*Page{p}, nil
	}

	newPageNo, err := f.appendEmptyPage()
	if err != nil {
		return nil, err
	}
	pid := pageid.PageID{TableID: f.id, PageNo: newPageNo}
	p, err := pool.GetPage(tid, pid, ReadWrite)
	if err != nil {
		return nil, err
	}
	if err := p.InsertTuple(t); err != nil {
		return nil, err
	}
	p.MarkDirty(true, tid)
	return []*Page{p}, nil
}

// DeleteTuple removes t from the page named by t.RecordID, acquired
// through pool under an exclusive lock. It fails with
// dberrors.ErrTupleNotFound if t has no record id, or if that record id
// names a page past the end of the file or a slot that is not in use.
func (f *File) DeleteTuple(tid txn.ID, t *tuple.Tuple, pool Pool) ([]*Page, error) {
	if t.RecordID == nil {
		return nil, dberrors.ErrTupleNotFound
	}
	numPages, err := f.NumPages()
	if err != nil {
		return nil, err
	}
	if int(t.RecordID.PageID.PageNo) >= numPages {
		return nil, dberrors.ErrTupleNotFound
	}
	p, err := pool.GetPage(tid, t.RecordID.PageID, ReadWrite)
	if err != nil {
		return nil, err
	}
	if err := p.DeleteTuple(t); err != nil {
		return nil, err
	}
	p.MarkDirty(true, tid)
	return []*Page{p}, nil
}

// Iterator returns a lazy, page-by-page cursor over every tuple in the
// file, acquiring each page through pool under a shared lock as it is
// reached. It is restartable: calling Iterator again starts over at page 0.
func (f *File) Iterator(tid txn.ID, pool Pool) *FileIterator {
	return &FileIterator{file: f, tid: tid, pool: pool, pageNo: -1}
}

// FileIterator walks a File's pages in order, lazily fetching the next
// page only once the current one is exhausted.
type FileIterator struct {
	file   *File
	tid    txn.ID
	pool   Pool
	pageNo int32
	cur    *Iterator
}

// Next returns the next tuple in file order, or nil, false, nil once the
// file is exhausted. A non-nil error means a page fault failed; the
// iterator should not be reused afterward.
func (it *FileIterator) Next() (*tuple.Tuple, bool, error) {
	for {
		if it.cur != nil {
			if t, ok := it.cur.Next(); ok {
				return t, true, nil
			}
			it.cur = nil
		}

		it.pageNo++
		numPages, err := it.file.NumPages()
		if err != nil {
			return nil, false, err
		}
		if it.pageNo >= int32(numPages) {
			return nil, false, nil
		}

		pid := pageid.PageID{TableID: it.file.id, PageNo: it.pageNo}
		p, err := it.pool.GetPage(it.tid, pid, ReadOnly)
		if err != nil {
			return nil, false, err
		}
		it.cur = p.Iterator()
	}
}
