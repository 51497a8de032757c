// this code is grounded on https://github.com/ryogrid/SamehadaDB's
// storage/buffer.BufferPoolManager, rewritten from its Clock replacement
// policy to strict LRU and from pin-count eviction to NO-STEAL/FORCE
// transactional eviction, per original_source/ BufferPool.java.
// there is license and copyright notice in licenses/SamehadaDB dir

package buffer

import (
	"github.com/kavedb/ledgerdb/catalog"
	"github.com/kavedb/ledgerdb/common"
	"github.com/kavedb/ledgerdb/concurrency/lock"
	"github.com/kavedb/ledgerdb/concurrency/txn"
	"github.com/kavedb/ledgerdb/storage/dberrors"
	"github.com/kavedb/ledgerdb/storage/heap"
	"github.com/kavedb/ledgerdb/storage/pageid"
	"github.com/kavedb/ledgerdb/storage/tuple"
)

// Pool is the shared, fixed-capacity cache of heap pages every transaction
// reads and writes through. It never evicts a dirty page (NO-STEAL) and
// force-flushes a committing transaction's dirty pages before releasing
// its locks (FORCE), so a page on disk is never ahead of a page some live
// transaction has only partially written.
type Pool struct {
	mu       common.Mutex
	capacity int
	frames   map[pageid.PageID]*heap.Page
	list     *lruList

	catalog catalog.Catalog
	lockMgr *lock.Manager
}

// NewDefaultPool returns a Pool sized to common.DefaultPages, the capacity a
// caller gets when it has no specific reason to pick its own.
func NewDefaultPool(cat catalog.Catalog) *Pool {
	return NewPool(common.DefaultPages, cat)
}

// NewPool returns a Pool backed by cat, holding at most capacity pages at
// once.
func NewPool(capacity int, cat catalog.Catalog) *Pool {
	common.Assert(capacity > 0, "buffer pool capacity must be positive")
	p := &Pool{
		capacity: capacity,
		frames:   make(map[pageid.PageID]*heap.Page),
		list:     newLRUList(),
		catalog:  cat,
	}
	p.lockMgr = lock.NewManager(func(tid txn.ID) {
		p.TransactionComplete(tid, false)
	})
	return p
}

// GetPage returns pid's page, locked under perm on tid's behalf. It faults
// the page in from its table's file on a miss, evicting a clean resident
// page first if the pool is already at capacity. Returns
// dberrors.ErrTxnAborted if the lock could not be acquired in time, or
// dberrors.ErrNoSpace if the pool is full of dirty pages with no clean
// victim.
func (p *Pool) GetPage(tid txn.ID, pid pageid.PageID, perm heap.Permission) (*heap.Page, error) {
	var err error
	if perm == heap.ReadWrite {
		err = p.lockMgr.AcquireExclusive(tid, pid)
	} else {
		err = p.lockMgr.AcquireShared(tid, pid)
	}
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if page, ok := p.frames[pid]; ok {
		p.list.touch(pid)
		return page, nil
	}

	if len(p.frames) >= p.capacity {
		if !p.evictLocked() {
			return nil, dberrors.ErrNoSpace
		}
	}

	file, err := p.catalog.GetDatabaseFile(pid.TableID)
	if err != nil {
		return nil, err
	}
	page, err := file.ReadPage(pid)
	if err != nil {
		return nil, err
	}

	p.frames[pid] = page
	p.list.touch(pid)
	return page, nil
}

// evictLocked scans resident pages from least to most recently used and
// drops the first clean one it finds. Dirty pages are never chosen: under
// NO-STEAL the only way a dirty page leaves the pool is its owning
// transaction completing. Returns false if every resident page is dirty.
// Caller must hold p.mu.
func (p *Pool) evictLocked() bool {
	for _, pid := range p.list.victims() {
		page := p.frames[pid]
		if page.IsDirty() != nil {
			continue
		}
		delete(p.frames, pid)
		p.list.remove(pid)
		common.Debugf("buffer: evicted clean page %s", pid)
		return true
	}
	return false
}

// InsertTuple resolves tableID to its file and inserts t through it,
// acquiring whatever page locks the insert needs via Pool itself.
func (p *Pool) InsertTuple(tid txn.ID, tableID pageid.TableID, t *tuple.Tuple) ([]*heap.Page, error) {
	file, err := p.catalog.GetDatabaseFile(tableID)
	if err != nil {
		return nil, err
	}
	return file.InsertTuple(tid, t, p)
}

// DeleteTuple resolves t's table from its record id and deletes it through
// the owning file.
func (p *Pool) DeleteTuple(tid txn.ID, t *tuple.Tuple) ([]*heap.Page, error) {
	if t.RecordID == nil {
		return nil, dberrors.ErrTupleNotFound
	}
	file, err := p.catalog.GetDatabaseFile(t.RecordID.PageID.TableID)
	if err != nil {
		return nil, err
	}
	return file.DeleteTuple(tid, t, p)
}

// UnsafeReleasePage drops tid's lock on pid without going through commit
// or abort bookkeeping. Intended for read-only scans that want to release
// a page as soon as they're done with it rather than holding the lock to
// end of transaction.
func (p *Pool) UnsafeReleasePage(tid txn.ID, pid pageid.PageID) {
	p.lockMgr.Release(tid, pid)
}

// HoldsLock reports whether tid currently holds any lock on pid.
func (p *Pool) HoldsLock(tid txn.ID, pid pageid.PageID) bool {
	return p.lockMgr.HoldsLock(tid, pid)
}

// TransactionComplete ends tid's transaction. On commit, every page it
// left dirty is force-flushed to disk and marked clean before its locks
// are released. On abort, every page it left dirty is dropped from the
// pool so the next fault re-reads the unmodified image from disk.
func (p *Pool) TransactionComplete(tid txn.ID, commit bool) {
	common.Log.WithField("txn", tid).WithField("commit", commit).Debug("completing transaction")
	pages := p.lockMgr.PagesHeldBy(tid)

	for _, pid := range pages {
		p.mu.Lock()
		page, ok := p.frames[pid]
		p.mu.Unlock()
		if !ok {
			continue
		}
		if page.IsDirty() == nil {
			continue
		}

		if commit {
			file, err := p.catalog.GetDatabaseFile(pid.TableID)
			if err == nil {
				if err := file.WritePage(page); err == nil {
					page.MarkDirty(false, tid)
				}
			}
		} else {
			p.mu.Lock()
			delete(p.frames, pid)
			p.list.remove(pid)
			p.mu.Unlock()
		}
	}

	p.lockMgr.ReleaseAll(tid)
}

// FlushAllPages force-writes every dirty resident page to disk, regardless
// of which transaction owns it. Intended for an orderly shutdown, not for
// use while transactions are still running.
func (p *Pool) FlushAllPages() error {
	p.mu.Lock()
	pages := make([]*heap.Page, 0, len(p.frames))
	for _, page := range p.frames {
		pages = append(pages, page)
	}
	p.mu.Unlock()

	for _, page := range pages {
		if page.IsDirty() == nil {
			continue
		}
		file, err := p.catalog.GetDatabaseFile(page.ID().TableID)
		if err != nil {
			return err
		}
		if err := file.WritePage(page); err != nil {
			return err
		}
		page.MarkDirty(false, 0)
	}
	return nil
}

// DiscardPage drops pid from the pool without flushing it, regardless of
// dirty state. Used by tests that want to force the next GetPage to read
// fresh from disk.
func (p *Pool) DiscardPage(pid pageid.PageID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.frames, pid)
	p.list.remove(pid)
}
