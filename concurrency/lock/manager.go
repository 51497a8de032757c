// Package lock implements the per-page lock manager: a state machine with
// three states (unlocked, shared by some set of transactions, exclusive to
// one transaction) and randomized-timeout deadlock avoidance in place of a
// wait-for graph, grounded on the original storage/access.LockManager this
// was rewritten from (see original_source/ BufferPool.java for the timeout
// constants this preserves) and on goostub's condition-variable wait style.
package lock

import (
	"math/rand"
	"sync"
	"time"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/kavedb/ledgerdb/common"
	"github.com/kavedb/ledgerdb/concurrency/txn"
	"github.com/kavedb/ledgerdb/storage/dberrors"
	"github.com/kavedb/ledgerdb/storage/pageid"
)

type state int

const (
	unlocked state = iota
	shared
	exclusive
)

// pageLock is the state machine for one page. holders is populated only in
// the shared state; exclusiveHolder is meaningful only in the exclusive
// state. Waiters block on cond, woken by a release, by another waiter
// timing out, or by their own timer.
type pageLock struct {
	cond *sync.Cond

	state           state
	holders         mapset.Set[txn.ID]
	exclusiveHolder txn.ID
}

func newPageLock() *pageLock {
	return &pageLock{
		cond:    sync.NewCond(&sync.Mutex{}),
		state:   unlocked,
		holders: mapset.NewThreadUnsafeSet[txn.ID](),
	}
}

// Manager owns one pageLock per page that has ever been locked. It never
// removes entries, matching the lifetime of the pages themselves: a small,
// bounded amount of bookkeeping per page that existed at some point.
type Manager struct {
	mu    common.Mutex
	pages map[pageid.PageID]*pageLock

	// abort is invoked, outside any internal lock, when a waiter times out.
	// The buffer pool wires this to its own TransactionComplete(tid, false)
	// at construction time so this package never imports the buffer package.
	abort func(tid txn.ID)
}

// NewManager returns an empty Manager. abort is called with the id of any
// transaction whose wait times out, before AcquireShared/AcquireExclusive
// return dberrors.ErrTxnAborted.
func NewManager(abort func(tid txn.ID)) *Manager {
	return &Manager{pages: make(map[pageid.PageID]*pageLock), abort: abort}
}

func (m *Manager) lockFor(pid pageid.PageID) *pageLock {
	m.mu.Lock()
	defer m.mu.Unlock()
	lk, ok := m.pages[pid]
	if !ok {
		lk = newPageLock()
		m.pages[pid] = lk
	}
	return lk
}

// randDeadline returns a deadline min+[0,spread) in the future.
func randDeadline(min, spread time.Duration) time.Time {
	return time.Now().Add(min + time.Duration(rand.Int63n(int64(spread))))
}

// waitUntil blocks on lk.cond until either another call broadcasts it or
// deadline passes, whichever first. The caller holds lk.cond.L.
func waitUntil(lk *pageLock, deadline time.Time) {
	timer := time.AfterFunc(time.Until(deadline), func() {
		lk.cond.L.Lock()
		lk.cond.Broadcast()
		lk.cond.L.Unlock()
	})
	defer timer.Stop()
	lk.cond.Wait()
}

// AcquireShared blocks until tid holds a shared (or stronger) lock on pid,
// or its randomized timeout elapses, in which case it aborts tid and
// returns dberrors.ErrTxnAborted.
func (m *Manager) AcquireShared(tid txn.ID, pid pageid.PageID) error {
	lk := m.lockFor(pid)
	lk.cond.L.Lock()
	defer lk.cond.L.Unlock()

	if lk.state == exclusive && lk.exclusiveHolder == tid {
		return nil
	}
	if lk.state == shared && lk.holders.Contains(tid) {
		return nil
	}

	deadline := randDeadline(common.SharedLockTimeoutMin, common.SharedLockTimeoutSpread)
	for lk.state == exclusive {
		if !time.Now().Before(deadline) {
			m.abortAndSignal(lk, tid)
			return dberrors.ErrTxnAborted
		}
		waitUntil(lk, deadline)
	}

	if lk.state == unlocked {
		lk.state = shared
	}
	lk.holders.Add(tid)
	return nil
}

// AcquireExclusive blocks until tid holds an exclusive lock on pid, or its
// randomized timeout elapses, in which case it aborts tid and returns
// dberrors.ErrTxnAborted. A transaction that is the sole shared holder of
// pid upgrades in place without waiting; a transaction that shares the
// page with others must wait for them to release, which can time out the
// same way any other exclusive wait can (the upgrade-deadlock case this
// preserves rather than detects).
func (m *Manager) AcquireExclusive(tid txn.ID, pid pageid.PageID) error {
	lk := m.lockFor(pid)
	lk.cond.L.Lock()
	defer lk.cond.L.Unlock()

	if lk.state == exclusive && lk.exclusiveHolder == tid {
		return nil
	}

	deadline := randDeadline(common.ExclusiveLockTimeoutMin, common.ExclusiveLockTimeoutSpread)
	for !canGrantExclusive(lk, tid) {
		if !time.Now().Before(deadline) {
			m.abortAndSignal(lk, tid)
			return dberrors.ErrTxnAborted
		}
		waitUntil(lk, deadline)
	}

	lk.holders.Remove(tid)
	lk.state = exclusive
	lk.exclusiveHolder = tid
	return nil
}

func canGrantExclusive(lk *pageLock, tid txn.ID) bool {
	switch lk.state {
	case unlocked:
		return true
	case shared:
		return lk.holders.Cardinality() == 1 && lk.holders.Contains(tid)
	default:
		return false
	}
}

// abortAndSignal wakes every other waiter on lk so they can re-check
// whether they now have room to proceed, then notifies the buffer pool that
// tid aborted (this path never itself changes page state). The caller holds
// lk.cond.L; it is released while the abort callback runs and held again
// on return.
func (m *Manager) abortAndSignal(lk *pageLock, tid txn.ID) {
	common.Log.WithField("txn", tid).Warn("lock acquisition timed out, self-aborting")
	lk.cond.Broadcast()
	if m.abort != nil {
		lk.cond.L.Unlock()
		m.abort(tid)
		lk.cond.L.Lock()
	}
}

// Release drops tid's hold on pid, if any. A no-op if tid holds nothing
// there.
func (m *Manager) Release(tid txn.ID, pid pageid.PageID) {
	lk := m.lockFor(pid)
	lk.cond.L.Lock()
	defer lk.cond.L.Unlock()
	m.releaseLocked(lk, tid)
}

func (m *Manager) releaseLocked(lk *pageLock, tid txn.ID) {
	switch lk.state {
	case exclusive:
		if lk.exclusiveHolder == tid {
			lk.exclusiveHolder = 0
			lk.state = unlocked
			lk.cond.Broadcast()
		}
	case shared:
		if lk.holders.Contains(tid) {
			lk.holders.Remove(tid)
			if lk.holders.Cardinality() == 0 {
				lk.state = unlocked
			}
			lk.cond.Broadcast()
		}
	}
}

// ReleaseAll drops every lock tid holds, across all pages. Used on commit
// and abort.
func (m *Manager) ReleaseAll(tid txn.ID) {
	m.mu.Lock()
	pages := make([]*pageLock, 0, len(m.pages))
	for _, lk := range m.pages {
		pages = append(pages, lk)
	}
	m.mu.Unlock()

	for _, lk := range pages {
		lk.cond.L.Lock()
		m.releaseLocked(lk, tid)
		lk.cond.L.Unlock()
	}
}

// HoldsLock reports whether tid holds any lock (shared or exclusive) on
// pid.
func (m *Manager) HoldsLock(tid txn.ID, pid pageid.PageID) bool {
	lk := m.lockFor(pid)
	lk.cond.L.Lock()
	defer lk.cond.L.Unlock()
	switch lk.state {
	case exclusive:
		return lk.exclusiveHolder == tid
	case shared:
		return lk.holders.Contains(tid)
	default:
		return false
	}
}

// PagesHeldBy returns every page tid currently holds a lock on. Used by the
// buffer pool when a transaction completes, to find which pages to flush
// or discard.
func (m *Manager) PagesHeldBy(tid txn.ID) []pageid.PageID {
	m.mu.Lock()
	snapshot := make(map[pageid.PageID]*pageLock, len(m.pages))
	for pid, lk := range m.pages {
		snapshot[pid] = lk
	}
	m.mu.Unlock()

	var held []pageid.PageID
	for pid, lk := range snapshot {
		lk.cond.L.Lock()
		if (lk.state == exclusive && lk.exclusiveHolder == tid) ||
			(lk.state == shared && lk.holders.Contains(tid)) {
			held = append(held, pid)
		}
		lk.cond.L.Unlock()
	}
	return held
}
