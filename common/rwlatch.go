// this code is from https://github.com/pzhzqt/goostub
// there is license and copyright notice in licenses/goostub dir

package common

import "sync"

// ReaderWriterLatch guards a single in-memory page's bytes against
// concurrent mutation independent of the transactional page lock: the page
// lock serializes transactions, this serializes the goroutines of a single
// transaction's own pinned accesses against the buffer pool's bookkeeping.
type ReaderWriterLatch interface {
	WLock()
	WUnlock()
	RLock()
	RUnlock()
}

type readerWriterLatch struct {
	mutex sync.RWMutex
}

// NewRWLatch returns a ReaderWriterLatch backed by sync.RWMutex.
func NewRWLatch() ReaderWriterLatch {
	return &readerWriterLatch{}
}

func (l *readerWriterLatch) WLock()   { l.mutex.Lock() }
func (l *readerWriterLatch) WUnlock() { l.mutex.Unlock() }
func (l *readerWriterLatch) RLock()   { l.mutex.RLock() }
func (l *readerWriterLatch) RUnlock() { l.mutex.RUnlock() }
