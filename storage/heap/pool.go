package heap

import (
	"github.com/kavedb/ledgerdb/concurrency/txn"
	"github.com/kavedb/ledgerdb/storage/pageid"
)

// Permission is the access mode a caller requests a page under.
type Permission int

const (
	// ReadOnly acquires a shared lock.
	ReadOnly Permission = iota
	// ReadWrite acquires an exclusive lock.
	ReadWrite
)

// Pool is the subset of the buffer pool a File needs to fault pages in
// under the right lock. Defined here (not in the buffer package) so File
// depends only on this narrow interface and the buffer package can depend
// on File/Page without an import cycle.
type Pool interface {
	GetPage(tid txn.ID, pid pageid.PageID, perm Permission) (*Page, error)
}
