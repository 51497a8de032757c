// Package catalog is the system's table directory: the mapping from a
// table id to the on-disk file backing it and the name it was registered
// under. It is grounded on simpledb's Catalog (see original_source/ for the
// Java original this generalizes away from a single global instance).
package catalog

import (
	"fmt"
	"sync"

	"github.com/kavedb/ledgerdb/concurrency/txn"
	"github.com/kavedb/ledgerdb/storage/dberrors"
	"github.com/kavedb/ledgerdb/storage/heap"
	"github.com/kavedb/ledgerdb/storage/pageid"
	"github.com/kavedb/ledgerdb/storage/tuple"
)

// DbFile is the on-disk interface a buffer pool drives pages through: a
// heap.File satisfies it directly, and any future file organization (e.g.
// a sorted or indexed file) could too.
type DbFile interface {
	ID() pageid.TableID
	TupleDesc() *tuple.TupleDesc
	ReadPage(pid pageid.PageID) (*heap.Page, error)
	WritePage(p *heap.Page) error
	InsertTuple(tid txn.ID, t *tuple.Tuple, pool heap.Pool) ([]*heap.Page, error)
	DeleteTuple(tid txn.ID, t *tuple.Tuple, pool heap.Pool) ([]*heap.Page, error)
	Iterator(tid txn.ID, pool heap.Pool) *heap.FileIterator
	NumPages() (int, error)
}

// Catalog resolves table ids to the files and names registered for them.
type Catalog interface {
	AddTable(file DbFile, name string)
	GetDatabaseFile(tableID pageid.TableID) (DbFile, error)
	GetTableName(tableID pageid.TableID) (string, error)
	TableIDs() []pageid.TableID
}

// simpleCatalog is an in-memory Catalog; every table lives for the
// lifetime of the process that registered it.
type simpleCatalog struct {
	mu    sync.RWMutex
	files map[pageid.TableID]DbFile
	names map[pageid.TableID]string
}

// NewCatalog returns an empty Catalog.
func NewCatalog() Catalog {
	return &simpleCatalog{
		files: make(map[pageid.TableID]DbFile),
		names: make(map[pageid.TableID]string),
	}
}

func (c *simpleCatalog) AddTable(file DbFile, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.files[file.ID()] = file
	c.names[file.ID()] = name
}

func (c *simpleCatalog) GetDatabaseFile(tableID pageid.TableID) (DbFile, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	f, ok := c.files[tableID]
	if !ok {
		return nil, fmt.Errorf("catalog: no table with id %d: %w", tableID, dberrors.ErrUnknownTable)
	}
	return f, nil
}

func (c *simpleCatalog) GetTableName(tableID pageid.TableID) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	name, ok := c.names[tableID]
	if !ok {
		return "", fmt.Errorf("catalog: no table with id %d: %w", tableID, dberrors.ErrUnknownTable)
	}
	return name, nil
}

func (c *simpleCatalog) TableIDs() []pageid.TableID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := make([]pageid.TableID, 0, len(c.files))
	for id := range c.files {
		ids = append(ids, id)
	}
	return ids
}
