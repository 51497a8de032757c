// Package pageid holds the identifiers shared across the storage and
// concurrency layers: PageID (table, page number), RecordID (a page plus a
// slot), and the table-id derivation used when a heap file is opened.
package pageid

import (
	"fmt"
	"path/filepath"

	"github.com/spaolacci/murmur3"
)

// TableID identifies a heap file for the lifetime of the process. It is
// derived from the file's absolute path so the same file always maps to
// the same id across restarts, mirroring how a catalog would persist the
// mapping rather than reassigning ids on every open.
type TableID int64

// TableIDFromPath hashes the absolute form of path into a stable TableID.
// Two different paths collide with vanishing probability (64-bit murmur3);
// the same path always yields the same id.
func TableIDFromPath(path string) TableID {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return TableID(murmur3.Sum64([]byte(abs)))
}

// PageID identifies one page within one table. It is a plain value: two
// PageIDs with equal fields are equal, and it owns no resources.
type PageID struct {
	TableID TableID
	PageNo  int32
}

func (p PageID) String() string {
	return fmt.Sprintf("PageID{table:%d,page:%d}", p.TableID, p.PageNo)
}

// RecordID names one slot within one page.
type RecordID struct {
	PageID PageID
	Slot   uint32
}

func (r RecordID) String() string {
	return fmt.Sprintf("RecordID{%s,slot:%d}", r.PageID, r.Slot)
}
