// this code is from https://github.com/brunocalza/go-bustub
// there is license and copyright notice in licenses/go-bustub dir

package txn

import (
	"fmt"
	"sync/atomic"
)

// ID is an opaque, monotonically increasing transaction identifier.
// It owns no resources; equality is by value.
type ID int64

var nextID int64

// NewID allocates a fresh, never-before-issued ID.
func NewID() ID {
	return ID(atomic.AddInt64(&nextID, 1))
}

func (id ID) String() string {
	return fmt.Sprintf("txn#%d", int64(id))
}
