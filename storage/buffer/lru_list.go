// this code is adapted from https://github.com/brunocalza/go-bustub's
// circularList (storage/buffer/circular_list.go): same intrusive doubly
// linked list plus lookup map shape, rewired from a circular clock order
// into a strict head(MRU)/tail(LRU) order.
// there is license and copyright notice in licenses/go-bustub dir

package buffer

import "github.com/kavedb/ledgerdb/storage/pageid"

type lruNode struct {
	pid        pageid.PageID
	prev, next *lruNode
}

// lruList tracks recency order over a bounded set of resident pages. touch
// is O(1) whether pid is already present or new; the eviction scan walks
// from the tail (least recently used) toward the head.
type lruList struct {
	head, tail *lruNode
	nodes      map[pageid.PageID]*lruNode
	size       int
}

func newLRUList() *lruList {
	return &lruList{nodes: make(map[pageid.PageID]*lruNode)}
}

// touch marks pid as most recently used, moving it to the head. If pid is
// not tracked yet it is inserted at the head.
func (l *lruList) touch(pid pageid.PageID) {
	if n, ok := l.nodes[pid]; ok {
		l.unlink(n)
		l.pushFront(n)
		return
	}
	n := &lruNode{pid: pid}
	l.nodes[pid] = n
	l.pushFront(n)
	l.size++
}

// remove drops pid from the list entirely. A no-op if pid isn't tracked.
func (l *lruList) remove(pid pageid.PageID) {
	n, ok := l.nodes[pid]
	if !ok {
		return
	}
	l.unlink(n)
	delete(l.nodes, pid)
	l.size--
}

// victims returns resident page ids ordered from least to most recently
// used, the order the buffer pool scans looking for a clean page to evict.
func (l *lruList) victims() []pageid.PageID {
	out := make([]pageid.PageID, 0, l.size)
	for n := l.tail; n != nil; n = n.prev {
		out = append(out, n.pid)
	}
	return out
}

func (l *lruList) pushFront(n *lruNode) {
	n.prev = nil
	n.next = l.head
	if l.head != nil {
		l.head.prev = n
	}
	l.head = n
	if l.tail == nil {
		l.tail = n
	}
}

func (l *lruList) unlink(n *lruNode) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		l.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		l.tail = n.prev
	}
	n.prev, n.next = nil, nil
}
