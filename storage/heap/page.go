package heap

import (
	"github.com/kavedb/ledgerdb/common"
	"github.com/kavedb/ledgerdb/concurrency/txn"
	"github.com/kavedb/ledgerdb/storage/dberrors"
	"github.com/kavedb/ledgerdb/storage/pageid"
	"github.com/kavedb/ledgerdb/storage/tuple"
)

// Page is the in-memory image of one PAGE_SIZE-byte slotted page: a header
// bitmap of used slots followed by fixed-width tuple images. Layout is
// bit-exact and must round-trip unchanged through Data/NewPage for any slot
// the caller has not touched.
//
//	[ header bitmap, ceil(numSlots/8) bytes ][ slot 0 ][ slot 1 ] ... [ padding ]
//
// Bit i of the header, least-significant-bit first within its byte, is 1
// iff slot i holds a valid tuple image.
type Page struct {
	mu common.ReaderWriterLatch

	id   pageid.PageID
	desc *tuple.TupleDesc

	raw        []byte
	numSlots   int
	headerSize int
	tupleSize  int

	dirtyBy *txn.ID
}

// layout computes the slot count and header size for a tuple of the given
// width on a page of the given size, per:
//
//	numSlots   = floor(pageSize*8 / (tupleSize*8 + 1))
//	headerSize = ceil(numSlots / 8)
func layout(pageSize, tupleSize int) (numSlots, headerSize int) {
	numSlots = (pageSize * 8) / (tupleSize*8 + 1)
	headerSize = (numSlots + 7) / 8
	return
}

// NewPage parses a PAGE_SIZE byte image into a Page. data is retained
// (copied) verbatim; bytes belonging to slots this Page never writes to
// are preserved exactly as given, so re-serializing an untouched page
// reproduces data byte for byte.
func NewPage(id pageid.PageID, desc *tuple.TupleDesc, data []byte) (*Page, error) {
	pageSize := common.PageSize()
	if len(data) != pageSize {
		return nil, dberrors.ErrInvalidPage
	}
	numSlots, headerSize := layout(pageSize, desc.TupleSize())
	common.Assert(numSlots > 0, "tuple too wide to fit any slot on a page of this size")
	raw := make([]byte, pageSize)
	copy(raw, data)
	return &Page{
		mu:         common.NewRWLatch(),
		id:         id,
		desc:       desc,
		raw:        raw,
		numSlots:   numSlots,
		headerSize: headerSize,
		tupleSize:  desc.TupleSize(),
	}, nil
}

// EmptyPageData returns an all-zero PAGE_SIZE byte image, suitable for
// appending to a heap file when it grows.
func EmptyPageData() []byte {
	return make([]byte, common.PageSize())
}

// ID returns the page's identifier.
func (p *Page) ID() pageid.PageID { return p.id }

// Data serializes the page back to its exact PAGE_SIZE byte layout.
func (p *Page) Data() []byte {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]byte, len(p.raw))
	copy(out, p.raw)
	return out
}

// NumEmptySlots returns how many of the page's slots are currently unused.
func (p *Page) NumEmptySlots() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	n := 0
	for slot := 0; slot < p.numSlots; slot++ {
		if !p.slotUsedLocked(slot) {
			n++
		}
	}
	return n
}

func (p *Page) slotUsedLocked(slot int) bool {
	byteIdx := slot / 8
	bit := uint(slot % 8)
	return p.raw[byteIdx]&(1<<bit) != 0
}

func (p *Page) setSlotUsedLocked(slot int, used bool) {
	byteIdx := slot / 8
	bit := uint(slot % 8)
	if used {
		p.raw[byteIdx] |= 1 << bit
	} else {
		p.raw[byteIdx] &^= 1 << bit
	}
}

func (p *Page) slotOffset(slot int) int {
	return p.headerSize + slot*p.tupleSize
}

// InsertTuple writes t into the lowest-index free slot, sets t's record id,
// and returns dberrors.ErrSlotFull if the page is full.
func (p *Page) InsertTuple(t *tuple.Tuple) error {
	p.mu.WLock()
	defer p.mu.WUnlock()

	slot := -1
	for i := 0; i < p.numSlots; i++ {
		if !p.slotUsedLocked(i) {
			slot = i
			break
		}
	}
	if slot < 0 {
		return dberrors.ErrSlotFull
	}

	encoded := t.Encode(p.desc)
	off := p.slotOffset(slot)
	copy(p.raw[off:off+p.tupleSize], encoded)
	p.setSlotUsedLocked(slot, true)

	rid := pageid.RecordID{PageID: p.id, Slot: uint32(slot)}
	t.RecordID = &rid
	return nil
}

// DeleteTuple clears t's slot. It fails with dberrors.ErrTupleNotFound
// unless t.RecordID names this page and the slot is currently set. The
// underlying bytes are left untouched; only the header bit is cleared.
func (p *Page) DeleteTuple(t *tuple.Tuple) error {
	p.mu.WLock()
	defer p.mu.WUnlock()

	if t.RecordID == nil || t.RecordID.PageID != p.id {
		return dberrors.ErrTupleNotFound
	}
	slot := int(t.RecordID.Slot)
	if slot < 0 || slot >= p.numSlots || !p.slotUsedLocked(slot) {
		return dberrors.ErrTupleNotFound
	}
	p.setSlotUsedLocked(slot, false)
	return nil
}

// Iterator returns the page's tuples in ascending slot order. It is a
// snapshot of the page at call time, not a live view.
func (p *Page) Iterator() *Iterator {
	p.mu.RLock()
	defer p.mu.RUnlock()

	tuples := make([]*tuple.Tuple, 0, p.numSlots)
	for slot := 0; slot < p.numSlots; slot++ {
		if !p.slotUsedLocked(slot) {
			continue
		}
		off := p.slotOffset(slot)
		t := tuple.Decode(p.desc, p.raw[off:off+p.tupleSize])
		rid := pageid.RecordID{PageID: p.id, Slot: uint32(slot)}
		t.RecordID = &rid
		tuples = append(tuples, t)
	}
	return &Iterator{tuples: tuples}
}

// Iterator is a finite, non-restartable, already-materialized cursor over
// one page's tuples.
type Iterator struct {
	tuples []*tuple.Tuple
	pos    int
}

// Next returns the next tuple, or nil, false when exhausted.
func (it *Iterator) Next() (*tuple.Tuple, bool) {
	if it.pos >= len(it.tuples) {
		return nil, false
	}
	t := it.tuples[it.pos]
	it.pos++
	return t, true
}

// MarkDirty sets or clears the page's dirty owner. A page is dirty for at
// most one transaction at a time; the buffer pool is responsible for never
// calling MarkDirty(true, ...) with a different id while already dirty.
func (p *Page) MarkDirty(dirty bool, tid txn.ID) {
	p.mu.WLock()
	defer p.mu.WUnlock()
	if dirty {
		p.dirtyBy = &tid
	} else {
		p.dirtyBy = nil
	}
}

// IsDirty returns the owning transaction id, or nil if the page is clean.
func (p *Page) IsDirty() *txn.ID {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.dirtyBy
}

// TupleDesc returns the schema this page was parsed with.
func (p *Page) TupleDesc() *tuple.TupleDesc { return p.desc }

// NumSlots returns the page's fixed slot count, computed from its schema.
func (p *Page) NumSlots() int { return p.numSlots }
