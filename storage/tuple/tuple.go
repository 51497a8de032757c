package tuple

import (
	"fmt"

	"github.com/kavedb/ledgerdb/storage/pageid"
	"github.com/kavedb/ledgerdb/storage/dberrors"
)

// Tuple is an ordered sequence of field values conforming to a TupleDesc.
// RecordID is nil until the tuple has been materialized on a page by
// heap.Page.InsertTuple.
type Tuple struct {
	Desc     *TupleDesc
	Fields   []Field
	RecordID *pageid.RecordID
}

// NewTuple builds an unmaterialized tuple. The caller is responsible for
// ensuring fields conforms to desc; Encode does not check, and a mismatched
// tuple encodes to an image whose width differs from desc.TupleSize().
func NewTuple(desc *TupleDesc, fields []Field) *Tuple {
	return &Tuple{Desc: desc, Fields: fields}
}

// CheckSchema reports dberrors.ErrSchemaMismatch if the tuple's field types
// do not match desc positionally.
func (t *Tuple) CheckSchema(desc *TupleDesc) error {
	if len(t.Fields) != len(desc.Fields) {
		return dberrors.ErrSchemaMismatch
	}
	for i, f := range t.Fields {
		if f.Type() != desc.Fields[i].Type {
			return dberrors.ErrSchemaMismatch
		}
	}
	return nil
}

// Encode serializes the tuple to its fixed-width on-disk image, per the
// field order and widths defined by desc.
func (t *Tuple) Encode(desc *TupleDesc) []byte {
	buf := make([]byte, 0, desc.TupleSize())
	for _, f := range t.Fields {
		buf = f.Encode(buf)
	}
	return buf
}

// Decode parses a tuple image of exactly desc.TupleSize() bytes.
func Decode(desc *TupleDesc, data []byte) *Tuple {
	fields := make([]Field, len(desc.Fields))
	offset := 0
	for i, fd := range desc.Fields {
		width := fd.Type.Size()
		switch fd.Type {
		case IntType:
			fields[i] = DecodeIntField(data[offset : offset+width])
		case StringType:
			fields[i] = DecodeStringField(data[offset : offset+width])
		}
		offset += width
	}
	return &Tuple{Desc: desc, Fields: fields}
}

func (t *Tuple) String() string {
	return fmt.Sprintf("%v", t.Fields)
}
