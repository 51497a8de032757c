package tuple

import (
	"encoding/binary"
	"fmt"
)

// Field is a single typed value stored in a Tuple.
type Field interface {
	Type() FieldType
	// Encode appends this field's fixed-width wire image to buf.
	Encode(buf []byte) []byte
	fmt.Stringer
}

// IntField is a 4-byte signed big-endian integer field.
type IntField struct {
	Value int32
}

func (IntField) Type() FieldType { return IntType }

func (f IntField) Encode(buf []byte) []byte {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], uint32(f.Value))
	return append(buf, tmp[:]...)
}

func (f IntField) String() string { return fmt.Sprintf("%d", f.Value) }

// DecodeIntField reads a 4-byte big-endian integer field from the front of data.
func DecodeIntField(data []byte) IntField {
	return IntField{Value: int32(binary.BigEndian.Uint32(data[:4]))}
}

// StringField is a length-prefixed, fixed-capacity string field: a 4-byte
// big-endian length followed by StringLength bytes of which only the first
// Length are meaningful.
type StringField struct {
	Value string
}

func (StringField) Type() FieldType { return StringType }

func (f StringField) Encode(buf []byte) []byte {
	value := f.Value
	if len(value) > StringLength {
		value = value[:StringLength]
	}
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(value)))
	buf = append(buf, lenBuf[:]...)
	payload := make([]byte, StringLength)
	copy(payload, value)
	return append(buf, payload...)
}

func (f StringField) String() string { return f.Value }

// DecodeStringField reads a length-prefixed fixed-capacity string field from
// the front of data.
func DecodeStringField(data []byte) StringField {
	n := binary.BigEndian.Uint32(data[:4])
	if int(n) > StringLength {
		n = StringLength
	}
	payload := data[4 : 4+StringLength]
	return StringField{Value: string(payload[:n])}
}
