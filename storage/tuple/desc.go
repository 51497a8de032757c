package tuple

import "fmt"

// FieldType is the closed set of field types a TupleDesc entry can hold.
type FieldType int

const (
	IntType FieldType = iota
	StringType
)

func (t FieldType) String() string {
	switch t {
	case IntType:
		return "INT"
	case StringType:
		return "STRING"
	default:
		return "UNKNOWN"
	}
}

// StringLength is the fixed on-disk capacity, in bytes, of a STRING field's
// character payload. The field's wire size is StringLength + 4 (a
// big-endian length prefix).
const StringLength = 128

// Size returns the fixed on-disk width, in bytes, of a field of this type.
func (t FieldType) Size() int {
	switch t {
	case IntType:
		return 4
	case StringType:
		return StringLength + 4
	default:
		panic("tuple: unknown field type")
	}
}

// FieldDesc names one column: its type and an optional display name.
type FieldDesc struct {
	Type FieldType
	Name string
}

// TupleDesc is the ordered schema every Tuple stored through it conforms to.
type TupleDesc struct {
	Fields []FieldDesc
}

// NewTupleDesc builds a descriptor from parallel type/name slices.
func NewTupleDesc(types []FieldType, names []string) *TupleDesc {
	fields := make([]FieldDesc, len(types))
	for i, t := range types {
		name := ""
		if i < len(names) {
			name = names[i]
		}
		fields[i] = FieldDesc{Type: t, Name: name}
	}
	return &TupleDesc{Fields: fields}
}

// NumFields returns the number of columns in the schema.
func (td *TupleDesc) NumFields() int { return len(td.Fields) }

// TupleSize is the fixed number of bytes one tuple image occupies on a page:
// the sum of every field's on-disk width.
func (td *TupleDesc) TupleSize() int {
	size := 0
	for _, f := range td.Fields {
		size += f.Type.Size()
	}
	return size
}

// Equal reports whether two descriptors have the same ordered field types.
// Field names are documentation only and do not participate in equality.
func (td *TupleDesc) Equal(other *TupleDesc) bool {
	if other == nil || len(td.Fields) != len(other.Fields) {
		return false
	}
	for i, f := range td.Fields {
		if f.Type != other.Fields[i].Type {
			return false
		}
	}
	return true
}

func (td *TupleDesc) String() string {
	return fmt.Sprintf("TupleDesc%v", td.Fields)
}
