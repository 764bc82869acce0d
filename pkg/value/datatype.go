package value

import (
	"sort"
	"strings"
)

// TypeKind enumerates the structural types a value can have.
type TypeKind int

const (
	TypeAny TypeKind = iota
	TypeNull
	TypeBoolean
	TypeInt
	TypeLong
	TypeFloat
	TypeDouble
	TypeString
	TypeFile
	TypeDirectory
	TypeArray
	TypeRecord
	TypeUnion
	TypeEmpty
)

var kindNames = map[TypeKind]string{
	TypeAny:       "Any",
	TypeNull:      "null",
	TypeBoolean:   "boolean",
	TypeInt:       "int",
	TypeLong:      "long",
	TypeFloat:     "float",
	TypeDouble:    "double",
	TypeString:    "string",
	TypeFile:      "File",
	TypeDirectory: "Directory",
	TypeArray:     "array",
	TypeRecord:    "record",
	TypeUnion:     "union",
	TypeEmpty:     "empty",
}

func (k TypeKind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "unknown"
}

// IsPrimitive reports whether k is a scalar kind.
func (k TypeKind) IsPrimitive() bool {
	switch k {
	case TypeBoolean, TypeInt, TypeLong, TypeFloat, TypeDouble, TypeString:
		return true
	}
	return false
}

// DataType is a structural type tree.
//
// Items is set for arrays, Fields for records and Members for unions.
type DataType struct {
	Kind    TypeKind
	Items   *DataType
	Fields  []FieldType
	Members []DataType
}

// FieldType is one named field of a record type.
type FieldType struct {
	Name string
	Type DataType
}

// Simple returns a DataType with no nested structure.
func Simple(k TypeKind) DataType {
	return DataType{Kind: k}
}

// ArrayOf returns array<items>.
func ArrayOf(items DataType) DataType {
	return DataType{Kind: TypeArray, Items: &items}
}

// RecordOf returns a record type with the given fields in order.
func RecordOf(fields ...FieldType) DataType {
	return DataType{Kind: TypeRecord, Fields: fields}
}

// NewUnion collapses members into a set. No members yields Empty, a single
// distinct member yields that member, anything else a Union whose members are
// ordered by canonical form.
func NewUnion(members ...DataType) DataType {
	seen := make(map[string]DataType, len(members))
	for _, m := range members {
		if m.Kind == TypeUnion {
			for _, inner := range m.Members {
				seen[inner.String()] = inner
			}
			continue
		}
		seen[m.String()] = m
	}
	switch len(seen) {
	case 0:
		return Simple(TypeEmpty)
	case 1:
		for _, m := range seen {
			return m
		}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := DataType{Kind: TypeUnion, Members: make([]DataType, len(keys))}
	for i, k := range keys {
		out.Members[i] = seen[k]
	}
	return out
}

// String renders the canonical form, e.g. "array<File>" or
// "record{a:int,b:union<int|string>}".
func (t DataType) String() string {
	var sb strings.Builder
	t.write(&sb)
	return sb.String()
}

func (t DataType) write(sb *strings.Builder) {
	switch t.Kind {
	case TypeArray:
		sb.WriteString("array<")
		if t.Items != nil {
			t.Items.write(sb)
		}
		sb.WriteByte('>')
	case TypeRecord:
		sb.WriteString("record{")
		for i, f := range t.Fields {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(f.Name)
			sb.WriteByte(':')
			f.Type.write(sb)
		}
		sb.WriteByte('}')
	case TypeUnion:
		sb.WriteString("union<")
		for i, m := range t.Members {
			if i > 0 {
				sb.WriteByte('|')
			}
			m.write(sb)
		}
		sb.WriteByte('>')
	default:
		sb.WriteString(t.Kind.String())
	}
}

// Equal compares canonical forms.
func (t DataType) Equal(o DataType) bool {
	return t.String() == o.String()
}
