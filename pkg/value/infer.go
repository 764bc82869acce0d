package value

// primitivePredicates are tested in order; the first match wins.
var primitivePredicates = []struct {
	kind TypeKind
	is   func(any) bool
}{
	{TypeBoolean, func(v any) bool { _, ok := v.(bool); return ok }},
	{TypeInt, func(v any) bool {
		switch v.(type) {
		case int, int8, int16, int32, uint8, uint16:
			return true
		}
		return false
	}},
	{TypeLong, func(v any) bool {
		switch v.(type) {
		case int64, uint, uint32, uint64:
			return true
		}
		return false
	}},
	{TypeFloat, func(v any) bool { _, ok := v.(float32); return ok }},
	{TypeDouble, func(v any) bool { _, ok := v.(float64); return ok }},
	{TypeString, func(v any) bool { _, ok := v.(string); return ok }},
}

// PrimitiveKind classifies a raw scalar. Values matching no predicate are Any.
func PrimitiveKind(raw any) TypeKind {
	for _, p := range primitivePredicates {
		if p.is(raw) {
			return p.kind
		}
	}
	return TypeAny
}

// Infer derives the structural type of v. It is total and pure.
func Infer(v Value) DataType {
	switch val := v.(type) {
	case nil, Null:
		return Simple(TypeNull)
	case *DirectoryValue:
		return Simple(TypeDirectory)
	case *FileValue:
		return Simple(TypeFile)
	case Array:
		items := make([]DataType, len(val))
		for i, item := range val {
			items[i] = Infer(item)
		}
		return ArrayOf(NewUnion(items...))
	case *Record:
		return InferRecord(val)
	case Primitive:
		return Simple(PrimitiveKind(val.Raw))
	default:
		return Simple(TypeAny)
	}
}

// InferRecord types every field of r independently, keeping field order.
func InferRecord(r *Record) DataType {
	out := DataType{Kind: TypeRecord, Fields: make([]FieldType, 0, r.Len())}
	if r == nil {
		return out
	}
	for _, f := range r.Fields {
		out.Fields = append(out.Fields, FieldType{Name: f.Name, Type: Infer(f.Value)})
	}
	return out
}
