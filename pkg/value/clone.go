package value

import (
	"fmt"
	"reflect"
)

// Clone returns a deep copy of v. The copy shares no mutable substructure
// with the original.
func Clone(v Value) Value {
	switch val := v.(type) {
	case nil:
		return nil
	case Null:
		return Null{}
	case Primitive:
		return Primitive{Raw: val.Raw}
	case *FileValue:
		return CloneFile(val)
	case *DirectoryValue:
		return CloneDirectory(val)
	case Array:
		if val == nil {
			return Array(nil)
		}
		out := make(Array, len(val))
		for i, item := range val {
			out[i] = Clone(item)
		}
		return out
	case *Record:
		if val == nil {
			return (*Record)(nil)
		}
		out := &Record{Fields: make([]Field, len(val.Fields))}
		for i, f := range val.Fields {
			out.Fields[i] = Field{Name: f.Name, Value: Clone(f.Value)}
		}
		return out
	default:
		panic(fmt.Sprintf("value: unknown variant %T", v))
	}
}

// CloneFile deep-copies a File including its secondary files.
func CloneFile(f *FileValue) *FileValue {
	if f == nil {
		return nil
	}
	out := *f
	out.FileBase = cloneBase(f.FileBase)
	return &out
}

// CloneDirectory deep-copies a Directory including its listing.
func CloneDirectory(d *DirectoryValue) *DirectoryValue {
	if d == nil {
		return nil
	}
	out := *d
	out.FileBase = cloneBase(d.FileBase)
	out.Listing = cloneFileLikes(d.Listing)
	return &out
}

// CloneFileLike deep-copies either file-shaped variant.
func CloneFileLike(f FileLike) FileLike {
	switch v := f.(type) {
	case *FileValue:
		return CloneFile(v)
	case *DirectoryValue:
		return CloneDirectory(v)
	case nil:
		return nil
	default:
		panic(fmt.Sprintf("value: unknown file variant %T", f))
	}
}

func cloneBase(b FileBase) FileBase {
	b.SecondaryFiles = cloneFileLikes(b.SecondaryFiles)
	return b
}

func cloneFileLikes(in []FileLike) []FileLike {
	if in == nil {
		return nil
	}
	out := make([]FileLike, len(in))
	for i, f := range in {
		out[i] = CloneFileLike(f)
	}
	return out
}

// Equal reports whether a and b are structurally equal.
func Equal(a, b Value) bool {
	switch x := a.(type) {
	case nil:
		return b == nil
	case Null:
		_, ok := b.(Null)
		return ok
	case Primitive:
		y, ok := b.(Primitive)
		return ok && reflect.DeepEqual(x.Raw, y.Raw)
	case *FileValue:
		y, ok := b.(*FileValue)
		if !ok || (x == nil) != (y == nil) {
			return false
		}
		if x == nil {
			return true
		}
		return x.Nameroot == y.Nameroot && x.Nameext == y.Nameext &&
			x.Checksum == y.Checksum && x.Format == y.Format &&
			x.Contents == y.Contents && x.Size == y.Size &&
			baseEqual(&x.FileBase, &y.FileBase)
	case *DirectoryValue:
		y, ok := b.(*DirectoryValue)
		if !ok || (x == nil) != (y == nil) {
			return false
		}
		if x == nil {
			return true
		}
		return baseEqual(&x.FileBase, &y.FileBase) && fileLikesEqual(x.Listing, y.Listing)
	case Array:
		y, ok := b.(Array)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	case *Record:
		y, ok := b.(*Record)
		if !ok || x.Len() != y.Len() {
			return false
		}
		for i := 0; i < x.Len(); i++ {
			if x.Fields[i].Name != y.Fields[i].Name || !Equal(x.Fields[i].Value, y.Fields[i].Value) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func baseEqual(x, y *FileBase) bool {
	return x.Path == y.Path && x.Location == y.Location &&
		x.Dirname == y.Dirname && x.Basename == y.Basename &&
		fileLikesEqual(x.SecondaryFiles, y.SecondaryFiles)
}

func fileLikesEqual(x, y []FileLike) bool {
	if len(x) != len(y) {
		return false
	}
	for i := range x {
		if !Equal(x[i], y[i]) {
			return false
		}
	}
	return true
}
