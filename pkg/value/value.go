// Package value models the nested values bound to a CWL job: primitives,
// arrays, records, files and directories.
package value

import (
	"path"
	"strings"
)

// Value is one node of a job value tree. The set of implementations is
// closed: Null, Primitive, *FileValue, *DirectoryValue, Array and *Record.
type Value interface {
	isValue()
}

// Null is the absent value.
type Null struct{}

// Primitive wraps a scalar. Its kind is derived from the Go type of Raw.
type Primitive struct {
	Raw any
}

// Array is an ordered sequence of values.
type Array []Value

// Field is a single named entry of a Record.
type Field struct {
	Name  string
	Value Value
}

// Record is an ordered mapping from field name to value.
type Record struct {
	Fields []Field
}

func (Null) isValue()            {}
func (Primitive) isValue()       {}
func (Array) isValue()           {}
func (*Record) isValue()         {}
func (*FileValue) isValue()      {}
func (*DirectoryValue) isValue() {}

// Of wraps a Go scalar as a Primitive. nil becomes Null.
func Of(raw any) Value {
	if raw == nil {
		return Null{}
	}
	return Primitive{Raw: raw}
}

// NewRecord builds a record from the given fields, keeping their order.
func NewRecord(fields ...Field) *Record {
	return &Record{Fields: fields}
}

// Get returns the value stored under name.
func (r *Record) Get(name string) (Value, bool) {
	if r == nil {
		return nil, false
	}
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// Set replaces the value under name, appending a new field if it is missing.
func (r *Record) Set(name string, v Value) {
	for i := range r.Fields {
		if r.Fields[i].Name == name {
			r.Fields[i].Value = v
			return
		}
	}
	r.Fields = append(r.Fields, Field{Name: name, Value: v})
}

// Keys returns field names in declaration order.
func (r *Record) Keys() []string {
	if r == nil {
		return nil
	}
	keys := make([]string, len(r.Fields))
	for i, f := range r.Fields {
		keys[i] = f.Name
	}
	return keys
}

// Len returns the number of fields.
func (r *Record) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Fields)
}

// FileBase holds the fields shared by File and Directory values.
// Empty strings mean "not set".
type FileBase struct {
	Path           string
	Location       string
	Dirname        string
	Basename       string
	SecondaryFiles []FileLike
}

// FileLike is the accessor contract over file-shaped values.
type FileLike interface {
	Value
	Base() *FileBase
	IsDirectory() bool
	// IsLiteral reports whether the value has no external backing
	// (neither path nor location).
	IsLiteral() bool
}

// FileValue is a CWL File.
type FileValue struct {
	FileBase
	Nameroot string
	Nameext  string
	Checksum string
	Format   string
	Contents string
	Size     int64
}

// DirectoryValue is a CWL Directory.
type DirectoryValue struct {
	FileBase
	Listing []FileLike
}

func (f *FileValue) Base() *FileBase      { return &f.FileBase }
func (f *FileValue) IsDirectory() bool    { return false }
func (f *FileValue) IsLiteral() bool      { return f.Path == "" && f.Location == "" }
func (d *DirectoryValue) Base() *FileBase { return &d.FileBase }
func (d *DirectoryValue) IsDirectory() bool {
	return true
}
func (d *DirectoryValue) IsLiteral() bool { return d.Path == "" && d.Location == "" }

// NewFile returns a File whose path, location and dirname are derived from p.
func NewFile(p string) *FileValue {
	f := &FileValue{}
	f.SetPath(p)
	return f
}

// NewDirectory returns a Directory whose path, location and dirname are derived from p.
func NewDirectory(p string) *DirectoryValue {
	d := &DirectoryValue{}
	d.SetPath(p)
	return d
}

// SetPath sets the path and recomputes dirname, basename and location so the
// three stay consistent.
func (b *FileBase) SetPath(p string) {
	b.Path = p
	if p == "" {
		return
	}
	b.Dirname = path.Dir(p)
	b.Basename = path.Base(p)
	b.Location = FileURI(p)
}

// SetPath also refreshes nameroot/nameext for files.
func (f *FileValue) SetPath(p string) {
	f.FileBase.SetPath(p)
	if p == "" {
		return
	}
	f.Nameext = path.Ext(f.Basename)
	f.Nameroot = strings.TrimSuffix(f.Basename, f.Nameext)
}

// SetPath sets the path of any file-shaped value, keeping derived fields in sync.
func SetPath(f FileLike, p string) {
	switch v := f.(type) {
	case *FileValue:
		v.SetPath(p)
	case *DirectoryValue:
		v.SetPath(p)
	}
}

// IsFileLike reports whether v is a File or Directory.
func IsFileLike(v Value) bool {
	_, ok := v.(FileLike)
	return ok
}
