// Package transform copies, walks and rewrites job value trees.
//
// Every function returns a new tree built from a deep copy; the caller's
// tree is never modified.
package transform

import (
	"fmt"

	"github.com/me/jobbind/internal/pathmap"
	"github.com/me/jobbind/pkg/model"
	"github.com/me/jobbind/pkg/value"
)

// FileTransformer replaces a file-shaped value. It receives a private copy
// and may modify it in place.
type FileTransformer func(f value.FileLike) (value.FileLike, error)

// DeepCopy returns a structural copy of v sharing no mutable state with it.
func DeepCopy(v value.Value) value.Value {
	return value.Clone(v)
}

// UpdateFileValues returns a copy of v in which every File and Directory
// reachable through arrays and records is replaced by fn's result. Nested
// secondaryFiles and listings are not visited separately. If fn fails the
// walk stops and the error is returned as a *model.BindingError; no partial
// tree is returned.
func UpdateFileValues(v value.Value, fn FileTransformer) (value.Value, error) {
	out, err := updateFileValues(v, fn)
	if err != nil {
		return nil, &model.BindingError{Op: "update file values", Err: err}
	}
	return out, nil
}

func updateFileValues(v value.Value, fn FileTransformer) (value.Value, error) {
	switch val := v.(type) {
	case value.FileLike:
		replaced, err := fn(value.CloneFileLike(val))
		if err != nil {
			return nil, err
		}
		return replaced, nil
	case value.Array:
		out := make(value.Array, len(val))
		for i, item := range val {
			nv, err := updateFileValues(item, fn)
			if err != nil {
				return nil, err
			}
			out[i] = nv
		}
		return out, nil
	case *value.Record:
		if val == nil {
			return val, nil
		}
		out := &value.Record{Fields: make([]value.Field, len(val.Fields))}
		for i, f := range val.Fields {
			nv, err := updateFileValues(f.Value, fn)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", f.Name, err)
			}
			out.Fields[i] = value.Field{Name: f.Name, Value: nv}
		}
		return out, nil
	default:
		return value.Clone(v), nil
	}
}

// CollectFiles returns the top-level File and Directory values in v. Arrays
// and records are searched; a file node is collected as a whole and its
// secondaryFiles or listing are not reported on their own. Structurally
// equal nodes are reported once, in first-seen order.
func CollectFiles(v value.Value) []value.FileLike {
	var out []value.FileLike
	collectFiles(v, &out)
	return out
}

func collectFiles(v value.Value, out *[]value.FileLike) {
	switch val := v.(type) {
	case value.FileLike:
		for _, seen := range *out {
			if value.Equal(seen, val) {
				return
			}
		}
		*out = append(*out, val)
	case value.Array:
		for _, item := range val {
			collectFiles(item, out)
		}
	case *value.Record:
		if val == nil {
			return
		}
		for _, f := range val.Fields {
			collectFiles(f.Value, out)
		}
	}
}

// MapPaths returns a copy of v where the path of every File and Directory
// reachable through arrays, records, secondaryFiles and listings is passed
// through mapper; dirname, basename and location are recomputed from the
// new path.
//
// MapPaths is not atomic. On the first mapping failure it returns the copy
// as rewritten so far together with a *model.FileMappingError; nodes visited
// before the failure keep their new paths.
func MapPaths(v value.Value, mapper pathmap.Mapper, config map[string]any) (value.Value, error) {
	out := value.Clone(v)
	return out, mapValue(out, mapper, config)
}

func mapValue(v value.Value, mapper pathmap.Mapper, config map[string]any) error {
	switch val := v.(type) {
	case value.FileLike:
		return mapFile(val, mapper, config)
	case value.Array:
		for _, item := range val {
			if err := mapValue(item, mapper, config); err != nil {
				return err
			}
		}
	case *value.Record:
		if val == nil {
			return nil
		}
		for _, f := range val.Fields {
			if err := mapValue(f.Value, mapper, config); err != nil {
				return err
			}
		}
	}
	return nil
}

func mapFile(f value.FileLike, mapper pathmap.Mapper, config map[string]any) error {
	base := f.Base()
	if base.Path != "" {
		mapped, err := mapper.Map(base.Path, config)
		if err != nil {
			return asMappingError(base.Path, err)
		}
		value.SetPath(f, mapped)
	}
	for _, sf := range base.SecondaryFiles {
		if err := mapFile(sf, mapper, config); err != nil {
			return err
		}
	}
	if dir, ok := f.(*value.DirectoryValue); ok {
		for _, item := range dir.Listing {
			if err := mapFile(item, mapper, config); err != nil {
				return err
			}
		}
	}
	return nil
}

func asMappingError(p string, err error) error {
	if fme, ok := err.(*model.FileMappingError); ok {
		return fme
	}
	return &model.FileMappingError{Path: p, Err: err}
}
