package value

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Decode converts a generic decoded JSON/YAML tree into a Value. Maps with
// class File or Directory become file values; other maps become records with
// keys in sorted order, since Go maps carry no order. Use DecodeYAML when
// field order matters.
func Decode(raw any) (Value, error) {
	switch v := raw.(type) {
	case nil:
		return Null{}, nil
	case map[string]any:
		switch class, _ := v["class"].(string); class {
		case "File":
			return decodeFile(v)
		case "Directory":
			return decodeDirectory(v)
		}
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		rec := &Record{Fields: make([]Field, 0, len(keys))}
		for _, k := range keys {
			fv, err := Decode(v[k])
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			rec.Fields = append(rec.Fields, Field{Name: k, Value: fv})
		}
		return rec, nil
	case map[any]any:
		conv := make(map[string]any, len(v))
		for k, item := range v {
			conv[fmt.Sprintf("%v", k)] = item
		}
		return Decode(conv)
	case []any:
		arr := make(Array, len(v))
		for i, item := range v {
			iv, err := Decode(item)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			arr[i] = iv
		}
		return arr, nil
	case Value:
		return Clone(v), nil
	default:
		return Primitive{Raw: v}, nil
	}
}

// DecodeYAML converts a YAML node into a Value, preserving mapping order.
func DecodeYAML(node *yaml.Node) (Value, error) {
	if node == nil {
		return Null{}, nil
	}
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return Null{}, nil
		}
		return DecodeYAML(node.Content[0])
	case yaml.AliasNode:
		return DecodeYAML(node.Alias)
	case yaml.SequenceNode:
		arr := make(Array, len(node.Content))
		for i, item := range node.Content {
			v, err := DecodeYAML(item)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			arr[i] = v
		}
		return arr, nil
	case yaml.MappingNode:
		if class := mappingClass(node); class == "File" || class == "Directory" {
			var raw map[string]any
			if err := node.Decode(&raw); err != nil {
				return nil, fmt.Errorf("line %d: %w", node.Line, err)
			}
			return Decode(raw)
		}
		rec := &Record{Fields: make([]Field, 0, len(node.Content)/2)}
		for i := 0; i+1 < len(node.Content); i += 2 {
			key := node.Content[i].Value
			v, err := DecodeYAML(node.Content[i+1])
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			rec.Set(key, v)
		}
		return rec, nil
	case yaml.ScalarNode:
		var raw any
		if err := node.Decode(&raw); err != nil {
			return nil, fmt.Errorf("line %d: %w", node.Line, err)
		}
		return Of(raw), nil
	default:
		return nil, fmt.Errorf("line %d: unsupported YAML node kind %d", node.Line, node.Kind)
	}
}

// UnmarshalYAML decodes YAML (or JSON) text into a Value.
func UnmarshalYAML(data []byte) (Value, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("YAML parse error: %w", err)
	}
	return DecodeYAML(&node)
}

func mappingClass(node *yaml.Node) string {
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == "class" {
			return node.Content[i+1].Value
		}
	}
	return ""
}

func decodeBase(m map[string]any) (FileBase, error) {
	b := FileBase{
		Path:     stringField(m, "path"),
		Location: stringField(m, "location"),
		Dirname:  stringField(m, "dirname"),
		Basename: stringField(m, "basename"),
	}
	sf, err := decodeFileLikes(m["secondaryFiles"])
	if err != nil {
		return b, fmt.Errorf("secondaryFiles: %w", err)
	}
	b.SecondaryFiles = sf
	return b, nil
}

func decodeFile(m map[string]any) (*FileValue, error) {
	base, err := decodeBase(m)
	if err != nil {
		return nil, err
	}
	f := &FileValue{
		FileBase: base,
		Nameroot: stringField(m, "nameroot"),
		Nameext:  stringField(m, "nameext"),
		Checksum: stringField(m, "checksum"),
		Format:   stringField(m, "format"),
		Contents: stringField(m, "contents"),
	}
	switch size := m["size"].(type) {
	case int:
		f.Size = int64(size)
	case int64:
		f.Size = size
	case float64:
		f.Size = int64(size)
	}
	return f, nil
}

func decodeDirectory(m map[string]any) (*DirectoryValue, error) {
	base, err := decodeBase(m)
	if err != nil {
		return nil, err
	}
	listing, err := decodeFileLikes(m["listing"])
	if err != nil {
		return nil, fmt.Errorf("listing: %w", err)
	}
	return &DirectoryValue{FileBase: base, Listing: listing}, nil
}

func decodeFileLikes(raw any) ([]FileLike, error) {
	items, ok := raw.([]any)
	if !ok {
		return nil, nil
	}
	out := make([]FileLike, 0, len(items))
	for i, item := range items {
		v, err := Decode(item)
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
		fl, ok := v.(FileLike)
		if !ok {
			return nil, fmt.Errorf("[%d]: expected File or Directory, got %T", i, item)
		}
		out = append(out, fl)
	}
	return out, nil
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

// Encode converts a Value back into the generic form produced by JSON
// decoding. Record order is lost; use MarshalJSON to keep it.
func Encode(v Value) any {
	switch val := v.(type) {
	case nil, Null:
		return nil
	case Primitive:
		return val.Raw
	case *FileValue:
		return encodeFile(val)
	case *DirectoryValue:
		return encodeDirectory(val)
	case Array:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = Encode(item)
		}
		return out
	case *Record:
		out := make(map[string]any, val.Len())
		for _, f := range val.Fields {
			out[f.Name] = Encode(f.Value)
		}
		return out
	default:
		return nil
	}
}

func encodeBase(class string, b *FileBase) map[string]any {
	m := map[string]any{"class": class}
	putString(m, "path", b.Path)
	putString(m, "location", b.Location)
	putString(m, "dirname", b.Dirname)
	putString(m, "basename", b.Basename)
	if len(b.SecondaryFiles) > 0 {
		m["secondaryFiles"] = encodeFileLikes(b.SecondaryFiles)
	}
	return m
}

func encodeFile(f *FileValue) map[string]any {
	m := encodeBase("File", &f.FileBase)
	putString(m, "nameroot", f.Nameroot)
	putString(m, "nameext", f.Nameext)
	putString(m, "checksum", f.Checksum)
	putString(m, "format", f.Format)
	putString(m, "contents", f.Contents)
	if f.Size > 0 {
		m["size"] = f.Size
	}
	return m
}

func encodeDirectory(d *DirectoryValue) map[string]any {
	m := encodeBase("Directory", &d.FileBase)
	if d.Listing != nil {
		m["listing"] = encodeFileLikes(d.Listing)
	}
	return m
}

func encodeFileLikes(in []FileLike) []any {
	out := make([]any, len(in))
	for i, f := range in {
		out[i] = Encode(f)
	}
	return out
}

func putString(m map[string]any, key, s string) {
	if s != "" {
		m[key] = s
	}
}

// MarshalJSON renders v as JSON, keeping record fields in order. Non-finite
// floats become null.
func MarshalJSON(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeJSON(buf *bytes.Buffer, v Value) error {
	switch val := v.(type) {
	case Array:
		buf.WriteByte('[')
		for i, item := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil
	case *Record:
		buf.WriteByte('{')
		for i, f := range val.Fields {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, _ := json.Marshal(f.Name)
			buf.Write(key)
			buf.WriteByte(':')
			if err := writeJSON(buf, f.Value); err != nil {
				return fmt.Errorf("%s: %w", f.Name, err)
			}
		}
		buf.WriteByte('}')
		return nil
	case Primitive:
		switch n := val.Raw.(type) {
		case float64:
			if math.IsNaN(n) || math.IsInf(n, 0) {
				buf.WriteString("null")
				return nil
			}
			buf.WriteString(strconv.FormatFloat(n, 'f', -1, 64))
			return nil
		}
	}
	data, err := json.Marshal(Encode(v))
	if err != nil {
		return err
	}
	buf.Write(data)
	return nil
}

// JSON wraps a Value so it can be embedded in structs passed to encoding/json.
type JSON struct {
	Value Value
}

// MarshalJSON implements json.Marshaler.
func (j JSON) MarshalJSON() ([]byte, error) {
	return MarshalJSON(j.Value)
}

// UnmarshalJSON implements json.Unmarshaler, preserving field order.
func (j *JSON) UnmarshalJSON(data []byte) error {
	v, err := UnmarshalYAML(data)
	if err != nil {
		return err
	}
	j.Value = v
	return nil
}
