package cmdline

import (
	"fmt"
	"strings"

	"github.com/me/jobbind/pkg/value"
)

// PrefixedTokens renders a prefix/value pair. With separate unset or true the
// prefix and value are two tokens, otherwise they are joined.
func PrefixedTokens(prefix, val string, separate *bool) []Node {
	if prefix == "" {
		return Tokens(val)
	}

	// Default separate is true.
	sep := true
	if separate != nil {
		sep = *separate
	}

	if sep {
		return Tokens(prefix, val)
	}
	return Tokens(prefix + val)
}

// RenderValue converts a bound value to its command-line string. Files and
// directories render as their path (or location when no path is set);
// arrays are joined with itemSeparator, or a space when it is empty. Null
// and false render as "".
func RenderValue(v value.Value, itemSeparator string) string {
	switch val := v.(type) {
	case nil, value.Null:
		return ""
	case value.Primitive:
		switch raw := val.Raw.(type) {
		case string:
			return raw
		case bool:
			if raw {
				return "true"
			}
			return "" // false booleans typically omit the argument entirely
		default:
			return fmt.Sprintf("%v", raw)
		}
	case value.FileLike:
		if p := val.Base().Path; p != "" {
			return p
		}
		return val.Base().Location
	case value.Array:
		sep := " "
		if itemSeparator != "" {
			sep = itemSeparator
		}
		var items []string
		for _, item := range val {
			if s := RenderValue(item, ""); s != "" {
				items = append(items, s)
			}
		}
		return strings.Join(items, sep)
	default:
		return ""
	}
}

// ArrayParts expands an array value into one part per non-empty element,
// numbered by ArgsArrayOrder so the elements keep their order after sorting.
func ArrayParts(position int, items value.Array, itemPrefix string, separate *bool) []*Part {
	var parts []*Part
	for i, item := range items {
		s := RenderValue(item, "")
		if s == "" {
			continue
		}
		part := NewPart(position, PrefixedTokens(itemPrefix, s, separate)...).WithArgsArrayOrder(i)
		if value.IsFileLike(item) {
			part = part.AsFile()
		}
		parts = append(parts, part)
	}
	return parts
}

// NormalizeBaseCommand converts a decoded baseCommand (string or list) to
// tokens.
func NormalizeBaseCommand(bc any) []string {
	switch cmd := bc.(type) {
	case string:
		return []string{cmd}
	case []string:
		return cmd
	case []any:
		var result []string
		for _, v := range cmd {
			if s, ok := v.(string); ok {
				result = append(result, s)
			}
		}
		return result
	}
	return nil
}
