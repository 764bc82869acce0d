// Package cmdline assembles rendered command-line fragments into a
// deterministic argv.
package cmdline

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Node is a child of a Part: either a literal Token or a nested *Part.
type Node interface {
	node()
}

// Token is a literal command-line token.
type Token string

func (Token) node() {}
func (*Part) node() {}

// Part is a sortable group of command-line tokens.
//
// Position is the primary sort key. ArgsArrayOrder orders the elements of an
// expanded array binding and KeyValue breaks remaining ties; either may be nil.
type Part struct {
	Position       int
	IsFile         bool
	KeyValue       *string
	ArgsArrayOrder *int
	Children       []Node
}

// NewPart creates a part at position holding children in order.
func NewPart(position int, children ...Node) *Part {
	return &Part{Position: position, Children: children}
}

// Tokens converts strings into nodes.
func Tokens(args ...string) []Node {
	nodes := make([]Node, len(args))
	for i, a := range args {
		nodes[i] = Token(a)
	}
	return nodes
}

// WithKeyValue returns a copy of p carrying key as its tie-break.
func (p *Part) WithKeyValue(key string) *Part {
	out := p.shallowCopy()
	out.KeyValue = &key
	return out
}

// WithArgsArrayOrder returns a copy of p ordered as element n of an array binding.
func (p *Part) WithArgsArrayOrder(n int) *Part {
	out := p.shallowCopy()
	out.ArgsArrayOrder = &n
	return out
}

// AsFile returns a copy of p marked as rendering a file value.
func (p *Part) AsFile() *Part {
	out := p.shallowCopy()
	out.IsFile = true
	return out
}

func (p *Part) shallowCopy() *Part {
	out := *p
	out.Children = append([]Node(nil), p.Children...)
	return &out
}

// Sort returns a copy of p whose immediate children are ordered by position,
// then argsArrayOrder when both siblings have one, then keyValue. Tokens and
// siblings lacking the compared key keep their relative order. p is not
// modified.
func (p *Part) Sort() *Part {
	out := p.shallowCopy()
	sort.SliceStable(out.Children, func(i, j int) bool {
		return compare(out.Children[i], out.Children[j]) < 0
	})
	return out
}

// compare orders two siblings. Anything other than two parts is equal.
func compare(a, b Node) int {
	pa, ok := a.(*Part)
	if !ok {
		return 0
	}
	pb, ok := b.(*Part)
	if !ok {
		return 0
	}
	if pa.Position != pb.Position {
		if pa.Position < pb.Position {
			return -1
		}
		return 1
	}
	if pa.ArgsArrayOrder != nil && pb.ArgsArrayOrder != nil {
		return *pa.ArgsArrayOrder - *pb.ArgsArrayOrder
	}
	if pa.KeyValue == nil || pb.KeyValue == nil {
		return 0
	}
	return strings.Compare(*pa.KeyValue, *pb.KeyValue)
}

// Flatten sorts every part of the tree, root included, and returns its tokens
// in depth-first order. Equal trees always flatten to the same argv.
func (p *Part) Flatten() []string {
	var out []string
	p.flattenInto(&out)
	return out
}

func (p *Part) flattenInto(out *[]string) {
	sorted := p.Sort()
	for _, child := range sorted.Children {
		switch c := child.(type) {
		case Token:
			*out = append(*out, string(c))
		case *Part:
			if c != nil {
				c.flattenInto(out)
			}
		}
	}
}

// Build returns baseCommand followed by the flattened parts.
func Build(baseCommand []string, parts ...*Part) []string {
	root := &Part{Children: make([]Node, 0, len(parts))}
	for _, part := range parts {
		if part != nil {
			root.Children = append(root.Children, part)
		}
	}
	cmd := append([]string(nil), baseCommand...)
	return append(cmd, root.Flatten()...)
}

// Digest returns a stable hex digest of argv, suitable as a cache key.
func Digest(argv []string) string {
	h := sha256.New()
	for _, arg := range argv {
		h.Write([]byte(arg))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func (p *Part) String() string {
	key := "<nil>"
	if p.KeyValue != nil {
		key = *p.KeyValue
	}
	order := -1
	if p.ArgsArrayOrder != nil {
		order = *p.ArgsArrayOrder
	}
	return fmt.Sprintf("Part{position=%d file=%t key=%s order=%d children=%d}",
		p.Position, p.IsFile, key, order, len(p.Children))
}
