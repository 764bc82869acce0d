// Package jobdoc reads job documents: a resolved job, its file requirements
// and its pre-rendered command-line parts, in YAML or JSON.
package jobdoc

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/me/jobbind/internal/cmdline"
	"github.com/me/jobbind/internal/staging"
	"github.com/me/jobbind/pkg/model"
	"github.com/me/jobbind/pkg/value"
)

// Requirement classes accepted under "requirements".
const (
	ClassTextFile       = "TextFile"
	ClassInputFile      = "InputFile"
	ClassInputDirectory = "InputDirectory"
)

// Document is a parsed job document.
type Document struct {
	Job          *model.Job
	WorkDir      string
	BaseCommand  []string
	Requirements []staging.Requirement
	CommandLine  []*cmdline.Part
}

type rawDocument struct {
	ID           string           `yaml:"id"`
	Inputs       yaml.Node        `yaml:"inputs"`
	Outputs      yaml.Node        `yaml:"outputs"`
	Config       map[string]any   `yaml:"config"`
	WorkDir      string           `yaml:"workdir"`
	BaseCommand  any              `yaml:"baseCommand"`
	Requirements []rawRequirement `yaml:"requirements"`
	CommandLine  []rawPart        `yaml:"commandLine"`
}

type rawRequirement struct {
	Class       string    `yaml:"class"`
	Filename    string    `yaml:"filename"`
	Content     yaml.Node `yaml:"content"`
	LinkEnabled bool      `yaml:"linkEnabled"`
}

type rawPart struct {
	Position       int       `yaml:"position"`
	KeyValue       *string   `yaml:"keyValue"`
	ArgsArrayOrder *int      `yaml:"argsArrayOrder"`
	File           bool      `yaml:"file"`
	Tokens         []string  `yaml:"tokens"`
	Prefix         string    `yaml:"prefix"`
	Separate       *bool     `yaml:"separate"`
	ItemSeparator  string    `yaml:"itemSeparator"`
	ItemPrefix     string    `yaml:"itemPrefix"`
	Value          yaml.Node `yaml:"value"`
	Parts          []rawPart `yaml:"parts"`
}

// ParseFile reads and parses the job document at path. A relative workdir in
// the document is kept as written.
func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read job document: %w", err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Parse parses a job document. Input and output field order is preserved.
func Parse(data []byte) (*Document, error) {
	var raw rawDocument
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("YAML parse error: %w", err)
	}
	if raw.ID == "" {
		return nil, fmt.Errorf("id is required")
	}

	inputs, err := decodeRecord(&raw.Inputs)
	if err != nil {
		return nil, fmt.Errorf("inputs: %w", err)
	}
	outputs, err := decodeRecord(&raw.Outputs)
	if err != nil {
		return nil, fmt.Errorf("outputs: %w", err)
	}

	doc := &Document{
		Job: &model.Job{
			ID:      raw.ID,
			Inputs:  inputs,
			Outputs: outputs,
			Config:  raw.Config,
		},
		WorkDir:     raw.WorkDir,
		BaseCommand: cmdline.NormalizeBaseCommand(raw.BaseCommand),
	}

	for i, rr := range raw.Requirements {
		req, err := parseRequirement(rr)
		if err != nil {
			return nil, fmt.Errorf("requirements[%d]: %w", i, err)
		}
		doc.Requirements = append(doc.Requirements, req)
	}

	for i, rp := range raw.CommandLine {
		part, err := parsePart(rp)
		if err != nil {
			return nil, fmt.Errorf("commandLine[%d]: %w", i, err)
		}
		doc.CommandLine = append(doc.CommandLine, part)
	}
	return doc, nil
}

// decodeRecord decodes an optional mapping node. Absent or null nodes give
// an empty record.
func decodeRecord(node *yaml.Node) (*value.Record, error) {
	v, err := decodeNode(node)
	if err != nil {
		return nil, err
	}
	switch r := v.(type) {
	case nil, value.Null:
		return value.NewRecord(), nil
	case *value.Record:
		return r, nil
	default:
		return nil, fmt.Errorf("expected a mapping, got %T", v)
	}
}

// decodeNode returns nil for a field that was not present.
func decodeNode(node *yaml.Node) (value.Value, error) {
	if node.Kind == 0 {
		return nil, nil
	}
	return value.DecodeYAML(node)
}

func parseRequirement(rr rawRequirement) (staging.Requirement, error) {
	if rr.Filename == "" {
		return nil, fmt.Errorf("filename is required")
	}
	if !filepath.IsLocal(rr.Filename) {
		return nil, fmt.Errorf("filename %q must be a relative path inside the working directory", rr.Filename)
	}
	switch rr.Class {
	case ClassTextFile:
		var content string
		if rr.Content.Kind != 0 {
			if err := rr.Content.Decode(&content); err != nil {
				return nil, fmt.Errorf("content: %w", err)
			}
		}
		return staging.TextFile{Name: rr.Filename, Content: content}, nil
	case ClassInputFile, ClassInputDirectory:
		content, err := fileContent(&rr.Content)
		if err != nil {
			return nil, fmt.Errorf("content: %w", err)
		}
		if rr.Class == ClassInputFile {
			return staging.InputFile{Name: rr.Filename, Content: content, LinkEnabled: rr.LinkEnabled}, nil
		}
		return staging.InputDirectory{Name: rr.Filename, Content: content, LinkEnabled: rr.LinkEnabled}, nil
	default:
		return nil, fmt.Errorf("unknown class %q", rr.Class)
	}
}

// fileContent decodes an InputFile/InputDirectory content. Absent or null
// content is a literal and yields nil.
func fileContent(node *yaml.Node) (value.FileLike, error) {
	v, err := decodeNode(node)
	if err != nil {
		return nil, err
	}
	switch f := v.(type) {
	case nil, value.Null:
		return nil, nil
	case value.FileLike:
		return f, nil
	default:
		return nil, fmt.Errorf("expected a File or Directory, got %T", v)
	}
}

// parsePart builds a part from literal tokens, then the rendered value, then
// nested parts. A boolean true value renders as its prefix alone; false and
// null render nothing. An array without itemSeparator expands to one child
// part per element.
func parsePart(rp rawPart) (*cmdline.Part, error) {
	part := cmdline.NewPart(rp.Position, cmdline.Tokens(rp.Tokens...)...)
	part.IsFile = rp.File
	if rp.KeyValue != nil {
		part = part.WithKeyValue(*rp.KeyValue)
	}
	if rp.ArgsArrayOrder != nil {
		part = part.WithArgsArrayOrder(*rp.ArgsArrayOrder)
	}

	v, err := decodeNode(&rp.Value)
	if err != nil {
		return nil, fmt.Errorf("value: %w", err)
	}
	children, isFile := valueNodes(rp, v)
	part.Children = append(part.Children, children...)
	part.IsFile = part.IsFile || isFile

	for i, child := range rp.Parts {
		cp, err := parsePart(child)
		if err != nil {
			return nil, fmt.Errorf("parts[%d]: %w", i, err)
		}
		part.Children = append(part.Children, cp)
	}
	return part, nil
}

func valueNodes(rp rawPart, v value.Value) ([]cmdline.Node, bool) {
	switch val := v.(type) {
	case nil, value.Null:
		return nil, false
	case value.Primitive:
		if b, ok := val.Raw.(bool); ok {
			if b && rp.Prefix != "" {
				return cmdline.Tokens(rp.Prefix), false
			}
			return nil, false
		}
	case value.Array:
		if rp.ItemSeparator == "" {
			var nodes []cmdline.Node
			if rp.Prefix != "" {
				nodes = append(nodes, cmdline.Token(rp.Prefix))
			}
			for _, p := range cmdline.ArrayParts(rp.Position, val, rp.ItemPrefix, rp.Separate) {
				nodes = append(nodes, p)
			}
			return nodes, false
		}
	}

	s := cmdline.RenderValue(v, rp.ItemSeparator)
	if s == "" {
		return nil, false
	}
	return cmdline.PrefixedTokens(rp.Prefix, s, rp.Separate), value.IsFileLike(v)
}
