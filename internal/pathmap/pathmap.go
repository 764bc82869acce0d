// Package pathmap translates paths between the host and the execution
// environment (for example a container's bind mounts).
package pathmap

import (
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/me/jobbind/pkg/model"
)

// ConfigKey is the job config entry that may carry per-job mapping rules as
// a list of {from, to} maps.
const ConfigKey = "pathMappings"

// ErrNoRule is the cause of a FileMappingError raised by a strict mapper
// when no rule covers the path.
var ErrNoRule = errors.New("no mapping rule matches")

// Mapper translates a path. Failures are reported as *model.FileMappingError.
type Mapper interface {
	Map(p string, config map[string]any) (string, error)
}

// MapperFunc adapts a function to Mapper.
type MapperFunc func(p string, config map[string]any) (string, error)

// Map implements Mapper.
func (f MapperFunc) Map(p string, config map[string]any) (string, error) {
	return f(p, config)
}

// Identity returns every path unchanged.
var Identity Mapper = MapperFunc(func(p string, _ map[string]any) (string, error) {
	return p, nil
})

// Chain returns a mapper applying each mapper in order (g∘f for Chain(f, g)).
func Chain(mappers ...Mapper) Mapper {
	return MapperFunc(func(p string, config map[string]any) (string, error) {
		var err error
		for _, m := range mappers {
			if p, err = m.Map(p, config); err != nil {
				return "", err
			}
		}
		return p, nil
	})
}

// Rule rewrites paths under From to live under To.
type Rule struct {
	From string `yaml:"from" json:"from"`
	To   string `yaml:"to" json:"to"`
}

// PrefixMapper rewrites paths by their longest matching prefix rule.
// Rules found under ConfigKey in the job config take precedence over the
// static ones. With Strict set, unmatched paths fail.
type PrefixMapper struct {
	Rules  []Rule
	Strict bool
}

// NewPrefixMapper returns a PrefixMapper over the given rules.
func NewPrefixMapper(strict bool, rules ...Rule) *PrefixMapper {
	return &PrefixMapper{Rules: rules, Strict: strict}
}

// Map implements Mapper.
func (m *PrefixMapper) Map(p string, config map[string]any) (string, error) {
	rules, err := rulesFromConfig(config)
	if err != nil {
		return "", &model.FileMappingError{Path: p, Err: err}
	}
	if rules == nil {
		rules = m.Rules
	}
	if mapped, ok := applyRules(p, rules); ok {
		return mapped, nil
	}
	if m.Strict {
		return "", &model.FileMappingError{Path: p, Err: ErrNoRule}
	}
	return p, nil
}

// applyRules picks the longest From that is p itself or a parent of p.
func applyRules(p string, rules []Rule) (string, bool) {
	sorted := make([]Rule, len(rules))
	copy(sorted, rules)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].From) > len(sorted[j].From)
	})
	for _, r := range sorted {
		from := strings.TrimSuffix(r.From, "/")
		if from == "" {
			from = "/"
		}
		switch {
		case p == from:
			return r.To, true
		case from == "/" && strings.HasPrefix(p, "/"):
			return path.Join(r.To, p), true
		case strings.HasPrefix(p, from+"/"):
			return path.Join(r.To, strings.TrimPrefix(p, from+"/")), true
		}
	}
	return "", false
}

func rulesFromConfig(config map[string]any) ([]Rule, error) {
	raw, ok := config[ConfigKey]
	if !ok || raw == nil {
		return nil, nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("config %s: expected a list, got %T", ConfigKey, raw)
	}
	rules := make([]Rule, 0, len(items))
	for i, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("config %s[%d]: expected a map, got %T", ConfigKey, i, item)
		}
		from, _ := m["from"].(string)
		to, _ := m["to"].(string)
		if from == "" || to == "" {
			return nil, fmt.Errorf("config %s[%d]: from and to are required", ConfigKey, i)
		}
		rules = append(rules, Rule{From: from, To: to})
	}
	return rules, nil
}
