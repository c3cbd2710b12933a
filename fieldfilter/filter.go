// Copyright 2020 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fieldfilter selects dataset fields with a boolean query.
//
// A query is a sequence of key:value matches combined with AND, OR,
// "-" (not) and parentheses. Adjacent matches are implicitly ANDed,
// key:(a b) matches any of a and b, and "*" matches every field. The
// keys are:
//
//	.name:<regexp>  the field name matches the anchored regexp
//	.glob:<pattern> the field name matches the doublestar pattern
//
// For example,
//
//	.name:energy_.* -.glob:"*_truth"
//
// selects the energy fields except those ending in "_truth".
package fieldfilter

import (
	"fmt"
	"regexp"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/SuperNEMO-DBD/SimulationValidationTool/fieldfilter/internal/kvql"
)

// A Filter selects fields by name.
type Filter struct {
	query    kvql.Query
	matchers map[*kvql.QueryMatch]func(string) bool
}

// New constructs a field filter from a boolean query.
func New(query string) (*Filter, error) {
	q, err := kvql.Parse(query)
	if err != nil {
		return nil, err
	}

	f := &Filter{
		query:    q,
		matchers: make(map[*kvql.QueryMatch]func(string) bool),
	}
	err = kvql.Walk(q, func(m *kvql.QueryMatch) error {
		fn, err := matcher(m.Key, m.Value)
		if err != nil {
			return &kvql.SyntaxError{Query: query, Off: m.ValueOff, Msg: err.Error()}
		}
		f.matchers[m] = fn
		return nil
	})
	if err != nil {
		return nil, err
	}
	return f, nil
}

// matcher returns the function testing a field name for key:value.
func matcher(key, value string) (func(string) bool, error) {
	switch key {
	case ".name":
		// Make sure the regexp is well-formed before
		// anchoring it.
		if _, err := regexp.Compile(value); err != nil {
			return nil, err
		}
		re := regexp.MustCompile("^(?:" + value + ")$")
		return re.MatchString, nil
	case ".glob":
		if !doublestar.ValidatePattern(value) {
			return nil, fmt.Errorf("bad glob pattern %q", value)
		}
		return func(name string) bool {
			ok, _ := doublestar.Match(value, name)
			return ok
		}, nil
	}
	return nil, fmt.Errorf("unknown key %q (want .name or .glob)", key)
}

// Match reports whether field matches f.
func (f *Filter) Match(field string) bool {
	return f.match(field, f.query)
}

func (f *Filter) match(field string, node kvql.Query) bool {
	switch node := node.(type) {
	case *kvql.QueryOp:
		switch node.Op {
		case kvql.OpNot:
			return !f.match(field, node.Exprs[0])
		case kvql.OpAnd:
			for _, sub := range node.Exprs {
				if !f.match(field, sub) {
					return false
				}
			}
			return true
		case kvql.OpOr:
			for _, sub := range node.Exprs {
				if f.match(field, sub) {
					return true
				}
			}
			return false
		}
	case *kvql.QueryMatch:
		return f.matchers[node](field)
	}
	panic(fmt.Sprintf("unknown query node %T", node))
}

// Apply returns the fields that match f, in their original order.
// A nil Filter matches every field.
func (f *Filter) Apply(fields []string) []string {
	if f == nil {
		return fields
	}
	var out []string
	for _, field := range fields {
		if f.Match(field) {
			out = append(out, field)
		}
	}
	return out
}

func (f *Filter) String() string {
	return f.query.String()
}
