// Copyright 2020 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kvql

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Query is a node in the query tree. It is either a *QueryOp or a
// *QueryMatch.
type Query interface {
	isQuery()
	String() string
}

// QueryMatch is a leaf in a Query tree that tests the value of Key
// against Value. How Value is interpreted is up to the user of the
// query.
type QueryMatch struct {
	Off      int // Byte offset of the key in the original query
	Key      string
	ValueOff int // Byte offset of the value in the original query
	Value    string
}

func (q *QueryMatch) isQuery() {}
func (q *QueryMatch) String() string {
	return quote(q.Key) + ":" + quote(q.Value)
}

func quote(s string) string {
	if s == "" {
		return `""`
	}
	for _, r := range s {
		if unicode.IsSpace(r) || r == '"' || r == '(' || r == ')' || r == ':' {
			return strconv.Quote(s)
		}
	}
	return s
}

// QueryOp is a boolean operator in the Query tree. OpNot has exactly
// one child node. OpAnd and OpOr have zero or more child nodes; an
// empty OpAnd is true and an empty OpOr is false.
type QueryOp struct {
	Op    Op
	Exprs []Query
}

func (q *QueryOp) isQuery() {}
func (q *QueryOp) String() string {
	if q.Op == OpNot {
		return fmt.Sprintf("-%s", q.Exprs[0])
	}
	if q.Op == OpAnd && len(q.Exprs) == 0 {
		return "*"
	}
	op := " AND "
	if q.Op == OpOr {
		op = " OR "
	}
	parts := make([]string, len(q.Exprs))
	for i, e := range q.Exprs {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, op) + ")"
}

// Op specifies a type of boolean operator.
type Op int

const (
	OpAnd Op = 1 + iota
	OpOr
	OpNot
)

// Walk calls fn for every QueryMatch in q, in query order, and stops
// at the first error.
func Walk(q Query, fn func(*QueryMatch) error) error {
	switch q := q.(type) {
	case *QueryOp:
		for _, sub := range q.Exprs {
			if err := Walk(sub, fn); err != nil {
				return err
			}
		}
	case *QueryMatch:
		return fn(q)
	default:
		panic(fmt.Sprintf("unknown query node type %T", q))
	}
	return nil
}
