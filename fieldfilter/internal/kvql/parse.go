// Copyright 2020 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package kvql implements a generic key-value query language.
//
// Syntax:
//
//	expr    = andExpr {"OR" andExpr} .
//	andExpr = phrase {"AND" phrase} .
//	phrase  = match {match} .
//	match   = "(" expr ")"
//	        | "-" match
//	        | "*"
//	        | word ":" (word | "(" {word} ")") .
//	word    = [^ ():]* | "\"" [^"]* "\""
package kvql

import (
	"fmt"
	"strconv"
	"unicode"
)

// Parse parses a query string into a Query tree.
func Parse(q string) (Query, error) {
	toks, err := Tokenize(q)
	if err != nil {
		return nil, err
	}
	return parse(q, toks)
}

// SyntaxError is an error produced by parsing a malformed query
// string.
type SyntaxError struct {
	Query string // The query string
	Off   int    // Byte offset of the error in Query
	Msg   string // Error message
}

func (e *SyntaxError) Error() string {
	// Translate byte offset to a rune offset.
	pos := 0
	for i, r := range e.Query {
		if i >= e.Off {
			break
		}
		if unicode.IsGraphic(r) {
			pos++
		}
	}
	return fmt.Sprintf("syntax error: %s\n\t%s\n\t%*s^", e.Msg, e.Query, pos, "")
}

func parse(qOrig string, toks []Tok) (Query, error) {
	for i, tok := range toks {
		switch {
		case tok.Kind == 'w' && tok.Tok == "AND":
			toks[i].Kind = 'A'
		case tok.Kind == 'w' && tok.Tok == "OR":
			toks[i].Kind = 'O'
		case tok.Kind == 'q':
			// Past operator recognition, quoting no longer
			// matters.
			toks[i].Kind = 'w'
		}
	}

	p := parser{q: qOrig, toks: toks}
	q, i := p.expr(0)
	if p.toks[i].Kind != 0 {
		p.error(i, "unexpected "+strconv.Quote(p.toks[i].Tok))
	}
	if p.err != nil {
		return nil, p.err
	}
	return q, nil
}

type parser struct {
	q    string
	toks []Tok
	err  *SyntaxError
}

// error records the earliest error and returns the index of the end
// token so parsing unwinds.
func (p *parser) error(i int, msg string) int {
	off := p.toks[i].Off
	if p.err == nil || off < p.err.Off {
		p.err = &SyntaxError{p.q, off, msg}
	}
	return len(p.toks) - 1
}

func (p *parser) expr(i int) (Query, int) {
	return p.binary(i, 'O', OpOr, p.andExpr)
}

func (p *parser) andExpr(i int) (Query, int) {
	return p.binary(i, 'A', OpAnd, p.phrase)
}

// binary parses a sequence of operands separated by the operator
// token kind.
func (p *parser) binary(i int, kind byte, op Op, operand func(int) (Query, int)) (Query, int) {
	q, i := operand(i)
	if p.toks[i].Kind != kind {
		return q, i
	}
	terms := []Query{q}
	for p.toks[i].Kind == kind {
		q, i = operand(i + 1)
		terms = append(terms, q)
	}
	return &QueryOp{op, terms}, i
}

func (p *parser) phrase(i int) (Query, int) {
	var q Query
	var terms []Query
loop:
	for {
		switch p.toks[i].Kind {
		case '(', '-', 'w', '*':
			q, i = p.match(i)
			terms = append(terms, q)
		case ')', 'A', 'O', 0:
			break loop
		default:
			return nil, p.error(i, "unexpected "+strconv.Quote(p.toks[i].Tok))
		}
	}
	switch len(terms) {
	case 0:
		return nil, p.error(i, "nothing to match")
	case 1:
		return terms[0], i
	}
	return &QueryOp{OpAnd, terms}, i
}

func (p *parser) match(i int) (Query, int) {
	switch p.toks[i].Kind {
	case '(':
		q, i := p.expr(i + 1)
		if p.toks[i].Kind != ')' {
			return nil, p.error(i, "missing \")\"")
		}
		return q, i + 1
	case '-':
		q, i := p.match(i + 1)
		return &QueryOp{OpNot, []Query{q}}, i
	case '*':
		return &QueryOp{OpAnd, nil}, i + 1
	case 'w':
		off, key := p.toks[i].Off, p.toks[i].Tok
		if p.toks[i+1].Kind != ':' {
			return nil, p.error(i, "expected key:value")
		}
		switch p.toks[i+2].Kind {
		case 'w':
			v := p.toks[i+2]
			return &QueryMatch{off, key, v.Off, v.Tok}, i + 3
		case '(':
			// key:(a b c) matches any of the values.
			var terms []Query
			for i += 3; p.toks[i].Kind == 'w'; i++ {
				v := p.toks[i]
				terms = append(terms, &QueryMatch{off, key, v.Off, v.Tok})
			}
			if p.toks[i].Kind != ')' {
				return nil, p.error(i, "expected value")
			}
			if len(terms) == 0 {
				return nil, p.error(i, "nothing to match")
			}
			return &QueryOp{OpOr, terms}, i + 1
		}
		return nil, p.error(i, "expected key:value")
	}
	return nil, p.error(i, "expected key:value or subexpression")
}
