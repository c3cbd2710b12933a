// Copyright 2020 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kvql

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Tok is a single token in the kvql lexical syntax.
type Tok struct {
	// Kind specifies the category of this token. It is either 'w'
	// or 'q' for an unquoted or quoted word, respectively, an
	// operator character, or 0 for the end-of-string token.
	Kind byte
	Off  int    // Byte offset of the beginning of this token
	Tok  string // Literal token contents; quoted words are unescaped
}

func isOp(ch rune) bool {
	return ch == '(' || ch == ')' || ch == ':'
}

// Tokenize splits q into a stream of tokens. Each token is either a
// quoted or unquoted word, or a single character operator. Quoted
// words are enclosed in double-quotes, and within them \" and \\
// stand for a literal quote and backslash.
func Tokenize(q string) ([]Tok, error) {
	var toks []Tok
	for off := 0; off < len(q); {
		rest := q[off:]
		// "-" and "*" are operators only at the beginning of
		// a word, and not directly after a ":", so "foo-bar"
		// and "key:*bar" are words.
		afterColon := len(toks) > 0 && toks[len(toks)-1].Kind == ':' && toks[len(toks)-1].Off+1 == off
		switch {
		case isOp(rune(rest[0])) || (!afterColon && (rest[0] == '-' || rest[0] == '*')):
			toks = append(toks, Tok{rest[0], off, rest[:1]})
			off++
		case rest[0] == '"':
			word, n, err := quotedWord(q, off)
			if err != nil {
				return nil, err
			}
			toks = append(toks, Tok{'q', off, word})
			off += n
		default:
			r, size := utf8.DecodeRuneInString(rest)
			if unicode.IsSpace(r) {
				off += size
				continue
			}
			end := strings.IndexFunc(rest, func(r rune) bool {
				return unicode.IsSpace(r) || isOp(r)
			})
			if end < 0 {
				end = len(rest)
			}
			toks = append(toks, Tok{'w', off, rest[:end]})
			off += end
		}
	}
	// The end token gives EOF a position and saves the parser
	// bounds checks.
	toks = append(toks, Tok{0, len(q), ""})
	return toks, nil
}

// quotedWord consumes the quoted word starting at q[off] and returns
// its unescaped contents and its length in q.
func quotedWord(q string, off int) (string, int, error) {
	var buf strings.Builder
	for i := off + 1; i < len(q); i++ {
		switch q[i] {
		case '"':
			return buf.String(), i + 1 - off, nil
		case '\\':
			if i+1 < len(q) && (q[i+1] == '"' || q[i+1] == '\\') {
				i++
			}
		}
		buf.WriteByte(q[i])
	}
	return "", 0, &SyntaxError{q, off, "missing end quote"}
}
