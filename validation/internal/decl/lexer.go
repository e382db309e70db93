// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package decl

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokInt
	tokFloat
	tokString
	tokLParen
	tokRParen
	tokComma
	tokEquals
	tokSemicolon
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of tag"
	case tokIdent:
		return "name"
	case tokInt, tokFloat:
		return "number"
	case tokString:
		return "string"
	case tokLParen:
		return "'('"
	case tokRParen:
		return "')'"
	case tokComma:
		return "','"
	case tokEquals:
		return "'='"
	case tokSemicolon:
		return "';'"
	default:
		return "token"
	}
}

type token struct {
	kind tokenKind
	text string // unquoted for strings
	pos  int
}

// SyntaxError reports a malformed tag.
type SyntaxError struct {
	Input string
	Pos   int
	Msg   string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at offset %d in %q: %s", e.Pos, e.Input, e.Msg)
}

type lexer struct {
	src  string
	pos  int
	peek *token
}

func (l *lexer) errorf(pos int, format string, args ...any) *SyntaxError {
	return &SyntaxError{Input: l.src, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.src) {
		switch l.src[l.pos] {
		case ' ', '\t', '\n', '\r':
			l.pos++
		default:
			return
		}
	}
}

// peekToken returns the next token without consuming it.
func (l *lexer) peekToken() (token, error) {
	if l.peek != nil {
		return *l.peek, nil
	}
	tok, err := l.scan()
	if err != nil {
		return token{}, err
	}
	l.peek = &tok

	return tok, nil
}

// next consumes and returns the next token.
func (l *lexer) next() (token, error) {
	if l.peek != nil {
		tok := *l.peek
		l.peek = nil
		return tok, nil
	}

	return l.scan()
}

func (l *lexer) scan() (token, error) {
	l.skipSpace()
	if l.pos >= len(l.src) {
		return token{kind: tokEOF, pos: l.pos}, nil
	}

	start := l.pos
	c := l.src[l.pos]
	switch {
	case c == '(':
		l.pos++
		return token{kind: tokLParen, text: "(", pos: start}, nil
	case c == ')':
		l.pos++
		return token{kind: tokRParen, text: ")", pos: start}, nil
	case c == ',':
		l.pos++
		return token{kind: tokComma, text: ",", pos: start}, nil
	case c == '=':
		l.pos++
		return token{kind: tokEquals, text: "=", pos: start}, nil
	case c == ';':
		l.pos++
		return token{kind: tokSemicolon, text: ";", pos: start}, nil
	case c == '\'' || c == '"':
		return l.scanString(c)
	case c == '-' || c == '+' || c == '.' || isDigit(c):
		return l.scanNumber()
	case isIdentStart(c):
		for l.pos < len(l.src) && isIdentPart(l.src[l.pos]) {
			l.pos++
		}
		return token{kind: tokIdent, text: l.src[start:l.pos], pos: start}, nil
	}

	r, _ := utf8.DecodeRuneInString(l.src[l.pos:])

	return token{}, l.errorf(start, "unexpected character %q", r)
}

// scanString reads a quoted string. Only the quote character and the backslash
// itself are escapes; any other backslash sequence is kept verbatim so that
// regular expressions can be written without doubling.
func (l *lexer) scanString(quote byte) (token, error) {
	start := l.pos
	l.pos++

	var sb strings.Builder
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == quote:
			l.pos++
			return token{kind: tokString, text: sb.String(), pos: start}, nil
		case c == '\\' && l.pos+1 < len(l.src) && (l.src[l.pos+1] == quote || l.src[l.pos+1] == '\\'):
			sb.WriteByte(l.src[l.pos+1])
			l.pos += 2
		default:
			sb.WriteByte(c)
			l.pos++
		}
	}

	return token{}, l.errorf(start, "unterminated string")
}

func (l *lexer) scanNumber() (token, error) {
	start := l.pos
	if c := l.src[l.pos]; c == '-' || c == '+' {
		l.pos++
	}

	kind := tokInt
	digits := 0
	for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
		l.pos++
		digits++
	}
	if l.pos < len(l.src) && l.src[l.pos] == '.' {
		kind = tokFloat
		l.pos++
		for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
			l.pos++
			digits++
		}
	}
	if digits == 0 {
		return token{}, l.errorf(start, "malformed number")
	}
	if l.pos < len(l.src) && (l.src[l.pos] == 'e' || l.src[l.pos] == 'E') {
		kind = tokFloat
		l.pos++
		if l.pos < len(l.src) && (l.src[l.pos] == '-' || l.src[l.pos] == '+') {
			l.pos++
		}
		exp := 0
		for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
			l.pos++
			exp++
		}
		if exp == 0 {
			return token{}, l.errorf(start, "malformed exponent")
		}
	}
	if l.pos < len(l.src) && isIdentPart(l.src[l.pos]) {
		return token{}, l.errorf(start, "malformed number %q", l.src[start:l.pos+1])
	}

	return token{kind: kind, text: l.src[start:l.pos], pos: start}, nil
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool { return isIdentStart(c) || isDigit(c) }
