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

import "strings"

// maxNesting bounds list nesting in a single declaration.
const maxNesting = 32

// Parse splits tag into declarations. Empty declarations (for example a
// trailing ';') are skipped, so an empty tag yields no declarations.
func Parse(tag string) ([]Declaration, error) {
	p := &parser{lex: &lexer{src: tag}}

	return p.parseDeclarations()
}

type parser struct {
	lex   *lexer
	depth int
}

func (p *parser) parseDeclarations() ([]Declaration, error) {
	var decls []Declaration
	for {
		tok, err := p.lex.peekToken()
		if err != nil {
			return nil, err
		}
		switch tok.kind {
		case tokEOF:
			return decls, nil
		case tokSemicolon:
			_, _ = p.lex.next()
			continue
		}

		d, err := p.parseDeclaration()
		if err != nil {
			return nil, err
		}
		decls = append(decls, d)
	}
}

func (p *parser) parseDeclaration() (Declaration, error) {
	first, err := p.lex.peekToken()
	if err != nil {
		return Declaration{}, err
	}

	d := Declaration{Pos: first.pos}
	for {
		item, err := p.parseItem()
		if err != nil {
			return Declaration{}, err
		}
		d.Items = append(d.Items, item)

		tok, err := p.lex.next()
		if err != nil {
			return Declaration{}, err
		}
		switch tok.kind {
		case tokComma:
			continue
		case tokSemicolon, tokEOF:
			d.Text = strings.TrimSpace(p.lex.src[d.Pos:tok.pos])
			return d, nil
		default:
			return Declaration{}, p.lex.errorf(tok.pos, "expected ',' or ';', found %s", tok.kind)
		}
	}
}

func (p *parser) parseItem() (Item, error) {
	tok, err := p.lex.next()
	if err != nil {
		return Item{}, err
	}

	switch tok.kind {
	case tokInt, tokFloat, tokString:
		lit := literal(tok)
		return Item{Lit: &lit}, nil
	case tokIdent:
		if tok.text == "true" || tok.text == "false" {
			return Item{Lit: &Lit{Kind: LitBool, Value: tok.text, Pos: tok.pos}}, nil
		}
		m, err := p.parseMeta(tok)
		if err != nil {
			return Item{}, err
		}
		return Item{Meta: m}, nil
	default:
		return Item{}, p.lex.errorf(tok.pos, "expected a name or a literal, found %s", tok.kind)
	}
}

func (p *parser) parseMeta(name token) (*Meta, error) {
	m := &Meta{Kind: KindPath, Name: name.text, Pos: name.pos}

	tok, err := p.lex.peekToken()
	if err != nil {
		return nil, err
	}

	switch tok.kind {
	case tokLParen:
		_, _ = p.lex.next()
		m.Kind = KindList
		args, err := p.parseList(tok.pos)
		if err != nil {
			return nil, err
		}
		m.Args = args
	case tokEquals:
		_, _ = p.lex.next()
		m.Kind = KindNameValue
		val, err := p.lex.next()
		if err != nil {
			return nil, err
		}
		switch val.kind {
		case tokInt, tokFloat, tokString:
			m.Value = literal(val)
		case tokIdent:
			if val.text != "true" && val.text != "false" {
				return nil, p.lex.errorf(val.pos, "`%s=` expects a literal, found name %q (quote it to pass a string)", m.Name, val.text)
			}
			m.Value = Lit{Kind: LitBool, Value: val.text, Pos: val.pos}
		default:
			return nil, p.lex.errorf(val.pos, "`%s=` expects a literal, found %s", m.Name, val.kind)
		}
	}

	return m, nil
}

// parseList parses items up to and including the closing ')'.
func (p *parser) parseList(open int) ([]Item, error) {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > maxNesting {
		return nil, p.lex.errorf(open, "lists nested deeper than %d levels", maxNesting)
	}

	tok, err := p.lex.peekToken()
	if err != nil {
		return nil, err
	}
	if tok.kind == tokRParen {
		_, _ = p.lex.next()
		return nil, nil
	}

	var items []Item
	for {
		item, err := p.parseItem()
		if err != nil {
			return nil, err
		}
		items = append(items, item)

		tok, err := p.lex.next()
		if err != nil {
			return nil, err
		}
		switch tok.kind {
		case tokComma:
			continue
		case tokRParen:
			return items, nil
		case tokEOF, tokSemicolon:
			return nil, p.lex.errorf(open, "unclosed '('")
		default:
			return nil, p.lex.errorf(tok.pos, "expected ',' or ')', found %s", tok.kind)
		}
	}
}

func literal(tok token) Lit {
	switch tok.kind {
	case tokInt:
		return Lit{Kind: LitInt, Value: tok.text, Pos: tok.pos}
	case tokFloat:
		return Lit{Kind: LitFloat, Value: tok.text, Pos: tok.pos}
	default:
		return Lit{Kind: LitString, Value: tok.text, Pos: tok.pos}
	}
}
