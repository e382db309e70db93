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

// Package decl parses constraint declarations written in struct tags.
//
// A tag holds one or more declarations separated by ';'. Each declaration is a
// comma-separated list of items, where an item is either a meta item or a literal:
//
//	range(minimum=0, maximum=10), message='out of range'; multiple_of=5
//
// Meta items come in three shapes:
//
//	unique_items           bare flag        (KindPath)
//	enumerate('a', 'b')    name + list      (KindList)
//	min_length=5           name = literal   (KindNameValue)
//
// The package only knows the grammar. Which names exist, and which shape each
// name requires, is decided by the caller.
package decl

import (
	"strings"
)

// Kind is the syntactic class of a [Meta] item.
type Kind int

const (
	// KindPath is a bare name without arguments.
	KindPath Kind = iota
	// KindList is a name followed by a parenthesized list of items.
	KindList
	// KindNameValue is a name bound to a single literal with '='.
	KindNameValue
)

// String returns the human-readable class name used in diagnostics.
func (k Kind) String() string {
	switch k {
	case KindPath:
		return "bare flag"
	case KindList:
		return "name(...) list"
	case KindNameValue:
		return "name=value"
	default:
		return "unknown"
	}
}

// LitKind is the kind of a [Lit].
type LitKind int

const (
	LitInt LitKind = iota
	LitFloat
	LitString
	LitBool
)

// String returns the literal kind name used in diagnostics.
func (k LitKind) String() string {
	switch k {
	case LitInt:
		return "integer"
	case LitFloat:
		return "float"
	case LitString:
		return "string"
	case LitBool:
		return "bool"
	default:
		return "unknown"
	}
}

// Lit is a literal value.
// For strings, Value holds the unquoted text; for other kinds it holds the source text.
type Lit struct {
	Kind  LitKind
	Value string
	Pos   int
}

// String renders the literal the way it would be written in a tag.
func (l Lit) String() string {
	if l.Kind == LitString {
		return "'" + strings.ReplaceAll(l.Value, "'", `\'`) + "'"
	}

	return l.Value
}

// Item is one element of a declaration or of a list: exactly one of Meta and Lit is set.
type Item struct {
	Meta *Meta
	Lit  *Lit
}

// Pos returns the byte offset of the item in the tag.
func (it Item) Pos() int {
	if it.Meta != nil {
		return it.Meta.Pos
	}
	if it.Lit != nil {
		return it.Lit.Pos
	}

	return 0
}

// String renders the item.
func (it Item) String() string {
	if it.Meta != nil {
		return it.Meta.String()
	}
	if it.Lit != nil {
		return it.Lit.String()
	}

	return ""
}

// Meta is a named item: a bare flag, a list or a name=value pair.
type Meta struct {
	Kind  Kind
	Name  string
	Pos   int
	Args  []Item // KindList only
	Value Lit    // KindNameValue only
}

// String renders the meta item.
func (m *Meta) String() string {
	switch m.Kind {
	case KindList:
		parts := make([]string, len(m.Args))
		for i, a := range m.Args {
			parts[i] = a.String()
		}
		return m.Name + "(" + strings.Join(parts, ", ") + ")"
	case KindNameValue:
		return m.Name + "=" + m.Value.String()
	default:
		return m.Name
	}
}

// Declaration is one ';'-separated group of a tag.
type Declaration struct {
	Items []Item
	Pos   int
	Text  string // source text, trimmed
}

// First returns the leading item, which names the constraint.
func (d Declaration) First() Item {
	if len(d.Items) == 0 {
		return Item{}
	}

	return d.Items[0]
}

// Rest returns the items after the leading one (message overrides).
func (d Declaration) Rest() []Item {
	if len(d.Items) < 2 {
		return nil
	}

	return d.Items[1:]
}
