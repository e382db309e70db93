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

package validation

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"
	"unicode"
)

// schemaDraft is the dialect of exported schemas.
const schemaDraft = "https://json-schema.org/draft/2020-12/schema"

var timeType = reflect.TypeFor[time.Time]()

// JSONSchema exports the JSON Schema (draft 2020-12) of val's struct type
// using the default [Validator]. See [Validator.JSONSchema].
func JSONSchema(val any) ([]byte, error) {
	return getDefaultValidator().JSONSchema(val)
}

// JSONSchema exports a JSON Schema (draft 2020-12) describing the JSON
// encoding of val's struct type, with its declared constraints mapped to
// schema keywords (minimum, exclusiveMaximum, minLength, maxItems,
// uniqueItems, multipleOf, enum, pattern, minProperties, format, ...).
// Struct types become $defs entries. Constraints without a keyword
// equivalent (custom functions, rules, most formats) are left out.
//
// The result is checked by compiling it before it is returned.
func (v *Validator) JSONSchema(val any) ([]byte, error) {
	if err := v.Compile(val); err != nil {
		return nil, err
	}
	t := reflect.TypeOf(val)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	e := &schemaExporter{
		v:     v,
		defs:  make(map[string]any),
		names: make(map[reflect.Type]string),
		used:  make(map[string]reflect.Type),
	}
	doc := e.ref(t)
	if err := e.applyConstraints(t); err != nil {
		return nil, err
	}
	doc["$schema"] = schemaDraft
	doc["$defs"] = e.defs

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode schema: %w", err)
	}
	if _, err := compileSchema(e.names[t]+".json", string(out)); err != nil {
		return nil, fmt.Errorf("exported schema of %s: %w", t, err)
	}

	return out, nil
}

type schemaExporter struct {
	v     *Validator
	defs  map[string]any
	names map[reflect.Type]string
	used  map[string]reflect.Type
}

// typeSchema describes the JSON encoding of t.
func (e *schemaExporter) typeSchema(t reflect.Type) map[string]any {
	switch t.Kind() {
	case reflect.Pointer:
		return map[string]any{"anyOf": []any{map[string]any{"type": "null"}, e.typeSchema(t.Elem())}}
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return map[string]any{"type": []any{"string", "null"}, "contentEncoding": "base64"}
		}
		return map[string]any{"type": []any{"array", "null"}, "items": e.typeSchema(t.Elem())}
	case reflect.Array:
		return map[string]any{"type": "array", "items": e.typeSchema(t.Elem())}
	case reflect.Map:
		return map[string]any{"type": []any{"object", "null"}, "additionalProperties": e.typeSchema(t.Elem())}
	case reflect.Struct:
		if t == timeType {
			return map[string]any{"type": "string", "format": "date-time"}
		}
		return e.ref(t)
	case reflect.String:
		return map[string]any{"type": "string"}
	case reflect.Bool:
		return map[string]any{"type": "boolean"}
	case reflect.Float32, reflect.Float64:
		return map[string]any{"type": "number"}
	default:
		if _, ok := numericFamily(t); ok {
			return map[string]any{"type": "integer"}
		}
		return map[string]any{}
	}
}

// ref registers the struct type t in $defs and returns a reference to it.
func (e *schemaExporter) ref(t reflect.Type) map[string]any {
	name, ok := e.names[t]
	if !ok {
		name = e.defName(t)
		e.names[t] = name
		e.used[name] = t
		e.defs[name] = e.structSchema(t)
	}

	return map[string]any{"$ref": "#/$defs/" + name}
}

func (e *schemaExporter) defName(t reflect.Type) string {
	name := sanitizeDefName(t.Name())
	if name == "" {
		name = "Anonymous"
	}
	if _, taken := e.used[name]; !taken {
		return name
	}

	qualified := sanitizeDefName(t.PkgPath() + "." + name)
	candidate := qualified
	for i := 2; ; i++ {
		if _, taken := e.used[candidate]; !taken {
			return candidate
		}
		candidate = fmt.Sprintf("%s_%d", qualified, i)
	}
}

func sanitizeDefName(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			return r
		}
		return '_'
	}, s)
}

// structSchema describes the properties of a struct the way encoding/json
// writes them.
func (e *schemaExporter) structSchema(t reflect.Type) map[string]any {
	props := make(map[string]any)
	for i := range t.NumField() {
		sf := t.Field(i)
		if !sf.IsExported() || isRuleMarker(sf) || sf.Tag.Get("json") == "-" {
			continue
		}
		props[fieldKey(sf)] = e.typeSchema(sf.Type)
	}

	return map[string]any{"type": "object", "properties": props}
}

// applyConstraints adds the keywords of root's plan, and of every plan it
// reaches through nested, to the matching $defs entries.
func (e *schemaExporter) applyConstraints(root reflect.Type) error {
	queue := []reflect.Type{root}
	seen := map[reflect.Type]bool{root: true}

	for len(queue) > 0 {
		t := queue[0]
		queue = queue[1:]

		p, err := e.v.planFor(t)
		if err != nil {
			return err
		}
		def, _ := e.defs[e.names[t]].(map[string]any)
		props, _ := def["properties"].(map[string]any)

		for _, f := range p.fields {
			target, ok := props[f.name].(map[string]any)
			if !ok {
				continue
			}
			for _, n := range f.nodes {
				e.applyNode(n, target, func(nested *plan) {
					if !seen[nested.typ] {
						seen[nested.typ] = true
						queue = append(queue, nested.typ)
					}
				})
			}
		}
	}

	return nil
}

// applyNode follows the node's container layers through the schema and adds
// the leaf's keywords where they land.
func (e *schemaExporter) applyNode(n node, s map[string]any, reach func(*plan)) {
	switch n := n.(type) {
	case arrayNode:
		if items, ok := s["items"].(map[string]any); ok {
			e.applyNode(n.inner, items, reach)
		}
	case optionNode:
		if alts, ok := s["anyOf"].([]any); ok && len(alts) == 2 {
			if inner, ok := alts[1].(map[string]any); ok {
				e.applyNode(n.inner, inner, reach)
			}
		}
	case normalNode:
		switch l := n.leaf.(type) {
		case *checkLeaf:
			addKeywords(s, l.keywords)
		case *nestedLeaf:
			if l.plan != nil {
				reach(l.plan)
			}
		}
	}
}

// addKeywords sets keywords on s. A keyword already present is kept and the
// new value goes into allOf.
func addKeywords(s map[string]any, keywords map[string]any) {
	for k, val := range keywords {
		if _, exists := s[k]; !exists {
			s[k] = val
			continue
		}
		allOf, _ := s["allOf"].([]any)
		s["allOf"] = append(allOf, map[string]any{k: val})
	}
}
