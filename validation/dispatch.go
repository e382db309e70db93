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
	"maps"
	"slices"
	"strings"

	"rivaas.dev/constraint/validation/internal/decl"
)

// extractor compiles one constraint of a declaration against a field.
// It returns nil after recording diagnostics.
type extractor func(d *declContext, f fieldView, m *decl.Meta) node

// extractors holds the constraint vocabulary by syntactic class. It is filled
// in init because extractors reach the dispatcher again through nested.
var extractors map[decl.Kind]map[string]extractor

func init() {
	extractors = map[decl.Kind]map[string]extractor{
		decl.KindPath: {
			"unique_items": extractUniqueItems,
			"nested":       extractNested,
		},
		decl.KindList: {
			"range":     extractRange,
			"enumerate": extractEnumerate,
			"custom":    extractCustom,
		},
		decl.KindNameValue: {
			CodeMinimum:          extractBound,
			CodeMaximum:          extractBound,
			CodeExclusiveMinimum: extractBound,
			CodeExclusiveMaximum: extractBound,
			CodeMinLength:        extractLength,
			CodeMaxLength:        extractLength,
			CodeMinItems:         extractItems,
			CodeMaxItems:         extractItems,
			CodeMinProperties:    extractProperties,
			CodeMaxProperties:    extractProperties,
			CodeMultipleOf:       extractMultipleOf,
			CodePattern:          extractPattern,
			CodeFormat:           extractFormat,
		},
	}
}

// classExample shows how a name of each class is written.
func classExample(kind decl.Kind, name string) string {
	switch kind {
	case decl.KindPath:
		return "`" + name + "`"
	case decl.KindList:
		return "`" + name + "(...)`"
	default:
		return "`" + name + "=value`"
	}
}

// knownClass returns the class a name belongs to outside of the constraint
// tables: message overrides and struct-level rules.
func knownClass(name string) (decl.Kind, bool) {
	switch name {
	case overrideMessage:
		return decl.KindNameValue, true
	case overrideMessageFn, ruleName:
		return decl.KindList, true
	}
	for kind, table := range extractors {
		if _, ok := table[name]; ok {
			return kind, true
		}
	}

	return 0, false
}

// dispatch routes the leading meta item of a declaration to its extractor.
func (d *declContext) dispatch(m *decl.Meta) node {
	if ext, ok := extractors[m.Kind][m.Name]; ok {
		return ext(d, d.field, m)
	}

	switch m.Name {
	case ruleName:
		d.errorf(m.Pos, "`rule(...)` is a struct-level declaration; put it on a blank field: _ struct{} `%s:\"rule(fn(0, 1))\"`", d.sc.s.cfg.tagName)
		return nil
	case overrideMessage, overrideMessageFn:
		d.errorf(m.Pos, "`%s` overrides the message of a constraint and must follow one, as in `maximum=10, %s`", m.Name, classExample(mustClass(m.Name), m.Name))
		return nil
	}

	if kind, ok := knownClass(m.Name); ok {
		d.errorf(m.Pos, "`%s` must be written as %s (%s), found %s", m.Name, kind, classExample(kind, m.Name), m.Kind)
		return nil
	}

	d.errorf(m.Pos, "unknown constraint `%s` for %s; expected one of: %s", m.Name, m.Kind, strings.Join(validNames(m.Kind), ", "))

	return nil
}

func mustClass(name string) decl.Kind {
	kind, _ := knownClass(name)
	return kind
}

// validNames lists the constraint names of a class, sorted.
func validNames(kind decl.Kind) []string {
	return slices.Sorted(maps.Keys(extractors[kind]))
}
