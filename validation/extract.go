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
	"errors"
	"maps"
	"reflect"
	"regexp"
	"slices"
	"strings"

	"rivaas.dev/constraint/validation/internal/decl"
)

// schemaKeywords maps constraint names to JSON Schema keywords.
var schemaKeywords = map[string]string{
	CodeMinimum:          "minimum",
	CodeMaximum:          "maximum",
	CodeExclusiveMinimum: "exclusiveMinimum",
	CodeExclusiveMaximum: "exclusiveMaximum",
	CodeMultipleOf:       "multipleOf",
	CodeMinLength:        "minLength",
	CodeMaxLength:        "maxLength",
	CodeMinItems:         "minItems",
	CodeMaxItems:         "maxItems",
	CodeMinProperties:    "minProperties",
	CodeMaxProperties:    "maxProperties",
	CodePattern:          "pattern",
}

// rangeBounds lists the bound names accepted inside range(...).
var rangeBounds = []string{CodeExclusiveMaximum, CodeExclusiveMinimum, CodeMaximum, CodeMinimum}

// leaf wraps a check in a normal node carrying the declaration's message override.
func (d *declContext) leaf(test func(reflect.Value) *Violation, keywords map[string]any) node {
	return normalNode{leaf: &checkLeaf{test: test, msg: d.msg, keywords: keywords}}
}

// mismatch records that m cannot apply to the type reached after peeling.
func (d *declContext) mismatch(m *decl.Meta, f fieldView, want string) node {
	d.errorf(m.Pos, "`%s` cannot be applied to %s; it needs %s", m.Name, f.typ, want)
	return nil
}

// numericBase guards the base case of numeric constraints.
func (d *declContext) numericBase(m *decl.Meta, f fieldView) bool {
	if _, ok := numericFamily(f.typ); ok {
		return true
	}
	d.mismatch(m, f, "an integer, unsigned or float type")

	return false
}

func extractBound(d *declContext, f fieldView, m *decl.Meta) node {
	return peelElements(f, func(f fieldView) node {
		if !d.numericBase(m, f) {
			return nil
		}
		n, problem := coerceNumber(m.Value, f.typ)
		if problem != "" {
			d.errorf(m.Value.Pos, "`%s` %s", m.Name, problem)
			return nil
		}
		return d.leaf(rangeTest([]bound{{code: m.Name, n: n}}), map[string]any{schemaKeywords[m.Name]: n.value()})
	})
}

func extractRange(d *declContext, f fieldView, m *decl.Meta) node {
	given := make(map[string]decl.Lit, len(m.Args))
	var order []string
	ok := true
	for _, arg := range m.Args {
		if arg.Meta == nil {
			d.errorf(arg.Pos(), "`range` expects named bounds such as `minimum=0`, found literal %s", arg)
			ok = false
			continue
		}
		b := arg.Meta
		if b.Kind != decl.KindNameValue || !slices.Contains(rangeBounds, b.Name) {
			d.errorf(b.Pos, "unknown bound `%s` in `range`; expected one of: %s", b, strings.Join(rangeBounds, ", "))
			ok = false
			continue
		}
		if _, dup := given[b.Name]; dup {
			d.errorf(b.Pos, "bound `%s` is given twice", b.Name)
			ok = false
			continue
		}
		given[b.Name] = b.Value
		order = append(order, b.Name)
	}
	if !ok {
		return nil
	}
	if len(given) == 0 {
		d.errorf(m.Pos, "`range` needs at least one bound")
		return nil
	}
	for _, pair := range [][2]string{{CodeMinimum, CodeExclusiveMinimum}, {CodeMaximum, CodeExclusiveMaximum}} {
		_, a := given[pair[0]]
		_, b := given[pair[1]]
		if a && b {
			d.errorf(m.Pos, "`%s` and `%s` cannot both be set", pair[0], pair[1])
			return nil
		}
	}

	return peelElements(f, func(f fieldView) node {
		if !d.numericBase(m, f) {
			return nil
		}
		bounds := make([]bound, 0, len(order))
		keywords := make(map[string]any, len(order))
		for _, name := range order {
			lit := given[name]
			n, problem := coerceNumber(lit, f.typ)
			if problem != "" {
				d.errorf(lit.Pos, "`%s` %s", name, problem)
				return nil
			}
			bounds = append(bounds, bound{code: name, n: n})
			keywords[schemaKeywords[name]] = n.value()
		}
		return d.leaf(rangeTest(bounds), keywords)
	})
}

func extractMultipleOf(d *declContext, f fieldView, m *decl.Meta) node {
	return peelElements(f, func(f fieldView) node {
		if !d.numericBase(m, f) {
			return nil
		}
		n, problem := coerceNumber(m.Value, f.typ)
		if problem != "" {
			d.errorf(m.Value.Pos, "`%s` %s", m.Name, problem)
			return nil
		}
		if n.isZero() {
			d.errorf(m.Value.Pos, "`multiple_of` must not be zero")
			return nil
		}
		var keywords map[string]any
		if n.positive() {
			keywords = map[string]any{"multipleOf": n.value()}
		}
		return d.leaf(multipleOfTest(n), keywords)
	})
}

func extractLength(d *declContext, f fieldView, m *decl.Meta) node {
	limit, problem := coerceLength(m.Value)
	if problem != "" {
		d.errorf(m.Value.Pos, "`%s` %s", m.Name, problem)
		return nil
	}

	return peelElements(f, func(f fieldView) node {
		if f.typ.Kind() != reflect.String {
			return d.mismatch(m, f, "a string")
		}
		return d.leaf(lengthTest(m.Name, limit), map[string]any{schemaKeywords[m.Name]: limit})
	})
}

func extractItems(d *declContext, f fieldView, m *decl.Meta) node {
	limit, problem := coerceLength(m.Value)
	if problem != "" {
		d.errorf(m.Value.Pos, "`%s` %s", m.Name, problem)
		return nil
	}

	return peelOptions(f, func(f fieldView) node {
		if k := f.typ.Kind(); k != reflect.Slice && k != reflect.Array {
			return d.mismatch(m, f, "a slice or array")
		}
		return d.leaf(sizeTest(m.Name, limit, m.Name == CodeMinItems), map[string]any{schemaKeywords[m.Name]: limit})
	})
}

func extractProperties(d *declContext, f fieldView, m *decl.Meta) node {
	limit, problem := coerceLength(m.Value)
	if problem != "" {
		d.errorf(m.Value.Pos, "`%s` %s", m.Name, problem)
		return nil
	}

	return peelOptions(f, func(f fieldView) node {
		if f.typ.Kind() != reflect.Map {
			return d.mismatch(m, f, "a map")
		}
		return d.leaf(sizeTest(m.Name, limit, m.Name == CodeMinProperties), map[string]any{schemaKeywords[m.Name]: limit})
	})
}

func extractUniqueItems(d *declContext, f fieldView, m *decl.Meta) node {
	return peelOptions(f, func(f fieldView) node {
		if k := f.typ.Kind(); k != reflect.Slice && k != reflect.Array {
			return d.mismatch(m, f, "a slice or array")
		}
		return d.leaf(uniqueTest(f.typ.Elem()), map[string]any{"uniqueItems": true})
	})
}

func extractPattern(d *declContext, f fieldView, m *decl.Meta) node {
	if m.Value.Kind != decl.LitString {
		d.errorf(m.Value.Pos, "`pattern` expects a string literal, found %s %s", m.Value.Kind, m.Value)
		return nil
	}
	re, err := regexp.Compile(m.Value.Value)
	if err != nil {
		d.errorf(m.Value.Pos, "invalid pattern: %v", err)
		return nil
	}

	return peelElements(f, func(f fieldView) node {
		if f.typ.Kind() != reflect.String {
			return d.mismatch(m, f, "a string")
		}
		return d.leaf(patternTest(re), map[string]any{"pattern": re.String()})
	})
}

func extractFormat(d *declContext, f fieldView, m *decl.Meta) node {
	if m.Value.Kind != decl.LitString {
		d.errorf(m.Value.Pos, "`format` expects a string literal, found %s %s", m.Value.Kind, m.Value)
		return nil
	}
	name := m.Value.Value
	valid, ok := d.sc.s.v.formatFunc(name)
	if !ok {
		d.errorf(m.Value.Pos, "unknown format %q; expected one of: %s", name, strings.Join(d.sc.s.v.formatNames(), ", "))
		return nil
	}

	var keywords map[string]any
	if kw, ok := schemaFormats[name]; ok {
		keywords = map[string]any{"format": kw}
	}

	return peelElements(f, func(f fieldView) node {
		if f.typ.Kind() != reflect.String {
			return d.mismatch(m, f, "a string")
		}
		return d.leaf(formatTest(name, valid), keywords)
	})
}

func extractEnumerate(d *declContext, f fieldView, m *decl.Meta) node {
	if len(m.Args) == 0 {
		d.errorf(m.Pos, "`enumerate` needs at least one value")
		return nil
	}
	for _, arg := range m.Args {
		if arg.Lit == nil {
			d.errorf(arg.Pos(), "`enumerate` members must be literals, found %s", arg)
			return nil
		}
	}

	return peelElements(f, func(f fieldView) node {
		members := make([]any, 0, len(m.Args))
		shown := make([]any, 0, len(m.Args))
		for _, arg := range m.Args {
			member, problem := coerceMember(*arg.Lit, f.typ)
			if problem != "" {
				d.errorf(arg.Pos(), "`enumerate` %s", problem)
				return nil
			}
			members = append(members, member)
			if n, ok := member.(number); ok {
				shown = append(shown, n.value())
				continue
			}
			shown = append(shown, member)
		}
		return d.leaf(enumerateTest(members), map[string]any{"enum": shown})
	})
}

// peelUntil peels sequence and optional layers until stop accepts the type.
// Optionals are peeled before stop is consulted, so nil pointers are skipped
// rather than passed on.
func peelUntil(f fieldView, stop func(reflect.Type) bool, build func(fieldView) node) node {
	if inner, ok := f.optionField(); ok {
		n := peelUntil(inner, stop, build)
		if n == nil {
			return nil
		}
		return optionNode{inner: n}
	}
	if stop(f.typ) {
		return build(f)
	}
	if inner, ok := f.arrayField(); ok {
		n := peelUntil(inner, stop, build)
		if n == nil {
			return nil
		}
		return arrayNode{inner: n}
	}

	return build(f)
}

func extractNested(d *declContext, f fieldView, m *decl.Meta) node {
	return peelUntil(f, isNestable, func(f fieldView) node {
		if !isNestable(f.typ) {
			return d.mismatch(m, f, "a struct or a type implementing ValidatorInterface or ValidatorWithContext")
		}

		l := &nestedLeaf{validates: implementsValidation(f.typ)}
		if f.typ.Kind() == reflect.Struct {
			l.plan = d.sc.s.plan(f.typ)
			d.sc.p.deps = append(d.sc.p.deps, l.plan)
		}
		return normalNode{leaf: l}
	})
}

func isNestable(t reflect.Type) bool {
	return t.Kind() == reflect.Struct || implementsValidation(t)
}

// nestedLeaf validates a nested value with its own plan and, when the type
// implements one of the validation interfaces, its Validate method. Errors of
// the method are struct-level errors of the nested value.
type nestedLeaf struct {
	plan      *plan
	validates bool
}

func (l *nestedLeaf) check(s *applyState, path string, v reflect.Value) Errors {
	if s.depth >= maxRecursionDepth {
		viol := &Violation{Code: CodeMaxDepth, Params: map[string]any{CodeMaxDepth: maxRecursionDepth}}
		s.finish(path, messageOverride{}, viol)
		return NewTypeErrors{*viol}
	}
	s.depth++
	defer func() { s.depth-- }()

	var tree Errors
	if l.plan != nil {
		tree = l.plan.apply(s, path, v)
	}
	if l.validates {
		if err := callValidation(s.ctx, v); err != nil {
			tree = mergeLenient(tree, s.userErrors(path, err, CodeInterface))
		}
	}

	return tree
}

func extractCustom(d *declContext, f fieldView, m *decl.Meta) node {
	if len(m.Args) != 1 || m.Args[0].Meta == nil || m.Args[0].Meta.Kind != decl.KindPath {
		d.errorf(m.Pos, "`custom` takes exactly one function name, as in `custom(is_even)`")
		return nil
	}
	name := m.Args[0].Meta.Name
	fn, ok := d.sc.s.cfg.customs[name]
	if !ok {
		d.errorf(m.Args[0].Pos(), "unknown custom function `%s`; register it with WithCustom", name)
		return nil
	}
	param := fn.Type().In(0)

	return peelUntil(f, func(t reflect.Type) bool { return t.AssignableTo(param) }, func(f fieldView) node {
		if !f.typ.AssignableTo(param) {
			d.errorf(m.Args[0].Pos(), "custom function `%s` takes %s, which does not accept %s", name, param, f.typ)
			return nil
		}
		return normalNode{leaf: &customLeaf{name: name, fn: fn, msg: d.msg}}
	})
}

// customLeaf calls a registered func(T) error.
type customLeaf struct {
	name string
	fn   reflect.Value
	msg  messageOverride
}

func (l *customLeaf) check(s *applyState, path string, v reflect.Value) Errors {
	out := l.fn.Call([]reflect.Value{v})
	err, _ := out[0].Interface().(error)
	if err == nil {
		return nil
	}

	viol := violationFromError(err, CodeCustom)
	if _, ok := viol.Params["value"]; !ok && v.CanInterface() {
		viol.Params["value"] = v.Interface()
	}
	s.finish(path, l.msg, viol)

	return NewTypeErrors{*viol}
}

// violationFromError copies a returned *Violation, or wraps err's text in a
// violation with the given code.
func violationFromError(err error, code string) *Violation {
	var viol *Violation
	if errors.As(err, &viol) {
		c := *viol
		c.Params = maps.Clone(viol.Params)
		if c.Params == nil {
			c.Params = make(map[string]any, 1)
		}
		if c.Code == "" {
			c.Code = code
		}
		return &c
	}

	return &Violation{Code: code, Message: err.Error(), Params: make(map[string]any, 1)}
}

// userErrors converts an error returned by user code into a tree and resolves
// the messages of its flat violations.
func (s *applyState) userErrors(path string, err error, code string) Errors {
	tree := treeFromError(err, code)
	list, ok := tree.(NewTypeErrors)
	if !ok {
		return tree
	}

	out := make(NewTypeErrors, len(list))
	for i, v := range list {
		v.Params = maps.Clone(v.Params)
		if v.Params == nil {
			v.Params = make(map[string]any)
		}
		s.finish(path, messageOverride{}, &v)
		out[i] = v
	}

	return out
}
