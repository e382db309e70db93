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
	"fmt"
	"reflect"
	"slices"

	"github.com/spf13/cast"

	"rivaas.dev/constraint/validation/internal/decl"
)

// ruleName is the struct-level declaration binding a cross-field rule.
const ruleName = "rule"

// ruleBinding calls a registered rule function with the values of the fields
// it names, in the listed order.
type ruleBinding struct {
	name    string
	fn      reflect.Value
	indices []int
	fields  []string
	msg     messageOverride
}

// apply returns the violation reported by the rule, or nil.
func (r *ruleBinding) apply(s *applyState, path string, v reflect.Value) *Violation {
	args := make([]reflect.Value, len(r.indices))
	for i, idx := range r.indices {
		args[i] = v.Field(idx)
	}

	out := r.fn.Call(args)
	err, _ := out[0].Interface().(error)
	if err == nil {
		return nil
	}

	viol := violationFromError(err, CodeRule)
	if _, ok := viol.Params["rule"]; !ok {
		viol.Params["rule"] = r.name
	}
	viol.Params["fields"] = slices.Clone(r.fields)
	s.finish(path, r.msg, viol)

	return viol
}

// compileRules compiles the declarations of a blank marker field. Only rule
// declarations are accepted there.
func (sc *structCompiler) compileRules(f fieldView, tag string) {
	decls, err := decl.Parse(tag)
	if err != nil {
		sc.syntaxError(f, err)
		return
	}

	for _, dcl := range decls {
		d := &declContext{sc: sc, field: f, decl: dcl}
		first := dcl.First()
		if first.Meta == nil || first.Meta.Name != ruleName || first.Meta.Kind != decl.KindList {
			d.errorf(first.Pos(), "expected a constraint or `rule(fn(...))`; blank fields only take rules, found %s", first)
			continue
		}

		msg, ok := d.parseOverride(dcl.Rest())
		d.msg = msg
		if b := d.bindRule(first.Meta); b != nil && ok {
			sc.p.rules = append(sc.p.rules, b)
		}
	}
}

// bindRule resolves rule(fn(i, j, ...)). Arguments are field indices in
// declaration order, or field names. Every field may be claimed by one rule.
func (d *declContext) bindRule(m *decl.Meta) *ruleBinding {
	if len(m.Args) != 1 || m.Args[0].Meta == nil || m.Args[0].Meta.Kind != decl.KindList {
		d.errorf(m.Pos, "`rule` takes one function call listing fields, as in `rule(fn(0, 1))`")
		return nil
	}
	call := m.Args[0].Meta

	fn, fnOK := d.sc.s.cfg.rules[call.Name]
	if !fnOK {
		d.errorf(call.Pos, "unknown rule function `%s`; register it with WithRule", call.Name)
	}

	t := d.sc.p.typ
	if d.sc.claimed == nil {
		d.sc.claimed = make(map[int]string)
	}

	ok := fnOK
	b := &ruleBinding{name: call.Name, fn: fn, msg: d.msg}
	for _, arg := range call.Args {
		idx, found := d.ruleField(t, arg)
		if !found {
			ok = false
			continue
		}
		if slices.Contains(b.indices, idx) {
			d.errorf(arg.Pos(), "field %s is listed twice", t.Field(idx).Name)
			ok = false
			continue
		}
		if owner, claimed := d.sc.claimed[idx]; claimed {
			d.errorf(arg.Pos(), "field %s (index %d) is already claimed by `%s`", t.Field(idx).Name, idx, owner)
			ok = false
			continue
		}
		d.sc.claimed[idx] = d.decl.Text
		b.indices = append(b.indices, idx)
		b.fields = append(b.fields, fieldKey(t.Field(idx)))
	}
	if len(call.Args) == 0 {
		d.errorf(call.Pos, "rule function `%s` needs at least one field", call.Name)
		ok = false
	}
	if !ok {
		return nil
	}

	ft := fn.Type()
	if ft.NumIn() != len(b.indices) {
		d.errorf(call.Pos, "rule function `%s` takes %d arguments, but %d fields are listed", call.Name, ft.NumIn(), len(b.indices))
		return nil
	}
	for i, idx := range b.indices {
		field := t.Field(idx)
		if !field.Type.AssignableTo(ft.In(i)) {
			d.errorf(call.Args[i].Pos(), "argument %d of rule function `%s` is %s, which does not accept field %s of type %s",
				i, call.Name, ft.In(i), field.Name, field.Type)
			ok = false
		}
	}
	if !ok {
		return nil
	}

	return b
}

// ruleField resolves one rule argument to a field index.
func (d *declContext) ruleField(t reflect.Type, arg decl.Item) (int, bool) {
	var idx int
	switch {
	case arg.Lit != nil && arg.Lit.Kind == decl.LitInt:
		i, err := cast.ToIntE(arg.Lit.Value)
		if err != nil || i < 0 || i >= t.NumField() {
			d.errorf(arg.Pos(), "field index %s is out of range; %s has %d fields", arg.Lit.Value, t, t.NumField())
			return 0, false
		}
		idx = i
	case arg.Meta != nil && arg.Meta.Kind == decl.KindPath:
		i, found := fieldIndexByName(t, arg.Meta.Name)
		if !found {
			d.errorf(arg.Pos(), "%s has no field named %s", t, arg.Meta.Name)
			return 0, false
		}
		idx = i
	default:
		d.errorf(arg.Pos(), "expected a field index or field name, found %s", arg)
		return 0, false
	}

	field := t.Field(idx)
	if isRuleMarker(field) || !field.IsExported() {
		d.errorf(arg.Pos(), "field index %d refers to %s, which is not an exported field", idx, fieldLabel(field))
		return 0, false
	}

	return idx, true
}

// fieldIndexByName finds a field by Go name or error key.
func fieldIndexByName(t reflect.Type, name string) (int, bool) {
	for i := range t.NumField() {
		f := t.Field(i)
		if isRuleMarker(f) {
			continue
		}
		if f.Name == name || fieldKey(f) == name {
			return i, true
		}
	}

	return 0, false
}

func fieldLabel(f reflect.StructField) string {
	if isRuleMarker(f) {
		return "a blank field"
	}

	return fmt.Sprintf("field %s", f.Name)
}
