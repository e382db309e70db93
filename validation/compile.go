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
	"log/slog"
	"reflect"
	"strings"

	"rivaas.dev/constraint/validation/internal/decl"
)

// plan is the compiled form of a struct type: the nodes of every declared
// field and the struct-level rules.
type plan struct {
	typ    reflect.Type
	fields []planField
	rules  []*ruleBinding

	diags []Diagnostic // found in this type
	deps  []*plan      // plans reached through nested
	err   error        // set when this type or a dependency has diagnostics
}

type planField struct {
	index int
	name  string
	nodes []node
}

// apply validates the struct value v and returns its object tree.
func (p *plan) apply(s *applyState, path string, v reflect.Value) Errors {
	var fields map[string]Errors
	for _, f := range p.fields {
		fv := v.Field(f.index)
		fpath := s.child(path, f.name)

		var tree Errors
		for _, n := range f.nodes {
			if e := n.apply(s, fpath, fv); !isEmpty(e) {
				tree = Merge(tree, e)
			}
		}
		if tree == nil {
			continue
		}
		if fields == nil {
			fields = make(map[string]Errors)
		}
		fields[f.name] = tree
	}

	var own NewTypeErrors
	for _, r := range p.rules {
		if viol := r.apply(s, path, v); viol != nil {
			own = append(own, *viol)
		}
	}
	if len(own) > 0 {
		if fields == nil {
			fields = make(map[string]Errors, 1)
		}
		fields[StructErrorsKey] = own
	}

	if fields == nil {
		return nil
	}

	return &ObjectErrors{Fields: fields}
}

// session compiles one type and every type it reaches that has no plan yet.
// Plans become visible to other goroutines only once the session finishes.
type session struct {
	v       *Validator
	cfg     *config
	pending map[reflect.Type]*plan
	order   []*plan
}

// planFor returns the compiled plan of the struct type t, compiling it on
// first use. The error is a [*CompileError] when a declaration of t, or of a
// type it nests, is invalid.
func (v *Validator) planFor(t reflect.Type) (*plan, error) {
	if cached, ok := v.plans.Load(t); ok {
		p, _ := cached.(*plan)
		return p, p.err
	}

	v.compileMu.Lock()
	defer v.compileMu.Unlock()

	if cached, ok := v.plans.Load(t); ok {
		p, _ := cached.(*plan)
		return p, p.err
	}

	s := &session{v: v, cfg: v.cfg, pending: make(map[reflect.Type]*plan)}
	root := s.plan(t)
	s.finish()

	return root, root.err
}

func (s *session) plan(t reflect.Type) *plan {
	if cached, ok := s.v.plans.Load(t); ok {
		p, _ := cached.(*plan)
		return p
	}
	if p, ok := s.pending[t]; ok {
		return p
	}

	p := &plan{typ: t}
	s.pending[t] = p
	s.order = append(s.order, p)
	(&structCompiler{s: s, p: p}).compile()

	return p
}

func (s *session) finish() {
	for _, p := range s.order {
		diags := collectDiagnostics(p)
		if len(diags) == 0 {
			s.cfg.logger.Debug("compiled constraints",
				slog.String("type", p.typ.String()),
				slog.Int("fields", len(p.fields)),
				slog.Int("rules", len(p.rules)),
			)
			continue
		}
		p.err = &CompileError{Diagnostics: diags}
		s.cfg.logger.Warn("constraint compilation failed",
			slog.String("type", p.typ.String()),
			slog.Int("diagnostics", len(diags)),
			slog.String("first", diags[0].String()),
		)
	}
	for _, p := range s.order {
		s.v.plans.Store(p.typ, p)
	}
}

// collectDiagnostics gathers the diagnostics of root and every plan it reaches.
func collectDiagnostics(root *plan) []Diagnostic {
	var out []Diagnostic
	seen := make(map[*plan]bool)

	var visit func(p *plan)
	visit = func(p *plan) {
		if seen[p] {
			return
		}
		seen[p] = true
		out = append(out, p.diags...)
		for _, dep := range p.deps {
			visit(dep)
		}
	}
	visit(root)

	return out
}

// structCompiler compiles the declarations of one struct type.
type structCompiler struct {
	s *session
	p *plan

	// claimed maps field indices to the rule declaration using them.
	claimed map[int]string
}

func (sc *structCompiler) compile() {
	t := sc.p.typ
	keys := make(map[string]string)

	for i := range t.NumField() {
		sf := t.Field(i)
		tag, ok := sf.Tag.Lookup(sc.s.cfg.tagName)
		if !ok || strings.TrimSpace(tag) == "" {
			continue
		}

		if isRuleMarker(sf) {
			sc.compileRules(fieldView{index: i, typ: sf.Type}, tag)
			continue
		}

		f := fieldView{name: fieldKey(sf), ident: sf.Name, index: i, typ: sf.Type}
		if !sf.IsExported() {
			sc.errorf(f, decl.Declaration{}, 0, "unexported field cannot carry constraints")
			continue
		}
		if prev, dup := keys[f.name]; dup {
			sc.errorf(f, decl.Declaration{}, 0, "error key %q is already used by field %s", f.name, prev)
			continue
		}
		keys[f.name] = sf.Name

		if nodes := sc.compileField(f, tag); len(nodes) > 0 {
			sc.p.fields = append(sc.p.fields, planField{index: i, name: f.name, nodes: nodes})
		}
	}
}

func (sc *structCompiler) compileField(f fieldView, tag string) []node {
	decls, err := decl.Parse(tag)
	if err != nil {
		sc.syntaxError(f, err)
		return nil
	}

	var nodes []node
	for _, d := range decls {
		dc := &declContext{sc: sc, field: f, decl: d}
		if n := dc.compile(); n != nil {
			nodes = append(nodes, n)
		}
	}

	return nodes
}

func (sc *structCompiler) syntaxError(f fieldView, err error) {
	if serr, ok := err.(*decl.SyntaxError); ok {
		sc.errorf(f, decl.Declaration{Text: serr.Input}, serr.Pos, "%s", serr.Msg)
		return
	}
	sc.errorf(f, decl.Declaration{}, 0, "%v", err)
}

func (sc *structCompiler) errorf(f fieldView, d decl.Declaration, pos int, format string, args ...any) {
	sc.p.diags = append(sc.p.diags, Diagnostic{
		Type:        sc.p.typ.String(),
		Field:       f.ident,
		Declaration: d.Text,
		Pos:         pos,
		Message:     fmt.Sprintf(format, args...),
	})
}

// declContext is the state of compiling one declaration.
type declContext struct {
	sc    *structCompiler
	field fieldView
	decl  decl.Declaration
	msg   messageOverride
}

func (d *declContext) errorf(pos int, format string, args ...any) {
	d.sc.errorf(d.field, d.decl, pos, format, args...)
}

// compile turns one field declaration into a node, or records diagnostics
// and returns nil.
func (d *declContext) compile() node {
	first := d.decl.First()
	if first.Meta == nil {
		d.errorf(first.Pos(), "expected a constraint, found literal %s", first)
		return nil
	}

	msg, ok := d.parseOverride(d.decl.Rest())
	d.msg = msg

	n := d.dispatch(first.Meta)
	if !ok {
		return nil
	}

	return n
}
