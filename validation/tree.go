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
	"maps"
	"slices"
	"strconv"
)

// StructErrorsKey is the reserved [ObjectErrors] key holding violations that
// belong to a struct as a whole (custom rules, interface validation) rather
// than to one of its fields.
const StructErrorsKey = "$errors"

// Errors is a tree of violations shaped like the validated value.
//
// It is exactly one of:
//   - [NewTypeErrors]: violations on a scalar-shaped value
//   - [*ArrayErrors]: violations on a sequence plus per-index element trees
//   - [*ObjectErrors]: per-field trees of a struct
//
// The set of implementations is closed.
type Errors interface {
	// IsEmpty reports whether the tree holds no violation at any depth.
	IsEmpty() bool

	isErrors()
}

// NewTypeErrors holds the violations of a scalar-shaped value in the order
// the checks ran.
type NewTypeErrors []Violation

// ArrayErrors holds the violations of a sequence: Errors for the sequence
// itself (item counts, uniqueness) and Items for offending elements keyed by
// zero-based index.
type ArrayErrors struct {
	Errors []Violation
	Items  map[int]Errors
}

// ObjectErrors holds the violations of a struct keyed by field name.
// Struct-level violations live under [StructErrorsKey].
type ObjectErrors struct {
	Fields map[string]Errors
}

func (NewTypeErrors) isErrors() {}
func (*ArrayErrors) isErrors()  {}
func (*ObjectErrors) isErrors() {}

// IsEmpty reports whether the list is empty.
func (e NewTypeErrors) IsEmpty() bool { return len(e) == 0 }

// IsEmpty reports whether neither the sequence nor any element has violations.
func (e *ArrayErrors) IsEmpty() bool {
	if e == nil {
		return true
	}
	if len(e.Errors) > 0 {
		return false
	}
	for _, item := range e.Items {
		if !isEmpty(item) {
			return false
		}
	}

	return true
}

// IsEmpty reports whether no field has violations.
func (e *ObjectErrors) IsEmpty() bool {
	if e == nil {
		return true
	}
	for _, f := range e.Fields {
		if !isEmpty(f) {
			return false
		}
	}

	return true
}

func isEmpty(e Errors) bool {
	return e == nil || e.IsEmpty()
}

// Merge combines two trees describing the same value. Neither operand is
// modified. A nil operand is the identity.
//
//   - NewType + NewType concatenates the lists.
//   - Array + Array concatenates the own-level lists and merges items by index.
//   - NewType + Array makes the list own-level violations of the sequence.
//   - NewType + Object files the list under [StructErrorsKey].
//   - Object + Object merges fields by key.
//
// Array + Object cannot describe one value; Merge panics with an error
// wrapping [ErrShapeConflict].
func Merge(a, b Errors) Errors {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}

	switch x := a.(type) {
	case NewTypeErrors:
		switch y := b.(type) {
		case NewTypeErrors:
			return concat(x, y)
		case *ArrayErrors:
			return &ArrayErrors{Errors: concat(x, y.Errors), Items: cloneItems(y.Items)}
		case *ObjectErrors:
			return mergeStructLevel(y, x, true)
		}
	case *ArrayErrors:
		switch y := b.(type) {
		case NewTypeErrors:
			return &ArrayErrors{Errors: concat(x.Errors, y), Items: cloneItems(x.Items)}
		case *ArrayErrors:
			return mergeArrays(x, y)
		case *ObjectErrors:
			panic(fmt.Errorf("%w: cannot merge array errors with object errors", ErrShapeConflict))
		}
	case *ObjectErrors:
		switch y := b.(type) {
		case NewTypeErrors:
			return mergeStructLevel(x, y, false)
		case *ArrayErrors:
			panic(fmt.Errorf("%w: cannot merge object errors with array errors", ErrShapeConflict))
		case *ObjectErrors:
			return mergeObjects(x, y)
		}
	}

	panic(fmt.Errorf("%w: unsupported errors %T and %T", ErrShapeConflict, a, b))
}

func concat(a, b []Violation) NewTypeErrors {
	out := make(NewTypeErrors, 0, len(a)+len(b))
	out = append(out, a...)

	return append(out, b...)
}

func cloneItems(items map[int]Errors) map[int]Errors {
	if items == nil {
		return nil
	}

	return maps.Clone(items)
}

func mergeArrays(a, b *ArrayErrors) *ArrayErrors {
	out := &ArrayErrors{Errors: concat(a.Errors, b.Errors)}
	if len(a.Items)+len(b.Items) == 0 {
		return out
	}

	out.Items = make(map[int]Errors, len(a.Items)+len(b.Items))
	maps.Copy(out.Items, a.Items)
	for i, item := range b.Items {
		out.Items[i] = Merge(out.Items[i], item)
	}

	return out
}

func mergeObjects(a, b *ObjectErrors) *ObjectErrors {
	out := &ObjectErrors{Fields: make(map[string]Errors, len(a.Fields)+len(b.Fields))}
	maps.Copy(out.Fields, a.Fields)
	for k, f := range b.Fields {
		out.Fields[k] = Merge(out.Fields[k], f)
	}

	return out
}

// mergeStructLevel files flat violations under the reserved key of obj.
// first reports whether list came from the left operand.
func mergeStructLevel(obj *ObjectErrors, list NewTypeErrors, first bool) *ObjectErrors {
	out := &ObjectErrors{Fields: make(map[string]Errors, len(obj.Fields)+1)}
	maps.Copy(out.Fields, obj.Fields)
	if first {
		out.Fields[StructErrorsKey] = Merge(list, out.Fields[StructErrorsKey])
	} else {
		out.Fields[StructErrorsKey] = Merge(out.Fields[StructErrorsKey], list)
	}

	return out
}

// Walk calls fn for every violation of the tree, depth first. Object fields
// and array items are visited in sorted order, own-level violations before
// children. path holds the field names and decimal indices leading to the
// violation; struct-level violations are reported at the struct's path.
func Walk(e Errors, fn func(path []string, v Violation)) {
	walk(e, nil, fn)
}

func walk(e Errors, path []string, fn func([]string, Violation)) {
	switch t := e.(type) {
	case NewTypeErrors:
		for _, v := range t {
			fn(path, v)
		}
	case *ArrayErrors:
		if t == nil {
			return
		}
		for _, v := range t.Errors {
			fn(path, v)
		}
		for _, i := range slices.Sorted(maps.Keys(t.Items)) {
			walk(t.Items[i], append(slices.Clip(path), strconv.Itoa(i)), fn)
		}
	case *ObjectErrors:
		if t == nil {
			return
		}
		if own, ok := t.Fields[StructErrorsKey]; ok {
			walk(own, path, fn)
		}
		for _, k := range slices.Sorted(maps.Keys(t.Fields)) {
			if k == StructErrorsKey {
				continue
			}
			walk(t.Fields[k], append(slices.Clip(path), k), fn)
		}
	}
}

// Count returns the number of violations in the tree.
func Count(e Errors) int {
	n := 0
	Walk(e, func([]string, Violation) { n++ })

	return n
}

// MarshalJSON encodes the list as an array of messages.
func (e NewTypeErrors) MarshalJSON() ([]byte, error) {
	return json.Marshal(messages(e))
}

// MarshalJSON encodes the sequence errors as {"errors": [...], "items": {...}}.
func (e *ArrayErrors) MarshalJSON() ([]byte, error) {
	if e == nil {
		return []byte("null"), nil
	}
	items := make(map[string]Errors, len(e.Items))
	for i, item := range e.Items {
		items[strconv.Itoa(i)] = item
	}

	return json.Marshal(struct {
		Errors []string          `json:"errors"`
		Items  map[string]Errors `json:"items"`
	}{Errors: messages(e.Errors), Items: items})
}

// MarshalJSON encodes the struct errors as an object keyed by field name.
func (e *ObjectErrors) MarshalJSON() ([]byte, error) {
	if e == nil {
		return []byte("null"), nil
	}
	fields := e.Fields
	if fields == nil {
		fields = map[string]Errors{}
	}

	return json.Marshal(fields)
}

func messages(vs []Violation) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.Message
	}

	return out
}

// errorsAt wraps leaf so that it sits at the given path: numeric segments
// become array items, other segments become object fields.
func errorsAt(path []string, leaf Errors) Errors {
	for i := len(path) - 1; i >= 0; i-- {
		if idx, err := strconv.Atoi(path[i]); err == nil && idx >= 0 {
			leaf = &ArrayErrors{Items: map[int]Errors{idx: leaf}}
			continue
		}
		leaf = &ObjectErrors{Fields: map[string]Errors{path[i]: leaf}}
	}

	return leaf
}

// errorsAtDocument wraps leaf so that it sits at path inside doc, a decoded
// JSON document. A segment is an array index only where doc holds an array,
// so object keys such as "0" stay object keys.
func errorsAtDocument(doc any, path []string, leaf Errors) Errors {
	nodes := make([]any, len(path))
	cur := doc
	for i, seg := range path {
		nodes[i] = cur
		switch c := cur.(type) {
		case []any:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= len(c) {
				cur = nil
				continue
			}
			cur = c[idx]
		case map[string]any:
			cur = c[seg]
		default:
			cur = nil
		}
	}

	for i := len(path) - 1; i >= 0; i-- {
		if _, isArray := nodes[i].([]any); isArray {
			if idx, err := strconv.Atoi(path[i]); err == nil && idx >= 0 {
				leaf = &ArrayErrors{Items: map[int]Errors{idx: leaf}}
				continue
			}
		}
		leaf = &ObjectErrors{Fields: map[string]Errors{path[i]: leaf}}
	}

	return leaf
}

// mergeLenient is [Merge] for trees built from paths reported by user code,
// which may disagree on the shape of a value. Where an array tree meets an
// object tree, the array is turned into an object keyed by decimal index and
// its own-level violations are filed under [StructErrorsKey].
func mergeLenient(a, b Errors) Errors {
	switch x := a.(type) {
	case *ArrayErrors:
		switch y := b.(type) {
		case *ObjectErrors:
			return mergeLenient(arrayAsObject(x), y)
		case *ArrayErrors:
			if x == nil || y == nil {
				break
			}
			out := &ArrayErrors{Errors: concat(x.Errors, y.Errors)}
			if len(x.Items)+len(y.Items) > 0 {
				out.Items = make(map[int]Errors, len(x.Items)+len(y.Items))
				maps.Copy(out.Items, x.Items)
				for i, item := range y.Items {
					out.Items[i] = mergeLenient(out.Items[i], item)
				}
			}
			return out
		}
	case *ObjectErrors:
		switch y := b.(type) {
		case *ArrayErrors:
			return mergeLenient(x, arrayAsObject(y))
		case *ObjectErrors:
			if x == nil || y == nil {
				break
			}
			out := &ObjectErrors{Fields: make(map[string]Errors, len(x.Fields)+len(y.Fields))}
			maps.Copy(out.Fields, x.Fields)
			for k, f := range y.Fields {
				out.Fields[k] = mergeLenient(out.Fields[k], f)
			}
			return out
		}
	}

	return Merge(a, b)
}

func arrayAsObject(a *ArrayErrors) *ObjectErrors {
	if a == nil {
		return &ObjectErrors{}
	}
	out := &ObjectErrors{Fields: make(map[string]Errors, len(a.Items)+1)}
	for i, item := range a.Items {
		out.Fields[strconv.Itoa(i)] = item
	}
	if len(a.Errors) > 0 {
		out.Fields[StructErrorsKey] = NewTypeErrors(slices.Clone(a.Errors))
	}

	return out
}
