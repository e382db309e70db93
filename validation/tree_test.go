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
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func viol(code, msg string) Violation {
	return Violation{Code: code, Message: msg}
}

func TestMerge_Identity(t *testing.T) {
	t.Parallel()

	trees := []Errors{
		NewTypeErrors{viol("a", "A")},
		&ArrayErrors{Items: map[int]Errors{0: NewTypeErrors{viol("a", "A")}}},
		&ObjectErrors{Fields: map[string]Errors{"x": NewTypeErrors{viol("a", "A")}}},
	}
	for _, tree := range trees {
		assert.Equal(t, tree, Merge(nil, tree))
		assert.Equal(t, tree, Merge(tree, nil))
	}
	assert.Nil(t, Merge(nil, nil))
}

func TestMerge_Shapes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b Errors
		want Errors
	}{
		{
			name: "new type lists concatenate in order",
			a:    NewTypeErrors{viol("a", "A")},
			b:    NewTypeErrors{viol("b", "B"), viol("c", "C")},
			want: NewTypeErrors{viol("a", "A"), viol("b", "B"), viol("c", "C")},
		},
		{
			name: "new type before array becomes own-level errors",
			a:    NewTypeErrors{viol("max_items", "too many")},
			b:    &ArrayErrors{Errors: []Violation{viol("unique_items", "dup")}, Items: map[int]Errors{2: NewTypeErrors{viol("maximum", "big")}}},
			want: &ArrayErrors{
				Errors: []Violation{viol("max_items", "too many"), viol("unique_items", "dup")},
				Items:  map[int]Errors{2: NewTypeErrors{viol("maximum", "big")}},
			},
		},
		{
			name: "array before new type keeps its own errors first",
			a:    &ArrayErrors{Items: map[int]Errors{0: NewTypeErrors{viol("maximum", "big")}}},
			b:    NewTypeErrors{viol("min_items", "too few")},
			want: &ArrayErrors{
				Errors: []Violation{viol("min_items", "too few")},
				Items:  map[int]Errors{0: NewTypeErrors{viol("maximum", "big")}},
			},
		},
		{
			name: "arrays merge items by index",
			a: &ArrayErrors{Items: map[int]Errors{
				0: NewTypeErrors{viol("minimum", "small")},
				1: NewTypeErrors{viol("maximum", "big")},
			}},
			b: &ArrayErrors{Items: map[int]Errors{
				1: NewTypeErrors{viol("multiple_of", "odd")},
				3: NewTypeErrors{viol("maximum", "big")},
			}},
			want: &ArrayErrors{
				Errors: NewTypeErrors{},
				Items: map[int]Errors{
					0: NewTypeErrors{viol("minimum", "small")},
					1: NewTypeErrors{viol("maximum", "big"), viol("multiple_of", "odd")},
					3: NewTypeErrors{viol("maximum", "big")},
				},
			},
		},
		{
			name: "objects merge fields recursively",
			a:    &ObjectErrors{Fields: map[string]Errors{"name": NewTypeErrors{viol("min_length", "short")}}},
			b: &ObjectErrors{Fields: map[string]Errors{
				"name": NewTypeErrors{viol("pattern", "shape")},
				"age":  NewTypeErrors{viol("minimum", "young")},
			}},
			want: &ObjectErrors{Fields: map[string]Errors{
				"name": NewTypeErrors{viol("min_length", "short"), viol("pattern", "shape")},
				"age":  NewTypeErrors{viol("minimum", "young")},
			}},
		},
		{
			name: "new type with object files under the struct key",
			a:    NewTypeErrors{viol("rule", "first")},
			b: &ObjectErrors{Fields: map[string]Errors{
				StructErrorsKey: NewTypeErrors{viol("rule", "second")},
				"age":           NewTypeErrors{viol("minimum", "young")},
			}},
			want: &ObjectErrors{Fields: map[string]Errors{
				StructErrorsKey: NewTypeErrors{viol("rule", "first"), viol("rule", "second")},
				"age":           NewTypeErrors{viol("minimum", "young")},
			}},
		},
		{
			name: "object with new type appends to the struct key",
			a:    &ObjectErrors{Fields: map[string]Errors{StructErrorsKey: NewTypeErrors{viol("rule", "first")}}},
			b:    NewTypeErrors{viol("interface", "second")},
			want: &ObjectErrors{Fields: map[string]Errors{
				StructErrorsKey: NewTypeErrors{viol("rule", "first"), viol("interface", "second")},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Merge(tt.a, tt.b))
		})
	}
}

func TestMerge_DoesNotModifyOperands(t *testing.T) {
	t.Parallel()

	a := &ObjectErrors{Fields: map[string]Errors{
		"items": &ArrayErrors{Items: map[int]Errors{0: NewTypeErrors{viol("maximum", "big")}}},
	}}
	b := &ObjectErrors{Fields: map[string]Errors{
		"items": &ArrayErrors{Items: map[int]Errors{0: NewTypeErrors{viol("minimum", "small")}}},
		"name":  NewTypeErrors{viol("pattern", "shape")},
	}}

	merged := Merge(a, b)
	require.Equal(t, 3, Count(merged))

	assert.Len(t, a.Fields, 1)
	assert.Equal(t, 1, Count(a))
	assert.Equal(t, NewTypeErrors{viol("maximum", "big")}, a.Fields["items"].(*ArrayErrors).Items[0])
	assert.Equal(t, 2, Count(b))
}

func TestMerge_ShapeConflictPanics(t *testing.T) {
	t.Parallel()

	arr := &ArrayErrors{Errors: []Violation{viol("max_items", "too many")}}
	obj := &ObjectErrors{Fields: map[string]Errors{"x": NewTypeErrors{viol("a", "A")}}}

	for _, pair := range [][2]Errors{{arr, obj}, {obj, arr}} {
		func() {
			defer func() {
				r := recover()
				require.NotNil(t, r, "Merge should panic")
				err, ok := r.(error)
				require.True(t, ok)
				assert.True(t, errors.Is(err, ErrShapeConflict))
			}()
			Merge(pair[0], pair[1])
		}()
	}
}

func TestErrors_IsEmpty(t *testing.T) {
	t.Parallel()

	assert.True(t, NewTypeErrors{}.IsEmpty())
	assert.True(t, (&ArrayErrors{Items: map[int]Errors{0: NewTypeErrors{}}}).IsEmpty())
	assert.True(t, (&ObjectErrors{Fields: map[string]Errors{"x": &ArrayErrors{}}}).IsEmpty())
	assert.True(t, (*ObjectErrors)(nil).IsEmpty())
	assert.False(t, (&ArrayErrors{Errors: []Violation{viol("a", "A")}}).IsEmpty())
	assert.False(t, (&ObjectErrors{Fields: map[string]Errors{
		"x": &ArrayErrors{Items: map[int]Errors{4: NewTypeErrors{viol("a", "A")}}},
	}}).IsEmpty())
}

func TestWalk_Order(t *testing.T) {
	t.Parallel()

	tree := &ObjectErrors{Fields: map[string]Errors{
		"tags": &ArrayErrors{
			Errors: []Violation{viol("max_items", "too many")},
			Items: map[int]Errors{
				10: NewTypeErrors{viol("max_length", "long")},
				2:  NewTypeErrors{viol("pattern", "shape")},
			},
		},
		StructErrorsKey: NewTypeErrors{viol("rule", "ordered")},
		"age":           NewTypeErrors{viol("minimum", "young"), viol("multiple_of", "odd")},
	}}

	var got []string
	Walk(tree, func(path []string, v Violation) {
		got = append(got, strings.Join(path, ".")+"="+v.Code)
	})

	assert.Equal(t, []string{
		"=rule",
		"age=minimum",
		"age=multiple_of",
		"tags=max_items",
		"tags.2=pattern",
		"tags.10=max_length",
	}, got)
	assert.Equal(t, 6, Count(tree))
	assert.Equal(t, 0, Count(nil))
}

func TestErrors_MarshalJSON(t *testing.T) {
	t.Parallel()

	tree := &ObjectErrors{Fields: map[string]Errors{
		"age": NewTypeErrors{viol("minimum", "too young")},
		"scores": &ArrayErrors{Items: map[int]Errors{
			1: &ArrayErrors{Items: map[int]Errors{0: NewTypeErrors{viol("maximum", "too big")}}},
		}},
		StructErrorsKey: NewTypeErrors{viol("rule", "inconsistent")},
	}}

	got, err := json.Marshal(tree)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"$errors": ["inconsistent"],
		"age": ["too young"],
		"scores": {"errors": [], "items": {"1": {"errors": [], "items": {"0": ["too big"]}}}}
	}`, string(got))

	empty, err := json.Marshal(&ObjectErrors{})
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(empty))
}

func TestErrorsAt(t *testing.T) {
	t.Parallel()

	leaf := NewTypeErrors{viol("maximum", "big")}

	got := errorsAt([]string{"lines", "3", "price"}, leaf)

	want := &ObjectErrors{Fields: map[string]Errors{
		"lines": &ArrayErrors{Items: map[int]Errors{
			3: &ObjectErrors{Fields: map[string]Errors{"price": leaf}},
		}},
	}}
	assert.Equal(t, want, got)
	assert.Equal(t, leaf, errorsAt(nil, leaf))
}

func TestErrorsAtDocument(t *testing.T) {
	t.Parallel()

	leaf := NewTypeErrors{viol("schema.minimum", "too small")}
	doc := map[string]any{
		"0":     float64(-1),
		"lines": []any{map[string]any{"price": float64(1)}, map[string]any{"price": float64(-1)}},
	}

	assert.Equal(t,
		&ObjectErrors{Fields: map[string]Errors{"0": leaf}},
		errorsAtDocument(doc, []string{"0"}, leaf),
		"a numeric key of an object stays a key")

	assert.Equal(t,
		&ObjectErrors{Fields: map[string]Errors{
			"lines": &ArrayErrors{Items: map[int]Errors{
				1: &ObjectErrors{Fields: map[string]Errors{"price": leaf}},
			}},
		}},
		errorsAtDocument(doc, []string{"lines", "1", "price"}, leaf))

	assert.Equal(t,
		&ObjectErrors{Fields: map[string]Errors{"missing": &ObjectErrors{Fields: map[string]Errors{"2": leaf}}}},
		errorsAtDocument(doc, []string{"missing", "2"}, leaf),
		"segments below an absent member are keys")

	assert.Equal(t, leaf, errorsAtDocument(doc, nil, leaf))
}

func TestMergeLenient_ShapeMismatch(t *testing.T) {
	t.Parallel()

	arr := errorsAt([]string{"items", "0"}, NewTypeErrors{viol("custom", "first")})
	withOwn := Merge(arr, errorsAt([]string{"items"}, NewTypeErrors{viol("custom", "list")}))
	obj := errorsAt([]string{"items", "a"}, NewTypeErrors{viol("custom", "named")})

	assert.Panics(t, func() { Merge(withOwn, obj) })

	var got Errors
	require.NotPanics(t, func() { got = mergeLenient(withOwn, obj) })

	items, ok := got.(*ObjectErrors).Fields["items"].(*ObjectErrors)
	require.True(t, ok, "the array side becomes an object keyed by index")
	assert.Equal(t, NewTypeErrors{viol("custom", "first")}, items.Fields["0"])
	assert.Equal(t, NewTypeErrors{viol("custom", "named")}, items.Fields["a"])
	assert.Equal(t, NewTypeErrors{viol("custom", "list")}, items.Fields[StructErrorsKey])

	reversed := mergeLenient(obj, withOwn)
	assert.Equal(t, 3, Count(reversed))

	same := mergeLenient(arr, errorsAt([]string{"items", "0"}, NewTypeErrors{viol("custom", "second")}))
	assert.Equal(t, map[string][]string{"items.0": {"custom", "custom"}}, codes(same))
}

func TestMarshalJSON_NilNodes(t *testing.T) {
	t.Parallel()

	tree := &ObjectErrors{Fields: map[string]Errors{
		"lines": (*ArrayErrors)(nil),
		"meta":  (*ObjectErrors)(nil),
	}}

	var got []byte
	require.NotPanics(t, func() {
		var err error
		got, err = json.Marshal(tree)
		require.NoError(t, err)
	})
	assert.JSONEq(t, `{"lines": null, "meta": null}`, string(got))

	for _, e := range []json.Marshaler{(*ArrayErrors)(nil), (*ObjectErrors)(nil)} {
		b, err := e.MarshalJSON()
		require.NoError(t, err)
		assert.Equal(t, "null", string(b))
	}
}
