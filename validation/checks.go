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
	"reflect"
	"regexp"
	"slices"
	"unicode/utf8"
)

// bound is one side of a numeric range.
type bound struct {
	code string
	n    number
}

// holds reports whether the comparison result c satisfies the bound.
func (b bound) holds(c int) bool {
	switch b.code {
	case CodeMinimum:
		return c >= 0
	case CodeExclusiveMinimum:
		return c > 0
	case CodeMaximum:
		return c <= 0
	default:
		return c < 0
	}
}

// rangeTest reports the first bound v violates. NaN violates every bound.
func rangeTest(bounds []bound) func(reflect.Value) *Violation {
	return func(v reflect.Value) *Violation {
		for _, b := range bounds {
			c, ok := b.n.compare(v)
			if ok && b.holds(c) {
				continue
			}
			return &Violation{Code: b.code, Params: map[string]any{b.code: b.n.value()}}
		}
		return nil
	}
}

func multipleOfTest(n number) func(reflect.Value) *Violation {
	return func(v reflect.Value) *Violation {
		if n.multipleOf(v) {
			return nil
		}
		return &Violation{Code: CodeMultipleOf, Params: map[string]any{CodeMultipleOf: n.value()}}
	}
}

// lengthTest checks the number of code points of a string.
func lengthTest(code string, limit int) func(reflect.Value) *Violation {
	return func(v reflect.Value) *Violation {
		n := utf8.RuneCountInString(v.String())
		if (code == CodeMinLength && n >= limit) || (code == CodeMaxLength && n <= limit) {
			return nil
		}
		return &Violation{Code: code, Params: map[string]any{code: limit, "length": n}}
	}
}

// sizeTest checks the length of a sequence or map.
func sizeTest(code string, limit int, atLeast bool) func(reflect.Value) *Violation {
	return func(v reflect.Value) *Violation {
		n := v.Len()
		if (atLeast && n >= limit) || (!atLeast && n <= limit) {
			return nil
		}
		return &Violation{Code: code, Params: map[string]any{code: limit, "length": n}}
	}
}

func patternTest(re *regexp.Regexp) func(reflect.Value) *Violation {
	return func(v reflect.Value) *Violation {
		if re.MatchString(v.String()) {
			return nil
		}
		return &Violation{Code: CodePattern, Params: map[string]any{CodePattern: re.String()}}
	}
}

// enumerateTest compares v with every member. Numeric members are numbers
// coerced to the field's family.
func enumerateTest(members []any) func(reflect.Value) *Violation {
	shown := make([]any, len(members))
	for i, m := range members {
		if n, ok := m.(number); ok {
			shown[i] = n.value()
			continue
		}
		shown[i] = m
	}

	return func(v reflect.Value) *Violation {
		for _, m := range members {
			switch m := m.(type) {
			case number:
				if m.equal(v) {
					return nil
				}
			case string:
				if v.String() == m {
					return nil
				}
			case bool:
				if v.Bool() == m {
					return nil
				}
			}
		}
		return &Violation{Code: CodeEnumerate, Params: map[string]any{CodeEnumerate: slices.Clone(shown)}}
	}
}

// uniqueTest reports the indices of elements equal to an earlier element.
func uniqueTest(elem reflect.Type) func(reflect.Value) *Violation {
	hashable := elem.Comparable() && !holdsInterface(elem)

	return func(v reflect.Value) *Violation {
		var dups []int
		if hashable {
			seen := make(map[any]struct{}, v.Len())
			for i := range v.Len() {
				key := v.Index(i).Interface()
				if _, ok := seen[key]; ok {
					dups = append(dups, i)
					continue
				}
				seen[key] = struct{}{}
			}
		} else {
			for i := range v.Len() {
				for j := range i {
					if reflect.DeepEqual(v.Index(i).Interface(), v.Index(j).Interface()) {
						dups = append(dups, i)
						break
					}
				}
			}
		}
		if len(dups) == 0 {
			return nil
		}
		return &Violation{Code: CodeUniqueItems, Params: map[string]any{"duplicates": dups}}
	}
}

// holdsInterface reports whether values of t can carry an interface value,
// whose dynamic type may not be hashable even though t is comparable.
func holdsInterface(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Interface:
		return true
	case reflect.Array:
		return holdsInterface(t.Elem())
	case reflect.Struct:
		for i := range t.NumField() {
			if holdsInterface(t.Field(i).Type) {
				return true
			}
		}
	}

	return false
}

// formatTest checks a string against a named format.
func formatTest(name string, valid func(string) bool) func(reflect.Value) *Violation {
	return func(v reflect.Value) *Violation {
		if valid(v.String()) {
			return nil
		}
		return &Violation{Code: CodeFormat, Params: map[string]any{CodeFormat: name}}
	}
}
