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
	"strings"
)

// fieldView is the compile-time view of a declared field. Peeling a sequence
// or optional layer yields a view of the inner type with the same name.
type fieldView struct {
	name  string // error key
	ident string // Go field name
	index int    // position in the struct
	typ   reflect.Type
}

// arrayField peels one sequence layer (slice or array).
func (f fieldView) arrayField() (fieldView, bool) {
	switch f.typ.Kind() {
	case reflect.Slice, reflect.Array:
		f.typ = f.typ.Elem()
		return f, true
	default:
		return fieldView{}, false
	}
}

// optionField peels one optional layer (pointer).
func (f fieldView) optionField() (fieldView, bool) {
	if f.typ.Kind() != reflect.Pointer {
		return fieldView{}, false
	}
	f.typ = f.typ.Elem()

	return f, true
}

// fieldKey returns the error key of a struct field: the json name when set,
// otherwise the Go name.
func fieldKey(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return field.Name
	}

	return name
}

// isRuleMarker reports whether the field is a blank marker carrying
// struct-level declarations.
func isRuleMarker(field reflect.StructField) bool {
	return field.Name == "_"
}
