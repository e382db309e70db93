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
	"context"
	"reflect"
	"strings"
)

// validateWithTags applies the compiled constraint declarations of val's
// struct type ([StrategyTags]). A non-struct value has nothing to check.
func (v *Validator) validateWithTags(ctx context.Context, val any, cfg *config) (Errors, error) {
	rv := reflect.ValueOf(val)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, nil
	}

	p, err := v.planFor(rv.Type())
	if err != nil {
		return nil, err
	}

	// Pointer-receiver Validate methods of nested values need addressable fields.
	if !rv.CanAddr() {
		cp := reflect.New(rv.Type()).Elem()
		cp.Set(rv)
		rv = cp
	}

	s := &applyState{ctx: ctx, cfg: cfg}

	return p.apply(s, "", rv), nil
}

// hasDeclarations reports whether any field of the struct type t carries a
// non-empty declaration tag.
func hasDeclarations(t reflect.Type, tagName string) bool {
	for i := range t.NumField() {
		if strings.TrimSpace(t.Field(i).Tag.Get(tagName)) != "" {
			return true
		}
	}

	return false
}
