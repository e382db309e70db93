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
	"sync"
)

var (
	validatorInterfaceType   = reflect.TypeFor[ValidatorInterface]()
	validatorWithContextType = reflect.TypeFor[ValidatorWithContext]()

	implementsCache sync.Map // map[reflect.Type]bool
)

// implementsValidation reports whether t or *t implements [ValidatorInterface]
// or [ValidatorWithContext].
func implementsValidation(t reflect.Type) bool {
	if cached, ok := implementsCache.Load(t); ok {
		if result, resultOk := cached.(bool); resultOk {
			return result
		}
	}

	pt := reflect.PointerTo(t)
	implements := t.Implements(validatorInterfaceType) || t.Implements(validatorWithContextType) ||
		pt.Implements(validatorInterfaceType) || pt.Implements(validatorWithContextType)

	actual, _ := implementsCache.LoadOrStore(t, implements)
	if result, ok := actual.(bool); ok {
		return result
	}

	return implements
}

func hasValidationMethod(x any) bool {
	switch x.(type) {
	case ValidatorInterface, ValidatorWithContext:
		return true
	default:
		return false
	}
}

// validationTarget returns v, its address, or the address of a copy, whichever
// first has a validation method in its method set.
func validationTarget(v reflect.Value) (any, bool) {
	if !v.IsValid() || !v.CanInterface() {
		return nil, false
	}
	if x := v.Interface(); hasValidationMethod(x) {
		return x, true
	}
	if v.CanAddr() {
		if p := v.Addr().Interface(); hasValidationMethod(p) {
			return p, true
		}
		return nil, false
	}

	// Pointer-receiver methods on a value that is not addressable.
	cp := reflect.New(v.Type())
	cp.Elem().Set(v)
	if p := cp.Interface(); hasValidationMethod(p) {
		return p, true
	}

	return nil, false
}

// callValidation calls ValidateContext, or Validate, on v. ValidateContext is
// preferred when both exist. A value without either method is valid.
func callValidation(ctx context.Context, v reflect.Value) error {
	target, ok := validationTarget(v)
	if !ok {
		return nil
	}

	if withCtx, ok := target.(ValidatorWithContext); ok {
		if ctx == nil {
			ctx = context.Background()
		}
		return withCtx.ValidateContext(ctx)
	}
	if plain, ok := target.(ValidatorInterface); ok {
		return plain.Validate()
	}

	return nil
}

// validateWithInterface validates using custom Validate() or ValidateContext() methods ([StrategyInterface]).
// Returned errors are converted to a tree: an [*Error] keeps its tree, a
// [FieldError] is placed at its path, anything else is a struct-level violation.
func (v *Validator) validateWithInterface(ctx context.Context, val any, cfg *config) Errors {
	err := callValidation(ctx, reflect.ValueOf(val))
	if err == nil {
		return nil
	}

	s := &applyState{ctx: ctx, cfg: cfg}

	return s.userErrors("", err, CodeInterface)
}
