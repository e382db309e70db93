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
	"fmt"
	"reflect"
	"sync"
)

// Package-level validator state for the convenience functions.
var (
	defaultValidator     *Validator
	defaultValidatorOnce sync.Once
)

// getDefaultValidator returns the default [Validator], creating it if necessary.
func getDefaultValidator() *Validator {
	defaultValidatorOnce.Do(func() {
		defaultValidator = MustNew()
	})

	return defaultValidator
}

// Validate validates a value using the default [Validator].
// For rules, custom functions or formats, create a Validator with [New] or [MustNew].
//
// Validate returns nil if validation passes, an [*Error] holding the
// violation tree if it fails, or a [*CompileError] if the declarations of the
// value's type are invalid.
//
// Example:
//
//	var req CreateOrderRequest
//	if err := validation.Validate(ctx, &req); err != nil {
//	    var verr *validation.Error
//	    if errors.As(err, &verr) {
//	        // Handle violations
//	    }
//	}
func Validate(ctx context.Context, v any, opts ...Option) error {
	return getDefaultValidator().Validate(ctx, v, opts...)
}

// Compile compiles the declarations of v's type with the default [Validator].
// See [Validator.Compile].
func Compile(v any) error {
	return getDefaultValidator().Compile(v)
}

// MustCompile is like [Compile] but panics on error.
//
// Example:
//
//	func init() {
//	    validation.MustCompile(CreateOrderRequest{})
//	}
func MustCompile(v any) {
	getDefaultValidator().MustCompile(v)
}

// Validate validates a value using this validator's configuration.
//
// Validate returns nil if validation passes, or an [*Error] if validation fails.
// Every violation is collected; validation never stops at the first one.
// Per-call options override the validator's base configuration.
//
// Errors that are not validation failures are returned as-is: a
// [*CompileError] for invalid declarations, [ErrCannotValidateNilValue] for nil
// input, [ErrInvalidOption] for bad per-call options.
//
// Example:
//
//	validator := validation.MustNew(validation.WithRule("ordered", ordered))
//
//	if err := validator.Validate(ctx, &req); err != nil {
//	    var verr *validation.Error
//	    if errors.As(err, &verr) {
//	        // Handle violations
//	    }
//	}
func (v *Validator) Validate(ctx context.Context, val any, opts ...Option) error {
	if val == nil {
		return ErrCannotValidateNilValue
	}

	cfg, err := applyOptions(v.cfg, opts...)
	if err != nil {
		return err
	}

	// Use context from config if explicitly set via WithContext
	if cfg.ctx != nil {
		ctx = cfg.ctx
	}
	if ctx == nil {
		ctx = context.Background()
	}

	rv := reflect.ValueOf(val)
	if !rv.IsValid() {
		return ErrCannotValidateInvalidValue
	}
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return fmt.Errorf("%w: nil pointer", ErrCannotValidateNilValue)
		}
		rv = rv.Elem()
	}

	// Custom validator runs first (on dereferenced value)
	if cfg.customValidator != nil {
		if err := cfg.customValidator(rv.Interface()); err != nil {
			s := &applyState{ctx: ctx, cfg: cfg}
			return newError(s.userErrors("", err, CodeCustom))
		}
	}

	if cfg.runAll {
		return v.validateAll(ctx, val, cfg)
	}

	strategy := cfg.strategy
	if strategy == StrategyAuto {
		strategy = v.determineStrategy(val, cfg)
	}

	tree, err := v.validateByStrategy(ctx, val, strategy, cfg)
	if err != nil {
		return err
	}

	return newError(tree)
}

// validateAll runs all applicable strategies and merges their trees.
func (v *Validator) validateAll(ctx context.Context, val any, cfg *config) error {
	var tree Errors
	for _, strategy := range []Strategy{StrategyInterface, StrategyTags, StrategyJSONSchema} {
		if !v.isApplicable(val, strategy, cfg) {
			continue
		}

		t, err := v.validateByStrategy(ctx, val, strategy, cfg)
		if err != nil {
			return err
		}
		tree = mergeLenient(tree, t)
	}

	return newError(tree)
}

// isApplicable checks if a validation [Strategy] can apply to the value.
func (v *Validator) isApplicable(val any, strategy Strategy, cfg *config) bool {
	t := reflect.TypeOf(val)

	switch strategy {
	case StrategyInterface:
		return implementsValidation(t)

	case StrategyTags:
		for t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		return t.Kind() == reflect.Struct && hasDeclarations(t, cfg.tagName)

	case StrategyJSONSchema:
		if cfg.customSchema != "" {
			return true
		}
		_, ok := schemaProvider(val)
		return ok

	default:
		return false
	}
}

// determineStrategy picks the first applicable strategy in the order
// interface methods, tags, JSON Schema. It falls back to tags.
func (v *Validator) determineStrategy(val any, cfg *config) Strategy {
	for _, strategy := range []Strategy{StrategyInterface, StrategyTags, StrategyJSONSchema} {
		if v.isApplicable(val, strategy, cfg) {
			return strategy
		}
	}

	return StrategyTags
}

// validateByStrategy dispatches to the appropriate validation function based on [Strategy].
func (v *Validator) validateByStrategy(ctx context.Context, val any, strategy Strategy, cfg *config) (Errors, error) {
	switch strategy {
	case StrategyInterface:
		return v.validateWithInterface(ctx, val, cfg), nil
	case StrategyTags:
		return v.validateWithTags(ctx, val, cfg)
	case StrategyJSONSchema:
		return v.validateWithSchema(ctx, val, cfg)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownValidationStrategy, strategy)
	}
}
