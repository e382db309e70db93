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

import "context"

// ValidatorInterface is implemented by types with their own validation logic.
// A value implementing it is validated by calling Validate, both at the top
// level ([StrategyInterface]) and when reached through a `nested` declaration.
//
// A returned [*Error] keeps its tree; a [*Violation] or [FieldError] is
// placed as-is; any other error becomes a violation with code "interface"
// whose message is the error text.
//
// Note: This interface is named ValidatorInterface to avoid confusion with the
// [Validator] struct which is the main validation engine.
//
// Example:
//
//	type Window struct {
//	    Low  int `json:"low"`
//	    High int `json:"high"`
//	}
//
//	func (w *Window) Validate() error {
//	    if w.Low > w.High {
//	        return errors.New("low must not exceed high")
//	    }
//	    return nil
//	}
type ValidatorInterface interface {
	Validate() error
}

// ValidatorWithContext is the context-aware form of [ValidatorInterface].
// It is preferred when a type implements both.
//
// Example:
//
//	func (o *Order) ValidateContext(ctx context.Context) error {
//	    limit, _ := ctx.Value(limitKey{}).(int)
//	    if limit > 0 && len(o.Lines) > limit {
//	        return fmt.Errorf("at most %d lines", limit)
//	    }
//	    return nil
//	}
type ValidatorWithContext interface {
	ValidateContext(context.Context) error
}

// JSONSchemaProvider is implemented by types that provide their own JSON Schema
// for [StrategyJSONSchema]. The id keys the compiled schema cache.
// [Validator.JSONSchema] can generate such a schema from declarations.
//
// Example:
//
//	func (p Point) JSONSchema() (id string, schema string) {
//	    return "point-v1", `{
//	        "type": "object",
//	        "properties": {
//	            "x": {"type": "integer", "minimum": 0}
//	        }
//	    }`
//	}
type JSONSchemaProvider interface {
	JSONSchema() (id string, schema string)
}
