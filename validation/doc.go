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

// Package validation validates Go values against constraints declared in
// struct tags and reports every violation in a tree shaped like the value.
//
// # Declaring Constraints
//
// Declarations live in the `validate` tag and are separated by semicolons.
// Each declaration is one constraint, optionally followed by a message
// override:
//
//	type Order struct {
//		Quantity int      `json:"quantity" validate:"range(minimum=1, maximum=100)"`
//		Code     string   `json:"code" validate:"min_length=3; pattern='^[A-Z]+$', message='use capitals'"`
//		Tags     []string `json:"tags" validate:"max_items=5; unique_items; max_length=20"`
//		Scores   [][]int  `json:"scores" validate:"maximum=10"`
//		Customer *Person  `json:"customer" validate:"nested"`
//	}
//
// Constraints come in three forms: bare flags (unique_items, nested),
// name and argument list (range(...), enumerate(...), custom(fn)) and
// name=value (minimum=0, max_length=80, pattern='...', format='email').
//
// Element constraints such as maximum or max_length apply through every
// slice, array and pointer layer of the field: in the example above every
// number of Scores is checked, and a nil Customer is skipped. Sequence
// constraints (min_items, max_items, unique_items) apply to the slice itself
// and map constraints (min_properties, max_properties) to the map.
//
// Cross-field rules are declared on a blank field and name the fields they
// receive, by index or by name:
//
//	type Window struct {
//		Low  int
//		High int
//		_    struct{} `validate:"rule(ordered(Low, High))"`
//	}
//
// # Compiling
//
// Declarations are compiled once per type into a plan. Invalid declarations
// are reported together in a [*CompileError] whose [Diagnostic] entries name
// the type, field, declaration and byte offset. Use [Compile] or
// [MustCompile] at start-up to fail fast:
//
//	func init() {
//		validation.MustCompile(Order{})
//	}
//
// # The Errors Tree
//
// A failed validation returns an [*Error] holding an [Errors] tree:
// [NewTypeErrors] for a flat list of [Violation] values, [*ArrayErrors] for
// sequences (own-level errors plus errors by index) and [*ObjectErrors] for
// structs (errors by field key, struct-level errors under [StructErrorsKey]).
// Trees combine with [Merge]. Its JSON form mirrors the value:
//
//	{"quantity": ["the number must be `<= 100`."],
//	 "scores": {"errors": [], "items": {"1": {"errors": [], "items": {"0": ["the number must be `<= 10`."]}}}}}
//
// [Error.Fields] flattens the tree into [FieldError] entries with dot paths.
//
// # Validation Strategies
//
// Besides tags, a value is validated by its Validate or ValidateContext
// method ([ValidatorInterface], [ValidatorWithContext]) or by a JSON Schema
// ([JSONSchemaProvider], [WithCustomSchema]). [StrategyAuto] picks the first
// that applies in that order; [WithRunAll] runs all of them and merges the
// results. [Validator.JSONSchema] exports the JSON Schema equivalent of a
// type's declarations.
//
// # Thread Safety
//
// [Validator] instances are safe for concurrent use by multiple goroutines.
// The package-level functions use a default validator that is also thread-safe.
//
// # Security
//
// Nested values are followed at most 100 levels deep, and [WithRedactor]
// hides the values of sensitive paths in violation parameters and messages.
package validation
