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


// Package codec decodes JSON, YAML, TOML, MessagePack and map input into Go
// values and validates the result with the validation package.
//
// Each format has a generic helper that returns the decoded value:
//
//	type CreateUser struct {
//	    Name  string `json:"name" toml:"name" validate:"length(min=1, max=64)"`
//	    Email string `json:"email" toml:"email" validate:"format=email"`
//	}
//
//	user, err := codec.JSON[CreateUser](body)
//	var cerr *codec.Error
//	if errors.As(err, &cerr) {
//	    switch {
//	    case cerr.IsDecode():
//	        // malformed input
//	    case cerr.IsValidation():
//	        tree := cerr.ValidationErrors()
//	        _ = tree
//	    }
//	}
//
// Decoding failures and validation failures are reported as [*Error] with
// [KindDecode] or [KindValidation]. A [*validation.CompileError] is returned
// as is: it signals a broken type declaration, not bad input.
//
// Formats are looked up in a registry keyed by [Type]. The built-in formats are
// registered at init; [Register] adds or replaces one.
//
// # Options
//
//   - [WithValidator] validates with a configured [*validation.Validator]
//     instead of the package default.
//   - [WithStrict] rejects input keys that the target type does not declare.
//   - [WithDefaults] fills zero fields from a defaults value before validation.
//   - [WithContext] and [WithValidationOptions] pass through to validation.
package codec
