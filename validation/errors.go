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
	"fmt"
	"strings"
)

// ErrValidation is a sentinel error for validation failures.
// Use errors.Is(err, ErrValidation) to check if an error is a validation error.
var ErrValidation = errors.New("validation")

// Predefined errors.
var (
	// ErrCompile is wrapped by [*CompileError]. Declarations that fail to
	// compile are a programming error and never reported as violations.
	ErrCompile = errors.New("invalid constraint declaration")

	// ErrShapeConflict is the panic value of [Merge] when two trees cannot
	// describe the same value.
	ErrShapeConflict = errors.New("errors shape conflict")

	// ErrCannotValidateNilValue is returned when attempting to validate a nil value.
	ErrCannotValidateNilValue = errors.New("cannot validate nil value")

	// ErrCannotValidateInvalidValue is returned when the value is not valid for reflection.
	ErrCannotValidateInvalidValue = errors.New("cannot validate invalid value")

	// ErrUnknownValidationStrategy is returned when an unknown validation strategy is specified.
	ErrUnknownValidationStrategy = errors.New("unknown validation strategy")

	// ErrInvalidOption is returned by [New] for an inconsistent configuration.
	ErrInvalidOption = errors.New("invalid option")

	// ErrInvalidType is returned when a value has an unexpected type.
	ErrInvalidType = errors.New("invalid type")
)

// FieldError is one violation of an [Error] flattened to a dot path.
//
// Example:
//
//	err := FieldError{
//	    Path:    "items.2.price",
//	    Code:    "maximum",
//	    Message: "the number must be `<= 100`.",
//	    Meta:    map[string]any{"maximum": 100, "value": 250},
//	}
type FieldError struct {
	Path    string         `json:"path"`           // Dot path (e.g., "items.2.price")
	Code    string         `json:"code"`           // Violation code (e.g., "max_length", "schema.required")
	Message string         `json:"message"`        // Human-readable message
	Meta    map[string]any `json:"meta,omitempty"` // Violation parameters
}

// Error returns a formatted error message as "path: message" or just "message" if path is empty.
func (e FieldError) Error() string {
	if e.Path == "" {
		return e.Message
	}

	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// Unwrap returns [ErrValidation] for errors.Is/errors.As compatibility.
func (e FieldError) Unwrap() error {
	return ErrValidation
}

// HTTPStatus returns 422 (Unprocessable Entity).
func (e FieldError) HTTPStatus() int {
	return 422 // Unprocessable Entity
}

// Error is a failed validation. It carries the [Errors] tree of every
// violation found, shaped like the validated value.
//
// Example:
//
//	var verr *validation.Error
//	if errors.As(err, &verr) {
//	    for _, fe := range verr.Fields() {
//	        fmt.Printf("%s: %s\n", fe.Path, fe.Message)
//	    }
//	}
type Error struct {
	Tree Errors
}

// Error returns a formatted error message.
func (e *Error) Error() string {
	fields := e.Fields()
	switch len(fields) {
	case 0:
		return "validation failed"
	case 1:
		return fields[0].Error()
	}

	msgs := make([]string, len(fields))
	for i, f := range fields {
		msgs[i] = f.Error()
	}

	return "validation failed: " + strings.Join(msgs, "; ")
}

// Unwrap returns [ErrValidation] for errors.Is/errors.As compatibility.
func (e *Error) Unwrap() error {
	return ErrValidation
}

// HTTPStatus returns 422 (Unprocessable Entity).
func (e *Error) HTTPStatus() int {
	return 422 // Unprocessable Entity
}

// Details returns the field errors for problem-details responses.
func (e *Error) Details() any {
	return e.Fields()
}

// Code returns "validation_error".
func (e *Error) Code() string {
	return "validation_error"
}

// MarshalJSON encodes the tree in its canonical form.
func (e *Error) MarshalJSON() ([]byte, error) {
	if e.Tree == nil {
		return []byte("{}"), nil
	}

	return json.Marshal(e.Tree)
}

// Fields flattens the tree into one [FieldError] per violation, ordered by
// path. Struct-level violations are reported at the struct's own path.
func (e *Error) Fields() []FieldError {
	var out []FieldError
	Walk(e.Tree, func(path []string, v Violation) {
		out = append(out, FieldError{
			Path:    strings.Join(path, "."),
			Code:    v.Code,
			Message: v.Message,
			Meta:    v.Params,
		})
	})

	return out
}

// HasCode returns true if any violation has the given code.
//
// Example:
//
//	if err.HasCode("max_length") {
//	    // Handle length errors
//	}
func (e *Error) HasCode(code string) bool {
	found := false
	Walk(e.Tree, func(_ []string, v Violation) {
		if v.Code == code {
			found = true
		}
	})

	return found
}

// Has checks if a specific dot path has a violation.
func (e *Error) Has(path string) bool {
	return e.GetField(path) != nil
}

// GetField returns the first [FieldError] for a given path, or nil if not found.
//
// Example:
//
//	fieldErr := err.GetField("email")
//	if fieldErr != nil {
//	    fmt.Println(fieldErr.Message)
//	}
func (e *Error) GetField(path string) *FieldError {
	for _, f := range e.Fields() {
		if f.Path == path {
			return &f
		}
	}

	return nil
}

// newError returns a validation error for tree, or nil when the tree is empty.
func newError(tree Errors) error {
	if isEmpty(tree) {
		return nil
	}

	return &Error{Tree: tree}
}

// treeFromError converts an error returned by user code into a tree.
//
// An [*Error] contributes its tree, a [*Violation] is kept as-is, and a
// [FieldError] is placed at its path. Any other error becomes a violation
// with the given code whose message is the error text. Joined errors are
// converted one by one and merged; paths that disagree on whether a segment
// is an index or a key are kept as object keys.
func treeFromError(err error, code string) Errors {
	if err == nil {
		return nil
	}

	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var tree Errors
		for _, e := range joined.Unwrap() {
			tree = mergeLenient(tree, treeFromError(e, code))
		}
		return tree
	}

	var verr *Error
	if errors.As(err, &verr) {
		return verr.Tree
	}

	var viol *Violation
	if errors.As(err, &viol) {
		return NewTypeErrors{*viol}
	}

	var fe FieldError
	if errors.As(err, &fe) {
		v := Violation{Code: fe.Code, Message: fe.Message, Params: fe.Meta}
		if v.Code == "" {
			v.Code = code
		}
		var path []string
		if fe.Path != "" {
			path = strings.Split(fe.Path, ".")
		}
		return errorsAt(path, NewTypeErrors{v})
	}

	return NewTypeErrors{{Code: code, Message: err.Error()}}
}
