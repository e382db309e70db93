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


package codec

import (
	"errors"
	"fmt"

	"rivaas.dev/constraint/validation"
)

// Kind tells whether an [Error] came from decoding or from validation.
type Kind uint8

const (
	// KindDecode marks input that could not be decoded into the target type.
	KindDecode Kind = iota + 1
	// KindValidation marks a decoded value that failed validation.
	KindValidation
)

// String returns "decode" or "validation".
func (k Kind) String() string {
	switch k {
	case KindDecode:
		return "decode"
	case KindValidation:
		return "validation"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Error is returned by the decode helpers.
type Error struct {
	Type Type  // Input format
	Kind Kind  // Decode or validation failure
	Err  error // Underlying error
}

// Error implements error.
func (e *Error) Error() string {
	if e.Kind == KindValidation {
		return fmt.Sprintf("codec: %s: %v", e.Type, e.Err)
	}

	return fmt.Sprintf("codec: decode %s: %v", e.Type, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsDecode reports whether the input could not be decoded.
func (e *Error) IsDecode() bool {
	return e.Kind == KindDecode
}

// IsValidation reports whether the decoded value failed validation.
func (e *Error) IsValidation() bool {
	return e.Kind == KindValidation
}

// ValidationErrors returns the violation tree of a validation failure, or nil.
func (e *Error) ValidationErrors() *validation.Error {
	if e.Kind != KindValidation {
		return nil
	}
	var verr *validation.Error
	if errors.As(e.Err, &verr) {
		return verr
	}

	return nil
}

// HTTPStatus returns 400 for decode failures and 422 for validation failures.
func (e *Error) HTTPStatus() int {
	if e.Kind == KindValidation {
		return 422
	}

	return 400
}

// Code returns "decode_error" or the validation error code.
func (e *Error) Code() string {
	if verr := e.ValidationErrors(); verr != nil {
		return verr.Code()
	}

	return "decode_error"
}

// Details returns the flattened field errors of a validation failure, or nil.
func (e *Error) Details() any {
	if verr := e.ValidationErrors(); verr != nil {
		return verr.Fields()
	}

	return nil
}
