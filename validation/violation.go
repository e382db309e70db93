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
	"fmt"
	"strings"
)

// Violation codes reported by the built-in constraints.
const (
	CodeMinimum          = "minimum"
	CodeMaximum          = "maximum"
	CodeExclusiveMinimum = "exclusive_minimum"
	CodeExclusiveMaximum = "exclusive_maximum"
	CodeMultipleOf       = "multiple_of"
	CodeMinLength        = "min_length"
	CodeMaxLength        = "max_length"
	CodeMinItems         = "min_items"
	CodeMaxItems         = "max_items"
	CodeUniqueItems      = "unique_items"
	CodeMinProperties    = "min_properties"
	CodeMaxProperties    = "max_properties"
	CodePattern          = "pattern"
	CodeEnumerate        = "enumerate"
	CodeFormat           = "format"
	CodeCustom           = "custom"
	CodeRule             = "rule"
	CodeInterface        = "interface"
	CodeSchema           = "schema"
	CodeMaxDepth         = "max_depth"
)

// Violation describes one failed check.
//
// Params holds the structured inputs that produced the violation: the
// configured bound under the constraint's own name (for example "maximum"),
// and the offending value under "value". Params is enough to rebuild the
// message with a different wording.
//
// *Violation implements error, so custom rules and custom functions may return
// one to control the code and parameters of what they report.
type Violation struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Params  map[string]any `json:"params,omitempty"`
}

// NewViolation creates a [*Violation] with the given code and message.
func NewViolation(code, message string, params map[string]any) *Violation {
	return &Violation{Code: code, Message: message, Params: params}
}

// Error returns the violation message.
func (v *Violation) Error() string {
	return v.Message
}

// Unwrap returns [ErrValidation] for errors.Is compatibility.
func (v *Violation) Unwrap() error {
	return ErrValidation
}

// defaultMessages formats violations when no override is configured.
var defaultMessages = map[string]func(p map[string]any) string{
	CodeMinimum: func(p map[string]any) string {
		return fmt.Sprintf("the number must be `>= %v`.", p[CodeMinimum])
	},
	CodeMaximum: func(p map[string]any) string {
		return fmt.Sprintf("the number must be `<= %v`.", p[CodeMaximum])
	},
	CodeExclusiveMinimum: func(p map[string]any) string {
		return fmt.Sprintf("the number must be `> %v`.", p[CodeExclusiveMinimum])
	},
	CodeExclusiveMaximum: func(p map[string]any) string {
		return fmt.Sprintf("the number must be `< %v`.", p[CodeExclusiveMaximum])
	},
	CodeMultipleOf: func(p map[string]any) string {
		return fmt.Sprintf("the value must be multiple of `%v`.", p[CodeMultipleOf])
	},
	CodeMinLength: func(p map[string]any) string {
		return fmt.Sprintf("the length of the value must be `>= %v`.", p[CodeMinLength])
	},
	CodeMaxLength: func(p map[string]any) string {
		return fmt.Sprintf("the length of the value must be `<= %v`.", p[CodeMaxLength])
	},
	CodeMinItems: func(p map[string]any) string {
		return fmt.Sprintf("the length of the items must be `>= %v`.", p[CodeMinItems])
	},
	CodeMaxItems: func(p map[string]any) string {
		return fmt.Sprintf("the length of the items must be `<= %v`.", p[CodeMaxItems])
	},
	CodeUniqueItems: func(map[string]any) string {
		return "the items must be unique."
	},
	CodeMinProperties: func(p map[string]any) string {
		return fmt.Sprintf("the size of the properties must be `>= %v`.", p[CodeMinProperties])
	},
	CodeMaxProperties: func(p map[string]any) string {
		return fmt.Sprintf("the size of the properties must be `<= %v`.", p[CodeMaxProperties])
	},
	CodePattern: func(p map[string]any) string {
		return fmt.Sprintf("the value must match the pattern of %q.", p[CodePattern])
	},
	CodeEnumerate: func(p map[string]any) string {
		members, _ := p[CodeEnumerate].([]any)
		parts := make([]string, len(members))
		for i, m := range members {
			parts[i] = fmt.Sprint(m)
		}
		return fmt.Sprintf("the value must be in [%s].", strings.Join(parts, ", "))
	},
	CodeFormat: func(p map[string]any) string {
		return fmt.Sprintf("the value must be a valid %v.", p[CodeFormat])
	},
	CodeMaxDepth: func(p map[string]any) string {
		return fmt.Sprintf("the value is nested deeper than %v levels.", p[CodeMaxDepth])
	},
}

// defaultMessage returns the built-in message for a violation.
func defaultMessage(v *Violation) string {
	if format, ok := defaultMessages[v.Code]; ok {
		return format(v.Params)
	}

	return "the value is invalid."
}
