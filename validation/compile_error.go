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

// Diagnostic locates one problem found while compiling the declarations of a type.
type Diagnostic struct {
	Type        string `json:"type"`                  // Go type, e.g. "shop.Order"
	Field       string `json:"field,omitempty"`       // Go field name; empty for the type itself
	Declaration string `json:"declaration,omitempty"` // Source text of the declaration
	Pos         int    `json:"pos"`                   // Byte offset in the tag
	Message     string `json:"message"`
}

// String formats the diagnostic as "Type.Field: `decl` (offset N): message".
func (d Diagnostic) String() string {
	var sb strings.Builder
	sb.WriteString(d.Type)
	if d.Field != "" {
		sb.WriteByte('.')
		sb.WriteString(d.Field)
	}
	sb.WriteString(": ")
	if d.Declaration != "" {
		fmt.Fprintf(&sb, "`%s` (offset %d): ", d.Declaration, d.Pos)
	}
	sb.WriteString(d.Message)

	return sb.String()
}

// CompileError reports every diagnostic found while compiling a type.
// It wraps [ErrCompile].
type CompileError struct {
	Diagnostics []Diagnostic
}

// Error lists the diagnostics, one per line after the first.
func (e *CompileError) Error() string {
	if len(e.Diagnostics) == 1 {
		return "compile constraints: " + e.Diagnostics[0].String()
	}

	lines := make([]string, len(e.Diagnostics))
	for i, d := range e.Diagnostics {
		lines[i] = "  " + d.String()
	}

	return fmt.Sprintf("compile constraints: %d problems:\n%s", len(e.Diagnostics), strings.Join(lines, "\n"))
}

// Unwrap returns [ErrCompile].
func (e *CompileError) Unwrap() error {
	return ErrCompile
}
