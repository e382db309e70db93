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
	"cmp"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/spf13/cast"

	"rivaas.dev/constraint/validation/internal/decl"
)

// numFamily groups numeric kinds that share a representation.
type numFamily int

const (
	famInt numFamily = iota + 1
	famUint
	famFloat
)

func numericFamily(t reflect.Type) (numFamily, bool) {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return famInt, true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return famUint, true
	case reflect.Float32, reflect.Float64:
		return famFloat, true
	default:
		return 0, false
	}
}

// number is a declared numeric literal coerced to the family of the field it
// constrains.
type number struct {
	fam numFamily
	i   int64
	u   uint64
	f   float64
	f32 bool // bound of a float32 field, rounded to float32
}

// value returns the bound as a Go value for violation parameters.
func (n number) value() any {
	switch n.fam {
	case famInt:
		return n.i
	case famUint:
		return n.u
	default:
		if n.f32 {
			return float32(n.f)
		}
		return n.f
	}
}

func (n number) isZero() bool {
	return n.i == 0 && n.u == 0 && n.f == 0
}

func (n number) positive() bool {
	return n.i > 0 || n.u > 0 || n.f > 0
}

// compare returns the sign of v - n. ok is false when v is NaN.
func (n number) compare(v reflect.Value) (c int, ok bool) {
	switch n.fam {
	case famInt:
		return cmp.Compare(v.Int(), n.i), true
	case famUint:
		return cmp.Compare(v.Uint(), n.u), true
	default:
		x := v.Float()
		if math.IsNaN(x) {
			return 0, false
		}
		return cmp.Compare(x, n.f), true
	}
}

// multipleOf reports whether v is a multiple of n. n must not be zero.
func (n number) multipleOf(v reflect.Value) bool {
	switch n.fam {
	case famInt:
		return v.Int()%n.i == 0
	case famUint:
		return v.Uint()%n.u == 0
	default:
		return math.Mod(v.Float(), n.f) == 0
	}
}

// equal reports whether v equals n.
func (n number) equal(v reflect.Value) bool {
	c, ok := n.compare(v)
	return ok && c == 0
}

// coerceNumber converts lit to the numeric family of t. It returns a
// description of the problem when the literal cannot represent a value of t.
func coerceNumber(lit decl.Lit, t reflect.Type) (number, string) {
	fam, ok := numericFamily(t)
	if !ok {
		return number{}, fmt.Sprintf("type %s is not numeric", t)
	}
	if lit.Kind != decl.LitInt && lit.Kind != decl.LitFloat {
		return number{}, fmt.Sprintf("expects a number, found %s %s", lit.Kind, lit)
	}

	switch fam {
	case famInt:
		if lit.Kind == decl.LitFloat {
			return number{}, fmt.Sprintf("expects an integer for %s, found float %s", t, lit.Value)
		}
		i, err := cast.ToInt64E(lit.Value)
		if err != nil || reflect.Zero(t).OverflowInt(i) {
			return number{}, fmt.Sprintf("integer %s does not fit %s", lit.Value, t)
		}
		return number{fam: famInt, i: i}, ""
	case famUint:
		if lit.Kind == decl.LitFloat {
			return number{}, fmt.Sprintf("expects an integer for %s, found float %s", t, lit.Value)
		}
		if strings.HasPrefix(lit.Value, "-") {
			return number{}, fmt.Sprintf("expects a non-negative integer for %s, found %s", t, lit.Value)
		}
		u, err := cast.ToUint64E(strings.TrimPrefix(lit.Value, "+"))
		if err != nil || reflect.Zero(t).OverflowUint(u) {
			return number{}, fmt.Sprintf("integer %s does not fit %s", lit.Value, t)
		}
		return number{fam: famUint, u: u}, ""
	default:
		f, err := cast.ToFloat64E(lit.Value)
		if err != nil || reflect.Zero(t).OverflowFloat(f) {
			return number{}, fmt.Sprintf("cannot read %s as %s", lit.Value, t)
		}
		if t.Kind() == reflect.Float32 {
			return number{fam: famFloat, f: float64(float32(f)), f32: true}, ""
		}
		return number{fam: famFloat, f: f}, ""
	}
}

// coerceLength reads a non-negative integer length bound.
func coerceLength(lit decl.Lit) (int, string) {
	if lit.Kind != decl.LitInt {
		return 0, fmt.Sprintf("expects a non-negative integer, found %s %s", lit.Kind, lit)
	}
	n, err := cast.ToIntE(lit.Value)
	if err != nil || n < 0 {
		return 0, fmt.Sprintf("expects a non-negative integer, found %s", lit.Value)
	}

	return n, ""
}

// coerceMember converts an enumeration member to a value comparable with
// fields of type t.
func coerceMember(lit decl.Lit, t reflect.Type) (any, string) {
	if _, ok := numericFamily(t); ok {
		n, problem := coerceNumber(lit, t)
		if problem != "" {
			return nil, problem
		}
		return n, ""
	}

	switch t.Kind() {
	case reflect.String:
		if lit.Kind != decl.LitString {
			return nil, fmt.Sprintf("expects a string for %s, found %s %s", t, lit.Kind, lit)
		}
		return lit.Value, ""
	case reflect.Bool:
		if lit.Kind != decl.LitBool {
			return nil, fmt.Sprintf("expects true or false for %s, found %s %s", t, lit.Kind, lit)
		}
		b, err := cast.ToBoolE(lit.Value)
		if err != nil {
			return nil, fmt.Sprintf("cannot read %s as bool", lit.Value)
		}
		return b, ""
	default:
		return nil, fmt.Sprintf("type %s cannot be enumerated; use a number, string or bool", t)
	}
}
