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
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type account struct {
	Name  string `json:"name" validate:"min_length=2"`
	Email string `json:"email"`
}

func (a *account) Validate() error {
	if !strings.Contains(a.Email, "@") {
		return FieldError{Path: "email", Code: "email", Message: "must contain @"}
	}

	return nil
}

type tenantKey struct{}

type tenantScoped struct {
	Tenant string `json:"tenant"`
}

func (s tenantScoped) Validate() error {
	return errors.New("validate must not be called when ValidateContext exists")
}

func (s tenantScoped) ValidateContext(ctx context.Context) error {
	want, _ := ctx.Value(tenantKey{}).(string)
	if s.Tenant != want {
		return fmt.Errorf("tenant %q does not match %q", s.Tenant, want)
	}

	return nil
}

type ledger struct {
	Entries map[string]int `json:"entries"`
}

func (l ledger) Validate() error {
	return errors.Join(
		FieldError{Path: "entries.0", Code: "negative", Message: "entry 0 is negative"},
		FieldError{Path: "entries.a", Code: "negative", Message: "entry a is negative"},
		FieldError{Path: "entries", Code: "unbalanced", Message: "entries do not balance"},
	)
}

func TestValidate_UserPathsDisagreeOnShape(t *testing.T) {
	t.Parallel()

	var err error
	require.NotPanics(t, func() {
		err = Validate(t.Context(), ledger{Entries: map[string]int{"0": -1, "a": -1}})
	})

	var verr *Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, map[string][]string{
		"entries":   {"unbalanced"},
		"entries.0": {"negative"},
		"entries.a": {"negative"},
	}, codes(verr.Tree))

	entries, ok := verr.Tree.(*ObjectErrors).Fields["entries"].(*ObjectErrors)
	require.True(t, ok)
	assert.Contains(t, entries.Fields, "0")
	assert.Contains(t, entries.Fields, "a")
}

func TestValidate_InvalidInput(t *testing.T) {
	t.Parallel()

	var nilAccount *account

	assert.ErrorIs(t, Validate(t.Context(), nil), ErrCannotValidateNilValue)
	assert.ErrorIs(t, Validate(t.Context(), nilAccount), ErrCannotValidateNilValue)
	assert.ErrorIs(t, Validate(t.Context(), &account{Email: "a@b"}, WithStrategy(Strategy(99))), ErrUnknownValidationStrategy)
}

func TestValidate_Strategies(t *testing.T) {
	t.Parallel()

	v := MustNew()
	acct := &account{Name: "x", Email: "nowhere"}

	tests := []struct {
		name string
		opts []Option
		want map[string][]string
	}{
		{
			name: "auto prefers the Validate method",
			want: map[string][]string{"email": {"email"}},
		},
		{
			name: "tags only",
			opts: []Option{WithStrategy(StrategyTags)},
			want: map[string][]string{"name": {CodeMinLength}},
		},
		{
			name: "run all merges every strategy",
			opts: []Option{WithRunAll(true)},
			want: map[string][]string{"email": {"email"}, "name": {CodeMinLength}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := v.Validate(t.Context(), acct, tt.opts...)
			var verr *Error
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.want, codes(verr.Tree))
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestValidate_ValidateContext(t *testing.T) {
	t.Parallel()

	ctx := context.WithValue(t.Context(), tenantKey{}, "acme")

	require.NoError(t, Validate(ctx, tenantScoped{Tenant: "acme"}))

	err := Validate(ctx, tenantScoped{Tenant: "other"})
	var verr *Error
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Fields(), 1)
	assert.Equal(t, CodeInterface, verr.Fields()[0].Code)
	assert.Equal(t, `tenant "other" does not match "acme"`, verr.Fields()[0].Message)

	override := context.WithValue(t.Context(), tenantKey{}, "other")
	require.NoError(t, Validate(ctx, tenantScoped{Tenant: "other"}, WithContext(override)))
}

func TestValidate_UserErrorShapes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want map[string][]string
	}{
		{
			name: "plain error is struct level",
			err:  errors.New("broken"),
			want: map[string][]string{"": {CodeCustom}},
		},
		{
			name: "violation keeps its code",
			err:  NewViolation("quota", "over quota", nil),
			want: map[string][]string{"": {"quota"}},
		},
		{
			name: "field error is placed at its path",
			err:  FieldError{Path: "lines.2.sku", Code: "unknown_sku", Message: "no such sku"},
			want: map[string][]string{"lines.2.sku": {"unknown_sku"}},
		},
		{
			name: "joined errors merge",
			err: errors.Join(
				FieldError{Path: "name", Message: "taken"},
				FieldError{Path: "name", Code: "reserved", Message: "reserved"},
				errors.New("also broken"),
			),
			want: map[string][]string{"": {CodeCustom}, "name": {CodeCustom, "reserved"}},
		},
		{
			name: "validation error keeps its tree",
			err:  &Error{Tree: errorsAt([]string{"items", "0"}, NewTypeErrors{{Code: CodeMaximum, Message: "big"}})},
			want: map[string][]string{"items.0": {CodeMaximum}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := Validate(t.Context(), "value", WithStrategy(StrategyInterface), WithCustomValidator(func(any) error {
				return tt.err
			}))
			var verr *Error
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.want, codes(verr.Tree))
		})
	}
}

type address struct {
	City string `json:"city" validate:"min_length=1"`
	Zip  string `json:"zip"`
}

func (a address) Validate() error {
	if a.Zip == "" {
		return errors.New("zip is required for shipping")
	}

	return nil
}

func TestValidate_NestedValidateMethod(t *testing.T) {
	t.Parallel()

	type Shipment struct {
		To    address   `json:"to" validate:"nested"`
		Stops []address `json:"stops" validate:"nested"`
	}

	tree := treeOf(t, MustNew(), Shipment{
		To:    address{City: "", Zip: ""},
		Stops: []address{{City: "Oslo", Zip: "0150"}, {City: "Bergen"}},
	})

	assert.Equal(t, map[string][]string{
		"to":      {CodeInterface},
		"to.city": {CodeMinLength},
		"stops.1": {CodeInterface},
	}, codes(tree))

	to := tree.(*ObjectErrors).Fields["to"].(*ObjectErrors)
	own := to.Fields[StructErrorsKey].(NewTypeErrors)
	assert.Equal(t, "zip is required for shipping", own[0].Message)
}

type chain struct {
	N    int    `json:"n" validate:"minimum=0"`
	Next *chain `json:"next" validate:"nested"`
}

func TestValidate_DepthLimit(t *testing.T) {
	t.Parallel()

	head := &chain{}
	cur := head
	for range maxRecursionDepth + 5 {
		cur.Next = &chain{}
		cur = cur.Next
	}

	var verr *Error
	require.ErrorAs(t, Validate(t.Context(), head), &verr)
	require.Len(t, verr.Fields(), 1)
	assert.Equal(t, CodeMaxDepth, verr.Fields()[0].Code)
	assert.Equal(t, maxRecursionDepth+1, strings.Count(verr.Fields()[0].Path, "next"))
}

func TestValidate_CustomValidatorRunsFirst(t *testing.T) {
	t.Parallel()

	calls := 0
	v := MustNew(WithCustomValidator(func(val any) error {
		calls++
		if _, ok := val.(account); !ok {
			return fmt.Errorf("unexpected %T", val)
		}
		return errors.New("rejected")
	}))

	var verr *Error
	require.ErrorAs(t, v.Validate(t.Context(), &account{Name: "ok", Email: "a@b"}), &verr)
	assert.Equal(t, 1, calls)
	assert.Equal(t, "rejected", verr.Error())
}

func TestValidate_TagName(t *testing.T) {
	t.Parallel()

	type Reading struct {
		Celsius float64 `json:"celsius" check:"range(minimum=-273.15)" validate:"maximum=0"`
	}

	v := MustNew(WithTagName("check"))

	assert.NoError(t, v.Validate(t.Context(), Reading{Celsius: 20}))

	var verr *Error
	require.ErrorAs(t, v.Validate(t.Context(), Reading{Celsius: -300}), &verr)
	assert.True(t, verr.HasCode(CodeMinimum))
}

func TestValidate_NoDeclarations(t *testing.T) {
	t.Parallel()

	type Plain struct {
		Name string
	}

	assert.NoError(t, Validate(t.Context(), Plain{}))
	assert.NoError(t, Validate(t.Context(), &Plain{}))
	assert.NoError(t, Validate(t.Context(), 42))
}

func TestNew_InvalidOptions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		opt     Option
		wantMsg string
	}{
		{name: "rule is not a function", opt: WithRule("r", 5), wantMsg: `rule "r": expected a function, got int`},
		{name: "rule without error result", opt: WithRule("r", func(int) bool { return true }), wantMsg: `rule "r": must return exactly one error`},
		{name: "rule without parameters", opt: WithRule("r", func() error { return nil }), wantMsg: `rule "r": expected at least one parameter`},
		{name: "rule name", opt: WithRule("bad name", func(int) error { return nil }), wantMsg: "name must be an identifier"},
		{name: "custom arity", opt: WithCustom("c", func(a, b int) error { return nil }), wantMsg: `custom function "c": expected 1 parameter(s), got 2`},
		{name: "variadic custom", opt: WithCustom("c", func(...int) error { return nil }), wantMsg: "variadic functions are not supported"},
		{name: "nil format", opt: WithFormat("f", nil), wantMsg: `format "f" needs an identifier name and a non-nil function`},
		{name: "nil message function", opt: WithMessageFunc("m", nil), wantMsg: `message function "m"`},
		{name: "tag name", opt: WithTagName("not valid"), wantMsg: `tag name "not valid" is not a valid identifier`},
		{name: "schema cache size", opt: WithMaxCachedSchemas(-1), wantMsg: "maxCachedSchemas must be non-negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			v, err := New(tt.opt)
			require.ErrorIs(t, err, ErrInvalidOption)
			assert.Nil(t, v)
			assert.Contains(t, err.Error(), tt.wantMsg)
			assert.Panics(t, func() { MustNew(tt.opt) })
		})
	}
}

func TestValidate_RejectsCompileOptionsPerCall(t *testing.T) {
	t.Parallel()

	err := Validate(t.Context(), &account{}, WithRule("r", func(int) error { return nil }), WithTagName("x"))
	require.ErrorIs(t, err, ErrInvalidOption)
	assert.Contains(t, err.Error(), "WithRule, WithTagName only take effect in New")
}

func TestStrategy_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "auto", StrategyAuto.String())
	assert.Equal(t, "tags", StrategyTags.String())
	assert.Equal(t, "json_schema", StrategyJSONSchema.String())
	assert.Equal(t, "interface", StrategyInterface.String())
	assert.Equal(t, "Strategy(7)", Strategy(7).String())
}
