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
	"context"
	"errors"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"rivaas.dev/constraint/validation"
)

type server struct {
	Host string   `json:"host" toml:"host" validate:"min_length=1"`
	Port int      `json:"port" toml:"port" validate:"range(minimum=1, maximum=65535)"`
	Tags []string `json:"tags,omitempty" toml:"tags" validate:"max_items=2"`
}

func mustMsgPack(t *testing.T, v any) []byte {
	t.Helper()
	data, err := msgpack.Marshal(v)
	require.NoError(t, err)

	return data
}

func TestDecode_Formats(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		typ     Type
		valid   []byte
		invalid []byte
		broken  []byte
		unknown []byte
	}{
		{
			name:    "json",
			typ:     TypeJSON,
			valid:   []byte(`{"host": "db", "port": 5432, "tags": ["a"]}`),
			invalid: []byte(`{"host": "db", "port": 70000}`),
			broken:  []byte(`{"host": "db",`),
			unknown: []byte(`{"host": "db", "port": 5432, "user": "root"}`),
		},
		{
			name:    "yaml",
			typ:     TypeYAML,
			valid:   []byte("host: db\nport: 5432\ntags: [a]\n"),
			invalid: []byte("host: db\nport: 70000\n"),
			broken:  []byte("host: [db\n"),
			unknown: []byte("host: db\nport: 5432\nuser: root\n"),
		},
		{
			name:    "toml",
			typ:     TypeTOML,
			valid:   []byte("host = \"db\"\nport = 5432\ntags = [\"a\"]\n"),
			invalid: []byte("host = \"db\"\nport = 70000\n"),
			broken:  []byte("host = \n"),
			unknown: []byte("host = \"db\"\nport = 5432\nuser = \"root\"\n"),
		},
		{
			name:    "msgpack",
			typ:     TypeMsgPack,
			valid:   mustMsgPack(t, map[string]any{"host": "db", "port": 5432, "tags": []string{"a"}}),
			invalid: mustMsgPack(t, map[string]any{"host": "db", "port": 70000}),
			broken:  []byte{0xc1},
			unknown: mustMsgPack(t, map[string]any{"host": "db", "port": 5432, "user": "root"}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Decode[server](tt.typ, tt.valid)
			require.NoError(t, err)
			assert.Equal(t, server{Host: "db", Port: 5432, Tags: []string{"a"}}, got)

			got, err = Decode[server](tt.typ, tt.invalid)
			var cerr *Error
			require.ErrorAs(t, err, &cerr)
			assert.True(t, cerr.IsValidation())
			assert.False(t, cerr.IsDecode())
			assert.Equal(t, tt.typ, cerr.Type)
			assert.Equal(t, 422, cerr.HTTPStatus())
			assert.Equal(t, 70000, got.Port, "decoded value is returned with the error")
			verr := cerr.ValidationErrors()
			require.NotNil(t, verr)
			assert.True(t, verr.HasCode(validation.CodeMaximum))
			assert.True(t, verr.Has("port"))

			_, err = Decode[server](tt.typ, tt.broken)
			require.ErrorAs(t, err, &cerr)
			assert.True(t, cerr.IsDecode())
			assert.Equal(t, 400, cerr.HTTPStatus())
			assert.Nil(t, cerr.ValidationErrors())
			assert.True(t, strings.HasPrefix(cerr.Error(), "codec: decode "+string(tt.typ)+": "))

			_, err = Decode[server](tt.typ, tt.unknown)
			require.NoError(t, err, "unknown keys are ignored by default")

			_, err = Decode[server](tt.typ, tt.unknown, WithStrict())
			require.ErrorAs(t, err, &cerr)
			assert.True(t, cerr.IsDecode())
		})
	}
}

func TestFormatHelpers(t *testing.T) {
	t.Parallel()

	want := server{Host: "db", Port: 5432}

	got, err := JSON[server]([]byte(`{"host": "db", "port": 5432}`))
	require.NoError(t, err)
	assert.Equal(t, want, got)

	got, err = YAML[server]([]byte("host: db\nport: 5432\n"))
	require.NoError(t, err)
	assert.Equal(t, want, got)

	got, err = TOML[server]([]byte("host = \"db\"\nport = 5432\n"))
	require.NoError(t, err)
	assert.Equal(t, want, got)

	got, err = MsgPack[server](mustMsgPack(t, map[string]any{"host": "db", "port": 5432}))
	require.NoError(t, err)
	assert.Equal(t, want, got)

	got, err = JSONReader[server](strings.NewReader(`{"host": "db", "port": 5432}`))
	require.NoError(t, err)
	assert.Equal(t, want, got)

	got, err = YAMLReader[server](strings.NewReader("host: db\nport: 5432\n"))
	require.NoError(t, err)
	assert.Equal(t, want, got)

	got, err = TOMLReader[server](strings.NewReader("host = \"db\"\nport = 5432\n"))
	require.NoError(t, err)
	assert.Equal(t, want, got)

	got, err = MsgPackReader[server](strings.NewReader(string(mustMsgPack(t, map[string]any{"host": "db", "port": 5432}))))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestJSON_TrailingData(t *testing.T) {
	t.Parallel()

	_, err := JSON[server]([]byte(`{"host": "db", "port": 1} {"host": "x"}`))
	var cerr *Error
	require.ErrorAs(t, err, &cerr)
	assert.True(t, cerr.IsDecode())
	assert.Contains(t, cerr.Error(), "unexpected data after top-level value")
}

type profile struct {
	Name string `json:"name"`
	Age  int    `json:"age"`
}

func (profile) JSONSchema() (id, schema string) {
	return "codec-profile", `{
		"type": "object",
		"properties": {
			"name": {"type": "string", "minLength": 1},
			"age": {"type": "integer", "minimum": 0}
		},
		"additionalProperties": false
	}`
}

func TestJSON_RawDocumentReachesSchema(t *testing.T) {
	t.Parallel()

	_, err := JSON[profile]([]byte(`{"name": "Ada", "age": 36}`))
	require.NoError(t, err)

	got, err := JSON[profile]([]byte(`{"name": "Ada", "age": 36, "nickname": "countess"}`))
	var cerr *Error
	require.ErrorAs(t, err, &cerr)
	require.True(t, cerr.IsValidation())
	assert.True(t, cerr.ValidationErrors().HasCode("schema.additionalProperties"))
	assert.Equal(t, profile{Name: "Ada", Age: 36}, got)

	// Other formats validate the re-encoded value, which has no extra keys.
	_, err = YAML[profile]([]byte("name: Ada\nage: 36\nnickname: countess\n"))
	require.NoError(t, err)
}

func TestWithDefaults(t *testing.T) {
	t.Parallel()

	body := []byte("host = \"db\"\n")

	_, err := TOML[server](body)
	var cerr *Error
	require.ErrorAs(t, err, &cerr)
	assert.True(t, cerr.ValidationErrors().HasCode(validation.CodeMinimum))

	got, err := TOML[server](body, WithDefaults(server{Host: "localhost", Port: 8080}))
	require.NoError(t, err)
	assert.Equal(t, server{Host: "db", Port: 8080}, got, "decoded fields win over defaults")

	got, err = TOML[server](body, WithDefaults(&server{Port: 9090}))
	require.NoError(t, err)
	assert.Equal(t, 9090, got.Port)

	_, err = TOML[server](body, WithDefaults(profile{Name: "x"}))
	require.ErrorAs(t, err, &cerr)
	assert.True(t, cerr.IsDecode())
	assert.Contains(t, cerr.Error(), "apply defaults")
}

func TestMap(t *testing.T) {
	t.Parallel()

	got, err := Map[server](map[string]any{"host": "db", "port": "5432", "extra": true})
	require.NoError(t, err)
	assert.Equal(t, server{Host: "db", Port: 5432}, got)

	_, err = Map[server](map[string]any{"host": "db", "port": 5432, "extra": true}, WithStrict())
	var cerr *Error
	require.ErrorAs(t, err, &cerr)
	assert.True(t, cerr.IsDecode())
	assert.Equal(t, TypeMap, cerr.Type)

	_, err = Map[server](map[string]any{"host": "db", "port": "5432"}, WithStrict())
	require.ErrorAs(t, err, &cerr)
	assert.True(t, cerr.IsDecode(), "strict input is not weakly typed")

	_, err = Map[server](map[string]any{"host": "", "port": 5432, "tags": []any{"a", "b", "c"}})
	require.ErrorAs(t, err, &cerr)
	require.True(t, cerr.IsValidation())
	verr := cerr.ValidationErrors()
	assert.True(t, verr.Has("host"))
	assert.True(t, verr.Has("tags"))
}

func TestUnknownType(t *testing.T) {
	t.Parallel()

	_, err := Decode[server](Type("ini"), []byte("host=db"))
	require.ErrorIs(t, err, ErrUnknownType)
	var cerr *Error
	require.ErrorAs(t, err, &cerr)
	assert.True(t, cerr.IsDecode())
}

func TestRegister(t *testing.T) {
	t.Parallel()

	const typ Type = "codec-test-lines"
	Register(typ, DecoderFunc(func(data []byte, v any, _ bool) error {
		s, ok := v.(*server)
		if !ok {
			return errors.New("lines decoder only fills server")
		}
		host, _, _ := strings.Cut(string(data), "\n")
		s.Host = host
		s.Port = 80

		return nil
	}))

	assert.Contains(t, Types(), typ)
	assert.Contains(t, Types(), TypeJSON)

	got, err := Decode[server](typ, []byte("example.com\n"))
	require.NoError(t, err)
	assert.Equal(t, server{Host: "example.com", Port: 80}, got)

	_, err = Decode[profile](typ, nil)
	var cerr *Error
	require.ErrorAs(t, err, &cerr)
	assert.True(t, cerr.IsDecode())
}

func TestDecodeReader_ReadError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	_, err := DecodeReader[server](TypeJSON, iotest.ErrReader(boom))
	require.ErrorIs(t, err, boom)
	var cerr *Error
	require.ErrorAs(t, err, &cerr)
	assert.True(t, cerr.IsDecode())
}

func TestCompileErrorIsNotWrapped(t *testing.T) {
	t.Parallel()

	type broken struct {
		N int `json:"n" validate:"bogus"`
	}

	_, err := JSON[broken]([]byte(`{"n": 1}`))
	require.Error(t, err)

	var compileErr *validation.CompileError
	require.ErrorAs(t, err, &compileErr)
	var cerr *Error
	assert.False(t, errors.As(err, &cerr))
}

func TestWithValidator(t *testing.T) {
	t.Parallel()

	type item struct {
		SKU string `json:"sku" validate:"format='sku'"`
	}

	v := validation.MustNew(validation.WithFormat("sku", func(s string) bool {
		return strings.HasPrefix(s, "SKU-")
	}))

	_, err := JSON[item]([]byte(`{"sku": "SKU-1"}`), WithValidator(v))
	require.NoError(t, err)

	_, err = JSON[item]([]byte(`{"sku": "1"}`), WithValidator(v))
	var cerr *Error
	require.ErrorAs(t, err, &cerr)
	assert.True(t, cerr.ValidationErrors().HasCode(validation.CodeFormat))
}

func TestWithValidationOptions(t *testing.T) {
	t.Parallel()

	_, err := JSON[server]([]byte(`{"host": "db", "port": 0}`),
		WithValidationOptions(validation.WithMessages(map[string]string{
			validation.CodeMinimum: "port is required",
		})))
	var cerr *Error
	require.ErrorAs(t, err, &cerr)
	field := cerr.ValidationErrors().GetField("port")
	require.NotNil(t, field)
	assert.Equal(t, "port is required", field.Message)
}

type tenantKey struct{}

type tenantRequest struct {
	Tenant string `json:"tenant"`
}

func (r tenantRequest) ValidateContext(ctx context.Context) error {
	if want, _ := ctx.Value(tenantKey{}).(string); r.Tenant != want {
		return errors.New("tenant mismatch")
	}

	return nil
}

func TestWithContext(t *testing.T) {
	t.Parallel()

	ctx := context.WithValue(t.Context(), tenantKey{}, "acme")

	_, err := JSON[tenantRequest]([]byte(`{"tenant": "acme"}`), WithContext(ctx))
	require.NoError(t, err)

	_, err = JSON[tenantRequest]([]byte(`{"tenant": "other"}`), WithContext(ctx))
	var cerr *Error
	require.ErrorAs(t, err, &cerr)
	assert.True(t, cerr.IsValidation())
	assert.True(t, cerr.ValidationErrors().HasCode(validation.CodeInterface))
}

func TestKind_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "decode", KindDecode.String())
	assert.Equal(t, "validation", KindValidation.String())
	assert.Equal(t, "Kind(9)", Kind(9).String())
}
