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


package problem

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rivaas.dev/constraint/codec"
	"rivaas.dev/constraint/validation"
)

type statusError struct {
	status int
}

func (e statusError) Error() string   { return "not found" }
func (e statusError) HTTPStatus() int { return e.status }

func orderError() *validation.Error {
	return &validation.Error{Tree: &validation.ObjectErrors{Fields: map[string]validation.Errors{
		"quantity": validation.NewTypeErrors{{Code: validation.CodeMaximum, Message: "too many", Params: map[string]any{"maximum": int64(100)}}},
		"lines": &validation.ArrayErrors{Items: map[int]validation.Errors{
			2: &validation.ObjectErrors{Fields: map[string]validation.Errors{
				"sku/id": validation.NewTypeErrors{{Code: validation.CodePattern, Message: "bad sku"}},
			}},
		}},
	}}}
}

func TestRFC9457_Format(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
		wantCode   any
	}{
		{
			name:       "plain error",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantType:   "about:blank",
		},
		{
			name:       "error with status",
			err:        statusError{status: http.StatusNotFound},
			wantStatus: http.StatusNotFound,
			wantType:   "about:blank",
		},
		{
			name:       "validation error",
			err:        orderError(),
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   "https://api.example.com/problems/validation_error",
			wantCode:   "validation_error",
		},
		{
			name:       "decode error",
			err:        &codec.Error{Type: codec.TypeJSON, Kind: codec.KindDecode, Err: errors.New("unexpected EOF")},
			wantStatus: http.StatusBadRequest,
			wantType:   "https://api.example.com/problems/decode_error",
			wantCode:   "decode_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := NewRFC9457("https://api.example.com/problems")
			f.ErrorIDGenerator = func() string { return "err-1" }

			resp := f.Format("/orders", tt.err)
			assert.Equal(t, tt.wantStatus, resp.Status)
			assert.Equal(t, "application/problem+json; charset=utf-8", resp.ContentType)

			p, ok := resp.Body.(ProblemDetail)
			require.True(t, ok)
			assert.Equal(t, tt.wantType, p.Type)
			assert.Equal(t, http.StatusText(tt.wantStatus), p.Title)
			assert.Equal(t, "/orders", p.Instance)
			assert.Equal(t, "err-1", p.Extensions["error_id"])
			assert.Equal(t, tt.wantCode, p.Extensions["code"])
		})
	}
}

func TestRFC9457_ValidationBody(t *testing.T) {
	t.Parallel()

	f := &RFC9457{DisableErrorID: true}
	err := &codec.Error{Type: codec.TypeJSON, Kind: codec.KindValidation, Err: orderError()}

	resp := f.Format("", err)
	body, marshalErr := json.Marshal(resp.Body)
	require.NoError(t, marshalErr)

	assert.JSONEq(t, `{
		"type": "validation_error",
		"title": "Unprocessable Entity",
		"status": 422,
		"detail": "codec: json: validation failed: lines.2.sku/id: bad sku; quantity: too many",
		"code": "validation_error",
		"errors": [
			{"path": "lines.2.sku/id", "code": "pattern", "message": "bad sku"},
			{"path": "quantity", "code": "maximum", "message": "too many", "meta": {"maximum": 100}}
		]
	}`, string(body))
}

func TestProblemDetail_ReservedMembers(t *testing.T) {
	t.Parallel()

	p := ProblemDetail{
		Type:   "about:blank",
		Title:  "Bad Request",
		Status: 400,
		Extensions: map[string]any{
			"status":   999,
			"instance": "/spoofed",
			"trace":    "abc",
		},
	}
	body, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type": "about:blank", "title": "Bad Request", "status": 400, "trace": "abc"}`, string(body))
}

func TestJSONAPI_Format(t *testing.T) {
	t.Parallel()

	resp := NewJSONAPI().Format("", orderError())
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Status)
	assert.Equal(t, "application/vnd.api+json; charset=utf-8", resp.ContentType)

	doc, ok := resp.Body.(Document)
	require.True(t, ok)
	require.Len(t, doc.Errors, 2)

	assert.Equal(t, "/data/attributes/lines/2/sku~1id", doc.Errors[0].Source.Pointer)
	assert.Equal(t, validation.CodePattern, doc.Errors[0].Code)
	assert.Equal(t, "bad sku", doc.Errors[0].Detail)
	assert.Equal(t, "422", doc.Errors[0].Status)
	assert.NotEmpty(t, doc.Errors[0].ID)

	assert.Equal(t, "/data/attributes/quantity", doc.Errors[1].Source.Pointer)
	assert.Equal(t, int64(100), doc.Errors[1].Meta["maximum"])
}

func TestJSONAPI_NonValidationError(t *testing.T) {
	t.Parallel()

	f := &JSONAPI{StatusResolver: func(error) int { return http.StatusTeapot }}
	resp := f.Format("", &codec.Error{Type: codec.TypeYAML, Kind: codec.KindDecode, Err: errors.New("bad indent")})
	assert.Equal(t, http.StatusTeapot, resp.Status)

	doc := resp.Body.(Document)
	require.Len(t, doc.Errors, 1)
	assert.Equal(t, "decode_error", doc.Errors[0].Code)
	assert.Equal(t, "codec: decode yaml: bad indent", doc.Errors[0].Detail)
	assert.Nil(t, doc.Errors[0].Source)
}

func TestJSONAPI_PointerPrefix(t *testing.T) {
	t.Parallel()

	f := &JSONAPI{PointerPrefix: ""}
	assert.Equal(t, "/data/attributes/a/0/b~0c", f.pointer("a.0.b~c"))

	f = &JSONAPI{PointerPrefix: "/body"}
	assert.Equal(t, "/body/name", f.pointer("name"))
}

func TestGenerateErrorID(t *testing.T) {
	t.Parallel()

	a, b := generateErrorID(), generateErrorID()
	assert.NotEqual(t, a, b)
	assert.Len(t, a, len("err-")+36)
	assert.Less(t, a, b, "UUID v7 IDs sort by creation time")

	u1, u2 := ULID(), ULID()
	assert.Len(t, u1, 26)
	assert.Less(t, u1, u2, "monotonic within the same millisecond")

	f := &JSONAPI{ErrorIDGenerator: ULID}
	doc := f.Format("", errors.New("boom")).Body.(Document)
	assert.Len(t, doc.Errors[0].ID, 26)
}
