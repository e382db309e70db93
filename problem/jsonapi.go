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
	"errors"
	"net/http"
	"strconv"
	"strings"

	"rivaas.dev/constraint/validation"
)

// JSONAPI formats errors as a JSON:API error document with Content-Type
// "application/vnd.api+json". A validation failure yields one error object
// per field error, with a JSON Pointer to the field.
type JSONAPI struct {
	// PointerPrefix is prepended to field pointers. Defaults to
	// "/data/attributes".
	PointerPrefix string

	// StatusResolver overrides the status taken from [ErrorType].
	StatusResolver func(err error) int

	// ErrorIDGenerator replaces the UUID v7 generator for error object IDs.
	ErrorIDGenerator func() string
}

// NewJSONAPI returns a JSON:API formatter.
func NewJSONAPI() *JSONAPI {
	return &JSONAPI{}
}

// APIError is one JSON:API error object.
type APIError struct {
	ID     string         `json:"id,omitempty"`
	Status string         `json:"status,omitempty"`
	Code   string         `json:"code,omitempty"`
	Title  string         `json:"title,omitempty"`
	Detail string         `json:"detail,omitempty"`
	Source *Source        `json:"source,omitempty"`
	Meta   map[string]any `json:"meta,omitempty"`
}

// Source locates the member that caused an error.
type Source struct {
	Pointer string `json:"pointer,omitempty"`
}

// Document is the top-level JSON:API error document.
type Document struct {
	Errors []APIError `json:"errors"`
}

// Format implements [Formatter]. instance is unused.
func (f *JSONAPI) Format(_ string, err error) Response {
	status := statusOf(err, f.StatusResolver)
	statusText := strconv.Itoa(status)

	var apiErrors []APIError
	var verr *validation.Error
	if errors.As(err, &verr) {
		for _, fe := range verr.Fields() {
			apiErr := APIError{
				ID:     f.errorID(),
				Status: statusText,
				Code:   fe.Code,
				Title:  http.StatusText(status),
				Detail: fe.Message,
				Meta:   fe.Meta,
			}
			if fe.Path != "" {
				apiErr.Source = &Source{Pointer: f.pointer(fe.Path)}
			}
			apiErrors = append(apiErrors, apiErr)
		}
	}
	if len(apiErrors) == 0 {
		apiErrors = []APIError{{
			ID:     f.errorID(),
			Status: statusText,
			Code:   codeOf(err),
			Title:  http.StatusText(status),
			Detail: err.Error(),
		}}
	}

	return Response{
		Status:      status,
		ContentType: "application/vnd.api+json; charset=utf-8",
		Body:        Document{Errors: apiErrors},
	}
}

func (f *JSONAPI) errorID() string {
	if f.ErrorIDGenerator != nil {
		return f.ErrorIDGenerator()
	}

	return generateErrorID()
}

// pointer converts a dot path into a JSON Pointer (RFC 6901).
func (f *JSONAPI) pointer(path string) string {
	prefix := f.PointerPrefix
	if prefix == "" {
		prefix = "/data/attributes"
	}

	segments := strings.Split(path, ".")
	var b strings.Builder
	b.WriteString(prefix)
	for _, seg := range segments {
		b.WriteByte('/')
		seg = strings.ReplaceAll(seg, "~", "~0")
		b.WriteString(strings.ReplaceAll(seg, "/", "~1"))
	}

	return b.String()
}
