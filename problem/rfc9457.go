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
)

// RFC9457 formats errors as RFC 9457 Problem Details with Content-Type
// "application/problem+json".
//
// Example:
//
//	resp := problem.NewRFC9457("https://api.example.com/problems").Format("/users", err)
type RFC9457 struct {
	// BaseURL is prepended to the error code to form the problem type URI.
	BaseURL string

	// StatusResolver overrides the status taken from [ErrorType].
	StatusResolver func(err error) int

	// ErrorIDGenerator replaces the UUID v7 error_id generator. See [ULID].
	ErrorIDGenerator func() string

	// DisableErrorID omits the error_id extension.
	DisableErrorID bool
}

// NewRFC9457 returns an RFC 9457 formatter that builds type URIs under baseURL.
func NewRFC9457(baseURL string) *RFC9457 {
	return &RFC9457{BaseURL: baseURL}
}

// ProblemDetail is an RFC 9457 problem document. Extensions are encoded as
// top-level members.
type ProblemDetail struct {
	Type       string
	Title      string
	Status     int
	Detail     string
	Instance   string
	Extensions map[string]any
}

// MarshalJSON merges the extensions inline. Extensions cannot replace the
// standard members.
func (p ProblemDetail) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(p.Extensions)+5)
	for k, v := range p.Extensions {
		m[k] = v
	}
	m["type"] = p.Type
	m["title"] = p.Title
	m["status"] = p.Status
	if p.Detail != "" {
		m["detail"] = p.Detail
	} else {
		delete(m, "detail")
	}
	if p.Instance != "" {
		m["instance"] = p.Instance
	} else {
		delete(m, "instance")
	}

	return json.Marshal(m)
}

// Format implements [Formatter]. The error code, when present, becomes the
// problem type and the "code" extension; field errors go under "errors".
func (f *RFC9457) Format(instance string, err error) Response {
	status := statusOf(err, f.StatusResolver)

	p := ProblemDetail{
		Type:       f.problemType(err),
		Title:      http.StatusText(status),
		Status:     status,
		Detail:     err.Error(),
		Instance:   instance,
		Extensions: make(map[string]any),
	}

	if !f.DisableErrorID {
		if f.ErrorIDGenerator != nil {
			p.Extensions["error_id"] = f.ErrorIDGenerator()
		} else {
			p.Extensions["error_id"] = generateErrorID()
		}
	}

	var detailed ErrorDetails
	if errors.As(err, &detailed) {
		if details := detailed.Details(); details != nil {
			p.Extensions["errors"] = details
		}
	}
	if code := codeOf(err); code != "" {
		p.Extensions["code"] = code
	}

	return Response{
		Status:      status,
		ContentType: "application/problem+json; charset=utf-8",
		Body:        p,
	}
}

func (f *RFC9457) problemType(err error) string {
	code := codeOf(err)
	switch {
	case code == "":
		return "about:blank"
	case f.BaseURL != "":
		return f.BaseURL + "/" + code
	default:
		return code
	}
}
