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
	"crypto/rand"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// Formatter converts an error into a response body.
type Formatter interface {
	// Format renders err. instance identifies the failing request, usually
	// its path.
	Format(instance string, err error) Response
}

// Response is a rendered error.
type Response struct {
	Status      int    // HTTP status code
	ContentType string // Media type of Body
	Body        any    // Value to encode as JSON
}

// ErrorType is implemented by errors that declare their HTTP status.
type ErrorType interface {
	error
	HTTPStatus() int
}

// ErrorCode is implemented by errors with a machine-readable code.
type ErrorCode interface {
	error
	Code() string
}

// ErrorDetails is implemented by errors with structured details, such as a
// list of field errors.
type ErrorDetails interface {
	error
	Details() any
}

func statusOf(err error, resolver func(error) int) int {
	if resolver != nil {
		return resolver(err)
	}
	var typed ErrorType
	if errors.As(err, &typed) {
		return typed.HTTPStatus()
	}

	return http.StatusInternalServerError
}

func codeOf(err error) string {
	var coded ErrorCode
	if errors.As(err, &coded) {
		return coded.Code()
	}

	return ""
}

// generateErrorID returns a UUID v7 for correlating a response with logs.
// UUID v7 is time-ordered, so IDs sort by creation time.
func generateErrorID() string {
	return "err-" + uuid.Must(uuid.NewV7()).String()
}

var (
	ulidEntropy     = ulid.Monotonic(rand.Reader, 0)
	ulidEntropyLock sync.Mutex
)

// ULID generates a 26-character ULID error ID. Assign it to
// [RFC9457.ErrorIDGenerator] or [JSONAPI.ErrorIDGenerator] for IDs that are
// shorter than the default UUID v7.
func ULID() string {
	ulidEntropyLock.Lock()
	defer ulidEntropyLock.Unlock()

	return ulid.MustNew(ulid.Timestamp(time.Now()), ulidEntropy).String()
}
