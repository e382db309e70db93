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
	"bytes"
	"encoding/json"
	"errors"
	"io"
)

// TypeJSON is the JSON format. The raw document is attached to the
// validation context, so [validation.StrategyJSONSchema] sees keys the Go
// type drops.
const TypeJSON Type = "json"

func init() {
	Register(TypeJSON, DecoderFunc(decodeJSON))
}

func decodeJSON(data []byte, v any, strict bool) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if strict {
		dec.DisallowUnknownFields()
	}
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return errors.New("unexpected data after top-level value")
	}

	return nil
}

// JSON decodes a JSON document into a new T and validates it.
//
// Example:
//
//	user, err := codec.JSON[CreateUser](body)
func JSON[T any](data []byte, opts ...Option) (T, error) {
	return Decode[T](TypeJSON, data, opts...)
}

// JSONReader reads r fully and behaves like [JSON].
func JSONReader[T any](r io.Reader, opts ...Option) (T, error) {
	return DecodeReader[T](TypeJSON, r, opts...)
}
