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
	"io"

	"github.com/goccy/go-yaml"
)

// TypeYAML is the YAML format. Fields are matched by their yaml tag, falling
// back to the json tag.
const TypeYAML Type = "yaml"

func init() {
	Register(TypeYAML, DecoderFunc(decodeYAML))
}

func decodeYAML(data []byte, v any, strict bool) error {
	if strict {
		return yaml.UnmarshalWithOptions(data, v, yaml.DisallowUnknownField())
	}

	return yaml.Unmarshal(data, v)
}

// YAML decodes a YAML document into a new T and validates it.
//
// Example:
//
//	cfg, err := codec.YAML[Config](body, codec.WithStrict())
func YAML[T any](data []byte, opts ...Option) (T, error) {
	return Decode[T](TypeYAML, data, opts...)
}

// YAMLReader reads r fully and behaves like [YAML].
func YAMLReader[T any](r io.Reader, opts ...Option) (T, error) {
	return DecodeReader[T](TypeYAML, r, opts...)
}
