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
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"
)

// TypeTOML is the TOML format. Fields are matched by their toml tag, falling
// back to a case-insensitive match on the field name.
const TypeTOML Type = "toml"

func init() {
	Register(TypeTOML, DecoderFunc(decodeTOML))
}

func decodeTOML(data []byte, v any, strict bool) error {
	meta, err := toml.Decode(string(data), v)
	if err != nil {
		return err
	}
	if !strict {
		return nil
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, key := range undecoded {
			keys[i] = key.String()
		}

		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}

	return nil
}

// TOML decodes a TOML document into a new T and validates it.
//
// Example:
//
//	cfg, err := codec.TOML[Config](body, codec.WithDefaults(Config{Port: 8080}))
func TOML[T any](data []byte, opts ...Option) (T, error) {
	return Decode[T](TypeTOML, data, opts...)
}

// TOMLReader reads r fully and behaves like [TOML].
func TOMLReader[T any](r io.Reader, opts ...Option) (T, error) {
	return DecodeReader[T](TypeTOML, r, opts...)
}
