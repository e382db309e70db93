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
	"time"

	"github.com/go-viper/mapstructure/v2"
)

// TypeMap names generic map input in errors returned by [Map].
const TypeMap Type = "map"

// Map converts generic map input, such as a decoded configuration tree, into a
// new T and validates it. Keys are matched by json tag. Without [WithStrict]
// scalar types are converted weakly ("8080" fills an int) and unknown keys
// are ignored.
//
// Example:
//
//	server, err := codec.Map[Server](map[string]any{"host": "localhost", "port": "8080"})
func Map[T any](in map[string]any, opts ...Option) (T, error) {
	var result T
	cfg := applyOptions(opts)

	if err := decodeMap(in, &result, cfg.strict); err != nil {
		return result, &Error{Type: TypeMap, Kind: KindDecode, Err: err}
	}

	return result, finish(cfg.context(), TypeMap, &result, cfg)
}

func decodeMap(in map[string]any, out any, strict bool) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Squash:           true,
		WeaklyTypedInput: !strict,
		ErrorUnused:      strict,
		Result:           out,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToTimeHookFunc(time.RFC3339),
		),
	})
	if err != nil {
		return fmt.Errorf("create decoder: %w", err)
	}

	return decoder.Decode(in)
}
