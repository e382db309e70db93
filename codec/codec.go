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
	"fmt"
	"io"
	"sort"
	"sync"

	"dario.cat/mergo"

	"rivaas.dev/constraint/validation"
)

// Type identifies an input format.
type Type string

// ErrUnknownType is returned when no decoder is registered for a [Type].
var ErrUnknownType = errors.New("unknown codec type")

// Decoder converts encoded bytes into the value pointed to by v.
// Implementations must be safe for concurrent use.
type Decoder interface {
	// Decode decodes data into v. With strict set, keys that v's type does
	// not declare are an error.
	Decode(data []byte, v any, strict bool) error
}

// DecoderFunc adapts a function to [Decoder].
type DecoderFunc func(data []byte, v any, strict bool) error

// Decode calls f.
func (f DecoderFunc) Decode(data []byte, v any, strict bool) error {
	return f(data, v, strict)
}

var (
	registryMu sync.RWMutex
	registry   = make(map[Type]Decoder)
)

// Register registers the decoder for a format, replacing any previous one.
func Register(name Type, dec Decoder) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = dec
}

// Lookup returns the decoder registered for name.
func Lookup(name Type) (Decoder, error) {
	registryMu.RLock()
	dec, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, name)
	}

	return dec, nil
}

// Types lists the registered formats in sorted order.
func Types() []Type {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]Type, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })

	return names
}

// Decode decodes data of format typ into a new T and validates it.
// The decoded value is returned even when validation fails.
//
// Example:
//
//	order, err := codec.Decode[Order](codec.TypeYAML, body, codec.WithStrict())
func Decode[T any](typ Type, data []byte, opts ...Option) (T, error) {
	var result T
	err := DecodeTo(typ, data, &result, opts...)

	return result, err
}

// DecodeReader reads r fully and behaves like [Decode].
func DecodeReader[T any](typ Type, r io.Reader, opts ...Option) (T, error) {
	var result T
	data, err := io.ReadAll(r)
	if err != nil {
		return result, &Error{Type: typ, Kind: KindDecode, Err: err}
	}

	return Decode[T](typ, data, opts...)
}

// DecodeTo decodes data of format typ into out, which must be a non-nil
// pointer, and validates it.
func DecodeTo(typ Type, data []byte, out any, opts ...Option) error {
	cfg := applyOptions(opts)

	dec, err := Lookup(typ)
	if err != nil {
		return &Error{Type: typ, Kind: KindDecode, Err: err}
	}
	if err = dec.Decode(data, out, cfg.strict); err != nil {
		return &Error{Type: typ, Kind: KindDecode, Err: err}
	}

	ctx := cfg.context()
	if typ == TypeJSON {
		ctx = validation.WithRawJSON(ctx, data)
	}

	return finish(ctx, typ, out, cfg)
}

// finish applies defaults and runs validation on a decoded value.
func finish(ctx context.Context, typ Type, out any, cfg *config) error {
	if cfg.defaults != nil {
		if err := mergo.Merge(out, cfg.defaults); err != nil {
			return &Error{Type: typ, Kind: KindDecode, Err: fmt.Errorf("apply defaults: %w", err)}
		}
	}

	var err error
	if cfg.validator != nil {
		err = cfg.validator.Validate(ctx, out, cfg.validationOpts...)
	} else {
		err = validation.Validate(ctx, out, cfg.validationOpts...)
	}
	if err == nil {
		return nil
	}

	var verr *validation.Error
	if errors.As(err, &verr) {
		return &Error{Type: typ, Kind: KindValidation, Err: err}
	}

	return err
}
