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
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// TypeMsgPack is the MessagePack format. Fields are matched by their json tag,
// so one struct serves every format.
const TypeMsgPack Type = "msgpack"

func init() {
	Register(TypeMsgPack, DecoderFunc(decodeMsgPack))
}

func decodeMsgPack(data []byte, v any, strict bool) error {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetCustomStructTag("json")
	if strict {
		dec.DisallowUnknownFields(true)
	}

	return dec.Decode(v)
}

// MsgPack decodes a MessagePack payload into a new T and validates it.
//
// Example:
//
//	event, err := codec.MsgPack[Event](payload)
func MsgPack[T any](data []byte, opts ...Option) (T, error) {
	return Decode[T](TypeMsgPack, data, opts...)
}

// MsgPackReader reads r fully and behaves like [MsgPack].
func MsgPackReader[T any](r io.Reader, opts ...Option) (T, error) {
	return DecodeReader[T](TypeMsgPack, r, opts...)
}
