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

package validation

import "context"

type ctxKey int

const ctxKeyRawJSON ctxKey = iota

// WithRawJSON attaches the raw JSON document a value was decoded from.
// [StrategyJSONSchema] validates the raw document instead of re-encoding the
// value, so fields unknown to the Go type are seen by the schema. The codec
// package sets it when decoding JSON.
func WithRawJSON(ctx context.Context, raw []byte) context.Context {
	return context.WithValue(ctx, ctxKeyRawJSON, raw)
}

// RawJSONFromContext returns the document attached with [WithRawJSON].
func RawJSONFromContext(ctx context.Context) ([]byte, bool) {
	if ctx == nil {
		return nil, false
	}
	raw, ok := ctx.Value(ctxKeyRawJSON).([]byte)

	return raw, ok && len(raw) > 0
}
