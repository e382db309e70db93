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

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// JSON Schema validation constants.
const (
	// defaultMaxCachedSchemas is the default maximum number of JSON schemas to cache.
	// Override with [WithMaxCachedSchemas].
	defaultMaxCachedSchemas = 1024

	// maxRecursionDepth limits how deep nested values are followed.
	maxRecursionDepth = 100
)

// jsonschemaSchema is a type alias for the github.com/santhosh-tekuri/jsonschema/v6 Schema type.
type jsonschemaSchema = jsonschema.Schema

// validateWithSchema validates using JSON Schema ([StrategyJSONSchema]).
// The schema can be provided via [JSONSchemaProvider] interface or [WithCustomSchema] option.
// The document is the raw JSON attached with [WithRawJSON], or val encoded as JSON.
func (v *Validator) validateWithSchema(ctx context.Context, val any, cfg *config) (Errors, error) {
	schemaID, schemaJSON := getSchemaForValue(val, cfg)
	if schemaJSON == "" {
		return nil, nil
	}

	schema, err := v.getOrCompileSchema(schemaID, schemaJSON)
	if err != nil {
		return nil, err
	}

	jsonBytes, ok := RawJSONFromContext(ctx)
	if !ok {
		jsonBytes, err = json.Marshal(val)
		if err != nil {
			return nil, fmt.Errorf("encode value for schema validation: %w", err)
		}
	}

	var data any
	if err := json.Unmarshal(jsonBytes, &data); err != nil {
		return nil, fmt.Errorf("decode document for schema validation: %w", err)
	}

	err = schema.Validate(data)
	if err == nil {
		return nil, nil
	}

	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return nil, fmt.Errorf("schema validation: %w", err)
	}

	s := &applyState{ctx: ctx, cfg: cfg}

	return schemaErrors(s, verr, data), nil
}

// getSchemaForValue retrieves JSON Schema for a value.
func getSchemaForValue(v any, cfg *config) (id, schema string) {
	if cfg.customSchema != "" {
		return cfg.customSchemaID, cfg.customSchema
	}

	if provider, ok := schemaProvider(v); ok {
		return provider.JSONSchema()
	}

	return "", ""
}

// schemaProvider finds a [JSONSchemaProvider] on v or on a pointer to a copy of v.
func schemaProvider(v any) (JSONSchemaProvider, bool) {
	if provider, ok := v.(JSONSchemaProvider); ok {
		return provider, true
	}

	rv := reflect.ValueOf(v)
	if !rv.IsValid() || rv.Kind() == reflect.Pointer {
		return nil, false
	}
	cp := reflect.New(rv.Type())
	cp.Elem().Set(rv)
	provider, ok := cp.Interface().(JSONSchemaProvider)

	return provider, ok
}

// compileSchema compiles a JSON Schema from a JSON string.
func compileSchema(id, schemaJSON string) (*jsonschemaSchema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat()  // Enable format validation
	compiler.AssertContent() // Enable content validation

	var schemaDoc any
	if err := json.Unmarshal([]byte(schemaJSON), &schemaDoc); err != nil {
		return nil, fmt.Errorf("invalid schema JSON: %w", err)
	}

	schemaURL := id
	if schemaURL == "" {
		schemaURL = "schema.json"
	}
	if err := compiler.AddResource(schemaURL, schemaDoc); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}

	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	return schema, nil
}

// schemaErrors converts the leaves of a schema error into a tree placed by
// instance location within doc. Codes are "schema." plus the failing keyword.
func schemaErrors(s *applyState, verr *jsonschema.ValidationError, doc any) Errors {
	var tree Errors
	printer := message.NewPrinter(language.English)

	var collect func(e *jsonschema.ValidationError)
	collect = func(e *jsonschema.ValidationError) {
		if len(e.Causes) > 0 {
			for _, cause := range e.Causes {
				collect(cause)
			}
			return
		}

		code := CodeSchema
		var keyword []string
		msg := e.Error()
		if e.ErrorKind != nil {
			keyword = e.ErrorKind.KeywordPath()
			if len(keyword) > 0 {
				code += "." + keyword[len(keyword)-1]
			}
			msg = e.ErrorKind.LocalizedString(printer)
		}

		viol := Violation{
			Code:    code,
			Message: msg,
			Params: map[string]any{
				"keyword":    strings.Join(keyword, "/"),
				"schema_url": e.SchemaURL,
			},
		}
		s.finish(strings.Join(e.InstanceLocation, "."), messageOverride{}, &viol)
		tree = Merge(tree, errorsAtDocument(doc, e.InstanceLocation, NewTypeErrors{viol}))
	}
	collect(verr)

	return tree
}
