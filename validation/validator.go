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
	"fmt"
	"maps"
	"reflect"
	"regexp"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
)

// Validator compiles constraint declarations and validates values with them.
//
// Use [New] or [MustNew] to create a configured Validator, or use the
// package-level [Validate] for zero-configuration validation.
//
// Validator supports three validation strategies (see [Strategy]):
//   - Constraint declarations in struct tags ([StrategyTags])
//   - JSON Schema validation ([StrategyJSONSchema])
//   - Custom interface methods ([StrategyInterface])
//
// Declarations are compiled once per type and cached. Validator is safe for
// concurrent use by multiple goroutines.
//
// Example:
//
//	validator := validation.MustNew(
//	    validation.WithRule("ordered", ordered),
//	    validation.WithRedactor(sensitiveRedactor),
//	)
//
//	err := validator.Validate(ctx, &order)
type Validator struct {
	cfg *config

	// Compiled plans: reflect.Type -> *plan
	plans     sync.Map
	compileMu sync.Mutex

	// Format checker (go-playground/validator)
	formatValidator     *validator.Validate
	formatValidatorOnce sync.Once
	formatValidatorErr  error

	// Schema cache for JSON Schema validation
	schemaCache   map[string]*schemaCacheEntry
	schemaCacheMu sync.RWMutex
}

// New creates a [Validator] with the given options.
// New returns an error wrapping [ErrInvalidOption] if the configuration is
// invalid, for example a rule that is not a function returning an error.
//
// Example:
//
//	validator, err := validation.New(
//	    validation.WithCustom("even", isEven),
//	    validation.WithMaxCachedSchemas(64),
//	)
//	if err != nil {
//	    return fmt.Errorf("failed to create validator: %w", err)
//	}
func New(opts ...Option) (*Validator, error) {
	cfg := newConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	cfg.compileOptions = nil

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	v := &Validator{
		cfg:         cfg,
		schemaCache: make(map[string]*schemaCacheEntry),
	}

	if err := v.initFormatValidator(); err != nil {
		return nil, fmt.Errorf("initialize format validator: %w", err)
	}

	return v, nil
}

// MustNew creates a [Validator] with the given options.
// Panics if configuration is invalid.
//
// Use in main() or init() where panic on startup is acceptable.
func MustNew(opts ...Option) *Validator {
	v, err := New(opts...)
	if err != nil {
		panic(fmt.Sprintf("validation.MustNew: %v", err))
	}

	return v
}

// Compile compiles the declarations of val's type (and of every type it
// nests) without validating anything. It returns a [*CompileError] listing
// every invalid declaration. Use it at start-up to fail fast.
func (v *Validator) Compile(val any) error {
	t := reflect.TypeOf(val)
	if t == nil {
		return ErrCannotValidateNilValue
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return fmt.Errorf("%w: %s is not a struct", ErrInvalidType, t)
	}
	_, err := v.planFor(t)

	return err
}

// MustCompile is like [Validator.Compile] but panics on error.
func (v *Validator) MustCompile(val any) {
	if err := v.Compile(val); err != nil {
		panic(fmt.Sprintf("validation.MustCompile: %v", err))
	}
}

// formatWhitelist lists the go-playground/validator tags usable with format=.
var formatWhitelist = []string{
	"alpha", "alphanum", "ascii", "base64", "cidr", "e164", "email", "fqdn",
	"hexcolor", "hostname", "ip", "ipv4", "ipv6", "json", "lowercase", "mac",
	"numeric", "semver", "uppercase", "uri", "url", "uuid",
}

// schemaFormats maps format names to JSON Schema "format" values.
var schemaFormats = map[string]string{
	"email":    "email",
	"hostname": "hostname",
	"fqdn":     "hostname",
	"ipv4":     "ipv4",
	"ipv6":     "ipv6",
	"uri":      "uri",
	"url":      "uri",
	"uuid":     "uuid",
}

// Built-in formats (username, slug).
var (
	reUsername = regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`)
	reSlug     = regexp.MustCompile(`^[a-z0-9-]+$`)
)

// initFormatValidator creates the go-playground/validator instance that
// checks format= declarations and registers built-in and configured formats.
func (v *Validator) initFormatValidator() error {
	v.formatValidatorOnce.Do(func() {
		v.formatValidator = validator.New()

		builtins := map[string]func(string) bool{
			"username": reUsername.MatchString,
			"slug":     reSlug.MatchString,
		}
		for _, name := range slices.Sorted(maps.Keys(builtins)) {
			if err := v.registerFormat(name, builtins[name]); err != nil {
				v.formatValidatorErr = err
				return
			}
		}
		for _, name := range slices.Sorted(maps.Keys(v.cfg.formats)) {
			if err := v.registerFormat(name, v.cfg.formats[name]); err != nil {
				v.formatValidatorErr = err
				return
			}
		}
	})

	return v.formatValidatorErr
}

func (v *Validator) registerFormat(name string, valid func(string) bool) error {
	err := v.formatValidator.RegisterValidation(name, func(fl validator.FieldLevel) bool {
		return valid(fl.Field().String())
	})
	if err != nil {
		return fmt.Errorf("register format %q: %w", name, err)
	}

	return nil
}

// formatFunc returns the check of a known format.
func (v *Validator) formatFunc(name string) (func(string) bool, bool) {
	if !slices.Contains(v.formatNames(), name) {
		return nil, false
	}

	return func(s string) bool {
		return v.formatValidator.Var(s, name) == nil
	}, true
}

// formatNames lists the accepted format names, sorted.
func (v *Validator) formatNames() []string {
	names := slices.Clone(formatWhitelist)
	names = append(names, "slug", "username")
	names = slices.AppendSeq(names, maps.Keys(v.cfg.formats))
	slices.Sort(names)

	return slices.Compact(names)
}

// getOrCompileSchema gets a JSON Schema from cache or compiles a new one for [StrategyJSONSchema].
func (v *Validator) getOrCompileSchema(id, schemaJSON string) (*jsonschemaSchema, error) {
	now := time.Now()

	if id != "" {
		v.schemaCacheMu.RLock()
		if entry, ok := v.schemaCache[id]; ok {
			schema := entry.schema
			v.schemaCacheMu.RUnlock()
			entry.lastAccess.Store(now.UnixNano())

			return schema, nil
		}
		v.schemaCacheMu.RUnlock()
	}

	schema, err := compileSchema(id, schemaJSON)
	if err != nil {
		return nil, err
	}

	if id == "" {
		return schema, nil
	}

	v.schemaCacheMu.Lock()
	defer v.schemaCacheMu.Unlock()

	maxCache := v.cfg.maxCachedSchemas
	if maxCache == 0 {
		maxCache = defaultMaxCachedSchemas
	}
	if len(v.schemaCache) >= maxCache {
		v.evictOldestSchema()
	}

	entry := &schemaCacheEntry{schema: schema}
	entry.lastAccess.Store(now.UnixNano())
	v.schemaCache[id] = entry

	return schema, nil
}

// evictOldestSchema drops the least recently used schema. The caller holds schemaCacheMu.
func (v *Validator) evictOldestSchema() {
	var oldestID string
	var oldestNano int64
	found := false

	for cacheID, entry := range v.schemaCache {
		entryNano := entry.lastAccess.Load()
		if !found || entryNano < oldestNano {
			oldestID = cacheID
			oldestNano = entryNano
			found = true
		}
	}

	if found {
		delete(v.schemaCache, oldestID)
	}
}

// schemaCacheEntry holds a cached JSON Schema and its last access time for LRU eviction.
type schemaCacheEntry struct {
	schema     *jsonschemaSchema
	lastAccess atomic.Int64 // Unix nanoseconds for thread-safe access
}
