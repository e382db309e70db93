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
	"fmt"
	"log/slog"
	"maps"
	"reflect"
	"regexp"
	"slices"
	"strings"
)

// Strategy defines the validation approach to use.
// Use [WithStrategy] to set a strategy, or leave as [StrategyAuto] for automatic selection.
type Strategy int

const (
	// StrategyAuto automatically selects the best strategy based on the type.
	// Priority: Interface methods > Constraint tags > JSON Schema
	StrategyAuto Strategy = iota

	// StrategyTags applies the compiled constraint declarations of the struct tags.
	StrategyTags

	// StrategyJSONSchema uses JSON Schema validation.
	StrategyJSONSchema

	// StrategyInterface calls Validate() or ValidateContext() methods.
	StrategyInterface
)

// String returns the strategy name.
func (s Strategy) String() string {
	switch s {
	case StrategyAuto:
		return "auto"
	case StrategyTags:
		return "tags"
	case StrategyJSONSchema:
		return "json_schema"
	case StrategyInterface:
		return "interface"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// Redactor reports whether the value at a dot path must be hidden in
// violation parameters and messages.
// Use [WithRedactor] to configure a redactor for a [Validator].
//
// Example:
//
//	redactor := func(path string) bool {
//	    return strings.Contains(path, "password") || strings.Contains(path, "token")
//	}
type Redactor func(path string) bool

// defaultTagName is the struct tag holding constraint declarations.
const defaultTagName = "validate"

var (
	errorType   = reflect.TypeFor[error]()
	identRegexp = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// config holds internal validation configuration used by [Validator].
type config struct {
	strategy         Strategy
	runAll           bool
	ctx              context.Context // Optional context override
	customSchema     string
	customSchemaID   string
	customValidator  func(any) error
	redactor         Redactor
	messages         map[string]string // code -> static message
	maxCachedSchemas int               // Max schemas to cache (0 = default)
	logger           *slog.Logger

	// Compile options: they shape compiled plans and are only accepted by New.
	tagName      string
	rules        map[string]reflect.Value
	customs      map[string]reflect.Value
	formats      map[string]func(string) bool
	messageFuncs map[string]MessageFunc

	compileOptions []string // names of compile options applied
	problems       []string // invalid option arguments
}

// validate checks the configuration for errors.
func (c *config) validate() error {
	var problems []string
	problems = append(problems, c.problems...)
	if c.maxCachedSchemas < 0 {
		problems = append(problems, "maxCachedSchemas must be non-negative")
	}
	if !identRegexp.MatchString(c.tagName) {
		problems = append(problems, fmt.Sprintf("tag name %q is not a valid identifier", c.tagName))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidOption, strings.Join(problems, "; "))
	}

	return nil
}

// clone creates a copy of the config for per-call option merging.
func (c *config) clone() *config {
	clone := *c
	clone.messages = maps.Clone(c.messages)
	clone.rules = maps.Clone(c.rules)
	clone.customs = maps.Clone(c.customs)
	clone.formats = maps.Clone(c.formats)
	clone.messageFuncs = maps.Clone(c.messageFuncs)
	clone.compileOptions = nil
	clone.problems = nil

	return &clone
}

func (c *config) markCompileOption(name string) {
	c.compileOptions = append(c.compileOptions, name)
}

func (c *config) problemf(format string, args ...any) {
	c.problems = append(c.problems, fmt.Sprintf(format, args...))
}

// Option is a functional option for configuring validation.
// Options can be passed to [New], [MustNew], [Validate], or [Validator.Validate].
// Options that change how declarations compile ([WithRule], [WithCustom],
// [WithFormat], [WithMessageFunc], [WithTagName]) are only accepted by [New].
type Option func(*config)

// WithStrategy sets the validation strategy.
//
// Example:
//
//	validator.Validate(ctx, &req, WithStrategy(StrategyTags))
func WithStrategy(strategy Strategy) Option {
	return func(c *config) {
		c.strategy = strategy
	}
}

// WithRunAll runs all applicable validation strategies and merges their
// error trees with [Merge].
//
// Example:
//
//	validator.Validate(ctx, &req, WithRunAll(true))
func WithRunAll(runAll bool) Option {
	return func(c *config) {
		c.runAll = runAll
	}
}

// WithContext overrides the context used for validation.
// The context reaches [ValidatorWithContext] implementations, including those
// of nested values.
func WithContext(ctx context.Context) Option {
	return func(c *config) {
		c.ctx = ctx
	}
}

// WithCustomSchema sets a custom JSON Schema for validation.
// This overrides any schema provided by the [JSONSchemaProvider] interface.
//
// Example:
//
//	schema := `{"type": "object", "properties": {"email": {"type": "string", "format": "email"}}}`
//	validator.Validate(ctx, &req, WithCustomSchema("user-schema", schema))
func WithCustomSchema(id, schema string) Option {
	return func(c *config) {
		c.customSchemaID = id
		c.customSchema = schema
	}
}

// WithCustomValidator sets a function that runs before any strategy.
// Its error is converted like the error of a Validate method.
func WithCustomValidator(fn func(any) error) Option {
	return func(c *config) {
		c.customValidator = fn
	}
}

// WithRedactor sets a [Redactor] to hide sensitive values.
//
// Example:
//
//	validator.Validate(ctx, &req, WithRedactor(func(path string) bool {
//	    return strings.HasSuffix(path, "password")
//	}))
func WithRedactor(redactor Redactor) Option {
	return func(c *config) {
		c.redactor = redactor
	}
}

// WithMaxCachedSchemas sets the maximum number of JSON schemas to cache.
// Set to 0 to use the default (1024).
func WithMaxCachedSchemas(maxCachedSchemas int) Option {
	return func(c *config) {
		c.maxCachedSchemas = maxCachedSchemas
	}
}

// WithMessages sets static messages by violation code. They replace the
// built-in messages, and the text of errors returned by custom functions,
// but not the message overrides of declarations.
//
// Example:
//
//	validator := validation.MustNew(
//	    validation.WithMessages(map[string]string{
//	        validation.CodeMaxLength: "is too long",
//	    }),
//	)
func WithMessages(messages map[string]string) Option {
	return func(c *config) {
		if c.messages == nil {
			c.messages = make(map[string]string, len(messages))
		}
		maps.Copy(c.messages, messages)
	}
}

// WithLogger sets the logger used to report constraint compilation.
// By default nothing is logged.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger == nil {
			logger = slog.New(slog.DiscardHandler)
		}
		c.logger = logger
	}
}

// WithTagName sets the struct tag holding declarations. The default is "validate".
func WithTagName(name string) Option {
	return func(c *config) {
		c.markCompileOption("WithTagName")
		c.tagName = name
	}
}

// WithMessageFunc registers a message function that declarations reference
// with message_fn(name).
//
// Example:
//
//	validator := validation.MustNew(
//	    validation.WithMessageFunc("too_long", func(v *validation.Violation) string {
//	        return fmt.Sprintf("at most %v characters", v.Params["max_length"])
//	    }),
//	)
//
//	type Post struct {
//	    Title string `validate:"max_length=80, message_fn(too_long)"`
//	}
func WithMessageFunc(name string, fn MessageFunc) Option {
	return func(c *config) {
		c.markCompileOption("WithMessageFunc")
		if !identRegexp.MatchString(name) || fn == nil {
			c.problemf("message function %q needs an identifier name and a non-nil function", name)
			return
		}
		if c.messageFuncs == nil {
			c.messageFuncs = make(map[string]MessageFunc)
		}
		c.messageFuncs[name] = fn
	}
}

// WithRule registers a cross-field rule function for rule(name(...))
// declarations. fn must be a function returning exactly one error and taking
// one parameter per listed field.
//
// Example:
//
//	validator := validation.MustNew(
//	    validation.WithRule("ordered", func(lo, hi int) error {
//	        if lo > hi {
//	            return errors.New("low must not exceed high")
//	        }
//	        return nil
//	    }),
//	)
//
//	type Window struct {
//	    Low  int
//	    High int
//	    _    struct{} `validate:"rule(ordered(0, 1))"`
//	}
func WithRule(name string, fn any) Option {
	return func(c *config) {
		c.markCompileOption("WithRule")
		rv, problem := checkFunc(name, fn, -1)
		if problem != "" {
			c.problemf("rule %s", problem)
			return
		}
		if c.rules == nil {
			c.rules = make(map[string]reflect.Value)
		}
		c.rules[name] = rv
	}
}

// WithCustom registers a single-value check for custom(name) declarations.
// fn must have the form func(T) error. When the field's type is not
// assignable to T, sequence and optional layers are peeled until it is.
//
// Example:
//
//	validation.WithCustom("even", func(n int) error {
//	    if n%2 != 0 {
//	        return errors.New("must be even")
//	    }
//	    return nil
//	})
func WithCustom(name string, fn any) Option {
	return func(c *config) {
		c.markCompileOption("WithCustom")
		rv, problem := checkFunc(name, fn, 1)
		if problem != "" {
			c.problemf("custom function %s", problem)
			return
		}
		if c.customs == nil {
			c.customs = make(map[string]reflect.Value)
		}
		c.customs[name] = rv
	}
}

// WithFormat registers a string format for format='name' declarations.
func WithFormat(name string, valid func(string) bool) Option {
	return func(c *config) {
		c.markCompileOption("WithFormat")
		if !identRegexp.MatchString(name) || valid == nil {
			c.problemf("format %q needs an identifier name and a non-nil function", name)
			return
		}
		if c.formats == nil {
			c.formats = make(map[string]func(string) bool)
		}
		c.formats[name] = valid
	}
}

// checkFunc validates a registered function. in is the required number of
// parameters, or -1 for any number of at least one.
func checkFunc(name string, fn any, in int) (reflect.Value, string) {
	if !identRegexp.MatchString(name) {
		return reflect.Value{}, fmt.Sprintf("%q: name must be an identifier", name)
	}
	rv := reflect.ValueOf(fn)
	if rv.Kind() != reflect.Func || rv.IsNil() {
		return reflect.Value{}, fmt.Sprintf("%q: expected a function, got %T", name, fn)
	}
	ft := rv.Type()
	switch {
	case ft.IsVariadic():
		return reflect.Value{}, fmt.Sprintf("%q: variadic functions are not supported", name)
	case in >= 0 && ft.NumIn() != in:
		return reflect.Value{}, fmt.Sprintf("%q: expected %d parameter(s), got %d", name, in, ft.NumIn())
	case ft.NumIn() == 0:
		return reflect.Value{}, fmt.Sprintf("%q: expected at least one parameter", name)
	case ft.NumOut() != 1 || ft.Out(0) != errorType:
		return reflect.Value{}, fmt.Sprintf("%q: must return exactly one error", name)
	}

	return rv, ""
}

// newConfig creates a new validation config with defaults.
func newConfig() *config {
	return &config{
		strategy:         StrategyAuto,
		runAll:           false,
		maxCachedSchemas: 0, // 0 means use default (1024)
		logger:           slog.New(slog.DiscardHandler),
		tagName:          defaultTagName,
	}
}

// applyOptions applies per-call options to a copy of the base config.
// Compile options are rejected because plans are shared by all calls.
func applyOptions(base *config, opts ...Option) (*config, error) {
	if len(opts) == 0 {
		return base, nil
	}
	cfg := base.clone()
	for _, opt := range opts {
		opt(cfg)
	}
	if len(cfg.compileOptions) > 0 {
		names := slices.Compact(slices.Sorted(slices.Values(cfg.compileOptions)))
		return nil, fmt.Errorf("%w: %s only take effect in New", ErrInvalidOption, strings.Join(names, ", "))
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
