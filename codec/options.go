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

	"rivaas.dev/constraint/validation"
)

// Option configures a decode call.
type Option func(*config)

type config struct {
	validator      *validation.Validator
	validationOpts []validation.Option
	ctx            context.Context
	defaults       any
	strict         bool
}

// WithValidator validates with v instead of the package default validator.
func WithValidator(v *validation.Validator) Option {
	return func(c *config) {
		c.validator = v
	}
}

// WithValidationOptions passes per-call options to the validator, such as
// [validation.WithStrategy] or [validation.WithMessages].
func WithValidationOptions(opts ...validation.Option) Option {
	return func(c *config) {
		c.validationOpts = append(c.validationOpts, opts...)
	}
}

// WithContext sets the context handed to [validation.ValidatorWithContext]
// implementations.
func WithContext(ctx context.Context) Option {
	return func(c *config) {
		c.ctx = ctx
	}
}

// WithDefaults fills zero fields of the decoded value from defaults before
// validation. defaults must have the decoded type, or be a pointer to it.
//
// Example:
//
//	cfg, err := codec.TOML[Server](body, codec.WithDefaults(Server{Port: 8080}))
func WithDefaults(defaults any) Option {
	return func(c *config) {
		c.defaults = defaults
	}
}

// WithStrict rejects input keys that the target type does not declare.
func WithStrict() Option {
	return func(c *config) {
		c.strict = true
	}
}

func applyOptions(opts []Option) *config {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}

	return cfg
}

func (c *config) context() context.Context {
	if c.ctx != nil {
		return c.ctx
	}

	return context.Background()
}
