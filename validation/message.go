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
	"rivaas.dev/constraint/validation/internal/decl"
)

// Message override names accepted after a constraint.
const (
	overrideMessage   = "message"
	overrideMessageFn = "message_fn"
)

// MessageFunc formats the message of a violation from its code and parameters.
// Register one with [WithMessageFunc] and reference it from a declaration with
// message_fn(name).
type MessageFunc func(v *Violation) string

// messageOverride is the message declared next to a constraint.
type messageOverride struct {
	text string
	fn   MessageFunc
	set  bool
}

// resolveMessage picks the message of v: the declaration's override, then the
// configured message for its code, then the message set by user code, then
// the built-in default.
func (c *config) resolveMessage(o messageOverride, v *Violation) string {
	switch {
	case o.fn != nil:
		return o.fn(v)
	case o.set:
		return o.text
	}
	if msg, ok := c.messages[v.Code]; ok {
		return msg
	}
	if v.Message != "" {
		return v.Message
	}

	return defaultMessage(v)
}

// parseOverride compiles the items following a constraint.
func (d *declContext) parseOverride(items []decl.Item) (messageOverride, bool) {
	var o messageOverride
	ok := true
	for _, it := range items {
		m := it.Meta
		if m == nil {
			d.errorf(it.Pos(), "expected a message override (`message='...'` or `message_fn(name)`), found literal %s", it.Lit)
			ok = false
			continue
		}
		if o.set {
			d.errorf(m.Pos, "only one message override is allowed per declaration")
			ok = false
			continue
		}

		switch m.Name {
		case overrideMessage:
			if m.Kind != decl.KindNameValue {
				d.errorf(m.Pos, "`message` must be written as %s, for example `message='...'`", decl.KindNameValue)
				ok = false
				continue
			}
			if m.Value.Kind != decl.LitString {
				d.errorf(m.Value.Pos, "`message` expects a string literal, found %s %s", m.Value.Kind, m.Value)
				ok = false
				continue
			}
			o = messageOverride{text: m.Value.Value, set: true}

		case overrideMessageFn:
			fn, fnOK := d.messageFn(m)
			if !fnOK {
				ok = false
				continue
			}
			o = messageOverride{fn: fn, set: true}

		default:
			d.errorf(m.Pos, "unknown message override `%s`; expected one of: %s, %s", m.Name, overrideMessage, overrideMessageFn)
			ok = false
		}
	}

	return o, ok
}

// messageFn resolves message_fn(name) against the registered message functions.
func (d *declContext) messageFn(m *decl.Meta) (MessageFunc, bool) {
	if m.Kind != decl.KindList {
		d.errorf(m.Pos, "`message_fn` must be written as %s, for example `message_fn(name)`", decl.KindList)
		return nil, false
	}
	switch len(m.Args) {
	case 0:
		d.errorf(m.Pos, "`message_fn` needs a function name")
		return nil, false
	case 1:
	default:
		d.errorf(m.Args[1].Pos(), "`message_fn` takes exactly one function name, found %d", len(m.Args))
		return nil, false
	}

	arg := m.Args[0]
	if arg.Meta == nil || arg.Meta.Kind != decl.KindPath {
		d.errorf(arg.Pos(), "`message_fn` expects a function name, found %s", arg)
		return nil, false
	}

	fn, ok := d.sc.s.cfg.messageFuncs[arg.Meta.Name]
	if !ok {
		d.errorf(arg.Pos(), "unknown message function `%s`; register it with WithMessageFunc", arg.Meta.Name)
		return nil, false
	}

	return fn, true
}
