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
	"reflect"
	"strconv"
	"strings"
)

// node is a compiled constraint. The set of implementations is closed:
// normalNode runs one check, arrayNode applies its inner node to every
// element of a sequence, optionNode applies its inner node to a present value.
type node interface {
	apply(s *applyState, path string, v reflect.Value) Errors
}

type normalNode struct {
	leaf leaf
}

type arrayNode struct {
	inner node
}

type optionNode struct {
	inner node
}

func (n normalNode) apply(s *applyState, path string, v reflect.Value) Errors {
	return n.leaf.check(s, path, v)
}

func (n arrayNode) apply(s *applyState, path string, v reflect.Value) Errors {
	var items map[int]Errors
	for i := range v.Len() {
		e := n.inner.apply(s, s.child(path, strconv.Itoa(i)), v.Index(i))
		if isEmpty(e) {
			continue
		}
		if items == nil {
			items = make(map[int]Errors)
		}
		items[i] = e
	}
	if items == nil {
		return nil
	}

	return &ArrayErrors{Items: items}
}

func (n optionNode) apply(s *applyState, path string, v reflect.Value) Errors {
	if v.IsNil() {
		return nil
	}

	return n.inner.apply(s, path, v.Elem())
}

// peelElements builds a node for the innermost non-container type of f,
// wrapping it in one arrayNode or optionNode per peeled layer. It returns nil
// when build does.
func peelElements(f fieldView, build func(fieldView) node) node {
	if inner, ok := f.arrayField(); ok {
		n := peelElements(inner, build)
		if n == nil {
			return nil
		}
		return arrayNode{inner: n}
	}
	if inner, ok := f.optionField(); ok {
		n := peelElements(inner, build)
		if n == nil {
			return nil
		}
		return optionNode{inner: n}
	}

	return build(f)
}

// peelOptions is like peelElements but only peels optional layers, for
// constraints on the sequence or map itself.
func peelOptions(f fieldView, build func(fieldView) node) node {
	if inner, ok := f.optionField(); ok {
		n := peelOptions(inner, build)
		if n == nil {
			return nil
		}
		return optionNode{inner: n}
	}

	return build(f)
}

// leaf is the check held by a normalNode.
type leaf interface {
	check(s *applyState, path string, v reflect.Value) Errors
}

// checkLeaf runs a built-in check. test returns nil when v satisfies the
// constraint, otherwise a violation carrying its code and parameters.
type checkLeaf struct {
	test     func(v reflect.Value) *Violation
	msg      messageOverride
	keywords map[string]any // JSON Schema equivalent, if any
}

func (l *checkLeaf) check(s *applyState, path string, v reflect.Value) Errors {
	viol := l.test(v)
	if viol == nil {
		return nil
	}
	if viol.Params == nil {
		viol.Params = make(map[string]any, 1)
	}
	if _, ok := viol.Params["value"]; !ok && v.CanInterface() {
		viol.Params["value"] = v.Interface()
	}
	s.finish(path, l.msg, viol)

	return NewTypeErrors{*viol}
}

// redactedValue replaces values of redacted paths.
const redactedValue = "***REDACTED***"

// applyState carries per-call settings through one validation run.
type applyState struct {
	ctx   context.Context
	cfg   *config
	depth int
}

// child returns the dot path of a child element. Paths are only tracked when
// a redactor needs them.
func (s *applyState) child(path, key string) string {
	if s.cfg.redactor == nil {
		return ""
	}
	if path == "" {
		return key
	}

	return path + "." + key
}

// finish resolves the message of v and applies redaction. Message
// functions see the redacted value; a message supplied by user code has the
// value's text replaced.
func (s *applyState) finish(path string, o messageOverride, v *Violation) {
	var original string
	redact := s.cfg.redactor != nil && s.cfg.redactor(path)
	if redact {
		if value, ok := v.Params["value"]; ok {
			original = fmt.Sprint(value)
			v.Params["value"] = redactedValue
		}
	}

	own := v.Message
	v.Message = s.cfg.resolveMessage(o, v)
	if redact && original != "" && own != "" && v.Message == own {
		v.Message = strings.ReplaceAll(v.Message, original, redactedValue)
	}
}
