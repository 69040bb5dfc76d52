// Copyright (C) 2025, the simple-json-server authors. All rights reserved.
// See the file LICENSE for licensing terms.

package jsonserver

import (
	"context"
	"encoding/json"
	"reflect"
)

// MethodSpec describes one exposed operation: its name, its parameter and
// result shapes, and the typed decode/invoke/encode closure that carries a
// call from raw params JSON to an encoded result. Specs are built with
// Method or Method0 and handed to New; only operations registered this way
// are reachable through dispatch.
type MethodSpec struct {
	name   string
	doc    string
	params reflect.Type
	result reflect.Type
	call   func(ctx context.Context, params json.RawMessage) (json.RawMessage, error)
}

// Name returns the method name used on the wire.
func (m MethodSpec) Name() string { return m.name }

// WithDoc attaches a description used by the generated reference.
func (m MethodSpec) WithDoc(doc string) MethodSpec {
	m.doc = doc
	return m
}

// Method registers fn under name. P is the parameter shape: a struct whose
// fields (by json tag) are the method's named parameters, decoded from the
// incoming params object. R is the result shape, encoded to JSON as the
// response. A method that can fail should make R a union shape (for example
// a struct with Ok/Err fields); there is no separate error channel.
func Method[P, R any](name string, fn func(ctx context.Context, params P) R) MethodSpec {
	return MethodSpec{
		name:   name,
		params: reflect.TypeOf((*P)(nil)).Elem(),
		result: reflect.TypeOf((*R)(nil)).Elem(),
		call: func(ctx context.Context, params json.RawMessage) (json.RawMessage, error) {
			var p P
			if err := json.Unmarshal(params, &p); err != nil {
				return nil, &dispatchError{stage: stageDeserialize, cause: err}
			}
			out, err := json.Marshal(fn(ctx, p))
			if err != nil {
				return nil, &dispatchError{stage: stageSerialize, cause: err}
			}
			return out, nil
		},
	}
}

// Method0 registers a method that takes no parameters. The empty params
// object {} is its valid input.
func Method0[R any](name string, fn func(ctx context.Context) R) MethodSpec {
	return Method(name, func(ctx context.Context, _ struct{}) R {
		return fn(ctx)
	})
}
