// Copyright (C) 2025, the simple-json-server authors. All rights reserved.
// See the file LICENSE for licensing terms.

package jsonserver

import (
	"errors"
	"fmt"
	"sort"
)

// ErrDuplicateMethod is returned by New when two methods share a name.
var ErrDuplicateMethod = errors.New("duplicate method name")

// registry is the immutable name -> method table built once per actor.
// It is never mutated after construction, so it is shared across all
// connections without locking.
type registry struct {
	methods map[string]MethodSpec
	names   []string // sorted, for deterministic reference output
}

func newRegistry(specs []MethodSpec) (*registry, error) {
	r := &registry{methods: make(map[string]MethodSpec, len(specs))}
	for _, m := range specs {
		if m.name == "" {
			return nil, errors.New("method name must not be empty")
		}
		if m.call == nil {
			return nil, fmt.Errorf("method %s was not built with Method or Method0", m.name)
		}
		if _, ok := r.methods[m.name]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateMethod, m.name)
		}
		r.methods[m.name] = m
		r.names = append(r.names, m.name)
	}
	sort.Strings(r.names)
	return r, nil
}
