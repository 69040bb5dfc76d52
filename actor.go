// Copyright (C) 2025, the simple-json-server authors. All rights reserved.
// See the file LICENSE for licensing terms.

package jsonserver

import (
	"context"
	"errors"
	"sync/atomic"
)

// ErrActorServed is returned when an actor that already backs a running
// server is handed to a second Create call.
var ErrActorServed = errors.New("actor is already attached to a server")

// Actor owns the method table for one service. Build it with New, exercise
// it directly with Dispatch, or hand it to one of the Create methods to
// serve it over the network. Creating a server consumes the actor: the
// table moves into the server and the original value can no longer be
// dispatched directly.
type Actor struct {
	reg atomic.Pointer[registry]
}

// New builds an actor from a set of exposed methods. It fails if two
// methods share a name; nothing is silently overwritten.
func New(methods ...MethodSpec) (*Actor, error) {
	reg, err := newRegistry(methods)
	if err != nil {
		return nil, err
	}
	a := &Actor{}
	a.reg.Store(reg)
	return a, nil
}

// Dispatch resolves method against the registry, decodes msg as that
// method's params object, invokes it, and returns the JSON-encoded result.
// The return value is always valid JSON text; handled failures are
// JSON-encoded diagnostic strings (see the package documentation for the
// dispatch contract).
func (a *Actor) Dispatch(ctx context.Context, method, msg string) string {
	reg := a.reg.Load()
	if reg == nil {
		return errorString("Actor is attached to a server and can no longer be dispatched directly")
	}
	return reg.dispatch(ctx, method, msg)
}

// claim moves the registry out of the actor and into the caller. After a
// successful claim the actor is drained: Dispatch reports it unusable and
// further claims fail.
func (a *Actor) claim() (*registry, error) {
	reg := a.reg.Swap(nil)
	if reg == nil {
		return nil, ErrActorServed
	}
	return reg, nil
}
