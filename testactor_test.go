// Copyright (C) 2025, the simple-json-server authors. All rights reserved.
// See the file LICENSE for licensing terms.

package jsonserver

import (
	"context"
	"fmt"
	"sync"
	"testing"
)

// calcState is the shared fixture: a small calculator with a mutex-guarded
// counter, so tests can exercise both read-only and mutating methods.
type calcState struct {
	name string

	mu      sync.Mutex
	counter int
}

// unregistered exists to show that an exported Go method is not reachable
// through dispatch unless it was explicitly registered.
func (s *calcState) Unregistered() string {
	return "should never be reachable via dispatch"
}

type addParams struct {
	A int `json:"a"`
	B int `json:"b"`
}

type greetParams struct {
	Name string `json:"name"`
}

type echoParams struct {
	Message string `json:"message"`
}

type divideParams struct {
	A float64 `json:"a"`
	B float64 `json:"b"`
}

// divideResult is a success/failure union carried in the result shape;
// there is no separate error channel in the dispatch contract.
type divideResult struct {
	Ok  *float64 `json:"Ok,omitempty"`
	Err *string  `json:"Err,omitempty"`
}

func testMethods(s *calcState) []MethodSpec {
	return []MethodSpec{
		Method("add", func(_ context.Context, p addParams) int {
			return p.A + p.B
		}).WithDoc("Add two numbers."),
		Method("greet", func(_ context.Context, p greetParams) string {
			return fmt.Sprintf("Hello, %s!", p.Name)
		}).WithDoc("Greet someone."),
		Method("echo", func(_ context.Context, p echoParams) string {
			return p.Message
		}),
		Method("divide", func(_ context.Context, p divideParams) divideResult {
			if p.B == 0 {
				msg := "Division by zero"
				return divideResult{Err: &msg}
			}
			q := p.A / p.B
			return divideResult{Ok: &q}
		}).WithDoc("Divide two numbers."),
		Method0("ping", func(_ context.Context) string {
			return "pong"
		}),
		Method0("no_params", func(_ context.Context) string {
			return "No parameters needed"
		}),
		Method0("info", func(_ context.Context) string {
			return fmt.Sprintf("Test server: %s", s.name)
		}),
		Method0("get_counter", func(_ context.Context) int {
			s.mu.Lock()
			defer s.mu.Unlock()
			return s.counter
		}),
		Method0("increment", func(_ context.Context) int {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.counter++
			return s.counter
		}),
	}
}

func newTestActor(t *testing.T, name string) *Actor {
	t.Helper()
	actor, err := New(testMethods(&calcState{name: name})...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return actor
}
