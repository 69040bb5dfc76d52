// Copyright (C) 2025, the simple-json-server authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package jsonserver exposes a single in-process actor as a network service
// reachable over HTTP and WebSocket, with optional TLS, using a uniform JSON
// request/response contract.
//
// An actor is an ordinary Go value whose exposed operations are registered
// by name. Each registered method declares a parameter struct (decoded from
// a JSON object keyed by parameter name) and a result value (encoded back to
// JSON). Dispatch is uniform across transports: the same method name and
// params payload produce the same JSON response whether the call arrived as
// an HTTP POST or a WebSocket frame.
//
// # Usage
//
// Server:
//
//	type addParams struct {
//		A float64 `json:"a"`
//		B float64 `json:"b"`
//	}
//
//	actor, err := jsonserver.New(
//		jsonserver.Method("add", func(ctx context.Context, p addParams) float64 {
//			return p.A + p.B
//		}),
//		jsonserver.Method0("info", func(ctx context.Context) string {
//			return "Simple JSON Calculator v1.0"
//		}),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//	srv, err := actor.Create(8080) // consumes the actor
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer srv.Close()
//
// Any HTTP client can then call it:
//
//	curl -X POST http://127.0.0.1:8080/add -d '{"a": 10, "b": 5}'
//
// Client:
//
//	client, err := jsonserver.Dial(ctx, "http://127.0.0.1:8080")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
//	var sum float64
//	err = client.Call(ctx, "add", addParams{A: 10, B: 5}, &sum)
//
// WebSocket endpoints use the same Client interface; Dial selects the
// transport from the URL scheme (http, https, ws, wss). On a WebSocket
// connection each call is one text frame carrying
// {"method": "...", "params": {...}}.
//
// # Dispatch Contract
//
// Dispatch always returns valid JSON text over a successful transport
// exchange. Handled failures (malformed payload, unknown method, parameter
// shape mismatch, unencodable result) come back as JSON-encoded diagnostic
// strings, never as transport-level error statuses. Success and failure of
// the method itself are carried in the method's own result shape.
//
// Starting a server consumes the actor: the method table moves into the
// server, and the original actor value can no longer be dispatched directly.
//
// # Architecture
//
// The package separates concerns:
//
//   - actor.go: Actor construction, dispatch entry, ownership transfer
//   - method.go: typed method registration
//   - registry.go: immutable name -> method table
//   - dispatch.go: transport-neutral dispatch algorithm
//   - http.go: HTTP adapter (POST /<method>, CORS, 405)
//   - websocket.go: WebSocket adapter ({method, params} frames)
//   - tls.go: TLS identity loading
//   - server.go: listener lifecycle
//   - client.go, dial.go: HTTP and WebSocket clients
//   - docs.go: markdown reference generated from the registry
package jsonserver
