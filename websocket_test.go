// Copyright (C) 2025, the simple-json-server authors. All rights reserved.
// See the file LICENSE for licensing terms.

package jsonserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func startWSServer(t *testing.T, opts ...ServerOption) *Server {
	t.Helper()
	opts = append([]ServerOption{WithTransport(TransportWebSocket)}, opts...)
	srv, err := newTestActor(t, "ws").CreateOptions(0, opts...)
	if err != nil {
		t.Fatalf("CreateOptions: %v", err)
	}
	t.Cleanup(func() { srv.Close() })
	return srv
}

func dialWS(t *testing.T, s *Server) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws://"+hostPort(t, s)+"/", nil)
	if err != nil {
		t.Fatalf("dial websocket: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func wsExchange(t *testing.T, conn *websocket.Conn, frame string) string {
	t.Helper()
	if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
		t.Fatalf("write frame %q: %v", frame, err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		msgType, reply, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read reply to %q: %v", frame, err)
		}
		if msgType == websocket.TextMessage {
			return string(reply)
		}
	}
}

// wsErrorField decodes the "error" field of an envelope-level failure reply.
func wsErrorField(t *testing.T, reply string) string {
	t.Helper()
	var envelope struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal([]byte(reply), &envelope); err != nil {
		t.Fatalf("reply %q is not an error object: %v", reply, err)
	}
	if envelope.Error == "" {
		t.Fatalf("reply %q has no error field", reply)
	}
	return envelope.Error
}

func TestWebSocketDispatch(t *testing.T) {
	srv := startWSServer(t)
	conn := dialWS(t, srv)

	if got := wsExchange(t, conn, `{"method": "add", "params": {"a": 15, "b": 25}}`); got != "40" {
		t.Fatalf("add reply = %q, want %q", got, "40")
	}
	if got := wsExchange(t, conn, `{"method": "greet", "params": {"name": "WS"}}`); got != `"Hello, WS!"` {
		t.Fatalf("greet reply = %q", got)
	}
	if got := wsExchange(t, conn, `{"method": "ping", "params": {}}`); got != `"pong"` {
		t.Fatalf("ping reply = %q", got)
	}
}

func TestWebSocketDispatchErrors(t *testing.T) {
	srv := startWSServer(t)
	conn := dialWS(t, srv)

	got := wsExchange(t, conn, `{"method": "nonexistent", "params": {}}`)
	if !strings.Contains(got, "Unknown method: nonexistent") {
		t.Fatalf("unknown method reply = %q", got)
	}

	got = wsExchange(t, conn, `{"method": "add", "params": {"a": "x", "b": 1}}`)
	if !strings.Contains(got, "Failed to deserialize parameters for add") {
		t.Fatalf("type mismatch reply = %q", got)
	}
}

func TestWebSocketMalformedFrame(t *testing.T) {
	srv := startWSServer(t)
	conn := dialWS(t, srv)

	errMsg := wsErrorField(t, wsExchange(t, conn, `{invalid json}`))
	if !strings.Contains(errMsg, "JSON parse error") {
		t.Fatalf("malformed frame error = %q", errMsg)
	}

	// The connection survives a bad frame.
	if got := wsExchange(t, conn, `{"method": "ping", "params": {}}`); got != `"pong"` {
		t.Fatalf("ping after bad frame = %q", got)
	}
}

func TestWebSocketEnvelopeValidation(t *testing.T) {
	srv := startWSServer(t)
	conn := dialWS(t, srv)

	// Valid JSON, but not an object.
	errMsg := wsErrorField(t, wsExchange(t, conn, `[1, 2, 3]`))
	if errMsg != envelopeFormatMsg {
		t.Fatalf("array frame error = %q", errMsg)
	}

	errMsg = wsErrorField(t, wsExchange(t, conn, `{"params": {}}`))
	if errMsg != envelopeFormatMsg {
		t.Fatalf("missing method error = %q", errMsg)
	}

	errMsg = wsErrorField(t, wsExchange(t, conn, `{"method": "ping"}`))
	if errMsg != envelopeFormatMsg {
		t.Fatalf("missing params error = %q", errMsg)
	}

	errMsg = wsErrorField(t, wsExchange(t, conn, `{"method": 42, "params": {}}`))
	if errMsg != envelopeFormatMsg {
		t.Fatalf("non-string method error = %q", errMsg)
	}
}

func TestWebSocketLenientEnvelope(t *testing.T) {
	srv := startWSServer(t, WithLenientEnvelope())
	conn := dialWS(t, srv)

	// Missing params defaults to the empty object.
	if got := wsExchange(t, conn, `{"method": "ping"}`); got != `"pong"` {
		t.Fatalf("lenient missing params reply = %q", got)
	}

	// Missing method falls through to the ordinary unknown-method outcome.
	got := wsExchange(t, conn, `{"params": {}}`)
	if !strings.Contains(got, "Unknown method: unknown") {
		t.Fatalf("lenient missing method reply = %q", got)
	}
}

func TestWebSocketLenientMethodlessFrameBypassesRegistry(t *testing.T) {
	// A method may legitimately be named "unknown"; a method-less frame
	// must still report the unknown-method outcome rather than invoke it.
	type passphraseParams struct {
		Passphrase string `json:"passphrase"`
	}
	actor, err := New(
		Method("unknown", func(_ context.Context, p passphraseParams) string {
			return "invoked with " + p.Passphrase
		}),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	srv, err := actor.CreateOptions(0,
		WithTransport(TransportWebSocket), WithLenientEnvelope())
	if err != nil {
		t.Fatalf("CreateOptions: %v", err)
	}
	t.Cleanup(func() { srv.Close() })
	conn := dialWS(t, srv)

	got := wsExchange(t, conn, `{"params": {"passphrase": "hunter2"}}`)
	if strings.Contains(got, "invoked") {
		t.Fatalf("method-less frame invoked a registered method: %q", got)
	}
	if !strings.Contains(got, "Unknown method: unknown") {
		t.Fatalf("method-less frame reply = %q", got)
	}
	got = wsExchange(t, conn, `{"method": true, "params": {"passphrase": "hunter2"}}`)
	if strings.Contains(got, "invoked") {
		t.Fatalf("non-string method invoked a registered method: %q", got)
	}

	// Named explicitly, the method is still reachable as usual.
	got = wsExchange(t, conn, `{"method": "unknown", "params": {"passphrase": "ok"}}`)
	if got != `"invoked with ok"` {
		t.Fatalf("explicit call reply = %q", got)
	}
}

func TestWebSocketIgnoresBinaryFrames(t *testing.T) {
	srv := startWSServer(t)
	conn := dialWS(t, srv)

	if err := conn.WriteMessage(websocket.BinaryMessage, []byte{0x01, 0x02, 0x03}); err != nil {
		t.Fatalf("write binary frame: %v", err)
	}

	// No reply for the binary frame; the connection stays responsive.
	if got := wsExchange(t, conn, `{"method": "ping", "params": {}}`); got != `"pong"` {
		t.Fatalf("ping after binary frame = %q", got)
	}
}

func TestWebSocketPipelinedFramesRepliedInOrder(t *testing.T) {
	srv := startWSServer(t)
	conn := dialWS(t, srv)

	const frames = 5
	for i := 0; i < frames; i++ {
		frame := fmt.Sprintf(`{"method": "add", "params": {"a": %d, "b": %d}}`, i, i)
		if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
			t.Fatalf("write frame %d: %v", i, err)
		}
	}

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for i := 0; i < frames; i++ {
		_, reply, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read reply %d: %v", i, err)
		}
		if want := jsonInt(2 * i); string(reply) != want {
			t.Fatalf("reply %d = %q, want %q", i, reply, want)
		}
	}
}

func TestWebSocketSharedStateAcrossConnections(t *testing.T) {
	srv := startWSServer(t)
	first := dialWS(t, srv)
	second := dialWS(t, srv)

	if got := wsExchange(t, first, `{"method": "increment", "params": {}}`); got != "1" {
		t.Fatalf("first increment = %q", got)
	}
	if got := wsExchange(t, second, `{"method": "increment", "params": {}}`); got != "2" {
		t.Fatalf("second connection increment = %q", got)
	}

	// Closing one connection leaves the other serving.
	first.Close()
	if got := wsExchange(t, second, `{"method": "get_counter", "params": {}}`); got != "2" {
		t.Fatalf("counter after peer close = %q", got)
	}
}

func TestWebSocketClientClose(t *testing.T) {
	srv := startWSServer(t)
	conn := dialWS(t, srv)

	if got := wsExchange(t, conn, `{"method": "ping", "params": {}}`); got != `"pong"` {
		t.Fatalf("ping reply = %q", got)
	}

	deadline := time.Now().Add(time.Second)
	if err := conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline); err != nil {
		t.Fatalf("write close frame: %v", err)
	}

	// The server acknowledges the close and releases the connection, so
	// the next read fails rather than blocking.
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	// Frames after the close handshake fail to send; the first write may
	// still land in the kernel buffer before the peer's reset surfaces.
	var writeErr error
	for i := 0; i < 20 && writeErr == nil; i++ {
		writeErr = conn.WriteMessage(websocket.TextMessage, []byte(`{"method": "ping", "params": {}}`))
		time.Sleep(10 * time.Millisecond)
	}
	if writeErr == nil {
		t.Fatal("writes kept succeeding after close")
	}
}
