// Copyright (C) 2025, the simple-json-server authors. All rights reserved.
// See the file LICENSE for licensing terms.

package jsonserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const envelopeFormatMsg = `Invalid message format. Expected {"method": ..., "params": {...}}`

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// newWebSocketHandler upgrades each connection once, then serves
// {method, params} text frames against dispatch until the peer closes.
func newWebSocketHandler(reg *registry, o *serverOptions) http.Handler {
	log := o.log()
	lenient := o.lenient
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade already wrote the HTTP error response.
			log.Debug().Err(err).Msg("websocket upgrade failed")
			return
		}
		defer conn.Close()
		serveFrames(r.Context(), conn, reg, lenient, log)
	})
}

// serveFrames is the per-connection loop. Frames are processed and replied
// to strictly in arrival order; binary frames carry nothing at this layer
// and control frames are handled by the websocket library.
func serveFrames(ctx context.Context, conn *websocket.Conn, reg *registry, lenient bool, log zerolog.Logger) {
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived) {
				log.Debug().Err(err).Msg("websocket read ended")
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		reply := handleFrame(ctx, reg, data, lenient)
		if err := conn.WriteMessage(websocket.TextMessage, []byte(reply)); err != nil {
			log.Error().Err(err).Msg("failed to send websocket response")
			return
		}
	}
}

// handleFrame validates the {method, params} envelope and forwards to
// dispatch. Envelope-level failures reply with a JSON object carrying an
// "error" field; everything past the envelope is the dispatch contract.
func handleFrame(ctx context.Context, reg *registry, data []byte, lenient bool) string {
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &fields); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			// Valid JSON, but not an object.
			return envelopeError(envelopeFormatMsg)
		}
		return envelopeError(fmt.Sprintf("JSON parse error: %v", err))
	}

	var method string
	if raw, ok := fields["method"]; !ok || json.Unmarshal(raw, &method) != nil {
		if !lenient {
			return envelopeError(envelopeFormatMsg)
		}
		// The reply is the ordinary "Unknown method" dispatch outcome,
		// produced without consulting the registry: a method-less frame
		// must never invoke anything, not even a method actually named
		// "unknown".
		return errorString("Unknown method: unknown")
	}

	params, ok := fields["params"]
	if !ok {
		if !lenient {
			return envelopeError(envelopeFormatMsg)
		}
		params = json.RawMessage("{}")
	}

	return reg.dispatch(ctx, method, string(params))
}

func envelopeError(msg string) string {
	encoded, err := json.Marshal(msg)
	if err != nil {
		return `{"error": "internal error"}`
	}
	return fmt.Sprintf(`{"error": %s}`, encoded)
}
