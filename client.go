// Copyright (C) 2025, the simple-json-server authors. All rights reserved.
// See the file LICENSE for licensing terms.

package jsonserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Client is the transport-agnostic client interface. Both transports carry
// the same dispatch contract, so application-level errors (unknown method,
// bad params) come back as ordinary JSON string replies, not as Go errors;
// the error return covers transport failures only.
type Client interface {
	// Call encodes params, invokes method, and decodes the reply.
	Call(ctx context.Context, method string, params, reply interface{}) error

	// CallRaw invokes method with a pre-encoded params payload and returns
	// the raw JSON reply.
	CallRaw(ctx context.Context, method string, payload []byte) ([]byte, error)

	// Close closes the connection.
	Close() error
}

const (
	maxRetries    = 3
	retryBaseWait = 100 * time.Millisecond
)

// isRetryableError checks if an error is transient and worth retrying.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	// EOF errors are often transient connection issues
	if errors.Is(err, io.EOF) || strings.Contains(errStr, "EOF") {
		return true
	}
	if strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "broken pipe") {
		return true
	}
	return false
}

// httpClient issues one POST per call with the method name in the path.
type httpClient struct {
	base  *url.URL
	hc    *http.Client
	codec Codec
}

func (c *httpClient) Call(ctx context.Context, method string, params, reply interface{}) error {
	payload := []byte("{}")
	if params != nil {
		var err error
		payload, err = c.codec.Encode(params)
		if err != nil {
			return fmt.Errorf("encode params: %w", err)
		}
	}

	resp, err := c.CallRaw(ctx, method, payload)
	if err != nil {
		return err
	}
	if reply != nil && len(resp) > 0 {
		if err := c.codec.Decode(resp, reply); err != nil {
			return fmt.Errorf("decode reply: %w", err)
		}
	}
	return nil
}

func (c *httpClient) CallRaw(ctx context.Context, method string, payload []byte) ([]byte, error) {
	uri := c.base.JoinPath(method)

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			// Exponential backoff: 100ms, 200ms, 400ms
			waitTime := retryBaseWait * time.Duration(1<<(attempt-1))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(waitTime):
			}
		}

		// Fresh request for each attempt (the body reader is consumed).
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, uri.String(), bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.hc.Do(req)
		if err != nil {
			lastErr = err
			if isRetryableError(err) {
				continue
			}
			return nil, fmt.Errorf("issue request: %w", err)
		}

		body, readErr := io.ReadAll(resp.Body)
		// Drain before close so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, fmt.Errorf("received status code: %d", resp.StatusCode)
		}
		if readErr != nil {
			lastErr = readErr
			if isRetryableError(readErr) {
				continue
			}
			return nil, fmt.Errorf("read response: %w", readErr)
		}
		return body, nil
	}

	return nil, fmt.Errorf("request failed after %d retries: %w", maxRetries, lastErr)
}

func (c *httpClient) Close() error {
	c.hc.CloseIdleConnections()
	return nil
}

// wsClient holds one persistent connection and sends one
// {method, params} frame per call. Calls are serialized: within one
// connection replies arrive strictly in request order, so the next text
// frame is the reply to the call in flight.
type wsClient struct {
	conn  *websocket.Conn
	mu    sync.Mutex
	codec Codec
}

func (c *wsClient) Call(ctx context.Context, method string, params, reply interface{}) error {
	payload := []byte("{}")
	if params != nil {
		var err error
		payload, err = c.codec.Encode(params)
		if err != nil {
			return fmt.Errorf("encode params: %w", err)
		}
	}

	resp, err := c.CallRaw(ctx, method, payload)
	if err != nil {
		return err
	}
	if reply != nil && len(resp) > 0 {
		if err := c.codec.Decode(resp, reply); err != nil {
			return fmt.Errorf("decode reply: %w", err)
		}
	}
	return nil
}

func (c *wsClient) CallRaw(ctx context.Context, method string, payload []byte) ([]byte, error) {
	if len(payload) == 0 {
		payload = []byte("{}")
	}
	frame, err := json.Marshal(struct {
		Method string          `json:"method"`
		Params json.RawMessage `json:"params"`
	}{Method: method, Params: payload})
	if err != nil {
		return nil, fmt.Errorf("encode envelope: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	deadline, _ := ctx.Deadline()
	_ = c.conn.SetWriteDeadline(deadline)
	_ = c.conn.SetReadDeadline(deadline)

	// A context without a deadline can still be canceled; the watcher
	// poisons the in-flight read so the call returns. The websocket
	// treats that as a fatal read error, so a canceled call leaves the
	// connection unusable, like any interrupted stream.
	stop := make(chan struct{})
	watcherDone := make(chan struct{})
	go func() {
		defer close(watcherDone)
		select {
		case <-ctx.Done():
			now := time.Now()
			_ = c.conn.SetReadDeadline(now)
			_ = c.conn.SetWriteDeadline(now)
		case <-stop:
		}
	}()
	defer func() {
		close(stop)
		<-watcherDone
	}()

	if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("write frame: %w", err)
	}
	for {
		msgType, resp, err := c.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("read frame: %w", err)
		}
		if msgType == websocket.TextMessage {
			return resp, nil
		}
	}
}

func (c *wsClient) Close() error {
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	return c.conn.Close()
}
