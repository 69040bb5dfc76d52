// Copyright (C) 2025, the simple-json-server authors. All rights reserved.
// See the file LICENSE for licensing terms.

package jsonserver

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gorilla/websocket"
)

// Dial connects to a server. The URL scheme selects the transport: http
// and https use one POST per call, ws and wss hold a persistent connection
// and frame each call as {method, params}.
func Dial(ctx context.Context, rawURL string, opts ...DialOption) (Client, error) {
	o := newDialOptions(opts)

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse URL: %w", err)
	}

	switch u.Scheme {
	case "http", "https":
		return transports[TransportHTTP].dial(ctx, u, o)
	case "ws", "wss":
		return transports[TransportWebSocket].dial(ctx, u, o)
	default:
		return nil, fmt.Errorf("unsupported URL scheme: %q", u.Scheme)
	}
}

func dialHTTP(ctx context.Context, u *url.URL, o *dialOptions) (Client, error) {
	_ = ctx // connections are established lazily, per call
	return &httpClient{
		base: u,
		hc: &http.Client{
			Transport: &http.Transport{TLSClientConfig: o.tls},
		},
		codec: o.codec,
	}, nil
}

func dialWebSocket(ctx context.Context, u *url.URL, o *dialOptions) (Client, error) {
	dialer := websocket.Dialer{TLSClientConfig: o.tls}
	conn, _, err := dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("websocket dial: %w", err)
	}
	return &wsClient{conn: conn, codec: o.codec}, nil
}
