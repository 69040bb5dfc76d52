// Copyright (C) 2025, the simple-json-server authors. All rights reserved.
// See the file LICENSE for licensing terms.

package jsonserver

import (
	"crypto/tls"
	"os"

	"github.com/rs/zerolog"
)

// ServerOption configures servers created with CreateOptions.
type ServerOption func(*serverOptions)

type serverOptions struct {
	transport string
	tls       *TLSConfig
	logger    *zerolog.Logger
	lenient   bool
}

func newServerOptions(opts []ServerOption) *serverOptions {
	o := &serverOptions{transport: DefaultTransport}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *serverOptions) log() zerolog.Logger {
	if o.logger != nil {
		return *o.logger
	}
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}

// WithTransport selects the server transport (TransportHTTP or
// TransportWebSocket).
func WithTransport(name string) ServerOption {
	return func(o *serverOptions) { o.transport = name }
}

// WithTLS wraps the listener in TLS using the given identity. Loading
// failures surface from Create, before any connection is accepted.
func WithTLS(cfg TLSConfig) ServerOption {
	return func(o *serverOptions) { o.tls = &cfg }
}

// WithLogger sets the logger used by the server lifecycle and adapters.
func WithLogger(l zerolog.Logger) ServerOption {
	return func(o *serverOptions) { o.logger = &l }
}

// WithLenientEnvelope relaxes WebSocket envelope validation: a frame
// missing the params field is dispatched with the empty object {}, and a
// missing or non-string method field replies with the ordinary
// "Unknown method" dispatch outcome instead of an envelope error. Such a
// frame never reaches any registered method, whatever its name.
func WithLenientEnvelope() ServerOption {
	return func(o *serverOptions) { o.lenient = true }
}

// DialOption configures clients created with Dial.
type DialOption func(*dialOptions)

type dialOptions struct {
	codec Codec
	tls   *tls.Config
}

func newDialOptions(opts []DialOption) *dialOptions {
	o := &dialOptions{codec: defaultCodec}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithCodec sets the codec used to encode params and decode replies.
func WithCodec(c Codec) DialOption {
	return func(o *dialOptions) { o.codec = c }
}

// WithDialTLS sets the client-side TLS configuration for https and wss
// endpoints.
func WithDialTLS(cfg *tls.Config) DialOption {
	return func(o *dialOptions) { o.tls = cfg }
}
