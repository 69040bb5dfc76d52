// Copyright (C) 2025, the simple-json-server authors. All rights reserved.
// See the file LICENSE for licensing terms.

package jsonserver

import (
	"crypto/tls"
	"errors"
	"fmt"
	stdlog "log"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Server is a running listener serving one consumed actor over a single
// (transport, TLS) combination. Serving multiple combinations takes
// multiple actors on multiple ports.
type Server struct {
	ln     net.Listener
	srv    *http.Server
	log    zerolog.Logger
	reg    *registry
	done   chan struct{}
	closed atomic.Bool
}

// Create starts an HTTP server without TLS. The simplest case, with the
// least boilerplate.
//
// This method consumes the actor, preventing further direct dispatch after
// starting the server.
func (a *Actor) Create(port int) (*Server, error) {
	return a.CreateOptions(port)
}

// CreateWS starts a WebSocket server without TLS.
//
// This method consumes the actor.
func (a *Actor) CreateWS(port int) (*Server, error) {
	return a.CreateOptions(port, WithTransport(TransportWebSocket))
}

// CreateTLS starts an HTTPS server with the given TLS identity.
//
// This method consumes the actor.
func (a *Actor) CreateTLS(port int, cfg TLSConfig) (*Server, error) {
	return a.CreateOptions(port, WithTLS(cfg))
}

// CreateWSS starts a WSS (WebSocket Secure) server with the given TLS
// identity.
//
// This method consumes the actor.
func (a *Actor) CreateWSS(port int, cfg TLSConfig) (*Server, error) {
	return a.CreateOptions(port, WithTransport(TransportWebSocket), WithTLS(cfg))
}

// CreateOptions starts a server for the actor on the given port with the
// selected transport and options. The listener is bound (and any TLS
// identity loaded) before this returns, so startup misconfiguration —
// unavailable port, bad certificate material — surfaces here as an error
// and never as a half-started server. On success the server accepts in the
// background; each connection is handled on its own goroutine and one
// connection's failure never affects another's.
//
// This method consumes the actor: the method table moves into the server,
// later direct Dispatch calls on the actor report it unusable, and a
// second Create call fails with ErrActorServed.
func (a *Actor) CreateOptions(port int, opts ...ServerOption) (*Server, error) {
	o := newServerOptions(opts)
	tr, ok := transports[o.transport]
	if !ok {
		return nil, fmt.Errorf("unknown transport: %s", o.transport)
	}

	var tlsConf *tls.Config
	if o.tls != nil {
		var err error
		tlsConf, err = o.tls.Load()
		if err != nil {
			return nil, fmt.Errorf("load TLS configuration: %w", err)
		}
	}

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, fmt.Errorf("bind port %d: %w", port, err)
	}

	reg, err := a.claim()
	if err != nil {
		ln.Close()
		return nil, err
	}

	if tlsConf != nil {
		// Handshake failures past this point are per-connection: the
		// listener and sibling connections are unaffected.
		ln = tls.NewListener(ln, tlsConf)
	}

	log := o.log()
	s := &Server{
		ln: ln,
		srv: &http.Server{
			Handler:           tr.handler(reg, o),
			ReadHeaderTimeout: 10 * time.Second,
			ErrorLog:          stdlog.New(log, "", 0),
		},
		log:  log,
		reg:  reg,
		done: make(chan struct{}),
	}
	go s.serve()

	log.Info().
		Str("transport", o.transport).
		Bool("tls", tlsConf != nil).
		Str("addr", ln.Addr().String()).
		Msg("server listening")
	return s, nil
}

func (s *Server) serve() {
	defer close(s.done)
	err := s.srv.Serve(s.ln)
	if err != nil && !errors.Is(err, http.ErrServerClosed) && !s.closed.Load() {
		s.log.Error().Err(err).Msg("server stopped")
	}
}

// Addr returns the server's listen address.
func (s *Server) Addr() string {
	return s.ln.Addr().String()
}

// Close stops the server and releases the listener. It is safe to call
// more than once.
func (s *Server) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	err := s.srv.Close()
	<-s.done
	return err
}
