// Copyright (C) 2025, the simple-json-server authors. All rights reserved.
// See the file LICENSE for licensing terms.

package jsonserver

import (
	"context"
	"net/http"
	"net/url"
	"sort"
)

// Transport names
const (
	TransportHTTP      = "http"      // one POST per call, method name in the path
	TransportWebSocket = "websocket" // persistent connection, {method, params} frames
)

// DefaultTransport is used when no transport is selected.
const DefaultTransport = TransportHTTP

type handlerFunc func(reg *registry, o *serverOptions) http.Handler
type dialFunc func(ctx context.Context, u *url.URL, o *dialOptions) (Client, error)

// transports is the closed set of transports the dispatch contract is
// defined over. Both entries present identical observable JSON behavior;
// only the framing differs.
var transports = map[string]struct {
	handler handlerFunc
	dial    dialFunc
}{
	TransportHTTP:      {newHTTPHandler, dialHTTP},
	TransportWebSocket: {newWebSocketHandler, dialWebSocket},
}

// AvailableTransports returns the list of transport names.
func AvailableTransports() []string {
	result := make([]string, 0, len(transports))
	for name := range transports {
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}

// HasTransport checks if a transport name is known.
func HasTransport(name string) bool {
	_, ok := transports[name]
	return ok
}
