// Copyright (C) 2025, the simple-json-server authors. All rights reserved.
// See the file LICENSE for licensing terms.

package jsonserver

import (
	"io"
	"net/http"
	"strings"
	"unicode/utf8"
)

// newHTTPHandler maps POST /<method> onto dispatch. Dispatch-level failures
// (unknown method, parse error, bad params) still travel as 200 responses:
// they are success at the transport level, errors at the application level.
// Only an unreadable or non-UTF-8 body is a transport error (400), and it
// never reaches dispatch.
func newHTTPHandler(reg *registry, o *serverOptions) http.Handler {
	log := o.log()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			body, err := io.ReadAll(r.Body)
			if err != nil {
				log.Debug().Err(err).Str("path", r.URL.Path).Msg("failed to read request body")
				writePlain(w, http.StatusBadRequest, "Failed to read request body")
				return
			}
			if !utf8.Valid(body) {
				writePlain(w, http.StatusBadRequest, "Invalid UTF-8 in request body")
				return
			}

			method := strings.TrimLeft(r.URL.Path, "/")
			resp := reg.dispatch(r.Context(), method, string(body))

			h := w.Header()
			h.Set("Content-Type", "application/json")
			setCORS(h)
			w.WriteHeader(http.StatusOK)
			_, _ = io.WriteString(w, resp)

		case http.MethodOptions:
			// CORS preflight, any path.
			setCORS(w.Header())
			w.Header().Set("Content-Length", "0")
			w.WriteHeader(http.StatusOK)

		default:
			w.Header().Set("Content-Type", "text/plain")
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.WriteHeader(http.StatusMethodNotAllowed)
			_, _ = io.WriteString(w, "Method Not Allowed")
		}
	})
}

func setCORS(h http.Header) {
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type")
}

func writePlain(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, msg)
}
