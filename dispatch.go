// Copyright (C) 2025, the simple-json-server authors. All rights reserved.
// See the file LICENSE for licensing terms.

package jsonserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

const (
	stageDeserialize = "deserialize"
	stageSerialize   = "serialize"
)

// dispatchError distinguishes the two failure points inside a method call
// so dispatch can report them with the right diagnostic.
type dispatchError struct {
	stage string
	cause error
}

func (e *dispatchError) Error() string {
	return fmt.Sprintf("%s: %v", e.stage, e.cause)
}

func (e *dispatchError) Unwrap() error { return e.cause }

// dispatch implements the transport-neutral contract: it always returns
// valid JSON text. Handled failures (malformed payload, unknown method,
// parameter shape mismatch, unencodable result) come back as JSON-encoded
// diagnostic strings; nothing is thrown past this point.
func (r *registry) dispatch(ctx context.Context, method, msg string) string {
	var params json.RawMessage
	if err := json.Unmarshal([]byte(msg), &params); err != nil {
		return errorString(fmt.Sprintf("Failed to parse JSON: %v", err))
	}

	m, ok := r.methods[method]
	if !ok {
		return errorString(fmt.Sprintf("Unknown method: %s", method))
	}

	out, err := m.call(ctx, params)
	if err != nil {
		cause := err
		var de *dispatchError
		if errors.As(err, &de) {
			cause = de.cause
			if de.stage == stageSerialize {
				return errorString(fmt.Sprintf("Failed to serialize result for %s: %v", method, cause))
			}
		}
		return errorString(fmt.Sprintf("Failed to deserialize parameters for %s: %v", method, cause))
	}
	return string(out)
}

// errorString JSON-encodes a diagnostic message so error replies are valid
// JSON text like any other dispatch outcome.
func errorString(msg string) string {
	out, err := json.Marshal(msg)
	if err != nil {
		return `"dispatch error"`
	}
	return string(out)
}
