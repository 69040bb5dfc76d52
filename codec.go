// Copyright (C) 2025, the simple-json-server authors. All rights reserved.
// See the file LICENSE for licensing terms.

package jsonserver

import (
	"encoding/json"
)

// Codec encodes client params and decodes replies. The wire format is
// always JSON text; a custom codec can only change how Go values map onto
// it.
type Codec interface {
	Encode(v interface{}) ([]byte, error)
	Decode(data []byte, v interface{}) error
}

// JSONCodec is the standard encoding/json codec.
type JSONCodec struct{}

func (JSONCodec) Encode(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func (JSONCodec) Decode(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

// defaultCodec is used when no codec is specified
var defaultCodec Codec = JSONCodec{}
