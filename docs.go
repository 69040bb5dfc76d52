// Copyright (C) 2025, the simple-json-server authors. All rights reserved.
// See the file LICENSE for licensing terms.

package jsonserver

import (
	"fmt"
	"reflect"
	"strings"
)

// Reference generates markdown documentation for every registered method:
// an overview table, per-method parameter and result shapes, and the exact
// JSON payloads needed to call it over HTTP and WebSocket. It returns the
// empty string once the actor has been consumed by a server; generate docs
// before Create, or use Server.Reference after.
func (a *Actor) Reference() string {
	reg := a.reg.Load()
	if reg == nil {
		return ""
	}
	return reg.reference()
}

// Reference generates the same markdown documentation from a running
// server's method table.
func (s *Server) Reference() string {
	return s.reg.reference()
}

func (r *registry) reference() string {
	var b strings.Builder

	b.WriteString("# Actor reference\n\n")
	b.WriteString("JSON-based method dispatch for the following methods:\n\n")
	b.WriteString("| Method | Parameters | Return Type |\n")
	b.WriteString("|--------|------------|-------------|\n")
	for _, name := range r.names {
		m := r.methods[name]
		fmt.Fprintf(&b, "| `%s` | %s | `%s` |\n", name, paramSummary(m.params), typeName(m.result))
	}

	for _, name := range r.names {
		m := r.methods[name]
		b.WriteString("\n---\n")
		fmt.Fprintf(&b, "## Method `%s`\n\n", name)
		if m.doc != "" {
			b.WriteString(m.doc)
			b.WriteString("\n\n")
		}

		fields := paramFields(m.params)
		if len(fields) == 0 {
			b.WriteString("- **Parameters:** None\n")
		} else {
			b.WriteString("- **Parameters:**\n")
			for _, f := range fields {
				fmt.Fprintf(&b, "  - `%s`: `%s`\n", f.name, typeName(f.typ))
			}
		}
		fmt.Fprintf(&b, "- **Returns:** `%s`\n\n", typeName(m.result))

		b.WriteString("**JSON Payload:**\n\n```json\n")
		b.WriteString(payloadExample(fields, ""))
		b.WriteString("\n```\n\n")

		// On a WebSocket connection the method name rides in the frame
		// itself, not in a URL, so the persistent connection can carry
		// every method.
		b.WriteString("**WebSocket Payload:**\n\n```json\n")
		fmt.Fprintf(&b, "{\n  \"method\": \"%s\",\n  \"params\": %s\n}\n", name,
			payloadExample(fields, "  "))
		b.WriteString("```\n\n")

		b.WriteString("**Usage from JavaScript:**\n\n```js\n")
		fmt.Fprintf(&b, "result = await fetch(\"http://localhost:9000/%s\", {\n", name)
		b.WriteString("  method: 'POST',\n")
		b.WriteString("  headers: { 'Content-Type': 'application/json' },\n")
		fmt.Fprintf(&b, "  body: JSON.stringify(%s)\n", payloadExample(fields, "  "))
		b.WriteString("});\n```\n")
	}

	return b.String()
}

type paramField struct {
	name string
	typ  reflect.Type
}

// paramFields lists the named parameters of a params struct, honoring json
// tags the way the decoder does.
func paramFields(t reflect.Type) []paramField {
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}
	var fields []paramField
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name := f.Name
		if tag, ok := f.Tag.Lookup("json"); ok {
			tagName, _, _ := strings.Cut(tag, ",")
			if tagName == "-" {
				continue
			}
			if tagName != "" {
				name = tagName
			}
		}
		fields = append(fields, paramField{name: name, typ: f.Type})
	}
	return fields
}

func paramSummary(t reflect.Type) string {
	fields := paramFields(t)
	if len(fields) == 0 {
		return "None"
	}
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = fmt.Sprintf("`%s`: `%s`", f.name, typeName(f.typ))
	}
	return strings.Join(parts, ", ")
}

func payloadExample(fields []paramField, indent string) string {
	if len(fields) == 0 {
		return "{}"
	}
	var b strings.Builder
	b.WriteString("{\n")
	for i, f := range fields {
		comma := ","
		if i == len(fields)-1 {
			comma = ""
		}
		fmt.Fprintf(&b, "%s  \"%s\": %s%s\n", indent, f.name, exampleValue(f.typ), comma)
	}
	b.WriteString(indent)
	b.WriteString("}")
	return b.String()
}

// exampleValue renders a plausible JSON value for a parameter type.
func exampleValue(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "42"
	case reflect.Float32, reflect.Float64:
		return "3.14"
	case reflect.Bool:
		return "true"
	case reflect.String:
		return `"example"`
	case reflect.Slice, reflect.Array:
		return "[]"
	case reflect.Map, reflect.Struct:
		return "{}"
	case reflect.Pointer, reflect.Interface:
		return "null"
	default:
		return `"value"`
	}
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "any"
	}
	return t.String()
}
