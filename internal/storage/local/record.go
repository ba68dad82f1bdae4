// Package local implements the typed repositories on top of a raw
// key-value store. Every value is wrapped in a versioned envelope.
package local

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	errSchemaMismatch = errors.New("schema mismatch")
	errFutureVersion  = errors.New("unsupported future version")
)

type envelope struct {
	Schema  string          `json:"schema"`
	Version int             `json:"version"`
	Data    json.RawMessage `json:"data"`
}

// migration upgrades the payload of version n to version n+1.
type migration func(json.RawMessage) (json.RawMessage, error)

// codec encodes and decodes values of one schema.
type codec[T any] struct {
	schema  string
	version int
	// migrations[n] upgrades from version n.
	migrations map[int]migration
}

func newCodec[T any](schema string) codec[T] {
	return codec[T]{schema: schema, version: 1}
}

func (c codec[T]) encode(v T) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelope{Schema: c.schema, Version: c.version, Data: data})
}

func (c codec[T]) decode(raw []byte) (T, error) {
	var zero T
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return zero, err
	}
	if env.Schema != c.schema {
		return zero, fmt.Errorf("%w: got %q, want %q", errSchemaMismatch, env.Schema, c.schema)
	}
	if env.Version > c.version || env.Version < 1 {
		return zero, fmt.Errorf("%w: %s v%d", errFutureVersion, c.schema, env.Version)
	}

	data := env.Data
	for v := env.Version; v < c.version; v++ {
		up, ok := c.migrations[v]
		if !ok {
			return zero, fmt.Errorf("no migration for %s v%d", c.schema, v)
		}
		var err error
		if data, err = up(data); err != nil {
			return zero, fmt.Errorf("migrate %s v%d: %w", c.schema, v, err)
		}
	}

	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return zero, err
	}
	return out, nil
}
