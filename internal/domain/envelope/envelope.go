// Package envelope defines the uniform response wrapper every backend endpoint returns.
package envelope

import (
	"encoding/json"
	"fmt"

	apperrors "github.com/church-agenda/agenda-client/internal/errors"
)

// KeyInternal is the fallback error key for transport and parse failures.
const KeyInternal = apperrors.KeyInternal

// Envelope is the `{ ok, data, error_key }` wire shape.
//
// A well-formed envelope satisfies: Ok implies ErrorKey == "", and !Ok implies
// Data == nil and ErrorKey != "". Use Normalize after decoding foreign input.
type Envelope[T any] struct {
	Ok       bool   `json:"ok"`
	Data     *T     `json:"data"`
	ErrorKey string `json:"error_key"`
}

type wireEnvelope[T any] struct {
	Ok       bool    `json:"ok"`
	Data     *T      `json:"data"`
	ErrorKey *string `json:"error_key"`
}

// MarshalJSON always writes all three fields; error_key is null on success.
func (e Envelope[T]) MarshalJSON() ([]byte, error) {
	w := wireEnvelope[T]{Ok: e.Ok, Data: e.Data}
	if e.ErrorKey != "" {
		w.ErrorKey = &e.ErrorKey
	}
	return json.Marshal(w)
}

// Success wraps v in a successful envelope.
func Success[T any](v T) Envelope[T] {
	return Envelope[T]{Ok: true, Data: &v}
}

// Failure builds a failed envelope for key. An empty key becomes internal_error.
func Failure[T any](key string) Envelope[T] {
	if key == "" {
		key = KeyInternal
	}
	return Envelope[T]{ErrorKey: key}
}

// Internal is the fallback failure envelope.
func Internal[T any]() Envelope[T] {
	return Envelope[T]{ErrorKey: KeyInternal}
}

// Normalize enforces the envelope invariants on decoded input.
// A failed envelope without a key gets internal_error; a successful one drops any key.
func (e Envelope[T]) Normalize() Envelope[T] {
	if e.Ok {
		e.ErrorKey = ""
		return e
	}
	e.Data = nil
	if e.ErrorKey == "" {
		e.ErrorKey = KeyInternal
	}
	return e
}

// Value returns the payload, or the zero value when absent.
func (e Envelope[T]) Value() T {
	if e.Data == nil {
		var zero T
		return zero
	}
	return *e.Data
}

// Err returns nil for a successful envelope and a domain AppError otherwise.
func (e Envelope[T]) Err() error {
	if e.Ok {
		return nil
	}
	return apperrors.Domain(e.ErrorKey)
}

// Decode re-types a raw envelope. A payload that does not decode into T yields
// the internal_error envelope.
func Decode[T any](raw Envelope[json.RawMessage]) Envelope[T] {
	raw = raw.Normalize()
	if !raw.Ok {
		return Failure[T](raw.ErrorKey)
	}
	if raw.Data == nil || isJSONNull(*raw.Data) {
		return Envelope[T]{Ok: true}
	}
	var v T
	if err := json.Unmarshal(*raw.Data, &v); err != nil {
		return Internal[T]()
	}
	return Success(v)
}

// Parse decodes a response body into a normalized raw envelope.
func Parse(body []byte) (Envelope[json.RawMessage], error) {
	var env Envelope[json.RawMessage]
	if err := json.Unmarshal(body, &env); err != nil {
		return Internal[json.RawMessage](), fmt.Errorf("decode envelope: %w", err)
	}
	return env.Normalize(), nil
}

func isJSONNull(b json.RawMessage) bool {
	return len(b) == 0 || string(b) == "null"
}
