// Package message implements the Arcus Message: an opcode paired with a
// Payload, a JSON object DOM with typed, order-preserving accessors.
package message

import (
	ojson "github.com/nspcc-dev/go-ordered-json"
)

// Payload is a JSON object (never an array or a top-level scalar). An empty
// Payload serializes as "{}" and is equivalent to zero wire bytes. Key order
// is preserved across Get/Set and round-trips through ToJSON, using the same
// ordered-object decoding the rest of the example pack relies on for
// deterministic JSON.
type Payload struct {
	fields ojson.OrderedObject
}

// NewPayload returns an empty Payload.
func NewPayload() *Payload {
	return &Payload{}
}

// PayloadFromJSON decodes data as a JSON object. Empty input decodes to an
// empty Payload. ErrParseFailed is returned for malformed JSON or a
// top-level JSON value that isn't an object.
func PayloadFromJSON(data []byte) (*Payload, error) {
	if len(data) == 0 {
		return NewPayload(), nil
	}
	var v interface{}
	if err := ojson.Unmarshal(data, &v); err != nil {
		return nil, &parseError{cause: err}
	}
	obj, ok := v.(ojson.OrderedObject)
	if !ok {
		return nil, &parseError{cause: nil}
	}
	return &Payload{fields: obj}, nil
}

type parseError struct{ cause error }

func (e *parseError) Error() string {
	if e.cause == nil {
		return "message: payload is not a JSON object"
	}
	return "message: payload parse failed: " + e.cause.Error()
}
func (e *parseError) Unwrap() error { return ErrParseFailed }

// ToJSON serializes the Payload to compact JSON, preserving key insertion
// order. An empty Payload serializes to "{}".
func (p *Payload) ToJSON() ([]byte, error) {
	if p.IsEmpty() {
		return []byte("{}"), nil
	}
	return ojson.Marshal(p.fields)
}

// IsEmpty reports whether the payload has zero keys.
func (p *Payload) IsEmpty() bool {
	return len(p.fields) == 0
}

// Keys returns the payload's keys in insertion order.
func (p *Payload) Keys() []string {
	keys := make([]string, len(p.fields))
	for i, m := range p.fields {
		keys[i] = m.Key
	}
	return keys
}

func (p *Payload) find(key string) (interface{}, bool) {
	for _, m := range p.fields {
		if m.Key == key {
			return m.Value, true
		}
	}
	return nil, false
}

func (p *Payload) set(key string, value interface{}) {
	for i, m := range p.fields {
		if m.Key == key {
			p.fields[i].Value = value
			return
		}
	}
	p.fields = append(p.fields, ojson.Member{Key: key, Value: value})
}

// GetBool returns the bool at key.
func (p *Payload) GetBool(key string) (bool, error) {
	v, ok := p.find(key)
	if !ok {
		return false, &KeyNotFoundError{Key: key}
	}
	b, ok := v.(bool)
	if !ok {
		return false, &TypeError{Key: key, Expected: "bool"}
	}
	return b, nil
}

// SetBool sets key to a bool value, creating or overwriting it.
func (p *Payload) SetBool(key string, value bool) {
	p.set(key, value)
}

// GetInt returns the integer at key. JSON numbers decode as float64;
// GetInt requires the value to be integral.
func (p *Payload) GetInt(key string) (int64, error) {
	v, ok := p.find(key)
	if !ok {
		return 0, &KeyNotFoundError{Key: key}
	}
	f, ok := v.(float64)
	if !ok || f != float64(int64(f)) {
		return 0, &TypeError{Key: key, Expected: "int"}
	}
	return int64(f), nil
}

// SetInt sets key to an integer value, creating or overwriting it.
func (p *Payload) SetInt(key string, value int64) {
	p.set(key, float64(value))
}

// GetString returns the string at key.
func (p *Payload) GetString(key string) (string, error) {
	v, ok := p.find(key)
	if !ok {
		return "", &KeyNotFoundError{Key: key}
	}
	s, ok := v.(string)
	if !ok {
		return "", &TypeError{Key: key, Expected: "string"}
	}
	return s, nil
}

// SetString sets key to a string value, creating or overwriting it.
func (p *Payload) SetString(key string, value string) {
	p.set(key, value)
}

// GetArray returns the array at key as a slice of raw JSON-decoded values.
func (p *Payload) GetArray(key string) ([]interface{}, error) {
	v, ok := p.find(key)
	if !ok {
		return nil, &KeyNotFoundError{Key: key}
	}
	a, ok := v.([]interface{})
	if !ok {
		return nil, &TypeError{Key: key, Expected: "array"}
	}
	return a, nil
}

// SetArray sets key to an array value, creating or overwriting it.
func (p *Payload) SetArray(key string, value []interface{}) {
	p.set(key, value)
}

// GetObject returns the nested object at key as a Payload.
func (p *Payload) GetObject(key string) (*Payload, error) {
	v, ok := p.find(key)
	if !ok {
		return nil, &KeyNotFoundError{Key: key}
	}
	obj, ok := v.(ojson.OrderedObject)
	if !ok {
		return nil, &TypeError{Key: key, Expected: "object"}
	}
	return &Payload{fields: obj}, nil
}

// SetObject sets key to a nested Payload, creating or overwriting it.
func (p *Payload) SetObject(key string, value *Payload) {
	if value == nil {
		value = NewPayload()
	}
	p.set(key, value.fields)
}
