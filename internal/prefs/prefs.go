// Package prefs keeps per-visitor preferences on the client side. Values are
// typed through Key and persisted in a signed cookie, so the server holds no
// visitor state.
package prefs

import (
	"encoding/json"
	"fmt"
)

// Values is a string key-value store local to one visitor.
type Values interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Remove(key string)
}

// Key binds a name to a value type. Values are stored as JSON.
type Key[T any] struct {
	Name string
}

// Get returns the stored value; ok is false when nothing is stored. A stored
// value that does not decode is reported as an error.
func (k Key[T]) Get(v Values) (value T, ok bool, err error) {
	raw, ok := v.Get(k.Name)
	if !ok {
		return value, false, nil
	}
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return value, false, fmt.Errorf("decode %s: %w", k.Name, err)
	}
	return value, true, nil
}

func (k Key[T]) Set(v Values, value T) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", k.Name, err)
	}
	v.Set(k.Name, string(data))
	return nil
}

func (k Key[T]) Remove(v Values) {
	v.Remove(k.Name)
}

// Memory is an in-process Values.
type Memory map[string]string

func (m Memory) Get(key string) (string, bool) {
	value, ok := m[key]
	return value, ok
}

func (m Memory) Set(key, value string) {
	m[key] = value
}

func (m Memory) Remove(key string) {
	delete(m, key)
}
