// Package models defines the domain models for trigger-driven notifications.
package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"maps"
)

// Connection binds a notification to one integration with its own settings.
type Connection struct {
	Enabled     *bool          `json:"enabled,omitempty"`
	Integration string         `json:"integration"       validate:"required"`
	Settings    map[string]any `json:"settings"`
}

// IsEnabled reports whether the connection should be dispatched. An absent
// flag means enabled.
func (c Connection) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// Bool returns a pointer to v, for building connections in code.
func Bool(v bool) *bool {
	return &v
}

var errConnectionsNotObject = errors.New("connections must be a JSON object")

// Connections is a mapping from connection ID to Connection that remembers
// insertion order. The zero value is an empty mapping ready to use.
type Connections struct {
	order []string
	items map[string]Connection
}

// NewConnections builds a mapping from entries, preserving their order.
func NewConnections(entries ...ConnectionEntry) Connections {
	var cs Connections
	for _, e := range entries {
		cs.Set(e.ID, e.Connection)
	}

	return cs
}

// ConnectionEntry is one id/connection pair of a Connections mapping.
type ConnectionEntry struct {
	ID         string
	Connection Connection
}

// Set stores c under id. Replacing an existing id keeps its original position.
func (cs *Connections) Set(id string, c Connection) {
	if cs.items == nil {
		cs.items = make(map[string]Connection)
	}

	if _, exists := cs.items[id]; !exists {
		cs.order = append(cs.order, id)
	}

	cs.items[id] = c
}

func (cs Connections) Get(id string) (Connection, bool) {
	c, ok := cs.items[id]

	return c, ok
}

func (cs *Connections) Delete(id string) {
	if _, exists := cs.items[id]; !exists {
		return
	}

	delete(cs.items, id)

	for i, existing := range cs.order {
		if existing == id {
			cs.order = append(cs.order[:i:i], cs.order[i+1:]...)

			break
		}
	}
}

func (cs Connections) Len() int {
	return len(cs.order)
}

// IDs returns the connection IDs in insertion order.
func (cs Connections) IDs() []string {
	ids := make([]string, len(cs.order))
	copy(ids, cs.order)

	return ids
}

// All iterates the mapping in insertion order.
func (cs Connections) All() iter.Seq2[string, Connection] {
	return func(yield func(string, Connection) bool) {
		for _, id := range cs.order {
			if !yield(id, cs.items[id]) {
				return
			}
		}
	}
}

// Entries returns the mapping as an ordered slice.
func (cs Connections) Entries() []ConnectionEntry {
	entries := make([]ConnectionEntry, 0, len(cs.order))
	for id, c := range cs.All() {
		entries = append(entries, ConnectionEntry{ID: id, Connection: c})
	}

	return entries
}

// Clone returns a copy that shares no ordering or map storage with cs.
// Settings maps are copied one level deep.
func (cs Connections) Clone() Connections {
	var out Connections
	for id, c := range cs.All() {
		if c.Settings != nil {
			c.Settings = maps.Clone(c.Settings)
		}

		out.Set(id, c)
	}

	return out
}

// MarshalJSON encodes the mapping as a JSON object in insertion order.
func (cs Connections) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	for i, id := range cs.order {
		if i > 0 {
			buf.WriteByte(',')
		}

		key, err := json.Marshal(id)
		if err != nil {
			return nil, err
		}

		value, err := json.Marshal(cs.items[id])
		if err != nil {
			return nil, fmt.Errorf("connection %s: %w", id, err)
		}

		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object keeping the key order of the document.
// null and an empty array decode to an empty mapping.
func (cs *Connections) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}

	if tok == nil {
		*cs = Connections{}

		return nil
	}

	delim, ok := tok.(json.Delim)
	if !ok {
		return errConnectionsNotObject
	}

	if delim == '[' {
		if dec.More() {
			return errConnectionsNotObject
		}

		*cs = Connections{}

		return nil
	}

	if delim != '{' {
		return errConnectionsNotObject
	}

	var out Connections

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}

		id, ok := keyTok.(string)
		if !ok {
			return errConnectionsNotObject
		}

		var c Connection
		if err := dec.Decode(&c); err != nil {
			return fmt.Errorf("connection %s: %w", id, err)
		}

		out.Set(id, c)
	}

	if _, err := dec.Token(); err != nil {
		return err
	}

	*cs = out

	return nil
}
