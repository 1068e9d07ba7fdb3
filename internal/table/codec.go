package table

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"io"
)

// Encode writes the table in its binary cache representation.
func (t *Table) Encode(w io.Writer) error {
	if err := gob.NewEncoder(w).Encode(t); err != nil {
		return fmt.Errorf("failed to encode table: %w", err)
	}
	return nil
}

// Decode reads a table from its binary cache representation.
func Decode(r io.Reader) (*Table, error) {
	var t Table
	if err := gob.NewDecoder(r).Decode(&t); err != nil {
		return nil, fmt.Errorf("failed to decode table: %w", err)
	}
	return &t, nil
}

// Marshal returns the binary cache representation as a byte slice.
func (t *Table) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	if err := t.Encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a table from a byte slice.
func Unmarshal(data []byte) (*Table, error) {
	return Decode(bytes.NewReader(data))
}
