package toggle

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidExport is returned when an export document cannot be parsed.
var ErrInvalidExport = errors.New("invalid toggle export")

// ExportFileName returns the download name for an exported toggle.
func ExportFileName(t Toggle) string {
	return t.Key + "_config.json"
}

// Export serializes one toggle as pretty-printed JSON.
func Export(t Toggle) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(t.Clone()); err != nil {
		return nil, fmt.Errorf("encode toggle %s: %w", t.ID, err)
	}
	return buf.Bytes(), nil
}

// ParseExport is the inverse of Export. Unknown fields are rejected so a
// collection blob or a foreign document is not silently accepted as a toggle.
func ParseExport(data []byte) (Toggle, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var t Toggle
	if err := dec.Decode(&t); err != nil {
		return Toggle{}, fmt.Errorf("%w: %v", ErrInvalidExport, err)
	}
	if t.ID == "" {
		return Toggle{}, fmt.Errorf("%w: id is required", ErrInvalidExport)
	}
	if t.Key == "" {
		return Toggle{}, fmt.Errorf("%w: key is required", ErrInvalidExport)
	}
	st, err := ParseStatus(string(t.Status))
	if err != nil {
		return Toggle{}, fmt.Errorf("%w: %v", ErrInvalidExport, err)
	}
	t.Status = st
	return t.Clone(), nil
}

// MarshalCollection encodes a whole collection as a compact JSON array.
// This is the persisted layout shared by every store backend.
func MarshalCollection(toggles []Toggle) ([]byte, error) {
	out := make([]Toggle, len(toggles))
	for i, t := range toggles {
		out[i] = t.Clone()
	}
	return json.Marshal(out)
}

// UnmarshalCollection decodes a persisted JSON array of toggles.
func UnmarshalCollection(data []byte) ([]Toggle, error) {
	var toggles []Toggle
	if err := json.Unmarshal(data, &toggles); err != nil {
		return nil, err
	}
	for i := range toggles {
		toggles[i] = toggles[i].Clone()
	}
	if toggles == nil {
		toggles = []Toggle{}
	}
	return toggles, nil
}
