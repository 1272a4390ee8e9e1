package util

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// DecodeJSON decodes a single JSON document from r into v.
//
// Numbers inside untyped fields are preserved as json.Number so large
// integers from the server are not rounded through float64.
func DecodeJSON(r io.Reader, v any) error {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	// Ensure there is no trailing non-whitespace content.
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return fmt.Errorf("unexpected trailing JSON content")
		}
		return fmt.Errorf("unexpected trailing JSON content: %w", err)
	}
	return nil
}

// DecodeJSONMap decodes JSON into a map[string]any.
func DecodeJSONMap(b []byte) (map[string]any, error) {
	var m map[string]any
	if err := DecodeJSON(bytes.NewReader(b), &m); err != nil {
		return nil, err
	}
	if m == nil {
		m = map[string]any{}
	}
	return m, nil
}

// ReadAllLimit reads at most max bytes from r. A non-positive max reads everything.
func ReadAllLimit(r io.Reader, max int64) ([]byte, error) {
	if max <= 0 {
		return io.ReadAll(r)
	}
	buf := &bytes.Buffer{}
	_, err := io.CopyN(buf, r, max+1)
	if err != nil && err != io.EOF {
		return nil, err
	}
	b := buf.Bytes()
	if int64(len(b)) > max {
		return b[:max], nil
	}
	return b, nil
}
